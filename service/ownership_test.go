package service

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBudgetIDsOf(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `budgets`").
		WithArgs(uint(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10).AddRow(11))

	ids, err := BudgetIDsOf(1)
	require.NoError(t, err)
	assert.Equal(t, []uint{10, 11}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetIDsOf_Empty(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 新用户名下没有预算，返回空集合
	mock.ExpectQuery("SELECT .* FROM `budgets`").
		WithArgs(uint(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	ids, err := BudgetIDsOf(7)
	require.NoError(t, err)
	assert.Empty(t, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryIDsOf(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `task_categories`").
		WithArgs(uint(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	ids, err := CategoryIDsOf(1)
	require.NoError(t, err)
	assert.Equal(t, []uint{3}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskIDsOf(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `task_categories`").
		WithArgs(uint(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3).AddRow(4))
	mock.ExpectQuery("SELECT .* FROM `tasks`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(20).AddRow(21).AddRow(22))

	ids, err := TaskIDsOf(1)
	require.NoError(t, err)
	assert.Equal(t, []uint{20, 21, 22}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskIDsOf_NoCategories(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 没有分类时必须短路，不能对 tasks 发起空 IN 查询
	mock.ExpectQuery("SELECT .* FROM `task_categories`").
		WithArgs(uint(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	ids, err := TaskIDsOf(9)
	require.NoError(t, err)
	assert.Empty(t, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}
