package service

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBudgetSummary(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(price \\* quantity\\), 0\\) FROM `shopping_items`").
		WithArgs(uint(10)).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(100.0))

	total, err := BudgetSummary(10)
	require.NoError(t, err)
	assert.Equal(t, 100.0, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetSummary_NoItems(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 没有购物项时 COALESCE 保证为 0
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(price \\* quantity\\), 0\\) FROM `shopping_items`").
		WithArgs(uint(11)).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(0.0))

	total, err := BudgetSummary(11)
	require.NoError(t, err)
	assert.Equal(t, 0.0, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetSummariesBatch(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 单条 GROUP BY 查询；没有购物项的预算 12 不出现在结果里
	mock.ExpectQuery("SELECT budget_id, SUM\\(price \\* quantity\\) AS total FROM `shopping_items`").
		WillReturnRows(sqlmock.NewRows([]string{"budget_id", "total"}).
			AddRow(10, 100.0).
			AddRow(11, 37.5))

	result, err := BudgetSummariesBatch([]uint{10, 11, 12})
	require.NoError(t, err)
	assert.Equal(t, 100.0, result[10])
	assert.Equal(t, 37.5, result[11])
	_, has := result[12]
	assert.False(t, has)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetSummariesBatch_Empty(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 空集合直接返回空 map，不发任何查询
	result, err := BudgetSummariesBatch(nil)
	require.NoError(t, err)
	assert.Empty(t, result)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserTotalSpend(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `budgets`").
		WithArgs(uint(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10).AddRow(11))
	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(price \\* quantity\\), 0\\) FROM `shopping_items`").
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(250.0))

	total, err := UserTotalSpend(1)
	require.NoError(t, err)
	assert.Equal(t, 250.0, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserTotalSpend_NoBudgets(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `budgets`").
		WithArgs(uint(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	total, err := UserTotalSpend(5)
	require.NoError(t, err)
	assert.Equal(t, 0.0, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListShoppingItems(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	now := time.Now()

	mock.ExpectQuery("SELECT .* FROM `budgets`").
		WithArgs(uint(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
	mock.ExpectQuery("SELECT count.* FROM `shopping_items`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("SELECT .* FROM `shopping_items`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "budget_id", "task_id", "name", "quantity", "price", "dued_time", "timeline", "status", "created_at", "updated_at", "deleted_at"}).
			AddRow(1, 10, 20, "糖果", 2, 50.0, now, "Pre_Tet", "Planning", now, now, nil).
			AddRow(2, 10, 20, "鲜花", 1, 30.0, now, "Pre_Tet", "Planning", now, now, nil))

	items, total, err := ListShoppingItems(1, ShoppingItemFilter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, items, 2)
	assert.Equal(t, "糖果", items[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListShoppingItems_NoBudgets(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 用户名下没有预算：直接返回空页，禁止发起未收敛的大范围查询
	mock.ExpectQuery("SELECT .* FROM `budgets`").
		WithArgs(uint(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	items, total, err := ListShoppingItems(7, ShoppingItemFilter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, int64(0), total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListShoppingItems_SortWhitelist(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `budgets`").
		WithArgs(uint(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
	mock.ExpectQuery("SELECT count.* FROM `shopping_items`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	// 非白名单排序列回落到 created_at，并带 id 升序兜底
	mock.ExpectQuery("SELECT .* FROM `shopping_items`.* ORDER BY created_at ASC, id ASC").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, _, err := ListShoppingItems(1, ShoppingItemFilter{SortBy: "name; DROP TABLE users", Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
