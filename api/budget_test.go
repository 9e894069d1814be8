package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"tetplan/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBudgetHandler_Create(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = testConfig()
	defer func() { config.GlobalConfig = nil }()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `budgets`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	router := authedRouter(1)
	h := NewBudgetHandler()
	router.POST("/budgets", h.Create)

	body := `{"name":"年货采购","allocated_amount":1000}`
	req := httptest.NewRequest("POST", "/budgets", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "创建成功", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetHandler_Create_NegativeAmount(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = testConfig()
	defer func() { config.GlobalConfig = nil }()

	router := authedRouter(1)
	h := NewBudgetHandler()
	router.POST("/budgets", h.Create)

	body := `{"name":"年货采购","allocated_amount":-50}`
	req := httptest.NewRequest("POST", "/budgets", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}

func TestBudgetHandler_List_WithSummaries(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = testConfig()
	defer func() { config.GlobalConfig = nil }()

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM `budgets`").
		WithArgs(uint(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "allocated_amount", "created_at", "updated_at", "deleted_at"}).
			AddRow(1, 1, "年货采购", 1000.0, now, now, nil).
			AddRow(2, 1, "红包", 500.0, now, now, nil))

	// 批量汇总：只有预算 1 有购物项，预算 2 缺省为 0
	mock.ExpectQuery("SELECT budget_id, SUM\\(price \\* quantity\\) AS total FROM `shopping_items`").
		WithArgs(uint(1), uint(2)).
		WillReturnRows(sqlmock.NewRows([]string{"budget_id", "total"}).
			AddRow(1, 350.5))

	router := authedRouter(1)
	h := NewBudgetHandler()
	router.GET("/budgets", h.List)

	req := httptest.NewRequest("GET", "/budgets", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	list := resp["data"].([]interface{})
	require.Len(t, list, 2)
	first := list[0].(map[string]interface{})
	second := list[1].(map[string]interface{})
	assert.Equal(t, 350.5, first["summary"])
	assert.Equal(t, float64(0), second["summary"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetHandler_Get_NotOwned(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = testConfig()
	defer func() { config.GlobalConfig = nil }()

	// 归属条件并入查询：别人的预算与不存在的预算同样查不到
	mock.ExpectQuery("SELECT .* FROM `budgets`").
		WithArgs(uint64(7), uint(1)).
		WillReturnRows(sqlmock.NewRows([]string{}))

	router := authedRouter(1)
	h := NewBudgetHandler()
	router.GET("/budgets/:id", h.Get)

	req := httptest.NewRequest("GET", "/budgets/7", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "预算不存在", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetHandler_Delete_Cascade(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = testConfig()
	defer func() { config.GlobalConfig = nil }()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `budgets`").
		WithArgs(uint(3), uint(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "allocated_amount", "created_at", "updated_at", "deleted_at"}).
			AddRow(3, 1, "年货采购", 1000.0, now, now, nil))
	// 软删除：先购物项后预算，均为 UPDATE
	mock.ExpectExec("UPDATE `shopping_items`").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("UPDATE `budgets`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	router := authedRouter(1)
	h := NewBudgetHandler()
	router.DELETE("/budgets/:id", h.Delete)

	req := httptest.NewRequest("DELETE", "/budgets/3", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "删除成功，级联删除 2 个购物项", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBudgetHandler_Delete_NotFound(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = testConfig()
	defer func() { config.GlobalConfig = nil }()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `budgets`").
		WithArgs(uint(99), uint(1)).
		WillReturnRows(sqlmock.NewRows([]string{}))
	mock.ExpectRollback()

	router := authedRouter(1)
	h := NewBudgetHandler()
	router.DELETE("/budgets/:id", h.Delete)

	req := httptest.NewRequest("DELETE", "/budgets/99", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
