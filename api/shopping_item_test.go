package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"tetplan/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShoppingItemHandler_Create(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = testConfig()
	defer func() { config.GlobalConfig = nil }()

	// 双重归属校验：预算一条、任务经分类一条
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `budgets`").
		WithArgs(uint(1), uint(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `tasks` JOIN task_categories").
		WithArgs(uint(2), uint(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `shopping_items`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	router := authedRouter(1)
	h := NewShoppingItemHandler(nil)
	router.POST("/shopping-items", h.Create)

	body := `{"budget_id":1,"task_id":2,"name":"瓜子","quantity":3,"price":15.5,"dued_time":"2026-02-10 12:00:00","timeline":"Pre_Tet","status":"Planning"}`
	req := httptest.NewRequest("POST", "/shopping-items", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "创建成功", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestShoppingItemHandler_Create_BudgetNotOwned(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = testConfig()
	defer func() { config.GlobalConfig = nil }()

	// 预算一环失败即拒绝，任务一环不再查
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `budgets`").
		WithArgs(uint(8), uint(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	router := authedRouter(1)
	h := NewShoppingItemHandler(nil)
	router.POST("/shopping-items", h.Create)

	body := `{"budget_id":8,"task_id":2,"name":"瓜子","quantity":3,"price":15.5,"dued_time":"2026-02-10 12:00:00","timeline":"Pre_Tet","status":"Planning"}`
	req := httptest.NewRequest("POST", "/shopping-items", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "预算不存在或无权使用", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestShoppingItemHandler_Create_TaskNotOwned(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = testConfig()
	defer func() { config.GlobalConfig = nil }()

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `budgets`").
		WithArgs(uint(1), uint(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	// 任务的分类归属别人
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `tasks` JOIN task_categories").
		WithArgs(uint(7), uint(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	router := authedRouter(1)
	h := NewShoppingItemHandler(nil)
	router.POST("/shopping-items", h.Create)

	body := `{"budget_id":1,"task_id":7,"name":"瓜子","quantity":3,"price":15.5,"dued_time":"2026-02-10 12:00:00","timeline":"Pre_Tet","status":"Planning"}`
	req := httptest.NewRequest("POST", "/shopping-items", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "任务不存在或无权使用", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestShoppingItemHandler_Create_InvalidQuantity(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = testConfig()
	defer func() { config.GlobalConfig = nil }()

	router := authedRouter(1)
	h := NewShoppingItemHandler(nil)
	router.POST("/shopping-items", h.Create)

	body := `{"budget_id":1,"task_id":2,"name":"瓜子","quantity":0,"price":15.5,"dued_time":"2026-02-10 12:00:00","timeline":"Pre_Tet","status":"Planning"}`
	req := httptest.NewRequest("POST", "/shopping-items", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}

func TestShoppingItemHandler_List_Pagination(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = testConfig()
	defer func() { config.GlobalConfig = nil }()

	now := time.Now()

	mock.ExpectQuery("SELECT `id` FROM `budgets`").
		WithArgs(uint(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	// 共 15 条，第 2 页（每页 10）应返回剩下的 5 条
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `shopping_items`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(15))

	rows := sqlmock.NewRows([]string{"id", "budget_id", "task_id", "name", "quantity", "price", "dued_time", "timeline", "status", "created_at", "updated_at", "deleted_at"})
	for i := 11; i <= 15; i++ {
		rows.AddRow(i, 1, 1, fmt.Sprintf("item-%d", i), 1, 10.0, now, "Pre_Tet", "Planning", now, now, nil)
	}
	mock.ExpectQuery("SELECT .* FROM `shopping_items`").
		WillReturnRows(rows)

	router := authedRouter(1)
	h := NewShoppingItemHandler(nil)
	router.GET("/shopping-items", h.List)

	req := httptest.NewRequest("GET", "/shopping-items?page=2&page_size=10", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(15), data["total"])
	assert.Equal(t, float64(2), data["total_pages"])
	assert.Equal(t, float64(2), data["page"])
	list := data["list"].([]interface{})
	assert.Len(t, list, 5)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestShoppingItemHandler_List_NoBudgets(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = testConfig()
	defer func() { config.GlobalConfig = nil }()

	// 名下没有预算：直接空页，不再查购物项表
	mock.ExpectQuery("SELECT `id` FROM `budgets`").
		WithArgs(uint(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	router := authedRouter(1)
	h := NewShoppingItemHandler(nil)
	router.GET("/shopping-items", h.List)

	req := httptest.NewRequest("GET", "/shopping-items", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(0), data["total"])
	assert.Len(t, data["list"].([]interface{}), 0)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestShoppingItemHandler_List_InvalidSortBy(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = testConfig()
	defer func() { config.GlobalConfig = nil }()

	router := authedRouter(1)
	h := NewShoppingItemHandler(nil)
	router.GET("/shopping-items", h.List)

	// 白名单外的排序列在绑定层即被拒绝
	req := httptest.NewRequest("GET", "/shopping-items?sort_by=password", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}

func TestShoppingItemHandler_Get_NotOwned(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = testConfig()
	defer func() { config.GlobalConfig = nil }()

	mock.ExpectQuery("SELECT `id` FROM `budgets`").
		WithArgs(uint(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	mock.ExpectQuery("SELECT .* FROM `shopping_items`").
		WillReturnRows(sqlmock.NewRows([]string{}))

	router := authedRouter(1)
	h := NewShoppingItemHandler(nil)
	router.GET("/shopping-items/:id", h.Get)

	req := httptest.NewRequest("GET", "/shopping-items/33", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "购物项不存在", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestShoppingItemHandler_Update_ForeignKeyReGuard(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	config.GlobalConfig = testConfig()
	defer func() { config.GlobalConfig = nil }()

	now := time.Now()

	mock.ExpectQuery("SELECT `id` FROM `budgets`").
		WithArgs(uint(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	mock.ExpectQuery("SELECT .* FROM `shopping_items`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "budget_id", "task_id", "name", "quantity", "price", "dued_time", "timeline", "status", "created_at", "updated_at", "deleted_at"}).
			AddRow(4, 1, 2, "瓜子", 3, 15.5, now, "Pre_Tet", "Planning", now, now, nil))

	// budget_id 改指到别人的预算，重新校验即失败
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `budgets`").
		WithArgs(uint(9), uint(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	router := authedRouter(1)
	h := NewShoppingItemHandler(nil)
	router.PUT("/shopping-items/:id", h.Update)

	body := `{"budget_id":9}`
	req := httptest.NewRequest("PUT", "/shopping-items/4", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "预算不存在或无权使用", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}
