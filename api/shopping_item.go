package api

import (
	"errors"
	"log"
	"strconv"
	"time"

	"tetplan/database"
	"tetplan/middleware"
	"tetplan/models"
	"tetplan/service"

	"github.com/gin-gonic/gin"
)

// ShoppingItemHandler 购物项处理器
type ShoppingItemHandler struct {
	emailService *service.EmailService
}

// NewShoppingItemHandler 创建购物项处理器
func NewShoppingItemHandler(emailService *service.EmailService) *ShoppingItemHandler {
	return &ShoppingItemHandler{emailService: emailService}
}

// CreateShoppingItemRequest 创建购物项请求
type CreateShoppingItemRequest struct {
	BudgetID uint     `json:"budget_id" binding:"required" example:"1"`
	TaskID   uint     `json:"task_id" binding:"required" example:"1"`
	Name     string   `json:"name" binding:"required,min=1,max=255" example:"瓜子"`
	Quantity int      `json:"quantity" binding:"required,gte=1" example:"3"`
	Price    *float64 `json:"price" binding:"required,gte=0" example:"15.5"`
	DuedTime string   `json:"dued_time" binding:"required" example:"2026-02-10 12:00:00"`
	Timeline string   `json:"timeline" binding:"required,oneof=Pre_Tet During_Tet After_Tet" example:"Pre_Tet"`
	Status   string   `json:"status" binding:"required,oneof=Planning Completed" example:"Planning"`
}

// UpdateShoppingItemRequest 更新购物项请求，所有字段可选
type UpdateShoppingItemRequest struct {
	BudgetID *uint    `json:"budget_id" example:"2"`
	TaskID   *uint    `json:"task_id" example:"2"`
	Name     *string  `json:"name" binding:"omitempty,min=1,max=255" example:"瓜子"`
	Quantity *int     `json:"quantity" binding:"omitempty,gte=1" example:"5"`
	Price    *float64 `json:"price" binding:"omitempty,gte=0" example:"12.8"`
	DuedTime *string  `json:"dued_time" example:"2026-02-10 12:00:00"`
	Timeline *string  `json:"timeline" binding:"omitempty,oneof=Pre_Tet During_Tet After_Tet" example:"During_Tet"`
	Status   *string  `json:"status" binding:"omitempty,oneof=Planning Completed" example:"Completed"`
}

// ShoppingItemListRequest 购物项列表请求
type ShoppingItemListRequest struct {
	Timeline  string `form:"timeline" binding:"omitempty,oneof=Pre_Tet During_Tet After_Tet" example:"Pre_Tet"`
	Status    string `form:"status" binding:"omitempty,oneof=Planning Completed" example:"Planning"`
	BudgetID  uint   `form:"budget_id" example:"1"`
	TaskID    uint   `form:"task_id" example:"1"`
	Keyword   string `form:"keyword" example:"瓜子"`
	DuedFrom  string `form:"dued_from" example:"2026-02-01 00:00:00"`
	DuedTo    string `form:"dued_to" example:"2026-02-16 23:59:59"`
	SortBy    string `form:"sort_by" binding:"omitempty,oneof=price quantity dued_time created_at" example:"price"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc" example:"desc"`
	Page      int    `form:"page" example:"1"`
	PageSize  int    `form:"page_size" example:"10"`
}

// Create 创建购物项
// @Summary 创建购物项
// @Description 创建购物项，budget_id 和 task_id 必须分别归属当前用户
// @Tags 购物项
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateShoppingItemRequest true "购物项信息"
// @Success 200 {object} Response{data=models.ShoppingItem} "创建成功"
// @Failure 400 {object} Response "请求参数错误或预算/任务不可用"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/shopping-items [post]
func (h *ShoppingItemHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateShoppingItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	duedTime, err := time.ParseInLocation("2006-01-02 15:04:05", req.DuedTime, time.Local)
	if err != nil {
		BadRequest(c, "时间格式错误，应为: 2006-01-02 15:04:05")
		return
	}

	// 双重归属校验：预算和任务两条链都要解析到当前用户
	if err := service.AuthorizeShoppingItemMutation(userID, req.BudgetID, req.TaskID); err != nil {
		if errors.Is(err, service.ErrBudgetNotOwned) || errors.Is(err, service.ErrTaskNotOwned) {
			BadRequest(c, err.Error())
			return
		}
		InternalError(c, SafeErrorMessage(err, "校验失败"))
		return
	}

	item := models.ShoppingItem{
		BudgetID: req.BudgetID,
		TaskID:   req.TaskID,
		Name:     req.Name,
		Quantity: req.Quantity,
		Price:    *req.Price,
		DuedTime: duedTime,
		Timeline: req.Timeline,
		Status:   req.Status,
	}

	if err := database.DB.Create(&item).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建购物项失败"))
		return
	}

	h.notifyIfOverrun(userID, item.BudgetID)

	SuccessWithMessage(c, "创建成功", item)
}

// List 获取购物项列表
// @Summary 获取购物项列表
// @Description 获取当前用户的购物项，支持筛选、排序与分页
// @Tags 购物项
// @Produce json
// @Security BearerAuth
// @Param timeline query string false "时间段筛选" Enums(Pre_Tet,During_Tet,After_Tet)
// @Param status query string false "状态筛选" Enums(Planning,Completed)
// @Param budget_id query int false "预算ID筛选"
// @Param task_id query int false "任务ID筛选"
// @Param keyword query string false "名称关键词，不区分大小写"
// @Param dued_from query string false "截止时间下限" example("2026-02-01 00:00:00")
// @Param dued_to query string false "截止时间上限" example("2026-02-16 23:59:59")
// @Param sort_by query string false "排序字段" Enums(price,quantity,dued_time,created_at)
// @Param sort_order query string false "排序方向" Enums(asc,desc)
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} Response{data=PageResponse{list=[]models.ShoppingItem}} "获取成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/shopping-items [get]
func (h *ShoppingItemHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req ShoppingItemListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	filter := service.ShoppingItemFilter{
		Timeline:  req.Timeline,
		Status:    req.Status,
		BudgetID:  req.BudgetID,
		TaskID:    req.TaskID,
		Keyword:   req.Keyword,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
		Page:      req.Page,
		PageSize:  req.PageSize,
	}
	if req.DuedFrom != "" {
		t, err := time.ParseInLocation("2006-01-02 15:04:05", req.DuedFrom, time.Local)
		if err != nil {
			BadRequest(c, "时间格式错误，应为: 2006-01-02 15:04:05")
			return
		}
		filter.DuedFrom = t
	}
	if req.DuedTo != "" {
		t, err := time.ParseInLocation("2006-01-02 15:04:05", req.DuedTo, time.Local)
		if err != nil {
			BadRequest(c, "时间格式错误，应为: 2006-01-02 15:04:05")
			return
		}
		filter.DuedTo = t
	}

	items, total, err := service.ListShoppingItems(userID, filter)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}

	Success(c, PageResponse{
		Total:      total,
		TotalPages: totalPages(total, pageSize),
		Page:       page,
		PageSize:   pageSize,
		List:       items,
	})
}

// Get 获取单个购物项
// @Summary 获取单个购物项
// @Description 根据ID获取购物项详情
// @Tags 购物项
// @Produce json
// @Security BearerAuth
// @Param id path int true "购物项ID"
// @Success 200 {object} Response{data=models.ShoppingItem} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "购物项不存在"
// @Router /api/v1/shopping-items/{id} [get]
func (h *ShoppingItemHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	item, ok := h.findOwnedItem(c, userID, uint(id))
	if !ok {
		return
	}

	Success(c, item)
}

// Update 更新购物项
// @Summary 更新购物项
// @Description 更新购物项的部分字段；变更 budget_id 或 task_id 时会重新做双重归属校验
// @Tags 购物项
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "购物项ID"
// @Param request body UpdateShoppingItemRequest true "需要更新的字段"
// @Success 200 {object} Response{data=models.ShoppingItem} "更新成功"
// @Failure 400 {object} Response "请求参数错误或预算/任务不可用"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "购物项不存在"
// @Router /api/v1/shopping-items/{id} [put]
func (h *ShoppingItemHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	item, ok := h.findOwnedItem(c, userID, uint(id))
	if !ok {
		return
	}

	var req UpdateShoppingItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	// 外键发生变化时按新值重新校验两条归属链
	newBudgetID := item.BudgetID
	newTaskID := item.TaskID
	if req.BudgetID != nil {
		newBudgetID = *req.BudgetID
	}
	if req.TaskID != nil {
		newTaskID = *req.TaskID
	}
	if newBudgetID != item.BudgetID || newTaskID != item.TaskID {
		if err := service.AuthorizeShoppingItemMutation(userID, newBudgetID, newTaskID); err != nil {
			if errors.Is(err, service.ErrBudgetNotOwned) || errors.Is(err, service.ErrTaskNotOwned) {
				BadRequest(c, err.Error())
				return
			}
			InternalError(c, SafeErrorMessage(err, "校验失败"))
			return
		}
	}

	updates := make(map[string]interface{})
	if req.BudgetID != nil {
		updates["budget_id"] = *req.BudgetID
	}
	if req.TaskID != nil {
		updates["task_id"] = *req.TaskID
	}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Quantity != nil {
		updates["quantity"] = *req.Quantity
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.DuedTime != nil {
		duedTime, err := time.ParseInLocation("2006-01-02 15:04:05", *req.DuedTime, time.Local)
		if err != nil {
			BadRequest(c, "时间格式错误，应为: 2006-01-02 15:04:05")
			return
		}
		updates["dued_time"] = duedTime
	}
	if req.Timeline != nil {
		updates["timeline"] = *req.Timeline
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if len(updates) == 0 {
		SuccessWithMessage(c, "无需更新", item)
		return
	}

	if err := database.DB.Model(&item).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	database.DB.First(&item, item.ID)
	h.notifyIfOverrun(userID, item.BudgetID)

	SuccessWithMessage(c, "更新成功", item)
}

// Delete 删除购物项
// @Summary 删除购物项
// @Description 删除指定购物项
// @Tags 购物项
// @Produce json
// @Security BearerAuth
// @Param id path int true "购物项ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "购物项不存在"
// @Router /api/v1/shopping-items/{id} [delete]
func (h *ShoppingItemHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	item, ok := h.findOwnedItem(c, userID, uint(id))
	if !ok {
		return
	}

	if err := database.DB.Delete(&item).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}

// findOwnedItem 按归属链查找购物项：购物项的预算必须归属当前用户
// 不存在与不归属一律按 404 处理，查不到时已写好响应并返回 ok=false
func (h *ShoppingItemHandler) findOwnedItem(c *gin.Context, userID, itemID uint) (models.ShoppingItem, bool) {
	budgetIDs, err := service.BudgetIDsOf(userID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return models.ShoppingItem{}, false
	}
	if len(budgetIDs) == 0 {
		NotFound(c, "购物项不存在")
		return models.ShoppingItem{}, false
	}

	var item models.ShoppingItem
	if err := database.DB.Where("id = ? AND budget_id IN ?", itemID, budgetIDs).First(&item).Error; err != nil {
		NotFound(c, "购物项不存在")
		return models.ShoppingItem{}, false
	}
	return item, true
}

// notifyIfOverrun 购物项写入后检查预算是否超支，超支则异步发送提醒邮件
// 提醒属于旁路功能，任何失败只记日志，不影响主流程
func (h *ShoppingItemHandler) notifyIfOverrun(userID, budgetID uint) {
	if h.emailService == nil || !h.emailService.Enabled() {
		return
	}

	summary, err := service.BudgetSummary(budgetID)
	if err != nil {
		log.Printf("计算预算汇总失败: %v", err)
		return
	}

	var budget models.Budget
	if err := database.DB.Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		log.Printf("查询预算失败: %v", err)
		return
	}
	if summary <= budget.AllocatedAmount {
		return
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		log.Printf("查询用户失败: %v", err)
		return
	}

	go func() {
		if err := h.emailService.SendBudgetOverrunAlert(user.Email, user.Username, budget.Name, budget.AllocatedAmount, summary); err != nil {
			log.Printf("发送预算超支提醒失败: %v", err)
		}
	}()
}
