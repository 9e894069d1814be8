package api

import (
	"errors"
	"fmt"
	"strconv"

	"tetplan/database"
	"tetplan/middleware"
	"tetplan/models"
	"tetplan/service"

	"github.com/gin-gonic/gin"
)

// BudgetHandler 预算处理器
type BudgetHandler struct{}

// NewBudgetHandler 创建预算处理器
func NewBudgetHandler() *BudgetHandler {
	return &BudgetHandler{}
}

// CreateBudgetRequest 创建预算请求
type CreateBudgetRequest struct {
	Name            string   `json:"name" binding:"required,min=1,max=100" example:"年货采购"`
	AllocatedAmount *float64 `json:"allocated_amount" binding:"required,gte=0" example:"1000"`
}

// UpdateBudgetRequest 更新预算请求
type UpdateBudgetRequest struct {
	Name            string   `json:"name" binding:"omitempty,min=1,max=100" example:"年货采购"`
	AllocatedAmount *float64 `json:"allocated_amount" binding:"omitempty,gte=0" example:"1500"`
}

// Create 创建预算
// @Summary 创建预算
// @Description 为当前用户创建一个预算，新预算的花费汇总为 0
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateBudgetRequest true "预算信息"
// @Success 200 {object} Response{data=models.Budget} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/budgets [post]
func (h *BudgetHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	// binding 已拦截，这里按不变量兜底复查
	if *req.AllocatedAmount < 0 {
		BadRequest(c, "分配额不能为负数")
		return
	}

	budget := models.Budget{
		UserID:          userID,
		Name:            req.Name,
		AllocatedAmount: *req.AllocatedAmount,
	}

	if err := database.DB.Create(&budget).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建预算失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", budget)
}

// List 获取预算列表
// @Summary 获取预算列表
// @Description 获取当前用户的全部预算，每条带读取时计算的花费汇总
// @Tags 预算
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.Budget} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/budgets [get]
func (h *BudgetHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var budgets []models.Budget
	if err := database.DB.Where("user_id = ?", userID).Order("id ASC").Find(&budgets).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	// 批量计算汇总，避免逐条查询
	ids := make([]uint, 0, len(budgets))
	for _, b := range budgets {
		ids = append(ids, b.ID)
	}
	summaries, err := service.BudgetSummariesBatch(ids)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "计算汇总失败"))
		return
	}
	for i := range budgets {
		budgets[i].Summary = summaries[budgets[i].ID] // 缺省即 0
	}

	Success(c, budgets)
}

// Get 获取单个预算
// @Summary 获取单个预算
// @Description 根据ID获取预算详情，带读取时计算的花费汇总
// @Tags 预算
// @Produce json
// @Security BearerAuth
// @Param id path int true "预算ID"
// @Success 200 {object} Response{data=models.Budget} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "预算不存在"
// @Router /api/v1/budgets/{id} [get]
func (h *BudgetHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	// 归属条件并入查询：不存在与不归属同样报 404
	var budget models.Budget
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&budget).Error; err != nil {
		NotFound(c, "预算不存在")
		return
	}

	summary, err := service.BudgetSummary(budget.ID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "计算汇总失败"))
		return
	}
	budget.Summary = summary

	Success(c, budget)
}

// Update 更新预算
// @Summary 更新预算
// @Description 更新预算名称或分配额，归属用户不可变更
// @Tags 预算
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "预算ID"
// @Param request body UpdateBudgetRequest true "预算信息"
// @Success 200 {object} Response{data=models.Budget} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "预算不存在"
// @Router /api/v1/budgets/{id} [put]
func (h *BudgetHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var budget models.Budget
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&budget).Error; err != nil {
		NotFound(c, "预算不存在")
		return
	}

	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.AllocatedAmount != nil {
		if *req.AllocatedAmount < 0 {
			BadRequest(c, "分配额不能为负数")
			return
		}
		updates["allocated_amount"] = *req.AllocatedAmount
	}
	if len(updates) == 0 {
		SuccessWithMessage(c, "无需更新", budget)
		return
	}

	if err := database.DB.Model(&budget).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	database.DB.First(&budget, budget.ID)
	SuccessWithMessage(c, "更新成功", budget)
}

// Delete 删除预算（级联）
// @Summary 删除预算
// @Description 删除预算及其全部购物项，单事务全有或全无
// @Tags 预算
// @Produce json
// @Security BearerAuth
// @Param id path int true "预算ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "预算不存在"
// @Router /api/v1/budgets/{id} [delete]
func (h *BudgetHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	result, err := service.DeleteBudget(userID, uint(id))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			NotFound(c, "预算不存在")
			return
		}
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, fmt.Sprintf("删除成功，级联删除 %d 个购物项", result.Items), nil)
}
