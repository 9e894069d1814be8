package api

import (
	"tetplan/database"
	"tetplan/middleware"
	"tetplan/models"

	"github.com/gin-gonic/gin"
)

// UserHandler 用户处理器
type UserHandler struct{}

// NewUserHandler 创建用户处理器
func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// TotalBudgetResponse 总预算上限返回
type TotalBudgetResponse struct {
	TotalBudget float64 `json:"total_budget" example:"5000"`
}

// UpdateTotalBudgetRequest 更新总预算上限请求
type UpdateTotalBudgetRequest struct {
	TotalBudget *float64 `json:"total_budget" binding:"required,gte=0" example:"5000"`
}

// GetTotalBudget 获取总预算上限
// @Summary 获取总预算上限
// @Description 获取当前用户设定的总预算上限，与各预算的分配额无关
// @Tags 用户
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=TotalBudgetResponse} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "用户不存在"
// @Router /api/v1/users/total-budget [get]
func (h *UserHandler) GetTotalBudget(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		NotFound(c, "用户不存在")
		return
	}

	Success(c, TotalBudgetResponse{TotalBudget: user.TotalBudget})
}

// UpdateTotalBudget 更新总预算上限
// @Summary 更新总预算上限
// @Description 设置当前用户的总预算上限
// @Tags 用户
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateTotalBudgetRequest true "总预算上限"
// @Success 200 {object} Response{data=TotalBudgetResponse} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "用户不存在"
// @Router /api/v1/users/total-budget [put]
func (h *UserHandler) UpdateTotalBudget(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req UpdateTotalBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		NotFound(c, "用户不存在")
		return
	}

	if err := database.DB.Model(&user).Update("total_budget", *req.TotalBudget).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	SuccessWithMessage(c, "更新成功", TotalBudgetResponse{TotalBudget: *req.TotalBudget})
}
