package api

import (
	"tetplan/database"
	"tetplan/middleware"
	"tetplan/models"
	"tetplan/service"

	"github.com/gin-gonic/gin"
)

// SummaryHandler 统计处理器
type SummaryHandler struct{}

// NewSummaryHandler 创建统计处理器
func NewSummaryHandler() *SummaryHandler {
	return &SummaryHandler{}
}

// BudgetSummaryItem 单个预算的花费统计
type BudgetSummaryItem struct {
	BudgetID        uint    `json:"budget_id" example:"1"`
	Name            string  `json:"name" example:"年货采购"`
	AllocatedAmount float64 `json:"allocated_amount" example:"2000.00"`
	Summary         float64 `json:"summary" example:"1350.50"`
}

// TaskStatusCount 任务状态分布
type TaskStatusCount struct {
	Todo       int64 `json:"todo" example:"5"`
	InProgress int64 `json:"in_progress" example:"2"`
	Done       int64 `json:"done" example:"8"`
}

// UserSummaryResponse 用户总览统计返回
type UserSummaryResponse struct {
	TotalBudget float64             `json:"total_budget" example:"5000.00"` // 用户总预算上限
	TotalSpend  float64             `json:"total_spend" example:"3200.75"`  // 全部预算的花费总和
	Remaining   float64             `json:"remaining" example:"1799.25"`    // 剩余额度
	Budgets     []BudgetSummaryItem `json:"budgets"`
	Tasks       TaskStatusCount     `json:"tasks"`
}

// GetSummary 获取用户总览统计
// @Summary 获取总览统计
// @Description 统计当前用户的总花费、各预算花费汇总及任务状态分布
// @Tags 统计
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=UserSummaryResponse} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/statistics/summary [get]
func (h *SummaryHandler) GetSummary(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		NotFound(c, "用户不存在")
		return
	}

	var budgets []models.Budget
	if err := database.DB.Where("user_id = ?", userID).Order("id ASC").Find(&budgets).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	budgetIDs := make([]uint, 0, len(budgets))
	for _, b := range budgets {
		budgetIDs = append(budgetIDs, b.ID)
	}

	summaries, err := service.BudgetSummariesBatch(budgetIDs)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "统计失败"))
		return
	}

	var totalSpend float64
	items := make([]BudgetSummaryItem, 0, len(budgets))
	for _, b := range budgets {
		s := summaries[b.ID]
		totalSpend += s
		items = append(items, BudgetSummaryItem{
			BudgetID:        b.ID,
			Name:            b.Name,
			AllocatedAmount: b.AllocatedAmount,
			Summary:         s,
		})
	}

	taskCounts, err := h.countTasksByStatus(userID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "统计失败"))
		return
	}

	Success(c, UserSummaryResponse{
		TotalBudget: user.TotalBudget,
		TotalSpend:  totalSpend,
		Remaining:   user.TotalBudget - totalSpend,
		Budgets:     items,
		Tasks:       taskCounts,
	})
}

// countTasksByStatus 按状态统计当前用户名下的任务数
func (h *SummaryHandler) countTasksByStatus(userID uint) (TaskStatusCount, error) {
	var counts TaskStatusCount

	categoryIDs, err := service.CategoryIDsOf(userID)
	if err != nil {
		return counts, err
	}
	if len(categoryIDs) == 0 {
		return counts, nil
	}

	type statusRow struct {
		Status string `gorm:"column:status"`
		Count  int64  `gorm:"column:count"`
	}
	var rows []statusRow
	err = database.DB.Model(&models.Task{}).
		Select("status, COUNT(*) AS count").
		Where("category_id IN ?", categoryIDs).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return counts, err
	}

	for _, row := range rows {
		switch row.Status {
		case models.TaskStatusTodo:
			counts.Todo = row.Count
		case models.TaskStatusInProgress:
			counts.InProgress = row.Count
		case models.TaskStatusDone:
			counts.Done = row.Count
		}
	}
	return counts, nil
}
