package api

import (
	"errors"
	"strconv"
	"time"

	"tetplan/database"
	"tetplan/middleware"
	"tetplan/models"
	"tetplan/service"

	"github.com/gin-gonic/gin"
)

// TaskHandler 任务处理器
type TaskHandler struct{}

// NewTaskHandler 创建任务处理器
func NewTaskHandler() *TaskHandler {
	return &TaskHandler{}
}

// CreateTaskRequest 创建任务请求
type CreateTaskRequest struct {
	CategoryID uint   `json:"category_id" binding:"required" example:"1"`
	Title      string `json:"title" binding:"required,min=1,max=255" example:"贴春联"`
	DuedTime   string `json:"dued_time" binding:"required" example:"2026-02-15 18:00:00"`
	Timeline   string `json:"timeline" binding:"required,oneof=Pre_Tet During_Tet After_Tet" example:"Pre_Tet"`
	Priority   string `json:"priority" binding:"required,oneof=Low Medium High" example:"High"`
	Status     string `json:"status" binding:"required,oneof=Todo In_Progress Done" example:"Todo"`
}

// PatchTaskRequest 局部更新任务请求，所有字段可选
type PatchTaskRequest struct {
	CategoryID *uint   `json:"category_id" example:"2"`
	Title      *string `json:"title" binding:"omitempty,min=1,max=255" example:"贴春联"`
	DuedTime   *string `json:"dued_time" example:"2026-02-15 18:00:00"`
	Timeline   *string `json:"timeline" binding:"omitempty,oneof=Pre_Tet During_Tet After_Tet" example:"During_Tet"`
	Priority   *string `json:"priority" binding:"omitempty,oneof=Low Medium High" example:"Medium"`
	Status     *string `json:"status" binding:"omitempty,oneof=Todo In_Progress Done" example:"Done"`
}

// TaskListRequest 任务列表请求
type TaskListRequest struct {
	CategoryID uint   `form:"category_id" example:"1"`
	Status     string `form:"status" binding:"omitempty,oneof=Todo In_Progress Done" example:"Todo"`
	Timeline   string `form:"timeline" binding:"omitempty,oneof=Pre_Tet During_Tet After_Tet" example:"Pre_Tet"`
}

// Create 创建任务
// @Summary 创建任务
// @Description 创建任务，category_id 必须归属当前用户
// @Tags 任务
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTaskRequest true "任务信息"
// @Success 200 {object} Response{data=models.Task} "创建成功"
// @Failure 400 {object} Response "请求参数错误或分类不可用"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	duedTime, err := time.ParseInLocation("2006-01-02 15:04:05", req.DuedTime, time.Local)
	if err != nil {
		BadRequest(c, "时间格式错误，应为: 2006-01-02 15:04:05")
		return
	}

	// 归属校验：分类必须是当前用户的
	if err := service.AuthorizeTaskMutation(userID, req.CategoryID); err != nil {
		if errors.Is(err, service.ErrCategoryNotOwned) {
			BadRequest(c, err.Error())
			return
		}
		InternalError(c, SafeErrorMessage(err, "校验失败"))
		return
	}

	task := models.Task{
		CategoryID: req.CategoryID,
		Title:      req.Title,
		DuedTime:   duedTime,
		Timeline:   req.Timeline,
		Priority:   req.Priority,
		Status:     req.Status,
	}

	if err := database.DB.Create(&task).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建任务失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", task)
}

// List 获取任务列表
// @Summary 获取任务列表
// @Description 获取当前用户的任务，支持按分类、状态、时间段筛选
// @Tags 任务
// @Produce json
// @Security BearerAuth
// @Param category_id query int false "分类ID筛选"
// @Param status query string false "状态筛选" Enums(Todo,In_Progress,Done)
// @Param timeline query string false "时间段筛选" Enums(Pre_Tet,During_Tet,After_Tet)
// @Success 200 {object} Response{data=[]models.Task} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req TaskListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	categoryIDs, err := service.CategoryIDsOf(userID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}
	// 名下没有分类直接返回空列表，不发起未收敛的查询
	if len(categoryIDs) == 0 {
		Success(c, []models.Task{})
		return
	}

	query := database.DB.Where("category_id IN ?", categoryIDs)
	if req.CategoryID != 0 {
		// 归属收敛已生效，非本人的分类自然得到空结果
		query = query.Where("category_id = ?", req.CategoryID)
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.Timeline != "" {
		query = query.Where("timeline = ?", req.Timeline)
	}

	var tasks []models.Task
	if err := query.Order("id ASC").Find(&tasks).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, tasks)
}

// Get 获取单个任务
// @Summary 获取单个任务
// @Description 根据ID获取任务详情
// @Tags 任务
// @Produce json
// @Security BearerAuth
// @Param id path int true "任务ID"
// @Success 200 {object} Response{data=models.Task} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "任务不存在"
// @Router /api/v1/tasks/{id} [get]
func (h *TaskHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	task, ok := h.findOwnedTask(c, userID, uint(id))
	if !ok {
		return
	}

	Success(c, task)
}

// Update 全量更新任务
// @Summary 全量更新任务
// @Description 更新任务的全部字段；变更 category_id 时会重新校验新分类的归属
// @Tags 任务
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "任务ID"
// @Param request body CreateTaskRequest true "任务信息"
// @Success 200 {object} Response{data=models.Task} "更新成功"
// @Failure 400 {object} Response "请求参数错误或分类不可用"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "任务不存在"
// @Router /api/v1/tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	task, ok := h.findOwnedTask(c, userID, uint(id))
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	duedTime, err := time.ParseInLocation("2006-01-02 15:04:05", req.DuedTime, time.Local)
	if err != nil {
		BadRequest(c, "时间格式错误，应为: 2006-01-02 15:04:05")
		return
	}

	// 校验的是新 category_id 的归属，而不是已有记录的
	if err := service.AuthorizeTaskMutation(userID, req.CategoryID); err != nil {
		if errors.Is(err, service.ErrCategoryNotOwned) {
			BadRequest(c, err.Error())
			return
		}
		InternalError(c, SafeErrorMessage(err, "校验失败"))
		return
	}

	updates := map[string]interface{}{
		"category_id": req.CategoryID,
		"title":       req.Title,
		"dued_time":   duedTime,
		"timeline":    req.Timeline,
		"priority":    req.Priority,
		"status":      req.Status,
	}
	if err := database.DB.Model(&task).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	database.DB.First(&task, task.ID)
	SuccessWithMessage(c, "更新成功", task)
}

// Patch 局部更新任务
// @Summary 局部更新任务
// @Description 更新任务的部分字段；变更 category_id 时会重新校验新分类的归属
// @Tags 任务
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "任务ID"
// @Param request body PatchTaskRequest true "需要更新的字段"
// @Success 200 {object} Response{data=models.Task} "更新成功"
// @Failure 400 {object} Response "请求参数错误或分类不可用"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "任务不存在"
// @Router /api/v1/tasks/{id} [patch]
func (h *TaskHandler) Patch(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	task, ok := h.findOwnedTask(c, userID, uint(id))
	if !ok {
		return
	}

	var req PatchTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}

	updates := make(map[string]interface{})
	if req.CategoryID != nil {
		if err := service.AuthorizeTaskMutation(userID, *req.CategoryID); err != nil {
			if errors.Is(err, service.ErrCategoryNotOwned) {
				BadRequest(c, err.Error())
				return
			}
			InternalError(c, SafeErrorMessage(err, "校验失败"))
			return
		}
		updates["category_id"] = *req.CategoryID
	}
	if req.Title != nil {
		updates["title"] = *req.Title
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
	if req.Priority != nil {
		updates["priority"] = *req.Priority
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if len(updates) == 0 {
		SuccessWithMessage(c, "无需更新", task)
		return
	}

	if err := database.DB.Model(&task).Updates(updates).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	database.DB.First(&task, task.ID)
	SuccessWithMessage(c, "更新成功", task)
}

// Delete 删除任务
// @Summary 删除任务
// @Description 删除指定任务
// @Tags 任务
// @Produce json
// @Security BearerAuth
// @Param id path int true "任务ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "任务不存在"
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	task, ok := h.findOwnedTask(c, userID, uint(id))
	if !ok {
		return
	}

	if err := database.DB.Delete(&task).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, "删除成功", nil)
}

// findOwnedTask 按归属链查找任务：任务的分类必须归属当前用户
// 不存在与不归属一律按 404 处理，查不到时已写好响应并返回 ok=false
func (h *TaskHandler) findOwnedTask(c *gin.Context, userID, taskID uint) (models.Task, bool) {
	categoryIDs, err := service.CategoryIDsOf(userID)
	if err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return models.Task{}, false
	}
	if len(categoryIDs) == 0 {
		NotFound(c, "任务不存在")
		return models.Task{}, false
	}

	var task models.Task
	if err := database.DB.Where("id = ? AND category_id IN ?", taskID, categoryIDs).First(&task).Error; err != nil {
		NotFound(c, "任务不存在")
		return models.Task{}, false
	}
	return task, true
}
