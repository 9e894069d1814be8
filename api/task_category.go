package api

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"tetplan/database"
	"tetplan/middleware"
	"tetplan/models"
	"tetplan/service"

	"github.com/gin-gonic/gin"
)

// TaskCategoryHandler 任务分类处理器
type TaskCategoryHandler struct{}

// NewTaskCategoryHandler 创建任务分类处理器
func NewTaskCategoryHandler() *TaskCategoryHandler {
	return &TaskCategoryHandler{}
}

// CreateTaskCategoryRequest 创建任务分类请求
type CreateTaskCategoryRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100" example:"大扫除"`
}

// UpdateTaskCategoryRequest 更新任务分类请求
type UpdateTaskCategoryRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100" example:"备年货"`
}

// Create 创建任务分类
// @Summary 创建任务分类
// @Description 为当前用户创建一个任务分类，名称不要求唯一
// @Tags 任务分类
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTaskCategoryRequest true "分类信息"
// @Success 200 {object} Response{data=models.TaskCategory} "创建成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/task-categories [post]
func (h *TaskCategoryHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CreateTaskCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		BadRequest(c, "名称不能为空")
		return
	}

	category := models.TaskCategory{
		UserID: userID,
		Name:   req.Name,
	}

	if err := database.DB.Create(&category).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "创建分类失败"))
		return
	}

	SuccessWithMessage(c, "创建成功", category)
}

// List 获取任务分类列表
// @Summary 获取任务分类列表
// @Description 获取当前用户的全部任务分类
// @Tags 任务分类
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.TaskCategory} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/task-categories [get]
func (h *TaskCategoryHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var categories []models.TaskCategory
	if err := database.DB.Where("user_id = ?", userID).Order("id ASC").Find(&categories).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "查询失败"))
		return
	}

	Success(c, categories)
}

// Get 获取单个任务分类
// @Summary 获取单个任务分类
// @Description 根据ID获取任务分类详情
// @Tags 任务分类
// @Produce json
// @Security BearerAuth
// @Param id path int true "分类ID"
// @Success 200 {object} Response{data=models.TaskCategory} "获取成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "分类不存在"
// @Router /api/v1/task-categories/{id} [get]
func (h *TaskCategoryHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var category models.TaskCategory
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&category).Error; err != nil {
		NotFound(c, "分类不存在")
		return
	}

	Success(c, category)
}

// Update 更新任务分类
// @Summary 更新任务分类
// @Description 更新任务分类名称
// @Tags 任务分类
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "分类ID"
// @Param request body UpdateTaskCategoryRequest true "分类信息"
// @Success 200 {object} Response{data=models.TaskCategory} "更新成功"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "分类不存在"
// @Router /api/v1/task-categories/{id} [put]
func (h *TaskCategoryHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	var category models.TaskCategory
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&category).Error; err != nil {
		NotFound(c, "分类不存在")
		return
	}

	var req UpdateTaskCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "参数错误"))
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		BadRequest(c, "名称不能为空")
		return
	}

	if err := database.DB.Model(&category).Update("name", req.Name).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "更新失败"))
		return
	}

	database.DB.First(&category, category.ID)
	SuccessWithMessage(c, "更新成功", category)
}

// Delete 删除任务分类（级联）
// @Summary 删除任务分类
// @Description 删除分类、分类下全部任务及这些任务关联的购物项，单事务全有或全无
// @Tags 任务分类
// @Produce json
// @Security BearerAuth
// @Param id path int true "分类ID"
// @Success 200 {object} Response "删除成功"
// @Failure 401 {object} Response "未授权"
// @Failure 404 {object} Response "分类不存在"
// @Router /api/v1/task-categories/{id} [delete]
func (h *TaskCategoryHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "无效的ID")
		return
	}

	result, err := service.DeleteTaskCategory(userID, uint(id))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			NotFound(c, "分类不存在")
			return
		}
		InternalError(c, SafeErrorMessage(err, "删除失败"))
		return
	}

	SuccessWithMessage(c, fmt.Sprintf("删除成功，级联删除 %d 个任务、%d 个购物项", result.Tasks, result.Items), nil)
}
