package service

import (
	"tetplan/database"
	"tetplan/models"
)

// 跨实体授权校验。任务和购物项自身不带 user_id，归属关系每次都要
// 沿外键链重新推导：更新操作可以把 category_id/budget_id 改指到新目标，
// 校验的必须是新目标而不是已有记录。

// AuthorizeTaskMutation 校验任务写操作：category_id 必须归属当前用户
func AuthorizeTaskMutation(userID, categoryID uint) error {
	var count int64
	err := database.DB.Model(&models.TaskCategory{}).
		Where("id = ? AND user_id = ?", categoryID, userID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrCategoryNotOwned
	}
	return nil
}

// AuthorizeShoppingItemMutation 校验购物项写操作：
// budget_id 必须归属当前用户，task_id 对应任务的分类也必须归属当前用户。
// 两条校验相互独立，先报预算再报任务。
func AuthorizeShoppingItemMutation(userID, budgetID, taskID uint) error {
	var budgetCount int64
	err := database.DB.Model(&models.Budget{}).
		Where("id = ? AND user_id = ?", budgetID, userID).
		Count(&budgetCount).Error
	if err != nil {
		return err
	}
	if budgetCount == 0 {
		return ErrBudgetNotOwned
	}

	var taskCount int64
	err = database.DB.Model(&models.Task{}).
		Joins("JOIN task_categories ON task_categories.id = tasks.category_id").
		Where("tasks.id = ? AND task_categories.user_id = ? AND task_categories.deleted_at IS NULL", taskID, userID).
		Count(&taskCount).Error
	if err != nil {
		return err
	}
	if taskCount == 0 {
		return ErrTaskNotOwned
	}
	return nil
}
