package service

import (
	"errors"

	"tetplan/database"
	"tetplan/models"

	"gorm.io/gorm"
)

// CascadeResult 级联删除的删除数量统计
type CascadeResult struct {
	Tasks int64 `json:"tasks"`
	Items int64 `json:"items"`
}

// DeleteBudget 删除预算及其全部购物项，单事务全有或全无
// 预算不存在或不归属该用户时返回 ErrNotFound，任何记录都不会被动到
func DeleteBudget(userID, budgetID uint) (CascadeResult, error) {
	var result CascadeResult

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var budget models.Budget
		if err := tx.Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		// 先删依赖再删父记录
		res := tx.Where("budget_id = ?", budget.ID).Delete(&models.ShoppingItem{})
		if res.Error != nil {
			return res.Error
		}
		result.Items = res.RowsAffected

		return tx.Delete(&budget).Error
	})
	if err != nil {
		return CascadeResult{}, err
	}
	return result, nil
}

// DeleteTaskCategory 删除任务分类、分类下全部任务，以及这些任务关联的全部购物项
// 单事务全有或全无；分类不存在或不归属该用户时返回 ErrNotFound
func DeleteTaskCategory(userID, categoryID uint) (CascadeResult, error) {
	var result CascadeResult

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var category models.TaskCategory
		if err := tx.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var taskIDs []uint
		if err := tx.Model(&models.Task{}).
			Where("category_id = ?", category.ID).
			Pluck("id", &taskIDs).Error; err != nil {
			return err
		}

		if len(taskIDs) > 0 {
			res := tx.Where("task_id IN ?", taskIDs).Delete(&models.ShoppingItem{})
			if res.Error != nil {
				return res.Error
			}
			result.Items = res.RowsAffected

			res = tx.Where("id IN ?", taskIDs).Delete(&models.Task{})
			if res.Error != nil {
				return res.Error
			}
			result.Tasks = res.RowsAffected
		}

		return tx.Delete(&category).Error
	})
	if err != nil {
		return CascadeResult{}, err
	}
	return result, nil
}
