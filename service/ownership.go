package service

import (
	"tetplan/database"
	"tetplan/models"
)

// 归属索引：按归属链推导某用户名下各类实体的 ID 集合。
// 结果是查询时刻的快照，不保证跨请求一致；空集合必须由调用方
// 短路成空结果，不能拿空切片去拼 IN 条件。

// BudgetIDsOf 返回用户名下所有预算 ID
func BudgetIDsOf(userID uint) ([]uint, error) {
	var ids []uint
	err := database.DB.Model(&models.Budget{}).
		Where("user_id = ?", userID).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// CategoryIDsOf 返回用户名下所有任务分类 ID
func CategoryIDsOf(userID uint) ([]uint, error) {
	var ids []uint
	err := database.DB.Model(&models.TaskCategory{}).
		Where("user_id = ?", userID).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// TaskIDsOf 返回用户名下所有任务 ID（经分类间接归属推导，不落库）
func TaskIDsOf(userID uint) ([]uint, error) {
	categoryIDs, err := CategoryIDsOf(userID)
	if err != nil {
		return nil, err
	}
	if len(categoryIDs) == 0 {
		return nil, nil
	}

	var ids []uint
	err = database.DB.Model(&models.Task{}).
		Where("category_id IN ?", categoryIDs).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
