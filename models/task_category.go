package models

import (
	"time"

	"gorm.io/gorm"
)

// TaskCategory 任务分类模型
// 任务通过分类间接归属用户：任务的归属者即其分类的归属者
type TaskCategory struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"user_id" gorm:"index;not null"`
	Name      string         `json:"name" gorm:"size:100;not null"` // 名称不要求唯一
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
	User      User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (TaskCategory) TableName() string {
	return "task_categories"
}
