package models

import (
	"time"

	"gorm.io/gorm"
)

// Budget 预算模型
// Summary 为读取时计算的衍生字段（该预算下所有购物项 price*quantity 之和），不落库
type Budget struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	UserID          uint           `json:"user_id" gorm:"index;not null"` // 归属用户，创建后不可变更
	Name            string         `json:"name" gorm:"size:100;not null"`
	AllocatedAmount float64        `json:"allocated_amount" gorm:"type:decimal(12,2);not null"`
	Summary         float64        `json:"summary" gorm:"-"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`
	User            User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (Budget) TableName() string {
	return "budgets"
}
