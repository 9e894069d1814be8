package models

import (
	"time"

	"gorm.io/gorm"
)

// ItemStatus 购物项状态
const (
	ItemStatusPlanning  = "Planning"
	ItemStatusCompleted = "Completed"
)

// ShoppingItem 购物项模型
// 双重间接归属：budget_id 和 task_id 必须分别解析到同一个归属用户
type ShoppingItem struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	BudgetID  uint           `json:"budget_id" gorm:"index;not null"`
	TaskID    uint           `json:"task_id" gorm:"index;not null"`
	Name      string         `json:"name" gorm:"size:255;not null"`
	Quantity  int            `json:"quantity" gorm:"not null"`                   // >= 1
	Price     float64        `json:"price" gorm:"type:decimal(12,2);not null"` // >= 0
	DuedTime  time.Time      `json:"dued_time" gorm:"not null"`
	Timeline  string         `json:"timeline" gorm:"size:20;not null"`
	Status    string         `json:"status" gorm:"size:20;not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
	Budget    Budget         `json:"-" gorm:"foreignKey:BudgetID"`
	Task      Task           `json:"-" gorm:"foreignKey:TaskID"`
}

// TableName 设置表名
func (ShoppingItem) TableName() string {
	return "shopping_items"
}

// GetItemStatuses 获取所有购物项状态取值
func GetItemStatuses() []string {
	return []string{ItemStatusPlanning, ItemStatusCompleted}
}

// IsValidItemStatus 校验购物项状态取值
func IsValidItemStatus(v string) bool {
	switch v {
	case ItemStatusPlanning, ItemStatusCompleted:
		return true
	}
	return false
}
