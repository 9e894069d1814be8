package models

import (
	"time"

	"gorm.io/gorm"
)

// Timeline 春节时间段
const (
	TimelinePreTet    = "Pre_Tet"    // 节前
	TimelineDuringTet = "During_Tet" // 节中
	TimelineAfterTet  = "After_Tet"  // 节后
)

// Priority 任务优先级
const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

// TaskStatus 任务状态
const (
	TaskStatusTodo       = "Todo"
	TaskStatusInProgress = "In_Progress"
	TaskStatusDone       = "Done"
)

// Task 任务模型
// 任务没有 user_id 字段，归属关系沿 category_id -> task_categories.user_id 推导
type Task struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	CategoryID uint           `json:"category_id" gorm:"index;not null"`
	Title      string         `json:"title" gorm:"size:255;not null"`
	DuedTime   time.Time      `json:"dued_time" gorm:"not null"`
	Timeline   string         `json:"timeline" gorm:"size:20;not null"`
	Priority   string         `json:"priority" gorm:"size:10;not null"`
	Status     string         `json:"status" gorm:"size:20;not null"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
	Category   TaskCategory   `json:"-" gorm:"foreignKey:CategoryID"`
}

// TableName 设置表名
func (Task) TableName() string {
	return "tasks"
}

// GetTimelines 获取所有时间段取值
func GetTimelines() []string {
	return []string{TimelinePreTet, TimelineDuringTet, TimelineAfterTet}
}

// GetPriorities 获取所有优先级取值
func GetPriorities() []string {
	return []string{PriorityLow, PriorityMedium, PriorityHigh}
}

// GetTaskStatuses 获取所有任务状态取值
func GetTaskStatuses() []string {
	return []string{TaskStatusTodo, TaskStatusInProgress, TaskStatusDone}
}

// IsValidTimeline 校验时间段取值
func IsValidTimeline(v string) bool {
	switch v {
	case TimelinePreTet, TimelineDuringTet, TimelineAfterTet:
		return true
	}
	return false
}

// IsValidPriority 校验优先级取值
func IsValidPriority(v string) bool {
	switch v {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// IsValidTaskStatus 校验任务状态取值
func IsValidTaskStatus(v string) bool {
	switch v {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}
