package service

import "errors"

// 业务错误。handler 层用 errors.Is 判断后映射为 HTTP 响应：
// ErrNotFound 覆盖“记录不存在”和“记录存在但不归属当前用户”两种情况，
// 二者对外不可区分，防止跨用户枚举资源 ID。
var (
	ErrNotFound         = errors.New("记录不存在")
	ErrCategoryNotOwned = errors.New("任务分类不存在或无权使用")
	ErrBudgetNotOwned   = errors.New("预算不存在或无权使用")
	ErrTaskNotOwned     = errors.New("任务不存在或无权使用")
	ErrInvalidValue     = errors.New("取值非法")
)
