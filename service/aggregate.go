package service

import (
	"strings"
	"time"

	"tetplan/database"
	"tetplan/models"
)

// ShoppingItemFilter 购物项列表的筛选/排序/分页参数
// 零值字段表示不筛选；SortBy 只接受白名单内的列
type ShoppingItemFilter struct {
	Timeline  string
	Status    string
	BudgetID  uint
	TaskID    uint
	Keyword   string // 名称子串，不区分大小写
	DuedFrom  time.Time
	DuedTo    time.Time
	SortBy    string // price / quantity / dued_time / created_at
	SortOrder string // asc / desc
	Page      int
	PageSize  int
}

// 排序白名单，防止把请求参数直接拼进 ORDER BY
var itemSortColumns = map[string]string{
	"price":      "price",
	"quantity":   "quantity",
	"dued_time":  "dued_time",
	"created_at": "created_at",
}

// BudgetSummary 计算单个预算的花费汇总：Σ(price*quantity)，无购物项时为 0
func BudgetSummary(budgetID uint) (float64, error) {
	var total float64
	err := database.DB.Model(&models.ShoppingItem{}).
		Where("budget_id = ?", budgetID).
		Select("COALESCE(SUM(price * quantity), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

// BudgetSummariesBatch 批量计算多个预算的花费汇总
// 单条 GROUP BY 查询完成，复杂度 O(预算数+购物项数)；没有购物项的预算不出现在结果里
func BudgetSummariesBatch(budgetIDs []uint) (map[uint]float64, error) {
	result := make(map[uint]float64, len(budgetIDs))
	if len(budgetIDs) == 0 {
		return result, nil
	}

	type summaryRow struct {
		BudgetID uint    `gorm:"column:budget_id"`
		Total    float64 `gorm:"column:total"`
	}
	var rows []summaryRow
	err := database.DB.Model(&models.ShoppingItem{}).
		Select("budget_id, SUM(price * quantity) AS total").
		Where("budget_id IN ?", budgetIDs).
		Group("budget_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.BudgetID] = row.Total
	}
	return result, nil
}

// UserTotalSpend 计算用户名下全部预算的花费总和
func UserTotalSpend(userID uint) (float64, error) {
	budgetIDs, err := BudgetIDsOf(userID)
	if err != nil {
		return 0, err
	}
	if len(budgetIDs) == 0 {
		return 0, nil
	}

	var total float64
	err = database.DB.Model(&models.ShoppingItem{}).
		Where("budget_id IN ?", budgetIDs).
		Select("COALESCE(SUM(price * quantity), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

// ListShoppingItems 列出用户可见的购物项
// 先按归属收敛（budget_id 限定在用户名下的预算集合内），再应用筛选、排序、分页。
// total 为筛选后未分页的总数。用户名下没有预算时直接返回空页，不发起更大范围的查询。
func ListShoppingItems(userID uint, f ShoppingItemFilter) ([]models.ShoppingItem, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = 10
	}
	if f.PageSize > 100 {
		f.PageSize = 100
	}

	budgetIDs, err := BudgetIDsOf(userID)
	if err != nil {
		return nil, 0, err
	}
	if len(budgetIDs) == 0 {
		return []models.ShoppingItem{}, 0, nil
	}

	query := database.DB.Model(&models.ShoppingItem{}).Where("budget_id IN ?", budgetIDs)

	if f.Timeline != "" {
		query = query.Where("timeline = ?", f.Timeline)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.BudgetID != 0 {
		// 归属收敛已生效，非本人的预算自然得到空结果
		query = query.Where("budget_id = ?", f.BudgetID)
	}
	if f.TaskID != 0 {
		query = query.Where("task_id = ?", f.TaskID)
	}
	if f.Keyword != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(f.Keyword)+"%")
	}
	if !f.DuedFrom.IsZero() {
		query = query.Where("dued_time >= ?", f.DuedFrom)
	}
	if !f.DuedTo.IsZero() {
		query = query.Where("dued_time <= ?", f.DuedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 排序：白名单列 + id 升序兜底，保证同值记录按创建顺序稳定输出
	column, ok := itemSortColumns[f.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "ASC"
	if strings.EqualFold(f.SortOrder, "desc") {
		direction = "DESC"
	}

	var items []models.ShoppingItem
	offset := (f.Page - 1) * f.PageSize
	err = query.Order(column + " " + direction + ", id ASC").
		Offset(offset).
		Limit(f.PageSize).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}
