package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"

	"tetplan/middleware"
	"tetplan/models"
	"tetplan/service"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportHandler 导出处理器
type ExportHandler struct{}

// NewExportHandler 创建导出处理器
func NewExportHandler() *ExportHandler {
	return &ExportHandler{}
}

// maxExportPageSize 导出时一次性取出的购物项上限
const maxExportPageSize = 100

// collectItems 按当前用户的归属范围取出购物项，支持可选的时间段/状态筛选
func collectItems(c *gin.Context, userID uint) ([]models.ShoppingItem, bool) {
	filter := service.ShoppingItemFilter{
		Timeline: c.Query("timeline"),
		Status:   c.Query("status"),
		SortBy:   "created_at",
		PageSize: maxExportPageSize,
	}
	if filter.Timeline != "" && !models.IsValidTimeline(filter.Timeline) {
		BadRequest(c, "时间段取值非法")
		return nil, false
	}
	if filter.Status != "" && !models.IsValidItemStatus(filter.Status) {
		BadRequest(c, "状态取值非法")
		return nil, false
	}

	var all []models.ShoppingItem
	for page := 1; ; page++ {
		filter.Page = page
		items, total, err := service.ListShoppingItems(userID, filter)
		if err != nil {
			InternalError(c, SafeErrorMessage(err, "查询数据失败"))
			return nil, false
		}
		all = append(all, items...)
		if int64(len(all)) >= total || len(items) == 0 {
			break
		}
	}
	return all, true
}

// ExportCSV 导出购物清单为 CSV
// @Summary 导出购物清单
// @Description 导出当前用户的购物清单为 CSV 文件，支持按时间段/状态筛选
// @Tags 导出
// @Produce text/csv
// @Security BearerAuth
// @Param timeline query string false "时间段筛选" Enums(Pre_Tet,During_Tet,After_Tet)
// @Param status query string false "状态筛选" Enums(Planning,Completed)
// @Success 200 {file} file "CSV 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	items, ok := collectItems(c, userID)
	if !ok {
		return
	}

	// 生成 CSV
	buf := new(bytes.Buffer)
	// 添加 BOM 以支持 Excel 中文显示
	buf.WriteString("\xEF\xBB\xBF")

	writer := csv.NewWriter(buf)

	// 写入表头
	headers := []string{"ID", "名称", "数量", "单价", "小计", "截止时间", "时间段", "状态", "创建时间"}
	if err := writer.Write(headers); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}

	// 写入数据
	for _, item := range items {
		row := []string{
			fmt.Sprintf("%d", item.ID),
			item.Name,
			fmt.Sprintf("%d", item.Quantity),
			fmt.Sprintf("%.2f", item.Price),
			fmt.Sprintf("%.2f", item.Price*float64(item.Quantity)),
			item.DuedTime.Format("2006-01-02 15:04:05"),
			item.Timeline,
			item.Status,
			item.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := writer.Write(row); err != nil {
			InternalError(c, "生成 CSV 失败")
			return
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		InternalError(c, "生成 CSV 失败")
		return
	}

	// 设置响应头
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename=shopping_items.csv")
	c.Header("Content-Length", fmt.Sprintf("%d", buf.Len()))

	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportExcel 导出购物清单为 Excel
// @Summary 导出购物清单为 Excel
// @Description 导出当前用户的购物清单为 xlsx 文件，支持按时间段/状态筛选
// @Tags 导出
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param timeline query string false "时间段筛选" Enums(Pre_Tet,During_Tet,After_Tet)
// @Param status query string false "状态筛选" Enums(Planning,Completed)
// @Success 200 {file} file "Excel 文件"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 401 {object} Response "未授权"
// @Router /api/v1/export/excel [get]
func (h *ExportHandler) ExportExcel(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	items, ok := collectItems(c, userID)
	if !ok {
		return
	}

	// 创建 Excel 文件
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "购物清单"
	f.SetSheetName("Sheet1", sheetName)

	// 设置表头样式
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"B91C1C"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})

	// 数据样式
	dataStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})

	// 设置列宽
	f.SetColWidth(sheetName, "A", "A", 10)
	f.SetColWidth(sheetName, "B", "B", 30)
	f.SetColWidth(sheetName, "C", "C", 10)
	f.SetColWidth(sheetName, "D", "E", 12)
	f.SetColWidth(sheetName, "F", "F", 20)
	f.SetColWidth(sheetName, "G", "H", 12)
	f.SetColWidth(sheetName, "I", "I", 20)

	// 写入表头
	headers := []string{"ID", "名称", "数量", "单价", "小计", "截止时间", "时间段", "状态", "创建时间"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	// 写入数据
	var totalAmount float64
	for i, item := range items {
		row := i + 2
		subtotal := item.Price * float64(item.Quantity)
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), item.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), item.Name)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), item.Quantity)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), item.Price)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), subtotal)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), item.DuedTime.Format("2006-01-02 15:04:05"))
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), item.Timeline)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), item.Status)
		f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), item.CreatedAt.Format("2006-01-02 15:04:05"))

		// 设置数据样式
		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("I%d", row), dataStyle)
		totalAmount += subtotal
	}

	// 添加汇总行
	summaryRow := len(items) + 2
	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"FFC000"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})

	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryRow), "合计")
	f.MergeCell(sheetName, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("D%d", summaryRow))
	f.SetCellValue(sheetName, fmt.Sprintf("E%d", summaryRow), totalAmount)
	f.SetCellValue(sheetName, fmt.Sprintf("F%d", summaryRow), fmt.Sprintf("共 %d 条记录", len(items)))
	f.MergeCell(sheetName, fmt.Sprintf("F%d", summaryRow), fmt.Sprintf("I%d", summaryRow))
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("I%d", summaryRow), summaryStyle)

	// 设置响应头
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''shopping_items.xlsx")

	// 写入响应
	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "生成 Excel 失败")
		return
	}
}
