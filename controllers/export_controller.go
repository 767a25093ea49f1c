// controllers/export_controller.go
package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"magacin_backend/app"
	"magacin_backend/config"
	"magacin_backend/feed"
	"magacin_backend/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ExportController：article 集合的表格导出/导入和 PDF 报表。
// 纯展示变换，业务规则都在网关里。
type ExportController struct{ *Srv }

func NewExportController(s *Srv) *ExportController { return &ExportController{Srv: s} }

const exportSheet = "Artikli"

// 列头沿用本地化叫法；导入时英文列名也认
var excelHeaders = []string{"Šifra", "Naziv", "Lokacija", "Projekat", "Dobavljač", "Cena", "Stanje", "Rezervisano", "Dostupno"}

// GET /api/export/articles.xlsx
func (ec *ExportController) ExportExcel(c *gin.Context) {
	articles, err := ec.Repo.ListArticles(c.Request.Context())
	if err != nil {
		c.JSON(persistenceStatus(err), app.H{"error": err.Error()})
		return
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	idx, err := f.NewSheet(exportSheet)
	if err != nil {
		c.JSON(http.StatusInternalServerError, app.H{"error": err.Error()})
		return
	}
	f.SetActiveSheet(idx)
	_ = f.DeleteSheet("Sheet1")

	for col, h := range excelHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(exportSheet, cell, h)
	}
	for i, a := range articles {
		row := i + 2
		price, _ := a.Price.Float64()
		values := []interface{}{a.Code, a.Name, a.Location, a.Project, a.Supplier, price, a.Quantity, a.Reserved, a.Available}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(exportSheet, cell, v)
		}
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename=magacin_artikli.xlsx`)
	if err := f.Write(c.Writer); err != nil {
		config.LogError(config.GetLogger(), "controllers", "ExportExcel", "write workbook", nil, err)
	}
}

// POST /api/import/articles —— multipart 上传同格式的表；逐行走网关的
// 创建路径（available 照常派生），返回成功/总数。
func (ec *ExportController) ImportExcel(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "missing file"})
		return
	}
	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	defer src.Close()

	f, err := excelize.OpenReader(src)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		c.JSON(http.StatusBadRequest, app.H{"error": "workbook has no sheets"})
		return
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if len(rows) < 2 {
		c.JSON(http.StatusBadRequest, app.H{"error": "no data rows"})
		return
	}

	colIdx := headerIndex(rows[0])
	imported, total := 0, 0
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		total++
		a := articleFromRow(row, colIdx)
		if a.Code == "" || a.Name == "" {
			continue
		}
		if err := ec.Repo.CreateArticle(c.Request.Context(), a); err != nil {
			continue
		}
		ec.publish(c.Request.Context(), models.ArticleTable, feed.ActionInsert, a.ID)
		imported++
	}

	c.JSON(http.StatusOK, app.H{"imported": imported, "total": total})
}

// headerIndex：表头 → 列号，塞尔维亚语和英文列名都接受。
func headerIndex(header []string) map[string]int {
	aliases := map[string]string{
		"šifra": "code", "code": "code",
		"naziv": "name", "name": "name",
		"lokacija": "location", "location": "location",
		"projekat": "project", "project": "project",
		"dobavljač": "supplier", "supplier": "supplier",
		"cena": "price", "price": "price",
		"stanje": "quantity", "quantity": "quantity",
		"rezervisano": "reserved", "reserved": "reserved",
	}
	out := map[string]int{}
	for i, h := range header {
		if k, ok := aliases[strings.ToLower(strings.TrimSpace(h))]; ok {
			out[k] = i
		}
	}
	return out
}

func cellAt(row []string, idx map[string]int, key string) string {
	i, ok := idx[key]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func articleFromRow(row []string, idx map[string]int) *models.Article {
	price, _ := strconv.ParseFloat(cellAt(row, idx, "price"), 64)
	qty, _ := strconv.Atoi(cellAt(row, idx, "quantity"))
	res, _ := strconv.Atoi(cellAt(row, idx, "reserved"))
	return &models.Article{
		ID:       uuid.NewString(),
		Code:     cellAt(row, idx, "code"),
		Name:     cellAt(row, idx, "name"),
		Location: cellAt(row, idx, "location"),
		Project:  cellAt(row, idx, "project"),
		Supplier: cellAt(row, idx, "supplier"),
		Price:    decimal.NewFromFloat(price),
		Quantity: qty,
		Reserved: res,
	}
}

// GET /api/export/articles.pdf —— 报表样式照旧：标题、日期、表格
func (ec *ExportController) ExportPDF(c *gin.Context) {
	articles, err := ec.Repo.ListArticles(c.Request.Context())
	if err != nil {
		c.JSON(persistenceStatus(err), app.H{"error": err.Error()})
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("cp1250") // Š/Đ/Ž/Č/Ć
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr("IZVEŠTAJ O ARTIKLIMA U MAGACINU"), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 6, tr("Datum izveštaja: ")+time.Now().Format("02.01.2006"), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	headers := []string{"Šifra", "Naziv", "Lokacija", "Stanje", "Rezervisano", "Dostupno", "Cena"}
	widths := []float64{25, 45, 25, 18, 25, 22, 25}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(44, 62, 80)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, tr(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(40, 40, 40)
	fill := false
	pdf.SetFillColor(245, 245, 245)
	for _, a := range articles {
		cells := []string{
			a.Code, a.Name, a.Location,
			strconv.Itoa(a.Quantity),
			strconv.Itoa(a.Reserved),
			strconv.Itoa(a.Available),
			a.Price.StringFixed(2) + " RSD",
		}
		for i, v := range cells {
			pdf.CellFormat(widths[i], 6, tr(v), "1", 0, "L", fill, 0, "")
		}
		pdf.Ln(-1)
		fill = !fill
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition",
		fmt.Sprintf(`attachment; filename=magacin_izvestaj_%s.pdf`, time.Now().Format("2006-01-02")))
	if err := pdf.Output(c.Writer); err != nil {
		config.LogError(config.GetLogger(), "controllers", "ExportPDF", "write report", nil, err)
	}
}
