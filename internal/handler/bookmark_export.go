package handler

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Thecaracter/be-berita/internal/middleware"
	"github.com/Thecaracter/be-berita/internal/models"
	"github.com/Thecaracter/be-berita/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// articleMeta is the subset of the saved article snapshot worth exporting.
type articleMeta struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Source      string `json:"source"`
	PublishedAt string `json:"publishedAt"`
}

var exportHeaders = []string{"Title", "Description", "Source", "Published At", "URL", "Saved At"}

func exportRow(b models.Bookmark) []string {
	var meta articleMeta
	_ = json.Unmarshal(b.ArticleData, &meta)
	return []string{
		meta.Title,
		meta.Description,
		meta.Source,
		meta.PublishedAt,
		b.ArticleURL,
		b.CreatedAt.Format("2006-01-02"),
	}
}

func (h *BookmarkHandler) loadForExport(c *gin.Context) ([]models.Bookmark, bool) {
	identity, _ := middleware.CurrentIdentity(c)

	var bookmarks []models.Bookmark
	if err := h.DB.Where("user_id = ?", identity.UserID).
		Order("created_at DESC").
		Find(&bookmarks).Error; err != nil {
		h.Log.Error("load bookmarks for export", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, "Internal server error.")
		return nil, false
	}
	return bookmarks, true
}

// ExportCSV streams the caller's bookmarks as a CSV attachment.
func (h *BookmarkHandler) ExportCSV(c *gin.Context) {
	bookmarks, ok := h.loadForExport(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"bookmarks_%s.csv\"",
		time.Now().Format("20060102")))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeaders)
	for _, b := range bookmarks {
		writer.Write(exportRow(b))
	}
}

// ExportXLSX writes the caller's bookmarks as a spreadsheet attachment.
func (h *BookmarkHandler) ExportXLSX(c *gin.Context) {
	bookmarks, ok := h.loadForExport(c)
	if !ok {
		return
	}

	f := excelize.NewFile()
	sheetName := "Bookmarks"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Internal server error.")
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for i, header := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}
	for idx, b := range bookmarks {
		row := idx + 2
		for i, val := range exportRow(b) {
			f.SetCellValue(sheetName, fmt.Sprintf("%c%d", 'A'+i, row), val)
		}
	}

	f.SetColWidth(sheetName, "A", "B", 40)
	f.SetColWidth(sheetName, "C", "D", 16)
	f.SetColWidth(sheetName, "E", "E", 50)
	f.SetColWidth(sheetName, "F", "F", 12)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"bookmarks_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		h.Log.Error("write xlsx", zap.Error(err))
	}
}
