package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Thecaracter/be-berita/internal/news"
	"github.com/Thecaracter/be-berita/internal/util"

	"github.com/gin-gonic/gin"
)

type NewsHandler struct {
	Client *news.Client
}

func NewNewsHandler(client *news.Client) *NewsHandler {
	return &NewsHandler{Client: client}
}

func pageParams(c *gin.Context) (page, pageSize int, sortBy string) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	sortBy = c.DefaultQuery("sortBy", "publishedAt")
	return page, pageSize, sortBy
}

func writeNews(c *gin.Context, data []byte, nerr *news.Error) {
	if nerr != nil {
		util.Error(c, nerr.Status, nerr.Message)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

func (h *NewsHandler) Browse(c *gin.Context) {
	page, pageSize, sortBy := pageParams(c)
	data, nerr := h.Client.Browse(c.Request.Context(), page, pageSize, sortBy)
	writeNews(c, data, nerr)
}

func (h *NewsHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		util.Error(c, http.StatusBadRequest, `Parameter "q" wajib diisi.`)
		return
	}
	page, pageSize, sortBy := pageParams(c)
	data, nerr := h.Client.Search(c.Request.Context(), q, page, pageSize, sortBy)
	writeNews(c, data, nerr)
}

func (h *NewsHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": news.SupportedCategories})
}

func (h *NewsHandler) Category(c *gin.Context) {
	category := strings.ToLower(c.Param("category"))
	page, pageSize, sortBy := pageParams(c)
	data, nerr := h.Client.Category(c.Request.Context(), category, page, pageSize, sortBy)
	writeNews(c, data, nerr)
}
