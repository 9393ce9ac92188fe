package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Thecaracter/be-berita/internal/middleware"
	"github.com/Thecaracter/be-berita/internal/models"
	"github.com/Thecaracter/be-berita/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type BookmarkHandler struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewBookmarkHandler(db *gorm.DB, log *zap.Logger) *BookmarkHandler {
	return &BookmarkHandler{DB: db, Log: log}
}

type bookmarkResp struct {
	ID          uint           `json:"id"`
	ArticleURL  string         `json:"article_url"`
	ArticleData datatypes.JSON `json:"article_data"`
	CreatedAt   time.Time      `json:"created_at"`
}

func toBookmarkResp(b models.Bookmark) bookmarkResp {
	return bookmarkResp{
		ID:          b.ID,
		ArticleURL:  b.ArticleURL,
		ArticleData: b.ArticleData,
		CreatedAt:   b.CreatedAt,
	}
}

func (h *BookmarkHandler) List(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)

	var bookmarks []models.Bookmark
	if err := h.DB.Where("user_id = ?", identity.UserID).
		Order("created_at DESC").
		Find(&bookmarks).Error; err != nil {
		h.Log.Error("list bookmarks", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, "Internal server error.")
		return
	}

	resp := make([]bookmarkResp, 0, len(bookmarks))
	for _, b := range bookmarks {
		resp = append(resp, toBookmarkResp(b))
	}
	c.JSON(http.StatusOK, gin.H{"bookmarks": resp})
}

type createBookmarkReq struct {
	ArticleURL  string          `json:"article_url"`
	ArticleData json.RawMessage `json:"article_data"`
}

func (h *BookmarkHandler) Create(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)

	var req createBookmarkReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.ArticleURL == "" || len(req.ArticleData) == 0 {
		util.Error(c, http.StatusBadRequest, "article_url and article_data are required.")
		return
	}

	bookmark := models.Bookmark{
		UserID:      identity.UserID,
		ArticleURL:  req.ArticleURL,
		ArticleData: datatypes.JSON(req.ArticleData),
	}
	if err := h.DB.Create(&bookmark).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			util.Error(c, http.StatusConflict, "Article already bookmarked.")
			return
		}
		h.Log.Error("create bookmark", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, "Internal server error.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Article bookmarked.",
		"bookmark": toBookmarkResp(bookmark),
	})
}

func (h *BookmarkHandler) Delete(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)

	res := h.DB.Where("id = ? AND user_id = ?", c.Param("id"), identity.UserID).
		Delete(&models.Bookmark{})
	if res.Error != nil {
		h.Log.Error("delete bookmark", zap.Error(res.Error))
		util.Error(c, http.StatusInternalServerError, "Internal server error.")
		return
	}
	if res.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, "Bookmark not found.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Bookmark removed."})
}

type deleteByURLReq struct {
	ArticleURL string `json:"article_url"`
}

func (h *BookmarkHandler) DeleteByURL(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)

	var req deleteByURLReq
	if err := c.ShouldBindJSON(&req); err != nil || req.ArticleURL == "" {
		util.Error(c, http.StatusBadRequest, "article_url is required.")
		return
	}

	res := h.DB.Where("article_url = ? AND user_id = ?", req.ArticleURL, identity.UserID).
		Delete(&models.Bookmark{})
	if res.Error != nil {
		h.Log.Error("delete bookmark by url", zap.Error(res.Error))
		util.Error(c, http.StatusInternalServerError, "Internal server error.")
		return
	}
	if res.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, "Bookmark not found.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Bookmark removed."})
}
