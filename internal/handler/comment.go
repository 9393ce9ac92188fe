package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Thecaracter/be-berita/internal/middleware"
	"github.com/Thecaracter/be-berita/internal/models"
	"github.com/Thecaracter/be-berita/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxCommentLength = 1000

type CommentHandler struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewCommentHandler(db *gorm.DB, log *zap.Logger) *CommentHandler {
	return &CommentHandler{DB: db, Log: log}
}

type commentResp struct {
	ID        uint      `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	User      gin.H     `json:"user"`
}

func (h *CommentHandler) toResp(cm models.Comment) commentResp {
	return commentResp{
		ID:        cm.ID,
		Content:   cm.Content,
		CreatedAt: cm.CreatedAt,
		UpdatedAt: cm.UpdatedAt,
		User: gin.H{
			"id":        cm.User.ID,
			"full_name": cm.User.FullName,
		},
	}
}

// List is public: anyone can read an article's comments, newest first.
func (h *CommentHandler) List(c *gin.Context) {
	articleURL := c.Query("article_url")
	if articleURL == "" {
		util.Error(c, http.StatusBadRequest, "article_url wajib diisi.")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	var total int64
	if err := h.DB.Model(&models.Comment{}).Where("article_url = ?", articleURL).Count(&total).Error; err != nil {
		h.Log.Error("count comments", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, "Internal server error.")
		return
	}

	var comments []models.Comment
	err := h.DB.Preload("User").
		Where("article_url = ?", articleURL).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&comments).Error
	if err != nil {
		h.Log.Error("list comments", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, "Internal server error.")
		return
	}

	resp := make([]commentResp, 0, len(comments))
	for _, cm := range comments {
		resp = append(resp, h.toResp(cm))
	}
	c.JSON(http.StatusOK, gin.H{
		"article_url": articleURL,
		"total":       total,
		"page":        page,
		"pageSize":    pageSize,
		"comments":    resp,
	})
}

type createCommentReq struct {
	ArticleURL string `json:"article_url"`
	Content    string `json:"content"`
}

func (h *CommentHandler) Create(c *gin.Context) {
	identity, _ := middleware.CurrentIdentity(c)

	var req createCommentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "Invalid request body.")
		return
	}
	content := strings.TrimSpace(req.Content)
	if req.ArticleURL == "" || content == "" {
		util.Error(c, http.StatusBadRequest, "article_url dan content wajib diisi.")
		return
	}
	if len(req.Content) > maxCommentLength {
		util.Error(c, http.StatusBadRequest, "Komentar maksimal 1000 karakter.")
		return
	}

	comment := models.Comment{
		UserID:     identity.UserID,
		ArticleURL: req.ArticleURL,
		Content:    content,
	}
	if err := h.DB.Create(&comment).Error; err != nil {
		h.Log.Error("create comment", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, "Internal server error.")
		return
	}
	if err := h.DB.Preload("User").First(&comment, comment.ID).Error; err != nil {
		h.Log.Error("reload comment", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, "Internal server error.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Komentar berhasil ditambahkan.",
		"comment": h.toResp(comment),
	})
}

// loadOwn fetches the comment and enforces that it belongs to the caller.
func (h *CommentHandler) loadOwn(c *gin.Context) (*models.Comment, bool) {
	identity, _ := middleware.CurrentIdentity(c)

	var comment models.Comment
	err := h.DB.First(&comment, "id = ?", c.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.Error(c, http.StatusNotFound, "Komentar tidak ditemukan.")
		return nil, false
	}
	if err != nil {
		h.Log.Error("load comment", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, "Internal server error.")
		return nil, false
	}
	if comment.UserID != identity.UserID {
		util.Error(c, http.StatusForbidden, "Kamu tidak bisa mengubah komentar orang lain.")
		return nil, false
	}
	return &comment, true
}

type updateCommentReq struct {
	Content string `json:"content"`
}

func (h *CommentHandler) Update(c *gin.Context) {
	var req updateCommentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "Invalid request body.")
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		util.Error(c, http.StatusBadRequest, "Komentar tidak boleh kosong.")
		return
	}
	if len(req.Content) > maxCommentLength {
		util.Error(c, http.StatusBadRequest, "Komentar maksimal 1000 karakter.")
		return
	}

	comment, ok := h.loadOwn(c)
	if !ok {
		return
	}

	if err := h.DB.Model(comment).Update("content", content).Error; err != nil {
		h.Log.Error("update comment", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, "Internal server error.")
		return
	}
	if err := h.DB.Preload("User").First(comment, comment.ID).Error; err != nil {
		h.Log.Error("reload comment", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, "Internal server error.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Komentar berhasil diupdate.",
		"comment": h.toResp(*comment),
	})
}

func (h *CommentHandler) Delete(c *gin.Context) {
	comment, ok := h.loadOwn(c)
	if !ok {
		return
	}

	if err := h.DB.Delete(comment).Error; err != nil {
		h.Log.Error("delete comment", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, "Internal server error.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Komentar berhasil dihapus."})
}
