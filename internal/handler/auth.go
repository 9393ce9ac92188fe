package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Thecaracter/be-berita/internal/mail"
	"github.com/Thecaracter/be-berita/internal/middleware"
	"github.com/Thecaracter/be-berita/internal/models"
	"github.com/Thecaracter/be-berita/internal/otp"
	"github.com/Thecaracter/be-berita/internal/token"
	"github.com/Thecaracter/be-berita/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AuthHandler implements registration, the login/OTP flows, session logout
// and password reset.
type AuthHandler struct {
	DB         *gorm.DB
	Tokens     *token.Service
	OTP        *otp.Ledger
	Mailer     mail.Mailer
	BcryptCost int
	Log        *zap.Logger
}

func NewAuthHandler(db *gorm.DB, tokens *token.Service, ledger *otp.Ledger, mailer mail.Mailer, bcryptCost int, log *zap.Logger) *AuthHandler {
	if bcryptCost <= 0 {
		bcryptCost = 12
	}
	return &AuthHandler{
		DB:         db,
		Tokens:     tokens,
		OTP:        ledger,
		Mailer:     mailer,
		BcryptCost: bcryptCost,
		Log:        log,
	}
}

// loginState names the two terminal outcomes of a password login. The OTP
// step-up is an explicit state, not an implicit flag check, so that no branch
// can issue a session before verification.
type loginState int

const (
	loginStateOTPPending loginState = iota
	loginStateSessionIssued
)

// ---------- register ----------

type registerReq struct {
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "Invalid request body.")
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)
	if req.FullName == "" || req.Email == "" || req.Password == "" || req.ConfirmPassword == "" {
		util.Error(c, http.StatusBadRequest, "All fields are required.")
		return
	}
	if !util.ValidEmail(req.Email) {
		util.Error(c, http.StatusBadRequest, "Invalid email format.")
		return
	}
	if !util.ValidPassword(req.Password) {
		util.Error(c, http.StatusBadRequest, "Password must be at least 8 characters and contain letters and numbers.")
		return
	}
	if req.Password != req.ConfirmPassword {
		util.Error(c, http.StatusBadRequest, "Passwords do not match.")
		return
	}

	email := strings.ToLower(req.Email)

	var count int64
	if err := h.DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, "Internal server error.")
		return
	}
	if count > 0 {
		util.Error(c, http.StatusConflict, "Email already registered.")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.BcryptCost)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Internal server error.")
		return
	}

	user := models.User{
		FullName:     req.FullName,
		Email:        email,
		PasswordHash: string(hash),
		IsFirstLogin: true,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		// two concurrent registrations can race past the count check
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			util.Error(c, http.StatusConflict, "Email already registered.")
			return
		}
		h.Log.Error("create user", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, "Internal server error.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful. Please log in.",
		"user":    user.Public(),
	})
}

// ---------- login ----------

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.Email == "" || req.Password == "" {
		util.Error(c, http.StatusBadRequest, "Email and password are required.")
		return
	}

	var user models.User
	err := h.DB.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// same answer as a wrong password, to block enumeration
		util.Error(c, http.StatusUnauthorized, "Invalid email or password.")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Internal server error.")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		util.Error(c, http.StatusUnauthorized, "Invalid email or password.")
		return
	}

	state := loginStateSessionIssued
	if user.IsFirstLogin {
		state = loginStateOTPPending
	}

	switch state {
	case loginStateOTPPending:
		code, err := h.OTP.Issue(user.ID, models.OTPPurposeLogin)
		if err != nil {
			h.Log.Error("issue login otp", zap.Error(err))
			util.Error(c, http.StatusInternalServerError, "Internal server error.")
			return
		}
		if err := h.Mailer.SendOTP(user.Email, user.FullName, code, models.OTPPurposeLogin); err != nil {
			h.Log.Error("send login otp", zap.Error(err))
			util.Error(c, http.StatusInternalServerError, "Internal server error.")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":      "OTP sent to your email.",
			"needsOtp":     true,
			"userId":       user.ID,
			"isFirstLogin": true,
		})

	case loginStateSessionIssued:
		accessToken, err := h.issueSession(c, &user)
		if err != nil {
			h.Log.Error("issue session", zap.Error(err))
			util.Error(c, http.StatusInternalServerError, "Internal server error.")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":     "Login successful.",
			"accessToken": accessToken,
			"user":        user.Public(),
		})
	}
}

// issueSession mints an identity token and upserts the session row keyed on
// user id. The upsert is the single-device cutover: whatever token the old
// row fingerprinted is dead from here on.
func (h *AuthHandler) issueSession(c *gin.Context, user *models.User) (string, error) {
	accessToken, err := h.Tokens.SignIdentity(token.Identity{
		UserID:   user.ID,
		Email:    user.Email,
		FullName: user.FullName,
	})
	if err != nil {
		return "", err
	}

	device := c.Request.UserAgent()
	if device == "" {
		device = "Unknown"
	}

	session := models.Session{
		UserID:     user.ID,
		TokenHash:  token.Hash(accessToken),
		DeviceInfo: device,
	}
	err = h.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"token_hash", "device_info", "updated_at"}),
	}).Create(&session).Error
	if err != nil {
		return "", err
	}
	return accessToken, nil
}

// ---------- verify-otp ----------

type verifyOTPReq struct {
	UserID string `json:"userId"`
	OTP    string `json:"otp"`
	Type   string `json:"type"`
}

func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req verifyOTPReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.UserID == "" || req.OTP == "" {
		util.Error(c, http.StatusBadRequest, "userId and otp are required.")
		return
	}
	if req.Type == "" {
		req.Type = models.OTPPurposeLogin
	}
	if !util.ValidOTP(req.OTP) {
		util.Error(c, http.StatusBadRequest, "OTP must be 4 digits.")
		return
	}

	switch err := h.OTP.Verify(req.UserID, req.OTP, req.Type); {
	case err == nil:
	case errors.Is(err, otp.ErrExpired):
		util.Error(c, http.StatusGone, "OTP expired, please request a new one.")
		return
	case errors.Is(err, otp.ErrNoActiveCode):
		util.Error(c, http.StatusBadRequest, "No active OTP found. Please request a new one.")
		return
	case errors.Is(err, otp.ErrMismatch):
		util.Error(c, http.StatusBadRequest, "Invalid OTP code.")
		return
	default:
		h.Log.Error("verify otp", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, "Internal server error.")
		return
	}

	var user models.User
	if err := h.DB.Where("id = ?", req.UserID).First(&user).Error; err != nil {
		util.Error(c, http.StatusNotFound, "User not found.")
		return
	}

	if req.Type == models.OTPPurposeResetPassword {
		resetToken, err := h.Tokens.SignReset(user.ID)
		if err != nil {
			util.Error(c, http.StatusInternalServerError, "Internal server error.")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "OTP verified.", "resetToken": resetToken})
		return
	}

	if user.IsFirstLogin {
		if err := h.DB.Model(&user).Update("is_first_login", false).Error; err != nil {
			h.Log.Error("clear first login flag", zap.Error(err))
			util.Error(c, http.StatusInternalServerError, "Internal server error.")
			return
		}
	}

	accessToken, err := h.issueSession(c, &user)
	if err != nil {
		h.Log.Error("issue session", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, "Internal server error.")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "Login successful.",
		"accessToken": accessToken,
		"user":        user.Public(),
	})
}

// ---------- resend-otp ----------

type resendOTPReq struct {
	UserID string `json:"userId"`
	Type   string `json:"type"`
}

func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req resendOTPReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.UserID == "" {
		util.Error(c, http.StatusBadRequest, "userId is required.")
		return
	}
	if req.Type == "" {
		req.Type = models.OTPPurposeLogin
	}

	ok, remaining, err := h.OTP.CanResend(req.UserID, req.Type)
	if err != nil {
		h.Log.Error("otp cooldown check", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, "Internal server error.")
		return
	}
	if !ok {
		util.ErrorRetryAfter(c, http.StatusTooManyRequests, "Please wait before requesting a new OTP.", remaining)
		return
	}

	var user models.User
	if err := h.DB.Where("id = ?", req.UserID).First(&user).Error; err != nil {
		util.Error(c, http.StatusNotFound, "User not found.")
		return
	}

	code, err := h.OTP.Issue(user.ID, req.Type)
	if err != nil {
		h.Log.Error("reissue otp", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, "Internal server error.")
		return
	}
	if err := h.Mailer.SendOTP(user.Email, user.FullName, code, req.Type); err != nil {
		h.Log.Error("send otp", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, "Internal server error.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "OTP resent successfully."})
}

// ---------- logout / account / me ----------

// Logout drops the caller's session row. Deleting an absent row is fine: the
// endpoint is idempotent.
func (h *AuthHandler) Logout(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, "Missing or invalid authorization header.")
		return
	}

	if err := h.DB.Where("user_id = ?", identity.UserID).Delete(&models.Session{}).Error; err != nil {
		h.Log.Error("delete session", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, "Internal server error.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully."})
}

// DeleteAccount removes the user row; sessions, bookmarks, likes and comments
// go with it through the cascade constraints.
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, "Missing or invalid authorization header.")
		return
	}

	if err := h.DB.Where("id = ?", identity.UserID).Delete(&models.User{}).Error; err != nil {
		h.Log.Error("delete account", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, "Internal server error.")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Account deleted successfully. All your data (bookmarks, comments, likes) have been removed.",
	})
}

func (h *AuthHandler) Me(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, "Missing or invalid authorization header.")
		return
	}

	var user models.User
	if err := h.DB.Where("id = ?", identity.UserID).First(&user).Error; err != nil {
		util.Error(c, http.StatusNotFound, "User not found.")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":             user.ID,
			"full_name":      user.FullName,
			"email":          user.Email,
			"is_first_login": user.IsFirstLogin,
			"created_at":     user.CreatedAt,
		},
	})
}

// ---------- forgot / reset password ----------

type forgotPasswordReq struct {
	Email string `json:"email"`
}

// ForgotPassword answers 200 whether or not the email exists; the userId is
// null for unknown emails and nothing is written or sent in that case.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.Email == "" {
		util.Error(c, http.StatusBadRequest, "Email is required.")
		return
	}

	var user models.User
	err := h.DB.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusOK, gin.H{
			"message": "If this email is registered, an OTP has been sent.",
			"userId":  nil,
		})
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Internal server error.")
		return
	}

	code, err := h.OTP.Issue(user.ID, models.OTPPurposeResetPassword)
	if err != nil {
		h.Log.Error("issue reset otp", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, "Internal server error.")
		return
	}
	if err := h.Mailer.SendOTP(user.Email, user.FullName, code, models.OTPPurposeResetPassword); err != nil {
		h.Log.Error("send reset otp", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, "Internal server error.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "OTP sent to your email.",
		"userId":  user.ID,
	})
}

type resetPasswordReq struct {
	ResetToken      string `json:"resetToken"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ResetPassword requires a reset-purpose token; identity tokens are rejected.
// A successful reset logs the user out everywhere.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.ResetToken == "" || req.NewPassword == "" || req.ConfirmPassword == "" {
		util.Error(c, http.StatusBadRequest, "All fields are required.")
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		util.Error(c, http.StatusBadRequest, "Passwords do not match.")
		return
	}
	if !util.ValidPassword(req.NewPassword) {
		util.Error(c, http.StatusBadRequest, "Password must be at least 8 characters and contain letters and numbers.")
		return
	}

	userID, err := h.Tokens.ParseReset(req.ResetToken)
	if err != nil {
		util.Error(c, http.StatusUnauthorized, "Invalid or expired reset token.")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), h.BcryptCost)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "Internal server error.")
		return
	}

	if err := h.DB.Model(&models.User{}).Where("id = ?", userID).Update("password_hash", string(hash)).Error; err != nil {
		h.Log.Error("update password", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, "Internal server error.")
		return
	}

	// global logout: every session dies with the old password
	if err := h.DB.Where("user_id = ?", userID).Delete(&models.Session{}).Error; err != nil {
		h.Log.Error("delete sessions after reset", zap.Error(err))
		util.Error(c, http.StatusInternalServerError, "Internal server error.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully. Please log in."})
}
