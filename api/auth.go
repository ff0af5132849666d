package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"drivebid/adapters/auth"
	"drivebid/models"
)

// minPasswordLength 是註冊時密碼的最低長度
const minPasswordLength = 8

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type userResponse struct {
	ID        uuid.UUID         `json:"id"`
	Username  string            `json:"username"`
	Email     string            `json:"email"`
	Role      models.Role       `json:"role"`
	Status    models.UserStatus `json:"status"`
	CreatedAt time.Time         `json:"createdAt"`
}

func toUserResponse(user *models.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		Status:    user.Status,
		CreatedAt: user.CreatedAt,
	}
}

// Register a new account
// (POST /auth/register)
func (impl *ServerImpl) PostAuthRegister(c *gin.Context) {
	const op = "PostAuthRegister"
	var request registerRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid registration payload."})
		return
	}
	// 檢查使用者名稱與密碼強度
	username := strings.TrimSpace(request.Username)
	if len(username) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username must not be empty."})
		return
	}
	if len(request.Password) < minPasswordLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 8 characters."})
		return
	}
	// 雜湊密碼並建立使用者
	passwordHash, err := auth.HashPassword(request.Password)
	if err != nil {
		abortServerError(c, op, err)
		return
	}
	user := models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        strings.ToLower(strings.TrimSpace(request.Email)),
		PasswordHash: passwordHash,
		Role:         models.RoleUser,
		Status:       models.UserActive,
	}
	if result := impl.db.Create(&user); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email is already registered."})
			return
		}
		abortServerError(c, op, result.Error)
		return
	}
	// 簽發存取權杖
	token, err := impl.issuer.Sign(&user, time.Now())
	if err != nil {
		abortServerError(c, op, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  toUserResponse(&user),
	})
}

// Exchange credentials for an access token
// (POST /auth/login)
func (impl *ServerImpl) PostAuthLogin(c *gin.Context) {
	const op = "PostAuthLogin"
	var request loginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid login payload."})
		return
	}
	// 查詢使用者，帳號不存在和密碼錯誤回應相同訊息
	var user models.User
	result := impl.db.Where("email = ?", strings.ToLower(strings.TrimSpace(request.Email))).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password."})
			return
		}
		abortServerError(c, op, result.Error)
		return
	}
	if !auth.VerifyPassword(request.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password."})
		return
	}
	// 停用的帳號不允許登入
	if user.Status != models.UserActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is inactive."})
		return
	}
	token, err := impl.issuer.Sign(&user, time.Now())
	if err != nil {
		abortServerError(c, op, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  toUserResponse(&user),
	})
}
