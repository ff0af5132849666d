package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"drivebid/adapters/auth"
	"drivebid/models"
)

type updateProfileRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

type updateRoleRequest struct {
	Role models.Role `json:"role" binding:"required"`
}

// Get current user profile
// (GET /users/me)
func (impl *ServerImpl) GetUserMe(c *gin.Context) {
	const op = "GetUserMe"
	claims, _ := auth.ClaimsFrom(c)
	var user models.User
	if result := impl.db.First(&user, "id = ?", claims.UserID); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found."})
			return
		}
		abortServerError(c, op, result.Error)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(&user))
}

// Update current user profile
// (PUT /users/me)
func (impl *ServerImpl) PutUserMe(c *gin.Context) {
	const op = "PutUserMe"
	claims, _ := auth.ClaimsFrom(c)
	var request updateProfileRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile payload."})
		return
	}
	updates := map[string]any{}
	if request.Username != nil {
		username := strings.TrimSpace(*request.Username)
		if len(username) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username must not be empty."})
			return
		}
		updates["username"] = username
	}
	if request.Password != nil {
		if len(*request.Password) < minPasswordLength {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 8 characters."})
			return
		}
		passwordHash, err := auth.HashPassword(*request.Password)
		if err != nil {
			abortServerError(c, op, err)
			return
		}
		updates["password_hash"] = passwordHash
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update."})
		return
	}
	result := impl.db.Model(&models.User{}).Where("id = ?", claims.UserID).Updates(updates)
	if result.Error != nil {
		abortServerError(c, op, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found."})
		return
	}
	var user models.User
	if result := impl.db.First(&user, "id = ?", claims.UserID); result.Error != nil {
		abortServerError(c, op, result.Error)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(&user))
}

// List all users
// (GET /users)
func (impl *ServerImpl) GetUsers(c *gin.Context) {
	const op = "GetUsers"
	var users []models.User
	if result := impl.db.Order("created_at DESC").Find(&users); result.Error != nil {
		abortServerError(c, op, result.Error)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(users),
		"users": lo.Map(users, func(user models.User, _ int) userResponse {
			return toUserResponse(&user)
		}),
	})
}

// Get a user by id
// (GET /users/:userID)
func (impl *ServerImpl) GetUser(c *gin.Context) {
	const op = "GetUser"
	userID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id."})
		return
	}
	var user models.User
	if result := impl.db.First(&user, "id = ?", userID); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found."})
			return
		}
		abortServerError(c, op, result.Error)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(&user))
}

// Change a user's role
// (PUT /users/:userID/role)
func (impl *ServerImpl) PutUserRole(c *gin.Context) {
	const op = "PutUserRole"
	userID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id."})
		return
	}
	var request updateRoleRequest
	if err := c.ShouldBindJSON(&request); err != nil || !request.Role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role."})
		return
	}
	// 管理員不能撤銷自己的權限，避免把系統鎖死
	claims, _ := auth.ClaimsFrom(c)
	if claims.UserID == userID && request.Role != models.RoleAdmin {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot demote yourself."})
		return
	}
	result := impl.db.Model(&models.User{}).Where("id = ?", userID).Update("role", request.Role)
	if result.Error != nil {
		abortServerError(c, op, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": userID, "role": request.Role})
}
