package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"drivebid/models"
)

// contextKeyClaims 是 gin context 中存放身份資訊的鍵
const contextKeyClaims = "auth_claims"

// Authenticate 解析 Authorization header 並把身份注入 gin context
// 沒有提供權杖的請求會原樣放行，由後續的 RequireUser/RequireAdmin 決定
// 是否拒絕；提供了但無效的權杖直接以 401 終止
func Authenticate(issuer *Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required."})
			return
		}
		claims, err := issuer.ParseAndValidate(tokenString)
		if err != nil {
			slog.Warn("Token validation failed", slog.Any("error", err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token."})
			return
		}
		c.Set(contextKeyClaims, claims)
		c.Next()
	}
}

// RequireUser 要求請求帶有已驗證的身份
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := ClaimsFrom(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required."})
			return
		}
		c.Next()
	}
}

// RequireAdmin 要求請求帶有已驗證的管理員身份
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required."})
			return
		}
		if claims.Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied."})
			return
		}
		c.Next()
	}
}

// ClaimsFrom 從 gin context 取出已驗證的身份
func ClaimsFrom(c *gin.Context) (*Claims, bool) {
	value, exists := c.Get(contextKeyClaims)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*Claims)
	return claims, ok
}
