package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// abortServerError 記錄基礎設施錯誤並回應 500
// 錯誤細節只進log，不外洩給客戶端
func abortServerError(c *gin.Context, op string, err error) {
	slog.Error("Request failed", slog.String("op", op), slog.Any("error", err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error."})
}
