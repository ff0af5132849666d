package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	internalS3 "drivebid/adapters/s3"
)

// maxImageSize 是單張車輛照片的大小上限
const maxImageSize = 5 << 20

// Upload a vehicle image
// (POST /images)
func (impl *ServerImpl) PostImage(c *gin.Context) {
	const op = "PostImage"
	// 限制圖片
	// 	1. 小於5MB
	// 	2. MIME類型為不包含腳本的圖片檔案
	body := internalS3.NewMaxSizeReader(c.Request.Body, maxImageSize)
	file, err := io.ReadAll(body)
	if errors.As(err, &internalS3.ErrReachLimitType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		abortServerError(c, op, err)
		return
	}
	mimeType := http.DetectContentType(file)
	secure, ext := internalS3.CheckSecureImageAndGetExtension(mimeType)
	if !secure {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid image type: %s", mimeType)})
		return
	}
	// 透過S3 API儲存圖片
	url, err := impl.s3Operator.UploadVehicleImage(c.Request.Context(), uuid.New().String()+"."+ext, mimeType, file)
	if err != nil {
		abortServerError(c, op, err)
		return
	}
	c.Header("Location", url)
	c.JSON(http.StatusCreated, gin.H{"url": url})
}
