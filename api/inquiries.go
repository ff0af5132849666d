package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"drivebid/adapters/auth"
	"drivebid/models"
)

type createInquiryRequest struct {
	Name    string  `json:"name" binding:"required"`
	Email   string  `json:"email" binding:"required,email"`
	Phone   *string `json:"phone"`
	Subject *string `json:"subject"`
	Message string  `json:"message" binding:"required"`
}

type updateInquiryStatusRequest struct {
	Status models.InquiryStatus `json:"status" binding:"required"`
}

type inquiryResponse struct {
	ID        uuid.UUID            `json:"id"`
	UserID    *uuid.UUID           `json:"userId,omitempty"`
	Name      string               `json:"name"`
	Email     string               `json:"email"`
	Phone     *string              `json:"phone,omitempty"`
	Subject   *string              `json:"subject,omitempty"`
	Message   string               `json:"message"`
	Status    models.InquiryStatus `json:"status"`
	CreatedAt time.Time            `json:"createdAt"`
}

func toInquiryResponse(inquiry *models.Inquiry) inquiryResponse {
	return inquiryResponse{
		ID:        inquiry.ID,
		UserID:    inquiry.UserID,
		Name:      inquiry.Name,
		Email:     inquiry.Email,
		Phone:     inquiry.Phone,
		Subject:   inquiry.Subject,
		Message:   inquiry.Message,
		Status:    inquiry.Status,
		CreatedAt: inquiry.CreatedAt,
	}
}

// Submit a customer inquiry
// (POST /inquiries)
func (impl *ServerImpl) PostInquiry(c *gin.Context) {
	const op = "PostInquiry"
	var request createInquiryRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid inquiry payload."})
		return
	}
	// 訪客也可以送出詢問，有登入就順便關聯使用者
	var userID *uuid.UUID
	if claims, ok := auth.ClaimsFrom(c); ok {
		userID = lo.ToPtr(claims.UserID)
	}
	// 詢問內容會回顯到後台頁面，全部先清理過
	inquiry := models.Inquiry{
		ID:      uuid.New(),
		UserID:  userID,
		Name:    impl.htmlChecker.Sanitize(strings.TrimSpace(request.Name)),
		Email:   strings.ToLower(strings.TrimSpace(request.Email)),
		Message: impl.htmlChecker.Sanitize(request.Message),
		Status:  models.InquiryNew,
	}
	if request.Phone != nil {
		inquiry.Phone = lo.ToPtr(impl.htmlChecker.Sanitize(*request.Phone))
	}
	if request.Subject != nil {
		inquiry.Subject = lo.ToPtr(impl.htmlChecker.Sanitize(*request.Subject))
	}
	if len(inquiry.Name) == 0 || len(inquiry.Message) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name and message must not be empty."})
		return
	}
	if result := impl.db.Create(&inquiry); result.Error != nil {
		abortServerError(c, op, result.Error)
		return
	}
	c.JSON(http.StatusCreated, toInquiryResponse(&inquiry))
}

// List inquiries
// (GET /inquiries)
func (impl *ServerImpl) GetInquiries(c *gin.Context) {
	const op = "GetInquiries"
	query := impl.db.Model(&models.Inquiry{})
	if status := models.InquiryStatus(c.Query("status")); status != "" {
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid inquiry status."})
			return
		}
		query = query.Where("status = ?", status)
	}
	var inquiries []models.Inquiry
	if result := query.Order("created_at DESC").Find(&inquiries); result.Error != nil {
		abortServerError(c, op, result.Error)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(inquiries),
		"inquiries": lo.Map(inquiries, func(inquiry models.Inquiry, _ int) inquiryResponse {
			return toInquiryResponse(&inquiry)
		}),
	})
}

// Update inquiry status
// (PUT /inquiries/:inquiryID/status)
func (impl *ServerImpl) PutInquiryStatus(c *gin.Context) {
	const op = "PutInquiryStatus"
	inquiryID, err := uuid.Parse(c.Param("inquiryID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid inquiry id."})
		return
	}
	var request updateInquiryStatusRequest
	if err := c.ShouldBindJSON(&request); err != nil || !request.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid inquiry status."})
		return
	}
	result := impl.db.Model(&models.Inquiry{}).Where("id = ?", inquiryID).Update("status", request.Status)
	if result.Error != nil {
		abortServerError(c, op, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Inquiry not found."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": inquiryID, "status": request.Status})
}

// Remove an inquiry
// (DELETE /inquiries/:inquiryID)
func (impl *ServerImpl) DeleteInquiry(c *gin.Context) {
	const op = "DeleteInquiry"
	inquiryID, err := uuid.Parse(c.Param("inquiryID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid inquiry id."})
		return
	}
	result := impl.db.Delete(&models.Inquiry{}, "id = ?", inquiryID)
	if result.Error != nil {
		abortServerError(c, op, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Inquiry not found."})
		return
	}
	c.Status(http.StatusNoContent)
}
