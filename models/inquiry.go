package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InquiryStatus 代表客戶詢問的處理狀態
type InquiryStatus string

const (
	InquiryNew        InquiryStatus = "new"
	InquiryInProgress InquiryStatus = "in_progress"
	InquiryResolved   InquiryStatus = "resolved"
	InquiryClosed     InquiryStatus = "closed"
)

// Valid 檢查詢問狀態是否為合法值
func (s InquiryStatus) Valid() bool {
	switch s {
	case InquiryNew, InquiryInProgress, InquiryResolved, InquiryClosed:
		return true
	}
	return false
}

// Inquiry 代表客戶的詢問
// 未註冊的訪客也可以送出詢問，因此 UserID 可以為空
type Inquiry struct {
	gorm.Model

	ID      uuid.UUID     `gorm:"type:uuid;primaryKey;<-:create"`
	UserID  *uuid.UUID    `gorm:"type:uuid;<-:create"`
	Name    string        `gorm:"type:varchar(255);not null"`
	Email   string        `gorm:"type:varchar(255);not null"`
	Phone   *string       `gorm:"type:varchar(64)"`
	Subject *string       `gorm:"type:varchar(255)"`
	Message string        `gorm:"type:text;not null"`
	Status  InquiryStatus `gorm:"type:varchar(16);not null;default:'new'"`

	// 外鍵關聯
	User *User `gorm:"foreignKey:UserID"`
}
