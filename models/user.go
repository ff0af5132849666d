package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role 代表使用者的角色，使用封閉的列舉型別而不是裸字串比較，
// 避免拼字錯誤造成的權限判斷問題
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid 檢查角色是否為合法值
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// UserStatus 代表使用者帳號的狀態
type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserInactive UserStatus = "inactive"
)

// Valid 檢查帳號狀態是否為合法值
func (s UserStatus) Valid() bool {
	return s == UserActive || s == UserInactive
}

// User 代表市集中的使用者
// 包含基本的帳號資訊、密碼雜湊與角色
type User struct {
	gorm.Model

	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;<-:create"`
	Username     string     `gorm:"type:varchar(255);not null"`
	Email        string     `gorm:"type:varchar(255);uniqueIndex:idx_users_email,where:deleted_at IS NULL;not null"`
	PasswordHash string     `gorm:"type:text;not null"`
	Role         Role       `gorm:"type:varchar(16);not null;default:'user'"`
	Status       UserStatus `gorm:"type:varchar(16);not null;default:'active'"`
}
