package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VehicleStatus 代表車輛在市集中的狀態
type VehicleStatus string

const (
	VehicleAvailable         VehicleStatus = "available"
	VehicleAuctioning        VehicleStatus = "auctioning"
	VehicleSold              VehicleStatus = "sold"
	VehiclePendingInspection VehicleStatus = "pending_inspection"
)

// Valid 檢查車輛狀態是否為合法值
func (s VehicleStatus) Valid() bool {
	switch s {
	case VehicleAvailable, VehicleAuctioning, VehicleSold, VehiclePendingInspection:
		return true
	}
	return false
}

// Vehicle 代表市集中待售的車輛
// 價格一律使用精確十進位表示，不使用二進位浮點數
type Vehicle struct {
	gorm.Model

	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;<-:create"`
	Make          string          `gorm:"type:varchar(255);not null"`
	VehicleModel  string          `gorm:"type:varchar(255);not null;column:model"`
	Year          int32           `gorm:"type:integer;not null"`
	Price         decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Mileage       *int32          `gorm:"type:integer"`
	ExteriorColor *string         `gorm:"type:varchar(64)"`
	InteriorColor *string         `gorm:"type:varchar(64)"`
	Engine        *string         `gorm:"type:varchar(128)"`
	Transmission  *string         `gorm:"type:varchar(64)"`
	FuelType      *string         `gorm:"type:varchar(64)"`
	ImageURLs     []string        `gorm:"type:text[];default:'{}'"`
	Features      []string        `gorm:"type:text[];default:'{}'"`
	Description   *string         `gorm:"type:text"`
	Status        VehicleStatus   `gorm:"type:varchar(32);not null;default:'available'"`
	IsFeatured    bool            `gorm:"not null;default:false"`
}
