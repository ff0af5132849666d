package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AuctionStatus 代表拍賣的狀態
// pending/active/ended 由時間推導，資料庫欄位只是快取；
// cancelled 為人工操作，一旦設定即為終態
type AuctionStatus string

const (
	AuctionPending   AuctionStatus = "pending"
	AuctionActive    AuctionStatus = "active"
	AuctionEnded     AuctionStatus = "ended"
	AuctionCancelled AuctionStatus = "cancelled"
)

// Valid 檢查拍賣狀態是否為合法值
func (s AuctionStatus) Valid() bool {
	switch s {
	case AuctionPending, AuctionActive, AuctionEnded, AuctionCancelled:
		return true
	}
	return false
}

// Auction 代表一場限時的車輛拍賣
// CurrentHighestBid 與 HighestBidderID 必須同時為空或同時有值；
// Version 是樂觀鎖的版本欄位，每次成功出價遞增一次
type Auction struct {
	gorm.Model

	ID                uuid.UUID        `gorm:"type:uuid;primaryKey;<-:create"`
	VehicleID         uuid.UUID        `gorm:"type:uuid;not null;<-:create"`
	StartTime         time.Time        `gorm:"type:timestamp with time zone;not null"`
	EndTime           time.Time        `gorm:"type:timestamp with time zone;not null"`
	StartingBid       decimal.Decimal  `gorm:"type:numeric(12,2);not null"`
	CurrentHighestBid *decimal.Decimal `gorm:"type:numeric(12,2)"`
	HighestBidderID   *uuid.UUID       `gorm:"type:uuid"`
	Status            AuctionStatus    `gorm:"type:varchar(16);not null;default:'pending'"`
	Version           int64            `gorm:"not null;default:0"`

	// 外鍵關聯
	Vehicle       Vehicle
	HighestBidder *User `gorm:"foreignKey:HighestBidderID"`
	Bids          []Bid
}

// Floor 回傳新出價必須嚴格超過的底價：
// 目前最高出價，若尚無人出價則為起標價
func (a *Auction) Floor() decimal.Decimal {
	if a.CurrentHighestBid != nil {
		return *a.CurrentHighestBid
	}
	return a.StartingBid
}
