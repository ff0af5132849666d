package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Bid 代表拍賣的出價紀錄
// 出價是不可變的事實，建立之後不會被更新或刪除
type Bid struct {
	*gorm.Model

	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;<-:create"`
	AuctionID uuid.UUID       `gorm:"type:uuid;not null;<-:create"`
	BidderID  uuid.UUID       `gorm:"type:uuid;not null;<-:create"`
	Amount    decimal.Decimal `gorm:"type:numeric(12,2);not null;<-:create"`
	PlacedAt  time.Time       `gorm:"type:timestamp with time zone;not null;<-:create"`

	// 外鍵關聯
	Bidder  User `gorm:"foreignKey:BidderID"`
	Auction Auction
}
