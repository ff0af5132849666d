package bidding

import (
	"time"

	"drivebid/models"
)

// EffectiveStatus 由時間推導拍賣的有效狀態
// 資料庫中的 status 欄位對非取消的拍賣只是快取，一律以時間重新計算；
// 人工取消是終態，永遠優先
func EffectiveStatus(auction *models.Auction, now time.Time) models.AuctionStatus {
	if auction.Status == models.AuctionCancelled {
		return models.AuctionCancelled
	}
	switch {
	case now.Before(auction.StartTime):
		return models.AuctionPending
	case now.After(auction.EndTime):
		return models.AuctionEnded
	default:
		// 閉區間：now == StartTime 和 now == EndTime 都可出價
		return models.AuctionActive
	}
}

// IsBiddable 判斷拍賣目前是否可以出價
func IsBiddable(auction *models.Auction, now time.Time) bool {
	return EffectiveStatus(auction, now) == models.AuctionActive
}
