// Package gormstore 以 gorm 實作出價引擎的儲存層合約
// 衝突保護採用拍賣資料列上的 version 欄位：提交時的 UPDATE 帶著讀取時的
// 版本做條件，影響零列即代表最高出價已被其他人更新
package gormstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"drivebid/bidding"
	"drivebid/models"
)

type Store struct {
	db *gorm.DB
}

// New 建立一個以 gorm 為後端的拍賣儲存實例
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// GetAuction 讀取拍賣，點查詢，不加鎖
func (s *Store) GetAuction(ctx context.Context, id uuid.UUID) (*models.Auction, error) {
	const op = "gormstore.GetAuction"

	var auction models.Auction
	if result := s.db.WithContext(ctx).First(&auction, "id = ?", id); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, bidding.ErrAuctionNotFound
		}
		return nil, fmt.Errorf("[%s] Fail to find auction, err=%w", op, result.Error)
	}
	return &auction, nil
}

// GetAuctionForUpdate 讀取拍賣並以 version 欄位作為版本憑證
func (s *Store) GetAuctionForUpdate(ctx context.Context, id uuid.UUID) (*models.Auction, bidding.VersionToken, error) {
	const op = "gormstore.GetAuctionForUpdate"

	var auction models.Auction
	if result := s.db.WithContext(ctx).First(&auction, "id = ?", id); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, 0, bidding.ErrAuctionNotFound
		}
		return nil, 0, fmt.Errorf("[%s] Fail to find auction for update, err=%w", op, result.Error)
	}
	return &auction, bidding.VersionToken(auction.Version), nil
}

// CommitBid 在單一交易內寫入出價並條件式更新拍賣的最高出價欄位
// 條件更新影響零列時回滾整個交易並回傳 ErrConflict，
// 出價寫入和拍賣更新永遠不會各自單獨生效
func (s *Store) CommitBid(ctx context.Context, bid *models.Bid, token bidding.VersionToken) error {
	const op = "gormstore.CommitBid"

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if result := tx.Create(bid); result.Error != nil {
			return fmt.Errorf("[%s] Fail to insert bid, err=%w", op, result.Error)
		}

		result := tx.Model(&models.Auction{}).
			Where("id = ? AND version = ?", bid.AuctionID, int64(token)).
			Updates(map[string]any{
				"current_highest_bid": bid.Amount,
				"highest_bidder_id":   bid.BidderID,
				"updated_at":          bid.PlacedAt,
				"version":             gorm.Expr("version + 1"),
			})
		if result.Error != nil {
			return fmt.Errorf("[%s] Fail to update auction highest bid, err=%w", op, result.Error)
		}
		if result.RowsAffected == 0 {
			// 版本憑證過期，回滾出價寫入
			return bidding.ErrConflict
		}
		return nil
	})
	return err
}
