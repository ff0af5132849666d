package bidding

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"drivebid/models"
)

// MemoryStore 是 Store 的並發安全記憶體實作
// 用於測試與本地開發，不做持久化
type MemoryStore struct {
	mu       sync.RWMutex
	auctions map[uuid.UUID]*auctionState
}

type auctionState struct {
	auction models.Auction
	version int64
	bids    []models.Bid
}

// NewMemoryStore 建立一個新的記憶體儲存實例
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		auctions: make(map[uuid.UUID]*auctionState),
	}
}

// PutAuction 寫入或覆蓋一場拍賣，版本歸零
func (s *MemoryStore) PutAuction(auction models.Auction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auctions[auction.ID] = &auctionState{auction: auction}
}

// GetAuction 讀取拍賣的副本
func (s *MemoryStore) GetAuction(ctx context.Context, id uuid.UUID) (*models.Auction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.auctions[id]
	if !ok {
		return nil, ErrAuctionNotFound
	}
	auction := cloneAuction(state.auction)
	return &auction, nil
}

// GetAuctionForUpdate 讀取拍賣的副本並回傳目前的版本憑證
func (s *MemoryStore) GetAuctionForUpdate(ctx context.Context, id uuid.UUID) (*models.Auction, VersionToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.auctions[id]
	if !ok {
		return nil, 0, ErrAuctionNotFound
	}
	auction := cloneAuction(state.auction)
	return &auction, VersionToken(state.version), nil
}

// CommitBid 在鎖內檢查版本憑證後寫入出價並更新最高出價欄位
// 憑證過期時回傳 ErrConflict，不留下任何狀態
func (s *MemoryStore) CommitBid(ctx context.Context, bid *models.Bid, token VersionToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.auctions[bid.AuctionID]
	if !ok {
		return ErrAuctionNotFound
	}
	if state.version != int64(token) {
		return ErrConflict
	}

	amount := bid.Amount
	bidder := bid.BidderID
	state.bids = append(state.bids, *bid)
	state.auction.CurrentHighestBid = &amount
	state.auction.HighestBidderID = &bidder
	state.auction.UpdatedAt = bid.PlacedAt
	state.version++
	return nil
}

// Bids 回傳拍賣的出價紀錄副本，依寫入順序排列
func (s *MemoryStore) Bids(auctionID uuid.UUID) []models.Bid {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.auctions[auctionID]
	if !ok {
		return nil
	}
	return append([]models.Bid(nil), state.bids...)
}

// cloneAuction 深拷貝指標欄位，避免呼叫端與儲存層共享可變狀態
func cloneAuction(auction models.Auction) models.Auction {
	if auction.CurrentHighestBid != nil {
		amount := *auction.CurrentHighestBid
		auction.CurrentHighestBid = &amount
	}
	if auction.HighestBidderID != nil {
		bidder := *auction.HighestBidderID
		auction.HighestBidderID = &bidder
	}
	return auction
}
