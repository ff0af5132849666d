package bidding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"drivebid/models"
)

// DefaultMaxAttempts 是單次出價內部的最大嘗試次數
// 每次嘗試都會從最新狀態重新驗證，用盡後以 ErrConflict 回報
const DefaultMaxAttempts = 4

// Receipt 是出價被接受後的回執，內容與實際提交的值完全一致
type Receipt struct {
	BidID     uuid.UUID
	AuctionID uuid.UUID
	BidderID  uuid.UUID
	Amount    decimal.Decimal
	PlacedAt  time.Time
}

// Engine 驗證並提交出價
// 同一場拍賣的並發出價透過儲存層的版本憑證序列化，
// 引擎本身不持有任何跨請求的鎖
type Engine struct {
	store       Store
	clock       Clock
	logger      *slog.Logger
	maxAttempts int
}

type EngineOption func(*Engine)

// WithClock 設定引擎使用的時鐘
func WithClock(clock Clock) EngineOption {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithLogger 設定引擎使用的logger
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMaxAttempts 設定衝突重試的上限
func WithMaxAttempts(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxAttempts = n
		}
	}
}

// NewEngine 建立出價引擎
func NewEngine(store Store, opts ...EngineOption) *Engine {
	engine := &Engine{
		store:       store,
		clock:       SystemClock{},
		logger:      slog.Default(),
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(engine)
	}
	engine.logger = engine.logger.With(slog.String("caller", "BiddingEngine"))
	return engine
}

// PlaceBid 驗證並提交一筆出價
//
// 驗證依序進行，第一個失敗的檢查即終止，失敗的驗證不留下任何副作用：
//  1. 拍賣存在 → ErrAuctionNotFound
//  2. 拍賣可出價 → ErrAuctionNotActive
//  3. 金額為正 → ErrInvalidAmount
//  4. 金額嚴格大於底價 → BidTooLowError
//  5. 出價者不是目前最高出價者 → ErrAlreadyHighestBidder
//
// 提交以讀取時取得的版本憑證做衝突保護；若其他出價在這段期間先提交，
// 整個流程會從最新狀態重新驗證，最多 maxAttempts 次，之後回傳 ErrConflict。
// 儲存層的基礎設施錯誤會被包裝後傳遞，絕不會被當成出價被拒
func (e *Engine) PlaceBid(ctx context.Context, auctionID, bidderID uuid.UUID, amount decimal.Decimal) (Receipt, error) {
	const op = "PlaceBid"

	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		auction, token, err := e.store.GetAuctionForUpdate(ctx, auctionID)
		if err != nil {
			if errors.Is(err, ErrAuctionNotFound) {
				return Receipt{}, ErrAuctionNotFound
			}
			return Receipt{}, fmt.Errorf("[%s] Fail to read auction for update, err=%w", op, err)
		}

		now := e.clock.Now()
		if !IsBiddable(auction, now) {
			return Receipt{}, ErrAuctionNotActive
		}
		if !amount.IsPositive() {
			return Receipt{}, ErrInvalidAmount
		}
		floor := auction.Floor()
		if !amount.GreaterThan(floor) {
			return Receipt{}, &BidTooLowError{Minimum: floor}
		}
		if auction.HighestBidderID != nil && *auction.HighestBidderID == bidderID {
			return Receipt{}, ErrAlreadyHighestBidder
		}

		bid := &models.Bid{
			ID:        uuid.New(),
			AuctionID: auctionID,
			BidderID:  bidderID,
			Amount:    amount,
			PlacedAt:  now,
		}
		err = e.store.CommitBid(ctx, bid, token)
		if errors.Is(err, ErrConflict) {
			// 最高出價在讀取後被其他人更新，從最新狀態重新驗證
			e.logger.Debug("Bid commit conflicted, revalidating",
				slog.String("auctionID", auctionID.String()),
				slog.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return Receipt{}, fmt.Errorf("[%s] Fail to commit bid, err=%w", op, err)
		}

		e.logger.Info("Bid accepted",
			slog.String("auctionID", auctionID.String()),
			slog.String("bidderID", bidderID.String()),
			slog.String("amount", amount.String()))
		return Receipt{
			BidID:     bid.ID,
			AuctionID: bid.AuctionID,
			BidderID:  bid.BidderID,
			Amount:    bid.Amount,
			PlacedAt:  bid.PlacedAt,
		}, nil
	}

	e.logger.Warn("Bid retries exhausted under contention",
		slog.String("auctionID", auctionID.String()),
		slog.String("bidderID", bidderID.String()))
	return Receipt{}, ErrConflict
}
