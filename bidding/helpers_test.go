package bidding_test

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"drivebid/models"
)

func init() {
	// 將日誌輸出重定向到io.Discard
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// fakeClock 是可以手動撥動的時鐘
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// newAuction 建立一場測試用拍賣，時間窗為 [start, start+1h)
func newAuction(start time.Time, startingBid int64) models.Auction {
	return models.Auction{
		ID:          uuid.New(),
		VehicleID:   uuid.New(),
		StartTime:   start,
		EndTime:     start.Add(time.Hour),
		StartingBid: decimal.NewFromInt(startingBid),
		Status:      models.AuctionPending,
	}
}

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}
