package gormstore_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"drivebid/adapters/gormstore"
	"drivebid/bidding"
	"drivebid/models"
)

func setupTest(t *testing.T) (*gorm.DB, *gormstore.Store) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Auction{}, &models.Bid{}))
	return db, gormstore.New(db)
}

func seedAuction(t *testing.T, db *gorm.DB) models.Auction {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	auction := models.Auction{
		ID:          uuid.New(),
		VehicleID:   uuid.New(),
		StartTime:   start,
		EndTime:     start.Add(time.Hour),
		StartingBid: decimal.NewFromInt(1000),
		Status:      models.AuctionPending,
	}
	require.NoError(t, db.Create(&auction).Error)
	return auction
}

func TestGetAuctionNotFound(t *testing.T) {
	_, store := setupTest(t)

	_, err := store.GetAuction(context.Background(), uuid.New())
	assert.ErrorIs(t, err, bidding.ErrAuctionNotFound)

	_, _, err = store.GetAuctionForUpdate(context.Background(), uuid.New())
	assert.ErrorIs(t, err, bidding.ErrAuctionNotFound)
}

func TestCommitBidUpdatesAuctionAtomically(t *testing.T) {
	db, store := setupTest(t)
	auction := seedAuction(t, db)
	ctx := context.Background()

	read, token, err := store.GetAuctionForUpdate(ctx, auction.ID)
	require.NoError(t, err)
	assert.Nil(t, read.CurrentHighestBid)

	bidder := uuid.New()
	bid := &models.Bid{
		ID:        uuid.New(),
		AuctionID: auction.ID,
		BidderID:  bidder,
		Amount:    decimal.NewFromInt(1100),
		PlacedAt:  auction.StartTime.Add(time.Minute),
	}
	require.NoError(t, store.CommitBid(ctx, bid, token))

	// 最高出價欄位、出價者與版本在同一個提交中更新
	after, nextToken, err := store.GetAuctionForUpdate(ctx, auction.ID)
	require.NoError(t, err)
	require.NotNil(t, after.CurrentHighestBid)
	require.NotNil(t, after.HighestBidderID)
	assert.True(t, after.CurrentHighestBid.Equal(bid.Amount))
	assert.Equal(t, bidder, *after.HighestBidderID)
	assert.NotEqual(t, token, nextToken)

	var count int64
	require.NoError(t, db.Model(&models.Bid{}).Where("auction_id = ?", auction.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCommitBidStaleTokenRollsBackInsert(t *testing.T) {
	db, store := setupTest(t)
	auction := seedAuction(t, db)
	ctx := context.Background()

	_, token, err := store.GetAuctionForUpdate(ctx, auction.ID)
	require.NoError(t, err)

	first := &models.Bid{
		ID: uuid.New(), AuctionID: auction.ID, BidderID: uuid.New(),
		Amount: decimal.NewFromInt(1100), PlacedAt: auction.StartTime.Add(time.Minute),
	}
	require.NoError(t, store.CommitBid(ctx, first, token))

	// 帶著過期憑證提交：UPDATE 影響零列，整個交易回滾，
	// 出價資料列不得殘留
	second := &models.Bid{
		ID: uuid.New(), AuctionID: auction.ID, BidderID: uuid.New(),
		Amount: decimal.NewFromInt(1200), PlacedAt: auction.StartTime.Add(2 * time.Minute),
	}
	err = store.CommitBid(ctx, second, token)
	assert.ErrorIs(t, err, bidding.ErrConflict)

	var count int64
	require.NoError(t, db.Model(&models.Bid{}).Where("auction_id = ?", auction.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	after, err := store.GetAuction(ctx, auction.ID)
	require.NoError(t, err)
	assert.True(t, after.CurrentHighestBid.Equal(first.Amount))
}

func TestEngineOverGormStore(t *testing.T) {
	db, store := setupTest(t)
	auction := seedAuction(t, db)

	clock := &frozenClock{now: auction.StartTime.Add(time.Minute)}
	engine := bidding.NewEngine(store, bidding.WithClock(clock))

	receipt, err := engine.PlaceBid(context.Background(), auction.ID, uuid.New(), decimal.NewFromInt(1300))
	require.NoError(t, err)

	// 平手與自我加價都被引擎擋下，資料庫不寫入
	_, err = engine.PlaceBid(context.Background(), auction.ID, uuid.New(), decimal.NewFromInt(1300))
	var tooLow *bidding.BidTooLowError
	require.ErrorAs(t, err, &tooLow)
	assert.True(t, tooLow.Minimum.Equal(receipt.Amount))

	_, err = engine.PlaceBid(context.Background(), auction.ID, receipt.BidderID, decimal.NewFromInt(2000))
	assert.ErrorIs(t, err, bidding.ErrAlreadyHighestBidder)

	var count int64
	require.NoError(t, db.Model(&models.Bid{}).Where("auction_id = ?", auction.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

type frozenClock struct {
	now time.Time
}

func (c *frozenClock) Now() time.Time {
	return c.now
}
