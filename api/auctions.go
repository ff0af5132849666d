package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"drivebid/adapters/auth"
	"drivebid/bidding"
	"drivebid/models"
)

// eventsEarlyWindow 是拍賣開始前開放 SSE 連線的提前量
const eventsEarlyWindow = 5 * time.Minute

type createAuctionRequest struct {
	VehicleID   uuid.UUID       `json:"vehicleId" binding:"required"`
	StartTime   time.Time       `json:"startTime" binding:"required"`
	EndTime     time.Time       `json:"endTime" binding:"required"`
	StartingBid decimal.Decimal `json:"startingBid" binding:"required"`
}

type updateAuctionRequest struct {
	StartTime   *time.Time            `json:"startTime"`
	EndTime     *time.Time            `json:"endTime"`
	StartingBid *decimal.Decimal      `json:"startingBid"`
	Status      *models.AuctionStatus `json:"status"`
}

type placeBidRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

type bidResponse struct {
	ID       uuid.UUID       `json:"id"`
	Amount   decimal.Decimal `json:"amount"`
	Bidder   string          `json:"bidder"`
	PlacedAt time.Time       `json:"placedAt"`
}

type auctionResponse struct {
	ID                uuid.UUID            `json:"id"`
	VehicleID         uuid.UUID            `json:"vehicleId"`
	Vehicle           *vehicleResponse     `json:"vehicle,omitempty"`
	StartTime         time.Time            `json:"startTime"`
	EndTime           time.Time            `json:"endTime"`
	StartingBid       decimal.Decimal      `json:"startingBid"`
	CurrentHighestBid *decimal.Decimal     `json:"currentHighestBid,omitempty"`
	HighestBidder     *string              `json:"highestBidder,omitempty"`
	Status            models.AuctionStatus `json:"status"`
	Bids              []bidResponse        `json:"bids,omitempty"`
}

// toAuctionResponse 組出拍賣的回應內容
// 回應中的狀態一律由時鐘即時推導，不直接信任資料庫欄位
func toAuctionResponse(auction *models.Auction, now time.Time) auctionResponse {
	response := auctionResponse{
		ID:                auction.ID,
		VehicleID:         auction.VehicleID,
		StartTime:         auction.StartTime,
		EndTime:           auction.EndTime,
		StartingBid:       auction.StartingBid,
		CurrentHighestBid: auction.CurrentHighestBid,
		Status:            bidding.EffectiveStatus(auction, now),
	}
	if auction.Vehicle.ID != uuid.Nil {
		response.Vehicle = lo.ToPtr(toVehicleResponse(&auction.Vehicle))
	}
	if auction.HighestBidder != nil {
		response.HighestBidder = lo.ToPtr(auction.HighestBidder.Username)
	}
	return response
}

// List auctions
// (GET /auctions)
func (impl *ServerImpl) GetAuctions(c *gin.Context) {
	const op = "GetAuctions"
	now := time.Now()
	// 預設只列出進行中的拍賣
	query := impl.db.Preload("Vehicle").Preload("HighestBidder").
		Where("status <> ?", models.AuctionCancelled)
	if c.Query("includeEnded") != "true" {
		query = query.Where("start_time <= ? AND end_time >= ?", now, now)
	}
	var auctions []models.Auction
	if result := query.Order("start_time ASC").Find(&auctions); result.Error != nil {
		abortServerError(c, op, result.Error)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(auctions),
		"auctions": lo.Map(auctions, func(auction models.Auction, _ int) auctionResponse {
			return toAuctionResponse(&auction, now)
		}),
	})
}

// Get auction details with bid history
// (GET /auctions/:auctionID)
func (impl *ServerImpl) GetAuction(c *gin.Context) {
	const op = "GetAuction"
	auctionID, err := uuid.Parse(c.Param("auctionID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid auction id."})
		return
	}
	var auction models.Auction
	result := impl.db.
		Preload("Vehicle").
		Preload("HighestBidder").
		Preload("Bids", func(db *gorm.DB) *gorm.DB {
			return db.Order(clause.OrderByColumn{Column: clause.Column{Name: "placed_at"}, Desc: true})
		}).
		Preload("Bids.Bidder").
		First(&auction, "id = ?", auctionID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Auction not found."})
			return
		}
		abortServerError(c, op, result.Error)
		return
	}
	response := toAuctionResponse(&auction, time.Now())
	response.Bids = lo.Map(auction.Bids, func(bid models.Bid, _ int) bidResponse {
		return bidResponse{
			ID:       bid.ID,
			Amount:   bid.Amount,
			Bidder:   bid.Bidder.Username,
			PlacedAt: bid.PlacedAt,
		}
	})
	c.JSON(http.StatusOK, response)
}

// Schedule an auction for a vehicle
// (POST /auctions)
func (impl *ServerImpl) PostAuction(c *gin.Context) {
	const op = "PostAuction"
	var request createAuctionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid auction payload."})
		return
	}
	// 檢查拍賣時間與起標價是否合法
	if !request.StartTime.Before(request.EndTime) || request.EndTime.Before(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid auction time window."})
		return
	}
	if !request.StartingBid.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Starting bid must be positive."})
		return
	}
	// 檢查車輛是否存在且可以拍賣
	var vehicle models.Vehicle
	if result := impl.db.First(&vehicle, "id = ?", request.VehicleID); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found."})
			return
		}
		abortServerError(c, op, result.Error)
		return
	}
	if vehicle.Status == models.VehicleSold {
		c.JSON(http.StatusConflict, gin.H{"error": "Vehicle is already sold."})
		return
	}
	// 建立拍賣並把車輛標記為拍賣中
	auction := models.Auction{
		ID:          uuid.New(),
		VehicleID:   request.VehicleID,
		StartTime:   request.StartTime,
		EndTime:     request.EndTime,
		StartingBid: request.StartingBid,
		Status:      models.AuctionPending,
	}
	err := impl.db.Transaction(func(tx *gorm.DB) error {
		if result := tx.Create(&auction); result.Error != nil {
			return result.Error
		}
		result := tx.Model(&models.Vehicle{}).
			Where("id = ?", vehicle.ID).
			Update("status", models.VehicleAuctioning)
		return result.Error
	})
	if err != nil {
		abortServerError(c, op, err)
		return
	}
	c.Header("Location", "/auctions/"+auction.ID.String())
	c.JSON(http.StatusCreated, toAuctionResponse(&auction, time.Now()))
}

// Update an auction
// (PUT /auctions/:auctionID)
func (impl *ServerImpl) PutAuction(c *gin.Context) {
	const op = "PutAuction"
	auctionID, err := uuid.Parse(c.Param("auctionID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid auction id."})
		return
	}
	var request updateAuctionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid auction payload."})
		return
	}
	var auction models.Auction
	if result := impl.db.First(&auction, "id = ?", auctionID); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Auction not found."})
			return
		}
		abortServerError(c, op, result.Error)
		return
	}
	// 已取消的拍賣是終態，不允許任何更新
	if auction.Status == models.AuctionCancelled {
		c.JSON(http.StatusConflict, gin.H{"error": "Auction is cancelled."})
		return
	}
	// 只更新被指定的欄位，避免覆蓋並發出價寫入的最高出價欄位
	updates := map[string]any{}
	// 取消以外的狀態由時間推導，不接受人工指定
	if request.Status != nil {
		if *request.Status != models.AuctionCancelled {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Only cancellation is allowed."})
			return
		}
		auction.Status = models.AuctionCancelled
		updates["status"] = models.AuctionCancelled
	}
	if request.StartTime != nil || request.EndTime != nil || request.StartingBid != nil {
		// 已有人出價後拍賣條件不可再變動
		var bidCount int64
		if result := impl.db.Model(&models.Bid{}).Where("auction_id = ?", auctionID).Count(&bidCount); result.Error != nil {
			abortServerError(c, op, result.Error)
			return
		}
		if bidCount > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "Auction already has bids."})
			return
		}
		if request.StartTime != nil {
			auction.StartTime = *request.StartTime
			updates["start_time"] = auction.StartTime
		}
		if request.EndTime != nil {
			auction.EndTime = *request.EndTime
			updates["end_time"] = auction.EndTime
		}
		if !auction.StartTime.Before(auction.EndTime) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid auction time window."})
			return
		}
		if request.StartingBid != nil {
			if !request.StartingBid.IsPositive() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Starting bid must be positive."})
				return
			}
			auction.StartingBid = *request.StartingBid
			updates["starting_bid"] = auction.StartingBid
		}
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update."})
		return
	}
	if result := impl.db.Model(&models.Auction{}).Where("id = ?", auctionID).Updates(updates); result.Error != nil {
		abortServerError(c, op, result.Error)
		return
	}
	c.JSON(http.StatusOK, toAuctionResponse(&auction, time.Now()))
}

// Remove an auction
// (DELETE /auctions/:auctionID)
func (impl *ServerImpl) DeleteAuction(c *gin.Context) {
	const op = "DeleteAuction"
	auctionID, err := uuid.Parse(c.Param("auctionID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid auction id."})
		return
	}
	// 出價是不可變的事實，已有人出價的拍賣不允許刪除，只能取消
	var bidCount int64
	if result := impl.db.Model(&models.Bid{}).Where("auction_id = ?", auctionID).Count(&bidCount); result.Error != nil {
		abortServerError(c, op, result.Error)
		return
	}
	if bidCount > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Auction has bids and cannot be deleted."})
		return
	}
	result := impl.db.Delete(&models.Auction{}, "id = ?", auctionID)
	if result.Error != nil {
		abortServerError(c, op, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Auction not found."})
		return
	}
	c.Status(http.StatusNoContent)
}

// Place a bid on an auction
// (POST /auctions/:auctionID/bids)
func (impl *ServerImpl) PostAuctionBid(c *gin.Context) {
	const op = "PostAuctionBid"
	auctionID, err := uuid.Parse(c.Param("auctionID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid auction id."})
		return
	}
	var request placeBidRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bid payload."})
		return
	}
	claims, _ := auth.ClaimsFrom(c)

	// 驗證與提交都交給出價引擎，這裡只負責把結果翻譯成HTTP回應
	receipt, err := impl.engine.PlaceBid(c.Request.Context(), auctionID, claims.UserID, request.Amount)
	if err != nil {
		var tooLow *bidding.BidTooLowError
		switch {
		case errors.Is(err, bidding.ErrAuctionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Auction not found."})
		case errors.Is(err, bidding.ErrAuctionNotActive):
			c.JSON(http.StatusConflict, gin.H{"error": "Auction is not open for bidding."})
		case errors.Is(err, bidding.ErrInvalidAmount):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Bid amount must be positive."})
		case errors.As(err, &tooLow):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "Bid is too low.",
				"minimum": tooLow.Minimum,
			})
		case errors.Is(err, bidding.ErrAlreadyHighestBidder):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "You already hold the highest bid."})
		case errors.Is(err, bidding.ErrConflict):
			c.JSON(http.StatusConflict, gin.H{"error": "Too many concurrent bids, please retry."})
		default:
			abortServerError(c, op, err)
		}
		return
	}

	// 出價成功，推送事件給正在觀看這場拍賣的連線
	var bidder models.User
	if result := impl.db.First(&bidder, "id = ?", claims.UserID); result.Error != nil {
		abortServerError(c, op, result.Error)
		return
	}
	if err := impl.sseManager.Publish(auctionID.String(), BidEvent{
		Amount: receipt.Amount,
		Bidder: bidder.Username,
		Time:   receipt.PlacedAt,
	}); err != nil {
		slog.Warn("Fail to publish bid event", slog.String("op", op), slog.Any("error", err))
	}
	c.JSON(http.StatusCreated, gin.H{
		"bidId":    receipt.BidID,
		"amount":   receipt.Amount,
		"placedAt": receipt.PlacedAt,
	})
}

// Track auction bid events
// (GET /auctions/:auctionID/events)
func (impl *ServerImpl) GetAuctionEvents(c *gin.Context) {
	const op = "GetAuctionEvents"
	auctionID, err := uuid.Parse(c.Param("auctionID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid auction id."})
		return
	}
	var auction models.Auction
	if result := impl.db.First(&auction, "id = ?", auctionID); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Auction not found."})
			return
		}
		abortServerError(c, op, result.Error)
		return
	}
	// 檢查拍賣是否已經開始(開始前5分鐘開放連線)
	now := time.Now()
	if now.Before(auction.StartTime.Add(-eventsEarlyWindow)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Auction has not started."})
		return
	}
	// 檢查拍賣是否已經結束或取消
	if now.After(auction.EndTime) || auction.Status == models.AuctionCancelled {
		c.JSON(http.StatusGone, gin.H{"error": "Auction has ended."})
		return
	}
	// SSE請求合法，開始初始化串流
	w := c.Writer
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Transfer-Encoding", "chunked")
	ch, err := impl.sseManager.Subscribe(auctionID.String())
	if err != nil {
		abortServerError(c, op, err)
		return
	}
	deadline := time.NewTimer(time.Until(auction.EndTime))
	defer deadline.Stop()
LOOP:
	for {
		select {
		case <-c.Request.Context().Done():
			impl.sseManager.Unsubscribe(auctionID.String(), ch)
			break LOOP
		// 拍賣結束後關閉串流
		case <-deadline.C:
			impl.sseManager.Unsubscribe(auctionID.String(), ch)
			break LOOP
		case event := <-ch:
			c.SSEvent("bid", event)
			w.Flush()
		// 30秒沒有事件就發送一個空行，確保瀏覽器和proxy不會斷開連線
		case <-time.After(30 * time.Second):
			w.WriteString("\n\n")
			w.Flush()
		}
	}
}
