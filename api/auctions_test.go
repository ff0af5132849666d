package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drivebid/models"
)

func TestPostAuctionBidRequiresAuth(t *testing.T) {
	impl, router := newTestServer(t)
	auction := seedLiveAuction(t, impl, 1000)

	recorder := doJSON(router, http.MethodPost, "/auctions/"+auction.ID.String()+"/bids", "", gin.H{"amount": "1100"})
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestPostAuctionBidStatusMapping(t *testing.T) {
	impl, router := newTestServer(t)
	auction := seedLiveAuction(t, impl, 1000)
	_, token := seedUser(t, impl, models.RoleUser)

	tests := []struct {
		name       string
		path       string
		amount     string
		wantStatus int
	}{
		{
			name:       "不存在的拍賣",
			path:       "/auctions/" + uuid.NewString() + "/bids",
			amount:     "1100",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "非正數的出價",
			path:       "/auctions/" + auction.ID.String() + "/bids",
			amount:     "0",
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "等於起標價的出價",
			path:       "/auctions/" + auction.ID.String() + "/bids",
			amount:     "1000",
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "合法的出價",
			path:       "/auctions/" + auction.ID.String() + "/bids",
			amount:     "1100",
			wantStatus: http.StatusCreated,
		},
		{
			name:       "已是最高出價者再次出價",
			path:       "/auctions/" + auction.ID.String() + "/bids",
			amount:     "1200",
			wantStatus: http.StatusUnprocessableEntity,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := doJSON(router, http.MethodPost, tt.path, token, gin.H{"amount": tt.amount})
			assert.Equal(t, tt.wantStatus, recorder.Code)
		})
	}
}

func TestPostAuctionBidTooLowReportsMinimum(t *testing.T) {
	impl, router := newTestServer(t)
	auction := seedLiveAuction(t, impl, 1500)
	_, token := seedUser(t, impl, models.RoleUser)

	recorder := doJSON(router, http.MethodPost, "/auctions/"+auction.ID.String()+"/bids", token, gin.H{"amount": "1500"})
	require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Equal(t, "1500", body["minimum"])
}

func TestPostAuctionBidOutsideWindow(t *testing.T) {
	impl, router := newTestServer(t)
	_, token := seedUser(t, impl, models.RoleUser)

	now := time.Now()
	ended := models.Auction{
		ID:          uuid.New(),
		VehicleID:   uuid.New(),
		StartTime:   now.Add(-2 * time.Hour),
		EndTime:     now.Add(-time.Hour),
		StartingBid: decimal.NewFromInt(1000),
		Status:      models.AuctionActive,
	}
	require.NoError(t, impl.db.Create(&ended).Error)

	recorder := doJSON(router, http.MethodPost, "/auctions/"+ended.ID.String()+"/bids", token, gin.H{"amount": "1100"})
	assert.Equal(t, http.StatusConflict, recorder.Code)
}

func TestGetAuctionIncludesBidHistory(t *testing.T) {
	impl, router := newTestServer(t)
	auction := seedLiveAuction(t, impl, 1000)
	_, token := seedUser(t, impl, models.RoleUser)

	require.Equal(t, http.StatusCreated,
		doJSON(router, http.MethodPost, "/auctions/"+auction.ID.String()+"/bids", token, gin.H{"amount": "1100"}).Code)

	recorder := doJSON(router, http.MethodGet, "/auctions/"+auction.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Equal(t, string(models.AuctionActive), body["status"])
	assert.Equal(t, "1100", body["currentHighestBid"])
	bids, ok := body["bids"].([]any)
	require.True(t, ok)
	assert.Len(t, bids, 1)
}

func TestDeleteAuctionWithBidsIsRejected(t *testing.T) {
	impl, router := newTestServer(t)
	auction := seedLiveAuction(t, impl, 1000)
	_, userToken := seedUser(t, impl, models.RoleUser)
	_, adminToken := seedUser(t, impl, models.RoleAdmin)

	require.Equal(t, http.StatusCreated,
		doJSON(router, http.MethodPost, "/auctions/"+auction.ID.String()+"/bids", userToken, gin.H{"amount": "1100"}).Code)

	// 已有出價，刪除被拒
	recorder := doJSON(router, http.MethodDelete, "/auctions/"+auction.ID.String(), adminToken, nil)
	assert.Equal(t, http.StatusConflict, recorder.Code)

	// 取消仍然允許
	recorder = doJSON(router, http.MethodPut, "/auctions/"+auction.ID.String(), adminToken, gin.H{"status": "cancelled"})
	require.Equal(t, http.StatusOK, recorder.Code)

	// 取消後不再接受出價
	recorder = doJSON(router, http.MethodPost, "/auctions/"+auction.ID.String()+"/bids", userToken, gin.H{"amount": "1200"})
	assert.Equal(t, http.StatusConflict, recorder.Code)

	// 取消是終態，不允許再更新
	recorder = doJSON(router, http.MethodPut, "/auctions/"+auction.ID.String(), adminToken, gin.H{"status": "active"})
	assert.Equal(t, http.StatusConflict, recorder.Code)
}

func TestDeleteAuctionWithoutBids(t *testing.T) {
	impl, router := newTestServer(t)
	auction := seedLiveAuction(t, impl, 1000)
	_, adminToken := seedUser(t, impl, models.RoleAdmin)

	recorder := doJSON(router, http.MethodDelete, "/auctions/"+auction.ID.String(), adminToken, nil)
	assert.Equal(t, http.StatusNoContent, recorder.Code)
}

func TestAuctionAdminEndpointsRequireAdmin(t *testing.T) {
	impl, router := newTestServer(t)
	auction := seedLiveAuction(t, impl, 1000)
	_, userToken := seedUser(t, impl, models.RoleUser)

	recorder := doJSON(router, http.MethodDelete, "/auctions/"+auction.ID.String(), userToken, nil)
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	recorder = doJSON(router, http.MethodPost, "/auctions", userToken, gin.H{})
	assert.Equal(t, http.StatusForbidden, recorder.Code)
}
