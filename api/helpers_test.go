package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"drivebid/adapters/auth"
	"drivebid/adapters/gormstore"
	"drivebid/adapters/sse"
	"drivebid/bidding"
	"drivebid/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestServer 以 sqlite 和真實的出價引擎組出可測試的伺服器
func newTestServer(t *testing.T) (*ServerImpl, *gin.Engine) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Auction{}, &models.Bid{}, &models.Inquiry{}))
	// sqlite 不認得 postgres 的陣列型別，vehicles 表用等效的DDL建立
	require.NoError(t, db.Exec(`CREATE TABLE vehicles (
		id text PRIMARY KEY,
		created_at datetime,
		updated_at datetime,
		deleted_at datetime,
		make text NOT NULL DEFAULT '',
		model text NOT NULL DEFAULT '',
		year integer NOT NULL DEFAULT 0,
		price numeric NOT NULL DEFAULT 0,
		mileage integer,
		exterior_color text,
		interior_color text,
		engine text,
		transmission text,
		fuel_type text,
		image_urls text NOT NULL DEFAULT '{}',
		features text NOT NULL DEFAULT '{}',
		description text,
		status text NOT NULL DEFAULT 'available',
		is_featured integer NOT NULL DEFAULT 0
	)`).Error)

	issuer, err := auth.NewIssuer([]byte("test-secret"))
	require.NoError(t, err)

	impl := &ServerImpl{
		engine:      bidding.NewEngine(gormstore.New(db)),
		sseManager:  sse.NewConnectionManager[BidEvent](),
		htmlChecker: bluemonday.UGCPolicy(),
		issuer:      issuer,
		db:          db,
	}
	impl.sseManager.Start()
	t.Cleanup(impl.sseManager.Done)

	router := gin.New()
	impl.RegisterRoutes(router)
	return impl, router
}

// seedUser 直接在資料庫建立使用者並簽發權杖
func seedUser(t *testing.T, impl *ServerImpl, role models.Role) (models.User, string) {
	t.Helper()
	passwordHash, err := auth.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	user := models.User{
		ID:           uuid.New(),
		Username:     "user-" + uuid.NewString()[:8],
		Email:        uuid.NewString()[:8] + "@example.com",
		PasswordHash: passwordHash,
		Role:         role,
		Status:       models.UserActive,
	}
	require.NoError(t, impl.db.Create(&user).Error)
	token, err := impl.issuer.Sign(&user, time.Now())
	require.NoError(t, err)
	return user, token
}

// seedLiveAuction 建立一場正在進行中的拍賣
func seedLiveAuction(t *testing.T, impl *ServerImpl, startingBid int64) models.Auction {
	t.Helper()
	now := time.Now()
	auction := models.Auction{
		ID:          uuid.New(),
		VehicleID:   uuid.New(),
		StartTime:   now.Add(-time.Hour),
		EndTime:     now.Add(time.Hour),
		StartingBid: decimal.NewFromInt(startingBid),
		Status:      models.AuctionActive,
	}
	require.NoError(t, impl.db.Create(&auction).Error)
	return auction
}

// doJSON 對路由發出帶JSON body的請求，token為空字串時不帶認證
func doJSON(router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	request := httptest.NewRequest(method, path, reader)
	request.Header.Set("Content-Type", "application/json")
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}
