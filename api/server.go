// Package api 提供車輛市集的 HTTP 介面，
// 使用 gin 處理路由，資料存取透過 gorm
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	awsCfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"drivebid/adapters/auth"
	"drivebid/adapters/gormstore"
	internalS3 "drivebid/adapters/s3"
	"drivebid/adapters/sse"
	"drivebid/bidding"
)

// BidEvent 是透過 SSE 推送給拍賣頁面的出價事件
type BidEvent struct {
	Amount decimal.Decimal `json:"amount"`
	Bidder string          `json:"bidder"`
	Time   time.Time       `json:"time"`
}

type ServerImpl struct {
	engine      *bidding.Engine
	sseManager  sse.IConnectionManager[BidEvent]
	s3Operator  *internalS3.S3Operator
	htmlChecker *bluemonday.Policy
	issuer      *auth.Issuer
	db          *gorm.DB

	config ServerConfig
}

func NewServer(config ServerConfig) (*ServerImpl, error) {
	const op = "NewServer"

	// 初始化權杖簽發器
	issuerOpts := []auth.IssuerOption{}
	if config.Auth.TokenTTL > 0 {
		issuerOpts = append(issuerOpts, auth.WithTokenTTL(config.Auth.TokenTTL))
	}
	issuer, err := auth.NewIssuer([]byte(config.Auth.JWTSecret), issuerOpts...)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create token issuer, err=%w", op, err)
	}

	// 初始化S3客戶端
	s3Cfg, err := awsCfg.LoadDefaultConfig(
		context.Background(),
		awsCfg.WithBaseEndpoint(config.S3.Endpoint),
		awsCfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(config.S3.AccessKeyID, config.S3.SecretAccessKey, "")),
		awsCfg.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to load AWS config, err=%w", op, err)
	}
	s3Operator, err := internalS3.NewS3Operator(s3.NewFromConfig(s3Cfg), config.S3.Bucket, config.S3.PublicBaseURL)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create S3 operator, err=%w", op, err)
	}

	// 初始化資料庫連線
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable&search_path=%s", config.DB.User, config.DB.Password, config.DB.Host, config.DB.Port, config.DB.Database, config.DB.Schema)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		NamingStrategy: schema.NamingStrategy{
			TablePrefix: config.DB.Schema + ".",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to connect to database, err=%w", op, err)
	}

	// 初始化出價引擎，衝突保護由儲存層的版本欄位提供
	engineOpts := []bidding.EngineOption{bidding.WithLogger(slog.Default())}
	if config.Bidding.MaxAttempts > 0 {
		engineOpts = append(engineOpts, bidding.WithMaxAttempts(config.Bidding.MaxAttempts))
	}
	engine := bidding.NewEngine(gormstore.New(db), engineOpts...)

	// 初始化SSE管理器
	sseManager := sse.NewConnectionManager(sse.WithLogger[BidEvent](slog.Default()))

	return &ServerImpl{
		engine:      engine,
		sseManager:  sseManager,
		s3Operator:  s3Operator,
		htmlChecker: bluemonday.UGCPolicy(),
		issuer:      issuer,
		db:          db,
		config:      config,
	}, nil
}

func (impl *ServerImpl) Start() {
	// 啟動sse connection manager
	impl.sseManager.Start()
}

func (impl *ServerImpl) Close() {
	// 關閉sse connection manager
	impl.sseManager.Done()
}

// RegisterRoutes 註冊所有路由與middleware
func (impl *ServerImpl) RegisterRoutes(router *gin.Engine) {
	router.GET("/healthz", impl.GetHealthz)

	root := router.Group("", auth.Authenticate(impl.issuer))

	authGroup := root.Group("/auth")
	authGroup.POST("/register", impl.PostAuthRegister)
	authGroup.POST("/login", impl.PostAuthLogin)

	users := root.Group("/users")
	users.GET("/me", auth.RequireUser(), impl.GetUserMe)
	users.PUT("/me", auth.RequireUser(), impl.PutUserMe)
	users.GET("", auth.RequireAdmin(), impl.GetUsers)
	users.GET("/:userID", auth.RequireAdmin(), impl.GetUser)
	users.PUT("/:userID/role", auth.RequireAdmin(), impl.PutUserRole)

	vehicles := root.Group("/vehicles")
	vehicles.GET("", impl.GetVehicles)
	vehicles.GET("/featured", impl.GetFeaturedVehicles)
	vehicles.GET("/:vehicleID", impl.GetVehicle)
	vehicles.POST("", auth.RequireAdmin(), impl.PostVehicle)
	vehicles.PUT("/:vehicleID", auth.RequireAdmin(), impl.PutVehicle)
	vehicles.DELETE("/:vehicleID", auth.RequireAdmin(), impl.DeleteVehicle)

	auctions := root.Group("/auctions")
	auctions.GET("", impl.GetAuctions)
	auctions.GET("/:auctionID", impl.GetAuction)
	auctions.GET("/:auctionID/events", impl.GetAuctionEvents)
	auctions.POST("/:auctionID/bids", auth.RequireUser(), impl.PostAuctionBid)
	auctions.POST("", auth.RequireAdmin(), impl.PostAuction)
	auctions.PUT("/:auctionID", auth.RequireAdmin(), impl.PutAuction)
	auctions.DELETE("/:auctionID", auth.RequireAdmin(), impl.DeleteAuction)

	inquiries := root.Group("/inquiries")
	inquiries.POST("", impl.PostInquiry)
	inquiries.GET("", auth.RequireAdmin(), impl.GetInquiries)
	inquiries.PUT("/:inquiryID/status", auth.RequireAdmin(), impl.PutInquiryStatus)
	inquiries.DELETE("/:inquiryID", auth.RequireAdmin(), impl.DeleteInquiry)

	root.POST("/images", auth.RequireAdmin(), impl.PostImage)
}

// Check service health
// (GET /healthz)
func (impl *ServerImpl) GetHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
