// Package auth 提供第一方帳號的認證基礎設施：
// JWT 的簽發與驗證、密碼雜湊，以及注入身份的 gin middleware
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"drivebid/models"
)

// DefaultTokenTTL 是存取權杖的預設有效期限
const DefaultTokenTTL = 7 * 24 * time.Hour

// ErrInvalidToken 表示權杖無法通過驗證
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims 是權杖中攜帶的身份資訊
// Role 使用封閉列舉，解析時一併驗證
type Claims struct {
	UserID uuid.UUID   `json:"user_id"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Issuer 負責簽發與驗證存取權杖，使用 HS256 與對稱密鑰
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

type IssuerOption func(*Issuer)

// WithTokenTTL 設定權杖的有效期限
func WithTokenTTL(ttl time.Duration) IssuerOption {
	return func(i *Issuer) {
		if ttl > 0 {
			i.ttl = ttl
		}
	}
}

// NewIssuer 建立權杖簽發器
func NewIssuer(secret []byte, opts ...IssuerOption) (*Issuer, error) {
	const op = "auth.NewIssuer"
	if len(secret) == 0 {
		return nil, fmt.Errorf("[%s] Secret must not be empty", op)
	}
	issuer := &Issuer{secret: secret, ttl: DefaultTokenTTL}
	for _, opt := range opts {
		opt(issuer)
	}
	return issuer, nil
}

// Sign 為使用者簽發存取權杖
func (i *Issuer) Sign(user *models.User, now time.Time) (string, error) {
	const op = "auth.Sign"

	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("[%s] Fail to sign token, err=%w", op, err)
	}
	return token, nil
}

// ParseAndValidate 驗證權杖並取出身份資訊
func (i *Issuer) ParseAndValidate(tokenString string) (*Claims, error) {
	const op = "auth.ParseAndValidate"

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("[%s] %w: %w", op, ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("[%s] %w", op, ErrInvalidToken)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !claims.Role.Valid() || claims.UserID == uuid.Nil {
		return nil, fmt.Errorf("[%s] %w: malformed claims", op, ErrInvalidToken)
	}
	return claims, nil
}
