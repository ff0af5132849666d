package bidding

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// 出價被拒絕的原因，全部以 error 值的形式回傳給呼叫端，
// 不使用 panic 或例外式的控制流程
var (
	// ErrAuctionNotFound 表示指定的拍賣不存在
	ErrAuctionNotFound = errors.New("auction not found")
	// ErrAuctionNotActive 表示拍賣目前不可出價（未開始、已結束或已取消）
	ErrAuctionNotActive = errors.New("auction is not active")
	// ErrInvalidAmount 表示出價金額不是正數
	ErrInvalidAmount = errors.New("bid amount must be positive")
	// ErrAlreadyHighestBidder 表示出價者已經是目前的最高出價者
	ErrAlreadyHighestBidder = errors.New("bidder already holds the highest bid")
	// ErrConflict 表示與其他並發出價衝突，且重試次數已用盡；
	// 呼叫端可以安全地重新發起出價
	ErrConflict = errors.New("bid conflicts with a concurrent bid")
)

// BidTooLowError 表示出價金額沒有嚴格超過底價
// Minimum 是計算出來的底價（目前最高出價，或尚無人出價時的起標價）
type BidTooLowError struct {
	Minimum decimal.Decimal
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("bid must be strictly greater than %s", e.Minimum.String())
}

// IsRejection 判斷錯誤是否為預期中的出價拒絕，
// 用來和儲存層的基礎設施錯誤做區分
func IsRejection(err error) bool {
	var tooLow *BidTooLowError
	return errors.Is(err, ErrAuctionNotFound) ||
		errors.Is(err, ErrAuctionNotActive) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrAlreadyHighestBidder) ||
		errors.Is(err, ErrConflict) ||
		errors.As(err, &tooLow)
}
