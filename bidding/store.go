package bidding

import (
	"context"

	"github.com/google/uuid"

	"drivebid/models"
)

// VersionToken 是讀取拍賣時取得的不透明版本憑證，
// 用來保護條件式提交；引擎不假設底層是樂觀版本還是資料列鎖
type VersionToken int64

// Store 定義出價引擎對拍賣儲存層的需求
// 任何方法都可能因等待 I/O 而阻塞，必須尊重傳入的 context
type Store interface {
	// GetAuction 讀取拍賣，不保證比「最近」更強的一致性
	// 拍賣不存在時回傳 ErrAuctionNotFound
	GetAuction(ctx context.Context, id uuid.UUID) (*models.Auction, error)

	// GetAuctionForUpdate 讀取拍賣並取得版本憑證，
	// 憑證用於後續 CommitBid 的衝突檢查
	GetAuctionForUpdate(ctx context.Context, id uuid.UUID) (*models.Auction, VersionToken, error)

	// CommitBid 以單一原子單位寫入出價並更新拍賣的最高出價欄位
	// 若憑證已過期（拍賣的最高出價在讀取後被其他人更新）則回傳
	// ErrConflict，且不留下任何部分寫入的狀態；
	// 出價寫入和拍賣更新永遠不會各自單獨發生
	CommitBid(ctx context.Context, bid *models.Bid, token VersionToken) error
}
