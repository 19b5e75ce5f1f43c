package points

import (
	"context"
)

// BalanceRepository ポイント残高リポジトリインターフェース
type BalanceRepository interface {
	// FindByUserID ユーザーIDで残高を取得
	FindByUserID(ctx context.Context, userID string) (*Balance, error)

	// Create 新しい残高を作成（既存の場合は何もしない）
	Create(ctx context.Context, balance *Balance) error

	// Save 残高を保存（更新、楽観的ロック対応）
	Save(ctx context.Context, balance *Balance) error

	// GrantCappedAll 全ユーザーに上限付きでポイントを付与し、残高が増えたユーザー数を返す
	GrantCappedAll(ctx context.Context, amount int) (int64, error)

	// CountUsers 残高レコードを持つユーザー数を返す
	CountUsers(ctx context.Context) (int64, error)
}
