// Package ownership ユーザーごとの取得済みアイテム集合を扱う。
// 一度追加されたレコードは削除されない（コレクション進捗は永続）。
package ownership

import (
	"context"
)

// Repository 所持レコードリポジトリインターフェース
type Repository interface {
	// AddIfAbsent (user, collection, item)を未所持の場合のみ追加する。
	// 追加された（= 初入手だった）かどうかを返す。重複追加はエラーにならない
	AddIfAbsent(ctx context.Context, userID, collection, itemID string) (bool, error)

	// FindItemIDs ユーザーがコレクション内で所持しているアイテムIDの一覧を取得
	FindItemIDs(ctx context.Context, userID, collection string) ([]string, error)

	// Contains ユーザーがアイテムを所持しているかどうかを返す
	Contains(ctx context.Context, userID, collection, itemID string) (bool, error)
}
