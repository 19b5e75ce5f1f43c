package catalog

import (
	"context"
)

// ItemRepository ガチャカタログリポジトリインターフェース
type ItemRepository interface {
	// BulkInsert アイテムを一括投入する。既存の(collection, id)はスキップされ、
	// 新規に投入された件数を返す（冪等）
	BulkInsert(ctx context.Context, items []*Item) (int64, error)

	// FindByCollection コレクションの全アイテムを投入順で取得
	FindByCollection(ctx context.Context, collection string) ([]*Item, error)

	// ListCollections 存在する全コレクション名を取得
	ListCollections(ctx context.Context) ([]string, error)

	// CollectionExists コレクションが存在するかどうかを返す
	CollectionExists(ctx context.Context, collection string) (bool, error)
}
