package catalog

import "errors"

var (
	// ErrCollectionNotFound コレクションが見つからないエラー
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrItemNotFound アイテムが見つからないエラー
	ErrItemNotFound = errors.New("item not found")
)
