package points

import "errors"

var (
	// ErrInsufficientPoints ポイント不足エラー
	ErrInsufficientPoints = errors.New("insufficient points")
	// ErrInvalidAmount 無効なポイント数エラー
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrBalanceNotFound 残高が見つからないエラー
	ErrBalanceNotFound = errors.New("balance not found")
)
