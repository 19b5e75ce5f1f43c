package transaction

import (
	"errors"
	"fmt"
)

// ErrInvalidTransactionType トランザクションタイプが無効
var ErrInvalidTransactionType = errors.New("invalid transaction type")

// TransactionType トランザクションタイプを表す値オブジェクト
type TransactionType string

const (
	TransactionTypeGrant      TransactionType = "grant"       // 管理者による個別付与
	TransactionTypeConsume    TransactionType = "consume"     // 抽選によるポイント消費
	TransactionTypeRefund     TransactionType = "refund"      // 抽選失敗時の補償返金
	TransactionTypeDailyGrant TransactionType = "daily_grant" // 日次自動付与
	TransactionTypeAdminSet   TransactionType = "admin_set"   // 管理者による残高上書き
)

// NewTransactionType 新しいTransactionTypeを作成
func NewTransactionType(s string) (TransactionType, error) {
	switch s {
	case "grant", "consume", "refund", "daily_grant", "admin_set":
		return TransactionType(s), nil
	default:
		return "", fmt.Errorf("invalid transaction type: %s", s)
	}
}

// String 文字列表現を返す
func (tt TransactionType) String() string {
	return string(tt)
}

// Valid 有効なトランザクションタイプかどうかを返す
func (tt TransactionType) Valid() bool {
	switch tt {
	case TransactionTypeGrant, TransactionTypeConsume, TransactionTypeRefund, TransactionTypeDailyGrant, TransactionTypeAdminSet:
		return true
	default:
		return false
	}
}
