package transaction

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"time"

	"gacha-server/internal/domain/points"
)

var (
	// ErrInvalidTransactionID トランザクションIDが無効
	ErrInvalidTransactionID = errors.New("invalid transaction id")
	// ErrInvalidUserID ユーザーIDが無効
	ErrInvalidUserID = errors.New("invalid user id")
	// ErrInvalidAmount ポイント数が無効
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrBalanceOutOfRange 残高が範囲外
	ErrBalanceOutOfRange = errors.New("balance out of range")
)

var (
	idRegex     = regexp.MustCompile(`^[a-zA-Z0-9_\-\.\@]{1,255}$`)
	userIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-\.\@]{1,64}$`)
)

// NewTransactionID 新しいトランザクションIDを生成する。
// ナノ秒時刻だけでは同時実行時に衝突しうるため、ランダムなサフィックスを付ける
func NewTransactionID() string {
	suffix := make([]byte, 4)
	_, _ = rand.Read(suffix)
	return fmt.Sprintf("txn_%d_%s", time.Now().UnixNano(), hex.EncodeToString(suffix))
}

// Transaction ポイント台帳の監査ログエンティティ。
// 全ての残高変動（抽選消費・返金・付与・管理者上書き）を1行ずつ記録する
type Transaction struct {
	transactionID   string
	userID          string
	transactionType TransactionType
	amount          int
	balanceBefore   int
	balanceAfter    int
	collection      *string // 抽選関連のみ
	itemID          *string // 抽選関連のみ
	requester       *string // 管理オペレーションの実行元
	createdAt       time.Time
}

// NewTransaction 新しいTransactionエンティティを作成
func NewTransaction(
	transactionID string,
	userID string,
	transactionType TransactionType,
	amount int,
	balanceBefore int,
	balanceAfter int,
) (*Transaction, error) {
	if !idRegex.MatchString(transactionID) {
		return nil, ErrInvalidTransactionID
	}
	if !userIDRegex.MatchString(userID) {
		return nil, ErrInvalidUserID
	}
	if !transactionType.Valid() {
		return nil, ErrInvalidTransactionType
	}
	if amount < 0 {
		return nil, ErrInvalidAmount
	}
	if balanceBefore < 0 || balanceBefore > points.Cap {
		return nil, ErrBalanceOutOfRange
	}
	if balanceAfter < 0 || balanceAfter > points.Cap {
		return nil, ErrBalanceOutOfRange
	}

	return &Transaction{
		transactionID:   transactionID,
		userID:          userID,
		transactionType: transactionType,
		amount:          amount,
		balanceBefore:   balanceBefore,
		balanceAfter:    balanceAfter,
		createdAt:       time.Now(),
	}, nil
}

// WithDrawContext 抽選コンテキスト（コレクションとアイテムID）を付与する
func (t *Transaction) WithDrawContext(collection, itemID string) *Transaction {
	t.collection = &collection
	t.itemID = &itemID
	return t
}

// WithCollection 抽選対象コレクションのみを付与する（返金など排出アイテムがない場合用）
func (t *Transaction) WithCollection(collection string) *Transaction {
	t.collection = &collection
	return t
}

// WithRequester 管理オペレーションの実行元を付与する
func (t *Transaction) WithRequester(requester string) *Transaction {
	t.requester = &requester
	return t
}

// TransactionID トランザクションIDを返す
func (t *Transaction) TransactionID() string {
	return t.transactionID
}

// UserID ユーザーIDを返す
func (t *Transaction) UserID() string {
	return t.userID
}

// TransactionType トランザクションタイプを返す
func (t *Transaction) TransactionType() TransactionType {
	return t.transactionType
}

// Amount 変動ポイント数を返す
func (t *Transaction) Amount() int {
	return t.amount
}

// BalanceBefore 変動前残高を返す
func (t *Transaction) BalanceBefore() int {
	return t.balanceBefore
}

// BalanceAfter 変動後残高を返す
func (t *Transaction) BalanceAfter() int {
	return t.balanceAfter
}

// Collection 抽選対象コレクションを返す（抽選関連以外はnil）
func (t *Transaction) Collection() *string {
	return t.collection
}

// ItemID 排出アイテムIDを返す（抽選関連以外はnil）
func (t *Transaction) ItemID() *string {
	return t.itemID
}

// Requester 実行元を返す（管理オペレーション以外はnil）
func (t *Transaction) Requester() *string {
	return t.requester
}

// CreatedAt 作成日時を返す
func (t *Transaction) CreatedAt() time.Time {
	return t.createdAt
}

// Reconstruct 永続化層からエンティティを復元する
func Reconstruct(
	transactionID string,
	userID string,
	transactionType TransactionType,
	amount int,
	balanceBefore int,
	balanceAfter int,
	collection *string,
	itemID *string,
	requester *string,
	createdAt time.Time,
) *Transaction {
	return &Transaction{
		transactionID:   transactionID,
		userID:          userID,
		transactionType: transactionType,
		amount:          amount,
		balanceBefore:   balanceBefore,
		balanceAfter:    balanceAfter,
		collection:      collection,
		itemID:          itemID,
		requester:       requester,
		createdAt:       createdAt,
	}
}
