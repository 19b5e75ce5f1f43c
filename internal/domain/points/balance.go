package points

import (
	"errors"
	"regexp"
)

var (
	// ErrInvalidUserID ユーザーIDが無効
	ErrInvalidUserID = errors.New("invalid user id")
	// ErrPointsOutOfRange ポイントが範囲外
	ErrPointsOutOfRange = errors.New("points out of range")
)

const (
	// Cap ポイント残高の上限
	Cap = 15
	// DefaultPoints 新規ユーザーの初期ポイント
	DefaultPoints = 15
)

// Discordのsnowflake IDなど、プラットフォームが払い出す安定IDのみを許可する。
// 表示名は変更されうるためキーにしない。
var userIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-\.\@]{1,64}$`)

// Balance ポイント残高エンティティ
type Balance struct {
	userID  string
	points  int
	version int // 楽観的ロック用
}

// NewBalance 新しいBalanceエンティティを作成
func NewBalance(userID string, points int, version int) (*Balance, error) {
	if !userIDRegex.MatchString(userID) {
		return nil, ErrInvalidUserID
	}
	if points < 0 || points > Cap {
		return nil, ErrPointsOutOfRange
	}
	return &Balance{
		userID:  userID,
		points:  points,
		version: version,
	}, nil
}

// NewDefaultBalance 初期ポイントのBalanceエンティティを作成
func NewDefaultBalance(userID string) (*Balance, error) {
	return NewBalance(userID, DefaultPoints, 0)
}

// UserID ユーザーIDを返す
func (b *Balance) UserID() string {
	return b.userID
}

// Points 現在のポイントを返す
func (b *Balance) Points() int {
	return b.points
}

// Version バージョンを返す（楽観的ロック用）
func (b *Balance) Version() int {
	return b.version
}

// Debit ポイントを消費する
func (b *Balance) Debit(amount int) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if b.points < amount {
		return ErrInsufficientPoints
	}
	b.points -= amount
	b.version++
	return nil
}

// GrantCapped 上限までポイントを付与する。残高が変化したかどうかを返す
func (b *Balance) GrantCapped(amount int) (bool, error) {
	if amount < 0 {
		return false, ErrInvalidAmount
	}
	next := b.points + amount
	if next > Cap {
		next = Cap
	}
	changed := next != b.points
	b.points = next
	b.version++
	return changed, nil
}

// Set 残高を指定値に上書きする（管理者オペレーション用）
func (b *Balance) Set(points int) error {
	if points < 0 || points > Cap {
		return ErrPointsOutOfRange
	}
	b.points = points
	b.version++
	return nil
}

// MustNewBalance テスト用ヘルパー: NewBalanceを呼び出し、エラーが発生した場合はpanicする
func MustNewBalance(userID string, points int, version int) *Balance {
	b, err := NewBalance(userID, points, version)
	if err != nil {
		panic(err)
	}
	return b
}
