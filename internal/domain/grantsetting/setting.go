package grantsetting

import (
	"context"
	"errors"
)

var (
	// ErrNegativeAmount マイナスの付与量エラー
	ErrNegativeAmount = errors.New("negative grant amount")
	// ErrSettingNotFound 設定が見つからないエラー
	ErrSettingNotFound = errors.New("grant setting not found")
)

const (
	// DailySettingName 日次自動付与設定の名前
	DailySettingName = "daily"
	// DefaultDailyAmount 日次自動付与のデフォルト値
	DefaultDailyAmount = 3
)

// Setting プロセス全体で共有される付与量設定
type Setting struct {
	name   string
	amount int
}

// NewSetting 新しいSettingを作成
func NewSetting(name string, amount int) (*Setting, error) {
	if amount < 0 {
		return nil, ErrNegativeAmount
	}
	return &Setting{name: name, amount: amount}, nil
}

// Name 設定名を返す
func (s *Setting) Name() string {
	return s.name
}

// Amount 付与量を返す
func (s *Setting) Amount() int {
	return s.amount
}

// Repository 付与量設定リポジトリインターフェース
type Repository interface {
	// Find 設定名で設定を取得。存在しない場合はErrSettingNotFound
	Find(ctx context.Context, name string) (*Setting, error)

	// Save 設定を保存（upsert）
	Save(ctx context.Context, setting *Setting) error
}
