package cooldown

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrCooldownActive クールダウン中エラー
	ErrCooldownActive = errors.New("cooldown active")
)

// ThrottledError クールダウン中エラー（残り待ち時間付き）
type ThrottledError struct {
	Remaining time.Duration
}

// Error エラーメッセージを返す
func (e *ThrottledError) Error() string {
	return fmt.Sprintf("cooldown active: %.1fs remaining", e.Remaining.Seconds())
}

// Unwrap errors.Is(err, ErrCooldownActive)での判定を可能にする
func (e *ThrottledError) Unwrap() error {
	return ErrCooldownActive
}

// Clock 現在時刻を返すクロック。テストでは固定クロックを注入する
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// SystemClock 実時刻を返すClockを作成
func SystemClock() Clock {
	return systemClock{}
}

// Result クールダウン判定の結果
type Result struct {
	Allowed   bool
	Remaining time.Duration
}

// Store ユーザーごとの最終抽選時刻ストア。
// 判定とスタンプ更新は単一のアトミックな操作でなければならない。
// 現状はプロセス内メモリ実装のみだが、複数プロセス構成では
// 共有バックエンドの実装に差し替える前提のインターフェース
type Store interface {
	// CheckAndStamp nowと前回時刻の差がduration未満なら棄却し残り時間を返す。
	// 許可する場合のみスタンプをnowに更新する
	CheckAndStamp(ctx context.Context, userID string, now time.Time, duration time.Duration) (Result, error)
}

// Gate 抽選頻度を制限するクールダウンゲート
type Gate struct {
	store    Store
	clock    Clock
	duration time.Duration
}

// NewGate 新しいGateを作成
func NewGate(store Store, clock Clock, duration time.Duration) *Gate {
	if clock == nil {
		clock = SystemClock()
	}
	return &Gate{
		store:    store,
		clock:    clock,
		duration: duration,
	}
}

// CheckAndStamp ユーザーの抽選を許可するか判定し、許可時はスタンプを更新する
func (g *Gate) CheckAndStamp(ctx context.Context, userID string) (Result, error) {
	return g.store.CheckAndStamp(ctx, userID, g.clock.Now(), g.duration)
}

// Duration 設定されたクールダウン時間を返す
func (g *Gate) Duration() time.Duration {
	return g.duration
}
