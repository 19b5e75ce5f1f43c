// Package memory プロセス内メモリで完結する永続化実装を提供する。
package memory

import (
	"context"
	"sync"
	"time"

	"gacha-server/internal/domain/cooldown"
)

// CooldownStore プロセス内メモリ実装のcooldown.Store。
// 判定とスタンプ更新をミューテックス下で行うため、同時リクエストが
// 同じユーザーのクールダウンをすり抜けることはない
type CooldownStore struct {
	mu    sync.Mutex
	stamp map[string]time.Time
}

// NewCooldownStore 新しいCooldownStoreを作成
func NewCooldownStore() *CooldownStore {
	return &CooldownStore{
		stamp: make(map[string]time.Time),
	}
}

// CheckAndStamp nowと前回時刻の差がduration未満なら棄却し残り時間を返す。
// 許可する場合のみスタンプをnowに更新する
func (s *CooldownStore) CheckAndStamp(ctx context.Context, userID string, now time.Time, duration time.Duration) (cooldown.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if last, ok := s.stamp[userID]; ok {
		elapsed := now.Sub(last)
		if elapsed < duration {
			return cooldown.Result{
				Allowed:   false,
				Remaining: duration - elapsed,
			}, nil
		}
	}

	// 許可時刻をスタンプするため、抽選処理自体の所要時間は間隔に含まれない
	s.stamp[userID] = now
	return cooldown.Result{Allowed: true}, nil
}

// Reset ユーザーのスタンプを削除する（テスト用）
func (s *CooldownStore) Reset(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.stamp, userID)
}
