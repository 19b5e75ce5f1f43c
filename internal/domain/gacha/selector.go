package gacha

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"gacha-server/internal/domain/catalog"
)

var (
	// ErrEmptyCatalog 排出可能なアイテムが存在しないエラー
	ErrEmptyCatalog = errors.New("empty catalog")
)

// RandomSource 一様乱数源。テストではシード付きの実装を注入する
type RandomSource interface {
	// Float64 [0.0, 1.0) の一様乱数を返す
	Float64() float64
}

// lockedSource math/randをミューテックスで保護したRandomSource
type lockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// NewRandomSource 新しいRandomSourceを作成
func NewRandomSource(seed int64) RandomSource {
	return &lockedSource{rng: rand.New(rand.NewSource(seed))}
}

// DefaultRandomSource 時刻シードのRandomSourceを作成
func DefaultRandomSource() RandomSource {
	return NewRandomSource(time.Now().UnixNano())
}

// Selector 重み付きランダム抽選を行うドメインサービス
type Selector struct {
	source RandomSource
}

// NewSelector 新しいSelectorを作成
func NewSelector(source RandomSource) *Selector {
	if source == nil {
		source = DefaultRandomSource()
	}
	return &Selector{source: source}
}

// Pick 重みに比例した確率でアイテムを1つ選択する。
// itemsの並び順（カタログ投入順）が累積和の走査順となる。走査順は
// 浮動小数点の境界でどちらが選ばれるかにのみ影響し、分布には影響しない。
func (s *Selector) Pick(items []*catalog.Item) (*catalog.Item, error) {
	var total float64
	for _, item := range items {
		total += item.Weight()
	}
	if total <= 0 {
		return nil, ErrEmptyCatalog
	}

	r := s.source.Float64() * total

	var cum float64
	for _, item := range items {
		cum += item.Weight()
		if r < cum {
			return item, nil
		}
	}

	// 浮動小数点誤差でrが累積和を超えた場合は走査順の最後のアイテムに倒す。
	// total > 0 である限り必ずアイテムを返す
	return items[len(items)-1], nil
}
