package gacha

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gacha-server/internal/domain/catalog"
)

// fixedSource 常に同じ値を返すRandomSource
type fixedSource struct {
	value float64
}

func (s *fixedSource) Float64() float64 {
	return s.value
}

func testItems() []*catalog.Item {
	return []*catalog.Item{
		catalog.MustNewItem("halloween", "001", "タイトル1", "キャラA", catalog.RarityN, 10.0, ""),
		catalog.MustNewItem("halloween", "002", "タイトル2", "キャラB", catalog.RaritySR, 0, ""),
		catalog.MustNewItem("halloween", "003", "タイトル3", "キャラC", catalog.RarityUR, 5.0, ""),
	}
}

func TestSelector_Pick(t *testing.T) {
	tests := []struct {
		name      string
		items     []*catalog.Item
		source    RandomSource
		wantID    string
		wantError error
	}{
		{
			name:   "正常系: 累積和の先頭区間",
			items:  testItems(),
			source: &fixedSource{value: 0.0},
			wantID: "001",
		},
		{
			name:   "正常系: 境界直前は先頭アイテム",
			items:  testItems(),
			source: &fixedSource{value: 0.6666}, // r = 9.999 < 10
			wantID: "001",
		},
		{
			name:   "正常系: 重み0を飛ばして後続区間",
			items:  testItems(),
			source: &fixedSource{value: 0.7}, // r = 10.5
			wantID: "003",
		},
		{
			name:   "正常系: 浮動小数点ドリフト時は走査順の最後に倒す",
			items:  testItems(),
			source: &fixedSource{value: 1.0}, // 契約上は[0,1)だがガードを検証する
			wantID: "003",
		},
		{
			name: "異常系: 合計重み0",
			items: []*catalog.Item{
				catalog.MustNewItem("halloween", "001", "t", "c", catalog.RarityN, 0, ""),
			},
			source:    &fixedSource{value: 0.5},
			wantError: ErrEmptyCatalog,
		},
		{
			name:      "異常系: アイテムなし",
			items:     nil,
			source:    &fixedSource{value: 0.5},
			wantError: ErrEmptyCatalog,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			selector := NewSelector(tt.source)
			got, err := selector.Pick(tt.items)
			if tt.wantError != nil {
				assert.ErrorIs(t, err, tt.wantError)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, got.ID())
		})
	}
}

// 重み[10, 0, 5]に対する排出比率の検証:
// 重み0は一度も選ばれず、アイテム1とアイテム3の比率は2:1に収束する
func TestSelector_Pick_Proportionality(t *testing.T) {
	selector := NewSelector(NewRandomSource(42))
	items := testItems()

	const draws = 100000
	counts := make(map[string]int)
	for i := 0; i < draws; i++ {
		item, err := selector.Pick(items)
		require.NoError(t, err)
		counts[item.ID()]++
	}

	assert.Zero(t, counts["002"], "重み0のアイテムが排出された")
	assert.Equal(t, draws, counts["001"]+counts["003"])

	ratio := float64(counts["001"]) / float64(counts["003"])
	assert.InDelta(t, 2.0, ratio, 0.1)
}

// 同じシードからは同じ排出列が得られる（再現性）
func TestSelector_Pick_Deterministic(t *testing.T) {
	items := testItems()

	first := NewSelector(NewRandomSource(7))
	second := NewSelector(NewRandomSource(7))

	for i := 0; i < 1000; i++ {
		a, err := first.Pick(items)
		require.NoError(t, err)
		b, err := second.Pick(items)
		require.NoError(t, err)
		assert.Equal(t, a.ID(), b.ID())
	}
}

func TestNewSelector_NilSource(t *testing.T) {
	selector := NewSelector(nil)
	item, err := selector.Pick(testItems())
	require.NoError(t, err)
	assert.NotNil(t, item)
}
