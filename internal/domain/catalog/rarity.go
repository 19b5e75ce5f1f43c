package catalog

import (
	"fmt"
)

// Rarity レアリティを表す値オブジェクト
type Rarity string

const (
	RarityN   Rarity = "N"   // ノーマル
	RarityR   Rarity = "R"   // レア
	RaritySR  Rarity = "SR"  // スーパーレア
	RaritySSR Rarity = "SSR" // ダブルスーパーレア
	RarityUR  Rarity = "UR"  // ウルトラレア
)

// NewRarity 新しいRarityを作成
func NewRarity(s string) (Rarity, error) {
	switch s {
	case "N", "R", "SR", "SSR", "UR":
		return Rarity(s), nil
	default:
		return "", fmt.Errorf("invalid rarity: %s", s)
	}
}

// String 文字列表現を返す
func (r Rarity) String() string {
	return string(r)
}

// Valid 有効なレアリティかどうかを返す
func (r Rarity) Valid() bool {
	switch r {
	case RarityN, RarityR, RaritySR, RaritySSR, RarityUR:
		return true
	default:
		return false
	}
}

// Order レアリティの序列を返す (N < R < SR < SSR < UR)
func (r Rarity) Order() int {
	switch r {
	case RarityN:
		return 0
	case RarityR:
		return 1
	case RaritySR:
		return 2
	case RaritySSR:
		return 3
	case RarityUR:
		return 4
	default:
		return -1
	}
}
