package catalog

import (
	"errors"
	"regexp"
)

var (
	// ErrInvalidCollection コレクション名が無効
	ErrInvalidCollection = errors.New("invalid collection name")
	// ErrInvalidItemID アイテムIDが無効
	ErrInvalidItemID = errors.New("invalid item id")
	// ErrInvalidWeight 重みが無効
	ErrInvalidWeight = errors.New("invalid weight")
	// ErrInvalidRarity レアリティが無効
	ErrInvalidRarity = errors.New("invalid rarity")
)

var (
	collectionRegex = regexp.MustCompile(`^[a-z0-9\-]{1,64}$`)
	itemIDRegex     = regexp.MustCompile(`^[a-zA-Z0-9_\-\.]{1,64}$`)
)

// Item ガチャアイテムエンティティ。カタログ投入後は不変
type Item struct {
	collection    string
	id            string
	title         string
	characterName string
	rarity        Rarity
	weight        float64
	mediaRef      string
}

// NewItem 新しいItemエンティティを作成
func NewItem(collection, id, title, characterName string, rarity Rarity, weight float64, mediaRef string) (*Item, error) {
	if !collectionRegex.MatchString(collection) {
		return nil, ErrInvalidCollection
	}
	if !itemIDRegex.MatchString(id) {
		return nil, ErrInvalidItemID
	}
	if !rarity.Valid() {
		return nil, ErrInvalidRarity
	}
	// 重み0は「排出されないが一覧には出る」アイテムとして許可する
	if weight < 0 {
		return nil, ErrInvalidWeight
	}
	return &Item{
		collection:    collection,
		id:            id,
		title:         title,
		characterName: characterName,
		rarity:        rarity,
		weight:        weight,
		mediaRef:      mediaRef,
	}, nil
}

// Collection 所属コレクション名を返す
func (i *Item) Collection() string {
	return i.collection
}

// ID コレクション内で一意なアイテムIDを返す
func (i *Item) ID() string {
	return i.id
}

// Title タイトルを返す
func (i *Item) Title() string {
	return i.title
}

// CharacterName キャラクター名を返す
func (i *Item) CharacterName() string {
	return i.characterName
}

// Rarity レアリティを返す
func (i *Item) Rarity() Rarity {
	return i.rarity
}

// Weight 排出重みを返す
func (i *Item) Weight() float64 {
	return i.weight
}

// MediaRef イラストなどのメディア参照を返す
func (i *Item) MediaRef() string {
	return i.mediaRef
}

// Drawable 排出対象かどうかを返す
func (i *Item) Drawable() bool {
	return i.weight > 0
}

// MustNewItem テスト用ヘルパー: NewItemを呼び出し、エラーが発生した場合はpanicする
func MustNewItem(collection, id, title, characterName string, rarity Rarity, weight float64, mediaRef string) *Item {
	item, err := NewItem(collection, id, title, characterName, rarity, weight, mediaRef)
	if err != nil {
		panic(err)
	}
	return item
}
