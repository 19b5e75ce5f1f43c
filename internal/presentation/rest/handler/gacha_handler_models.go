package handler

// ItemResponse カタログアイテムレスポンス
type ItemResponse struct {
	Collection    string  `json:"collection"`
	ItemID        string  `json:"item_id"`
	Title         string  `json:"title"`
	CharacterName string  `json:"character_name"`
	Rarity        string  `json:"rarity"`
	Weight        float64 `json:"weight"`
	MediaRef      string  `json:"media_ref,omitempty"`
}

// DrawResponse 抽選結果レスポンス
type DrawResponse struct {
	TransactionID string       `json:"transaction_id"`
	Item          ItemResponse `json:"item"`
	IsNew         bool         `json:"is_new"`
	BalanceAfter  int          `json:"balance_after"`
}

// CollectionsResponse コレクション一覧レスポンス
type CollectionsResponse struct {
	Collections []string `json:"collections"`
}

// CatalogResponse カタログ一覧レスポンス
type CatalogResponse struct {
	Collection string         `json:"collection"`
	Items      []ItemResponse `json:"items"`
}

// OwnedItemsResponse 所持アイテム一覧レスポンス
type OwnedItemsResponse struct {
	Collection string   `json:"collection"`
	ItemIDs    []string `json:"item_ids"`
	OwnedCount int      `json:"owned_count"`
	TotalCount int      `json:"total_count"`
}
