package gacha

// ItemView アイテムのレスポンス表現
type ItemView struct {
	Collection    string  `json:"collection"`
	ItemID        string  `json:"item_id"`
	Title         string  `json:"title"`
	CharacterName string  `json:"character_name"`
	Rarity        string  `json:"rarity"`
	Weight        float64 `json:"weight"`
	MediaRef      string  `json:"media_ref,omitempty"`
}

// DrawRequest 抽選リクエスト
type DrawRequest struct {
	UserID     string `json:"user_id"`
	Collection string `json:"collection"`
}

// DrawResponse 抽選レスポンス
type DrawResponse struct {
	TransactionID string   `json:"transaction_id"`
	Item          ItemView `json:"item"`
	IsNew         bool     `json:"is_new"`
	BalanceAfter  int      `json:"balance_after"`
}

// ListCatalogRequest カタログ一覧リクエスト
type ListCatalogRequest struct {
	Collection string `json:"collection"`
}

// ListCatalogResponse カタログ一覧レスポンス
type ListCatalogResponse struct {
	Collection string     `json:"collection"`
	Items      []ItemView `json:"items"`
}

// ListCollectionsResponse コレクション一覧レスポンス
type ListCollectionsResponse struct {
	Collections []string `json:"collections"`
}

// ListOwnedRequest 所持アイテム一覧リクエスト
type ListOwnedRequest struct {
	UserID     string `json:"user_id"`
	Collection string `json:"collection"`
}

// ListOwnedResponse 所持アイテム一覧レスポンス
type ListOwnedResponse struct {
	Collection string   `json:"collection"`
	ItemIDs    []string `json:"item_ids"`
	OwnedCount int      `json:"owned_count"`
	TotalCount int      `json:"total_count"`
}
