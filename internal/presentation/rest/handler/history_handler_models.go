package handler

// TransactionItem トランザクションアイテム
type TransactionItem struct {
	TransactionID   string `json:"transaction_id"`
	TransactionType string `json:"transaction_type"`
	Amount          int    `json:"amount"`
	BalanceBefore   int    `json:"balance_before"`
	BalanceAfter    int    `json:"balance_after"`
	Collection      string `json:"collection,omitempty"`
	ItemID          string `json:"item_id,omitempty"`
	Requester       string `json:"requester,omitempty"`
	CreatedAt       string `json:"created_at"`
}

// TransactionHistoryResponse トランザクション履歴レスポンス
type TransactionHistoryResponse struct {
	Transactions []TransactionItem `json:"transactions"`
	Total        int               `json:"total"`
	Limit        int               `json:"limit"`
	Offset       int               `json:"offset"`
}
