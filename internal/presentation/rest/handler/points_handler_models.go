package handler

// BalanceResponse 残高レスポンス
type BalanceResponse struct {
	UserID string `json:"user_id"`
	Points int    `json:"points"`
	Cap    int    `json:"cap"`
}

// GrantRequest ポイント付与リクエスト
type GrantRequest struct {
	Amount    int    `json:"amount"`
	Requester string `json:"requester"`
}

// GrantResponse ポイント付与レスポンス
type GrantResponse struct {
	TransactionID string `json:"transaction_id"`
	UserID        string `json:"user_id"`
	BalanceAfter  int    `json:"balance_after"`
	Changed       bool   `json:"changed"`
}

// GrantAllRequest 全ユーザー一括付与リクエスト
type GrantAllRequest struct {
	Amount    int    `json:"amount"`
	Requester string `json:"requester"`
}

// GrantAllResponse 全ユーザー一括付与レスポンス
type GrantAllResponse struct {
	Amount       int   `json:"amount"`
	GrantedUsers int64 `json:"granted_users"`
}

// SetBalanceRequest 残高上書きリクエスト
type SetBalanceRequest struct {
	Points    int    `json:"points"`
	Requester string `json:"requester"`
}

// SetBalanceResponse 残高上書きレスポンス
type SetBalanceResponse struct {
	TransactionID string `json:"transaction_id"`
	UserID        string `json:"user_id"`
	Points        int    `json:"points"`
}
