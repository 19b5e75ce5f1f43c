package points

// GetBalanceRequest 残高取得リクエスト
type GetBalanceRequest struct {
	UserID string `json:"user_id"`
}

// GetBalanceResponse 残高取得レスポンス
type GetBalanceResponse struct {
	UserID string `json:"user_id"`
	Points int    `json:"points"`
	Cap    int    `json:"cap"`
}

// SetBalanceRequest 残高上書きリクエスト（管理者用）
type SetBalanceRequest struct {
	UserID    string `json:"user_id"`
	Points    int    `json:"points"`
	Requester string `json:"requester"`
}

// SetBalanceResponse 残高上書きレスポンス
type SetBalanceResponse struct {
	TransactionID string `json:"transaction_id"`
	UserID        string `json:"user_id"`
	Points        int    `json:"points"`
}

// GrantRequest 個別付与リクエスト（管理者用）
type GrantRequest struct {
	UserID    string `json:"user_id"`
	Amount    int    `json:"amount"`
	Requester string `json:"requester"`
}

// GrantResponse 個別付与レスポンス
type GrantResponse struct {
	TransactionID string `json:"transaction_id"`
	UserID        string `json:"user_id"`
	BalanceAfter  int    `json:"balance_after"`
	Changed       bool   `json:"changed"`
}

// GrantAllRequest 全ユーザー一括付与リクエスト（管理者用）
type GrantAllRequest struct {
	Amount    int    `json:"amount"`
	Requester string `json:"requester"`
}

// GrantAllResponse 全ユーザー一括付与レスポンス
type GrantAllResponse struct {
	Amount       int   `json:"amount"`
	GrantedUsers int64 `json:"granted_users"`
}
