package dailygrant

// RunResponse 日次付与実行レスポンス
type RunResponse struct {
	Amount       int   `json:"amount"`
	GrantedUsers int64 `json:"granted_users"`
	TotalUsers   int64 `json:"total_users"`
}

// GetSettingResponse 付与量設定取得レスポンス
type GetSettingResponse struct {
	Name   string `json:"name"`
	Amount int    `json:"amount"`
}

// SetSettingRequest 付与量設定更新リクエスト（管理者用）
type SetSettingRequest struct {
	Amount    int    `json:"amount"`
	Requester string `json:"requester"`
}

// SetSettingResponse 付与量設定更新レスポンス
type SetSettingResponse struct {
	Name   string `json:"name"`
	Amount int    `json:"amount"`
}
