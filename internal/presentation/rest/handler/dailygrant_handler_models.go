package handler

// GrantSettingResponse 日次付与量設定レスポンス
type GrantSettingResponse struct {
	Name   string `json:"name"`
	Amount int    `json:"amount"`
}

// SetGrantSettingRequest 日次付与量設定更新リクエスト
type SetGrantSettingRequest struct {
	Amount    int    `json:"amount"`
	Requester string `json:"requester"`
}

// DailyGrantRunResponse 日次付与実行レスポンス
type DailyGrantRunResponse struct {
	Amount       int   `json:"amount"`
	GrantedUsers int64 `json:"granted_users"`
	TotalUsers   int64 `json:"total_users"`
}
