package api

// HealthResponse はヘルスチェック応答
type HealthResponse struct {
	Status string `json:"status"`
}

// StateResponse は集約状態の応答
type StateResponse struct {
	Registered     int `json:"registered"`
	Connected      int `json:"connected"`
	Idle           int `json:"idle"`
	DefaultBearers int `json:"default_bearers"`
	Contexts       int `json:"contexts"`
}
