package gateway

// CreateSessionRequest はセッション作成要求
type CreateSessionRequest struct {
	IMSI     string `json:"imsi"`
	MSISDN   string `json:"msisdn,omitempty"`
	APN      string `json:"apn"`
	PLMN     string `json:"plmn"`
	BearerID uint8  `json:"ebi"`
	MMEUeID  uint32 `json:"mme_ue_id"`
}

// Session はセッション作成応答
type Session struct {
	SessionID string `json:"session_id"`
	BearerID  uint8  `json:"ebi"`
	UEAddr    string `json:"ue_ip"`
}
