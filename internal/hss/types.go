package hss

// AuthInfoRequest は認証情報要求
type AuthInfoRequest struct {
	IMSI       string `json:"imsi"`
	PLMN       string `json:"plmn"`
	NumVectors int    `json:"num_vectors"`
}

// AuthInfo はE-UTRAN認証ベクタ
type AuthInfo struct {
	RAND  []byte // 16バイト
	AUTN  []byte // 16バイト
	XRES  []byte // 4-16バイト
	KASME []byte // 32バイト
}

// authInfoJSON はJSONパース用の内部構造体
type authInfoJSON struct {
	RAND  string `json:"rand"`
	AUTN  string `json:"autn"`
	XRES  string `json:"xres"`
	KASME string `json:"kasme"`
}

// UpdateLocationRequest は位置登録要求
type UpdateLocationRequest struct {
	IMSI    string `json:"imsi"`
	PLMN    string `json:"plmn"`
	RATType string `json:"rat_type"`
}

// Subscription は位置登録応答に含まれる加入者データ
type Subscription struct {
	MSISDN string `json:"msisdn"`
	APN    string `json:"apn"`
	AMBRUL uint64 `json:"ambr_ul"`
	AMBRDL uint64 `json:"ambr_dl"`
}
