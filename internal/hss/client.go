package hss

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/oyaguma3/mme-emm-core/internal/config"
	"github.com/oyaguma3/mme-emm-core/internal/httpclient"
)

// APIパス
const (
	PathAuthInfo       = "/api/v1/auth-info"
	PathUpdateLocation = "/api/v1/update-location"
)

// RATTypeEUTRAN はE-UTRANアクセスを示すRAT種別
const RATTypeEUTRAN = "EUTRAN"

// HTTPClient はClientのHTTP実装
type HTTPClient struct {
	api *httpclient.Client
}

// NewClient は新しいHSS APIクライアントを生成する。
func NewClient(cfg *config.Config) *HTTPClient {
	return &HTTPClient{api: httpclient.New(config.CBNameHSS, cfg.HSSAPIURL)}
}

// AuthenticationInfo は認証ベクタを取得する。
func (c *HTTPClient) AuthenticationInfo(ctx context.Context, req *AuthInfoRequest) (*AuthInfo, error) {
	if req.NumVectors == 0 {
		req.NumVectors = 1
	}
	body, err := c.api.Do(ctx, http.MethodPost, PathAuthInfo, req)
	if err != nil {
		return nil, err
	}
	return parseAuthInfo(body)
}

// UpdateLocation は位置登録を行う。
func (c *HTTPClient) UpdateLocation(ctx context.Context, req *UpdateLocationRequest) (*Subscription, error) {
	if req.RATType == "" {
		req.RATType = RATTypeEUTRAN
	}
	body, err := c.api.Do(ctx, http.MethodPost, PathUpdateLocation, req)
	if err != nil {
		return nil, err
	}

	var sub Subscription
	if err := json.Unmarshal(body, &sub); err != nil {
		return nil, fmt.Errorf("%w: json unmarshal: %v", httpclient.ErrInvalidResponse, err)
	}
	return &sub, nil
}

// parseAuthInfo はJSONレスポンスをAuthInfoに変換する。
func parseAuthInfo(body []byte) (*AuthInfo, error) {
	var raw authInfoJSON
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: json unmarshal: %v", httpclient.ErrInvalidResponse, err)
	}

	fields := []struct {
		name string
		hex  string
		min  int
		max  int
	}{
		{"rand", raw.RAND, 16, 16},
		{"autn", raw.AUTN, 16, 16},
		{"xres", raw.XRES, 4, 16},
		{"kasme", raw.KASME, 32, 32},
	}
	decoded := make([][]byte, len(fields))
	for i, f := range fields {
		b, err := hex.DecodeString(f.hex)
		if err != nil {
			return nil, fmt.Errorf("%w: %s hex decode: %v", httpclient.ErrInvalidResponse, f.name, err)
		}
		if len(b) < f.min || len(b) > f.max {
			return nil, fmt.Errorf("%w: %s length %d", httpclient.ErrInvalidResponse, f.name, len(b))
		}
		decoded[i] = b
	}

	return &AuthInfo{
		RAND:  decoded[0],
		AUTN:  decoded[1],
		XRES:  decoded[2],
		KASME: decoded[3],
	}, nil
}
