package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/oyaguma3/mme-emm-core/internal/config"
	"github.com/oyaguma3/mme-emm-core/internal/httpclient"
)

// PathSessions はセッションリソースのパス
const PathSessions = "/api/v1/sessions"

// HTTPClient はClientのHTTP実装
type HTTPClient struct {
	api *httpclient.Client
}

// NewClient は新しいゲートウェイAPIクライアントを生成する。
func NewClient(cfg *config.Config) *HTTPClient {
	return &HTTPClient{api: httpclient.New(config.CBNameGateway, cfg.GatewayAPIURL)}
}

// CreateSession はセッションを作成する。
func (c *HTTPClient) CreateSession(ctx context.Context, req *CreateSessionRequest) (*Session, error) {
	body, err := c.api.Do(ctx, http.MethodPost, PathSessions, req)
	if err != nil {
		return nil, err
	}

	var sess Session
	if err := json.Unmarshal(body, &sess); err != nil {
		return nil, fmt.Errorf("%w: json unmarshal: %v", httpclient.ErrInvalidResponse, err)
	}
	if sess.SessionID == "" {
		return nil, fmt.Errorf("%w: session_id missing", httpclient.ErrInvalidResponse)
	}
	if sess.BearerID == 0 {
		sess.BearerID = req.BearerID
	}
	return &sess, nil
}

// DeleteSession はセッションを削除する。
func (c *HTTPClient) DeleteSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("%w: empty session id", httpclient.ErrInvalidResponse)
	}
	_, err := c.api.Do(ctx, http.MethodDelete, PathSessions+"/"+url.PathEscape(sessionID), nil)
	return err
}
