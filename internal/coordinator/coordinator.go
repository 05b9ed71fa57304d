// Package coordinator は外部コラボレータへの要求発行と応答の相関付けを行う。
package coordinator

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oyaguma3/mme-emm-core/internal/emm"
	"github.com/oyaguma3/mme-emm-core/internal/gateway"
	"github.com/oyaguma3/mme-emm-core/internal/hss"
	"github.com/oyaguma3/mme-emm-core/internal/httpclient"
	"github.com/oyaguma3/mme-emm-core/internal/ue"
	"github.com/oyaguma3/mme-emm-core/pkg/apperr"
)

// コラボレータ名と操作名
const (
	CollaboratorHSS     = "hss"
	CollaboratorGateway = "gateway"

	OpAuthInfo       = "auth-info"
	OpUpdateLocation = "update-location"
	OpCreateSession  = "create-session"
	OpDeleteSession  = "delete-session"
)

type correlation struct {
	handle  ue.Handle
	kind    emm.EventKind
	started time.Time
}

// Coordinator はRequesterの実装。
// 要求ごとにワーカーgoroutineを起動し、応答期限付きでコラボレータを呼び出す。
type Coordinator struct {
	hss      hss.Client
	gateway  gateway.Client
	post     Poster
	deadline time.Duration

	mu       sync.Mutex
	inflight map[string]correlation

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	newID   func() string
}

// New は新しいCoordinatorを生成する
func New(hssClient hss.Client, gwClient gateway.Client, post Poster, deadline time.Duration) *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		hss:      hssClient,
		gateway:  gwClient,
		post:     post,
		deadline: deadline,
		inflight: make(map[string]correlation),
		baseCtx:  ctx,
		cancel:   cancel,
		newID:    uuid.NewString,
	}
}

// RequestAuthInfo は認証情報要求を発行する
func (c *Coordinator) RequestAuthInfo(h ue.Handle, imsi, plmn string) string {
	return c.dispatch(h, emm.EventAuthInfoAnswer, CollaboratorHSS, OpAuthInfo,
		func(ctx context.Context) (*emm.Answer, error) {
			info, err := c.hss.AuthenticationInfo(ctx, &hss.AuthInfoRequest{IMSI: imsi, PLMN: plmn, NumVectors: 1})
			if err != nil {
				return nil, err
			}
			return &emm.Answer{Vector: &ue.AuthVector{
				RAND:  info.RAND,
				AUTN:  info.AUTN,
				XRES:  info.XRES,
				KASME: info.KASME,
			}}, nil
		})
}

// RequestUpdateLocation は位置登録要求を発行する
func (c *Coordinator) RequestUpdateLocation(h ue.Handle, imsi, plmn string) string {
	return c.dispatch(h, emm.EventUpdateLocationAnswer, CollaboratorHSS, OpUpdateLocation,
		func(ctx context.Context) (*emm.Answer, error) {
			sub, err := c.hss.UpdateLocation(ctx, &hss.UpdateLocationRequest{IMSI: imsi, PLMN: plmn})
			if err != nil {
				return nil, err
			}
			return &emm.Answer{APN: sub.APN, MSISDN: sub.MSISDN}, nil
		})
}

// RequestCreateSession はセッション作成要求を発行する
func (c *Coordinator) RequestCreateSession(h ue.Handle, p SessionParams) string {
	return c.dispatch(h, emm.EventCreateSessionResponse, CollaboratorGateway, OpCreateSession,
		func(ctx context.Context) (*emm.Answer, error) {
			sess, err := c.gateway.CreateSession(ctx, &gateway.CreateSessionRequest{
				IMSI:     p.IMSI,
				MSISDN:   p.MSISDN,
				APN:      p.APN,
				PLMN:     p.PLMN,
				BearerID: p.BearerID,
				MMEUeID:  uint32(h),
			})
			if err != nil {
				return nil, err
			}
			return &emm.Answer{SessionID: sess.SessionID, BearerID: sess.BearerID, UEAddr: sess.UEAddr}, nil
		})
}

// RequestDeleteSession はセッション削除要求を発行する
func (c *Coordinator) RequestDeleteSession(h ue.Handle, imsi, sessionID string) string {
	return c.dispatch(h, emm.EventDeleteSessionResponse, CollaboratorGateway, OpDeleteSession,
		func(ctx context.Context) (*emm.Answer, error) {
			if err := c.gateway.DeleteSession(ctx, sessionID); err != nil {
				return nil, err
			}
			return &emm.Answer{SessionID: sessionID}, nil
		})
}

func (c *Coordinator) dispatch(h ue.Handle, kind emm.EventKind, collaborator, op string,
	call func(ctx context.Context) (*emm.Answer, error)) string {
	id := c.newID()

	c.mu.Lock()
	c.inflight[id] = correlation{handle: h, kind: kind, started: time.Now()}
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		ctx, cancel := context.WithTimeout(httpclient.WithTraceID(c.baseCtx, id), c.deadline)
		answer, err := call(ctx)
		timedOut := ctx.Err() == context.DeadlineExceeded || errors.Is(err, context.DeadlineExceeded)
		cancel()

		if err != nil {
			answer = &emm.Answer{Err: apperr.NewCollaboratorError(collaborator, op, timedOut, err)}
			slog.Warn("コラボレータ要求失敗",
				"event_id", "COLLAB_REQUEST_ERR",
				"request_id", id,
				"mme_ue_id", uint32(h),
				"collaborator", collaborator,
				"operation", op,
				"timeout", timedOut,
				"error", err,
			)
		}

		if err := c.post(c.baseCtx, emm.Event{Kind: kind, RequestID: id, Answer: answer}); err != nil {
			slog.Warn("コラボレータ応答の投入失敗",
				"event_id", "COLLAB_POST_ERR",
				"request_id", id,
				"error", err,
			)
		}
	}()

	return id
}

// Resolve は相関IDに対応するハンドルを返し、相関を削除する。
// 同一IDに対して成功するのは1回のみ。
func (c *Coordinator) Resolve(id string, kind emm.EventKind) (ue.Handle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	corr, ok := c.inflight[id]
	if !ok || corr.kind != kind {
		return 0, false
	}
	delete(c.inflight, id)
	return corr.handle, true
}

// Pending は応答待ちの要求数を返す
func (c *Coordinator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.inflight)
}

// Close は実行中のワーカーを取り消し、全ワーカーの終了を待つ
func (c *Coordinator) Close() {
	c.cancel()
	c.wg.Wait()
}
