// Package service は各コンポーネントの起動と停止順序を管理する。
package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/oyaguma3/mme-emm-core/internal/config"
	"github.com/oyaguma3/mme-emm-core/internal/ue"
)

// EventLoop はイベントループ
type EventLoop interface {
	Run(ctx context.Context) error
	Committed() ue.Snapshot
}

// Listener は無線側の接続受付
type Listener interface {
	Serve(ctx context.Context) error
}

// Publisher は集約状態の外部書き出し
type Publisher interface {
	Run(ctx context.Context, initial ue.Snapshot) error
}

// HTTPServer は運用API
type HTTPServer interface {
	Run() error
	Shutdown(ctx context.Context) error
}

// Components はServiceが管理する構成要素。PublisherとHTTPは省略可能。
type Components struct {
	Loop      EventLoop
	Radio     Listener
	Publisher Publisher
	HTTP      HTTPServer

	// Stop系はイベントループ停止後に登録順で呼ばれる
	Stoppers []func()
}

// Service は全コンポーネントを1つのerrgroupで実行する
type Service struct {
	c Components
}

// New は新しいServiceを生成する
func New(c Components) *Service {
	return &Service{c: c}
}

// Run はctxがキャンセルされるか、いずれかのコンポーネントが失敗するまで実行する。
// 戻る前に全コンポーネントの停止を待ち、Stoppersを実行する。
func (s *Service) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return s.c.Loop.Run(gctx) })
	g.Go(func() error { return s.c.Radio.Serve(gctx) })

	if s.c.Publisher != nil {
		g.Go(func() error { return s.c.Publisher.Run(gctx, s.c.Loop.Committed()) })
	}

	if s.c.HTTP != nil {
		g.Go(func() error {
			if err := s.c.HTTP.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
			defer cancel()
			return s.c.HTTP.Shutdown(shutdownCtx)
		})
	}

	err := g.Wait()
	for _, stop := range s.c.Stoppers {
		stop()
	}
	if err != nil {
		slog.Error("サービス異常終了", "event_id", "SERVICE_STOP_ERR", "error", err)
		return err
	}
	slog.Info("サービス停止", "event_id", "SERVICE_STOP")
	return nil
}
