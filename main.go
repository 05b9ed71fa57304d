// Package main はMME EMM手順処理コアのエントリーポイント。
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/oyaguma3/mme-emm-core/internal/api"
	"github.com/oyaguma3/mme-emm-core/internal/config"
	"github.com/oyaguma3/mme-emm-core/internal/coordinator"
	"github.com/oyaguma3/mme-emm-core/internal/emm"
	"github.com/oyaguma3/mme-emm-core/internal/engine"
	"github.com/oyaguma3/mme-emm-core/internal/gateway"
	"github.com/oyaguma3/mme-emm-core/internal/hss"
	"github.com/oyaguma3/mme-emm-core/internal/metrics"
	"github.com/oyaguma3/mme-emm-core/internal/nas"
	"github.com/oyaguma3/mme-emm-core/internal/radio"
	"github.com/oyaguma3/mme-emm-core/internal/router"
	"github.com/oyaguma3/mme-emm-core/internal/service"
	"github.com/oyaguma3/mme-emm-core/internal/store"
	"github.com/oyaguma3/mme-emm-core/internal/timer"
	"github.com/oyaguma3/mme-emm-core/internal/ue"
)

func main() {
	// 1. 環境変数読み込み
	cfg, err := config.Load()
	if err != nil {
		slog.Error("設定読み込み失敗", "error", err)
		os.Exit(1)
	}

	// 2. ロガー初期化
	initLogger(cfg)

	slog.Info("mme起動開始",
		"s1_listen_addr", cfg.S1ListenAddr,
		"http_listen_addr", cfg.HTTPListenAddr,
		"hss_api_url", cfg.HSSAPIURL,
		"gateway_api_url", cfg.GatewayAPIURL,
		"plmn", cfg.PLMN,
	)

	// 3. Valkeyクライアント初期化
	valkeyClient, err := store.NewValkeyClient(cfg)
	if err != nil {
		slog.Error("Valkey接続失敗",
			"event_id", "VALKEY_CONN_ERR",
			"error", err,
		)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	slog.Info("Valkey接続完了", "addr", cfg.ValkeyAddr())

	// 4. コラボレータクライアント初期化
	hssClient := hss.NewClient(cfg)
	gwClient := gateway.NewClient(cfg)

	// 5. メトリクス
	collector, err := metrics.NewCollector(prometheus.NewRegistry())
	if err != nil {
		slog.Error("メトリクス登録失敗", "event_id", "METRICS_INIT_ERR", "error", err)
		os.Exit(1)
	}

	// 6. イベント投入口（ルーター生成後に接続）
	var loop *router.Router
	post := func(ctx context.Context, ev emm.Event) error {
		return loop.Post(ctx, ev)
	}

	// 7. タイマー・コーディネーター・無線側サーバー
	timers := timer.NewManager(func(h ue.Handle, id ue.TimerID) {
		ev := emm.Event{Kind: emm.EventTimerExpiry, Handle: h, TimerID: id}
		if err := post(context.Background(), ev); err != nil {
			slog.Debug("タイマー満了の投入失敗", "event_id", "TIMER_POST_ERR", "error", err)
		}
	})
	coord := coordinator.New(hssClient, gwClient, post, cfg.CollaboratorDeadline)
	radioServer := radio.NewServer(cfg.S1ListenAddr, post)

	// 8. 手順エンジンとイベントループ
	eng := engine.NewEngine(ue.NewStore(), coord, radioServer, timers, nas.NewCodec(), collector, cfg)
	publisher := store.NewStatsPublisher(valkeyClient)
	loop = router.New(eng, coord, collector, collector.Observe, publisher.Observe)

	// 9. 運用API
	handler := api.NewHandler(loop, publisher, valkeyClient)
	httpServer := api.New(cfg, handler, collector.Handler())

	// 10. サービス起動（シグナル受信まで）
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := service.New(service.Components{
		Loop:      loop,
		Radio:     radioServer,
		Publisher: publisher,
		HTTP:      httpServer,
		Stoppers:  []func(){coord.Close, timers.Stop},
	})
	if err := svc.Run(ctx); err != nil {
		slog.Error("mme異常終了", "event_id", "MME_EXIT_ERR", "error", err)
		os.Exit(1)
	}

	slog.Info("mme停止")
}

// initLogger はロガーを初期化する。
func initLogger(cfg *config.Config) {
	level := slog.LevelInfo
	switch strings.ToUpper(cfg.LogLevel) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	h := slog.NewJSONHandler(os.Stdout, opts)
	logger := slog.New(h).With("app", "mme")
	slog.SetDefault(logger)
}
