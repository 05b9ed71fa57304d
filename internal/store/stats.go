package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/oyaguma3/mme-emm-core/internal/config"
	"github.com/oyaguma3/mme-emm-core/internal/ue"
)

// StatsPublisher は集約スナップショットをValkeyのハッシュへ書き出す。
// 未送信のスナップショットは最新の1件のみ保持する。
type StatsPublisher struct {
	vc     *ValkeyClient
	latest chan ue.Snapshot
	now    func() time.Time

	// published はRunでの書き出し完了時に呼ばれる（テスト用）
	published func(ue.Snapshot)
}

// NewStatsPublisher は新しいStatsPublisherを生成する。
func NewStatsPublisher(vc *ValkeyClient) *StatsPublisher {
	return &StatsPublisher{
		vc:     vc,
		latest: make(chan ue.Snapshot, 1),
		now:    time.Now,
	}
}

// Observe はスナップショットを受け取る。イベントループから呼ばれるためブロックしない。
func (p *StatsPublisher) Observe(s ue.Snapshot) {
	select {
	case <-p.latest:
	default:
	}
	select {
	case p.latest <- s:
	default:
	}
}

// Run はctxがキャンセルされるまでスナップショットを書き出す。
// 変化がない間も一定間隔で再書き込みしてTTLを延長する。
func (p *StatsPublisher) Run(ctx context.Context, initial ue.Snapshot) error {
	last := initial
	if err := p.Publish(ctx, last); err != nil {
		slog.Warn("統計情報の書き出し失敗", "event_id", "STATS_PUBLISH_ERR", "error", err)
	}

	ticker := time.NewTicker(config.StatsRefresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case s := <-p.latest:
			last = s
		case <-ticker.C:
		}
		if err := p.Publish(ctx, last); err != nil {
			slog.Warn("統計情報の書き出し失敗", "event_id", "STATS_PUBLISH_ERR", "error", err)
			continue
		}
		if p.published != nil {
			p.published(last)
		}
	}
}

// Publish はスナップショットを1回書き出す。
func (p *StatsPublisher) Publish(ctx context.Context, s ue.Snapshot) error {
	ctx, cancel := context.WithTimeout(ctx, config.ValkeyCommandTimeout)
	defer cancel()

	pipe := p.vc.Client().Pipeline()
	pipe.HSet(ctx, config.StatsKey,
		"registered", s.Registered,
		"connected", s.Connected,
		"idle", s.Idle,
		"default_bearers", s.DefaultBearers,
		"contexts", s.Contexts,
		"updated_at", p.now().Unix(),
	)
	pipe.Expire(ctx, config.StatsKey, config.StatsTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrValkeyUnavailable, err)
	}
	return nil
}

// Load は書き出し済みのスナップショットを読み出す。
func (p *StatsPublisher) Load(ctx context.Context) (ue.Snapshot, error) {
	var s ue.Snapshot
	cmd := p.vc.Client().HGetAll(ctx, config.StatsKey)
	if err := cmd.Err(); err != nil {
		return s, fmt.Errorf("%w: %v", ErrValkeyUnavailable, err)
	}
	if err := cmd.Scan(&s); err != nil {
		return s, fmt.Errorf("failed to scan stats: %w", err)
	}
	return s, nil
}
