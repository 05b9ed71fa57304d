package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oyaguma3/mme-emm-core/internal/ue"
)

const namespace = "mme"

// Collector はPrometheusメトリクス。RecorderとしてEngineに、
// スナップショット監視としてRouterに接続される。
type Collector struct {
	gatherer prometheus.Gatherer

	Procedures      *prometheus.CounterVec
	Retransmissions *prometheus.CounterVec
	StaleAnswers    *prometheus.CounterVec

	Registered     prometheus.Gauge
	Connected      prometheus.Gauge
	Idle           prometheus.Gauge
	DefaultBearers prometheus.Gauge
	Contexts       prometheus.Gauge
}

// NewCollector はメトリクスをregに登録する。regがnilの場合はデフォルトレジストリを使用する。
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{gatherer: gatherer}
	var err error

	if c.Procedures, err = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "emm_procedures_total",
		Help:      "EMM procedure outcomes, labeled by procedure and result.",
	}, []string{"procedure", "result"})); err != nil {
		return nil, err
	}
	if c.Retransmissions, err = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "nas_retransmissions_total",
		Help:      "NAS retransmissions triggered by timer expiry.",
	}, []string{"procedure"})); err != nil {
		return nil, err
	}
	if c.StaleAnswers, err = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stale_answers_total",
		Help:      "Collaborator answers discarded because their correlation no longer matched.",
	}, []string{"kind"})); err != nil {
		return nil, err
	}

	gauges := []struct {
		dst  *prometheus.Gauge
		name string
		help string
	}{
		{&c.Registered, "ue_registered", "Subscriber contexts in REGISTERED state."},
		{&c.Connected, "ue_connected", "Subscriber contexts in CONNECTED state."},
		{&c.Idle, "ue_idle", "Subscriber contexts in IDLE state."},
		{&c.DefaultBearers, "default_bearers", "Established default bearers."},
		{&c.Contexts, "ue_contexts", "Live subscriber contexts."},
	}
	for _, g := range gauges {
		gauge, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      g.name,
			Help:      g.help,
		}))
		if err != nil {
			return nil, err
		}
		*g.dst = gauge
	}

	return c, nil
}

// ProcedureResult は手続きの結果を記録する
func (c *Collector) ProcedureResult(procedure, result string) {
	c.Procedures.WithLabelValues(procedure, result).Inc()
}

// Retransmission はNAS再送を記録する
func (c *Collector) Retransmission(procedure string) {
	c.Retransmissions.WithLabelValues(procedure).Inc()
}

// StaleAnswer は破棄したコラボレータ応答を記録する
func (c *Collector) StaleAnswer(kind string) {
	c.StaleAnswers.WithLabelValues(kind).Inc()
}

// Observe は集約スナップショットをゲージに反映する
func (c *Collector) Observe(s ue.Snapshot) {
	c.Registered.Set(float64(s.Registered))
	c.Connected.Set(float64(s.Connected))
	c.Idle.Set(float64(s.Idle))
	c.DefaultBearers.Set(float64(s.DefaultBearers))
	c.Contexts.Set(float64(s.Contexts))
}

// Handler は/metrics用のHTTPハンドラを返す
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector already registered with incompatible type: %w", err)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector already registered with incompatible type: %w", err)
		}
		return nil, err
	}
	return gauge, nil
}
