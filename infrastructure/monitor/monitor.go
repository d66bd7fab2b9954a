package monitor

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"book-aggregator-go/market"
)

// Monitor Prometheus监控指标收集器
type Monitor struct {
	registry *prometheus.Registry

	// 拉取指标
	fetches        *prometheus.CounterVec
	fetchLatency   *prometheus.HistogramVec
	snapshotLevels *prometheus.GaugeVec

	// 合并簿指标
	merges       prometheus.Counter
	mergedLevels *prometheus.GaugeVec

	// 模拟成交指标
	executionValue     *prometheus.GaugeVec
	executionFilled    *prometheus.GaugeVec
	executionRemainder *prometheus.GaugeVec
	executionAvgPrice  *prometheus.GaugeVec
}

// Config 监控配置
type Config struct {
	Namespace string
	Subsystem string
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Namespace: "bookagg",
		Subsystem: "",
	}
}

// New 创建新的Monitor实例，使用独立 registry。
func New(cfg Config) *Monitor {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Monitor{
		registry: reg,

		fetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "fetch_total",
				Help:      "订单簿拉取次数，按结果分类",
			},
			[]string{"venue", "outcome"},
		),
		fetchLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "fetch_latency_seconds",
				Help:      "订单簿拉取延迟（秒）",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"venue"},
		),
		snapshotLevels: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "snapshot_levels",
				Help:      "最新快照档数",
			},
			[]string{"venue", "side"},
		),
		merges: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "merges_total",
			Help:      "合并簿构建次数",
		}),
		mergedLevels: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "merged_levels",
				Help:      "合并簿档数",
			},
			[]string{"side"},
		),
		executionValue: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "execution_value",
				Help:      "模拟市价单总成交额",
			},
			[]string{"side"},
		),
		executionFilled: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "execution_filled",
				Help:      "模拟市价单成交数量",
			},
			[]string{"side"},
		),
		executionRemainder: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "execution_remainder",
				Help:      "流动性不足导致的未成交数量",
			},
			[]string{"side"},
		),
		executionAvgPrice: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "execution_avg_price",
				Help:      "模拟市价单成交均价",
			},
			[]string{"side"},
		),
	}
}

// 拉取相关方法
func (m *Monitor) RecordFetch(venue market.Venue, outcome string) {
	m.fetches.WithLabelValues(venue.String(), outcome).Inc()
}

func (m *Monitor) RecordFetchLatency(venue market.Venue, seconds float64) {
	m.fetchLatency.WithLabelValues(venue.String()).Observe(seconds)
}

func (m *Monitor) UpdateSnapshot(snap *market.VenueSnapshot) {
	if snap == nil {
		return
	}
	m.snapshotLevels.WithLabelValues(snap.Venue.String(), "bid").Set(float64(len(snap.Bids)))
	m.snapshotLevels.WithLabelValues(snap.Venue.String(), "ask").Set(float64(len(snap.Asks)))
}

// 合并簿相关方法
func (m *Monitor) RecordMerge(book *market.MergedBook) {
	m.merges.Inc()
	if book == nil {
		return
	}
	m.mergedLevels.WithLabelValues("bid").Set(float64(len(book.Bids)))
	m.mergedLevels.WithLabelValues("ask").Set(float64(len(book.Asks)))
}

// 模拟成交相关方法
func (m *Monitor) RecordExecution(res market.Execution) {
	side := res.Side.String()
	m.executionValue.WithLabelValues(side).Set(res.TotalValue)
	m.executionFilled.WithLabelValues(side).Set(res.FilledQty)
	m.executionRemainder.WithLabelValues(side).Set(res.Remainder)
	m.executionAvgPrice.WithLabelValues(side).Set(res.AveragePrice())
}

// Handler 返回HTTP handler用于暴露指标
func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry 返回prometheus registry
func (m *Monitor) Registry() *prometheus.Registry {
	return m.registry
}
