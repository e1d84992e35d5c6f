package processor

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/evoplatform/v1/pkg/types"
)

// 处理器 Prometheus 指标
//
// 设计原则：
// - 仅暴露少量高价值指标，避免噪音；
// - 热路径只做计数与一次直方图观测；
// - 使用默认 Registry，方便通过 /metrics 统一抓取。

var (
	processorMetricsOnce sync.Once

	transitionsProcessedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "evo",
			Subsystem: "platform",
			Name:      "transitions_processed_total",
			Help:      "State transitions processed, labeled by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	transitionDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "evo",
			Subsystem: "platform",
			Name:      "transition_duration_seconds",
			Help:      "Wall time spent in the full validation pipeline per transition.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
		[]string{"kind"},
	)
)

// registerMetrics 注册处理器指标（幂等）
func registerMetrics() {
	processorMetricsOnce.Do(func() {
		prometheus.MustRegister(
			transitionsProcessedCounter,
			transitionDurationHistogram,
		)
	})
}

// observeProcessed 记录单条转换的处理结论与耗时
func observeProcessed(kind types.TransitionKind, valid bool, elapsed time.Duration) {
	outcome := "rejected"
	if valid {
		outcome = "accepted"
	}
	transitionsProcessedCounter.WithLabelValues(kind.String(), outcome).Inc()
	transitionDurationHistogram.WithLabelValues(kind.String()).Observe(elapsed.Seconds())
}
