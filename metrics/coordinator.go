package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Coordinator 会话协调器指标，实现 core/net/http.Metrics
type Coordinator struct {
	refreshes *prometheus.CounterVec
	queued    prometheus.Counter
	backoffs  prometheus.Counter
	shared    *prometheus.CounterVec
}

// NewCoordinator 创建并注册协调器指标
func NewCoordinator(reg prometheus.Registerer) *Coordinator {
	c := &Coordinator{
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "auth",
			Name:      "refresh_total",
			Help:      "Session refresh attempts by result.",
		}, []string{"result"}),
		queued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "auth",
			Name:      "refresh_queued_total",
			Help:      "Requests that waited behind an in-flight session refresh.",
		}),
		backoffs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "backoff_retries_total",
			Help:      "Requests retried after a 429 response.",
		}),
		shared: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "dedup",
			Name:      "shared_total",
			Help:      "Callers that joined an in-flight call instead of starting one.",
		}, []string{"key"}),
	}

	if reg != nil {
		reg.MustRegister(c.refreshes, c.queued, c.backoffs, c.shared)
	}
	return c
}

func (c *Coordinator) RefreshCompleted(result string) {
	c.refreshes.WithLabelValues(result).Inc()
}

func (c *Coordinator) RefreshQueued() {
	c.queued.Inc()
}

func (c *Coordinator) BackoffRetry() {
	c.backoffs.Inc()
}

// DedupShared 可直接作为 dedup.WithSharedHook 的回调
func (c *Coordinator) DedupShared(key string) {
	c.shared.WithLabelValues(key).Inc()
}
