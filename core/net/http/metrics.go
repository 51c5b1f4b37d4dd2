package http

// Metrics 接收协调器事件，metrics 包提供 prometheus 实现
type Metrics interface {
	// RefreshCompleted result 为 success、failure 或 rate_limited
	RefreshCompleted(result string)
	RefreshQueued()
	BackoffRetry()
}

const (
	RefreshSuccess     = "success"
	RefreshFailure     = "failure"
	RefreshRateLimited = "rate_limited"
)

type nopMetrics struct{}

func (nopMetrics) RefreshCompleted(string) {}
func (nopMetrics) RefreshQueued()          {}
func (nopMetrics) BackoffRetry()           {}
