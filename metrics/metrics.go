package metrics

import "github.com/prometheus/client_golang/prometheus"

const Namespace = "portfoliohub"

type Metrics interface {
	Registry() *prometheus.Registry
}
