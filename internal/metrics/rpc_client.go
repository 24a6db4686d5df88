package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rpcRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "rpc_client",
		Name:      "requests_total",
		Help:      "Count of node RPC requests.",
	}, []string{"operation", "network", "status"})

	rpcRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "rpc_client",
		Name:      "request_duration_seconds",
		Help:      "Duration of node RPC requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "network", "status"})
)

// ObserveRPC records one node RPC call.
func ObserveRPC(operation, network string, err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}
	if network == "" {
		network = "unknown"
	}
	rpcRequestsTotal.WithLabelValues(operation, network, status).Inc()
	rpcRequestDuration.WithLabelValues(operation, network, status).Observe(time.Since(started).Seconds())
}
