package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "coursehub", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "coursehub", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	LockWait = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "coursehub", Name: "collection_lock_wait_seconds", Help: "Time spent waiting for a collection lock.", Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8)},
		[]string{"collection"},
	)
	StorageErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "coursehub", Name: "storage_errors_total", Help: "Collection read/write/lock failures by collection and operation."},
		[]string{"collection", "op"},
	)
	Mutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "coursehub", Name: "mutations_total", Help: "Coordinated mutations by operation and outcome (ok|not_found|error)."},
		[]string{"op", "outcome"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(LockWait)
	reg.MustRegister(StorageErrors)
	reg.MustRegister(Mutations)
}
