package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	StateSaves = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "neurotrade", Name: "state_saves_total", Help: "Number of trading-state save attempts by outcome."},
		[]string{"outcome"},
	)
	StateLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "neurotrade", Name: "state_loads_total", Help: "Number of trading-state load attempts by outcome."},
		[]string{"outcome"},
	)
	HistoryWrites = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "neurotrade", Name: "state_history_writes_total", Help: "Number of versioned state snapshots appended to history."},
	)
	CollectionInitFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "neurotrade", Name: "collection_init_failures_total", Help: "Number of failed collection marker writes by collection."},
		[]string{"collection"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "neurotrade", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "neurotrade", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(StateSaves)
	reg.MustRegister(StateLoads)
	reg.MustRegister(HistoryWrites)
	reg.MustRegister(CollectionInitFailures)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
