package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts requests on the public surface by method and status.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arkgw_http_requests_total",
			Help: "Requests served on the gateway HTTP surface.",
		},
		[]string{"method", "status"},
	)

	// QueriesCreated counts query records created by the gateway, labeled by
	// the surface that created them (a2a or openai).
	QueriesCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arkgw_queries_created_total",
			Help: "Query records created on behalf of gateway clients.",
		},
		[]string{"surface"},
	)

	// ActiveAgents tracks how many agents currently have A2A routes.
	ActiveAgents = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "arkgw_active_agents",
			Help: "Agents currently served on the A2A surface.",
		},
	)
)

func init() {
	prometheus.MustRegister(NewBuildInfoCollector())
}
