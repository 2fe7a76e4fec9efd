package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "workexp", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "workexp", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	// ResourceOps counts service operations by resource (experience, project),
	// operation and outcome (ok, invalid, not_found, error).
	ResourceOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "workexp", Name: "resource_operations_total", Help: "Number of resource operations by outcome."},
		[]string{"resource", "op", "outcome"},
	)
	ExportRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "workexp", Name: "export_runs_total", Help: "Number of export runs by trigger and status."},
		[]string{"trigger", "status"},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "workexp", Name: "http_requests_total", Help: "Number of HTTP requests by method, route and status class."},
		[]string{"method", "route", "class"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(ResourceOps)
	reg.MustRegister(ExportRuns)
	reg.MustRegister(HTTPRequests)
}
