package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	accessDecisions *prometheus.CounterVec
	scoreSubmits    prometheus.Counter
}

func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "perfeval_http_requests_total",
			Help: "HTTP requests by method and status.",
		}, []string{"method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "perfeval_http_request_duration_seconds",
			Help:    "HTTP request duration.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		accessDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "perfeval_access_decisions_total",
			Help: "Access engine decisions by operation and outcome.",
		}, []string{"operation", "outcome"}),
		scoreSubmits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "perfeval_score_submissions_total",
			Help: "Accepted score submissions.",
		}),
	}
	c.registry.MustRegister(c.requestsTotal, c.requestDuration, c.accessDecisions, c.scoreSubmits)
	return c
}

func (c *Collector) RecordRequest(method string, status int, duration time.Duration) {
	c.requestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

func (c *Collector) RecordDecision(operation string, allowed bool) {
	outcome := "denied"
	if allowed {
		outcome = "allowed"
	}
	c.accessDecisions.WithLabelValues(operation, outcome).Inc()
}

func (c *Collector) RecordScoreSubmission() {
	c.scoreSubmits.Inc()
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
