// Package metrics collects Prometheus metrics for the HTTP surface and the
// user/auth flows.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	LoginSuccess = "success"
	LoginInvalid = "invalid"
	LoginError   = "error"
)

type Collector struct {
	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	usersCreated prometheus.Counter
	logins       *prometheus.CounterVec
	gatherer     prometheus.Gatherer
}

// NewCollector registers on a private registry so tests can build as many
// collectors as they like.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "userauth_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "userauth_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		usersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "userauth_users_created_total",
			Help: "Users created.",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "userauth_logins_total",
			Help: "Login attempts by result.",
		}, []string{"result"}),
		gatherer: reg,
	}
	reg.MustRegister(c.requests, c.duration, c.usersCreated, c.logins)
	return c
}

func (c *Collector) ObserveRequest(method, route string, status int, d time.Duration) {
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.duration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (c *Collector) UserCreated() {
	c.usersCreated.Inc()
}

func (c *Collector) Login(result string) {
	c.logins.WithLabelValues(result).Inc()
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
