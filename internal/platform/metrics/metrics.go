package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "todoweb"

var Default = prometheus.NewRegistry()

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests served by the web frontend.",
	}, []string{"route", "method", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Latency of HTTP requests served by the web frontend.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	RemoteRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "remote_requests_total",
		Help:      "Calls made to the todo REST API.",
	}, []string{"op", "outcome"})

	RemoteRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "remote_request_duration_seconds",
		Help:      "Latency of calls made to the todo REST API.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})

	NotificationsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_published_total",
		Help:      "Todo change notifications published to NATS.",
	}, []string{"action", "outcome"})

	SSEClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sse_clients",
		Help:      "Browsers currently connected to the change stream.",
	})
)

func init() {
	Default.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		HTTPRequestsTotal,
		HTTPRequestDuration,
		RemoteRequestsTotal,
		RemoteRequestDuration,
		NotificationsPublished,
		SSEClients,
	)
}

func DefaultHandler() http.Handler {
	return promhttp.HandlerFor(Default, promhttp.HandlerOpts{Registry: Default})
}

// ObserveRemote records one REST API call.
func ObserveRemote(op string, started time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	RemoteRequestsTotal.WithLabelValues(op, outcome).Inc()
	RemoteRequestDuration.WithLabelValues(op).Observe(time.Since(started).Seconds())
}

// ObserveHTTP records one served request under its route pattern.
func ObserveHTTP(route, method string, status int, started time.Time) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(route, method).Observe(time.Since(started).Seconds())
}
