// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, route, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "route"},
	)
)

// Business metrics track wiki operations
var (
	ArticlesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wiki_articles_total",
			Help: "Number of articles currently stored",
		},
	)

	UsersTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wiki_users_total",
			Help: "Number of registered users",
		},
	)

	ArticleChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wiki_article_changes_total",
			Help: "Article mutations by operation (create, update, delete)",
		},
		[]string{"operation"},
	)

	AuthAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wiki_auth_attempts_total",
			Help: "Login and registration attempts by action and result",
		},
		[]string{"action", "result"},
	)
)
