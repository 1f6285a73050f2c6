package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Search gateway metrics
var (
	// SearchesTotal counts answered searches by the source of the payload ("live" or "fallback").
	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subtitle_searches_total",
			Help: "Total number of subtitle searches by result source.",
		},
		[]string{"source"},
	)

	// SearchFallbacksTotal counts fallback substitutions by cause ("network", "status", "decode", "empty", "canceled").
	SearchFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subtitle_search_fallbacks_total",
			Help: "Total number of searches answered with placeholder results, by cause.",
		},
		[]string{"reason"},
	)
)

// Download relay and history metrics
var (
	SubtitleDownloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subtitle_downloads_total",
			Help: "Total number of relayed subtitle downloads.",
		},
		[]string{"status"},
	)

	HistoryAppendsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subtitle_history_appends_total",
			Help: "Total number of history append attempts.",
		},
		[]string{"status"},
	)
)

// HTTP API metrics
var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by route, method and status code.",
		},
		[]string{"route", "method", "code"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route and method.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
)

func init() {
	prometheus.MustRegister(
		SearchesTotal,
		SearchFallbacksTotal,
		SubtitleDownloadsTotal,
		HistoryAppendsTotal,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	)
}
