// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mood_music_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "mood_music_http_request_duration_seconds",
			Help: "HTTP request duration in seconds",
		},
		[]string{"method", "route"},
	)

	// Searches counts fetch results by where the tracks came from
	// (held, cache, network, fallback_cache, fallback_network, empty).
	Searches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mood_music_searches_total",
			Help: "Search fetches by result source",
		},
		[]string{"source"},
	)

	FallbackFetches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mood_music_search_fallbacks_total",
			Help: "Fallback fetches issued after an empty or failed primary search",
		},
	)

	// AnalyzerCalls counts analyzer invocations by outcome (ok, fallback).
	AnalyzerCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mood_music_analyzer_calls_total",
			Help: "Analyzer calls by outcome",
		},
		[]string{"mode", "outcome"},
	)

	AnalyzerLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "mood_music_analyzer_latency_seconds",
			Help: "Generative collaborator latency in seconds",
		},
	)

	Classifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mood_music_classifications_total",
			Help: "Keyword classifier results by kind",
		},
		[]string{"kind"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mood_music_active_sessions",
			Help: "Number of live conversation sessions",
		},
	)

	PlaybackFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mood_music_playback_failures_total",
			Help: "Playback failures reported by clients",
		},
		[]string{"kind"},
	)
)
