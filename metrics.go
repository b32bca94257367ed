package textback

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	questionsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "textback_questions_generated_total",
			Help: "Questions generated, by variant.",
		},
		[]string{"variant"},
	)

	generationRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "textback_generation_retries_total",
			Help: "Generation attempts that drew an unusable sample, by variant.",
		},
		[]string{"variant"},
	)

	generationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "textback_generation_failures_total",
			Help: "Question requests that ended in an error, by variant.",
		},
		[]string{"variant"},
	)

	cacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "textback_question_cache_hits_total",
			Help: "Questions served from the question cache.",
		},
	)

	providerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "textback_provider_requests_total",
			Help: "Model requests, by outcome (ok, malformed, error).",
		},
		[]string{"outcome"},
	)

	providerLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "textback_provider_request_seconds",
			Help:    "Model request latency in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
	)
)

func init() {
	prometheus.MustRegister(questionsGenerated)
	prometheus.MustRegister(generationRetries)
	prometheus.MustRegister(generationFailures)
	prometheus.MustRegister(cacheHits)
	prometheus.MustRegister(providerRequests)
	prometheus.MustRegister(providerLatency)
}
