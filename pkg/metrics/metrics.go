package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "authorityai"

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	// InterviewEvents counts interview state transitions (started, answered, completed).
	InterviewEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "interview_events_total", Help: "Interview state transitions by event."},
		[]string{"event"},
	)
	// Generations counts calls into the text generator by kind (question|content) and result (ok|fallback).
	Generations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "generations_total", Help: "Text generation calls by kind and result."},
		[]string{"kind", "result"},
	)
	GenerationLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_latency_seconds",
			Help:      "Latency of text generation calls by kind.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"kind"},
	)
	ContentCreated = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "content_created_total", Help: "Content artifacts created from completed interviews."},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(InterviewEvents)
	reg.MustRegister(Generations)
	reg.MustRegister(GenerationLatency)
	reg.MustRegister(ContentCreated)
}
