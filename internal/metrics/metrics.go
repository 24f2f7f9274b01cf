package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ModelLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plaga_model_loads_total",
			Help: "Model load attempts by result",
		},
		[]string{"result"},
	)

	Analyses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plaga_analyses_total",
			Help: "Diagnosis reports by source (model, demo, symptoms)",
		},
		[]string{"source"},
	)

	Fallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plaga_demo_fallbacks_total",
			Help: "Image analyses answered with the demo dataset",
		},
		[]string{"reason"},
	)

	InferenceDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "plaga_inference_duration_seconds",
			Help:    "Time spent decoding and classifying an uploaded image, model load excluded",
			Buckets: prometheus.DefBuckets,
		},
	)
)
