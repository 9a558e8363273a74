package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	questionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paperchat_questions_total",
		Help: "Questions answered, labelled by outcome kind.",
	}, []string{"outcome"})

	questionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "paperchat_question_duration_seconds",
		Help:    "End-to-end question-answering pipeline duration.",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
	})

	documentsUploaded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "paperchat_documents_uploaded_total",
		Help: "Documents accepted by the upload endpoint.",
	})
)
