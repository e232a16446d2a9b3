package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	fetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pdffetcher",
			Name:      "fetches_total",
			Help:      "Total document downloads by source kind and result",
		},
		[]string{"source", "result"},
	)

	fetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pdffetcher",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of document downloads by source kind",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	fetchBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pdffetcher",
			Name:      "fetched_bytes_total",
			Help:      "Total bytes downloaded",
		},
	)

	pagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pdffetcher",
			Name:      "pages_total",
			Help:      "Pages visited by outcome (extracted, skipped, empty)",
		},
		[]string{"outcome"},
	)

	stageResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pdffetcher",
			Name:      "pipeline_stage_results_total",
			Help:      "Pipeline stage completions by stage and result",
		},
		[]string{"stage", "result"},
	)
)

func init() {
	prometheus.MustRegister(fetchesTotal, fetchDuration, fetchBytes, pagesTotal, stageResults)
}

// Handler exposes the registered collectors for scraping
func Handler() http.Handler { return promhttp.Handler() }

// ObserveFetch records one download attempt
func ObserveFetch(source, result string, d time.Duration, bytes int) {
	fetchesTotal.WithLabelValues(source, result).Inc()
	fetchDuration.WithLabelValues(source).Observe(d.Seconds())
	if bytes > 0 {
		fetchBytes.Add(float64(bytes))
	}
}

// ObservePages records per-page outcomes of one extraction
func ObservePages(extracted, skipped, empty int) {
	pagesTotal.WithLabelValues("extracted").Add(float64(extracted))
	pagesTotal.WithLabelValues("skipped").Add(float64(skipped))
	pagesTotal.WithLabelValues("empty").Add(float64(empty))
}

// ObserveStage records the completion of a pipeline stage
func ObserveStage(stage string, ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	stageResults.WithLabelValues(stage, result).Inc()
}
