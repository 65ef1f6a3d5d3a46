package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	generationAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gift_generation_attempts_total",
			Help: "Gift generation attempts by outcome and error kind",
		},
		[]string{"status", "kind"},
	)

	generationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gift_generation_duration_seconds",
			Help:    "Wall time of one profile's generation attempt",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60, 120},
		},
		[]string{"status"},
	)

	stageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gift_generation_stage_duration_seconds",
			Help:    "Wall time per pipeline stage",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	tokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gift_generation_tokens_total",
			Help: "Tokens consumed by gift generation",
		},
		[]string{"model", "type"},
	)

	costTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gift_generation_cost_usd_total",
			Help: "Estimated spend on gift generation in USD",
		},
		[]string{"model"},
	)

	qualityScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gift_profile_quality_score",
			Help:    "Distribution of profile data quality scores at generation time",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	suggestionsPersisted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gift_suggestions_persisted_total",
			Help: "Gift suggestions written as pending",
		},
	)

	batchRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gift_batch_profiles_total",
			Help: "Profiles processed by batch sweeps by outcome",
		},
		[]string{"status"},
	)
)

// ObserveAttempt records one finished generation attempt. kind is empty on
// success.
func ObserveAttempt(success bool, kind string, d time.Duration) {
	status := "success"
	if !success {
		status = "failed"
	}
	generationAttempts.WithLabelValues(status, kind).Inc()
	generationDuration.WithLabelValues(status).Observe(d.Seconds())
}

// ObserveStage records the duration of one pipeline stage
func ObserveStage(stage string, d time.Duration) {
	stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// ObserveUsage records token usage and spend for one completion
func ObserveUsage(model string, promptTokens, completionTokens int64, cost float64) {
	tokensTotal.WithLabelValues(model, "prompt").Add(float64(promptTokens))
	tokensTotal.WithLabelValues(model, "completion").Add(float64(completionTokens))
	costTotal.WithLabelValues(model).Add(cost)
}

// ObserveQualityScore records a profile's data quality score
func ObserveQualityScore(score int) {
	qualityScores.Observe(float64(score))
}

// AddSuggestionsPersisted counts newly written suggestions
func AddSuggestionsPersisted(n int) {
	suggestionsPersisted.Add(float64(n))
}

// ObserveBatch records one batch sweep's totals
func ObserveBatch(successful, failed int) {
	batchRuns.WithLabelValues("success").Add(float64(successful))
	batchRuns.WithLabelValues("failed").Add(float64(failed))
}

// Handler serves the default registry for scraping
func Handler() http.Handler {
	return promhttp.Handler()
}
