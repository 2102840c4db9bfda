package metrics

import (
	"context"
	"strconv"
	"time"
)

// Recorder fans one event out to every configured backend. A nil Recorder
// and nil backends are valid and record nothing.
type Recorder struct {
	prom       *Prometheus
	sentry     *SentryMetrics
	cloudwatch *Client
}

// NewRecorder wires the backends together
func NewRecorder(prom *Prometheus, cw *Client) *Recorder {
	return &Recorder{
		prom:       prom,
		sentry:     NewSentryMetrics(),
		cloudwatch: cw,
	}
}

// VariantAttempt records one provider attempt for one theme
func (r *Recorder) VariantAttempt(ctx context.Context, style string, attempt int, err error) {
	if r == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	if r.prom != nil {
		r.prom.VariantAttempts.WithLabelValues(style, outcome).Inc()
	}
	if r.sentry != nil {
		r.sentry.RecordVariantAttempt(ctx, style, attempt, err == nil)
	}
}

// VariantDelivered records a variant that reached the result
func (r *Recorder) VariantDelivered(style string) {
	if r == nil || r.prom == nil {
		return
	}
	r.prom.VariantsDelivered.WithLabelValues(style).Inc()
}

// Generation records a settled fan-out
func (r *Recorder) Generation(ctx context.Context, provider string, duration time.Duration, succeeded, failed int, success bool) {
	if r == nil {
		return
	}
	if r.prom != nil {
		outcome := "success"
		if !success {
			outcome = "insufficient"
		}
		r.prom.Generations.WithLabelValues(provider, outcome).Inc()
		r.prom.GenerationDuration.WithLabelValues(provider).Observe(duration.Seconds())
	}
	if r.sentry != nil {
		r.sentry.RecordGenerationDuration(ctx, duration, succeeded, failed, success)
	}
	if r.cloudwatch != nil {
		r.cloudwatch.RecordGeneration(provider, duration, succeeded, failed, success)
	}
}

// ProviderCall records the latency of one provider call
func (r *Recorder) ProviderCall(provider string, duration time.Duration) {
	if r == nil || r.prom == nil {
		return
	}
	r.prom.ProviderLatency.WithLabelValues(provider).Observe(duration.Seconds())
}

// APIRequest records one served HTTP request
func (r *Recorder) APIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	if r == nil {
		return
	}
	if r.prom != nil {
		r.prom.HTTPRequests.WithLabelValues(endpoint, strconv.Itoa(statusCode)).Inc()
	}
	if r.sentry != nil {
		r.sentry.RecordAPIRequest(ctx, endpoint, statusCode, duration)
	}
	if r.cloudwatch != nil {
		r.cloudwatch.RecordAPIRequest(endpoint, statusCode, duration)
	}
}
