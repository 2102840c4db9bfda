package llm

import (
	"context"
	"time"

	"github.com/Conceptual-Machines/uivariants-api/internal/logger"
	"github.com/Conceptual-Machines/uivariants-api/internal/metrics"
	"github.com/Conceptual-Machines/uivariants-api/internal/models"
	"github.com/getsentry/sentry-go"
)

// ProviderFactory routes each call to the dialect its base URL implies.
// It satisfies Provider itself, so callers never pick a dialect.
type ProviderFactory struct {
	providers map[Dialect]DialectProvider
	timeout   time.Duration
	recorder  *metrics.Recorder
}

// NewProviderFactory builds one provider per dialect sharing the same options
func NewProviderFactory(opts Options) *ProviderFactory {
	return &ProviderFactory{
		providers: map[Dialect]DialectProvider{
			DialectOpenAI:    NewOpenAIProvider(opts),
			DialectAnthropic: NewAnthropicProvider(opts),
			DialectGemini:    NewGeminiProvider(opts),
		},
		timeout:  opts.Timeout,
		recorder: opts.Recorder,
	}
}

// GetProvider returns the provider for the given settings
func (f *ProviderFactory) GetProvider(settings models.ConnectionSettings) DialectProvider {
	if p, ok := f.providers[DetectDialect(settings.BaseURL)]; ok {
		return p
	}
	return f.providers[DialectOpenAI]
}

// Complete dispatches to the matching dialect under the per-call timeout
func (f *ProviderFactory) Complete(ctx context.Context, prompt string, settings models.ConnectionSettings) (string, error) {
	provider := f.GetProvider(settings)

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	span := sentry.StartSpan(ctx, "llm.complete")
	span.SetTag("provider", provider.Name())
	span.SetTag("model", settings.ModelName)
	defer span.Finish()

	start := time.Now()
	text, err := provider.Complete(span.Context(), prompt, settings)
	duration := time.Since(start)
	f.recorder.ProviderCall(provider.Name(), duration)

	fields := logger.Fields{
		"provider":    provider.Name(),
		"model":       settings.ModelName,
		"duration_ms": duration.Milliseconds(),
	}
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		fields["error"] = err.Error()
		logger.Warn("Provider call failed", fields)
		return "", err
	}

	span.Status = sentry.SpanStatusOK
	fields["response_chars"] = len(text)
	logger.Debug("Provider call completed", fields)
	return text, nil
}
