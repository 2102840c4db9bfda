package llm

import (
	"context"
	"net/http"
	"time"

	"github.com/Conceptual-Machines/uivariants-api/internal/metrics"
	"github.com/Conceptual-Machines/uivariants-api/internal/models"
)

// Sampling defaults shared by every dialect
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 3000
)

// Provider turns one prompt into one raw text completion using the caller's
// connection settings. Implementations must be safe for concurrent use.
type Provider interface {
	Complete(ctx context.Context, prompt string, settings models.ConnectionSettings) (string, error)
}

// DialectProvider is a Provider bound to one wire format
type DialectProvider interface {
	Provider
	// Name returns the human readable provider name used in error messages
	Name() string
}

// Options shared by all dialect providers
type Options struct {
	SystemPrompt string
	Temperature  float64
	MaxTokens    int
	HTTPClient   *http.Client
	Timeout      time.Duration // Per call; zero means no extra deadline
	Recorder     *metrics.Recorder
}

func (o Options) withDefaults() Options {
	if o.Temperature == 0 {
		o.Temperature = DefaultTemperature
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = DefaultMaxTokens
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{}
	}
	return o
}
