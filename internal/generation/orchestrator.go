package generation

import (
	"context"
	"time"

	"github.com/Conceptual-Machines/uivariants-api/internal/llm"
	"github.com/Conceptual-Machines/uivariants-api/internal/logger"
	"github.com/Conceptual-Machines/uivariants-api/internal/metrics"
	"github.com/Conceptual-Machines/uivariants-api/internal/models"
	"github.com/Conceptual-Machines/uivariants-api/internal/observability"
	"github.com/Conceptual-Machines/uivariants-api/internal/prompt"
	"github.com/Conceptual-Machines/uivariants-api/internal/sanitizer"
	"github.com/getsentry/sentry-go"
	"golang.org/x/sync/errgroup"
)

// Policy defaults
const (
	DefaultMinViable   = 3
	DefaultRetryBudget = 1
)

// PromptBuilder renders the prompt for one theme
type PromptBuilder interface {
	BuildPrompt(instruction string, theme models.StyleTheme) (string, error)
}

// Orchestrator fans one request out to every theme, retries failed themes
// and keeps the result only if enough themes succeeded.
type Orchestrator struct {
	provider    llm.Provider
	builder     PromptBuilder
	sanitizer   *sanitizer.Sanitizer
	assembler   *Assembler
	themes      []models.StyleTheme
	minViable   int
	retryBudget int
	concurrency int
	recorder    *metrics.Recorder
	tracer      *observability.LangfuseClient
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithMinViable sets how many themes must succeed
func WithMinViable(n int) Option {
	return func(o *Orchestrator) { o.minViable = n }
}

// WithRetryBudget sets how many retries each theme gets after its first attempt
func WithRetryBudget(n int) Option {
	return func(o *Orchestrator) { o.retryBudget = n }
}

// WithConcurrency caps in-flight themes. Zero means all at once.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) { o.concurrency = n }
}

// WithSanitizer replaces the default sanitizer
func WithSanitizer(s *sanitizer.Sanitizer) Option {
	return func(o *Orchestrator) { o.sanitizer = s }
}

// WithPromptBuilder replaces the default prompt builder
func WithPromptBuilder(b PromptBuilder) Option {
	return func(o *Orchestrator) { o.builder = b }
}

// WithThemes replaces the theme catalog
func WithThemes(themes []models.StyleTheme) Option {
	return func(o *Orchestrator) { o.themes = themes }
}

// WithAssembler replaces the result assembler
func WithAssembler(a *Assembler) Option {
	return func(o *Orchestrator) { o.assembler = a }
}

// WithRecorder sets the metrics recorder
func WithRecorder(r *metrics.Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithTracer sets the Langfuse client
func WithTracer(t *observability.LangfuseClient) Option {
	return func(o *Orchestrator) { o.tracer = t }
}

// NewOrchestrator creates an orchestrator over the full theme catalog
func NewOrchestrator(provider llm.Provider, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		provider:    provider,
		builder:     prompt.NewPromptBuilder(),
		sanitizer:   sanitizer.New(sanitizer.DefaultMinLength),
		assembler:   NewAssembler(),
		themes:      prompt.Themes(),
		minViable:   DefaultMinViable,
		retryBudget: DefaultRetryBudget,
		tracer:      observability.GetClient(),
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.retryBudget < 0 {
		o.retryBudget = 0
	}
	if o.minViable <= 0 {
		o.minViable = DefaultMinViable
	}
	if o.minViable > len(o.themes) {
		o.minViable = len(o.themes)
	}
	if o.concurrency <= 0 || o.concurrency > len(o.themes) {
		o.concurrency = len(o.themes)
	}
	return o
}

// Policy is the effective generation policy after defaults and clamping
type Policy struct {
	Themes           int
	MinViable        int
	RetryBudget      int
	Concurrency      int
	MinContentLength int
}

// Policy reports the settings Generate runs with
func (o *Orchestrator) Policy() Policy {
	return Policy{
		Themes:           len(o.themes),
		MinViable:        o.minViable,
		RetryBudget:      o.retryBudget,
		Concurrency:      o.concurrency,
		MinContentLength: o.sanitizer.MinLength,
	}
}

// Themes returns the catalog this orchestrator generates for
func (o *Orchestrator) Themes() []models.StyleTheme {
	out := make([]models.StyleTheme, len(o.themes))
	copy(out, o.themes)
	return out
}

// Generate runs every theme to settlement and assembles the successes.
// Configuration errors are returned before any provider call.
func (o *Orchestrator) Generate(ctx context.Context, req models.GenerationRequest) (*models.GenerationResult, error) {
	req, err := req.Validate()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	provider := ProviderLabel(req.Settings.BaseURL)
	fields := logger.Fields{
		"model":    req.Settings.ModelName,
		"provider": provider,
		"themes":   len(o.themes),
	}
	logger.Info("Generation started", fields)

	span := sentry.StartSpan(ctx, "generation.fanout")
	span.SetTag("provider", provider)
	defer span.Finish()
	ctx = span.Context()

	trace := o.tracer.StartTrace(ctx, "ui-variants", req.Instruction, map[string]interface{}{
		"model":    req.Settings.ModelName,
		"provider": provider,
	})
	defer trace.Finish()

	outcomes := o.fanOut(ctx, req, trace)

	succeeded := 0
	var failures []ThemeFailure
	for _, out := range outcomes {
		if out.Succeeded() {
			succeeded++
			continue
		}
		failures = append(failures, ThemeFailure{
			Style:   out.Theme.Key,
			Name:    out.Theme.DisplayName,
			Message: failureMessage(out.Err),
		})
	}

	duration := time.Since(start)
	ok := succeeded >= o.minViable
	o.recorder.Generation(ctx, provider, duration, succeeded, len(failures), ok)
	logger.LogGenerationRequest(ctx, req.Settings.ModelName, duration, succeeded, len(failures), logger.Fields{"provider": provider})

	if !ok {
		span.Status = sentry.SpanStatusInternalError
		insufficient := &InsufficientVariantsError{
			Successes: succeeded,
			Required:  o.minViable,
			Failures:  failures,
		}
		failed := make([]string, 0, len(failures))
		for _, f := range failures {
			failed = append(failed, string(f.Style))
		}
		logger.Warn("Generation failed", logger.Fields{
			"model":     req.Settings.ModelName,
			"provider":  provider,
			"successes": succeeded,
			"required":  o.minViable,
			"failed":    failed,
			"error":     insufficient.Error(),
		})
		return nil, insufficient
	}

	result := o.assembler.Assemble(req, outcomes)
	for _, v := range result.Variations {
		o.recorder.VariantDelivered(string(v.Style))
	}
	span.Status = sentry.SpanStatusOK
	return &result, nil
}

// fanOut settles every theme into its own slot. Tasks never return errors
// to the group, so one failing theme cannot cancel the rest.
func (o *Orchestrator) fanOut(ctx context.Context, req models.GenerationRequest, trace *observability.Trace) []models.VariantOutcome {
	outcomes := make([]models.VariantOutcome, len(o.themes))

	var g errgroup.Group
	g.SetLimit(o.concurrency)
	for i, theme := range o.themes {
		g.Go(func() error {
			outcomes[i] = o.runTheme(ctx, i, theme, req, trace)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

// runTheme owns one theme's attempts: first try plus retryBudget retries
func (o *Orchestrator) runTheme(ctx context.Context, index int, theme models.StyleTheme, req models.GenerationRequest, trace *observability.Trace) models.VariantOutcome {
	outcome := models.VariantOutcome{Index: index, Theme: theme}

	promptText, err := o.builder.BuildPrompt(req.Instruction, theme)
	if err != nil {
		outcome.Err = err
		return outcome
	}

	maxAttempts := 1 + o.retryBudget
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		outcome.Attempts = attempt

		html, err := o.attempt(ctx, promptText, theme, attempt, req, trace)
		if err == nil {
			outcome.HTML = html
			outcome.Err = nil
			logger.Debug("Variant generated", logger.Fields{"style": theme.Key, "attempt": attempt})
			return outcome
		}
		outcome.Err = err

		fields := logger.Fields{"style": theme.Key, "attempt": attempt, "error": err.Error()}
		if attempt < maxAttempts {
			logger.Warn("Variant attempt failed, retrying", fields)
		} else {
			logger.Warn("Variant failed", fields)
		}

		if ctx.Err() != nil {
			break
		}
	}
	return outcome
}

func (o *Orchestrator) attempt(ctx context.Context, promptText string, theme models.StyleTheme, attempt int, req models.GenerationRequest, trace *observability.Trace) (string, error) {
	gen := trace.Generation("variant."+string(theme.Key), req.Settings.ModelName, promptText, map[string]interface{}{
		"style":   theme.Key,
		"attempt": attempt,
	})
	defer gen.Finish()

	raw, err := o.provider.Complete(ctx, promptText, req.Settings)
	if err == nil {
		gen.Output(raw)
		raw, err = o.sanitizer.Sanitize(raw)
	}

	o.recorder.VariantAttempt(ctx, string(theme.Key), attempt, err)
	if err != nil {
		gen.Fail(err)
		return "", err
	}
	return raw, nil
}

func failureMessage(err error) string {
	if err == nil {
		return "no output"
	}
	return err.Error()
}
