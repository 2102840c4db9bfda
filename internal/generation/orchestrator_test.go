package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Conceptual-Machines/uivariants-api/internal/llm"
	"github.com/Conceptual-Machines/uivariants-api/internal/logger"
	"github.com/Conceptual-Machines/uivariants-api/internal/models"
	"github.com/Conceptual-Machines/uivariants-api/internal/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var validSettings = models.ConnectionSettings{
	ModelName: "gpt-4o-mini",
	APIKey:    "sk-test",
	BaseURL:   "https://api.openai.com/v1",
}

// behavior decides the reply for one theme on one attempt
type behavior func(attempt int) (string, error)

func renders(style string) behavior {
	return func(int) (string, error) { return componentFor(style), nil }
}

func alwaysFail(int) (string, error) {
	return "", &llm.ProviderError{Kind: llm.KindHTTPStatus, StatusCode: 500, Message: "OpenAI API error: 500 Internal Server Error"}
}

func failFirst(style string) behavior {
	return func(attempt int) (string, error) {
		if attempt == 1 {
			return "", &llm.ProviderError{Kind: llm.KindNetwork, Message: "connection reset"}
		}
		return componentFor(style), nil
	}
}

func componentFor(style string) string {
	return fmt.Sprintf("```html\n<section class=\"%s\"><h2>Pricing</h2><p>Plans for every team size.</p></section>\n```", style)
}

// fakeProvider routes by the theme name embedded in the prompt
type fakeProvider struct {
	mu        sync.Mutex
	behaviors map[string]behavior
	calls     map[string]int
	delay     map[string]time.Duration
}

func newFakeProvider(behaviors map[string]behavior) *fakeProvider {
	return &fakeProvider{behaviors: behaviors, calls: map[string]int{}, delay: map[string]time.Duration{}}
}

func (f *fakeProvider) Complete(ctx context.Context, promptText string, _ models.ConnectionSettings) (string, error) {
	style := styleOf(promptText)

	f.mu.Lock()
	f.calls[style]++
	attempt := f.calls[style]
	b := f.behaviors[style]
	d := f.delay[style]
	f.mu.Unlock()

	if d > 0 {
		time.Sleep(d)
	}
	if b == nil {
		return "", errors.New("no behavior for " + style)
	}
	return b(attempt)
}

func (f *fakeProvider) callsFor(style string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[style]
}

func (f *fakeProvider) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

func styleOf(promptText string) string {
	for _, theme := range prompt.Themes() {
		if strings.Contains(promptText, "STYLE: "+theme.DisplayName) {
			return string(theme.Key)
		}
	}
	return "unknown"
}

func allOK() map[string]behavior {
	return map[string]behavior{
		"minimal": renders("minimal"),
		"bold":    renders("bold"),
		"elegant": renders("elegant"),
		"playful": renders("playful"),
		"modern":  renders("modern"),
	}
}

func fixedAssembler() *Assembler {
	return &Assembler{
		now:   func() time.Time { return time.UnixMilli(1700000000000) },
		newID: func() string { return "result-1" },
	}
}

func request() models.GenerationRequest {
	return models.GenerationRequest{Instruction: "  A pricing card with three tiers  ", Settings: validSettings}
}

func styles(result *models.GenerationResult) []models.StyleKey {
	out := make([]models.StyleKey, 0, len(result.Variations))
	for _, v := range result.Variations {
		out = append(out, v.Style)
	}
	return out
}

func TestGenerate_AllThemesSucceed(t *testing.T) {
	provider := newFakeProvider(allOK())
	o := NewOrchestrator(provider, WithAssembler(fixedAssembler()))

	result, err := o.Generate(context.Background(), request())
	require.NoError(t, err)

	assert.Equal(t, "result-1", result.ID)
	assert.Equal(t, "A pricing card with three tiers", result.Instruction)
	assert.Equal(t, "gpt-4o-mini", result.Model)
	assert.Equal(t, "OpenAI", result.Provider)
	assert.Equal(t, int64(1700000000000), result.CreatedAt)
	assert.Equal(t, []models.StyleKey{"minimal", "bold", "elegant", "playful", "modern"}, styles(result))

	ids := map[string]bool{}
	for i, v := range result.Variations {
		assert.Equal(t, fmt.Sprintf("1700000000000-%d-0", i), v.ID)
		assert.True(t, strings.HasPrefix(v.HTMLCode, "<section"), v.HTMLCode)
		assert.Zero(t, v.RetryCount)
		ids[v.ID] = true
	}
	assert.Len(t, ids, 5)
	assert.Equal(t, 5, provider.totalCalls())
}

func TestGenerate_ThresholdBoundary(t *testing.T) {
	t.Run("three successes is a result", func(t *testing.T) {
		b := allOK()
		b["bold"] = alwaysFail
		b["playful"] = alwaysFail

		result, err := NewOrchestrator(newFakeProvider(b)).Generate(context.Background(), request())
		require.NoError(t, err)
		assert.Equal(t, []models.StyleKey{"minimal", "elegant", "modern"}, styles(result))
	})

	t.Run("two successes is insufficient", func(t *testing.T) {
		b := allOK()
		b["minimal"] = alwaysFail
		b["elegant"] = alwaysFail
		b["modern"] = alwaysFail

		result, err := NewOrchestrator(newFakeProvider(b)).Generate(context.Background(), request())
		require.Error(t, err)
		assert.Nil(t, result)

		var insufficient *InsufficientVariantsError
		require.True(t, errors.As(err, &insufficient))
		assert.Equal(t, 2, insufficient.Successes)
		assert.Equal(t, 3, insufficient.Required)
		require.Len(t, insufficient.Failures, 3)
		assert.Equal(t, models.StyleMinimal, insufficient.Failures[0].Style)
		assert.Equal(t, models.StyleElegant, insufficient.Failures[1].Style)
		assert.Equal(t, models.StyleModern, insufficient.Failures[2].Style)
		assert.Contains(t, insufficient.Failures[0].Message, "500 Internal Server Error")
		assert.Contains(t, err.Error(), "Elegant")
	})
}

func TestGenerate_InsufficientLogsWarning(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger.Set(zap.New(core))
	t.Cleanup(func() { logger.Set(zap.NewNop()) })

	b := allOK()
	b["bold"] = alwaysFail
	b["elegant"] = alwaysFail
	b["playful"] = alwaysFail

	_, err := NewOrchestrator(newFakeProvider(b)).Generate(context.Background(), request())
	require.Error(t, err)

	failed := logs.FilterMessage("Generation failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, zapcore.WarnLevel, failed[0].Level)
	fields := failed[0].ContextMap()
	assert.EqualValues(t, 2, fields["successes"])
	assert.EqualValues(t, 3, fields["required"])
	assert.Zero(t, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestGenerate_RetryMarksVariant(t *testing.T) {
	b := allOK()
	b["bold"] = failFirst("bold")
	provider := newFakeProvider(b)

	result, err := NewOrchestrator(provider, WithAssembler(fixedAssembler())).Generate(context.Background(), request())
	require.NoError(t, err)

	require.Len(t, result.Variations, 5)
	bold := result.Variations[1]
	assert.Equal(t, models.StyleBold, bold.Style)
	assert.Equal(t, 1, bold.RetryCount)
	assert.Equal(t, "1700000000000-1-1", bold.ID)
	assert.Equal(t, 2, provider.callsFor("bold"))
}

func TestGenerate_SanitizerRejectionIsRetried(t *testing.T) {
	b := allOK()
	b["elegant"] = func(attempt int) (string, error) {
		if attempt == 1 {
			return "ok", nil
		}
		return componentFor("elegant"), nil
	}
	provider := newFakeProvider(b)

	result, err := NewOrchestrator(provider).Generate(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Variations[2].RetryCount)
	assert.Equal(t, 2, provider.callsFor("elegant"))
}

func TestGenerate_PermanentFailureIsIsolated(t *testing.T) {
	b := allOK()
	b["modern"] = alwaysFail
	provider := newFakeProvider(b)

	result, err := NewOrchestrator(provider).Generate(context.Background(), request())
	require.NoError(t, err)

	assert.Equal(t, []models.StyleKey{"minimal", "bold", "elegant", "playful"}, styles(result))
	for _, v := range result.Variations {
		assert.Zero(t, v.RetryCount)
		assert.Contains(t, v.HTMLCode, string(v.Style))
		assert.Equal(t, 1, provider.callsFor(string(v.Style)))
	}
	assert.Equal(t, 2, provider.callsFor("modern"))
}

func TestGenerate_ConfigurationErrorBeforeAnyCall(t *testing.T) {
	provider := newFakeProvider(allOK())
	o := NewOrchestrator(provider)

	tests := []struct {
		name string
		req  models.GenerationRequest
	}{
		{"blank instruction", models.GenerationRequest{Instruction: "   ", Settings: validSettings}},
		{"missing api key", models.GenerationRequest{Instruction: "card", Settings: models.ConnectionSettings{ModelName: "m", BaseURL: "https://api.openai.com/v1"}}},
		{"relative base url", models.GenerationRequest{Instruction: "card", Settings: models.ConnectionSettings{ModelName: "m", APIKey: "k", BaseURL: "api.openai.com"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := o.Generate(context.Background(), tt.req)

			var cfgErr *models.ConfigurationError
			assert.True(t, errors.As(err, &cfgErr))
		})
	}
	assert.Zero(t, provider.totalCalls())
}

func TestGenerate_OrderIgnoresCompletionOrder(t *testing.T) {
	provider := newFakeProvider(allOK())
	provider.delay["minimal"] = 60 * time.Millisecond
	provider.delay["bold"] = 40 * time.Millisecond
	provider.delay["elegant"] = 20 * time.Millisecond

	result, err := NewOrchestrator(provider).Generate(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, []models.StyleKey{"minimal", "bold", "elegant", "playful", "modern"}, styles(result))
}

// barrierProvider only answers once every theme is in flight at the same time
type barrierProvider struct {
	mu      sync.Mutex
	waiting int
	release chan struct{}
	want    int
}

func (b *barrierProvider) Complete(ctx context.Context, promptText string, _ models.ConnectionSettings) (string, error) {
	b.mu.Lock()
	b.waiting++
	if b.waiting == b.want {
		close(b.release)
	}
	b.mu.Unlock()

	select {
	case <-b.release:
		return componentFor(styleOf(promptText)), nil
	case <-time.After(2 * time.Second):
		return "", errors.New("themes were not in flight concurrently")
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestGenerate_AllThemesInFlightConcurrently(t *testing.T) {
	provider := &barrierProvider{release: make(chan struct{}), want: 5}

	result, err := NewOrchestrator(provider).Generate(context.Background(), request())
	require.NoError(t, err)
	assert.Len(t, result.Variations, 5)
}

func TestGenerate_RetryBudgetIsConfigurable(t *testing.T) {
	b := allOK()
	b["bold"] = failFirst("bold")

	t.Run("zero budget", func(t *testing.T) {
		provider := newFakeProvider(b)
		result, err := NewOrchestrator(provider, WithRetryBudget(0)).Generate(context.Background(), request())
		require.NoError(t, err)
		assert.Len(t, result.Variations, 4)
		assert.Equal(t, 1, provider.callsFor("bold"))
	})

	t.Run("always failing theme uses whole budget", func(t *testing.T) {
		b := allOK()
		b["bold"] = alwaysFail
		provider := newFakeProvider(b)
		_, err := NewOrchestrator(provider, WithRetryBudget(3)).Generate(context.Background(), request())
		require.NoError(t, err)
		assert.Equal(t, 4, provider.callsFor("bold"))
	})
}

func TestGenerate_MinViableIsConfigurable(t *testing.T) {
	b := allOK()
	b["modern"] = alwaysFail

	_, err := NewOrchestrator(newFakeProvider(b), WithMinViable(5)).Generate(context.Background(), request())

	var insufficient *InsufficientVariantsError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, 4, insufficient.Successes)
	assert.Equal(t, 5, insufficient.Required)
}

func TestNewOrchestrator_ClampsPolicy(t *testing.T) {
	o := NewOrchestrator(newFakeProvider(nil), WithMinViable(9), WithRetryBudget(-1), WithConcurrency(0))

	assert.Equal(t, 5, o.minViable)
	assert.Equal(t, 0, o.retryBudget)
	assert.Equal(t, 5, o.concurrency)
	assert.Len(t, o.Themes(), 5)
	assert.Equal(t, Policy{
		Themes:           5,
		MinViable:        5,
		RetryBudget:      0,
		Concurrency:      5,
		MinContentLength: 50,
	}, o.Policy())
}
