package llm

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Conceptual-Machines/uivariants-api/internal/models"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	providerNameAnthropic = "Anthropic"
	anthropicVersion      = "2023-06-01"
)

// AnthropicProvider speaks the messages API through anthropic-sdk-go. The
// system prompt is folded into the single user message.
type AnthropicProvider struct {
	opts Options
}

// NewAnthropicProvider creates a new Anthropic-dialect provider
func NewAnthropicProvider(opts Options) *AnthropicProvider {
	return &AnthropicProvider{opts: opts.withDefaults()}
}

// Name returns the provider name
func (p *AnthropicProvider) Name() string {
	return providerNameAnthropic
}

// Complete posts one user message and concatenates the returned text blocks
func (p *AnthropicProvider) Complete(ctx context.Context, prompt string, settings models.ConnectionSettings) (string, error) {
	content := prompt
	if p.opts.SystemPrompt != "" {
		content = p.opts.SystemPrompt + "\n\n" + prompt
	}

	endpoint, err := url.Parse(ResolveEndpoint(DialectAnthropic, settings.BaseURL))
	if err != nil {
		return "", networkError(providerNameAnthropic, err)
	}

	// The SDK always appends its own path, so requests are pointed at the
	// resolved endpoint here. Error bodies are captured before the SDK
	// consumes them.
	var failure *ProviderError
	route := func(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
		req.URL = endpoint
		res, err := next(req)
		if err != nil || res.StatusCode < 300 {
			return res, err
		}
		body, readErr := io.ReadAll(res.Body)
		_ = res.Body.Close()
		if readErr == nil {
			failure = statusError(providerNameAnthropic, res.StatusCode, body)
		}
		res.Body = io.NopCloser(bytes.NewReader(body))
		return res, nil
	}

	client := anthropic.NewClient(
		option.WithAPIKey(settings.APIKey),
		option.WithBaseURL(endpoint.Scheme+"://"+endpoint.Host+"/"),
		option.WithHeader("anthropic-version", anthropicVersion),
		option.WithHTTPClient(p.opts.HTTPClient),
		option.WithMaxRetries(0),
		option.WithMiddleware(route),
	)

	msg, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(settings.ModelName),
		MaxTokens:   int64(p.opts.MaxTokens),
		Temperature: anthropic.Float(p.opts.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(content)),
		},
	})
	if err != nil {
		return "", p.classify(err, failure)
	}

	if len(msg.Content) == 0 {
		return "", malformedError(providerNameAnthropic, "no content blocks in response")
	}

	var out strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	return out.String(), nil
}

func (p *AnthropicProvider) classify(err error, captured *ProviderError) error {
	if captured != nil {
		captured.Err = err
		return captured
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		pe := statusError(providerNameAnthropic, apiErr.StatusCode, nil)
		pe.Err = err
		return pe
	}

	if isTransportError(err) {
		return networkError(providerNameAnthropic, err)
	}

	pe := malformedError(providerNameAnthropic, err.Error())
	pe.Err = err
	return pe
}
