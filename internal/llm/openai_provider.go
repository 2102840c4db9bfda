package llm

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/Conceptual-Machines/uivariants-api/internal/models"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const providerNameOpenAI = "OpenAI"

// OpenAIProvider speaks the chat-completions dialect through openai-go. It
// works for any OpenAI-compatible host since the base URL comes from the
// caller's settings.
type OpenAIProvider struct {
	opts Options
}

// NewOpenAIProvider creates a new OpenAI-dialect provider
func NewOpenAIProvider(opts Options) *OpenAIProvider {
	return &OpenAIProvider{opts: opts.withDefaults()}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return providerNameOpenAI
}

// Complete sends a system + user message pair and returns the first choice
func (p *OpenAIProvider) Complete(ctx context.Context, prompt string, settings models.ConnectionSettings) (string, error) {
	endpoint := ResolveEndpoint(DialectOpenAI, settings.BaseURL)

	// Error bodies are captured before the SDK consumes them so the provider's
	// own message can be surfaced.
	var failure *ProviderError
	capture := func(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
		res, err := next(req)
		if err != nil || res.StatusCode < 300 {
			return res, err
		}
		body, readErr := io.ReadAll(res.Body)
		_ = res.Body.Close()
		if readErr == nil {
			failure = statusError(providerNameOpenAI, res.StatusCode, body)
		}
		res.Body = io.NopCloser(bytes.NewReader(body))
		return res, nil
	}

	client := openai.NewClient(
		option.WithAPIKey(settings.APIKey),
		option.WithBaseURL(strings.TrimSuffix(endpoint, "chat/completions")),
		option.WithHTTPClient(p.opts.HTTPClient),
		option.WithMaxRetries(0),
		option.WithMiddleware(capture),
	)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(settings.ModelName),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(p.opts.SystemPrompt),
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(p.opts.Temperature),
		MaxTokens:   openai.Int(int64(p.opts.MaxTokens)),
	})
	if err != nil {
		return "", p.classify(err, failure)
	}

	if len(resp.Choices) == 0 {
		return "", malformedError(providerNameOpenAI, "no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) classify(err error, captured *ProviderError) error {
	if captured != nil {
		captured.Err = err
		return captured
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		pe := statusError(providerNameOpenAI, apiErr.StatusCode, nil)
		if apiErr.Message != "" {
			pe.Message = apiErr.Message
		}
		pe.Err = err
		return pe
	}

	if isTransportError(err) {
		return networkError(providerNameOpenAI, err)
	}

	pe := malformedError(providerNameOpenAI, err.Error())
	pe.Err = err
	return pe
}
