package llm

import (
	"context"
	"errors"

	"github.com/Conceptual-Machines/uivariants-api/internal/models"
	"google.golang.org/genai"
)

const providerNameGemini = "Gemini"

// GeminiProvider speaks Google's native generateContent API through genai.
// Google's OpenAI-compatible endpoint is served by OpenAIProvider instead.
type GeminiProvider struct {
	opts Options
}

// NewGeminiProvider creates a new Gemini-dialect provider
func NewGeminiProvider(opts Options) *GeminiProvider {
	return &GeminiProvider{opts: opts.withDefaults()}
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return providerNameGemini
}

// Complete runs a single non-streaming generateContent call
func (p *GeminiProvider) Complete(ctx context.Context, prompt string, settings models.ConnectionSettings) (string, error) {
	root, version := splitGeminiBase(settings.BaseURL)

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     settings.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: p.opts.HTTPClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    root,
			APIVersion: version,
		},
	})
	if err != nil {
		return "", networkError(providerNameGemini, err)
	}

	temp := float32(p.opts.Temperature)
	config := &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: int32(p.opts.MaxTokens),
	}
	if p.opts.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: p.opts.SystemPrompt}},
		}
	}

	result, err := client.Models.GenerateContent(ctx, settings.ModelName, genai.Text(prompt), config)
	if err != nil {
		return "", classifyGeminiError(err)
	}
	if result == nil || len(result.Candidates) == 0 {
		return "", malformedError(providerNameGemini, "no candidates in response")
	}
	return result.Text(), nil
}

func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return geminiStatusError(apiErr, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return geminiStatusError(*apiErrPtr, err)
	}

	if isTransportError(err) {
		return networkError(providerNameGemini, err)
	}
	pe := malformedError(providerNameGemini, err.Error())
	pe.Err = err
	return pe
}

func geminiStatusError(apiErr genai.APIError, err error) *ProviderError {
	pe := statusError(providerNameGemini, apiErr.Code, nil)
	if apiErr.Message != "" {
		pe.Message = apiErr.Message
	}
	pe.Err = err
	return pe
}
