package models

import (
	"net/url"
	"strings"
)

// StyleKey identifies one entry of the theme catalog
type StyleKey string

const (
	StyleMinimal StyleKey = "minimal"
	StyleBold    StyleKey = "bold"
	StyleElegant StyleKey = "elegant"
	StylePlayful StyleKey = "playful"
	StyleModern  StyleKey = "modern"
)

// StyleTheme is an immutable catalog entry driving one variant prompt
type StyleTheme struct {
	Key         StyleKey `json:"key"`
	DisplayName string   `json:"name"`
	Description string   `json:"description"`
	Traits      []string `json:"traits"`
}

// ConnectionSettings describes the caller's LLM endpoint. Supplied with every
// request and never persisted.
type ConnectionSettings struct {
	ModelName string `json:"modelName"`
	APIKey    string `json:"apiKey"`
	BaseURL   string `json:"baseUrl"`
}

// Validate checks that every field is present and the base URL is absolute
func (s ConnectionSettings) Validate() error {
	if strings.TrimSpace(s.ModelName) == "" {
		return &ConfigurationError{Field: "modelName", Message: "model name is required"}
	}
	if strings.TrimSpace(s.APIKey) == "" {
		return &ConfigurationError{Field: "apiKey", Message: "API key is required"}
	}
	if strings.TrimSpace(s.BaseURL) == "" {
		return &ConfigurationError{Field: "baseUrl", Message: "base URL is required"}
	}
	u, err := url.Parse(strings.TrimSpace(s.BaseURL))
	if err != nil || !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return &ConfigurationError{Field: "baseUrl", Message: "base URL must be an absolute http(s) URL"}
	}
	return nil
}

// Normalized returns a copy with surrounding whitespace removed
func (s ConnectionSettings) Normalized() ConnectionSettings {
	return ConnectionSettings{
		ModelName: strings.TrimSpace(s.ModelName),
		APIKey:    strings.TrimSpace(s.APIKey),
		BaseURL:   strings.TrimSpace(s.BaseURL),
	}
}

// GenerationRequest is one user action: an instruction plus the endpoint to use
type GenerationRequest struct {
	Instruction string             `json:"instruction"`
	Settings    ConnectionSettings `json:"settings"`
}

// Validate trims the instruction and checks the settings
func (r GenerationRequest) Validate() (GenerationRequest, error) {
	out := GenerationRequest{
		Instruction: strings.TrimSpace(r.Instruction),
		Settings:    r.Settings.Normalized(),
	}
	if out.Instruction == "" {
		return out, &ConfigurationError{Field: "instruction", Message: "instruction is required"}
	}
	if err := out.Settings.Validate(); err != nil {
		return out, err
	}
	return out, nil
}

// VariantOutcome is the settled state of one theme slot
type VariantOutcome struct {
	Index    int
	Theme    StyleTheme
	HTML     string
	Attempts int
	Err      error
}

// Succeeded reports whether the slot produced usable markup
func (o VariantOutcome) Succeeded() bool {
	return o.Err == nil && o.HTML != ""
}

// RetryCount is the number of attempts beyond the first
func (o VariantOutcome) RetryCount() int {
	if o.Attempts <= 1 {
		return 0
	}
	return o.Attempts - 1
}

// Variation is one delivered component
type Variation struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Style      StyleKey `json:"style"`
	HTMLCode   string   `json:"htmlCode"`
	RetryCount int      `json:"retryCount"`
}

// GenerationResult is the durable output handed to the caller
type GenerationResult struct {
	ID          string      `json:"id"`
	Instruction string      `json:"instruction"`
	Variations  []Variation `json:"variations"`
	CreatedAt   int64       `json:"timestamp"` // epoch millis
	Model       string      `json:"model"`
	Provider    string      `json:"provider"`
}
