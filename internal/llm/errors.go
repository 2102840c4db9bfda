package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
)

// ErrorKind classifies why a provider call failed
type ErrorKind string

const (
	KindNetwork           ErrorKind = "network"
	KindHTTPStatus        ErrorKind = "http_status"
	KindMalformedResponse ErrorKind = "malformed_response"
)

// ProviderError is returned by every dialect when a call does not yield text
type ProviderError struct {
	Kind       ErrorKind
	Provider   string // Human readable dialect name, e.g. "OpenAI"
	StatusCode int    // Set only for KindHTTPStatus
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func networkError(provider string, err error) *ProviderError {
	return &ProviderError{
		Kind:     KindNetwork,
		Provider: provider,
		Message:  fmt.Sprintf("%s request failed: %v", provider, err),
		Err:      err,
	}
}

func malformedError(provider, detail string) *ProviderError {
	return &ProviderError{
		Kind:     KindMalformedResponse,
		Provider: provider,
		Message:  fmt.Sprintf("%s returned a malformed response: %s", provider, detail),
	}
}

// statusError builds the error for a non-2xx response. The provider's own
// error message wins; otherwise "<Provider> API error: <status> <text>".
func statusError(provider string, status int, body []byte) *ProviderError {
	msg := errorEnvelopeMessage(body)
	if msg == "" {
		msg = fmt.Sprintf("%s API error: %d %s", provider, status, http.StatusText(status))
	}
	return &ProviderError{
		Kind:       KindHTTPStatus,
		Provider:   provider,
		StatusCode: status,
		Message:    msg,
	}
}

// errorEnvelopeMessage pulls the provider's message out of a JSON error body.
// Accepted shapes, first match wins: {"error":{"message":..}}, {"error":".."}
// and a top-level {"message":..}.
func errorEnvelopeMessage(body []byte) string {
	var envelope struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}

	if len(envelope.Error) > 0 {
		var detail struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(envelope.Error, &detail); err == nil && strings.TrimSpace(detail.Message) != "" {
			return strings.TrimSpace(detail.Message)
		}

		var plain string
		if err := json.Unmarshal(envelope.Error, &plain); err == nil && strings.TrimSpace(plain) != "" {
			return strings.TrimSpace(plain)
		}
	}
	return strings.TrimSpace(envelope.Message)
}

// isTransportError reports whether err happened before any response arrived
func isTransportError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
