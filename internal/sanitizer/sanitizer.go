// Package sanitizer recovers clean HTML from raw model output.
//
// Models wrap markup inconsistently: sometimes in an html fence, sometimes in
// a bare fence, sometimes with a sentence of prose around it. Rules are tried
// in order and the first match wins:
//
//  1. a fenced block tagged html
//  2. any fenced block
//  3. everything from the first '<' to the last '>'
//  4. the trimmed text unchanged
package sanitizer

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// DefaultMinLength is the shortest raw response accepted, after trimming
const DefaultMinLength = 50

// ErrEmptyOrTooShort is wrapped by every ValidationError
var ErrEmptyOrTooShort = errors.New("response empty or too short")

var (
	htmlFence    = regexp.MustCompile("(?is)```\\s*html[ \\t]*\\r?\\n?(.*?)```")
	genericFence = regexp.MustCompile("(?s)```[\\w+-]*[ \\t]*\\r?\\n?(.*?)```")
)

// ValidationError reports output that cannot be used as a component
type ValidationError struct {
	Length    int
	MinLength int
}

func (e *ValidationError) Error() string {
	if e.Length == 0 {
		return "model returned an empty response"
	}
	return fmt.Sprintf("model response too short: %d characters (minimum %d)", e.Length, e.MinLength)
}

func (e *ValidationError) Unwrap() error {
	return ErrEmptyOrTooShort
}

// Sanitizer extracts markup from raw model text
type Sanitizer struct {
	MinLength int
}

// New returns a Sanitizer with the given floor; non-positive means the default
func New(minLength int) *Sanitizer {
	if minLength <= 0 {
		minLength = DefaultMinLength
	}
	return &Sanitizer{MinLength: minLength}
}

// Sanitize validates the raw text and extracts the component markup
func (s *Sanitizer) Sanitize(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	length := len([]rune(trimmed))
	if length == 0 || length < s.MinLength {
		return "", &ValidationError{Length: length, MinLength: s.MinLength}
	}

	html := Extract(trimmed)
	if html == "" {
		return "", &ValidationError{Length: 0, MinLength: s.MinLength}
	}
	return html, nil
}

// Extract applies the extraction rules without any length validation
func Extract(text string) string {
	if m := htmlFence.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := genericFence.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}

	first := strings.Index(text, "<")
	last := strings.LastIndex(text, ">")
	if first != -1 && last > first {
		return text[first : last+1]
	}

	return strings.TrimSpace(text)
}
