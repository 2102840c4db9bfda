package llm

import (
	"net/url"
	"regexp"
	"strings"
)

// Dialect is the wire format spoken by a provider endpoint
type Dialect int

const (
	// DialectOpenAI is the chat-completions format. It is also the fallback
	// for every OpenAI-compatible host (Groq, Together, local servers).
	DialectOpenAI Dialect = iota
	// DialectAnthropic is the messages API
	DialectAnthropic
	// DialectGemini is Google's native generateContent API
	DialectGemini
)

const (
	openAICompletionPath    = "/chat/completions"
	anthropicCompletionPath = "/messages"
	geminiHost              = "generativelanguage.googleapis.com"
)

var versionSegment = regexp.MustCompile(`/v\d+[a-z0-9]*(/|$)`)

func (d Dialect) String() string {
	switch d {
	case DialectAnthropic:
		return "Anthropic"
	case DialectGemini:
		return "Gemini"
	default:
		return "OpenAI"
	}
}

// DetectDialect picks the dialect from the endpoint alone. Google's
// OpenAI-compatible path (".../v1beta/openai") stays on the OpenAI dialect.
func DetectDialect(baseURL string) Dialect {
	lower := strings.ToLower(baseURL)
	if strings.Contains(lower, "anthropic") {
		return DialectAnthropic
	}

	u, err := url.Parse(lower)
	if err == nil && u.Host == geminiHost && !strings.Contains(u.Path, "/openai") {
		return DialectGemini
	}
	return DialectOpenAI
}

// ResolveEndpoint returns the full URL a dialect posts to.
//
//	https://api.openai.com/v1                       -> https://api.openai.com/v1/chat/completions
//	https://api.groq.com/openai/v1/chat/completions -> unchanged
//	http://localhost:11434                          -> http://localhost:11434/v1/chat/completions
func ResolveEndpoint(d Dialect, baseURL string) string {
	switch d {
	case DialectAnthropic:
		return appendCompletionPath(baseURL, anthropicCompletionPath)
	case DialectGemini:
		return strings.TrimRight(baseURL, "/")
	default:
		return appendCompletionPath(baseURL, openAICompletionPath)
	}
}

func appendCompletionPath(baseURL, completionPath string) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if strings.HasSuffix(base, completionPath) {
		return base
	}

	path := base
	if u, err := url.Parse(base); err == nil {
		path = u.Path
	}
	if versionSegment.MatchString(path) {
		return base + completionPath
	}
	return base + "/v1" + completionPath
}

// splitGeminiBase separates "https://host/v1beta" into the host root and the
// API version genai expects as separate settings.
func splitGeminiBase(baseURL string) (root, version string) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || u.Host == "" {
		return baseURL, ""
	}

	root = u.Scheme + "://" + u.Host + "/"
	for _, segment := range strings.Split(strings.Trim(u.Path, "/"), "/") {
		if versionSegment.MatchString("/" + segment) {
			return root, segment
		}
	}
	return root, ""
}
