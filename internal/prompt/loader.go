package prompt

import (
	"strings"

	"github.com/Conceptual-Machines/uivariants-api/pkg/embedded"
)

type Loader struct{}

func NewPromptLoader() *Loader {
	return &Loader{}
}

// GetSystemPrompt loads the role instruction sent as the system message
func (l *Loader) GetSystemPrompt() string {
	return strings.TrimSpace(string(embedded.SystemPromptTxt))
}

// GetDesignSystem loads the fixed design-system specification
func (l *Loader) GetDesignSystem() string {
	return strings.TrimSpace(string(embedded.DesignSystemTxt))
}

// GetOutputRules loads the technical output constraints
func (l *Loader) GetOutputRules() string {
	return strings.TrimSpace(string(embedded.OutputRulesTxt))
}
