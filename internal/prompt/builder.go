package prompt

import (
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/uivariants-api/internal/models"
)

// Builder renders one generation prompt per style theme
type Builder struct {
	loader *Loader
}

// NewPromptBuilder creates a new prompt builder
func NewPromptBuilder() *Builder {
	return &Builder{loader: NewPromptLoader()}
}

// SystemPrompt returns the system message shared by every variant
func (b *Builder) SystemPrompt() string {
	return b.loader.GetSystemPrompt()
}

// BuildPrompt renders the prompt for one theme. Pure: identical inputs give
// byte-identical output.
func (b *Builder) BuildPrompt(instruction string, theme models.StyleTheme) (string, error) {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return "", fmt.Errorf("instruction is required")
	}
	if _, ok := ThemeByKey(theme.Key); !ok {
		return "", fmt.Errorf("unknown style theme: %q", theme.Key)
	}

	var sb strings.Builder

	sb.WriteString("Create a UI component for the following request.\n\n")
	sb.WriteString(fmt.Sprintf("REQUEST:\n%s\n\n", instruction))

	sb.WriteString(fmt.Sprintf("STYLE: %s\n", theme.DisplayName))
	sb.WriteString(fmt.Sprintf("%s\n", theme.Description))
	sb.WriteString("Style traits:\n")
	for i, trait := range theme.Traits {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, trait))
	}
	sb.WriteString("\n")

	sb.WriteString(b.loader.GetDesignSystem())
	sb.WriteString("\n\n")
	sb.WriteString(b.loader.GetOutputRules())
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Respond with ONLY the complete %s-style component markup. Nothing else.", strings.ToLower(theme.DisplayName)))
	return sb.String(), nil
}
