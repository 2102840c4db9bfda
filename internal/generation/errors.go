package generation

import (
	"fmt"
	"strings"

	"github.com/Conceptual-Machines/uivariants-api/internal/models"
)

// ThemeFailure is the terminal reason one theme produced no variant
type ThemeFailure struct {
	Style   models.StyleKey `json:"style"`
	Name    string          `json:"name"`
	Message string          `json:"error"`
}

// InsufficientVariantsError aborts a request when too few themes succeed.
// It is the only error that escapes the fan-out.
type InsufficientVariantsError struct {
	Successes int
	Required  int
	Failures  []ThemeFailure // Catalog order
}

func (e *InsufficientVariantsError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Name, f.Message))
	}
	return fmt.Sprintf("only %d of %d required variants generated (%s)",
		e.Successes, e.Required, strings.Join(parts, "; "))
}
