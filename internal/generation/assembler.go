package generation

import (
	"fmt"
	"strings"
	"time"

	"github.com/Conceptual-Machines/uivariants-api/internal/models"
	"github.com/google/uuid"
)

// providerMarkers is checked in order; first substring hit wins
var providerMarkers = []struct {
	marker string
	label  string
}{
	{"openai.com", "OpenAI"},
	{"anthropic", "Anthropic"},
	{"groq", "Groq"},
	{"together", "Together"},
	{"generativelanguage", "Google"},
	{"google", "Google"},
	{"openai", "OpenAI"},
}

// ProviderLabel names the provider behind an endpoint for display.
// Unknown hosts are "Custom".
func ProviderLabel(baseURL string) string {
	lower := strings.ToLower(baseURL)
	for _, m := range providerMarkers {
		if strings.Contains(lower, m.marker) {
			return m.label
		}
	}
	return "Custom"
}

// Assembler turns settled successes into a GenerationResult
type Assembler struct {
	now   func() time.Time
	newID func() string
}

// NewAssembler creates an assembler using the wall clock and random UUIDs
func NewAssembler() *Assembler {
	return &Assembler{
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Assemble stamps the result at call time. Outcomes must already be in
// catalog order; failures are skipped.
func (a *Assembler) Assemble(req models.GenerationRequest, outcomes []models.VariantOutcome) models.GenerationResult {
	created := a.now().UnixMilli()

	variations := make([]models.Variation, 0, len(outcomes))
	for _, o := range outcomes {
		if !o.Succeeded() {
			continue
		}
		variations = append(variations, models.Variation{
			ID:         fmt.Sprintf("%d-%d-%d", created, o.Index, o.RetryCount()),
			Name:       o.Theme.DisplayName,
			Style:      o.Theme.Key,
			HTMLCode:   o.HTML,
			RetryCount: o.RetryCount(),
		})
	}

	return models.GenerationResult{
		ID:          a.newID(),
		Instruction: req.Instruction,
		Variations:  variations,
		CreatedAt:   created,
		Model:       req.Settings.ModelName,
		Provider:    ProviderLabel(req.Settings.BaseURL),
	}
}
