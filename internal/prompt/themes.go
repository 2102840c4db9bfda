package prompt

import "github.com/Conceptual-Machines/uivariants-api/internal/models"

// catalog is fixed at process start. Order is the delivery order of variants.
var catalog = []models.StyleTheme{
	{
		Key:         models.StyleMinimal,
		DisplayName: "Minimal",
		Description: "Clean and restrained, letting whitespace and typography carry the design.",
		Traits: []string{
			"generous whitespace",
			"monochrome palette with a single subtle accent",
			"thin borders instead of heavy shadows",
			"light font weights and clear hierarchy",
		},
	},
	{
		Key:         models.StyleBold,
		DisplayName: "Bold",
		Description: "High-contrast and confident, built to grab attention immediately.",
		Traits: []string{
			"strong saturated accent color",
			"heavy headline weights and large type",
			"solid color blocks",
			"pronounced call-to-action buttons",
		},
	},
	{
		Key:         models.StyleElegant,
		DisplayName: "Elegant",
		Description: "Refined and premium, with careful typographic detail.",
		Traits: []string{
			"serif headings paired with a clean sans-serif body",
			"muted, sophisticated palette",
			"fine dividers and delicate spacing",
			"understated hover transitions",
		},
	},
	{
		Key:         models.StylePlayful,
		DisplayName: "Playful",
		Description: "Friendly and energetic, with personality in every detail.",
		Traits: []string{
			"rounded shapes and large corner radii",
			"cheerful accent color",
			"bouncy micro-interactions",
			"casual, approachable tone",
		},
	},
	{
		Key:         models.StyleModern,
		DisplayName: "Modern",
		Description: "Contemporary product UI in the style of current SaaS design systems.",
		Traits: []string{
			"soft layered shadows",
			"subtle gradients and glass-like surfaces",
			"medium corner radii",
			"crisp sans-serif typography",
		},
	},
}

// Themes returns a copy of the catalog in delivery order
func Themes() []models.StyleTheme {
	out := make([]models.StyleTheme, len(catalog))
	for i, t := range catalog {
		t.Traits = append([]string(nil), t.Traits...)
		out[i] = t
	}
	return out
}

// ThemeByKey looks a theme up by key
func ThemeByKey(key models.StyleKey) (models.StyleTheme, bool) {
	for _, t := range catalog {
		if t.Key == key {
			t.Traits = append([]string(nil), t.Traits...)
			return t, true
		}
	}
	return models.StyleTheme{}, false
}
