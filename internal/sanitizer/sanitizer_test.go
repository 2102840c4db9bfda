package sanitizer_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/Conceptual-Machines/uivariants-api/internal/sanitizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// card is long enough to clear the default floor on its own.
const card = `<div class="mn-card"><h2 class="mn-title">Pro plan</h2><button class="mn-cta">Upgrade</button></div>`

func TestExtract(t *testing.T) {
	t.Parallel()

	t.Run("html fence", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "<div>x</div>", sanitizer.Extract("```html\n<div>x</div>\n```"))
	})

	t.Run("html fence is case insensitive", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "<div>x</div>", sanitizer.Extract("```HTML\n<div>x</div>\n```"))
	})

	t.Run("html fence wins over earlier generic fence", func(t *testing.T) {
		t.Parallel()
		text := "```css\n.a{}\n```\nand\n```html\n<p>y</p>\n```"
		assert.Equal(t, "<p>y</p>", sanitizer.Extract(text))
	})

	t.Run("generic fence", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "<div>x</div>", sanitizer.Extract("Here you go:\n```\n<div>x</div>\n```\nEnjoy"))
	})

	t.Run("generic fence with other language tag", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "<div>x</div>", sanitizer.Extract("```xml\n<div>x</div>\n```"))
	})

	t.Run("slices first angle bracket to last", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "<div>x</div>", sanitizer.Extract("Sure! <div>x</div>"))
	})

	t.Run("unterminated fence falls back to slicing", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "<section><p>cut</p>", sanitizer.Extract("```html\n<section><p>cut</p>"))
	})

	t.Run("plain text returned trimmed", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "no markup here", sanitizer.Extract("  no markup here  "))
	})

	t.Run("closing bracket before opening is not sliced", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "a > b < c", sanitizer.Extract("a > b < c"))
	})
}

func TestSanitize(t *testing.T) {
	t.Parallel()

	s := sanitizer.New(0)
	require.Equal(t, sanitizer.DefaultMinLength, s.MinLength)

	t.Run("fenced component", func(t *testing.T) {
		t.Parallel()
		got, err := s.Sanitize("```html\n" + card + "\n```")
		require.NoError(t, err)
		assert.Equal(t, card, got)
	})

	t.Run("prose around component", func(t *testing.T) {
		t.Parallel()
		got, err := s.Sanitize("Sure! Here is your component: " + card + " Let me know!")
		require.NoError(t, err)
		assert.Equal(t, card, got)
	})

	t.Run("too short", func(t *testing.T) {
		t.Parallel()
		_, err := s.Sanitize("ok")
		require.Error(t, err)
		assert.True(t, errors.Is(err, sanitizer.ErrEmptyOrTooShort))

		var vErr *sanitizer.ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, 2, vErr.Length)
		assert.Equal(t, 50, vErr.MinLength)
	})

	t.Run("whitespace only", func(t *testing.T) {
		t.Parallel()
		_, err := s.Sanitize(" \n\t ")
		assert.ErrorIs(t, err, sanitizer.ErrEmptyOrTooShort)
	})

	t.Run("length counted after trimming", func(t *testing.T) {
		t.Parallel()
		_, err := s.Sanitize(strings.Repeat(" ", 100) + "<p>hi</p>" + strings.Repeat("\n", 100))
		assert.ErrorIs(t, err, sanitizer.ErrEmptyOrTooShort)
	})

	t.Run("empty fence interior", func(t *testing.T) {
		t.Parallel()
		_, err := s.Sanitize("```html\n\n```" + strings.Repeat(" filler", 10))
		assert.ErrorIs(t, err, sanitizer.ErrEmptyOrTooShort)
	})
}

func TestSanitize_LowFloor(t *testing.T) {
	t.Parallel()
	s := &sanitizer.Sanitizer{MinLength: 1}

	got, err := s.Sanitize("```html\n<div>x</div>\n```")
	require.NoError(t, err)
	assert.Equal(t, "<div>x</div>", got)

	got, err = s.Sanitize("Sure! <div>x</div>")
	require.NoError(t, err)
	assert.Equal(t, "<div>x</div>", got)
}
