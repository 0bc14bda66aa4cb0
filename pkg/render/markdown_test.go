package render

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storecheck/storecheck/pkg/journey"
)

func TestRunReport(t *testing.T) {
	results := []journey.Result{
		{Journey: "cart persistence", Status: journey.StatusPassed, Duration: 1500 * time.Millisecond},
		{
			Journey: "checkout", Status: journey.StatusFailed, FailedStep: "confirm order",
			Err:        errors.New(`journey "checkout" step "confirm order": bounced back to cart`),
			Duration:   3 * time.Second,
			Screenshot: "screenshots/checkout-confirm-order-1.png",
		},
		{Journey: "wishlist", Status: journey.StatusSkipped},
	}

	report := RunReport("http://shop.test", results, "5 minutes")

	assert.Contains(t, report, "# Storecheck Run Report")
	assert.Contains(t, report, "**Target:** http://shop.test")
	assert.Contains(t, report, "1 passed, 1 failed, 1 skipped")
	assert.Contains(t, report, "| cart persistence | ✅ passed | 1.5s |")
	assert.Contains(t, report, "❌ failed")
	assert.Contains(t, report, "bounced back to cart")
	assert.Contains(t, report, "## Failure Screenshots")
	assert.Contains(t, report, "screenshots/checkout-confirm-order-1.png")
}

func TestRunReport_NoFailures(t *testing.T) {
	report := RunReport("http://shop.test", []journey.Result{
		{Journey: "smoke", Status: journey.StatusPassed, Duration: time.Second},
	}, "1 minute")

	assert.NotContains(t, report, "Failure Screenshots")
	assert.Contains(t, report, "1 passed, 0 failed, 0 skipped")
}

func TestRunReport_EscapesPipesInErrors(t *testing.T) {
	report := RunReport("http://shop.test", []journey.Result{
		{Journey: "x", Status: journey.StatusFailed, FailedStep: "s", Err: errors.New("a | b")},
	}, "1s")
	assert.Contains(t, report, `a \| b`)
}

func TestMarkdown(t *testing.T) {
	t.Run("with color enabled renders markdown", func(t *testing.T) {
		content := "# Heading\n\nSome **bold** text."
		result, err := Markdown(content, false)
		require.NoError(t, err)
		// glamour transforms markdown - should not be identical to input
		assert.NotEqual(t, content, result)
		assert.Contains(t, result, "Heading")
		assert.Contains(t, result, "bold")
	})

	t.Run("with noColor returns plain content", func(t *testing.T) {
		content := "# Heading\n\nSome **bold** text."
		result, err := Markdown(content, true)
		require.NoError(t, err)
		assert.Equal(t, content, result)
	})

	t.Run("handles empty content", func(t *testing.T) {
		result, err := Markdown("", false)
		require.NoError(t, err)
		assert.Empty(t, strings.TrimSpace(result))
	})

	t.Run("handles tables", func(t *testing.T) {
		content := "| a | b |\n|---|---|\n| 1 | 2 |"
		result, err := Markdown(content, false)
		require.NoError(t, err)
		assert.Contains(t, result, "1")
		assert.Contains(t, result, "2")
	})
}
