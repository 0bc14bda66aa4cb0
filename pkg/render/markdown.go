// Package render builds the markdown run report and renders it for terminal display.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/storecheck/storecheck/pkg/journey"
)

// RunReport builds a markdown summary of a suite run.
func RunReport(target string, results []journey.Result, elapsed string) string {
	passed, failed, skipped := journey.Summary(results)

	var b strings.Builder
	b.WriteString("# Storecheck Run Report\n\n")
	fmt.Fprintf(&b, "**Target:** %s  \n", target)
	fmt.Fprintf(&b, "**Duration:** %s  \n", elapsed)
	fmt.Fprintf(&b, "**Journeys:** %d passed, %d failed, %d skipped\n\n", passed, failed, skipped)

	b.WriteString("| Journey | Status | Duration | Detail |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, r := range results {
		detail := ""
		switch {
		case r.Status == journey.StatusFailed && r.Err != nil:
			detail = fmt.Sprintf("step `%s`: %v", r.FailedStep, r.Err)
		case r.Status == journey.StatusFailed:
			detail = "step " + r.FailedStep
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			r.Journey, statusBadge(r.Status), r.Duration.Round(time.Millisecond), escapePipes(detail))
	}

	var shots []string
	for _, r := range results {
		if r.Screenshot != "" {
			shots = append(shots, fmt.Sprintf("- %s: `%s`", r.Journey, r.Screenshot))
		}
	}
	if len(shots) > 0 {
		b.WriteString("\n## Failure Screenshots\n\n")
		b.WriteString(strings.Join(shots, "\n"))
		b.WriteString("\n")
	}

	return b.String()
}

func statusBadge(s journey.Status) string {
	switch s {
	case journey.StatusPassed:
		return "✅ passed"
	case journey.StatusFailed:
		return "❌ failed"
	case journey.StatusSkipped:
		return "⏭ skipped"
	default:
		return string(s)
	}
}

// escapePipes keeps error text from breaking the markdown table.
func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

// Markdown renders markdown content for terminal display.
// If noColor is true, returns the content unchanged.
// Otherwise, uses glamour to render with auto-detected style and word wrap.
func Markdown(content string, noColor bool) (string, error) {
	if noColor {
		return content, nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}

	result, err := renderer.Render(content)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}

	return result, nil
}
