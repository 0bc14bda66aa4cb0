// Package engine defines the browser capabilities the harness needs from an
// automation engine: resolve selector to handles, interact, evaluate script,
// read text and attributes. Concrete engines live in subpackages; the rest of
// the codebase depends only on these interfaces.
package engine

import "context"

// Browser owns a launched browser instance and creates isolated pages.
type Browser interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// Page is one browser page with its own navigation and DOM access.
type Page interface {
	// Navigate loads the given absolute URL.
	Navigate(ctx context.Context, url string) error
	// WaitLoaded blocks until the engine considers the page settled.
	WaitLoaded(ctx context.Context) error
	// URL returns the current page URL.
	URL() string
	// Query returns handles for all elements matching the selector, in DOM order.
	// An empty slice with nil error means no match.
	Query(ctx context.Context, selector string) ([]Handle, error)
	// Evaluate runs a script in the page context and returns its result.
	Evaluate(ctx context.Context, script string) (any, error)
	// Screenshot writes a full-page screenshot to path.
	Screenshot(ctx context.Context, path string) error
	Close() error
}

// Handle is a resolved reference to one element.
type Handle interface {
	Click(ctx context.Context) error
	Fill(ctx context.Context, value string) error
	Check(ctx context.Context) error
	SelectOption(ctx context.Context, value string) error

	// Forced variants bypass the engine's actionability checks.
	ClickForced(ctx context.Context) error
	FillForced(ctx context.Context, value string) error
	CheckForced(ctx context.Context) error

	ScrollIntoView(ctx context.Context) error
	// Evaluate runs a script with the element bound as the first argument.
	Evaluate(ctx context.Context, script string) (any, error)

	Text(ctx context.Context) (string, error)
	Attribute(ctx context.Context, name string) (string, error)
	InputValue(ctx context.Context) (string, error)

	Visible(ctx context.Context) (bool, error)
	Enabled(ctx context.Context) (bool, error)
	Attached(ctx context.Context) (bool, error)

	// Query searches within this element's subtree.
	Query(ctx context.Context, selector string) ([]Handle, error)
}

// Actionable reports whether the handle is ready for interaction: attached,
// visible and enabled. The reason names the first failed check for diagnostics.
func Actionable(ctx context.Context, h Handle) (ok bool, reason string, err error) {
	attached, err := h.Attached(ctx)
	if err != nil {
		return false, "", err
	}
	if !attached {
		return false, "not attached", nil
	}

	visible, err := h.Visible(ctx)
	if err != nil {
		return false, "", err
	}
	if !visible {
		return false, "not visible", nil
	}

	enabled, err := h.Enabled(ctx)
	if err != nil {
		return false, "", err
	}
	if !enabled {
		return false, "disabled", nil
	}

	return true, "", nil
}
