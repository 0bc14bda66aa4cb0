// Package page provides the navigation, wait and query primitives shared by
// every page object. Queries are total from the caller's perspective: they
// return a definite value or a documented error, and each has an Or variant
// that coerces failure to a safe default for callers that treat "could not
// determine" as "absent".
package page

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/storecheck/storecheck/pkg/action"
	"github.com/storecheck/storecheck/pkg/engine"
	"github.com/storecheck/storecheck/pkg/extract"
	"github.com/storecheck/storecheck/pkg/locator"
)

// State is the element condition WaitFor blocks on.
type State string

// wait states
const (
	StateVisible  State = "visible"
	StateHidden   State = "hidden"
	StateAttached State = "attached"
	StateDetached State = "detached"
)

// Readiness decides when a navigation has settled. Different pages settle
// differently: static content needs only the load event, AJAX-heavy grids
// need a marker element.
type Readiness func(ctx context.Context, p engine.Page) error

// LoadSettled waits for the engine's load signal.
func LoadSettled() Readiness {
	return func(ctx context.Context, p engine.Page) error {
		return p.WaitLoaded(ctx)
	}
}

// MarkerAttached waits until the marker locator resolves to an actionable
// element.
func MarkerAttached(marker locator.Spec, policy locator.Policy) Readiness {
	return func(ctx context.Context, p engine.Page) error {
		if _, err := locator.Resolve(ctx, p, marker, policy); err != nil {
			return fmt.Errorf("marker %s: %w", marker, err)
		}
		return nil
	}
}

// NavigationTimeoutError reports a page that never reached its readiness
// signal.
type NavigationTimeoutError struct {
	URL string
	Err error
}

func (e *NavigationTimeoutError) Error() string {
	return fmt.Sprintf("navigation to %s did not settle: %v", e.URL, e.Err)
}

func (e *NavigationTimeoutError) Unwrap() error { return e.Err }

// Base carries the shared machinery of a page object.
type Base struct {
	page    engine.Page
	baseURL string
	policy  locator.Policy
	retrier action.Retrier
}

// NewBase creates a Base for the given engine page. A zero policy uses the
// locator defaults.
func NewBase(p engine.Page, baseURL string, policy locator.Policy) *Base {
	return &Base{
		page:    p,
		baseURL: strings.TrimRight(baseURL, "/"),
		policy:  policy,
	}
}

// Page exposes the underlying engine page for scoped operations.
func (b *Base) Page() engine.Page { return b.page }

// Policy returns the wait policy in effect.
func (b *Base) Policy() locator.Policy { return b.policy }

// URL returns the current page URL.
func (b *Base) URL() string { return b.page.URL() }

// Navigate loads an absolute URL or a path relative to the base URL, then
// blocks until the readiness signal holds. A nil readiness waits for the
// engine's load signal.
func (b *Base) Navigate(ctx context.Context, path string, ready Readiness) error {
	url := path
	if !strings.HasPrefix(path, "http") {
		url = b.baseURL + "/" + strings.TrimLeft(path, "/")
	}

	if err := b.page.Navigate(ctx, url); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}

	if ready == nil {
		ready = LoadSettled()
	}
	if err := ready(ctx, b.page); err != nil {
		return &NavigationTimeoutError{URL: url, Err: err}
	}
	return nil
}

// Resolve finds the element for the spec under the page scope.
func (b *Base) Resolve(ctx context.Context, spec locator.Spec) (locator.Resolved, error) {
	return locator.Resolve(ctx, b.page, spec, b.policy)
}

// WaitFor blocks until the spec's element reaches the state or the timeout
// elapses, surfacing a locator.TimeoutError rather than a generic one.
func (b *Base) WaitFor(ctx context.Context, spec locator.Spec, state State, timeout time.Duration) error {
	policy := b.policy
	if timeout > 0 {
		policy.Timeout = timeout
	}
	if policy.Timeout <= 0 {
		policy.Timeout = locator.DefaultPolicy.Timeout
	}
	if policy.Interval <= 0 {
		policy.Interval = locator.DefaultPolicy.Interval
	}

	deadline := time.Now().Add(policy.Timeout)
	for {
		ok, err := b.stateHolds(ctx, spec, state)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}

		if time.Now().After(deadline) {
			return &locator.TimeoutError{
				Spec:    spec,
				Timeout: policy.Timeout,
				Attempts: []locator.Attempt{
					{Strategy: locator.Strategy{Selector: spec.String()}, Reason: "state " + string(state) + " not reached"},
				},
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(policy.Interval):
		}
	}
}

// stateHolds checks the condition once.
func (b *Base) stateHolds(ctx context.Context, spec locator.Spec, state State) (bool, error) {
	handles, _, err := locator.MatchAll(ctx, b.page, spec)
	if err != nil {
		return false, err
	}

	switch state {
	case StateAttached:
		return len(handles) > 0, nil
	case StateDetached:
		return len(handles) == 0, nil
	case StateVisible:
		for _, h := range handles {
			visible, err := h.Visible(ctx)
			if err != nil {
				return false, err
			}
			if visible {
				return true, nil
			}
		}
		return false, nil
	case StateHidden:
		for _, h := range handles {
			visible, err := h.Visible(ctx)
			if err != nil {
				return false, err
			}
			if visible {
				return false, nil
			}
		}
		return true, nil
	default:
		return false, fmt.Errorf("unknown wait state %q", state)
	}
}

// Click resolves the spec and clicks through the action ladder. Mutation:
// failures propagate, they are never coerced.
func (b *Base) Click(ctx context.Context, spec locator.Spec) error {
	res, err := b.Resolve(ctx, spec)
	if err != nil {
		return err
	}
	if _, err := b.retrier.Click(ctx, res.Handle); err != nil {
		return fmt.Errorf("click %s: %w", res.Strategy, err)
	}
	return nil
}

// Fill resolves the spec and fills through the action ladder.
func (b *Base) Fill(ctx context.Context, spec locator.Spec, value string) error {
	res, err := b.Resolve(ctx, spec)
	if err != nil {
		return err
	}
	if _, err := b.retrier.Fill(ctx, res.Handle, value); err != nil {
		return fmt.Errorf("fill %s: %w", res.Strategy, err)
	}
	return nil
}

// Check resolves the spec and checks through the action ladder.
func (b *Base) Check(ctx context.Context, spec locator.Spec) error {
	res, err := b.Resolve(ctx, spec)
	if err != nil {
		return err
	}
	if _, err := b.retrier.Check(ctx, res.Handle); err != nil {
		return fmt.Errorf("check %s: %w", res.Strategy, err)
	}
	return nil
}

// IsVisible reports whether any match for the spec is visible right now,
// without waiting. No match is a definite false, not an error.
func (b *Base) IsVisible(ctx context.Context, spec locator.Spec) (bool, error) {
	handles, _, err := locator.MatchAll(ctx, b.page, spec)
	if err != nil {
		return false, err
	}
	for _, h := range handles {
		visible, err := h.Visible(ctx)
		if err != nil {
			return false, err
		}
		if visible {
			return true, nil
		}
	}
	return false, nil
}

// VisibleOr coerces query failure to the fallback. The documented contract for
// callers that treat "could not determine" as "absent".
func (b *Base) VisibleOr(ctx context.Context, spec locator.Spec, fallback bool) bool {
	visible, err := b.IsVisible(ctx, spec)
	if err != nil {
		return fallback
	}
	return visible
}

// Text waits for the spec to resolve and returns its trimmed text content.
func (b *Base) Text(ctx context.Context, spec locator.Spec) (string, error) {
	res, err := b.Resolve(ctx, spec)
	if err != nil {
		return "", err
	}
	text, err := res.Handle.Text(ctx)
	if err != nil {
		return "", fmt.Errorf("text of %s: %w", res.Strategy, err)
	}
	return strings.TrimSpace(text), nil
}

// TextOr coerces query failure to the fallback string.
func (b *Base) TextOr(ctx context.Context, spec locator.Spec, fallback string) string {
	text, err := b.Text(ctx, spec)
	if err != nil {
		return fallback
	}
	return text
}

// Count returns the number of current matches without waiting.
func (b *Base) Count(ctx context.Context, spec locator.Spec) (int, error) {
	handles, _, err := locator.MatchAll(ctx, b.page, spec)
	if err != nil {
		return 0, err
	}
	return len(handles), nil
}

// Money resolves the spec and parses its text as a money amount. Returns
// nil (with nil error) when the text holds no numeric token.
func (b *Base) Money(ctx context.Context, spec locator.Spec) (*extract.Money, error) {
	text, err := b.Text(ctx, spec)
	if err != nil {
		return nil, err
	}
	return extract.ParseMoney(text), nil
}
