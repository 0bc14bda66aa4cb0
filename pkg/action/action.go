// Package action performs element interactions through a finite fallback
// ladder: native event, scroll-into-view with one retry, forced interaction
// bypassing actionability checks, and finally invoking the equivalent handler
// through the page's scripting context. Each fallback runs once; exhaustion
// propagates a FailedError carrying the full attempt chain.
package action

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-pkgz/repeater"

	"github.com/storecheck/storecheck/pkg/engine"
)

// Kind names the user action being performed.
type Kind string

// supported action kinds
const (
	KindClick Kind = "click"
	KindCheck Kind = "check"
	KindFill  Kind = "fill"
)

// Strategy names one rung of the fallback ladder.
type Strategy string

// ladder rungs in execution order
const (
	StrategyNative      Strategy = "native"
	StrategyScrollRetry Strategy = "scroll-retry"
	StrategyForced      Strategy = "forced"
	StrategyScript      Strategy = "script"
)

// Attempt records one failed rung.
type Attempt struct {
	Strategy Strategy
	Err      error
}

// Result is the outcome of a completed action. Attempts holds the rungs that
// failed before the winning strategy.
type Result struct {
	Kind     Kind
	Strategy Strategy
	Attempts []Attempt
}

// FailedError reports that every strategy in the ladder failed.
type FailedError struct {
	Kind     Kind
	Attempts []Attempt
}

func (e *FailedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s failed after %d strategies", e.Kind, len(e.Attempts))
	for _, a := range e.Attempts {
		fmt.Fprintf(&b, "; [%s: %v]", a.Strategy, a.Err)
	}
	return b.String()
}

// Retrier runs actions with the fallback ladder. The zero value is usable.
type Retrier struct {
	NativeRetries int           // native attempts before falling back, default 2
	RetryDelay    time.Duration // delay between native attempts, default 250ms
}

func (r Retrier) retries() int {
	if r.NativeRetries <= 0 {
		return 2
	}
	return r.NativeRetries
}

func (r Retrier) delay() time.Duration {
	if r.RetryDelay <= 0 {
		return 250 * time.Millisecond
	}
	return r.RetryDelay
}

// Click clicks the element, falling back through the ladder on failure.
func (r Retrier) Click(ctx context.Context, h engine.Handle) (Result, error) {
	return r.do(ctx, h, KindClick,
		func() error { return h.Click(ctx) },
		func() error { return h.ClickForced(ctx) },
		"el => el.click()")
}

// Check checks the element (checkbox, radio), falling back through the ladder.
func (r Retrier) Check(ctx context.Context, h engine.Handle) (Result, error) {
	return r.do(ctx, h, KindCheck,
		func() error { return h.Check(ctx) },
		func() error { return h.CheckForced(ctx) },
		"el => { el.checked = true; el.dispatchEvent(new Event('change', {bubbles: true})); }")
}

// Fill sets the element's value, falling back through the ladder.
func (r Retrier) Fill(ctx context.Context, h engine.Handle, value string) (Result, error) {
	script := fmt.Sprintf(
		"el => { el.value = %s; el.dispatchEvent(new Event('input', {bubbles: true})); }",
		strconv.Quote(value))
	return r.do(ctx, h, KindFill,
		func() error { return h.Fill(ctx, value) },
		func() error { return h.FillForced(ctx, value) },
		script)
}

// do walks the ladder. native runs with bounded retries, every fallback once.
func (r Retrier) do(ctx context.Context, h engine.Handle, kind Kind, native, forced func() error, script string) (Result, error) {
	var attempts []Attempt

	rep := repeater.NewDefault(r.retries(), r.delay())
	err := rep.Do(ctx, native)
	if err == nil {
		return Result{Kind: kind, Strategy: StrategyNative}, nil
	}
	attempts = append(attempts, Attempt{Strategy: StrategyNative, Err: err})

	if ctxErr := ctx.Err(); ctxErr != nil {
		return Result{}, ctxErr
	}

	// scroll the element into view and retry the native action once
	if scrollErr := h.ScrollIntoView(ctx); scrollErr != nil {
		attempts = append(attempts, Attempt{Strategy: StrategyScrollRetry, Err: fmt.Errorf("scroll into view: %w", scrollErr)})
	} else {
		err = native()
		if err == nil {
			return Result{Kind: kind, Strategy: StrategyScrollRetry, Attempts: attempts}, nil
		}
		attempts = append(attempts, Attempt{Strategy: StrategyScrollRetry, Err: err})
	}

	err = forced()
	if err == nil {
		return Result{Kind: kind, Strategy: StrategyForced, Attempts: attempts}, nil
	}
	attempts = append(attempts, Attempt{Strategy: StrategyForced, Err: err})

	_, err = h.Evaluate(ctx, script)
	if err == nil {
		return Result{Kind: kind, Strategy: StrategyScript, Attempts: attempts}, nil
	}
	attempts = append(attempts, Attempt{Strategy: StrategyScript, Err: err})

	return Result{}, &FailedError{Kind: kind, Attempts: attempts}
}
