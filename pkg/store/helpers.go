package store

import (
	"context"
	"fmt"
	"time"

	"github.com/storecheck/storecheck/pkg/action"
	"github.com/storecheck/storecheck/pkg/engine"
	"github.com/storecheck/storecheck/pkg/locator"
)

// retrier shared by all page objects; the default ladder is enough here.
var retrier = action.Retrier{}

// scopedText returns the text of the first match for the spec within the
// scope handle.
func scopedText(ctx context.Context, scope engine.Handle, spec locator.Spec) (string, error) {
	handles, _, err := locator.MatchAll(ctx, scope, spec)
	if err != nil {
		return "", err
	}
	if len(handles) == 0 {
		return "", fmt.Errorf("no match for %s in scope", spec)
	}
	return handles[0].Text(ctx)
}

// clickHandle clicks a resolved handle through the action ladder.
func clickHandle(ctx context.Context, h engine.Handle) error {
	if _, err := retrier.Click(ctx, h); err != nil {
		return err
	}
	return nil
}

// fillHandle fills a resolved handle through the action ladder.
func fillHandle(ctx context.Context, h engine.Handle, value string) error {
	if _, err := retrier.Fill(ctx, h, value); err != nil {
		return err
	}
	return nil
}

// pollUntil re-evaluates cond at the policy interval until it holds or the
// policy timeout elapses.
func pollUntil(ctx context.Context, policy locator.Policy, what string, cond func() (bool, error)) error {
	if policy.Timeout <= 0 {
		policy.Timeout = locator.DefaultPolicy.Timeout
	}
	if policy.Interval <= 0 {
		policy.Interval = locator.DefaultPolicy.Interval
	}

	deadline := time.Now().Add(policy.Timeout)
	for {
		ok, err := cond()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out after %v waiting for %s", policy.Timeout, what)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(policy.Interval):
		}
	}
}
