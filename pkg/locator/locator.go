// Package locator resolves a logical UI reference to a concrete element handle
// through an ordered list of candidate selector strategies. Strategies are
// tried in declaration order on every poll cycle, so a specific selector listed
// first always beats a generic one listed later even if both match.
package locator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/storecheck/storecheck/pkg/engine"
)

// Strategy is one candidate selector for finding an element.
type Strategy struct {
	Name     string // short label for diagnostics, defaults to the selector
	Selector string
}

func (s Strategy) String() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Selector
}

// Spec is an immutable ordered list of candidate strategies for one logical
// element. Built once at page-object construction.
type Spec struct {
	strategies []Strategy
}

// New creates a Spec from plain selectors, in priority order.
func New(selectors ...string) Spec {
	strategies := make([]Strategy, 0, len(selectors))
	for _, sel := range selectors {
		strategies = append(strategies, Strategy{Selector: sel})
	}
	return Spec{strategies: strategies}
}

// NewStrategies creates a Spec from named strategies, in priority order.
func NewStrategies(strategies ...Strategy) Spec {
	return Spec{strategies: append([]Strategy(nil), strategies...)}
}

// Strategies returns a copy of the candidate list.
func (s Spec) Strategies() []Strategy {
	return append([]Strategy(nil), s.strategies...)
}

// Empty reports whether the spec has no candidates.
func (s Spec) Empty() bool { return len(s.strategies) == 0 }

func (s Spec) String() string {
	parts := make([]string, 0, len(s.strategies))
	for _, st := range s.strategies {
		parts = append(parts, st.String())
	}
	return strings.Join(parts, " | ")
}

// Scope is anything elements can be searched under: a page or a previously
// resolved parent handle (cart rows, product cards).
type Scope interface {
	Query(ctx context.Context, selector string) ([]engine.Handle, error)
}

// Policy bounds a resolution attempt.
type Policy struct {
	Timeout  time.Duration
	Interval time.Duration
}

// DefaultPolicy is used when a zero Policy is passed.
var DefaultPolicy = Policy{Timeout: 10 * time.Second, Interval: 100 * time.Millisecond}

func (p Policy) orDefault() Policy {
	if p.Timeout <= 0 {
		p.Timeout = DefaultPolicy.Timeout
	}
	if p.Interval <= 0 {
		p.Interval = DefaultPolicy.Interval
	}
	return p
}

// Resolved is the outcome of a successful resolution.
type Resolved struct {
	Handle        engine.Handle
	Strategy      Strategy
	StrategyIndex int
}

// Attempt records the last failure reason for one strategy, for diagnostics.
type Attempt struct {
	Strategy Strategy
	Reason   string
}

// TimeoutError reports that no strategy produced an actionable element within
// the policy timeout. It carries every attempted strategy with its last
// failure reason so the test output is self-diagnosing.
type TimeoutError struct {
	Spec     Spec
	Timeout  time.Duration
	Attempts []Attempt
}

func (e *TimeoutError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "locator timed out after %v", e.Timeout)
	for _, a := range e.Attempts {
		fmt.Fprintf(&b, "; [%s: %s]", a.Strategy, a.Reason)
	}
	return b.String()
}

// Resolve polls the scope until one strategy matches at least one element that
// passes the actionability check. Ties between matching strategies break by
// declaration order: first listed wins.
func Resolve(ctx context.Context, scope Scope, spec Spec, policy Policy) (Resolved, error) {
	if spec.Empty() {
		return Resolved{}, fmt.Errorf("empty locator spec")
	}
	policy = policy.orDefault()

	deadline := time.Now().Add(policy.Timeout)
	attempts := make([]Attempt, len(spec.strategies))
	for i, st := range spec.strategies {
		attempts[i] = Attempt{Strategy: st, Reason: "not attempted"}
	}

	for {
		for i, st := range spec.strategies {
			res, reason, err := tryStrategy(ctx, scope, st)
			if err != nil {
				return Resolved{}, fmt.Errorf("strategy %s: %w", st, err)
			}
			if reason == "" {
				res.StrategyIndex = i
				return res, nil
			}
			attempts[i].Reason = reason
		}

		if time.Now().After(deadline) {
			return Resolved{}, &TimeoutError{Spec: spec, Timeout: policy.Timeout, Attempts: attempts}
		}

		select {
		case <-ctx.Done():
			return Resolved{}, ctx.Err()
		case <-time.After(policy.Interval):
		}
	}
}

// tryStrategy attempts a single strategy once. An empty reason means success.
func tryStrategy(ctx context.Context, scope Scope, st Strategy) (Resolved, string, error) {
	handles, err := scope.Query(ctx, st.Selector)
	if err != nil {
		return Resolved{}, "", err
	}
	if len(handles) == 0 {
		return Resolved{}, "no match", nil
	}

	// first actionable match wins; remember why the first candidate failed
	reason := ""
	for _, h := range handles {
		ok, r, err := engine.Actionable(ctx, h)
		if err != nil {
			return Resolved{}, "", err
		}
		if ok {
			return Resolved{Handle: h, Strategy: st}, "", nil
		}
		if reason == "" {
			reason = r
		}
	}
	return Resolved{}, reason, nil
}

// MatchAll returns all handles of the first strategy that matches at least one
// element, without waiting and without actionability checks. An empty result
// with nil error is legitimate: collection pages use it to distinguish "no
// rows" from a resolution failure.
func MatchAll(ctx context.Context, scope Scope, spec Spec) ([]engine.Handle, int, error) {
	for i, st := range spec.strategies {
		handles, err := scope.Query(ctx, st.Selector)
		if err != nil {
			return nil, -1, fmt.Errorf("strategy %s: %w", st, err)
		}
		if len(handles) > 0 {
			return handles, i, nil
		}
	}
	return nil, -1, nil
}
