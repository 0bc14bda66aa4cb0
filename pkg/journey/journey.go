// Package journey orchestrates multi-page shopping journeys against a storefront.
// A journey is an ordered list of named steps; each step drives the site through
// the page objects and fails fast on the first error. The runner isolates
// journeys from each other by giving each one a fresh browser page.
package journey

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/storecheck/storecheck/pkg/engine"
	"github.com/storecheck/storecheck/pkg/locator"
	"github.com/storecheck/storecheck/pkg/store"
)

// Status is the terminal outcome of a single journey.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped" // context cancelled before the journey started
)

// State is the mutable scratch space shared by the steps of one journey.
// Steps communicate through it instead of through closures so a journey
// definition stays declarative.
type State struct {
	User         store.User        // credentials used by this journey, if any
	ExpectedCart []string          // product names the cart is expected to hold
	Values       map[string]string // free-form step-to-step handoff
}

// Set stores a named value for later steps.
func (s *State) Set(key, val string) {
	if s.Values == nil {
		s.Values = map[string]string{}
	}
	s.Values[key] = val
}

// Get returns a value stored by an earlier step, or "".
func (s *State) Get(key string) string { return s.Values[key] }

// Step is one named action within a journey.
type Step struct {
	Name string
	Run  func(ctx context.Context, site *store.Site, st *State) error
}

// Journey is an ordered sequence of steps executed on a dedicated page.
type Journey struct {
	Name  string
	Steps []Step
}

// Result records the outcome of one journey.
type Result struct {
	Journey    string
	Status     Status
	FailedStep string // empty unless Status is failed
	Err        error  // step error, wrapped in StepError
	Duration   time.Duration
	Screenshot string // path of the failure screenshot, if one was captured
}

// StepError identifies the journey and step a failure came from.
type StepError struct {
	Journey string
	Step    string
	Err     error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("journey %q step %q: %v", e.Journey, e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// AssertionError reports an observed value that did not match the expected one.
// It distinguishes a wrong answer from a page that failed to answer at all.
type AssertionError struct {
	Expected string
	Actual   string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("expected %s, got %s", e.Expected, e.Actual)
}

// Logger receives progress events from the runner.
type Logger interface {
	SetPhase(phase string)
	Print(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds runner configuration.
type Config struct {
	BaseURL       string         // storefront root, e.g. http://localhost:8080
	Policy        locator.Policy // wait policy applied to every page object
	ScreenshotDir string         // where failure screenshots land; empty disables capture
	StopOnFail    bool           // abort the run after the first failed journey
	User          store.User     // seed credentials for journeys that log in without registering
}

// Runner executes journeys sequentially against one browser.
type Runner struct {
	cfg     Config
	browser engine.Browser
	log     Logger
}

// New creates a Runner. A nil logger is replaced with a no-op one.
func New(cfg Config, browser engine.Browser, log Logger) *Runner {
	if log == nil {
		log = nopLogger{}
	}
	return &Runner{cfg: cfg, browser: browser, log: log}
}

// Run executes the journeys in order and returns one result per journey.
// A cancelled context marks the remaining journeys skipped rather than failed.
func (r *Runner) Run(ctx context.Context, journeys []Journey) []Result {
	results := make([]Result, 0, len(journeys))
	for _, j := range journeys {
		if ctx.Err() != nil {
			results = append(results, Result{Journey: j.Name, Status: StatusSkipped})
			continue
		}
		res := r.runOne(ctx, j)
		results = append(results, res)
		if res.Status == StatusFailed && r.cfg.StopOnFail {
			r.log.Error("stopping after failed journey %q", j.Name)
			for _, rest := range journeys[len(results):] {
				results = append(results, Result{Journey: rest.Name, Status: StatusSkipped})
			}
			break
		}
	}
	return results
}

func (r *Runner) runOne(ctx context.Context, j Journey) Result {
	r.log.SetPhase(j.Name)
	start := time.Now()

	page, err := r.browser.NewPage(ctx)
	if err != nil {
		return Result{Journey: j.Name, Status: StatusFailed,
			Err: &StepError{Journey: j.Name, Step: "open page", Err: err}, Duration: time.Since(start)}
	}
	defer page.Close()

	site := store.NewSite(page, r.cfg.BaseURL, r.cfg.Policy)
	st := &State{User: r.cfg.User}

	for _, step := range j.Steps {
		r.log.Print("step: %s", step.Name)
		if err := step.Run(ctx, site, st); err != nil {
			wrapped := &StepError{Journey: j.Name, Step: step.Name, Err: err}
			r.log.Error("%v", wrapped)
			shot := r.capture(ctx, page, j.Name, step.Name)
			return Result{Journey: j.Name, Status: StatusFailed, FailedStep: step.Name,
				Err: wrapped, Duration: time.Since(start), Screenshot: shot}
		}
	}

	r.log.Print("journey %q passed in %s", j.Name, time.Since(start).Round(time.Millisecond))
	return Result{Journey: j.Name, Status: StatusPassed, Duration: time.Since(start)}
}

// capture saves a failure screenshot, best effort. Returns the file path or "".
func (r *Runner) capture(ctx context.Context, page engine.Page, journey, step string) string {
	if r.cfg.ScreenshotDir == "" {
		return ""
	}
	if err := os.MkdirAll(r.cfg.ScreenshotDir, 0o750); err != nil {
		r.log.Error("screenshot dir: %v", err)
		return ""
	}
	name := fmt.Sprintf("%s-%s-%d.png", slug(journey), slug(step), time.Now().Unix())
	path := filepath.Join(r.cfg.ScreenshotDir, name)
	if err := page.Screenshot(ctx, path); err != nil {
		r.log.Error("screenshot: %v", err)
		return ""
	}
	return path
}

// Summary counts terminal outcomes across a run.
func Summary(results []Result) (passed, failed, skipped int) {
	for _, res := range results {
		switch res.Status {
		case StatusPassed:
			passed++
		case StatusFailed:
			failed++
		case StatusSkipped:
			skipped++
		}
	}
	return passed, failed, skipped
}

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}

type nopLogger struct{}

func (nopLogger) SetPhase(string)        {}
func (nopLogger) Print(string, ...any)   {}
func (nopLogger) Error(string, ...any)   {}
