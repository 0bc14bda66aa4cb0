// Package main provides storecheck - browser journey checks for e-commerce storefronts.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/storecheck/storecheck/pkg/config"
	"github.com/storecheck/storecheck/pkg/engine"
	"github.com/storecheck/storecheck/pkg/engine/pw"
	"github.com/storecheck/storecheck/pkg/fixture"
	"github.com/storecheck/storecheck/pkg/journey"
	"github.com/storecheck/storecheck/pkg/locator"
	"github.com/storecheck/storecheck/pkg/notify"
	"github.com/storecheck/storecheck/pkg/progress"
	"github.com/storecheck/storecheck/pkg/render"
	"github.com/storecheck/storecheck/pkg/store"
)

// opts holds all command-line options.
type opts struct {
	URL        string `short:"u" long:"url" description:"storefront base url (overrides config)"`
	Headed     bool   `long:"headed" description:"run the browser with a visible window"`
	SlowMo     int    `long:"slow-mo" description:"slow down browser actions by this many milliseconds"`
	StopOnFail bool   `long:"stop-on-fail" description:"abort the run after the first failed journey"`
	Setup      bool   `short:"s" long:"setup" description:"register the fixture user and exit"`
	NoColor    bool   `long:"no-color" description:"disable color output"`
	NoNotify   bool   `long:"no-notify" description:"skip completion notifications"`
	Version    bool   `short:"v" long:"version" description:"print version and exit"`

	PlanFile string `positional-arg-name:"plan-file" description:"path to plan file (optional, uses config when omitted)"`
}

var revision = "unknown"

func main() {
	fmt.Printf("storecheck %s\n", revision)

	var o opts
	parser := flags.NewParser(&o, flags.Default)
	parser.Usage = "[OPTIONS] [plan-file]"

	args, err := parser.Parse()
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if o.Version {
		os.Exit(0)
	}

	// handle positional argument
	if len(args) > 0 {
		o.PlanFile = args[0]
	}

	// setup context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, o); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, o opts) error {
	cfg, err := config.Load("") // empty string uses default location
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyFlags(cfg, o)

	if cfg.BaseURL == "" {
		return errors.New("storefront url required, set base_url in config or pass --url")
	}

	log, err := progress.NewLogger(progress.Config{
		LogDir:  cfg.LogDir,
		BaseURL: cfg.BaseURL,
		NoColor: cfg.NoColor,
	})
	if err != nil {
		return fmt.Errorf("create run logger: %w", err)
	}
	defer log.Close()

	log.SetPhase(progress.PhaseSetup)
	log.Print("target: %s", cfg.BaseURL)

	eng, err := pw.Launch(pw.Options{
		Headless:        cfg.Headless,
		SlowMoMs:        float64(cfg.SlowMoMs),
		ActionTimeoutMs: float64(cfg.ActionTimeoutMs),
	})
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}
	defer func() {
		if closeErr := eng.Close(); closeErr != nil {
			log.Warn("browser close: %v", closeErr)
		}
	}()

	policy := locator.Policy{Timeout: cfg.WaitTimeout(), Interval: cfg.WaitInterval()}

	user, err := prepareFixtureUser(ctx, eng, cfg, policy, log)
	if err != nil {
		return err
	}
	if o.Setup {
		log.Print("fixture user ready: %s", user.Email)
		return nil
	}

	journeys, err := loadJourneys(cfg.PlanFile)
	if err != nil {
		return err
	}
	log.Print("loaded %d journeys from %s", len(journeys), cfg.PlanFile)

	runner := journey.New(journey.Config{
		BaseURL:       cfg.BaseURL,
		Policy:        policy,
		ScreenshotDir: cfg.ScreenshotDir,
		StopOnFail:    cfg.StopOnFail,
		User:          user,
	}, eng, log)

	results := runner.Run(ctx, journeys)

	log.SetPhase(progress.PhaseReport)
	report := render.RunReport(cfg.BaseURL, results, log.Elapsed())
	rendered, renderErr := render.Markdown(report, cfg.NoColor)
	if renderErr != nil {
		log.Warn("render report: %v", renderErr)
		rendered = report
	}
	log.PrintRaw("\n%s\n", rendered)

	passed, failed, skipped := journey.Summary(results)
	if !o.NoNotify {
		sendNotification(ctx, cfg, log, notifyData{
			passed: passed, failed: failed, skipped: skipped, results: results,
		})
	}

	log.Print("completed in %s", log.Elapsed())
	if failed > 0 {
		return fmt.Errorf("%d of %d journeys failed", failed, len(results))
	}
	return nil
}

// applyFlags overlays command line flags onto the resolved config.
func applyFlags(cfg *config.Config, o opts) {
	if o.URL != "" {
		cfg.BaseURL = o.URL
	}
	if o.PlanFile != "" {
		cfg.PlanFile = o.PlanFile
	}
	if o.Headed {
		cfg.Headless = false
	}
	if o.SlowMo > 0 {
		cfg.SlowMoMs = o.SlowMo
	}
	if o.StopOnFail {
		cfg.StopOnFail = true
	}
	if o.NoColor {
		cfg.NoColor = true
	}
}

// prepareFixtureUser loads the saved test account, registering a fresh one on
// the storefront when none exists yet.
func prepareFixtureUser(ctx context.Context, eng engine.Browser, cfg *config.Config, policy locator.Policy, log *progress.Logger) (store.User, error) {
	user, created, err := fixture.LoadOrCreate(cfg.FixturePath)
	if err != nil {
		return store.User{}, fmt.Errorf("fixture user: %w", err)
	}
	if !created {
		return user, nil
	}

	log.Print("registering fixture user %s", user.Email)
	page, err := eng.NewPage(ctx)
	if err != nil {
		return store.User{}, fmt.Errorf("open setup page: %w", err)
	}
	defer page.Close()

	site := store.NewSite(page, cfg.BaseURL, policy)
	res, err := site.Account().Register(ctx, user)
	if err != nil {
		return store.User{}, fmt.Errorf("register fixture user: %w", err)
	}
	if !res.Success {
		return store.User{}, fmt.Errorf("fixture user registration rejected: %s", res.ErrorText)
	}
	return user, nil
}

// loadJourneys reads the plan file and builds runnable journeys.
func loadJourneys(planFile string) ([]journey.Journey, error) {
	if planFile == "" {
		return nil, errors.New("plan file required, set plan_file in config or pass it as argument")
	}
	plan, err := journey.LoadPlan(planFile)
	if err != nil {
		return nil, err
	}
	return plan.Build()
}

type notifyData struct {
	passed, failed, skipped int
	results                 []journey.Result
}

// sendNotification dispatches the run result to configured destinations.
// best effort: failures are logged, never fatal.
func sendNotification(ctx context.Context, cfg *config.Config, log *progress.Logger, d notifyData) {
	svc, err := notify.New(notify.Params{
		URLs:      cfg.NotifyURLs,
		OnSuccess: true,
		OnFailure: true,
	}, log)
	if err != nil {
		log.Warn("notifications disabled: %v", err)
		return
	}

	status := "success"
	var firstErr string
	if d.failed > 0 {
		status = "failure"
		for _, r := range d.results {
			if r.Err != nil {
				firstErr = r.Err.Error()
				break
			}
		}
	}

	// detached context so a cancelled run still reports its failure
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	svc.Send(sendCtx, notify.Result{
		Status:   status,
		Target:   cfg.BaseURL,
		Passed:   d.passed,
		Failed:   d.failed,
		Skipped:  d.skipped,
		Duration: log.Elapsed(),
		LogPath:  log.Path(),
		Error:    firstErr,
	})
}
