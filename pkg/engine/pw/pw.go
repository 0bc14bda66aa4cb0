// Package pw adapts playwright-go to the engine interfaces. Playwright calls
// carry their own millisecond timeouts, so context is honored on entry to each
// call rather than mid-flight.
package pw

import (
	"context"
	"fmt"

	"github.com/playwright-community/playwright-go"

	"github.com/storecheck/storecheck/pkg/engine"
)

// Options holds browser launch parameters.
type Options struct {
	Headless        bool
	SlowMoMs        float64 // per-action delay for visual observation, 0 disables
	ActionTimeoutMs float64 // per-call timeout passed to playwright, 0 uses default
}

// defaultActionTimeoutMs bounds individual playwright calls.
const defaultActionTimeoutMs = 10000

// Engine wraps a launched playwright chromium browser.
type Engine struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	timeout float64
}

// Launch installs playwright if needed, starts it and launches chromium.
func Launch(opts Options) (*Engine, error) {
	if err := playwright.Install(); err != nil {
		return nil, fmt.Errorf("install playwright: %w", err)
	}

	p, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("run playwright: %w", err)
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	}
	if opts.SlowMoMs > 0 {
		launchOpts.SlowMo = playwright.Float(opts.SlowMoMs)
	}

	browser, err := p.Chromium.Launch(launchOpts)
	if err != nil {
		_ = p.Stop()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	timeout := opts.ActionTimeoutMs
	if timeout <= 0 {
		timeout = defaultActionTimeoutMs
	}

	return &Engine{pw: p, browser: browser, timeout: timeout}, nil
}

// NewPage creates an isolated browser context with a single page.
// Separate contexts keep cookies and storage between pages independent.
func (e *Engine) NewPage(ctx context.Context) (engine.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bctx, err := e.browser.NewContext()
	if err != nil {
		return nil, fmt.Errorf("create browser context: %w", err)
	}

	p, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, fmt.Errorf("create page: %w", err)
	}

	return &page{p: p, bctx: bctx, timeout: e.timeout}, nil
}

// Close shuts down the browser and stops playwright.
func (e *Engine) Close() error {
	if err := e.browser.Close(); err != nil {
		_ = e.pw.Stop()
		return fmt.Errorf("close browser: %w", err)
	}
	if err := e.pw.Stop(); err != nil {
		return fmt.Errorf("stop playwright: %w", err)
	}
	return nil
}

type page struct {
	p       playwright.Page
	bctx    playwright.BrowserContext
	timeout float64
}

func (pg *page) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := pg.p.Goto(url, playwright.PageGotoOptions{Timeout: playwright.Float(pg.timeout)}); err != nil {
		return fmt.Errorf("goto %s: %w", url, err)
	}
	return nil
}

func (pg *page) WaitLoaded(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := pg.p.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateLoad,
		Timeout: playwright.Float(pg.timeout),
	})
	if err != nil {
		return fmt.Errorf("wait for load state: %w", err)
	}
	return nil
}

func (pg *page) URL() string { return pg.p.URL() }

func (pg *page) Query(ctx context.Context, selector string) ([]engine.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	loc := pg.p.Locator(selector)
	count, err := loc.Count()
	if err != nil {
		return nil, fmt.Errorf("count %q: %w", selector, err)
	}

	handles := make([]engine.Handle, 0, count)
	for i := range count {
		handles = append(handles, &handle{loc: loc.Nth(i), timeout: pg.timeout})
	}
	return handles, nil
}

func (pg *page) Evaluate(ctx context.Context, script string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res, err := pg.p.Evaluate(script)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}
	return res, nil
}

func (pg *page) Screenshot(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := pg.p.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("screenshot: %w", err)
	}
	return nil
}

func (pg *page) Close() error {
	if err := pg.p.Close(); err != nil {
		_ = pg.bctx.Close()
		return fmt.Errorf("close page: %w", err)
	}
	if err := pg.bctx.Close(); err != nil {
		return fmt.Errorf("close browser context: %w", err)
	}
	return nil
}

type handle struct {
	loc     playwright.Locator
	timeout float64
}

func (h *handle) Click(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return h.loc.Click(playwright.LocatorClickOptions{Timeout: playwright.Float(h.timeout)})
}

func (h *handle) Fill(ctx context.Context, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return h.loc.Fill(value, playwright.LocatorFillOptions{Timeout: playwright.Float(h.timeout)})
}

func (h *handle) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return h.loc.Check(playwright.LocatorCheckOptions{Timeout: playwright.Float(h.timeout)})
}

func (h *handle) SelectOption(ctx context.Context, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := h.loc.SelectOption(playwright.SelectOptionValues{Values: &[]string{value}},
		playwright.LocatorSelectOptionOptions{Timeout: playwright.Float(h.timeout)})
	return err
}

func (h *handle) ClickForced(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return h.loc.Click(playwright.LocatorClickOptions{
		Force:   playwright.Bool(true),
		Timeout: playwright.Float(h.timeout),
	})
}

func (h *handle) FillForced(ctx context.Context, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return h.loc.Fill(value, playwright.LocatorFillOptions{
		Force:   playwright.Bool(true),
		Timeout: playwright.Float(h.timeout),
	})
}

func (h *handle) CheckForced(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return h.loc.Check(playwright.LocatorCheckOptions{
		Force:   playwright.Bool(true),
		Timeout: playwright.Float(h.timeout),
	})
}

func (h *handle) ScrollIntoView(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return h.loc.ScrollIntoViewIfNeeded(playwright.LocatorScrollIntoViewIfNeededOptions{
		Timeout: playwright.Float(h.timeout),
	})
}

func (h *handle) Evaluate(ctx context.Context, script string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return h.loc.Evaluate(script, nil)
}

func (h *handle) Text(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return h.loc.TextContent(playwright.LocatorTextContentOptions{Timeout: playwright.Float(h.timeout)})
}

func (h *handle) Attribute(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return h.loc.GetAttribute(name, playwright.LocatorGetAttributeOptions{Timeout: playwright.Float(h.timeout)})
}

func (h *handle) InputValue(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return h.loc.InputValue(playwright.LocatorInputValueOptions{Timeout: playwright.Float(h.timeout)})
}

func (h *handle) Visible(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return h.loc.IsVisible()
}

func (h *handle) Enabled(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return h.loc.IsEnabled()
}

func (h *handle) Attached(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	count, err := h.loc.Count()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (h *handle) Query(ctx context.Context, selector string) ([]engine.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	loc := h.loc.Locator(selector)
	count, err := loc.Count()
	if err != nil {
		return nil, fmt.Errorf("count %q: %w", selector, err)
	}

	handles := make([]engine.Handle, 0, count)
	for i := range count {
		handles = append(handles, &handle{loc: loc.Nth(i), timeout: h.timeout})
	}
	return handles, nil
}
