package enginetest

import (
	"context"
	"fmt"

	"github.com/storecheck/storecheck/pkg/engine"
)

// interface conformance
var (
	_ engine.Browser = (*Browser)(nil)
	_ engine.Page    = (*Page)(nil)
	_ engine.Handle  = (*Element)(nil)
)

func (b *Browser) NewPage(_ context.Context) (engine.Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var p *Page
	if len(b.queue) > 0 {
		p = b.queue[0]
		b.queue = b.queue[1:]
	} else {
		p = NewPage()
	}
	b.Opened = append(b.Opened, p)
	return p, nil
}

func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Closed = true
	return nil
}

func (p *Page) Navigate(_ context.Context, url string) error {
	if p.NavErr != nil {
		return p.NavErr
	}
	p.mu.Lock()
	p.url = url
	p.mu.Unlock()
	if p.OnNavigate != nil {
		p.OnNavigate(url)
	}
	return nil
}

func (p *Page) WaitLoaded(_ context.Context) error { return p.LoadErr }

func (p *Page) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

func (p *Page) Query(_ context.Context, selector string) ([]engine.Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	els := p.elements[selector]
	handles := make([]engine.Handle, 0, len(els))
	for _, el := range els {
		handles = append(handles, el)
	}
	return handles, nil
}

func (p *Page) Evaluate(_ context.Context, script string) (any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if res, ok := p.EvalResults[script]; ok {
		return res, nil
	}
	return nil, fmt.Errorf("no scripted result for %q", script)
}

func (p *Page) Screenshot(_ context.Context, path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Screenshots = append(p.Screenshots, path)
	return nil
}

func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Closed = true
	return nil
}

func (e *Element) Click(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ClickErr != nil {
		return e.ClickErr
	}
	if e.ClickFailures > 0 {
		e.ClickFailures--
		return ErrNotActionable
	}
	e.clickedLocked()
	return nil
}

func (e *Element) Fill(_ context.Context, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.FillErr != nil {
		return e.FillErr
	}
	e.Value = value
	return nil
}

func (e *Element) Check(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ClickErr != nil {
		return e.ClickErr
	}
	if e.ClickFailures > 0 {
		e.ClickFailures--
		return ErrNotActionable
	}
	e.Checked = true
	return nil
}

func (e *Element) SelectOption(_ context.Context, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Value = value
	return nil
}

func (e *Element) ClickForced(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ForcedErr != nil {
		return e.ForcedErr
	}
	e.clickedLocked()
	return nil
}

func (e *Element) FillForced(_ context.Context, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ForcedErr != nil {
		return e.ForcedErr
	}
	e.Value = value
	return nil
}

func (e *Element) CheckForced(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ForcedErr != nil {
		return e.ForcedErr
	}
	e.Checked = true
	return nil
}

func (e *Element) ScrollIntoView(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Scrolled = true
	return nil
}

func (e *Element) Evaluate(_ context.Context, _ string) (any, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.EvalErr != nil {
		return nil, e.EvalErr
	}
	// scripted fallback counts as a click side effect when no explicit result is set
	if e.EvalResult == nil {
		e.clickedLocked()
		return nil, nil
	}
	return e.EvalResult, nil
}

func (e *Element) Text(_ context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.TextContent, nil
}

func (e *Element) Attribute(_ context.Context, name string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Attrs[name], nil
}

func (e *Element) InputValue(_ context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Value, nil
}

func (e *Element) Visible(_ context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.IsVisible, nil
}

func (e *Element) Enabled(_ context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.IsEnabled, nil
}

func (e *Element) Attached(_ context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.IsAttached, nil
}

func (e *Element) Query(_ context.Context, selector string) ([]engine.Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	els := e.Children[selector]
	handles := make([]engine.Handle, 0, len(els))
	for _, el := range els {
		handles = append(handles, el)
	}
	return handles, nil
}

// clickedLocked records a successful click. caller holds e.mu; the OnClick
// callback runs unlocked to let it mutate other elements.
func (e *Element) clickedLocked() {
	e.Clicks++
	cb := e.OnClick
	if cb != nil {
		e.mu.Unlock()
		cb()
		e.mu.Lock()
	}
}
