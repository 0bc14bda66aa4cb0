// Package enginetest provides an in-memory engine fake for unit tests.
// Elements are registered under exact selector strings; interaction failures
// are injected per element to exercise retry ladders without a browser.
package enginetest

import (
	"errors"
	"sync"
)

// ErrNotActionable is the stock failure injected for interaction attempts.
var ErrNotActionable = errors.New("element is not actionable")

// Page is a fake engine.Page backed by a selector-to-elements map.
type Page struct {
	mu       sync.Mutex
	url      string
	elements map[string][]*Element

	NavErr     error            // returned by Navigate when set
	LoadErr    error            // returned by WaitLoaded when set
	OnNavigate func(url string) // called after a successful Navigate

	EvalResults map[string]any // script -> result for page Evaluate
	Screenshots []string       // paths of captured screenshots
	Closed      bool           // set once Close is called
}

// NewPage creates an empty fake page.
func NewPage() *Page {
	return &Page{
		elements:    map[string][]*Element{},
		EvalResults: map[string]any{},
	}
}

// Add registers an element under the given selector. Multiple elements under
// one selector are returned in registration order.
func (p *Page) Add(selector string, els ...*Element) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.elements[selector] = append(p.elements[selector], els...)
}

// Set replaces the elements registered under the selector.
func (p *Page) Set(selector string, els ...*Element) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.elements[selector] = els
}

// Remove drops all elements registered under the selector.
func (p *Page) Remove(selector string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.elements, selector)
}

// Reset drops all registered elements.
func (p *Page) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.elements = map[string][]*Element{}
}

// Browser is a fake engine.Browser handing out pre-registered pages in order.
// When the queue is exhausted it returns fresh empty pages.
type Browser struct {
	mu     sync.Mutex
	queue  []*Page
	Opened []*Page // every page handed out, in order
	Closed bool
}

// NewBrowser creates a fake browser with the given pages queued.
func NewBrowser(pages ...*Page) *Browser {
	return &Browser{queue: pages}
}

// Element is a fake engine.Handle with injectable failures.
type Element struct {
	mu sync.Mutex

	IsVisible  bool
	IsEnabled  bool
	IsAttached bool

	TextContent string
	Attrs       map[string]string
	Value       string // input value, updated by Fill
	Checked     bool

	Children map[string][]*Element // scoped Query results

	ClickErr      error // native Click always fails when set
	ClickFailures int   // native Click fails this many times, then succeeds
	ForcedErr     error // forced variants fail when set
	FillErr       error
	EvalErr       error
	EvalResult    any

	Clicks   int    // successful clicks, native or forced
	Scrolled bool   // ScrollIntoView was called
	OnClick  func() // invoked on every successful click
}

// NewElement creates a visible, enabled, attached element.
func NewElement() *Element {
	return &Element{
		IsVisible:  true,
		IsEnabled:  true,
		IsAttached: true,
		Attrs:      map[string]string{},
		Children:   map[string][]*Element{},
	}
}

// SetVisible flips visibility under the element's lock, safe for use from
// test goroutines simulating delayed rendering.
func (e *Element) SetVisible(v bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.IsVisible = v
}

// SetAttached flips attachment under the element's lock.
func (e *Element) SetAttached(v bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.IsAttached = v
}

// SetText replaces the text content under the element's lock.
func (e *Element) SetText(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.TextContent = text
}

// WithText sets the element's text content and returns it for chaining.
func (e *Element) WithText(text string) *Element {
	e.TextContent = text
	return e
}

// WithAttr sets an attribute and returns the element for chaining.
func (e *Element) WithAttr(name, value string) *Element {
	e.Attrs[name] = value
	return e
}

// WithChild registers a child under the selector and returns the element.
func (e *Element) WithChild(selector string, children ...*Element) *Element {
	e.Children[selector] = append(e.Children[selector], children...)
	return e
}
