package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/storecheck/storecheck/pkg/engine"
	"github.com/storecheck/storecheck/pkg/extract"
	"github.com/storecheck/storecheck/pkg/locator"
	"github.com/storecheck/storecheck/pkg/page"
)

// CollectionState is the observed state of a collection page (cart, wishlist,
// compare).
type CollectionState string

// collection states. Unknown means the query was ambiguous: neither rows nor
// the empty marker were found. It is a legitimate outcome that must be retried
// or surfaced, never silently coerced to Empty.
const (
	CollectionEmpty     CollectionState = "empty"
	CollectionPopulated CollectionState = "populated"
	CollectionUnknown   CollectionState = "unknown"
)

// ErrStateUnknown reports that a collection page's state stayed ambiguous
// after re-navigation.
var ErrStateUnknown = errors.New("collection state unknown: neither rows nor empty marker found")

// maxRemovals bounds the clear loop; no retry ladder runs indefinitely.
const maxRemovals = 50

// collectionSelectors describes how one collection page is located.
type collectionSelectors struct {
	name        string // for diagnostics
	path        string // navigation route
	marker      locator.Spec
	rows        locator.Spec
	rowName     locator.Spec // scoped within a row
	rowQty      locator.Spec // scoped; empty spec for pages without quantities
	rowUnit     locator.Spec
	rowTotal    locator.Spec
	rowRemove   locator.Spec
	emptyMarker locator.Spec
}

// default selector sets: specific attribute selectors listed before generic
// text selectors, first listed wins.
var (
	cartSelectors = collectionSelectors{
		name:        "cart",
		path:        "cart",
		marker:      locator.New("#cart-page", ".cart-page", "#content"),
		rows:        locator.New("#cart-items tr.cart-row", ".cart-row", "table.cart tbody tr"),
		rowName:     locator.New(".product-name", "td.name a", "td:first-child"),
		rowQty:      locator.New("input[name=quantity]", "input.qty", ".quantity input"),
		rowUnit:     locator.New(".unit-price", "td.price"),
		rowTotal:    locator.New(".line-total", "td.total"),
		rowRemove:   locator.New("button.remove", "a.remove", "button:has-text('Remove')"),
		emptyMarker: locator.New("#cart-empty", ".cart-empty", "p:has-text('shopping cart is empty')"),
	}

	wishlistSelectors = collectionSelectors{
		name:        "wishlist",
		path:        "wishlist",
		marker:      locator.New("#wishlist-page", ".wishlist-page", "#content"),
		rows:        locator.New("#wishlist-items tr.wishlist-row", ".wishlist-row", "table.wishlist tbody tr"),
		rowName:     locator.New(".product-name", "td.name a", "td:first-child"),
		rowUnit:     locator.New(".unit-price", "td.price"),
		rowRemove:   locator.New("button.remove", "a.remove", "button:has-text('Remove')"),
		emptyMarker: locator.New("#wishlist-empty", ".wishlist-empty", "p:has-text('wish list is empty')"),
	}

	compareSelectors = collectionSelectors{
		name:        "compare",
		path:        "compare",
		marker:      locator.New("#compare-page", ".compare-page", "#content"),
		rows:        locator.New("#compare-items .compare-col", ".compare-col"),
		rowName:     locator.New(".product-name", "strong a"),
		rowUnit:     locator.New(".unit-price", ".price"),
		rowRemove:   locator.New("button.remove", "a.remove", "button:has-text('Remove')"),
		emptyMarker: locator.New("#compare-empty", ".compare-empty", "p:has-text('not chosen any products')"),
	}
)

// collection implements the shared state machine behind cart, wishlist and
// compare pages.
type collection struct {
	base *page.Base
	sel  collectionSelectors
}

func newCollection(base *page.Base, sel collectionSelectors) *collection {
	return &collection{base: base, sel: sel}
}

// Open navigates to the collection page and waits for its marker.
func (c *collection) Open(ctx context.Context) error {
	return c.base.Navigate(ctx, c.sel.path, page.MarkerAttached(c.sel.marker, c.base.Policy()))
}

// State observes the page once. Rows win over the empty marker; when neither
// is found the state is Unknown.
func (c *collection) State(ctx context.Context) (CollectionState, error) {
	rows, _, err := locator.MatchAll(ctx, c.base.Page(), c.sel.rows)
	if err != nil {
		return CollectionUnknown, fmt.Errorf("query %s rows: %w", c.sel.name, err)
	}
	if len(rows) > 0 {
		return CollectionPopulated, nil
	}

	empty, err := c.base.IsVisible(ctx, c.sel.emptyMarker)
	if err != nil {
		return CollectionUnknown, fmt.Errorf("query %s empty marker: %w", c.sel.name, err)
	}
	if empty {
		return CollectionEmpty, nil
	}
	return CollectionUnknown, nil
}

// settledState retries an Unknown observation once through re-navigation,
// re-fetching server state, before giving up.
func (c *collection) settledState(ctx context.Context) (CollectionState, error) {
	state, err := c.State(ctx)
	if err != nil || state != CollectionUnknown {
		return state, err
	}

	if err := c.Open(ctx); err != nil {
		return CollectionUnknown, err
	}
	state, err = c.State(ctx)
	if err != nil {
		return CollectionUnknown, err
	}
	if state == CollectionUnknown {
		return CollectionUnknown, fmt.Errorf("%s: %w", c.sel.name, ErrStateUnknown)
	}
	return state, nil
}

// Items reads all rows into line items. An empty slice means an empty page.
func (c *collection) Items(ctx context.Context) ([]LineItem, error) {
	state, err := c.settledState(ctx)
	if err != nil {
		return nil, err
	}
	if state == CollectionEmpty {
		return []LineItem{}, nil
	}

	rows, _, err := locator.MatchAll(ctx, c.base.Page(), c.sel.rows)
	if err != nil {
		return nil, fmt.Errorf("query %s rows: %w", c.sel.name, err)
	}

	items := make([]LineItem, 0, len(rows))
	for i, row := range rows {
		item, err := c.readRow(ctx, row)
		if err != nil {
			return nil, fmt.Errorf("read %s row %d: %w", c.sel.name, i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// readRow extracts one line item from a row handle.
func (c *collection) readRow(ctx context.Context, row engine.Handle) (LineItem, error) {
	item := LineItem{Quantity: 1}

	name, err := scopedText(ctx, row, c.sel.rowName)
	if err != nil {
		return LineItem{}, err
	}
	item.Name = extract.CleanText(name)

	if !c.sel.rowQty.Empty() {
		if qty, ok := c.readQuantity(ctx, row); ok {
			item.Quantity = qty
		}
	}

	if !c.sel.rowUnit.Empty() {
		text, err := scopedText(ctx, row, c.sel.rowUnit)
		if err == nil {
			item.UnitPrice = extract.ParseMoney(text)
		}
	}
	if !c.sel.rowTotal.Empty() {
		text, err := scopedText(ctx, row, c.sel.rowTotal)
		if err == nil {
			item.Total = extract.ParseMoney(text)
		}
	}
	return item, nil
}

// readQuantity reads the row's quantity input, preferring the live input value
// over the attribute.
func (c *collection) readQuantity(ctx context.Context, row engine.Handle) (int, bool) {
	handles, _, err := locator.MatchAll(ctx, row, c.sel.rowQty)
	if err != nil || len(handles) == 0 {
		return 0, false
	}
	value, err := handles[0].InputValue(ctx)
	if err != nil || value == "" {
		return 0, false
	}
	qty, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, false
	}
	return qty, true
}

// Names returns the cleaned product names of all rows.
func (c *collection) Names(ctx context.Context) ([]string, error) {
	items, err := c.Items(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
	}
	return names, nil
}

// Verify compares expected product names against the page's rows.
func (c *collection) Verify(ctx context.Context, expected []string) (ItemCheck, error) {
	names, err := c.Names(ctx)
	if err != nil {
		return ItemCheck{}, err
	}
	return checkItems(expected, names), nil
}

// Clear removes every row and reports the number of removals. Clearing an
// already-empty page is a no-op reporting zero, never an error. An Unknown
// state after re-navigation is surfaced: a mutation must not proceed on an
// ambiguous premise.
func (c *collection) Clear(ctx context.Context) (int, error) {
	state, err := c.settledState(ctx)
	if err != nil {
		return 0, err
	}
	if state == CollectionEmpty {
		return 0, nil
	}

	removed := 0
	for removed < maxRemovals {
		rows, _, err := locator.MatchAll(ctx, c.base.Page(), c.sel.rows)
		if err != nil {
			return removed, fmt.Errorf("query %s rows: %w", c.sel.name, err)
		}
		if len(rows) == 0 {
			return removed, nil
		}

		btn, err := locator.Resolve(ctx, rows[0], c.sel.rowRemove, c.base.Policy())
		if err != nil {
			return removed, fmt.Errorf("%s remove control: %w", c.sel.name, err)
		}
		if err := clickHandle(ctx, btn.Handle); err != nil {
			return removed, fmt.Errorf("remove %s row: %w", c.sel.name, err)
		}
		removed++

		// server round-trip: re-fetch the page state instead of trusting the DOM
		if err := c.waitRowCountBelow(ctx, len(rows)); err != nil {
			return removed, err
		}
	}
	return removed, fmt.Errorf("%s not empty after %d removals", c.sel.name, maxRemovals)
}

// waitRowCountBelow polls until the row count drops below prev.
func (c *collection) waitRowCountBelow(ctx context.Context, prev int) error {
	policy := c.base.Policy()
	return pollUntil(ctx, policy, fmt.Sprintf("%s row count below %d", c.sel.name, prev), func() (bool, error) {
		rows, _, err := locator.MatchAll(ctx, c.base.Page(), c.sel.rows)
		if err != nil {
			return false, err
		}
		return len(rows) < prev, nil
	})
}
