package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/storecheck/storecheck/pkg/engine"
	"github.com/storecheck/storecheck/pkg/extract"
	"github.com/storecheck/storecheck/pkg/locator"
)

// cart-level selectors outside the row scope
var (
	cartTotalSpec  = locator.New("#cart-total", ".cart-total", "tfoot .total")
	cartUpdateSpec = locator.New("button.update", "button:has-text('Update')")
)

// Cart is the shopping cart page object.
type Cart struct {
	collection *collection
}

// Open navigates to the cart page.
func (c *Cart) Open(ctx context.Context) (*Cart, error) {
	if err := c.collection.Open(ctx); err != nil {
		return c, err
	}
	return c, nil
}

// State observes the cart's collection state once.
func (c *Cart) State(ctx context.Context) (CollectionState, error) {
	return c.collection.State(ctx)
}

// Items reads all cart rows.
func (c *Cart) Items(ctx context.Context) ([]LineItem, error) {
	return c.collection.Items(ctx)
}

// Names returns cleaned product names of all rows.
func (c *Cart) Names(ctx context.Context) ([]string, error) {
	return c.collection.Names(ctx)
}

// Count returns the number of cart rows.
func (c *Cart) Count(ctx context.Context) (int, error) {
	items, err := c.collection.Items(ctx)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// VerifyContains compares expected product names against cart rows.
func (c *Cart) VerifyContains(ctx context.Context, expected []string) (ItemCheck, error) {
	return c.collection.Verify(ctx, expected)
}

// Clear removes every row, reporting the number of removals. No-op on an
// empty cart.
func (c *Cart) Clear(ctx context.Context) (int, error) {
	return c.collection.Clear(ctx)
}

// Total parses the displayed cart total. nil with nil error means the total
// text held no numeric token.
func (c *Cart) Total(ctx context.Context) (*extract.Money, error) {
	return c.collection.base.Money(ctx, cartTotalSpec)
}

// SetQuantity sets the quantity input of the row holding the named product and
// submits the cart update. Mutation: failures propagate.
func (c *Cart) SetQuantity(ctx context.Context, productName string, qty int) (*Cart, error) {
	row, err := c.findRow(ctx, productName)
	if err != nil {
		return c, err
	}

	input, err := locator.Resolve(ctx, row, c.collection.sel.rowQty, c.collection.base.Policy())
	if err != nil {
		return c, fmt.Errorf("quantity input for %q: %w", productName, err)
	}
	if err := fillHandle(ctx, input.Handle, strconv.Itoa(qty)); err != nil {
		return c, fmt.Errorf("set quantity for %q: %w", productName, err)
	}

	if err := c.collection.base.Click(ctx, cartUpdateSpec); err != nil {
		return c, fmt.Errorf("update cart: %w", err)
	}

	// the update is a server round-trip; wait for the row to reflect it
	err = pollUntil(ctx, c.collection.base.Policy(), fmt.Sprintf("quantity %d for %q", qty, productName), func() (bool, error) {
		items, err := c.collection.Items(ctx)
		if err != nil {
			return false, err
		}
		for _, item := range items {
			if item.Name == extract.CleanText(productName) && item.Quantity == qty {
				return true, nil
			}
		}
		return false, nil
	})
	return c, err
}

// LineTotalsConsistent verifies that every row's displayed total equals
// unit price times quantity within the tolerance. A non-positive eps falls
// back to extract.DefaultEpsilon. Rows with unparseable prices are
// reported, not skipped.
func (c *Cart) LineTotalsConsistent(ctx context.Context, eps float64) (bool, []string, error) {
	if eps <= 0 {
		eps = extract.DefaultEpsilon
	}
	items, err := c.collection.Items(ctx)
	if err != nil {
		return false, nil, err
	}

	var mismatches []string
	for _, item := range items {
		switch {
		case item.UnitPrice == nil:
			mismatches = append(mismatches, fmt.Sprintf("%s: unit price not parseable", item.Name))
		case item.Total == nil:
			mismatches = append(mismatches, fmt.Sprintf("%s: line total not parseable", item.Name))
		default:
			want := item.UnitPrice.Amount * float64(item.Quantity)
			if !item.Total.Equal(extract.Money{Amount: want}, eps) {
				mismatches = append(mismatches,
					fmt.Sprintf("%s: total %.2f, want %.2f (%.2f x %d)",
						item.Name, item.Total.Amount, want, item.UnitPrice.Amount, item.Quantity))
			}
		}
	}
	return len(mismatches) == 0, mismatches, nil
}

// findRow locates the row whose name cell contains the product name.
func (c *Cart) findRow(ctx context.Context, productName string) (engine.Handle, error) {
	rows, _, err := locator.MatchAll(ctx, c.collection.base.Page(), c.collection.sel.rows)
	if err != nil {
		return nil, fmt.Errorf("query cart rows: %w", err)
	}
	want := extract.CleanText(productName)
	for _, row := range rows {
		name, err := scopedText(ctx, row, c.collection.sel.rowName)
		if err != nil {
			continue
		}
		if extract.CleanText(name) == want {
			return row, nil
		}
	}
	return nil, fmt.Errorf("no cart row for product %q", productName)
}
