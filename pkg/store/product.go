package store

import (
	"context"
	"fmt"

	"github.com/storecheck/storecheck/pkg/extract"
	"github.com/storecheck/storecheck/pkg/locator"
	"github.com/storecheck/storecheck/pkg/page"
)

// product page selectors
var (
	productMarker     = locator.New("#product-page", ".product-info", "#content")
	productNameSpec   = locator.New("#product-name", ".product-info h1", "h1")
	productPriceSpec  = locator.New("#product-price", ".product-price", ".price")
	addToCartSpec     = locator.New("#button-cart", "button.add-to-cart", "button:has-text('Add to Cart')")
	addToWishlistSpec = locator.New("#button-wishlist", "button.add-to-wishlist", "button[title*='Wish List']")
	addToCompareSpec  = locator.New("#button-compare", "button.add-to-compare", "button[title*='Compare']")
	cartBadgeSpec     = locator.New("#cart-count", ".cart-badge", "#cart-total-items")
	toastSuccessSpec  = locator.New("#toast-success", ".alert-success")
)

// Product is the product detail page object.
type Product struct {
	base *page.Base
}

// Open navigates to a product page by its route path, e.g.
// "product?id=iphone".
func (p *Product) Open(ctx context.Context, path string) (*Product, error) {
	if err := p.base.Navigate(ctx, path, page.MarkerAttached(productMarker, p.base.Policy())); err != nil {
		return p, err
	}
	return p, nil
}

// Name returns the displayed product name.
func (p *Product) Name(ctx context.Context) (string, error) {
	text, err := p.base.Text(ctx, productNameSpec)
	if err != nil {
		return "", err
	}
	return extract.CleanText(text), nil
}

// Price parses the displayed price. nil with nil error means no numeric token.
func (p *Product) Price(ctx context.Context) (*extract.Money, error) {
	return p.base.Money(ctx, productPriceSpec)
}

// AddToCart adds the product and waits for the success toast. Mutation:
// failures propagate, a swallowed add would corrupt the test's premise.
func (p *Product) AddToCart(ctx context.Context) (*Product, error) {
	if err := p.base.Click(ctx, addToCartSpec); err != nil {
		return p, fmt.Errorf("add to cart: %w", err)
	}
	if err := p.base.WaitFor(ctx, toastSuccessSpec, page.StateVisible, 0); err != nil {
		return p, fmt.Errorf("add to cart confirmation: %w", err)
	}
	return p, nil
}

// AddToWishlist adds the product to the wish list.
func (p *Product) AddToWishlist(ctx context.Context) (*Product, error) {
	if err := p.base.Click(ctx, addToWishlistSpec); err != nil {
		return p, fmt.Errorf("add to wishlist: %w", err)
	}
	if err := p.base.WaitFor(ctx, toastSuccessSpec, page.StateVisible, 0); err != nil {
		return p, fmt.Errorf("add to wishlist confirmation: %w", err)
	}
	return p, nil
}

// AddToCompare adds the product to the comparison list.
func (p *Product) AddToCompare(ctx context.Context) (*Product, error) {
	if err := p.base.Click(ctx, addToCompareSpec); err != nil {
		return p, fmt.Errorf("add to compare: %w", err)
	}
	if err := p.base.WaitFor(ctx, toastSuccessSpec, page.StateVisible, 0); err != nil {
		return p, fmt.Errorf("add to compare confirmation: %w", err)
	}
	return p, nil
}

// CartBadgeCount reads the header cart counter. Query: unparseable or absent
// coerces to 0 with ok=false so callers can distinguish.
func (p *Product) CartBadgeCount(ctx context.Context) (int, bool) {
	text := p.base.TextOr(ctx, cartBadgeSpec, "")
	if text == "" {
		return 0, false
	}
	m := extract.ParseMoney(text)
	if m == nil {
		return 0, false
	}
	return int(m.Amount), true
}
