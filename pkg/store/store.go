// Package store wraps the storefront's pages in page objects: high-level
// actions and queries over cart, checkout, search, wishlist, compare and
// account pages. Mutation actions return the page object for chaining and
// propagate failures; verification queries return structured results so a
// failing test reports exactly which expectation broke.
package store

import (
	"strings"

	"github.com/storecheck/storecheck/pkg/engine"
	"github.com/storecheck/storecheck/pkg/extract"
	"github.com/storecheck/storecheck/pkg/locator"
	"github.com/storecheck/storecheck/pkg/page"
)

// Site creates page objects bound to one browser page and storefront URL.
type Site struct {
	base *page.Base
}

// NewSite binds a storefront to an engine page. A zero policy uses locator
// defaults.
func NewSite(p engine.Page, baseURL string, policy locator.Policy) *Site {
	return &Site{base: page.NewBase(p, baseURL, policy)}
}

// Base exposes the shared page primitives.
func (s *Site) Base() *page.Base { return s.base }

// Account returns the account page object (register, login, logout).
func (s *Site) Account() *Account { return &Account{base: s.base} }

// Product returns the product page object.
func (s *Site) Product() *Product { return &Product{base: s.base} }

// Search returns the search page object.
func (s *Site) Search() *Search { return &Search{base: s.base} }

// Cart returns the cart page object.
func (s *Site) Cart() *Cart {
	return &Cart{collection: newCollection(s.base, cartSelectors)}
}

// Wishlist returns the wishlist page object.
func (s *Site) Wishlist() *Wishlist {
	return &Wishlist{collection: newCollection(s.base, wishlistSelectors)}
}

// Compare returns the product-comparison page object.
func (s *Site) Compare() *Compare {
	return &Compare{collection: newCollection(s.base, compareSelectors)}
}

// Checkout returns the checkout flow object.
func (s *Site) Checkout() *Checkout { return &Checkout{base: s.base} }

// Affiliate returns the affiliate registration page object.
func (s *Site) Affiliate() *Affiliate { return &Affiliate{base: s.base} }

// LineItem is one row of a collection page.
type LineItem struct {
	Name      string
	Quantity  int
	UnitPrice *extract.Money // nil when the cell held no numeric token
	Total     *extract.Money
}

// ItemCheck is the structured result of comparing expected product names
// against a page's rows. Never a bare boolean: the mismatch detail makes the
// assertion failure self-diagnosing.
type ItemCheck struct {
	AllFound bool
	Found    []string
	Missing  []string
}

// checkItems compares expected names against actual rows, matching on
// whitespace-normalized containment.
func checkItems(expected, actual []string) ItemCheck {
	res := ItemCheck{AllFound: true}
	for _, want := range expected {
		if containsName(actual, want) {
			res.Found = append(res.Found, want)
			continue
		}
		res.AllFound = false
		res.Missing = append(res.Missing, want)
	}
	return res
}

func containsName(actual []string, want string) bool {
	wantClean := extract.CleanText(want)
	for _, got := range actual {
		if strings.Contains(extract.CleanText(got), wantClean) {
			return true
		}
	}
	return false
}
