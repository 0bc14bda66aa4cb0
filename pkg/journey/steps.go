package journey

import (
	"context"
	"fmt"
	"strings"

	"github.com/storecheck/storecheck/pkg/fixture"
	"github.com/storecheck/storecheck/pkg/store"
)

// Step library: reusable building blocks the plan loader maps actions to.
// Each constructor returns a named Step closed over its parameters.

// RegisterUser generates a unique user, registers it, and stores the
// credentials in the journey state for later login steps. Any seeded user is
// replaced: registering an already known account would be rejected as a duplicate.
func RegisterUser() Step {
	return Step{Name: "register user", Run: func(ctx context.Context, site *store.Site, st *State) error {
		st.User = fixture.NewUser()
		res, err := site.Account().Register(ctx, st.User)
		if err != nil {
			return err
		}
		if !res.Success {
			return fmt.Errorf("registration rejected: %s", res.ErrorText)
		}
		return nil
	}}
}

// Login signs in with the credentials held in the journey state.
func Login() Step {
	return Step{Name: "login", Run: func(ctx context.Context, site *store.Site, st *State) error {
		if st.User.Email == "" {
			return fmt.Errorf("no user in state, register first")
		}
		_, err := site.Account().Login(ctx, st.User.Email, st.User.Password)
		return err
	}}
}

// Logout signs the current user out.
func Logout() Step {
	return Step{Name: "logout", Run: func(ctx context.Context, site *store.Site, _ *State) error {
		return site.Account().Logout(ctx)
	}}
}

// AddToCart opens each product page and adds it to the cart, recording the
// product names as expected cart contents.
func AddToCart(paths ...string) Step {
	name := fmt.Sprintf("add to cart: %s", strings.Join(paths, ", "))
	return Step{Name: name, Run: func(ctx context.Context, site *store.Site, st *State) error {
		for _, path := range paths {
			p, err := site.Product().Open(ctx, path)
			if err != nil {
				return err
			}
			productName, err := p.Name(ctx)
			if err != nil {
				return err
			}
			if _, err := p.AddToCart(ctx); err != nil {
				return fmt.Errorf("add %q: %w", productName, err)
			}
			st.ExpectedCart = append(st.ExpectedCart, productName)
		}
		return nil
	}}
}

// AddToWishlist opens a product page and adds the product to the wishlist.
func AddToWishlist(path string) Step {
	return Step{Name: "add to wishlist: " + path, Run: func(ctx context.Context, site *store.Site, _ *State) error {
		p, err := site.Product().Open(ctx, path)
		if err != nil {
			return err
		}
		_, err = p.AddToWishlist(ctx)
		return err
	}}
}

// AddToCompare opens a product page and adds the product to the comparison.
func AddToCompare(path string) Step {
	return Step{Name: "add to compare: " + path, Run: func(ctx context.Context, site *store.Site, _ *State) error {
		p, err := site.Product().Open(ctx, path)
		if err != nil {
			return err
		}
		_, err = p.AddToCompare(ctx)
		return err
	}}
}

// SetQuantity changes the cart quantity of one product.
func SetQuantity(productName string, qty int) Step {
	return Step{Name: fmt.Sprintf("set quantity %s=%d", productName, qty),
		Run: func(ctx context.Context, site *store.Site, _ *State) error {
			cart, err := site.Cart().Open(ctx)
			if err != nil {
				return err
			}
			_, err = cart.SetQuantity(ctx, productName, qty)
			return err
		}}
}

// VerifyCart asserts the cart contains the given items. With no arguments it
// checks against the expected contents accumulated by earlier AddToCart steps.
func VerifyCart(items ...string) Step {
	return Step{Name: "verify cart contents", Run: func(ctx context.Context, site *store.Site, st *State) error {
		expected := items
		if len(expected) == 0 {
			expected = st.ExpectedCart
		}
		cart, err := site.Cart().Open(ctx)
		if err != nil {
			return err
		}
		check, err := cart.VerifyContains(ctx, expected)
		if err != nil {
			return err
		}
		if !check.AllFound {
			return &AssertionError{
				Expected: fmt.Sprintf("cart to contain %v", expected),
				Actual:   fmt.Sprintf("missing %v", check.Missing),
			}
		}
		return nil
	}}
}

// VerifyCartTotals asserts each line's total matches unit price times quantity.
func VerifyCartTotals() Step {
	return Step{Name: "verify cart totals", Run: func(ctx context.Context, site *store.Site, _ *State) error {
		cart, err := site.Cart().Open(ctx)
		if err != nil {
			return err
		}
		ok, problems, err := cart.LineTotalsConsistent(ctx, 0) // 0 uses the default tolerance
		if err != nil {
			return err
		}
		if !ok {
			return &AssertionError{Expected: "consistent line totals", Actual: strings.Join(problems, "; ")}
		}
		return nil
	}}
}

// ClearCart removes every cart item and resets the expected contents.
func ClearCart() Step {
	return Step{Name: "clear cart", Run: func(ctx context.Context, site *store.Site, st *State) error {
		cart, err := site.Cart().Open(ctx)
		if err != nil {
			return err
		}
		if _, err := cart.Clear(ctx); err != nil {
			return err
		}
		st.ExpectedCart = nil
		return nil
	}}
}

// SearchFor runs a storefront search and, when items are given, asserts they
// all appear in the results.
func SearchFor(query string, items ...string) Step {
	return Step{Name: "search: " + query, Run: func(ctx context.Context, site *store.Site, _ *State) error {
		s, err := site.Search().For(ctx, query)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		check, err := s.VerifyContains(ctx, items)
		if err != nil {
			return err
		}
		if !check.AllFound {
			return &AssertionError{
				Expected: fmt.Sprintf("results to contain %v", items),
				Actual:   fmt.Sprintf("missing %v", check.Missing),
			}
		}
		return nil
	}}
}

// CompleteCheckout drives the checkout flow to confirmation using details
// derived from the journey's user.
func CompleteCheckout() Step {
	return Step{Name: "complete checkout", Run: func(ctx context.Context, site *store.Site, st *State) error {
		co, err := site.Checkout().Begin(ctx)
		if err != nil {
			return err
		}
		details := store.CheckoutDetails{
			FirstName: st.User.FirstName,
			LastName:  st.User.LastName,
			Address:   "1 Test Street",
			City:      "Testville",
			Postcode:  "00100",
			Country:   "United Kingdom",
		}
		if details.FirstName == "" {
			details.FirstName, details.LastName = "Check", "Shopper"
		}
		return co.Complete(ctx, details, store.DefaultCheckoutBudget)
	}}
}
