package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/storecheck/storecheck/pkg/locator"
	"github.com/storecheck/storecheck/pkg/page"
)

// CheckoutStage is one state of the checkout flow.
type CheckoutStage string

// checkout stages in flow order, plus the two off-path observations: a bounce
// back to the cart signals an upstream validation failure and StageUnknown
// means the page has not settled into any recognizable stage yet.
const (
	StageAddress   CheckoutStage = "address-entry"
	StageShipping  CheckoutStage = "shipping-method"
	StagePayment   CheckoutStage = "payment-method"
	StageReview    CheckoutStage = "review"
	StageConfirmed CheckoutStage = "confirmed"
	StageCart      CheckoutStage = "cart"
	StageUnknown   CheckoutStage = "unknown"
)

// ErrBouncedToCart reports a regression transition out of checkout. It must
// be surfaced to the test, not retried blindly: the cause is an upstream
// validation failure, and re-driving the flow would only repeat it.
var ErrBouncedToCart = errors.New("checkout bounced back to cart")

// DefaultCheckoutBudget bounds the step-advancement loop.
const DefaultCheckoutBudget = 12

// CheckoutDetails holds the data entered during checkout.
type CheckoutDetails struct {
	FirstName string
	LastName  string
	Address   string
	City      string
	Postcode  string
	Country   string
}

// checkout selectors
var (
	checkoutMarker = locator.New("#checkout-page", "#content")

	confirmedMarker = locator.New("#order-confirmed", "h1:has-text('Your order has been placed')")
	reviewMarker    = locator.New("#checkout-review", ".checkout-review")
	paymentMarker   = locator.New("#payment-method", ".payment-method")
	shippingMarker  = locator.New("#shipping-method", ".shipping-method")
	addressMarker   = locator.New("#address-form", "#checkout-address form")
	cartPageMarker  = locator.New("#cart-page", ".cart-page")

	addrFirstNameSpec = locator.New("#address-form input[name=firstname]", "input[name=firstname]")
	addrLastNameSpec  = locator.New("#address-form input[name=lastname]", "input[name=lastname]")
	addrStreetSpec    = locator.New("input[name=address]", "input[name=address_1]")
	addrCitySpec      = locator.New("input[name=city]")
	addrPostcodeSpec  = locator.New("input[name=postcode]", "input[name=zip]")
	addrCountrySpec   = locator.New("input[name=country]", "select[name=country]")

	shippingRadioSpec = locator.New("input[name=shipping_method]", ".shipping-method input[type=radio]")
	paymentRadioSpec  = locator.New("input[name=payment_method]", ".payment-method input[type=radio]")
	termsAgreeSpec    = locator.New("input[name=terms]", "input[type=checkbox][name=agree]")

	continueSpec = locator.New("#button-continue", "button.continue", "button:has-text('Continue')")
	confirmSpec  = locator.New("#button-confirm", "button.confirm", "button:has-text('Confirm Order')")
)

// Checkout drives the multi-step checkout flow: AddressEntry, ShippingMethod,
// PaymentMethod, Review, Confirmed.
type Checkout struct {
	base *page.Base
}

// Begin navigates to the checkout entry point.
func (c *Checkout) Begin(ctx context.Context) (*Checkout, error) {
	if err := c.base.Navigate(ctx, "checkout", page.MarkerAttached(checkoutMarker, c.base.Policy())); err != nil {
		return c, err
	}
	return c, nil
}

// Stage inspects the page once and classifies the current checkout stage.
// Later stages are checked first: a page showing the confirmation heading must
// not be misread as an earlier form that is still attached below it.
func (c *Checkout) Stage(ctx context.Context) CheckoutStage {
	checks := []struct {
		marker locator.Spec
		stage  CheckoutStage
	}{
		{confirmedMarker, StageConfirmed},
		{reviewMarker, StageReview},
		{paymentMarker, StagePayment},
		{shippingMarker, StageShipping},
		{addressMarker, StageAddress},
		{cartPageMarker, StageCart},
	}
	for _, chk := range checks {
		if c.base.VisibleOr(ctx, chk.marker, false) {
			return chk.stage
		}
	}
	if strings.Contains(c.base.URL(), "cart") {
		return StageCart
	}
	return StageUnknown
}

// Complete drives the flow until Confirmed. The loop inspects the page each
// iteration for the next actionable control and advances; it terminates on
// Confirmed, on exhausting the step budget (fatal: checkout did not
// complete), or on a regression to the cart.
func (c *Checkout) Complete(ctx context.Context, d CheckoutDetails, budget int) error {
	if budget <= 0 {
		budget = DefaultCheckoutBudget
	}

	for step := 0; step < budget; step++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		stage := c.Stage(ctx)
		switch stage {
		case StageConfirmed:
			return nil

		case StageCart:
			return fmt.Errorf("at step %d: %w", step, ErrBouncedToCart)

		case StageAddress:
			if err := c.fillAddress(ctx, d); err != nil {
				return fmt.Errorf("address entry: %w", err)
			}
			if err := c.advance(ctx, stage, continueSpec); err != nil {
				return err
			}

		case StageShipping:
			if err := c.pickFirst(ctx, shippingRadioSpec); err != nil {
				return fmt.Errorf("shipping method: %w", err)
			}
			if err := c.advance(ctx, stage, continueSpec); err != nil {
				return err
			}

		case StagePayment:
			if err := c.pickFirst(ctx, paymentRadioSpec); err != nil {
				return fmt.Errorf("payment method: %w", err)
			}
			if c.base.VisibleOr(ctx, termsAgreeSpec, false) {
				if err := c.base.Check(ctx, termsAgreeSpec); err != nil {
					return fmt.Errorf("agree to terms: %w", err)
				}
			}
			if err := c.advance(ctx, stage, continueSpec); err != nil {
				return err
			}

		case StageReview:
			if err := c.advance(ctx, stage, confirmSpec); err != nil {
				return err
			}

		case StageUnknown:
			// page is still settling, give it one poll interval
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.pollInterval()):
			}
		}
	}

	return fmt.Errorf("checkout did not complete within %d steps, stuck at %s", budget, c.Stage(ctx))
}

// advance clicks the control and waits for the stage to change. A stage that
// refuses to change is not fatal here: the budget in Complete bounds it.
func (c *Checkout) advance(ctx context.Context, from CheckoutStage, control locator.Spec) error {
	if err := c.base.Click(ctx, control); err != nil {
		return fmt.Errorf("advance from %s: %w", from, err)
	}
	// tolerate timeout: Complete re-inspects and the budget terminates the loop
	_ = pollUntil(ctx, c.base.Policy(), fmt.Sprintf("leave stage %s", from), func() (bool, error) {
		return c.Stage(ctx) != from, nil
	})
	return ctx.Err()
}

// fillAddress fills whichever address fields the theme renders.
func (c *Checkout) fillAddress(ctx context.Context, d CheckoutDetails) error {
	fields := []struct {
		spec  locator.Spec
		value string
	}{
		{addrFirstNameSpec, d.FirstName},
		{addrLastNameSpec, d.LastName},
		{addrStreetSpec, d.Address},
		{addrCitySpec, d.City},
		{addrPostcodeSpec, d.Postcode},
		{addrCountrySpec, d.Country},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if !c.base.VisibleOr(ctx, f.spec, false) {
			continue
		}
		if err := c.base.Fill(ctx, f.spec, f.value); err != nil {
			return err
		}
	}
	return nil
}

// pickFirst checks the first radio for the spec when one is rendered; a
// single pre-selected method renders no choice at all on some themes.
func (c *Checkout) pickFirst(ctx context.Context, spec locator.Spec) error {
	handles, _, err := locator.MatchAll(ctx, c.base.Page(), spec)
	if err != nil {
		return err
	}
	if len(handles) == 0 {
		return nil
	}
	if _, err := retrier.Check(ctx, handles[0]); err != nil {
		return err
	}
	return nil
}

func (c *Checkout) pollInterval() time.Duration {
	if iv := c.base.Policy().Interval; iv > 0 {
		return iv
	}
	return locator.DefaultPolicy.Interval
}
