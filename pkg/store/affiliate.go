package store

import (
	"context"
	"fmt"

	"github.com/storecheck/storecheck/pkg/locator"
	"github.com/storecheck/storecheck/pkg/page"
)

// AffiliateDetails holds the affiliate registration form data.
type AffiliateDetails struct {
	Company string
	Website string
	TaxID   string
	PayPal  string // payout email; selects the paypal payment option when set
}

// affiliate page selectors
var (
	affiliateMarker   = locator.New("#affiliate-page", "form#affiliate", "#content")
	affCompanySpec    = locator.New("input[name=company]", "#input-company")
	affWebsiteSpec    = locator.New("input[name=website]", "#input-website")
	affTaxSpec        = locator.New("input[name=tax]", "#input-tax")
	affPaypalRadio    = locator.New("input[name=payment][value=paypal]", "#input-paypal-radio")
	affPaypalEmail    = locator.New("input[name=paypal]", "#input-paypal")
	affChequeRadio    = locator.New("input[name=payment][value=cheque]", "#input-cheque-radio")
	affSubmitSpec     = locator.New("form#affiliate button[type=submit]", "button:has-text('Continue')")
	affSuccessMarker  = locator.New("#affiliate-success", ".alert-success")
	affErrorSpec      = locator.New("#affiliate-error", ".alert-danger", ".text-danger")
)

// Affiliate wraps the affiliate registration flow, available to a logged-in
// account.
type Affiliate struct {
	base *page.Base
}

// Register submits the affiliate registration form. Form interaction failures
// propagate; a rejected submission comes back as Success=false with the shown
// error text, mirroring account registration.
func (a *Affiliate) Register(ctx context.Context, d AffiliateDetails) (RegisterResult, error) {
	if err := a.base.Navigate(ctx, "affiliate", page.MarkerAttached(affiliateMarker, a.base.Policy())); err != nil {
		return RegisterResult{}, err
	}

	fields := []struct {
		spec  locator.Spec
		value string
	}{
		{affCompanySpec, d.Company},
		{affWebsiteSpec, d.Website},
		{affTaxSpec, d.TaxID},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if err := a.base.Fill(ctx, f.spec, f.value); err != nil {
			return RegisterResult{}, fmt.Errorf("fill affiliate form: %w", err)
		}
	}

	if d.PayPal != "" {
		if a.base.VisibleOr(ctx, affPaypalRadio, false) {
			if err := a.base.Check(ctx, affPaypalRadio); err != nil {
				return RegisterResult{}, fmt.Errorf("select paypal payout: %w", err)
			}
		}
		if err := a.base.Fill(ctx, affPaypalEmail, d.PayPal); err != nil {
			return RegisterResult{}, fmt.Errorf("fill paypal email: %w", err)
		}
	} else if a.base.VisibleOr(ctx, affChequeRadio, false) {
		if err := a.base.Check(ctx, affChequeRadio); err != nil {
			return RegisterResult{}, fmt.Errorf("select cheque payout: %w", err)
		}
	}

	if err := a.base.Click(ctx, affSubmitSpec); err != nil {
		return RegisterResult{}, fmt.Errorf("submit affiliate registration: %w", err)
	}

	var res RegisterResult
	err := pollUntil(ctx, a.base.Policy(), "affiliate registration outcome", func() (bool, error) {
		if ok, err := a.base.IsVisible(ctx, affSuccessMarker); err == nil && ok {
			res = RegisterResult{Success: true}
			return true, nil
		}
		if ok, err := a.base.IsVisible(ctx, affErrorSpec); err == nil && ok {
			res = RegisterResult{Success: false, ErrorText: a.base.TextOr(ctx, affErrorSpec, "affiliate registration rejected")}
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return RegisterResult{}, fmt.Errorf("affiliate registration outcome: %w", err)
	}
	return res, nil
}
