package store

import (
	"context"
	"fmt"

	"github.com/storecheck/storecheck/pkg/locator"
	"github.com/storecheck/storecheck/pkg/page"
)

// User holds the credentials and profile of one test account.
type User struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// RegisterResult is the structured outcome of a registration attempt. Failed
// registration is a legitimate result (duplicate email), not a Go error:
// tests assert on it.
type RegisterResult struct {
	Success   bool
	ErrorText string // shown error message when Success is false
}

// account page selectors
var (
	registerMarker    = locator.New("#register-page", "form#register", "#content")
	firstNameSpec     = locator.New("input[name=firstname]", "#input-firstname")
	lastNameSpec      = locator.New("input[name=lastname]", "#input-lastname")
	emailSpec         = locator.New("input[name=email]", "#input-email")
	passwordSpec      = locator.New("input[name=password]", "#input-password")
	agreeSpec         = locator.New("input[name=agree]", "input[type=checkbox].agree")
	registerSubmit    = locator.New("form#register button[type=submit]", "input[value=Continue]", "button:has-text('Continue')")
	registerSuccess   = locator.New("#account-created", ".alert-success", "h1:has-text('Your Account Has Been Created')")
	accountErrorSpec  = locator.New("#account-error", ".alert-danger", ".text-danger")
	loginMarker       = locator.New("#login-page", "form#login", "#content")
	loginSubmit       = locator.New("form#login button[type=submit]", "input[value=Login]", "button:has-text('Login')")
	accountPageMarker = locator.New("#account-page", "h2:has-text('My Account')")
	logoutLinkSpec    = locator.New("#logout-link", "a[href*=logout]", "a:has-text('Logout')")
)

// Account wraps registration, login and logout flows.
type Account struct {
	base *page.Base
}

// Register submits the registration form for the user. Navigation and form
// interaction failures propagate; a rejected registration (duplicate email)
// comes back as Success=false with the shown error text.
func (a *Account) Register(ctx context.Context, u User) (RegisterResult, error) {
	if err := a.base.Navigate(ctx, "register", page.MarkerAttached(registerMarker, a.base.Policy())); err != nil {
		return RegisterResult{}, err
	}

	fields := []struct {
		spec  locator.Spec
		value string
	}{
		{firstNameSpec, u.FirstName},
		{lastNameSpec, u.LastName},
		{emailSpec, u.Email},
		{passwordSpec, u.Password},
	}
	for _, f := range fields {
		if err := a.base.Fill(ctx, f.spec, f.value); err != nil {
			return RegisterResult{}, fmt.Errorf("fill registration form: %w", err)
		}
	}

	// privacy-policy agreement is optional on some storefront themes
	if a.base.VisibleOr(ctx, agreeSpec, false) {
		if err := a.base.Check(ctx, agreeSpec); err != nil {
			return RegisterResult{}, fmt.Errorf("check agreement: %w", err)
		}
	}

	if err := a.base.Click(ctx, registerSubmit); err != nil {
		return RegisterResult{}, fmt.Errorf("submit registration: %w", err)
	}

	return a.registrationOutcome(ctx)
}

// registrationOutcome polls for either the success marker or the error alert.
func (a *Account) registrationOutcome(ctx context.Context) (RegisterResult, error) {
	var res RegisterResult
	err := pollUntil(ctx, a.base.Policy(), "registration outcome", func() (bool, error) {
		if ok, err := a.base.IsVisible(ctx, registerSuccess); err == nil && ok {
			res = RegisterResult{Success: true}
			return true, nil
		}
		if ok, err := a.base.IsVisible(ctx, accountErrorSpec); err == nil && ok {
			text := a.base.TextOr(ctx, accountErrorSpec, "registration rejected")
			res = RegisterResult{Success: false, ErrorText: text}
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return RegisterResult{}, fmt.Errorf("registration outcome: %w", err)
	}
	return res, nil
}

// Login signs the user in. A rejected login is an error: tests depend on the
// session being established.
func (a *Account) Login(ctx context.Context, email, password string) (*Account, error) {
	if err := a.base.Navigate(ctx, "login", page.MarkerAttached(loginMarker, a.base.Policy())); err != nil {
		return a, err
	}

	if err := a.base.Fill(ctx, emailSpec, email); err != nil {
		return a, fmt.Errorf("fill email: %w", err)
	}
	if err := a.base.Fill(ctx, passwordSpec, password); err != nil {
		return a, fmt.Errorf("fill password: %w", err)
	}
	if err := a.base.Click(ctx, loginSubmit); err != nil {
		return a, fmt.Errorf("submit login: %w", err)
	}

	if err := a.base.WaitFor(ctx, accountPageMarker, page.StateVisible, 0); err != nil {
		if text := a.base.TextOr(ctx, accountErrorSpec, ""); text != "" {
			return a, fmt.Errorf("login rejected for %s: %s", email, text)
		}
		return a, fmt.Errorf("login did not reach account page: %w", err)
	}
	return a, nil
}

// Logout ends the session.
func (a *Account) Logout(ctx context.Context) error {
	if err := a.base.Navigate(ctx, "logout", nil); err != nil {
		return err
	}
	// session is gone once the logout link disappears
	return a.base.WaitFor(ctx, logoutLinkSpec, page.StateDetached, 0)
}

// LoggedIn reports whether a session appears active. Query: failure coerces
// to false.
func (a *Account) LoggedIn(ctx context.Context) bool {
	return a.base.VisibleOr(ctx, logoutLinkSpec, false)
}
