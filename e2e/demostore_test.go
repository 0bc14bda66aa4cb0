//go:build e2e

package e2e

import (
	"fmt"
	"html"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// demoProduct is one catalog entry of the demo storefront.
type demoProduct struct {
	ID    string
	Name  string
	Price float64
}

var demoCatalog = []demoProduct{
	{ID: "iphone", Name: "iPhone", Price: 123.20},
	{ID: "macbook", Name: "MacBook", Price: 602.00},
	{ID: "macbook-air", Name: "MacBook Air", Price: 1202.00},
	{ID: "canon-eos", Name: "Canon EOS 5D", Price: 98.00},
	{ID: "hp-lp3065", Name: "HP LP3065", Price: 122.00},
}

type demoUser struct {
	firstName string
	lastName  string
	email     string
	password  string
	cart      map[string]int // product id -> qty, survives logout
	affiliate bool
}

type demoSession struct {
	user     *demoUser
	cart     map[string]int // anonymous cart, replaced by user cart on login
	wishlist []string
	compare  []string
	checkout string // "", "address", "shipping", "payment", "review", "confirmed"
}

// demoStore is a minimal in-memory storefront serving the markup the page
// objects expect: registration, login, cart, wishlist, compare, search,
// checkout and affiliate pages. All state is per-session except user
// accounts and their carts.
type demoStore struct {
	mu       sync.Mutex
	users    map[string]*demoUser    // by email
	sessions map[string]*demoSession // by cookie
}

func newDemoStore() *demoStore {
	return &demoStore{
		users:    map[string]*demoUser{},
		sessions: map[string]*demoSession{},
	}
}

const sessionCookie = "demosid"

func (d *demoStore) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", d.home)
	mux.HandleFunc("/register", d.register)
	mux.HandleFunc("/login", d.login)
	mux.HandleFunc("/logout", d.logout)
	mux.HandleFunc("/account", d.account)
	mux.HandleFunc("/product", d.product)
	mux.HandleFunc("/cart", d.cartPage)
	mux.HandleFunc("/cart/add", d.cartAdd)
	mux.HandleFunc("/cart/update", d.cartUpdate)
	mux.HandleFunc("/cart/remove", d.cartRemove)
	mux.HandleFunc("/wishlist", d.wishlistPage)
	mux.HandleFunc("/wishlist/add", d.wishlistAdd)
	mux.HandleFunc("/wishlist/remove", d.wishlistRemove)
	mux.HandleFunc("/compare", d.comparePage)
	mux.HandleFunc("/compare/add", d.compareAdd)
	mux.HandleFunc("/compare/remove", d.compareRemove)
	mux.HandleFunc("/search", d.search)
	mux.HandleFunc("/checkout", d.checkoutPage)
	mux.HandleFunc("/checkout/address", d.checkoutAddress)
	mux.HandleFunc("/checkout/shipping", d.checkoutShipping)
	mux.HandleFunc("/checkout/payment", d.checkoutPayment)
	mux.HandleFunc("/checkout/confirm", d.checkoutConfirm)
	mux.HandleFunc("/affiliate", d.affiliate)
	mux.HandleFunc("/playground", d.playground)
	return mux
}

// playground serves markup that deliberately lacks the primary selectors the
// page objects try first, so locator fallback can be observed in a real DOM.
func (d *demoStore) playground(w http.ResponseWriter, r *http.Request) {
	s := d.session(w, r)
	d.renderPage(w, s, "Playground", `<div id="playground-page">
<div class="fallback-target">found via fallback</div>
<button class="hidden-button" style="display:none">hidden</button>
</div>`)
}

// session resolves (or creates) the session for the request and sets the
// cookie on the response.
func (d *demoStore) session(w http.ResponseWriter, r *http.Request) *demoSession {
	d.mu.Lock()
	defer d.mu.Unlock()

	if c, err := r.Cookie(sessionCookie); err == nil {
		if s, ok := d.sessions[c.Value]; ok {
			return s
		}
	}
	sid := uuid.New().String()
	s := &demoSession{cart: map[string]int{}}
	d.sessions[sid] = s
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: sid, Path: "/"})
	return s
}

// activeCart returns the cart the session operates on: the user's persisted
// cart when logged in, the anonymous session cart otherwise.
func (s *demoSession) activeCart() map[string]int {
	if s.user != nil {
		return s.user.cart
	}
	return s.cart
}

func (d *demoStore) findProduct(id string) *demoProduct {
	for i := range demoCatalog {
		if demoCatalog[i].ID == id {
			return &demoCatalog[i]
		}
	}
	return nil
}

func demoMoney(v float64) string {
	return "$" + humanize.FormatFloat("#,###.##", v)
}

// renderPage wraps body in the shared layout: header with cart badge, logout
// link when a session is active, and the #content container the page-object
// marker fallbacks rely on.
func (d *demoStore) renderPage(w http.ResponseWriter, s *demoSession, title, body string) {
	count := 0
	d.mu.Lock()
	for _, qty := range s.activeCart() {
		count += qty
	}
	loggedIn := s.user != nil
	d.mu.Unlock()

	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><head><title>" + html.EscapeString(title) + "</title></head><body>")
	b.WriteString(`<div id="header">`)
	fmt.Fprintf(&b, `<span id="cart-count">%d</span>`, count)
	b.WriteString(`<form id="search-form" action="/search" method="get"><input name="search" placeholder="Search"><button id="search-button" type="submit">Search</button></form>`)
	if loggedIn {
		b.WriteString(`<a id="logout-link" href="/logout">Logout</a>`)
	}
	b.WriteString(`</div><div id="content">`)
	b.WriteString(body)
	b.WriteString(`</div></body></html>`)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(b.String()))
}

func (d *demoStore) home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s := d.session(w, r)
	var b strings.Builder
	b.WriteString(`<div id="home-page"><h1>Demo Store</h1><div id="featured">`)
	for _, p := range demoCatalog {
		fmt.Fprintf(&b, `<div class="product-card"><a class="product-name" href="/product?id=%s">%s</a><span class="price">%s</span></div>`,
			p.ID, html.EscapeString(p.Name), demoMoney(p.Price))
	}
	b.WriteString(`</div></div>`)
	d.renderPage(w, s, "Demo Store", b.String())
}

func (d *demoStore) register(w http.ResponseWriter, r *http.Request) {
	s := d.session(w, r)
	if r.Method == http.MethodPost {
		email := strings.TrimSpace(r.FormValue("email"))
		d.mu.Lock()
		_, taken := d.users[email]
		d.mu.Unlock()

		switch {
		case email == "" || r.FormValue("password") == "":
			d.renderPage(w, s, "Register", registerForm(`<div id="account-error">Warning: E-Mail Address and password are required!</div>`))
		case taken:
			d.renderPage(w, s, "Register", registerForm(`<div id="account-error">Warning: E-Mail Address is already registered!</div>`))
		default:
			u := &demoUser{
				firstName: r.FormValue("firstname"),
				lastName:  r.FormValue("lastname"),
				email:     email,
				password:  r.FormValue("password"),
				cart:      map[string]int{},
			}
			d.mu.Lock()
			d.users[email] = u
			s.user = u // registration signs the account in
			d.mu.Unlock()
			d.renderPage(w, s, "Account Created",
				`<div id="account-created"><h1>Your Account Has Been Created!</h1></div>`)
		}
		return
	}
	d.renderPage(w, s, "Register", registerForm(""))
}

func registerForm(alert string) string {
	return alert + `<div id="register-page"><h1>Register Account</h1>
<form id="register" method="post" action="/register">
<input name="firstname" placeholder="First Name">
<input name="lastname" placeholder="Last Name">
<input name="email" placeholder="E-Mail">
<input name="password" type="password" placeholder="Password">
<label><input name="agree" type="checkbox" value="1"> I agree to the Privacy Policy</label>
<button type="submit">Continue</button>
</form></div>`
}

func (d *demoStore) login(w http.ResponseWriter, r *http.Request) {
	s := d.session(w, r)
	if r.Method == http.MethodPost {
		email := strings.TrimSpace(r.FormValue("email"))
		d.mu.Lock()
		u, ok := d.users[email]
		if ok && u.password == r.FormValue("password") {
			s.user = u
			d.mu.Unlock()
			http.Redirect(w, r, "/account", http.StatusSeeOther)
			return
		}
		d.mu.Unlock()
		d.renderPage(w, s, "Login", loginForm(`<div id="account-error">Warning: No match for E-Mail Address and/or Password.</div>`))
		return
	}
	d.renderPage(w, s, "Login", loginForm(""))
}

func loginForm(alert string) string {
	return alert + `<div id="login-page"><h1>Account Login</h1>
<form id="login" method="post" action="/login">
<input name="email" placeholder="E-Mail">
<input name="password" type="password" placeholder="Password">
<button type="submit">Login</button>
</form></div>`
}

func (d *demoStore) logout(w http.ResponseWriter, r *http.Request) {
	s := d.session(w, r)
	d.mu.Lock()
	s.user = nil
	s.cart = map[string]int{}
	s.checkout = ""
	d.mu.Unlock()
	d.renderPage(w, s, "Logout", `<div id="logout-page"><h1>Account Logout</h1><p>You have been logged off your account.</p></div>`)
}

func (d *demoStore) account(w http.ResponseWriter, r *http.Request) {
	s := d.session(w, r)
	d.mu.Lock()
	u := s.user
	d.mu.Unlock()
	if u == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	d.renderPage(w, s, "My Account",
		fmt.Sprintf(`<div id="account-page"><h2>My Account</h2><p>Welcome, %s %s</p></div>`,
			html.EscapeString(u.firstName), html.EscapeString(u.lastName)))
}

func (d *demoStore) product(w http.ResponseWriter, r *http.Request) {
	s := d.session(w, r)
	p := d.findProduct(r.URL.Query().Get("id"))
	if p == nil {
		http.NotFound(w, r)
		return
	}

	var toast string
	switch r.URL.Query().Get("added") {
	case "cart":
		toast = fmt.Sprintf(`<div id="toast-success">Success: You have added %s to your shopping cart!</div>`, html.EscapeString(p.Name))
	case "wishlist":
		toast = fmt.Sprintf(`<div id="toast-success">Success: You have added %s to your wish list!</div>`, html.EscapeString(p.Name))
	case "compare":
		toast = fmt.Sprintf(`<div id="toast-success">Success: You have added %s to your product comparison!</div>`, html.EscapeString(p.Name))
	}

	body := fmt.Sprintf(`<div id="product-page">
<h1 id="product-name">%s</h1>
<div id="product-price">%s</div>
<form method="post" action="/cart/add"><input type="hidden" name="product" value="%s"><button id="button-cart" type="submit">Add to Cart</button></form>
<form method="post" action="/wishlist/add"><input type="hidden" name="product" value="%s"><button id="button-wishlist" type="submit">Add to Wish List</button></form>
<form method="post" action="/compare/add"><input type="hidden" name="product" value="%s"><button id="button-compare" type="submit">Compare this Product</button></form>
%s</div>`, html.EscapeString(p.Name), demoMoney(p.Price), p.ID, p.ID, p.ID, toast)
	d.renderPage(w, s, p.Name, body)
}

func (d *demoStore) cartAdd(w http.ResponseWriter, r *http.Request) {
	s := d.session(w, r)
	id := r.FormValue("product")
	if d.findProduct(id) == nil {
		http.NotFound(w, r)
		return
	}
	d.mu.Lock()
	s.activeCart()[id]++
	d.mu.Unlock()
	http.Redirect(w, r, "/product?id="+id+"&added=cart", http.StatusSeeOther)
}

func (d *demoStore) cartPage(w http.ResponseWriter, r *http.Request) {
	s := d.session(w, r)
	d.mu.Lock()
	cart := s.activeCart()
	ids := make([]string, 0, len(cart))
	for id := range cart {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	b.WriteString(`<div id="cart-page"><h1>Shopping Cart</h1>`)
	if len(ids) == 0 {
		b.WriteString(`<p id="cart-empty">Your shopping cart is empty!</p>`)
	} else {
		b.WriteString(`<form method="post" action="/cart/update"><table><tbody id="cart-items">`)
		total := 0.0
		for _, id := range ids {
			p := d.findProduct(id)
			qty := cart[id]
			line := p.Price * float64(qty)
			total += line
			fmt.Fprintf(&b, `<tr class="cart-row">
<td class="product-name">%s</td>
<td><input type="hidden" name="product" value="%s"><input name="quantity" value="%d" size="3"></td>
<td class="unit-price">%s</td>
<td class="line-total">%s</td>
<td><button class="remove" type="submit" formaction="/cart/remove?product=%s">Remove</button></td>
</tr>`, html.EscapeString(p.Name), p.ID, qty, demoMoney(p.Price), demoMoney(line), p.ID)
		}
		b.WriteString(`</tbody></table>`)
		fmt.Fprintf(&b, `<div id="cart-total">Total: %s</div>`, demoMoney(total))
		b.WriteString(`<button class="update" type="submit">Update</button></form>`)
	}
	b.WriteString(`</div>`)
	d.mu.Unlock()
	d.renderPage(w, s, "Shopping Cart", b.String())
}

func (d *demoStore) cartUpdate(w http.ResponseWriter, r *http.Request) {
	s := d.session(w, r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	products := r.PostForm["product"]
	quantities := r.PostForm["quantity"]
	d.mu.Lock()
	cart := s.activeCart()
	for i, id := range products {
		if i >= len(quantities) {
			break
		}
		qty, err := strconv.Atoi(strings.TrimSpace(quantities[i]))
		if err != nil || qty <= 0 {
			delete(cart, id)
			continue
		}
		cart[id] = qty
	}
	d.mu.Unlock()
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (d *demoStore) cartRemove(w http.ResponseWriter, r *http.Request) {
	s := d.session(w, r)
	d.mu.Lock()
	delete(s.activeCart(), r.URL.Query().Get("product"))
	d.mu.Unlock()
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (d *demoStore) wishlistAdd(w http.ResponseWriter, r *http.Request) {
	s := d.session(w, r)
	id := r.FormValue("product")
	if d.findProduct(id) == nil {
		http.NotFound(w, r)
		return
	}
	d.mu.Lock()
	if !containsStr(s.wishlist, id) {
		s.wishlist = append(s.wishlist, id)
	}
	d.mu.Unlock()
	http.Redirect(w, r, "/product?id="+id+"&added=wishlist", http.StatusSeeOther)
}

func (d *demoStore) wishlistPage(w http.ResponseWriter, r *http.Request) {
	s := d.session(w, r)
	d.mu.Lock()
	items := append([]string(nil), s.wishlist...)
	d.mu.Unlock()

	var b strings.Builder
	b.WriteString(`<div id="wishlist-page"><h1>My Wish List</h1>`)
	if len(items) == 0 {
		b.WriteString(`<p id="wishlist-empty">Your wish list is empty.</p>`)
	} else {
		b.WriteString(`<table><tbody id="wishlist-items">`)
		for _, id := range items {
			p := d.findProduct(id)
			fmt.Fprintf(&b, `<tr class="wishlist-row">
<td class="product-name">%s</td>
<td class="unit-price">%s</td>
<td><form method="post" action="/wishlist/remove"><input type="hidden" name="product" value="%s"><button class="remove" type="submit">Remove</button></form></td>
</tr>`, html.EscapeString(p.Name), demoMoney(p.Price), p.ID)
		}
		b.WriteString(`</tbody></table>`)
	}
	b.WriteString(`</div>`)
	d.renderPage(w, s, "Wish List", b.String())
}

func (d *demoStore) wishlistRemove(w http.ResponseWriter, r *http.Request) {
	s := d.session(w, r)
	id := r.FormValue("product")
	d.mu.Lock()
	s.wishlist = removeStr(s.wishlist, id)
	d.mu.Unlock()
	http.Redirect(w, r, "/wishlist", http.StatusSeeOther)
}

func (d *demoStore) compareAdd(w http.ResponseWriter, r *http.Request) {
	s := d.session(w, r)
	id := r.FormValue("product")
	if d.findProduct(id) == nil {
		http.NotFound(w, r)
		return
	}
	d.mu.Lock()
	if !containsStr(s.compare, id) {
		s.compare = append(s.compare, id)
	}
	d.mu.Unlock()
	http.Redirect(w, r, "/product?id="+id+"&added=compare", http.StatusSeeOther)
}

func (d *demoStore) comparePage(w http.ResponseWriter, r *http.Request) {
	s := d.session(w, r)
	d.mu.Lock()
	items := append([]string(nil), s.compare...)
	d.mu.Unlock()

	var b strings.Builder
	b.WriteString(`<div id="compare-page"><h1>Product Comparison</h1>`)
	if len(items) == 0 {
		b.WriteString(`<p id="compare-empty">You have not chosen any products to compare.</p>`)
	} else {
		b.WriteString(`<div id="compare-items">`)
		for _, id := range items {
			p := d.findProduct(id)
			fmt.Fprintf(&b, `<div class="compare-col">
<strong class="product-name">%s</strong>
<span class="unit-price">%s</span>
<form method="post" action="/compare/remove"><input type="hidden" name="product" value="%s"><button class="remove" type="submit">Remove</button></form>
</div>`, html.EscapeString(p.Name), demoMoney(p.Price), p.ID)
		}
		b.WriteString(`</div>`)
	}
	b.WriteString(`</div>`)
	d.renderPage(w, s, "Product Comparison", b.String())
}

func (d *demoStore) compareRemove(w http.ResponseWriter, r *http.Request) {
	s := d.session(w, r)
	id := r.FormValue("product")
	d.mu.Lock()
	s.compare = removeStr(s.compare, id)
	d.mu.Unlock()
	http.Redirect(w, r, "/compare", http.StatusSeeOther)
}

func (d *demoStore) search(w http.ResponseWriter, r *http.Request) {
	s := d.session(w, r)
	query := r.URL.Query().Get("q")
	if query == "" {
		query = r.URL.Query().Get("search")
	}

	var matched []demoProduct
	if q := strings.ToLower(strings.TrimSpace(query)); q != "" {
		for _, p := range demoCatalog {
			if strings.Contains(strings.ToLower(p.Name), q) {
				matched = append(matched, p)
			}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<div id="search-page"><h1>Search - %s</h1>`, html.EscapeString(query))
	b.WriteString(`<form action="/search" method="get"><input name="search" value="` + html.EscapeString(query) + `"><button type="submit">Search</button></form>`)
	if len(matched) == 0 {
		b.WriteString(`<p id="no-results">There is no product that matches the search criteria.</p>`)
	} else {
		b.WriteString(`<div id="search-results">`)
		for _, p := range matched {
			fmt.Fprintf(&b, `<div class="product-card"><a class="product-name" href="/product?id=%s">%s</a><span class="price">%s</span></div>`,
				p.ID, html.EscapeString(p.Name), demoMoney(p.Price))
		}
		b.WriteString(`</div>`)
	}
	b.WriteString(`</div>`)
	d.renderPage(w, s, "Search", b.String())
}

func (d *demoStore) checkoutPage(w http.ResponseWriter, r *http.Request) {
	s := d.session(w, r)
	d.mu.Lock()
	if len(s.activeCart()) == 0 && s.checkout != "confirmed" {
		s.checkout = ""
		d.mu.Unlock()
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
		return
	}
	if s.checkout == "" {
		s.checkout = "address"
	}
	stage := s.checkout
	d.mu.Unlock()

	var body string
	switch stage {
	case "address":
		body = `<div id="checkout-page"><h1>Checkout</h1>
<form id="address-form" method="post" action="/checkout/address">
<input name="firstname" placeholder="First Name">
<input name="lastname" placeholder="Last Name">
<input name="address" placeholder="Address">
<input name="city" placeholder="City">
<input name="postcode" placeholder="Post Code">
<input name="country" placeholder="Country">
<button id="button-continue" type="submit">Continue</button>
</form></div>`
	case "shipping":
		body = `<div id="checkout-page"><h1>Checkout</h1>
<form id="shipping-method" method="post" action="/checkout/shipping">
<label><input type="radio" name="shipping_method" value="flat" checked> Flat Shipping Rate - $5.00</label>
<label><input type="radio" name="shipping_method" value="express"> Express - $12.00</label>
<button id="button-continue" type="submit">Continue</button>
</form></div>`
	case "payment":
		body = `<div id="checkout-page"><h1>Checkout</h1>
<form id="payment-method" method="post" action="/checkout/payment">
<label><input type="radio" name="payment_method" value="cod" checked> Cash On Delivery</label>
<label><input type="radio" name="payment_method" value="bank"> Bank Transfer</label>
<label><input type="checkbox" name="terms" value="1"> I have read and agree to the Terms &amp; Conditions</label>
<button id="button-continue" type="submit">Continue</button>
</form></div>`
	case "review":
		var rows strings.Builder
		d.mu.Lock()
		for id, qty := range s.activeCart() {
			p := d.findProduct(id)
			fmt.Fprintf(&rows, `<li>%s x %d - %s</li>`, html.EscapeString(p.Name), qty, demoMoney(p.Price*float64(qty)))
		}
		d.mu.Unlock()
		body = fmt.Sprintf(`<div id="checkout-page"><h1>Checkout</h1>
<div id="checkout-review"><ul>%s</ul></div>
<form method="post" action="/checkout/confirm"><button id="button-confirm" type="submit">Confirm Order</button></form></div>`, rows.String())
	case "confirmed":
		d.mu.Lock()
		s.checkout = "" // next checkout starts fresh
		d.mu.Unlock()
		body = `<div id="checkout-page"><div id="order-confirmed"><h1>Your order has been placed!</h1></div></div>`
	}
	d.renderPage(w, s, "Checkout", body)
}

// checkoutAdvance moves the session's checkout stage when the posted form is
// acceptable, re-rendering the same stage otherwise.
func (d *demoStore) checkoutAdvance(w http.ResponseWriter, r *http.Request, from, to string, ok bool) {
	s := d.session(w, r)
	d.mu.Lock()
	if s.checkout == from && ok {
		s.checkout = to
	}
	d.mu.Unlock()
	http.Redirect(w, r, "/checkout", http.StatusSeeOther)
}

func (d *demoStore) checkoutAddress(w http.ResponseWriter, r *http.Request) {
	ok := strings.TrimSpace(r.FormValue("firstname")) != "" &&
		strings.TrimSpace(r.FormValue("address")) != "" &&
		strings.TrimSpace(r.FormValue("city")) != ""
	d.checkoutAdvance(w, r, "address", "shipping", ok)
}

func (d *demoStore) checkoutShipping(w http.ResponseWriter, r *http.Request) {
	d.checkoutAdvance(w, r, "shipping", "payment", r.FormValue("shipping_method") != "")
}

func (d *demoStore) checkoutPayment(w http.ResponseWriter, r *http.Request) {
	ok := r.FormValue("payment_method") != "" && r.FormValue("terms") != ""
	d.checkoutAdvance(w, r, "payment", "review", ok)
}

func (d *demoStore) checkoutConfirm(w http.ResponseWriter, r *http.Request) {
	s := d.session(w, r)
	d.mu.Lock()
	if s.checkout == "review" {
		cart := s.activeCart()
		for id := range cart {
			delete(cart, id)
		}
		s.checkout = "confirmed"
	}
	d.mu.Unlock()
	http.Redirect(w, r, "/checkout", http.StatusSeeOther)
}

func (d *demoStore) affiliate(w http.ResponseWriter, r *http.Request) {
	s := d.session(w, r)
	d.mu.Lock()
	u := s.user
	d.mu.Unlock()
	if u == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if r.Method == http.MethodPost {
		if strings.TrimSpace(r.FormValue("company")) == "" {
			d.renderPage(w, s, "Affiliate", affiliateForm(`<div id="affiliate-error">Warning: Company must be provided!</div>`))
			return
		}
		d.mu.Lock()
		u.affiliate = true
		d.mu.Unlock()
		d.renderPage(w, s, "Affiliate",
			`<div id="affiliate-success"><h1>Your affiliate account has been created!</h1></div>`)
		return
	}
	d.renderPage(w, s, "Affiliate", affiliateForm(""))
}

func affiliateForm(alert string) string {
	return alert + `<div id="affiliate-page"><h1>Affiliate Program</h1>
<form id="affiliate" method="post" action="/affiliate">
<input name="company" placeholder="Company">
<input name="website" placeholder="Web Site">
<input name="tax" placeholder="Tax ID">
<label><input type="radio" name="payment" value="cheque" checked> Cheque</label>
<label><input type="radio" name="payment" value="paypal"> PayPal</label>
<input name="paypal" placeholder="PayPal Email Account">
<button type="submit">Continue</button>
</form></div>`
}

func containsStr(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func removeStr(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
