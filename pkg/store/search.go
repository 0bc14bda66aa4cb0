package store

import (
	"context"
	"fmt"
	"net/url"

	"github.com/storecheck/storecheck/pkg/extract"
	"github.com/storecheck/storecheck/pkg/locator"
	"github.com/storecheck/storecheck/pkg/page"
)

// search page selectors
var (
	searchMarker     = locator.New("#search-page", "#content")
	searchInputSpec  = locator.New("input[name=search]", "#search input")
	searchSubmitSpec = locator.New("#search-button", "button.search", "button:has-text('Search')")
	resultCardSpec   = locator.New("#search-results .product-card", ".product-card", ".product-thumb")
	resultNameSpec   = locator.New(".product-name", "h4 a")
	noResultsSpec    = locator.New("#no-results", "p:has-text('no product that matches')")
)

// Search is the product search page object.
type Search struct {
	base *page.Base
}

// For runs a search by navigating to the search route directly, the stable
// entry point for query-string-routed storefronts.
func (s *Search) For(ctx context.Context, query string) (*Search, error) {
	path := "search?q=" + url.QueryEscape(query)
	if err := s.base.Navigate(ctx, path, page.MarkerAttached(searchMarker, s.base.Policy())); err != nil {
		return s, err
	}
	return s, nil
}

// ForViaForm runs a search through the header form, exercising the UI path.
func (s *Search) ForViaForm(ctx context.Context, query string) (*Search, error) {
	if err := s.base.Fill(ctx, searchInputSpec, query); err != nil {
		return s, fmt.Errorf("fill search input: %w", err)
	}
	if err := s.base.Click(ctx, searchSubmitSpec); err != nil {
		return s, fmt.Errorf("submit search: %w", err)
	}
	if err := s.base.WaitFor(ctx, searchMarker, page.StateAttached, 0); err != nil {
		return s, fmt.Errorf("search results: %w", err)
	}
	return s, nil
}

// ResultNames returns the cleaned names of all result cards. An explicit
// no-results marker yields an empty slice; a page with neither results nor
// the marker is ambiguous and returns an error rather than a silent empty.
func (s *Search) ResultNames(ctx context.Context) ([]string, error) {
	cards, _, err := locator.MatchAll(ctx, s.base.Page(), resultCardSpec)
	if err != nil {
		return nil, fmt.Errorf("query result cards: %w", err)
	}
	if len(cards) == 0 {
		if s.base.VisibleOr(ctx, noResultsSpec, false) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("search results ambiguous: no cards and no empty marker")
	}

	names := make([]string, 0, len(cards))
	for i, card := range cards {
		name, err := scopedText(ctx, card, resultNameSpec)
		if err != nil {
			return nil, fmt.Errorf("read result %d: %w", i, err)
		}
		names = append(names, extract.CleanText(name))
	}
	return names, nil
}

// VerifyContains compares expected product names against the result cards.
func (s *Search) VerifyContains(ctx context.Context, expected []string) (ItemCheck, error) {
	names, err := s.ResultNames(ctx)
	if err != nil {
		return ItemCheck{}, err
	}
	return checkItems(expected, names), nil
}
