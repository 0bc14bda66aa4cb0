package store

import "context"

// Wishlist is the wish list page object, a plain collection page.
type Wishlist struct {
	collection *collection
}

// Open navigates to the wishlist page.
func (w *Wishlist) Open(ctx context.Context) (*Wishlist, error) {
	if err := w.collection.Open(ctx); err != nil {
		return w, err
	}
	return w, nil
}

// State observes the wishlist's collection state once.
func (w *Wishlist) State(ctx context.Context) (CollectionState, error) {
	return w.collection.State(ctx)
}

// Names returns cleaned product names of all rows.
func (w *Wishlist) Names(ctx context.Context) ([]string, error) {
	return w.collection.Names(ctx)
}

// VerifyContains compares expected product names against wishlist rows.
func (w *Wishlist) VerifyContains(ctx context.Context, expected []string) (ItemCheck, error) {
	return w.collection.Verify(ctx, expected)
}

// Clear removes every row, reporting the number of removals.
func (w *Wishlist) Clear(ctx context.Context) (int, error) {
	return w.collection.Clear(ctx)
}
