package store

import "context"

// Compare is the product-comparison page object, a plain collection page.
type Compare struct {
	collection *collection
}

// Open navigates to the comparison page.
func (c *Compare) Open(ctx context.Context) (*Compare, error) {
	if err := c.collection.Open(ctx); err != nil {
		return c, err
	}
	return c, nil
}

// State observes the comparison page's collection state once.
func (c *Compare) State(ctx context.Context) (CollectionState, error) {
	return c.collection.State(ctx)
}

// Names returns cleaned product names of all columns.
func (c *Compare) Names(ctx context.Context) ([]string, error) {
	return c.collection.Names(ctx)
}

// VerifyContains compares expected product names against comparison columns.
func (c *Compare) VerifyContains(ctx context.Context, expected []string) (ItemCheck, error) {
	return c.collection.Verify(ctx, expected)
}

// Clear removes every column, reporting the number of removals.
func (c *Compare) Clear(ctx context.Context) (int, error) {
	return c.collection.Clear(ctx)
}
