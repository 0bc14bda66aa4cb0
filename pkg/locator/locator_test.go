package locator

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storecheck/storecheck/pkg/engine/enginetest"
)

// fast policy for tests, real waits stay in e2e
var testPolicy = Policy{Timeout: 200 * time.Millisecond, Interval: 10 * time.Millisecond}

func TestResolve_StrategyPriority(t *testing.T) {
	// for every position N, a page containing only the Nth strategy's target
	// resolves with strategy index N
	selectors := []string{"#add-to-cart", "button.cart", "button:has-text('Add to Cart')"}

	for n := range selectors {
		t.Run(fmt.Sprintf("only_strategy_%d_present", n), func(t *testing.T) {
			page := enginetest.NewPage()
			page.Add(selectors[n], enginetest.NewElement())

			res, err := Resolve(context.Background(), page, New(selectors...), testPolicy)
			require.NoError(t, err)
			assert.Equal(t, n, res.StrategyIndex)
			assert.Equal(t, selectors[n], res.Strategy.Selector)
		})
	}
}

func TestResolve_FirstListedWins(t *testing.T) {
	// both strategies match, declaration order breaks the tie
	page := enginetest.NewPage()
	page.Add("#specific", enginetest.NewElement())
	page.Add(".generic", enginetest.NewElement())

	res, err := Resolve(context.Background(), page, New("#specific", ".generic"), testPolicy)
	require.NoError(t, err)
	assert.Equal(t, 0, res.StrategyIndex)
}

func TestResolve_SkipsNonActionable(t *testing.T) {
	page := enginetest.NewPage()
	hidden := enginetest.NewElement()
	hidden.IsVisible = false
	page.Add("#primary", hidden)
	page.Add("#fallback", enginetest.NewElement())

	res, err := Resolve(context.Background(), page, New("#primary", "#fallback"), testPolicy)
	require.NoError(t, err)
	assert.Equal(t, 1, res.StrategyIndex, "hidden primary should lose to actionable fallback")
}

func TestResolve_PicksActionableAmongMatches(t *testing.T) {
	page := enginetest.NewPage()
	disabled := enginetest.NewElement()
	disabled.IsEnabled = false
	ok := enginetest.NewElement()
	page.Add(".row button", disabled, ok)

	res, err := Resolve(context.Background(), page, New(".row button"), testPolicy)
	require.NoError(t, err)
	assert.Same(t, ok, res.Handle)
}

func TestResolve_WaitsForAppearance(t *testing.T) {
	page := enginetest.NewPage()
	go func() {
		time.Sleep(50 * time.Millisecond)
		page.Add("#late", enginetest.NewElement())
	}()

	res, err := Resolve(context.Background(), page, New("#late"), testPolicy)
	require.NoError(t, err)
	assert.Equal(t, 0, res.StrategyIndex)
}

func TestResolve_Timeout(t *testing.T) {
	page := enginetest.NewPage()
	hidden := enginetest.NewElement()
	hidden.IsVisible = false
	page.Add("#there-but-hidden", hidden)

	_, err := Resolve(context.Background(), page, New("#there-but-hidden", "#absent"), testPolicy)
	require.Error(t, err)

	var te *TimeoutError
	require.ErrorAs(t, err, &te)
	require.Len(t, te.Attempts, 2)
	assert.Equal(t, "not visible", te.Attempts[0].Reason)
	assert.Equal(t, "no match", te.Attempts[1].Reason)
	assert.Contains(t, err.Error(), "not visible")
	assert.Contains(t, err.Error(), "#absent")
}

func TestResolve_EmptySpec(t *testing.T) {
	_, err := Resolve(context.Background(), enginetest.NewPage(), Spec{}, testPolicy)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty locator spec")
}

func TestResolve_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Resolve(ctx, enginetest.NewPage(), New("#never"), Policy{Timeout: time.Minute, Interval: 10 * time.Millisecond})
	require.ErrorIs(t, err, context.Canceled)
}

func TestResolve_Scoped(t *testing.T) {
	row := enginetest.NewElement().WithChild("button.remove", enginetest.NewElement())
	page := enginetest.NewPage()
	page.Add(".cart-row", row)

	// resolve the row first, then search within it
	rowRes, err := Resolve(context.Background(), page, New(".cart-row"), testPolicy)
	require.NoError(t, err)

	btn, err := Resolve(context.Background(), rowRes.Handle, New("button.remove"), testPolicy)
	require.NoError(t, err)
	assert.NotNil(t, btn.Handle)
}

func TestMatchAll(t *testing.T) {
	page := enginetest.NewPage()
	page.Add(".product-card", enginetest.NewElement(), enginetest.NewElement(), enginetest.NewElement())

	handles, idx, err := MatchAll(context.Background(), page, New("#grid .item", ".product-card"))
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Len(t, handles, 3)
}

func TestMatchAll_NoMatchIsNotAnError(t *testing.T) {
	handles, idx, err := MatchAll(context.Background(), enginetest.NewPage(), New(".cart-row"))
	require.NoError(t, err)
	assert.Equal(t, -1, idx)
	assert.Empty(t, handles)
}

func TestSpec_String(t *testing.T) {
	spec := NewStrategies(
		Strategy{Name: "id", Selector: "#login"},
		Strategy{Selector: "form [type=submit]"},
	)
	assert.Equal(t, "id | form [type=submit]", spec.String())
}
