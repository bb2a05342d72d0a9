package controller

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"stocksy/internal/client"
	"stocksy/internal/model"
)

// DisplayLimit caps how many low-stock items the dashboard shows; the
// remainder is summarized as an "N more" affordance.
const DisplayLimit = 8

// DashboardState is the single state the home view renders.
type DashboardState int

const (
	StateLoading DashboardState = iota
	StateError
	StateFirstRun   // the user has no products at all
	StateAllStocked // inventory exists, nothing is low
	StateLowStock
)

// Dashboard is an immutable snapshot of the aggregated view.
type Dashboard struct {
	State         DashboardState
	Err           error
	Items         []model.ShoppingListItemDTO // most urgent first, capped at DisplayLimit
	TotalLowStock int                         // true item count, for the "N more" affordance
	TotalProducts int
}

// MoreCount is how many low-stock items exist beyond the displayed
// ones.
func (d Dashboard) MoreCount() int {
	if d.TotalLowStock > len(d.Items) {
		return d.TotalLowStock - len(d.Items)
	}
	return 0
}

// DashboardAggregator is a read-only composition over the shopping
// list and the total inventory count. It owns no mutations; Load
// fetches both concurrently and resolves exactly one display state.
type DashboardAggregator struct {
	api      DashboardAPI
	redirect func() // invoked on 401 instead of rendering an error state
	log      *zap.Logger

	mu     sync.Mutex
	state  Dashboard
	closed bool
}

// DashboardOption configures the aggregator.
type DashboardOption func(*DashboardAggregator)

func WithDashboardLogger(log *zap.Logger) DashboardOption {
	return func(a *DashboardAggregator) { a.log = log }
}

// NewDashboardAggregator creates an aggregator in the loading state.
// redirect is the external redirect-to-login collaborator.
func NewDashboardAggregator(api DashboardAPI, redirect func(), opts ...DashboardOption) *DashboardAggregator {
	a := &DashboardAggregator{
		api:      api,
		redirect: redirect,
		log:      zap.NewNop(),
		state:    Dashboard{State: StateLoading},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Close marks the owning view as torn down.
func (a *DashboardAggregator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
}

// State returns the current snapshot.
func (a *DashboardAggregator) State() Dashboard {
	a.mu.Lock()
	defer a.mu.Unlock()
	st := a.state
	st.Items = append([]model.ShoppingListItemDTO(nil), st.Items...)
	return st
}

// Load fetches the shopping list and the total inventory count
// concurrently and settles the display state. The count rides the
// metadata of a one-row product query, so no dedicated endpoint is
// needed.
func (a *DashboardAggregator) Load(ctx context.Context) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.state = Dashboard{State: StateLoading}
	a.mu.Unlock()

	var (
		list     *model.ShoppingList
		total    int
		listErr  error
		countErr error
	)

	// Both goroutines run to completion so a 401 on either leg is
	// observed even when the other leg fails first.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, listErr = a.api.ListShoppingList(gctx)
		return nil
	})
	g.Go(func() error {
		page, err := a.api.ListProducts(gctx, client.ProductsQuery{Page: 1, Limit: 1})
		if err != nil {
			countErr = err
			return nil
		}
		total = page.Meta.TotalItems
		return nil
	})
	g.Wait()

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}

	if listErr != nil || countErr != nil {
		var unauthorized *client.UnauthorizedError
		if errors.As(listErr, &unauthorized) || errors.As(countErr, &unauthorized) {
			a.redirect()
			return unauthorized
		}
		err := listErr
		if err == nil {
			err = countErr
		}
		a.log.Warn("dashboard load failed", zap.Error(err))
		a.state = Dashboard{State: StateError, Err: err}
		return err
	}

	a.state = resolve(list.Data, total)
	return nil
}

// resolve applies the display precedence: first-run when the user has
// no inventory at all, regardless of shopping list content; then
// all-stocked; then the capped low-stock list, most urgent first.
func resolve(items []model.ShoppingListItemDTO, totalProducts int) Dashboard {
	if totalProducts == 0 {
		return Dashboard{State: StateFirstRun, TotalProducts: 0, TotalLowStock: len(items)}
	}
	if len(items) == 0 {
		return Dashboard{State: StateAllStocked, TotalProducts: totalProducts}
	}

	sorted := append([]model.ShoppingListItemDTO(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].QuantityToPurchase > sorted[j].QuantityToPurchase
	})
	capped := sorted
	if len(capped) > DisplayLimit {
		capped = capped[:DisplayLimit]
	}

	return Dashboard{
		State:         StateLowStock,
		Items:         capped,
		TotalLowStock: len(items),
		TotalProducts: totalProducts,
	}
}
