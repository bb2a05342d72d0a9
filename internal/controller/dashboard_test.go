package controller

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocksy/internal/client"
	"stocksy/internal/model"
)

func dashboardAPI(items []model.ShoppingListItemDTO, totalProducts int) *fakeAPI {
	return &fakeAPI{
		listShopping: func(ctx context.Context) (*model.ShoppingList, error) {
			return &model.ShoppingList{Data: items}, nil
		},
		listProducts: func(ctx context.Context, q client.ProductsQuery) (*model.ProductList, error) {
			return pageOf(nil, totalProducts, q.Page, q.Limit), nil
		},
	}
}

func TestDashboardStartsLoading(t *testing.T) {
	a := NewDashboardAggregator(dashboardAPI(nil, 0), func() {})
	assert.Equal(t, StateLoading, a.State().State)
}

func TestDashboardFirstRunWinsOverListContent(t *testing.T) {
	// Zero products means first-run even if a stale shopping list row
	// somehow comes back.
	items := []model.ShoppingListItemDTO{listItem("Ghost", 2)}
	a := NewDashboardAggregator(dashboardAPI(items, 0), func() {})

	require.NoError(t, a.Load(context.Background()))
	assert.Equal(t, StateFirstRun, a.State().State)
}

func TestDashboardAllStocked(t *testing.T) {
	a := NewDashboardAggregator(dashboardAPI(nil, 12), func() {})

	require.NoError(t, a.Load(context.Background()))
	st := a.State()
	assert.Equal(t, StateAllStocked, st.State)
	assert.Equal(t, 12, st.TotalProducts)
	assert.Zero(t, st.MoreCount())
}

func TestDashboardCapsAndSortsLowStock(t *testing.T) {
	items := make([]model.ShoppingListItemDTO, 9)
	for i := range items {
		items[i] = listItem("Item", i+1) // urgency 1..9
	}
	a := NewDashboardAggregator(dashboardAPI(items, 20), func() {})

	require.NoError(t, a.Load(context.Background()))
	st := a.State()
	assert.Equal(t, StateLowStock, st.State)
	require.Len(t, st.Items, DisplayLimit)
	assert.Equal(t, 9, st.Items[0].QuantityToPurchase, "most urgent first")
	assert.Equal(t, 2, st.Items[DisplayLimit-1].QuantityToPurchase)
	assert.Equal(t, 9, st.TotalLowStock)
	assert.Equal(t, 1, st.MoreCount())
}

func TestDashboardErrorState(t *testing.T) {
	fail := &client.RequestError{Status: 500, Message: "upstream down"}
	api := dashboardAPI(nil, 5)
	api.listShopping = func(ctx context.Context) (*model.ShoppingList, error) {
		return nil, fail
	}
	a := NewDashboardAggregator(api, func() {})

	require.Error(t, a.Load(context.Background()))
	st := a.State()
	assert.Equal(t, StateError, st.State)
	assert.ErrorIs(t, st.Err, fail)
}

func TestDashboardUnauthorizedRedirects(t *testing.T) {
	api := dashboardAPI(nil, 5)
	api.listProducts = func(ctx context.Context, q client.ProductsQuery) (*model.ProductList, error) {
		return nil, &client.UnauthorizedError{Message: "session expired"}
	}
	redirected := false
	a := NewDashboardAggregator(api, func() { redirected = true })

	require.Error(t, a.Load(context.Background()))
	assert.True(t, redirected)
	// No error view is rendered; the redirect collaborator owns the
	// transition.
	assert.Equal(t, StateLoading, a.State().State)
}

func TestDashboardRedirectsWhenUnauthorizedArrivesSecond(t *testing.T) {
	// The shopping list fails first with a plain server error; the
	// count fetch 401s afterwards. The 401 still wins and redirects
	// instead of rendering the error view.
	listFailed := make(chan struct{})
	api := &fakeAPI{
		listShopping: func(ctx context.Context) (*model.ShoppingList, error) {
			defer close(listFailed)
			return nil, &client.RequestError{Status: 500, Message: "upstream down"}
		},
		listProducts: func(ctx context.Context, q client.ProductsQuery) (*model.ProductList, error) {
			<-listFailed
			return nil, &client.UnauthorizedError{Message: "session expired"}
		},
	}
	redirected := false
	a := NewDashboardAggregator(api, func() { redirected = true })

	err := a.Load(context.Background())

	require.Error(t, err)
	var unauthorized *client.UnauthorizedError
	assert.ErrorAs(t, err, &unauthorized)
	assert.True(t, redirected)
	assert.Equal(t, StateLoading, a.State().State)
}

func TestDashboardCloseDropsSettle(t *testing.T) {
	a := NewDashboardAggregator(dashboardAPI(nil, 12), func() {})
	a.Close()

	require.NoError(t, a.Load(context.Background()))
	assert.Equal(t, StateLoading, a.State().State)
}
