package controller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocksy/internal/client"
	"stocksy/internal/model"
)

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func seededProductController(t *testing.T, api *fakeAPI, products ...model.ProductDTO) (*ProductListController, *recordingNotifier) {
	t.Helper()
	notify := &recordingNotifier{}
	if api.listProducts == nil {
		api.listProducts = func(ctx context.Context, q client.ProductsQuery) (*model.ProductList, error) {
			return pageOf(products, len(products), q.Page, q.Limit), nil
		}
	}
	c := NewProductListController(api, WithProductNotifier(notify))
	require.NoError(t, c.Refetch(context.Background(), false))
	return c, notify
}

func TestRefetchPopulatesState(t *testing.T) {
	p := model.ProductDTO{ID: uuid.New(), Name: "Rice", Quantity: 3, MinimumThreshold: 5}
	c, _ := seededProductController(t, &fakeAPI{}, p)

	products := c.Products()
	require.Len(t, products, 1)
	assert.Equal(t, "Rice", products[0].Name)
	assert.Equal(t, UIStateIdle, products[0].UIState)
	assert.False(t, c.Loading())
	require.NotNil(t, c.Meta())
	assert.Equal(t, 1, c.Meta().TotalItems)
}

func TestRefetchInFlightIsNotDuplicated(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	calls := 0

	api := &fakeAPI{
		listProducts: func(ctx context.Context, q client.ProductsQuery) (*model.ProductList, error) {
			mu.Lock()
			calls++
			first := calls == 1
			mu.Unlock()
			if first {
				close(started)
				<-release
			}
			return pageOf(nil, 0, q.Page, q.Limit), nil
		},
	}
	c := NewProductListController(api)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.Refetch(context.Background(), false)
	}()
	<-started

	// Second invocation while one is outstanding is a no-op.
	require.NoError(t, c.Refetch(context.Background(), false))
	mu.Lock()
	assert.Equal(t, 1, calls)
	mu.Unlock()

	close(release)
	wg.Wait()
}

func TestUpdateProductOptimisticSuccess(t *testing.T) {
	id := uuid.New()
	p := model.ProductDTO{ID: id, Name: "Milk", Quantity: 2, MinimumThreshold: 4}
	server := model.ProductDTO{ID: id, Name: "Milk", Quantity: 9, MinimumThreshold: 4}

	api := &fakeAPI{
		updateProduct: func(ctx context.Context, gotID uuid.UUID, in client.UpdateProductInput) (*model.ProductDTO, error) {
			assert.Equal(t, id, gotID)
			return &server, nil
		},
	}
	c, _ := seededProductController(t, api, p)

	require.NoError(t, c.UpdateProduct(context.Background(), id, client.UpdateProductInput{Quantity: intPtr(9)}))

	products := c.Products()
	require.Len(t, products, 1)
	assert.Equal(t, 9, products[0].Quantity)
	assert.Equal(t, UIStateIdle, products[0].UIState)
}

func TestUpdateProductFailureRestoresBaseline(t *testing.T) {
	id := uuid.New()
	p := model.ProductDTO{ID: id, Name: "Milk", Quantity: 2, MinimumThreshold: 4}

	api := &fakeAPI{
		updateProduct: func(ctx context.Context, _ uuid.UUID, in client.UpdateProductInput) (*model.ProductDTO, error) {
			return nil, &client.DuplicateNameError{Message: "name taken"}
		},
	}
	c, notify := seededProductController(t, api, p)

	err := c.UpdateProduct(context.Background(), id, client.UpdateProductInput{Name: strPtr("Oat Milk"), Quantity: intPtr(7)})
	require.Error(t, err)

	// The rejected patch must not survive: pre-mutation values come
	// back, tagged as error until the next attempt.
	products := c.Products()
	require.Len(t, products, 1)
	assert.Equal(t, "Milk", products[0].Name)
	assert.Equal(t, 2, products[0].Quantity)
	assert.Equal(t, UIStateError, products[0].UIState)
	assert.Equal(t, 1, notify.errorCount())
}

func TestDeleteLastItemOnLaterPageStepsBack(t *testing.T) {
	id := uuid.New()
	p := model.ProductDTO{ID: id, Name: "Salt", Quantity: 1, MinimumThreshold: 1}

	var fetchedPages []int
	var mu sync.Mutex
	api := &fakeAPI{
		listProducts: func(ctx context.Context, q client.ProductsQuery) (*model.ProductList, error) {
			mu.Lock()
			fetchedPages = append(fetchedPages, q.Page)
			mu.Unlock()
			if q.Page >= 3 {
				return pageOf([]model.ProductDTO{p}, 41, q.Page, q.Limit), nil
			}
			return pageOf([]model.ProductDTO{{ID: uuid.New(), Name: "Other"}}, 40, q.Page, q.Limit), nil
		},
		deleteProduct: func(ctx context.Context, _ uuid.UUID) error { return nil },
	}
	c := NewProductListController(api)
	require.NoError(t, c.SetPage(context.Background(), 3))

	require.NoError(t, c.DeleteProduct(context.Background(), id))

	assert.Equal(t, 2, c.Query().Page)
	mu.Lock()
	assert.Equal(t, []int{3, 2}, fetchedPages)
	mu.Unlock()
}

func TestDeleteFailureRevertsToErrorState(t *testing.T) {
	id := uuid.New()
	p := model.ProductDTO{ID: id, Name: "Salt", Quantity: 1, MinimumThreshold: 1}

	api := &fakeAPI{
		deleteProduct: func(ctx context.Context, _ uuid.UUID) error {
			return &client.NotFoundError{Message: "product not found"}
		},
	}
	c, notify := seededProductController(t, api, p)

	require.Error(t, c.DeleteProduct(context.Background(), id))

	products := c.Products()
	require.Len(t, products, 1)
	assert.Equal(t, UIStateError, products[0].UIState)
	assert.Equal(t, 1, notify.errorCount())
}

func TestAddProductIsNeverOptimistic(t *testing.T) {
	api := &fakeAPI{
		createProduct: func(ctx context.Context, in client.CreateProductInput) (*model.ProductDTO, error) {
			return nil, &client.DuplicateNameError{Message: "name taken"}
		},
	}
	c, notify := seededProductController(t, api)

	err := c.AddProduct(context.Background(), client.CreateProductInput{Name: "Eggs", Quantity: 0, MinimumThreshold: 6})
	require.Error(t, err)
	assert.Empty(t, c.Products(), "failed create must not touch the collection")
	assert.Equal(t, 1, notify.errorCount())
}

func TestAddProductPrependsAndQuietlyReconciles(t *testing.T) {
	created := model.ProductDTO{ID: uuid.New(), Name: "Eggs", Quantity: 0, MinimumThreshold: 6}
	existing := model.ProductDTO{ID: uuid.New(), Name: "Rice", Quantity: 3, MinimumThreshold: 5}

	loadingDuringRefetch := false
	var c *ProductListController
	api := &fakeAPI{
		createProduct: func(ctx context.Context, in client.CreateProductInput) (*model.ProductDTO, error) {
			return &created, nil
		},
	}
	calls := 0
	api.listProducts = func(ctx context.Context, q client.ProductsQuery) (*model.ProductList, error) {
		calls++
		if calls > 1 {
			// The post-create reconciliation must not toggle loading.
			loadingDuringRefetch = c.Loading()
			return pageOf([]model.ProductDTO{created, existing}, 2, q.Page, q.Limit), nil
		}
		return pageOf([]model.ProductDTO{existing}, 1, q.Page, q.Limit), nil
	}

	c = NewProductListController(api)
	require.NoError(t, c.Refetch(context.Background(), false))

	require.NoError(t, c.AddProduct(context.Background(), client.CreateProductInput{Name: "Eggs", MinimumThreshold: 6}))
	assert.False(t, loadingDuringRefetch)

	products := c.Products()
	require.Len(t, products, 2)
	assert.Equal(t, "Eggs", products[0].Name)
}

func TestChangingSortResetsPageAndDiscardsStaleResponse(t *testing.T) {
	staleStarted := make(chan struct{})
	release := make(chan struct{})

	stale := []model.ProductDTO{{ID: uuid.New(), Name: "StalePageThree"}}
	fresh := []model.ProductDTO{{ID: uuid.New(), Name: "FreshSorted"}}

	var mu sync.Mutex
	var sortedQueries []client.ProductsQuery

	api := &fakeAPI{
		listProducts: func(ctx context.Context, q client.ProductsQuery) (*model.ProductList, error) {
			if q.Page == 3 {
				close(staleStarted)
				<-release
				return pageOf(stale, 60, q.Page, q.Limit), nil
			}
			mu.Lock()
			sortedQueries = append(sortedQueries, q)
			mu.Unlock()
			return pageOf(fresh, 60, q.Page, q.Limit), nil
		},
	}
	c := NewProductListController(api)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.SetPage(context.Background(), 3)
	}()
	<-staleStarted

	// Changing sort while page 3 is in flight resets the page to 1 and
	// issues exactly one fetch for the new query.
	require.NoError(t, c.SetSort(context.Background(), "quantity", "desc"))

	mu.Lock()
	require.Len(t, sortedQueries, 1)
	assert.Equal(t, 1, sortedQueries[0].Page)
	assert.Equal(t, "quantity", sortedQueries[0].Sort)
	assert.Equal(t, "desc", sortedQueries[0].Order)
	mu.Unlock()

	// Let the superseded page-3 response arrive late; it must be
	// discarded.
	close(release)
	wg.Wait()

	products := c.Products()
	require.Len(t, products, 1)
	assert.Equal(t, "FreshSorted", products[0].Name)
	assert.Equal(t, 1, c.Query().Page)
}

func TestRefetchStaysDedupedWhileForcedFetchOutstanding(t *testing.T) {
	started1 := make(chan struct{})
	release1 := make(chan struct{})
	started2 := make(chan struct{})
	release2 := make(chan struct{})

	var mu sync.Mutex
	calls := 0
	api := &fakeAPI{
		listProducts: func(ctx context.Context, q client.ProductsQuery) (*model.ProductList, error) {
			mu.Lock()
			calls++
			n := calls
			mu.Unlock()
			switch n {
			case 1:
				close(started1)
				<-release1
			case 2:
				close(started2)
				<-release2
			}
			return pageOf(nil, 0, q.Page, q.Limit), nil
		},
	}
	c := NewProductListController(api)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		c.Refetch(context.Background(), false)
	}()
	<-started1
	go func() {
		defer wg.Done()
		c.SetPage(context.Background(), 2)
	}()
	<-started2

	// The plain refetch settles first; the forced page-2 fetch is
	// still outstanding, so a new refetch must still be swallowed.
	close(release1)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 2
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, c.Refetch(context.Background(), false))
	mu.Lock()
	assert.Equal(t, 2, calls)
	mu.Unlock()

	close(release2)
	wg.Wait()
}

func TestFetchFailureRendersErrorStateWithoutToast(t *testing.T) {
	fail := &client.RequestError{Status: 500, Message: "upstream down"}
	api := &fakeAPI{
		listProducts: func(ctx context.Context, q client.ProductsQuery) (*model.ProductList, error) {
			return nil, fail
		},
	}
	notify := &recordingNotifier{}
	c := NewProductListController(api, WithProductNotifier(notify))

	require.Error(t, c.Refetch(context.Background(), false))

	assert.ErrorIs(t, c.Err(), fail)
	assert.False(t, c.Loading())
	assert.Zero(t, notify.errorCount(), "read failures are controller error state, not toasts")
}

func TestCloseSuppressesSettles(t *testing.T) {
	id := uuid.New()
	p := model.ProductDTO{ID: id, Name: "Milk", Quantity: 2, MinimumThreshold: 4}

	api := &fakeAPI{
		updateProduct: func(ctx context.Context, _ uuid.UUID, in client.UpdateProductInput) (*model.ProductDTO, error) {
			return nil, errors.New("network down")
		},
	}
	c, notify := seededProductController(t, api, p)

	started := make(chan struct{})
	release := make(chan struct{})
	api.updateProduct = func(ctx context.Context, _ uuid.UUID, in client.UpdateProductInput) (*model.ProductDTO, error) {
		close(started)
		<-release
		return nil, errors.New("network down")
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.UpdateProduct(context.Background(), id, client.UpdateProductInput{Quantity: intPtr(5)})
	}()
	<-started
	c.Close()
	close(release)
	wg.Wait()

	// The settle after Close must not flip the entity to error state.
	products := c.Products()
	require.Len(t, products, 1)
	assert.Equal(t, UIStateUpdating, products[0].UIState)
	assert.Zero(t, notify.errorCount())
}
