package controller

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stocksy/internal/client"
	"stocksy/internal/model"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	defaultSort  = "name"
	defaultOrder = "asc"
)

// ProductListController is the in-memory source of truth for one page
// of the product collection. Mutations are applied optimistically,
// scoped to the entity by identity, and rolled back to the
// pre-mutation snapshot on failure. Every fetch is tagged with the
// generation of the query it was issued for; responses whose
// generation no longer matches are discarded, so a slow fetch for a
// stale query can never clobber a newer one.
type ProductListController struct {
	api    ProductAPI
	notify Notifier
	log    *zap.Logger

	mu       sync.Mutex
	products []ProductView
	meta     *model.PaginationMeta
	loading  bool
	err      error
	query    client.ProductsQuery
	gen      uint64 // bumped on every query change
	fetching int    // in-flight fetch count, dedupes non-forced refetches
	closed   bool
}

// ProductListOption configures the controller.
type ProductListOption func(*ProductListController)

func WithProductNotifier(n Notifier) ProductListOption {
	return func(c *ProductListController) { c.notify = n }
}

func WithProductLogger(log *zap.Logger) ProductListOption {
	return func(c *ProductListController) { c.log = log }
}

// NewProductListController creates a controller with the default
// query (page 1, limit 20, name ascending). Nothing is fetched until
// Refetch or a query setter is called.
func NewProductListController(api ProductAPI, opts ...ProductListOption) *ProductListController {
	c := &ProductListController{
		api:    api,
		notify: nopNotifier{},
		log:    zap.NewNop(),
		query: client.ProductsQuery{
			Page:  defaultPage,
			Limit: defaultLimit,
			Sort:  defaultSort,
			Order: defaultOrder,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close marks the owning view as torn down; settle paths observed
// after this point drop their state writes. In-flight requests are
// not cancelled.
func (c *ProductListController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// Products returns a snapshot of the current page.
func (c *ProductListController) Products() []ProductView {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ProductView, len(c.products))
	copy(out, c.products)
	return out
}

// Meta returns the pagination metadata of the last successful fetch.
func (c *ProductListController) Meta() *model.PaginationMeta {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.meta == nil {
		return nil
	}
	meta := *c.meta
	return &meta
}

// Query returns the current pagination/sort cursor.
func (c *ProductListController) Query() client.ProductsQuery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// Loading reports whether a non-quiet fetch is outstanding.
func (c *ProductListController) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Err returns the fetch error state, rendered as a dedicated error
// view with a retry affordance.
func (c *ProductListController) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// SetPage moves the cursor and fetches the new page.
func (c *ProductListController) SetPage(ctx context.Context, page int) error {
	c.mu.Lock()
	c.query.Page = page
	c.gen++
	c.mu.Unlock()
	return c.fetch(ctx, false, true)
}

// SetSort changes the sort field/order, resets the page to 1, and
// fetches.
func (c *ProductListController) SetSort(ctx context.Context, sort, order string) error {
	c.mu.Lock()
	c.query.Sort = sort
	c.query.Order = order
	c.query.Page = 1
	c.gen++
	c.mu.Unlock()
	return c.fetch(ctx, false, true)
}

// SetLimit changes the page size, resets the page to 1, and fetches.
func (c *ProductListController) SetLimit(ctx context.Context, limit int) error {
	c.mu.Lock()
	c.query.Limit = limit
	c.query.Page = 1
	c.gen++
	c.mu.Unlock()
	return c.fetch(ctx, false, true)
}

// Refetch reloads the current query. A refetch already in flight is
// not duplicated; the call is a no-op. quiet suppresses the loading
// flag for background reconciliation so the table does not flash a
// skeleton.
func (c *ProductListController) Refetch(ctx context.Context, quiet bool) error {
	return c.fetch(ctx, quiet, false)
}

// fetch issues the list request for the current query. force bypasses
// the dedupe gate: a changed query supersedes whatever is in flight,
// and the generation guard discards the superseded response on
// arrival.
func (c *ProductListController) fetch(ctx context.Context, quiet, force bool) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	if c.fetching > 0 && !force {
		c.mu.Unlock()
		return nil
	}
	c.fetching++
	if !quiet {
		c.loading = true
		c.err = nil
	}
	gen := c.gen
	query := c.query
	c.mu.Unlock()

	list, err := c.api.ListProducts(ctx, query)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetching--
	if c.closed {
		return nil
	}
	if gen != c.gen {
		// Response to a superseded query; the newer fetch owns the state.
		c.log.Debug("discarding stale fetch", zap.Uint64("gen", gen), zap.Uint64("current", c.gen))
		return nil
	}

	if err != nil {
		// Read failures render as the controller's error view with a
		// retry affordance, not as a mutation toast.
		c.loading = false
		c.err = err
		c.log.Warn("fetch products failed", zap.Error(err))
		return err
	}

	views := make([]ProductView, len(list.Data))
	for i, p := range list.Data {
		views[i] = ProductView{ProductDTO: p, UIState: UIStateIdle}
	}
	c.products = views
	meta := list.Meta
	c.meta = &meta
	c.loading = false
	c.err = nil
	return nil
}

// AddProduct creates a product. No optimistic entry is shown before
// the server confirms: the server assigns the id and is the arbiter
// of name uniqueness. On success the new entity is prepended and a
// quiet refetch reconciles the pagination metadata.
func (c *ProductListController) AddProduct(ctx context.Context, in client.CreateProductInput) error {
	created, err := c.api.CreateProduct(ctx, in)
	if err != nil {
		c.notify.Error(err.Error())
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.products = append([]ProductView{{ProductDTO: *created, UIState: UIStateIdle}}, c.products...)
	c.mu.Unlock()

	c.notify.Success("Product added successfully")
	return c.fetch(ctx, true, false)
}

// UpdateProduct applies a partial update optimistically. The baseline
// restored on failure is the entity as currently displayed, so when
// edits race the last invocation wins; concurrent patches are never
// merged. Failure restores the pre-mutation values with UIStateError,
// which persists until the next mutation attempt on that entity.
func (c *ProductListController) UpdateProduct(ctx context.Context, id uuid.UUID, patch client.UpdateProductInput) error {
	c.mu.Lock()
	idx := c.indexOf(id)
	if idx < 0 {
		c.mu.Unlock()
		c.notify.Error("Product not found")
		return &client.NotFoundError{Message: "product not found in view"}
	}
	baseline := c.products[idx].ProductDTO

	optimistic := baseline
	if patch.Name != nil {
		optimistic.Name = *patch.Name
	}
	if patch.Quantity != nil {
		optimistic.Quantity = *patch.Quantity
	}
	if patch.MinimumThreshold != nil {
		optimistic.MinimumThreshold = *patch.MinimumThreshold
	}
	c.products[idx] = ProductView{ProductDTO: optimistic, UIState: UIStateUpdating}
	c.mu.Unlock()

	updated, err := c.api.UpdateProduct(ctx, id, patch)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	idx = c.indexOf(id)
	if idx < 0 {
		return err
	}

	if err != nil {
		c.products[idx] = ProductView{ProductDTO: baseline, UIState: UIStateError}
		c.notify.Error(err.Error())
		return err
	}

	c.products[idx] = ProductView{ProductDTO: *updated, UIState: UIStateIdle}
	c.notify.Success("Product updated")
	return nil
}

// DeleteProduct removes a product with optimistic feedback. When the
// last row of a page beyond the first disappears, the cursor steps
// back one page and refetches; otherwise a quiet refetch reconciles
// the counts.
func (c *ProductListController) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	c.mu.Lock()
	idx := c.indexOf(id)
	if idx < 0 {
		c.mu.Unlock()
		c.notify.Error("Product not found")
		return &client.NotFoundError{Message: "product not found in view"}
	}
	baseline := c.products[idx].ProductDTO
	c.products[idx] = ProductView{ProductDTO: baseline, UIState: UIStateDeleting}
	c.mu.Unlock()

	err := c.api.DeleteProduct(ctx, id)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}

	if err != nil {
		if idx := c.indexOf(id); idx >= 0 {
			c.products[idx] = ProductView{ProductDTO: baseline, UIState: UIStateError}
		}
		c.mu.Unlock()
		c.notify.Error(err.Error())
		return err
	}

	wasLastOnPage := len(c.products) == 1 && c.meta != nil && c.meta.CurrentPage > 1
	if idx := c.indexOf(id); idx >= 0 {
		c.products = append(c.products[:idx], c.products[idx+1:]...)
	}
	if wasLastOnPage {
		c.query.Page--
		c.gen++
	}
	c.mu.Unlock()

	c.notify.Success("Product deleted")
	if wasLastOnPage {
		return c.fetch(ctx, false, true)
	}
	return c.fetch(ctx, true, false)
}

// indexOf must be called with mu held.
func (c *ProductListController) indexOf(id uuid.UUID) int {
	for i := range c.products {
		if c.products[i].ID == id {
			return i
		}
	}
	return -1
}
