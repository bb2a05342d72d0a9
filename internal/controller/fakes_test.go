package controller

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"stocksy/internal/client"
	"stocksy/internal/model"
)

// fakeAPI implements ProductAPI, ShoppingAPI and DashboardAPI with
// overridable function fields.
type fakeAPI struct {
	listProducts    func(ctx context.Context, q client.ProductsQuery) (*model.ProductList, error)
	createProduct   func(ctx context.Context, in client.CreateProductInput) (*model.ProductDTO, error)
	updateProduct   func(ctx context.Context, id uuid.UUID, in client.UpdateProductInput) (*model.ProductDTO, error)
	deleteProduct   func(ctx context.Context, id uuid.UUID) error
	listShopping    func(ctx context.Context) (*model.ShoppingList, error)
	updateItem      func(ctx context.Context, id uuid.UUID, quantity int) (*model.ShoppingListItemDTO, error)
	checkInItem     func(ctx context.Context, id uuid.UUID) error
	checkInAllItems func(ctx context.Context) error
}

func (f *fakeAPI) ListProducts(ctx context.Context, q client.ProductsQuery) (*model.ProductList, error) {
	return f.listProducts(ctx, q)
}

func (f *fakeAPI) CreateProduct(ctx context.Context, in client.CreateProductInput) (*model.ProductDTO, error) {
	return f.createProduct(ctx, in)
}

func (f *fakeAPI) UpdateProduct(ctx context.Context, id uuid.UUID, in client.UpdateProductInput) (*model.ProductDTO, error) {
	return f.updateProduct(ctx, id, in)
}

func (f *fakeAPI) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return f.deleteProduct(ctx, id)
}

func (f *fakeAPI) ListShoppingList(ctx context.Context) (*model.ShoppingList, error) {
	return f.listShopping(ctx)
}

func (f *fakeAPI) UpdateShoppingListItem(ctx context.Context, id uuid.UUID, quantity int) (*model.ShoppingListItemDTO, error) {
	return f.updateItem(ctx, id, quantity)
}

func (f *fakeAPI) CheckInItem(ctx context.Context, id uuid.UUID) error {
	return f.checkInItem(ctx, id)
}

func (f *fakeAPI) CheckInAllItems(ctx context.Context) error {
	return f.checkInAllItems(ctx)
}

// recordingNotifier captures surfaced messages.
type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (n *recordingNotifier) Success(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, message)
}

func (n *recordingNotifier) Error(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, message)
}

func (n *recordingNotifier) errorCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.errors)
}

func pageOf(products []model.ProductDTO, total, page, limit int) *model.ProductList {
	totalPages := (total + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}
	return &model.ProductList{
		Data: products,
		Meta: model.PaginationMeta{
			TotalItems:  total,
			TotalPages:  totalPages,
			CurrentPage: page,
			PerPage:     limit,
		},
	}
}
