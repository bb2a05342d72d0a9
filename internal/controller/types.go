// Package controller holds the view-session state machines that sit
// between the presentation layer and the API client: a paginated
// product collection, the shopping list, and the home dashboard. Each
// controller is constructed per view session, applies mutations
// optimistically, and rolls back to its last settled snapshot when a
// call fails.
package controller

import (
	"context"

	"github.com/google/uuid"

	"stocksy/internal/client"
	"stocksy/internal/model"
)

// UIState tags a product row for optimistic rendering. It never
// leaves the controller and is reconciled on every settle.
type UIState string

const (
	UIStateIdle     UIState = "idle"
	UIStateUpdating UIState = "updating"
	UIStateDeleting UIState = "deleting"
	UIStateError    UIState = "error"
)

// ProductView wraps a product with its transient UI state.
type ProductView struct {
	model.ProductDTO
	UIState UIState
}

// ItemView wraps a shopping list item with its transient flags.
type ItemView struct {
	model.ShoppingListItemDTO
	IsUpdating   bool
	IsCheckingIn bool
}

// ProductAPI is the slice of the CRUD client the product list
// controller needs.
type ProductAPI interface {
	ListProducts(ctx context.Context, q client.ProductsQuery) (*model.ProductList, error)
	CreateProduct(ctx context.Context, in client.CreateProductInput) (*model.ProductDTO, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, in client.UpdateProductInput) (*model.ProductDTO, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

// ShoppingAPI is the slice the shopping list controller needs.
type ShoppingAPI interface {
	ListShoppingList(ctx context.Context) (*model.ShoppingList, error)
	UpdateShoppingListItem(ctx context.Context, id uuid.UUID, quantity int) (*model.ShoppingListItemDTO, error)
	CheckInItem(ctx context.Context, id uuid.UUID) error
	CheckInAllItems(ctx context.Context) error
}

// DashboardAPI is the read-only slice the dashboard aggregator needs.
type DashboardAPI interface {
	ListProducts(ctx context.Context, q client.ProductsQuery) (*model.ProductList, error)
	ListShoppingList(ctx context.Context) (*model.ShoppingList, error)
}

// Notifier receives the transient, user-visible outcome of a
// mutation. Mutation failures surface here; they never propagate to
// the rendering layer uncaught.
type Notifier interface {
	Success(message string)
	Error(message string)
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}
