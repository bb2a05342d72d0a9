package controller

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stocksy/internal/client"
	"stocksy/internal/model"
)

// ShoppingListController owns the in-memory shopping list. It is
// seeded once from a server-rendered snapshot and never refetches;
// check-ins and quantity edits are applied optimistically with the
// pre-mutation snapshot held for rollback.
type ShoppingListController struct {
	api    ShoppingAPI
	notify Notifier
	log    *zap.Logger

	mu            sync.Mutex
	items         []ItemView
	checkingInAll bool
	inFlight      int // individual check-ins whose rows are already removed
	closed        bool
}

// ShoppingListOption configures the controller.
type ShoppingListOption func(*ShoppingListController)

func WithShoppingNotifier(n Notifier) ShoppingListOption {
	return func(c *ShoppingListController) { c.notify = n }
}

func WithShoppingLogger(log *zap.Logger) ShoppingListOption {
	return func(c *ShoppingListController) { c.log = log }
}

// NewShoppingListController seeds the controller from the initial
// snapshot.
func NewShoppingListController(api ShoppingAPI, initial []model.ShoppingListItemDTO, opts ...ShoppingListOption) *ShoppingListController {
	items := make([]ItemView, len(initial))
	for i, dto := range initial {
		items[i] = ItemView{ShoppingListItemDTO: dto}
	}
	c := &ShoppingListController{
		api:    api,
		notify: nopNotifier{},
		log:    zap.NewNop(),
		items:  items,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close marks the owning view as torn down.
func (c *ShoppingListController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// Items returns a snapshot of the current list.
func (c *ShoppingListController) Items() []ItemView {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ItemView, len(c.items))
	copy(out, c.items)
	return out
}

// CheckingInAll reports whether a bulk check-in is in flight.
func (c *ShoppingListController) CheckingInAll() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.checkingInAll
}

// Interactive reports whether the bulk check-in action may be
// offered: true only when no bulk check-in is in flight and no
// individual item operation is outstanding.
func (c *ShoppingListController) Interactive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.checkingInAll || c.inFlight > 0 {
		return false
	}
	for i := range c.items {
		if c.items[i].IsUpdating || c.items[i].IsCheckingIn {
			return false
		}
	}
	return true
}

// UpdateItemQuantity sets an item's quantity_to_purchase. Values
// below 1 are rejected here, without a network call. On failure the
// item reverts to its pre-mutation snapshot.
func (c *ShoppingListController) UpdateItemQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	if quantity < 1 {
		c.notify.Error("Quantity must be at least 1")
		return &client.ValidationError{Message: "quantity_to_purchase must be at least 1"}
	}

	c.mu.Lock()
	idx := c.indexOf(id)
	if idx < 0 {
		c.mu.Unlock()
		c.notify.Error("Item not found")
		return &client.NotFoundError{Message: "item not found in view"}
	}
	baseline := c.items[idx].ShoppingListItemDTO

	optimistic := baseline
	optimistic.QuantityToPurchase = quantity
	c.items[idx] = ItemView{ShoppingListItemDTO: optimistic, IsUpdating: true}
	c.mu.Unlock()

	updated, err := c.api.UpdateShoppingListItem(ctx, id, quantity)

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
		c.items[idx] = ItemView{ShoppingListItemDTO: baseline}
		c.notify.Error(err.Error())
		return err
	}

	c.items[idx] = ItemView{ShoppingListItemDTO: *updated}
	return nil
}

// CheckInItem optimistically removes the item before the call
// settles; on failure the item is restored in place with its flags
// cleared.
func (c *ShoppingListController) CheckInItem(ctx context.Context, id uuid.UUID) error {
	c.mu.Lock()
	idx := c.indexOf(id)
	if idx < 0 {
		c.mu.Unlock()
		c.notify.Error("Item not found")
		return &client.NotFoundError{Message: "item not found in view"}
	}
	baseline := c.items[idx].ShoppingListItemDTO
	c.items = append(c.items[:idx], c.items[idx+1:]...)
	c.inFlight++
	c.mu.Unlock()

	err := c.api.CheckInItem(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight--
	if c.closed {
		return nil
	}

	if err != nil {
		restored := ItemView{ShoppingListItemDTO: baseline}
		if idx > len(c.items) {
			idx = len(c.items)
		}
		c.items = append(c.items[:idx], append([]ItemView{restored}, c.items[idx:]...)...)
		c.notify.Error(err.Error())
		return err
	}

	c.notify.Success(fmt.Sprintf("%s checked in successfully", baseline.ProductName))
	return nil
}

// CheckInAll snapshots and optimistically clears the whole list, then
// calls the bulk endpoint. An empty list is rejected without a call;
// failure restores the snapshot.
func (c *ShoppingListController) CheckInAll(ctx context.Context) error {
	c.mu.Lock()
	if len(c.items) == 0 {
		c.mu.Unlock()
		c.notify.Error("Shopping list is empty")
		return &client.EmptyListError{Message: "shopping list is empty"}
	}
	snapshot := make([]ItemView, len(c.items))
	copy(snapshot, c.items)
	c.items = nil
	c.checkingInAll = true
	c.mu.Unlock()

	err := c.api.CheckInAllItems(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkingInAll = false
	if c.closed {
		return nil
	}

	if err != nil {
		c.items = snapshot
		c.notify.Error(err.Error())
		return err
	}

	c.notify.Success("All items checked in successfully")
	return nil
}

// indexOf must be called with mu held.
func (c *ShoppingListController) indexOf(id uuid.UUID) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}
