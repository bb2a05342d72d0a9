package service

import (
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"stocksy/internal/model"
	"stocksy/internal/repository"
	"stocksy/internal/ws"
)

var (
	ErrItemNotFound = errors.New("shopping list item not found")
	ErrEmptyList    = errors.New("shopping list is empty")
)

type ShoppingListService interface {
	List(userID uuid.UUID) (*model.ShoppingList, error)
	UpdateQuantity(userID, id uuid.UUID, quantity int) (*model.ShoppingListItemDTO, error)
	CheckInItem(userID, id uuid.UUID) error
	CheckInAll(userID uuid.UUID) error
}

type shoppingListService struct {
	listRepo    repository.ShoppingListRepository
	productRepo repository.ProductRepository
	db          *gorm.DB
	hub         *ws.Hub
	log         *zap.Logger
}

func NewShoppingListService(lRepo repository.ShoppingListRepository, pRepo repository.ProductRepository, db *gorm.DB, hub *ws.Hub, log *zap.Logger) ShoppingListService {
	return &shoppingListService{
		listRepo:    lRepo,
		productRepo: pRepo,
		db:          db,
		hub:         hub,
		log:         log,
	}
}

func (s *shoppingListService) List(userID uuid.UUID) (*model.ShoppingList, error) {
	items, err := s.listRepo.FindByUser(userID)
	if err != nil {
		return nil, err
	}

	data := make([]model.ShoppingListItemDTO, len(items))
	for i, item := range items {
		data[i] = model.ShoppingListItemDTO{
			ID:                 item.ID,
			ProductID:          item.ProductID,
			ProductName:        item.ProductName,
			QuantityToPurchase: item.QuantityToPurchase,
		}
	}
	return &model.ShoppingList{Data: data}, nil
}

func (s *shoppingListService) UpdateQuantity(userID, id uuid.UUID, quantity int) (*model.ShoppingListItemDTO, error) {
	rows, err := s.listRepo.UpdateQuantity(userID, id, quantity)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrItemNotFound
	}

	item, err := s.listRepo.FindWithProduct(userID, id)
	if err != nil {
		return nil, ErrItemNotFound
	}

	return &model.ShoppingListItemDTO{
		ID:                 item.ID,
		ProductID:          item.ProductID,
		ProductName:        item.ProductName,
		QuantityToPurchase: item.QuantityToPurchase,
	}, nil
}

// CheckInItem atomically increments the linked product's quantity by
// the item's quantity_to_purchase and removes the item. The item is
// not re-materialized inside this transaction even if the product is
// still at or below threshold afterwards; the next quantity or
// threshold edit reconciles it.
func (s *shoppingListService) CheckInItem(userID, id uuid.UUID) error {
	var ev ws.Event
	err := s.db.Transaction(func(tx *gorm.DB) error {
		item, err := s.listRepo.FindByIDForUpdate(tx, userID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}

		product, err := s.productRepo.FindByIDForUpdate(tx, userID, item.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}

		product.Quantity += item.QuantityToPurchase
		if err := s.productRepo.Save(tx, product); err != nil {
			return err
		}
		if err := s.listRepo.Delete(tx, item.ID); err != nil {
			return err
		}

		ev = ws.Event{
			Type:        ws.EventCheckedIn,
			UserID:      userID.String(),
			ProductID:   product.ID.String(),
			ProductName: product.Name,
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.hub.Publish(ev)
	s.log.Info("item checked in",
		zap.String("item_id", id.String()),
		zap.String("user_id", userID.String()))
	return nil
}

// CheckInAll processes every item owned by the caller in one
// transaction; either all check-ins land or none do.
func (s *shoppingListService) CheckInAll(userID uuid.UUID) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		items, err := s.listRepo.FindAllForUpdate(tx, userID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptyList
		}

		for i := range items {
			product, err := s.productRepo.FindByIDForUpdate(tx, userID, items[i].ProductID)
			if err != nil {
				return err
			}
			product.Quantity += items[i].QuantityToPurchase
			if err := s.productRepo.Save(tx, product); err != nil {
				return err
			}
			if err := s.listRepo.Delete(tx, items[i].ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.hub.Publish(ws.Event{Type: ws.EventCheckedInAll, UserID: userID.String()})
	s.log.Info("all items checked in", zap.String("user_id", userID.String()))
	return nil
}
