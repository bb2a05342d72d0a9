package service

import (
	"errors"
	"math"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"stocksy/internal/model"
	"stocksy/internal/repository"
	"stocksy/internal/ws"
	"stocksy/pkg/validator"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrDuplicateName   = errors.New("product with the provided name already exists")
)

// ValidationError carries the field-level messages for a rejected
// payload so the handler can fill the errors[] array.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, ", ")
}

// CreateProductCommand is the payload for creating a product.
type CreateProductCommand struct {
	Name             string `json:"name" validate:"required,min=3,max=120"`
	Quantity         *int   `json:"quantity" validate:"required,min=0"`
	MinimumThreshold *int   `json:"minimum_threshold" validate:"required,min=1"`
}

// UpdateProductCommand is a partial update; nil fields are untouched.
type UpdateProductCommand struct {
	Name             *string `json:"name" validate:"omitempty,min=3,max=120"`
	Quantity         *int    `json:"quantity" validate:"omitempty,min=0"`
	MinimumThreshold *int    `json:"minimum_threshold" validate:"omitempty,min=1"`
}

type ProductService interface {
	List(userID uuid.UUID, q repository.ListQuery) (*model.ProductList, error)
	Create(userID uuid.UUID, cmd *CreateProductCommand) (*model.ProductDTO, error)
	Update(userID, id uuid.UUID, cmd *UpdateProductCommand) (*model.ProductDTO, error)
	Delete(userID, id uuid.UUID) error
}

type productService struct {
	productRepo repository.ProductRepository
	listRepo    repository.ShoppingListRepository
	db          *gorm.DB
	hub         *ws.Hub
	log         *zap.Logger
}

func NewProductService(pRepo repository.ProductRepository, lRepo repository.ShoppingListRepository, db *gorm.DB, hub *ws.Hub, log *zap.Logger) ProductService {
	return &productService{
		productRepo: pRepo,
		listRepo:    lRepo,
		db:          db,
		hub:         hub,
		log:         log,
	}
}

func (s *productService) List(userID uuid.UUID, q repository.ListQuery) (*model.ProductList, error) {
	products, total, err := s.productRepo.FindPage(userID, q)
	if err != nil {
		return nil, err
	}

	data := make([]model.ProductDTO, len(products))
	for i := range products {
		data[i] = products[i].ToDTO()
	}

	totalPages := int(math.Ceil(float64(total) / float64(q.Limit)))
	if totalPages < 1 {
		totalPages = 1
	}

	return &model.ProductList{
		Data: data,
		Meta: model.PaginationMeta{
			TotalItems:  int(total),
			TotalPages:  totalPages,
			CurrentPage: q.Page,
			PerPage:     q.Limit,
		},
	}, nil
}

func (s *productService) Create(userID uuid.UUID, cmd *CreateProductCommand) (*model.ProductDTO, error) {
	cmd.Name = strings.TrimSpace(cmd.Name)
	if errs := validator.ValidateStruct(cmd); len(errs) > 0 {
		return nil, &ValidationError{Messages: validator.Messages(errs)}
	}

	// Pre-check keeps the common case to one friendly 409; the unique
	// index is the final arbiter when two creates race past it.
	if conflict, _ := s.productRepo.FindNameConflict(userID, cmd.Name, uuid.Nil); conflict != nil {
		return nil, ErrDuplicateName
	}

	product := &model.Product{
		UserID:           userID,
		Name:             cmd.Name,
		Quantity:         *cmd.Quantity,
		MinimumThreshold: *cmd.MinimumThreshold,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.productRepo.Create(tx, product); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateName
			}
			return err
		}
		return s.syncShoppingItem(tx, product)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("product created",
		zap.String("product_id", product.ID.String()),
		zap.String("user_id", userID.String()))

	dto := product.ToDTO()
	return &dto, nil
}

func (s *productService) Update(userID, id uuid.UUID, cmd *UpdateProductCommand) (*model.ProductDTO, error) {
	if cmd.Name != nil {
		trimmed := strings.TrimSpace(*cmd.Name)
		cmd.Name = &trimmed
	}
	if errs := validator.ValidateStruct(cmd); len(errs) > 0 {
		return nil, &ValidationError{Messages: validator.Messages(errs)}
	}

	if cmd.Name != nil {
		if conflict, _ := s.productRepo.FindNameConflict(userID, *cmd.Name, id); conflict != nil {
			return nil, ErrDuplicateName
		}
	}

	var updated *model.Product
	err := s.db.Transaction(func(tx *gorm.DB) error {
		product, err := s.productRepo.FindByIDForUpdate(tx, userID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		if cmd.Name != nil {
			product.Name = *cmd.Name
		}
		if cmd.Quantity != nil {
			product.Quantity = *cmd.Quantity
		}
		if cmd.MinimumThreshold != nil {
			product.MinimumThreshold = *cmd.MinimumThreshold
		}

		if err := s.productRepo.Save(tx, product); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateName
			}
			return err
		}

		updated = product
		return s.syncShoppingItem(tx, product)
	})
	if err != nil {
		return nil, err
	}

	dto := updated.ToDTO()
	return &dto, nil
}

func (s *productService) Delete(userID, id uuid.UUID) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.listRepo.DeleteByProductID(tx, id); err != nil {
			return err
		}
		rows, err := s.productRepo.Delete(tx, userID, id)
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrProductNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("product deleted",
		zap.String("product_id", id.String()),
		zap.String("user_id", userID.String()))
	return nil
}

// syncShoppingItem reconciles the derived shopping list row with the
// product's current quantity/threshold, inside the caller's
// transaction. A newly materialized row defaults to the smallest
// purchase that lifts the product back above its threshold.
func (s *productService) syncShoppingItem(tx *gorm.DB, product *model.Product) error {
	existing, err := s.listRepo.FindByProductID(tx, product.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if product.BelowThreshold() {
		if existing != nil {
			return nil // keep the user's edited quantity_to_purchase
		}
		item := &model.ShoppingListItem{
			UserID:             product.UserID,
			ProductID:          product.ID,
			QuantityToPurchase: product.MinimumThreshold - product.Quantity + 1,
		}
		if err := s.listRepo.Create(tx, item); err != nil {
			return err
		}
		s.hub.Publish(ws.Event{
			Type:        ws.EventLowStock,
			UserID:      product.UserID.String(),
			ProductID:   product.ID.String(),
			ProductName: product.Name,
		})
		return nil
	}

	if existing == nil {
		return nil
	}
	if err := s.listRepo.Delete(tx, existing.ID); err != nil {
		return err
	}
	s.hub.Publish(ws.Event{
		Type:        ws.EventRestocked,
		UserID:      product.UserID.String(),
		ProductID:   product.ID.String(),
		ProductName: product.Name,
	})
	return nil
}
