package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"stocksy/internal/model"
)

// ItemWithProduct is a shopping list row joined with the owning
// product's name for display.
type ItemWithProduct struct {
	ID                 uuid.UUID
	ProductID          uuid.UUID
	ProductName        string
	QuantityToPurchase int
}

type ShoppingListRepository interface {
	FindByUser(userID uuid.UUID) ([]ItemWithProduct, error)
	FindWithProduct(userID, id uuid.UUID) (*ItemWithProduct, error)
	FindByIDForUpdate(tx *gorm.DB, userID, id uuid.UUID) (*model.ShoppingListItem, error)
	FindAllForUpdate(tx *gorm.DB, userID uuid.UUID) ([]model.ShoppingListItem, error)
	FindByProductID(tx *gorm.DB, productID uuid.UUID) (*model.ShoppingListItem, error)
	Create(tx *gorm.DB, item *model.ShoppingListItem) error
	UpdateQuantity(userID, id uuid.UUID, quantity int) (int64, error)
	Delete(tx *gorm.DB, id uuid.UUID) error
	DeleteByProductID(tx *gorm.DB, productID uuid.UUID) error
}

type shoppingListRepo struct {
	db *gorm.DB
}

func NewShoppingListRepo(db *gorm.DB) ShoppingListRepository {
	return &shoppingListRepo{db}
}

const itemSelect = "shopping_list_items.id, shopping_list_items.product_id, products.name AS product_name, shopping_list_items.quantity_to_purchase"

func (r *shoppingListRepo) FindByUser(userID uuid.UUID) ([]ItemWithProduct, error) {
	var items []ItemWithProduct
	err := r.db.Model(&model.ShoppingListItem{}).
		Select(itemSelect).
		Joins("JOIN products ON products.id = shopping_list_items.product_id").
		Where("shopping_list_items.user_id = ?", userID).
		Scan(&items).Error
	return items, err
}

func (r *shoppingListRepo) FindWithProduct(userID, id uuid.UUID) (*ItemWithProduct, error) {
	var item ItemWithProduct
	err := r.db.Model(&model.ShoppingListItem{}).
		Select(itemSelect).
		Joins("JOIN products ON products.id = shopping_list_items.product_id").
		Where("shopping_list_items.id = ? AND shopping_list_items.user_id = ?", id, userID).
		Take(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *shoppingListRepo) FindByIDForUpdate(tx *gorm.DB, userID, id uuid.UUID) (*model.ShoppingListItem, error) {
	var item model.ShoppingListItem
	err := tx.Set("gorm:query_option", "FOR UPDATE").
		First(&item, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *shoppingListRepo) FindAllForUpdate(tx *gorm.DB, userID uuid.UUID) ([]model.ShoppingListItem, error) {
	var items []model.ShoppingListItem
	err := tx.Set("gorm:query_option", "FOR UPDATE").
		Where("user_id = ?", userID).
		Find(&items).Error
	return items, err
}

func (r *shoppingListRepo) FindByProductID(tx *gorm.DB, productID uuid.UUID) (*model.ShoppingListItem, error) {
	var item model.ShoppingListItem
	if err := tx.First(&item, "product_id = ?", productID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *shoppingListRepo) Create(tx *gorm.DB, item *model.ShoppingListItem) error {
	return tx.Create(item).Error
}

func (r *shoppingListRepo) UpdateQuantity(userID, id uuid.UUID, quantity int) (int64, error) {
	res := r.db.Model(&model.ShoppingListItem{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("quantity_to_purchase", quantity)
	return res.RowsAffected, res.Error
}

func (r *shoppingListRepo) Delete(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.ShoppingListItem{}, "id = ?", id).Error
}

func (r *shoppingListRepo) DeleteByProductID(tx *gorm.DB, productID uuid.UUID) error {
	return tx.Delete(&model.ShoppingListItem{}, "product_id = ?", productID).Error
}
