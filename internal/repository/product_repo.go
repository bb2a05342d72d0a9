package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"stocksy/internal/model"
)

// ListQuery is the pagination/sort cursor for product listings.
// Bounds are enforced by the handler before it reaches the repository.
type ListQuery struct {
	Page  int
	Limit int
	Sort  string // "name" | "quantity"
	Order string // "asc" | "desc"
}

type ProductRepository interface {
	Create(tx *gorm.DB, product *model.Product) error
	FindByID(userID, id uuid.UUID) (*model.Product, error)
	FindByIDForUpdate(tx *gorm.DB, userID, id uuid.UUID) (*model.Product, error)
	FindPage(userID uuid.UUID, q ListQuery) ([]model.Product, int64, error)
	FindNameConflict(userID uuid.UUID, name string, excludeID uuid.UUID) (*model.Product, error)
	Save(tx *gorm.DB, product *model.Product) error
	Delete(tx *gorm.DB, userID, id uuid.UUID) (int64, error)
	CountByUser(userID uuid.UUID) (int64, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(tx *gorm.DB, product *model.Product) error {
	return tx.Create(product).Error
}

func (r *productRepo) FindByID(userID, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.First(&product, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDForUpdate locks the product row for the duration of the
// surrounding transaction.
func (r *productRepo) FindByIDForUpdate(tx *gorm.DB, userID, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := tx.Set("gorm:query_option", "FOR UPDATE").
		First(&product, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindPage(userID uuid.UUID, q ListQuery) ([]model.Product, int64, error) {
	var total int64
	if err := r.db.Model(&model.Product{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []model.Product
	offset := (q.Page - 1) * q.Limit
	err := r.db.Where("user_id = ?", userID).
		Order(q.Sort + " " + q.Order).
		Offset(offset).
		Limit(q.Limit).
		Find(&products).Error
	return products, total, err
}

// FindNameConflict looks for another product of the same owner whose
// name matches case-insensitively. excludeID skips the product being
// updated; pass uuid.Nil on create.
func (r *productRepo) FindNameConflict(userID uuid.UUID, name string, excludeID uuid.UUID) (*model.Product, error) {
	var product model.Product
	tx := r.db.Where("user_id = ? AND LOWER(name) = LOWER(?)", userID, name)
	if excludeID != uuid.Nil {
		tx = tx.Where("id <> ?", excludeID)
	}
	if err := tx.First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) Save(tx *gorm.DB, product *model.Product) error {
	return tx.Save(product).Error
}

func (r *productRepo) Delete(tx *gorm.DB, userID, id uuid.UUID) (int64, error) {
	res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Product{})
	return res.RowsAffected, res.Error
}

func (r *productRepo) CountByUser(userID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.Model(&model.Product{}).Where("user_id = ?", userID).Count(&total).Error
	return total, err
}
