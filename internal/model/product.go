package model

import "github.com/google/uuid"

// Product is a tracked inventory item. Name is unique per owner,
// case-insensitively: the expression index on (user_id, LOWER(name))
// created at migration is the final arbiter even when the
// service-level duplicate check races. Tags cannot express it, so it
// lives in database.EnsureIndexes.
type Product struct {
	BaseModel
	UserID           uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Name             string    `gorm:"type:varchar(120);not null" json:"name" validate:"required,min=3,max=120"`
	Quantity         int       `gorm:"not null;default:0" json:"quantity" validate:"min=0"`
	MinimumThreshold int       `gorm:"not null" json:"minimum_threshold" validate:"required,min=1"`

	Owner *User `gorm:"foreignKey:UserID" json:"-"`
}

// BelowThreshold reports whether the product should appear on the
// shopping list.
func (p *Product) BelowThreshold() bool {
	return p.Quantity <= p.MinimumThreshold
}

// ProductDTO is the wire representation exposed by the API.
type ProductDTO struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Quantity         int       `json:"quantity"`
	MinimumThreshold int       `json:"minimum_threshold"`
}

// ToDTO strips ownership and audit fields for API responses.
func (p *Product) ToDTO() ProductDTO {
	return ProductDTO{
		ID:               p.ID,
		Name:             p.Name,
		Quantity:         p.Quantity,
		MinimumThreshold: p.MinimumThreshold,
	}
}

// PaginationMeta accompanies every paged product listing.
type PaginationMeta struct {
	TotalItems  int `json:"total_items"`
	TotalPages  int `json:"total_pages"`
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
}

// ProductList is the paged response body for GET /products.
type ProductList struct {
	Data []ProductDTO   `json:"data"`
	Meta PaginationMeta `json:"meta"`
}
