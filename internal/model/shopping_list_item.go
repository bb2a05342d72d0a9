package model

import "github.com/google/uuid"

// ShoppingListItem is derived state: a row exists only while the
// linked product's quantity sits at or below its minimum threshold.
// Rows are materialized and retired by the product service inside the
// same transaction as the triggering write, never authored directly.
type ShoppingListItem struct {
	BaseModel
	UserID             uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	ProductID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"product_id"`
	QuantityToPurchase int       `gorm:"not null;default:1" json:"quantity_to_purchase" validate:"required,min=1"`

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
}

// ShoppingListItemDTO is the wire representation, with the product
// name denormalized from the join for display.
type ShoppingListItemDTO struct {
	ID                 uuid.UUID `json:"id"`
	ProductID          uuid.UUID `json:"product_id"`
	ProductName        string    `json:"product_name"`
	QuantityToPurchase int       `json:"quantity_to_purchase"`
}

// ShoppingList is the response body for GET /shopping-list.
type ShoppingList struct {
	Data []ShoppingListItemDTO `json:"data"`
}
