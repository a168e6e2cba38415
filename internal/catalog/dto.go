package catalog

import "time"

type createProductRequest struct {
	Reference    *string    `json:"reference,omitempty" validate:"omitempty,max=100"`
	Name         string     `json:"name" validate:"required,max=200"`
	Category     string     `json:"category" validate:"required"`
	Unit         string     `json:"unit" validate:"required,max=50"`
	Color        *string    `json:"color,omitempty" validate:"omitempty,max=50"`
	Price        float64    `json:"price" validate:"gte=0"`
	Quantity     int        `json:"quantity" validate:"gte=0"`
	PurchaseDate *time.Time `json:"purchase_date,omitempty"`
}

type updateProductRequest struct {
	Reference    *string    `json:"reference,omitempty" validate:"omitempty,max=100"`
	Name         *string    `json:"name,omitempty" validate:"omitempty,max=200"`
	Category     *string    `json:"category,omitempty"`
	Unit         *string    `json:"unit,omitempty" validate:"omitempty,max=50"`
	Color        *string    `json:"color,omitempty" validate:"omitempty,max=50"`
	Price        *float64   `json:"price,omitempty" validate:"omitempty,gte=0"`
	PurchaseDate *time.Time `json:"purchase_date,omitempty"`
}

type adjustQuantityRequest struct {
	Delta  int    `json:"delta" validate:"required"`
	Reason string `json:"reason,omitempty" validate:"omitempty,max=100"`
}
