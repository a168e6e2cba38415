package catalog

import "time"

// Category enumerates the fixed product categories.
type Category string

const (
	CategoryInformatique   Category = "informatique"
	CategoryMobilier       Category = "mobilier"
	CategoryElectromenager Category = "electromenager"
	CategoryFournitures    Category = "fournitures"
	CategoryAutre          Category = "autre"
)

// Valid reports whether the category belongs to the closed set.
func (c Category) Valid() bool {
	switch c {
	case CategoryInformatique, CategoryMobilier, CategoryElectromenager, CategoryFournitures, CategoryAutre:
		return true
	}
	return false
}

// Product is a catalog row. Quantity is never mutated directly: every
// change goes through the stock ledger and leaves a StockMovement behind.
type Product struct {
	ID           string     `json:"id"`
	Reference    *string    `json:"reference,omitempty"`
	Name         string     `json:"name"`
	Category     Category   `json:"category"`
	Unit         string     `json:"unit"`
	Color        *string    `json:"color,omitempty"`
	Price        float64    `json:"price"`
	Quantity     int        `json:"quantity"`
	PurchaseDate *time.Time `json:"purchase_date,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// StockMovement is the immutable record appended each time the ledger
// commits a quantity change.
type StockMovement struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	Delta     int       `json:"delta"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// Movement reasons recorded by the ledger.
const (
	ReasonRestock     = "restock"
	ReasonOrderCommit = "order_commit"
	ReasonAdjustment  = "adjustment"
)

// CreateProductInput carries the client-supplied fields of a new product.
// ID and timestamps are server-assigned.
type CreateProductInput struct {
	Reference    *string
	Name         string
	Category     Category
	Unit         string
	Color        *string
	Price        float64
	Quantity     int
	PurchaseDate *time.Time
}

// UpdateProductInput is a partial update. Nil fields are left untouched.
// Quantity is deliberately absent: the ledger is the only mutation path.
type UpdateProductInput struct {
	ID           string
	Reference    *string
	Name         *string
	Category     *Category
	Unit         *string
	Color        *string
	Price        *float64
	PurchaseDate *time.Time
}

// ProductFilters narrows a listing. Absent fields impose no constraint;
// supplied fields are ANDed together.
type ProductFilters struct {
	Search   string
	Category *Category
	Color    *string
}

// AdjustmentInput describes a stock ledger request. Positive delta
// restocks; negative delta consumes.
type AdjustmentInput struct {
	ProductID      string
	Delta          int
	Reason         string
	IdempotencyKey string
}
