// Package fixtures provides the seed rows the in-memory backend starts
// with. Every call returns fresh values; stores stay isolated from each
// other and from the fixture definitions.
package fixtures

import (
	"time"

	"github.com/comptoir-erp/comptoir-erp/internal/auth"
	"github.com/comptoir-erp/comptoir-erp/internal/catalog"
	"github.com/comptoir-erp/comptoir-erp/internal/clients"
	"github.com/comptoir-erp/comptoir-erp/internal/invoices"
	"github.com/comptoir-erp/comptoir-erp/internal/orders"
)

// Well-known fixture ids, used by Profiles and the seeded rows.
const (
	AdminID    = "00000000-0000-4000-8000-000000000001"
	ManagerID  = "00000000-0000-4000-8000-000000000002"
	ResellerID = "00000000-0000-4000-8000-000000000003"
)

func seedTime(day int) time.Time {
	return time.Date(2025, time.March, day, 9, 0, 0, 0, time.UTC)
}

// Profiles returns the identities the static auth provider serves.
func Profiles() []auth.Identity {
	return []auth.Identity{
		{ID: AdminID, Role: auth.RoleAdministrator, DisplayName: "Alice Admin"},
		{ID: ManagerID, Role: auth.RoleManager, DisplayName: "Marc Gestion"},
		{ID: ResellerID, Role: auth.RoleReseller, DisplayName: "Rémi Revendeur"},
	}
}

func ptr[T any](v T) *T { return &v }

// Products returns the seeded catalog.
func Products() []catalog.Product {
	return []catalog.Product{
		{
			ID:        "10000000-0000-4000-8000-000000000001",
			Reference: ptr("ECR-27"),
			Name:      "Écran 27 pouces",
			Category:  catalog.CategoryInformatique,
			Unit:      "pièce",
			Color:     ptr("noir"),
			Price:     229.90,
			Quantity:  14,
			CreatedAt: seedTime(1),
			UpdatedAt: seedTime(1),
		},
		{
			ID:        "10000000-0000-4000-8000-000000000002",
			Reference: ptr("BUR-120"),
			Name:      "Bureau 120 cm",
			Category:  catalog.CategoryMobilier,
			Unit:      "pièce",
			Color:     ptr("chêne"),
			Price:     149.00,
			Quantity:  4,
			CreatedAt: seedTime(2),
			UpdatedAt: seedTime(2),
		},
		{
			ID:        "10000000-0000-4000-8000-000000000003",
			Name:      "Ramette papier A4",
			Category:  catalog.CategoryFournitures,
			Unit:      "carton",
			Price:     24.50,
			Quantity:  60,
			CreatedAt: seedTime(3),
			UpdatedAt: seedTime(3),
		},
	}
}

// Clients returns the seeded client book.
func Clients() []clients.Client {
	return []clients.Client{
		{
			ID:         "20000000-0000-4000-8000-000000000001",
			ResellerID: ResellerID,
			Name:       "Boulangerie Dupont",
			Email:      ptr("contact@boulangerie-dupont.fr"),
			Phone:      ptr("+33 1 23 45 67 89"),
			CreatedAt:  seedTime(4),
			UpdatedAt:  seedTime(4),
		},
		{
			ID:         "20000000-0000-4000-8000-000000000002",
			ResellerID: ResellerID,
			Name:       "Garage Martin",
			Address:    ptr("12 rue des Lilas, 69003 Lyon"),
			CreatedAt:  seedTime(5),
			UpdatedAt:  seedTime(5),
		},
	}
}

// Orders returns the seeded orders.
func Orders() []orders.Order {
	return []orders.Order{
		{
			ID:         "30000000-0000-4000-8000-000000000001",
			ResellerID: ResellerID,
			ClientID:   "20000000-0000-4000-8000-000000000001",
			Status:     orders.OrderStatusPending,
			Lines: []orders.OrderLine{
				{ProductID: "10000000-0000-4000-8000-000000000001", Label: "Écran 27 pouces", Quantity: 2, UnitPrice: 229.90},
			},
			Total:     459.80,
			CreatedAt: seedTime(6),
			UpdatedAt: seedTime(6),
		},
	}
}

// Invoices returns the seeded quotes.
func Invoices() []invoices.Invoice {
	lines := []invoices.InvoiceLine{
		{Description: "Installation poste de travail", Quantity: 1, UnitPrice: 120},
	}
	subtotal, tax, total := invoices.ComputeTotals(lines)
	return []invoices.Invoice{
		{
			ID:         "40000000-0000-4000-8000-000000000001",
			ResellerID: ResellerID,
			ClientID:   "20000000-0000-4000-8000-000000000002",
			Status:     invoices.InvoiceStatusDraft,
			Lines:      lines,
			Subtotal:   subtotal,
			TaxAmount:  tax,
			Total:      total,
			CreatedAt:  seedTime(7),
			UpdatedAt:  seedTime(7),
		},
	}
}
