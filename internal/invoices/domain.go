package invoices

import "time"

// InvoiceStatus enumerates the fixed quote/invoice workflow states.
type InvoiceStatus string

const (
	// InvoiceStatusDraft is the initial state; the only one accepting
	// line-item edits.
	InvoiceStatusDraft InvoiceStatus = "brouillon"
	// InvoiceStatusPending means the reseller submitted the quote for a
	// manager decision.
	InvoiceStatusPending InvoiceStatus = "en_attente"
	// InvoiceStatusValidated is terminal.
	InvoiceStatusValidated InvoiceStatus = "validée"
	// InvoiceStatusRefused is terminal.
	InvoiceStatusRefused InvoiceStatus = "refusée"
)

var invoiceTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceStatusDraft:   {InvoiceStatusPending},
	InvoiceStatusPending: {InvoiceStatusValidated, InvoiceStatusRefused},
}

// Valid reports whether the status belongs to the closed set.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusPending, InvoiceStatusValidated, InvoiceStatusRefused:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves the status.
func (s InvoiceStatus) Terminal() bool {
	return len(invoiceTransitions[s]) == 0 && s.Valid()
}

// CanTransitionTo consults the transition table.
func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	for _, allowed := range invoiceTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TaxRate is the VAT rate applied to every invoice line.
const TaxRate = 0.20

// InvoiceLine is one free-form position on a quote.
type InvoiceLine struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// Invoice is a reseller's quote moving through the decision workflow.
// Totals are computed server-side from the lines.
type Invoice struct {
	ID         string        `json:"id"`
	ResellerID string        `json:"reseller_id"`
	ClientID   string        `json:"client_id"`
	Status     InvoiceStatus `json:"status"`
	Lines      []InvoiceLine `json:"lines"`
	Subtotal   float64       `json:"subtotal"`
	TaxAmount  float64       `json:"tax_amount"`
	Total      float64       `json:"total"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// CreateInvoiceInput carries the client-supplied fields of a new quote.
type CreateInvoiceInput struct {
	ResellerID string
	ClientID   string
	Lines      []InvoiceLine
}

// UpdateInvoiceInput is a partial update. Line edits are only accepted
// while the invoice is still brouillon.
type UpdateInvoiceInput struct {
	ID       string
	ClientID *string
	Lines    *[]InvoiceLine
}

// InvoiceFilters narrows a listing; absent fields impose no constraint.
type InvoiceFilters struct {
	ResellerID *string
	Status     *InvoiceStatus
}

// ComputeTotals derives subtotal, tax and total from the lines.
func ComputeTotals(lines []InvoiceLine) (subtotal, tax, total float64) {
	for _, line := range lines {
		subtotal += float64(line.Quantity) * line.UnitPrice
	}
	tax = subtotal * TaxRate
	total = subtotal + tax
	return subtotal, tax, total
}
