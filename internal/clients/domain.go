package clients

import "time"

// Client is a reseller's customer. Every client belongs to exactly one
// reseller; resellers never see each other's rows.
type Client struct {
	ID         string    `json:"id"`
	ResellerID string    `json:"reseller_id"`
	Name       string    `json:"name"`
	Email      *string   `json:"email,omitempty"`
	Phone      *string   `json:"phone,omitempty"`
	Address    *string   `json:"address,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CreateClientInput carries the client-supplied fields of a new client.
// ResellerID is only honoured for managers/administrators; a reseller
// always owns what it creates.
type CreateClientInput struct {
	ResellerID string
	Name       string
	Email      *string
	Phone      *string
	Address    *string
}

// UpdateClientInput is a partial update; nil fields are left untouched.
type UpdateClientInput struct {
	ID      string
	Name    *string
	Email   *string
	Phone   *string
	Address *string
}

// ClientFilters narrows a listing. ResellerID is forced to the caller's
// own id for reseller identities before the backend is reached.
type ClientFilters struct {
	ResellerID *string
	Search     string
}
