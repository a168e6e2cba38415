package auth

import "errors"

// Role is the closed set of roles known to the dashboard.
type Role string

const (
	// RoleAdministrator has full access to every entity.
	RoleAdministrator Role = "administrator"
	// RoleManager manages the catalog and decides order/invoice workflows
	// across all resellers.
	RoleManager Role = "manager"
	// RoleReseller is scoped to its own clients, orders and invoices.
	RoleReseller Role = "reseller"
)

// Valid reports whether the role belongs to the closed set.
func (r Role) Valid() bool {
	switch r {
	case RoleAdministrator, RoleManager, RoleReseller:
		return true
	}
	return false
}

// Identity describes the authenticated actor as resolved by the
// authentication collaborator. Credential issuance and verification
// happen upstream; this package only resolves who is calling.
type Identity struct {
	ID          string
	Role        Role
	DisplayName string
}

// IsReseller reports whether the identity is scoped to its own rows.
func (i Identity) IsReseller() bool {
	return i.Role == RoleReseller
}

// ErrNoIdentity indicates the request carries no resolvable identity.
var ErrNoIdentity = errors.New("auth: no authenticated identity")
