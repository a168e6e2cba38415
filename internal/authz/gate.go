// Package authz implements the role gate consulted before any service
// call: it maps the authenticated role to the entities and operations it
// may invoke, and derives the implicit reseller row scope.
package authz

import (
	"github.com/comptoir-erp/comptoir-erp/internal/auth"
	"github.com/comptoir-erp/comptoir-erp/internal/shared"
)

// Entity names an entity family guarded by the gate.
type Entity string

const (
	EntityProduct Entity = "product"
	EntityClient  Entity = "client"
	EntityOrder   Entity = "order"
	EntityInvoice Entity = "invoice"
	EntityStats   Entity = "stats"
)

// Action names an operation on an entity family.
type Action string

const (
	ActionList        Action = "list"
	ActionRead        Action = "read"
	ActionCreate      Action = "create"
	ActionUpdate      Action = "update"
	ActionDelete      Action = "delete"
	ActionAdjustStock Action = "adjust_stock"
	ActionSetStatus   Action = "set_status"
)

// rules maps each role to the actions it may perform per entity family.
// Administrators bypass the table entirely.
var rules = map[auth.Role]map[Entity]map[Action]bool{
	auth.RoleManager: {
		EntityProduct: allOf(ActionList, ActionRead, ActionCreate, ActionUpdate, ActionDelete, ActionAdjustStock),
		EntityClient:  allOf(ActionList, ActionRead),
		EntityOrder:   allOf(ActionList, ActionRead, ActionCreate, ActionUpdate, ActionDelete, ActionSetStatus),
		EntityInvoice: allOf(ActionList, ActionRead, ActionCreate, ActionUpdate, ActionDelete, ActionSetStatus),
		EntityStats:   allOf(ActionRead),
	},
	auth.RoleReseller: {
		EntityProduct: allOf(ActionList, ActionRead),
		EntityClient:  allOf(ActionList, ActionRead, ActionCreate, ActionUpdate, ActionDelete),
		EntityOrder:   allOf(ActionList, ActionRead, ActionCreate, ActionUpdate, ActionDelete),
		EntityInvoice: allOf(ActionList, ActionRead, ActionCreate, ActionUpdate, ActionDelete, ActionSetStatus),
		EntityStats:   allOf(ActionRead),
	},
}

func allOf(actions ...Action) map[Action]bool {
	m := make(map[Action]bool, len(actions))
	for _, a := range actions {
		m[a] = true
	}
	return m
}

// Can reports whether the role may perform the action on the entity family.
func Can(role auth.Role, entity Entity, action Action) bool {
	if role == auth.RoleAdministrator {
		return true
	}
	perEntity, ok := rules[role]
	if !ok {
		return false
	}
	return perEntity[entity][action]
}

// Authorize returns ErrUnauthorized when the role may not perform the
// action. The error is generic on purpose: a denial must not reveal
// whether any underlying row exists.
func Authorize(identity auth.Identity, entity Entity, action Action) error {
	if !Can(identity.Role, entity, action) {
		return shared.ErrUnauthorized
	}
	return nil
}

// ResellerScope returns the reseller id every row-scoped query must be
// restricted to, or nil when the role sees across all resellers. It is
// the implicit filter of every reseller list/get, applied before the
// backend contract is reached.
func ResellerScope(identity auth.Identity) *string {
	if identity.IsReseller() {
		id := identity.ID
		return &id
	}
	return nil
}
