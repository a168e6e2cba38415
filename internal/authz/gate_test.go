package authz

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/comptoir-erp/comptoir-erp/internal/auth"
	"github.com/comptoir-erp/comptoir-erp/internal/shared"
)

func TestAdministratorHasFullAccess(t *testing.T) {
	for _, entity := range []Entity{EntityProduct, EntityClient, EntityOrder, EntityInvoice, EntityStats} {
		for _, action := range []Action{ActionList, ActionRead, ActionCreate, ActionUpdate, ActionDelete, ActionAdjustStock, ActionSetStatus} {
			require.True(t, Can(auth.RoleAdministrator, entity, action), "admin %s %s", entity, action)
		}
	}
}

func TestResellerCannotMutateCatalog(t *testing.T) {
	require.True(t, Can(auth.RoleReseller, EntityProduct, ActionList))
	require.True(t, Can(auth.RoleReseller, EntityProduct, ActionRead))
	require.False(t, Can(auth.RoleReseller, EntityProduct, ActionCreate))
	require.False(t, Can(auth.RoleReseller, EntityProduct, ActionUpdate))
	require.False(t, Can(auth.RoleReseller, EntityProduct, ActionDelete))
	require.False(t, Can(auth.RoleReseller, EntityProduct, ActionAdjustStock))
}

func TestManagerClientAccessIsReadOnly(t *testing.T) {
	require.True(t, Can(auth.RoleManager, EntityClient, ActionList))
	require.False(t, Can(auth.RoleManager, EntityClient, ActionCreate))
	require.False(t, Can(auth.RoleManager, EntityClient, ActionDelete))
}

func TestResellerCannotAdvanceOrderStatus(t *testing.T) {
	require.False(t, Can(auth.RoleReseller, EntityOrder, ActionSetStatus))
	require.True(t, Can(auth.RoleManager, EntityOrder, ActionSetStatus))
}

func TestAuthorizeDenialIsGeneric(t *testing.T) {
	reseller := auth.Identity{ID: "r1", Role: auth.RoleReseller}
	err := Authorize(reseller, EntityProduct, ActionDelete)
	require.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestResellerScope(t *testing.T) {
	reseller := auth.Identity{ID: "r1", Role: auth.RoleReseller}
	scope := ResellerScope(reseller)
	require.NotNil(t, scope)
	require.Equal(t, "r1", *scope)

	require.Nil(t, ResellerScope(auth.Identity{ID: "m1", Role: auth.RoleManager}))
	require.Nil(t, ResellerScope(auth.Identity{ID: "a1", Role: auth.RoleAdministrator}))
}

func TestUnknownRoleDeniedEverything(t *testing.T) {
	require.False(t, Can(auth.Role("intern"), EntityClient, ActionList))
}
