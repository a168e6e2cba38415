package clients

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/comptoir-erp/comptoir-erp/internal/auth"
	"github.com/comptoir-erp/comptoir-erp/internal/shared"
)

var (
	resellerA = auth.Identity{ID: "reseller-a", Role: auth.RoleReseller}
	resellerB = auth.Identity{ID: "reseller-b", Role: auth.RoleReseller}
	manager   = auth.Identity{ID: "manager-1", Role: auth.RoleManager}
)

func seededService(seed ...Client) *Service {
	return NewService(NewMemoryRepository(seed), nil)
}

func seedClient(id, resellerID string, at time.Time) Client {
	return Client{ID: id, ResellerID: resellerID, Name: "Client " + id, CreatedAt: at, UpdatedAt: at}
}

func TestResellerListIsScopedToOwnRows(t *testing.T) {
	now := time.Now().UTC()
	svc := seededService(
		seedClient("c1", resellerA.ID, now.Add(-time.Hour)),
		seedClient("c2", resellerB.ID, now.Add(-30*time.Minute)),
		seedClient("c3", resellerA.ID, now),
	)
	ctx := context.Background()

	list, err := svc.List(ctx, resellerA, ClientFilters{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, c := range list {
		require.Equal(t, resellerA.ID, c.ResellerID)
	}

	// A reseller cannot widen its scope by supplying another reseller's id.
	other := resellerB.ID
	list, err = svc.List(ctx, resellerA, ClientFilters{ResellerID: &other})
	require.NoError(t, err)
	for _, c := range list {
		require.Equal(t, resellerA.ID, c.ResellerID)
	}
}

func TestManagerListSpansAllResellers(t *testing.T) {
	now := time.Now().UTC()
	svc := seededService(
		seedClient("c1", resellerA.ID, now.Add(-time.Hour)),
		seedClient("c2", resellerB.ID, now),
	)

	list, err := svc.List(context.Background(), manager, ClientFilters{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "c2", list[0].ID)
}

func TestResellerCannotReadForeignClient(t *testing.T) {
	svc := seededService(seedClient("c1", resellerB.ID, time.Now().UTC()))

	_, err := svc.Get(context.Background(), resellerA, "c1")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCreateOwnershipForcedToCaller(t *testing.T) {
	svc := seededService()
	ctx := context.Background()

	created, err := svc.Create(ctx, resellerA, CreateClientInput{ResellerID: resellerB.ID, Name: "Dupont SARL"})
	require.NoError(t, err)
	require.Equal(t, resellerA.ID, created.ResellerID)

	got, err := svc.Get(ctx, resellerA, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Dupont SARL", got.Name)
}

func TestCreateRequiresName(t *testing.T) {
	svc := seededService()
	_, err := svc.Create(context.Background(), resellerA, CreateClientInput{Name: "  "})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestUpdateForeignClientIsNotFound(t *testing.T) {
	svc := seededService(seedClient("c1", resellerB.ID, time.Now().UTC()))

	name := "Autre"
	_, err := svc.Update(context.Background(), resellerA, UpdateClientInput{ID: "c1", Name: &name})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteRefusedWhileOrdersReference(t *testing.T) {
	refs := func(_ context.Context, clientID string) (bool, error) {
		return clientID == "c1", nil
	}
	now := time.Now().UTC()
	svc := NewService(NewMemoryRepository([]Client{
		seedClient("c1", resellerA.ID, now),
		seedClient("c2", resellerA.ID, now),
	}), refs)
	ctx := context.Background()

	err := svc.Delete(ctx, resellerA, "c1")
	require.ErrorIs(t, err, shared.ErrValidation)
	_, err = svc.Get(ctx, resellerA, "c1")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, resellerA, "c2"))
}

func TestDeleteTwiceFailsSecondTime(t *testing.T) {
	svc := seededService(seedClient("c1", resellerA.ID, time.Now().UTC()))
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, resellerA, "c1"))
	require.ErrorIs(t, svc.Delete(ctx, resellerA, "c1"), shared.ErrNotFound)
}
