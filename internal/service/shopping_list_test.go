package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/rs/xid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/shopping-list/internal/access"
	"github.com/sakif/shopping-list/internal/apperror"
	"github.com/sakif/shopping-list/internal/repository/memory"
)

// newTestService wires the service to an in-memory store. u1 and u2 hold the
// owner role, m1 and m2 the member role, everyone else has no role.
func newTestService(t *testing.T) (*ShoppingListService, *memory.Store) {
	t.Helper()
	store := memory.New()
	policy := access.NewStaticPolicy(map[string]access.Role{
		"u1": access.RoleOwner,
		"u2": access.RoleOwner,
		"m1": access.RoleMember,
		"m2": access.RoleMember,
	}, access.RoleNone)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewShoppingListService(store, policy, logger), store
}

func strPtr(s string) *string { return &s }

func TestCreateList(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	list, err := svc.CreateList(ctx, "u1", "  Groceries  ", []string{"m1", "u1", "m1", " "})
	require.NoError(t, err)

	assert.True(t, ValidID(list.ID))
	assert.Equal(t, "Groceries", list.Name)
	assert.Equal(t, "u1", list.Owner)
	assert.Equal(t, []string{"m1"}, list.Members, "owner and duplicates are stripped")
	assert.Empty(t, list.Items)
	assert.False(t, list.CreatedAt.IsZero())
}

func TestCreateList_DefaultsToNoMembers(t *testing.T) {
	svc, _ := newTestService(t)

	list, err := svc.CreateList(context.Background(), "u1", "Hardware", nil)
	require.NoError(t, err)
	assert.NotNil(t, list.Members)
	assert.Empty(t, list.Members)
}

func TestCreateList_Validation(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		listName  string
		members   []string
		wantField string
	}{
		{"empty name", "", nil, "name"},
		{"whitespace name", "   ", nil, "name"},
		{"name too long", string(make([]rune, MaxListNameLength+1)), nil, "name"},
		{"too many members", "ok", make([]string, MaxMembers+1), "members"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateList(ctx, "u1", tt.listName, tt.members)
			require.ErrorIs(t, err, apperror.ErrValidation)

			var appErr *apperror.AppError
			require.True(t, errors.As(err, &appErr))
			require.NotEmpty(t, appErr.Fields)
			assert.Equal(t, tt.wantField, appErr.Fields[0].Field)
		})
	}

	lists, err := store.ListLists(ctx)
	require.NoError(t, err)
	assert.Empty(t, lists)
}

func TestCreateList_RequiresOwnerRole(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	for _, caller := range []string{"m1", "stranger", ""} {
		_, err := svc.CreateList(ctx, caller, "Groceries", nil)
		assert.ErrorIs(t, err, apperror.ErrForbidden, "caller %q", caller)
	}

	lists, err := store.ListLists(ctx)
	require.NoError(t, err)
	assert.Empty(t, lists)
}

func TestCreateList_StorageFailure(t *testing.T) {
	svc, store := newTestService(t)
	store.FailWith = apperror.Storage("shoppingListDao.create", 10, errors.New("disk I/O error"))

	_, err := svc.CreateList(context.Background(), "u1", "Groceries", nil)
	assert.ErrorIs(t, err, apperror.ErrStorage)
}

func TestGetList(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateList(ctx, "u1", "Groceries", []string{"m1"})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "m1", created.ID, "Milk")
	require.NoError(t, err)

	got, err := svc.GetList(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", got.Name)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Milk", got.Items[0].Name)
}

func TestGetList_InvalidAndMissingID(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetList(ctx, "not-an-id")
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = svc.GetList(ctx, xid.New().String())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestListLists(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateList(ctx, "u1", "Groceries", nil)
	require.NoError(t, err)
	_, err = svc.CreateList(ctx, "u2", "Hardware", nil)
	require.NoError(t, err)

	lists, err := svc.ListLists(ctx)
	require.NoError(t, err)
	require.Len(t, lists, 2)
	assert.Equal(t, "Groceries", lists[0].Name)
	assert.Equal(t, "Hardware", lists[1].Name)
}

func TestUpdateList(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	list, err := svc.CreateList(ctx, "u1", "Groceries", []string{"m1"})
	require.NoError(t, err)

	members := []string{"m2", "u1"}
	updated, err := svc.UpdateList(ctx, "u1", list.ID, ListUpdate{Name: strPtr(" Weekly "), Members: &members})
	require.NoError(t, err)
	assert.Equal(t, "Weekly", updated.Name)
	assert.Equal(t, []string{"m2"}, updated.Members)

	got, err := svc.GetList(ctx, list.ID)
	require.NoError(t, err)
	assert.Equal(t, "Weekly", got.Name)
	assert.Equal(t, []string{"m2"}, got.Members, "member edits are persisted")
}

func TestUpdateList_NameOnlyKeepsMembers(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	list, err := svc.CreateList(ctx, "u1", "Groceries", []string{"m1"})
	require.NoError(t, err)

	updated, err := svc.UpdateList(ctx, "u1", list.ID, ListUpdate{Name: strPtr("Weekly")})
	require.NoError(t, err)
	assert.Equal(t, []string{"m1"}, updated.Members)
}

func TestUpdateList_Rejections(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	list, err := svc.CreateList(ctx, "u1", "Groceries", []string{"m1"})
	require.NoError(t, err)

	_, err = svc.UpdateList(ctx, "u1", list.ID, ListUpdate{})
	assert.ErrorIs(t, err, apperror.ErrValidation, "empty update")

	_, err = svc.UpdateList(ctx, "u1", list.ID, ListUpdate{Name: strPtr("")})
	assert.ErrorIs(t, err, apperror.ErrValidation, "blank name")

	_, err = svc.UpdateList(ctx, "m1", list.ID, ListUpdate{Name: strPtr("Mine")})
	assert.ErrorIs(t, err, apperror.ErrForbidden, "member")

	_, err = svc.UpdateList(ctx, "u2", list.ID, ListUpdate{Name: strPtr("Mine")})
	assert.ErrorIs(t, err, apperror.ErrForbidden, "owner role but not this list's owner")

	_, err = svc.UpdateList(ctx, "u1", xid.New().String(), ListUpdate{Name: strPtr("Mine")})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	got, err := svc.GetList(ctx, list.ID)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", got.Name)
}

func TestLeaveList(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	list, err := svc.CreateList(ctx, "u1", "Groceries", []string{"m1", "m2"})
	require.NoError(t, err)

	left, err := svc.LeaveList(ctx, "m1", list.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"m2"}, left.Members)

	_, err = svc.LeaveList(ctx, "m1", list.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden, "no longer a member")

	_, err = svc.LeaveList(ctx, "u1", list.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden, "owner cannot leave")

	_, err = svc.AddItem(ctx, "m1", list.ID, "Bread")
	assert.ErrorIs(t, err, apperror.ErrForbidden, "former member loses item access")
}

func TestDeleteList(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	list, err := svc.CreateList(ctx, "u1", "Groceries", nil)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "u1", list.ID, "Milk")
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "u1", list.ID, "Eggs")
	require.NoError(t, err)
	require.Equal(t, 2, store.ItemCount())

	require.NoError(t, svc.DeleteList(ctx, "u1", list.ID))

	_, err = svc.GetList(ctx, list.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Zero(t, store.ItemCount(), "no orphaned items remain")
}

func TestDeleteList_OnlyOwner(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	list, err := svc.CreateList(ctx, "u1", "Groceries", []string{"m1"})
	require.NoError(t, err)

	err = svc.DeleteList(ctx, "u2", list.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	err = svc.DeleteList(ctx, "m1", list.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	got, err := svc.GetList(ctx, list.ID)
	require.NoError(t, err, "list survives rejected deletes")
	assert.Equal(t, "Groceries", got.Name)
}

func TestDeleteList_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.DeleteList(context.Background(), "u1", xid.New().String())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDeleteList_GateRunsBeforeStore(t *testing.T) {
	svc, store := newTestService(t)
	store.FailWith = errors.New("store must not be touched")

	err := svc.DeleteList(context.Background(), "m1", xid.New().String())
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestOwnerNeverMember(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	list, err := svc.CreateList(ctx, "u1", "Groceries", []string{"u1"})
	require.NoError(t, err)
	assert.NotContains(t, list.Members, "u1")

	members := []string{"u1", "m1"}
	updated, err := svc.UpdateList(ctx, "u1", list.ID, ListUpdate{Members: &members})
	require.NoError(t, err)
	assert.NotContains(t, updated.Members, "u1")
}
