package view

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/sakif/shopping-list/internal/apperror"
	"github.com/sakif/shopping-list/internal/client"
	"github.com/sakif/shopping-list/internal/model"
)

// Overview is the state of the screen listing every shopping list.
type Overview struct {
	store client.Store
	user  string

	lists  []model.ShoppingList
	loaded bool

	addOpen bool
	newName string

	deleteOpen    bool
	pendingDelete *model.ShoppingList
}

// NewOverview creates the overview for user.
func NewOverview(store client.Store, user string) *Overview {
	return &Overview{store: store, user: user}
}

// Load fetches every list. It runs once; later calls are no-ops.
func (o *Overview) Load(ctx context.Context) error {
	if o.loaded {
		return nil
	}
	lists, err := o.store.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("loading lists: %w", err)
	}
	o.lists = lists
	o.loaded = true
	return nil
}

// Lists returns the lists currently shown.
func (o *Overview) Lists() []model.ShoppingList {
	return slices.Clone(o.lists)
}

// CanDelete reports whether the current user may delete list.
func (o *Overview) CanDelete(list model.ShoppingList) bool {
	return list.IsOwner(o.user)
}

func (o *Overview) AddOpen() bool { return o.addOpen }

func (o *Overview) NewName() string { return o.newName }

func (o *Overview) OpenAdd() { o.addOpen = true }

// CloseAdd hides the add dialog and discards its input.
func (o *Overview) CloseAdd() {
	o.addOpen = false
	o.newName = ""
}

func (o *Overview) SetNewName(name string) { o.newName = name }

// Add creates a list named name owned by the current user and appends the
// stored result. On success the add dialog closes.
func (o *Overview) Add(ctx context.Context, name string) (*model.ShoppingList, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "list name is required")
	}

	created, err := o.store.Create(ctx, model.ShoppingList{
		Name:    name,
		Owner:   o.user,
		Members: []string{},
		Items:   []model.Item{},
	})
	if err != nil {
		return nil, fmt.Errorf("adding list: %w", err)
	}

	o.lists = append(o.lists, *created)
	o.CloseAdd()
	return created, nil
}

func (o *Overview) DeleteOpen() bool { return o.deleteOpen }

// PendingDelete returns the list awaiting delete confirmation, if any.
func (o *Overview) PendingDelete() (model.ShoppingList, bool) {
	if o.pendingDelete == nil {
		return model.ShoppingList{}, false
	}
	return *o.pendingDelete, true
}

// RequestDelete opens the confirmation dialog for list id. Only its owner
// may request it.
func (o *Overview) RequestDelete(id string) error {
	i := slices.IndexFunc(o.lists, func(l model.ShoppingList) bool { return l.ID == id })
	if i < 0 {
		return apperror.NotFound("shopping list", id)
	}
	if !o.CanDelete(o.lists[i]) {
		return apperror.Forbidden("only the owner can delete this list")
	}
	target := o.lists[i]
	o.pendingDelete = &target
	o.deleteOpen = true
	return nil
}

// CancelDelete closes the confirmation dialog without deleting.
func (o *Overview) CancelDelete() {
	o.deleteOpen = false
	o.pendingDelete = nil
}

// ConfirmDelete deletes the pending list and removes it from the screen.
func (o *Overview) ConfirmDelete(ctx context.Context) error {
	if o.pendingDelete == nil {
		return apperror.ValidationFailed("id", "no list is pending deletion")
	}
	id := o.pendingDelete.ID
	if err := o.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting list: %w", err)
	}

	o.lists = slices.DeleteFunc(o.lists, func(l model.ShoppingList) bool { return l.ID == id })
	o.CancelDelete()
	return nil
}
