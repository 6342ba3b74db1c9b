// Package repository declares the storage interfaces the service layer depends on.
// Implementations live in subpackages (sqlite for persistence, memory for tests
// and the mock server).
package repository

import (
	"context"

	"github.com/sakif/shopping-list/internal/model"
)

// ListRepository persists shopping list records (name, owner, members).
// Items are stored separately through ItemRepository.
type ListRepository interface {
	// CreateList assigns ID and timestamps to list and stores it.
	CreateList(ctx context.Context, list *model.ShoppingList) error
	// GetList returns apperror.ErrNotFound when no list has the id.
	GetList(ctx context.Context, id string) (*model.ShoppingList, error)
	ListLists(ctx context.Context) ([]model.ShoppingList, error)
	// UpdateList writes name and members. Owner is never changed.
	UpdateList(ctx context.Context, list *model.ShoppingList) error
	// DeleteList removes the list and every item that references it.
	DeleteList(ctx context.Context, id string) error
}

// ItemRepository persists items. Every item references exactly one list.
type ItemRepository interface {
	CreateItem(ctx context.Context, item *model.Item) error
	// GetItem looks an item up under its owning list. An item that exists under
	// a different list is reported as not found.
	GetItem(ctx context.Context, listID, itemID string) (*model.Item, error)
	// ListItems returns the list's items in insertion order.
	ListItems(ctx context.Context, listID string) ([]model.Item, error)
	UpdateItem(ctx context.Context, item *model.Item) error
	DeleteItem(ctx context.Context, listID, itemID string) error
}

// Store groups both repositories. The sqlite and memory implementations each
// satisfy it with a single value.
type Store interface {
	ListRepository
	ItemRepository
}
