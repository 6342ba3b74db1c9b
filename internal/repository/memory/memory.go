// Package memory implements repository.Store in process memory.
//
// It backs the mock server and the service/handler tests. All methods are safe
// for concurrent use; values are copied on the way in and out so callers can
// never mutate stored state through a pointer they hold.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/shopping-list/internal/apperror"
	"github.com/sakif/shopping-list/internal/model"
	"github.com/sakif/shopping-list/internal/repository"
)

var _ repository.Store = (*Store)(nil)

// Store keeps lists and items in maps, with slices recording insertion order.
type Store struct {
	mu        sync.RWMutex
	lists     map[string]model.ShoppingList
	listOrder []string
	items     map[string]model.Item
	itemOrder map[string][]string // list ID → item IDs in insertion order

	// FailWith, when set, is returned by every method. Tests use it to
	// simulate an unavailable store.
	FailWith error
}

// New returns an empty store.
func New() *Store {
	return &Store{
		lists:     make(map[string]model.ShoppingList),
		items:     make(map[string]model.Item),
		itemOrder: make(map[string][]string),
	}
}

func (s *Store) CreateList(_ context.Context, list *model.ShoppingList) error {
	if s.FailWith != nil {
		return s.FailWith
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	list.ID = xid.New().String()
	now := time.Now()
	list.CreatedAt = now
	list.UpdatedAt = now
	list.Members = model.NormalizeMembers(list.Owner, list.Members)

	s.lists[list.ID] = copyList(*list)
	s.listOrder = append(s.listOrder, list.ID)
	return nil
}

func (s *Store) GetList(_ context.Context, id string) (*model.ShoppingList, error) {
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.lists[id]
	if !ok {
		return nil, apperror.NotFound("shopping list", id)
	}
	out := copyList(l)
	return &out, nil
}

func (s *Store) ListLists(_ context.Context) ([]model.ShoppingList, error) {
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.ShoppingList, 0, len(s.listOrder))
	for _, id := range s.listOrder {
		out = append(out, copyList(s.lists[id]))
	}
	return out, nil
}

func (s *Store) UpdateList(_ context.Context, list *model.ShoppingList) error {
	if s.FailWith != nil {
		return s.FailWith
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.lists[list.ID]
	if !ok {
		return apperror.NotFound("shopping list", list.ID)
	}
	stored.Name = list.Name
	stored.Members = model.NormalizeMembers(stored.Owner, list.Members)
	stored.UpdatedAt = time.Now()
	s.lists[list.ID] = stored

	list.Owner = stored.Owner
	list.Members = slices.Clone(stored.Members)
	list.UpdatedAt = stored.UpdatedAt
	return nil
}

func (s *Store) DeleteList(_ context.Context, id string) error {
	if s.FailWith != nil {
		return s.FailWith
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lists[id]; !ok {
		return apperror.NotFound("shopping list", id)
	}
	for _, itemID := range s.itemOrder[id] {
		delete(s.items, itemID)
	}
	delete(s.itemOrder, id)
	delete(s.lists, id)
	s.listOrder = slices.DeleteFunc(s.listOrder, func(v string) bool { return v == id })
	return nil
}

func (s *Store) CreateItem(_ context.Context, item *model.Item) error {
	if s.FailWith != nil {
		return s.FailWith
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lists[item.ListID]; !ok {
		return apperror.NotFound("shopping list", item.ListID)
	}
	item.ID = xid.New().String()
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now

	s.items[item.ID] = *item
	s.itemOrder[item.ListID] = append(s.itemOrder[item.ListID], item.ID)
	return nil
}

func (s *Store) GetItem(_ context.Context, listID, itemID string) (*model.Item, error) {
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.items[itemID]
	if !ok || it.ListID != listID {
		return nil, apperror.NotFound("item", itemID)
	}
	return &it, nil
}

func (s *Store) ListItems(_ context.Context, listID string) ([]model.Item, error) {
	if s.FailWith != nil {
		return nil, s.FailWith
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.itemOrder[listID]
	out := make([]model.Item, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.items[id])
	}
	return out, nil
}

func (s *Store) UpdateItem(_ context.Context, item *model.Item) error {
	if s.FailWith != nil {
		return s.FailWith
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.items[item.ID]
	if !ok || stored.ListID != item.ListID {
		return apperror.NotFound("item", item.ID)
	}
	stored.Name = item.Name
	stored.Done = item.Done
	stored.UpdatedAt = time.Now()
	s.items[item.ID] = stored

	item.UpdatedAt = stored.UpdatedAt
	return nil
}

func (s *Store) DeleteItem(_ context.Context, listID, itemID string) error {
	if s.FailWith != nil {
		return s.FailWith
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.items[itemID]
	if !ok || stored.ListID != listID {
		return apperror.NotFound("item", itemID)
	}
	delete(s.items, itemID)
	s.itemOrder[listID] = slices.DeleteFunc(s.itemOrder[listID], func(v string) bool { return v == itemID })
	return nil
}

// ItemCount returns the number of stored items across all lists.
func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func copyList(l model.ShoppingList) model.ShoppingList {
	l.Members = slices.Clone(l.Members)
	if l.Members == nil {
		l.Members = []string{}
	}
	l.Items = nil
	return l
}
