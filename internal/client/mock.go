package client

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/rs/xid"

	"github.com/sakif/shopping-list/internal/apperror"
	"github.com/sakif/shopping-list/internal/model"
)

// Mock serves the sync contract from an in-memory collection. Ids are
// assigned here exactly as the backend would: a created list gets a fresh
// id, and so does every item that arrives without one.
type Mock struct {
	mu    sync.Mutex
	lists []model.ShoppingList
}

var _ Store = (*Mock)(nil)

// NewMock creates a mock seeded with copies of seed.
func NewMock(seed []model.ShoppingList) *Mock {
	m := &Mock{}
	for _, l := range seed {
		m.lists = append(m.lists, withNewIDs(clone(l)))
	}
	return m
}

func (m *Mock) FetchAll(_ context.Context) ([]model.ShoppingList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.ShoppingList, len(m.lists))
	for i, l := range m.lists {
		out[i] = clone(l)
	}
	return out, nil
}

func (m *Mock) Create(_ context.Context, list model.ShoppingList) (*model.ShoppingList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := withNewIDs(clone(list))
	m.lists = append(m.lists, stored)
	out := clone(stored)
	return &out, nil
}

func (m *Mock) Update(_ context.Context, list model.ShoppingList) (*model.ShoppingList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(list.ID)
	if i < 0 {
		return nil, apperror.NotFound("shopping list", list.ID)
	}
	stored := clone(list)
	stored.Items = mergeItems(list.ID, m.lists[i].Items, list.Items)
	stored.Owner = m.lists[i].Owner
	stored.Members = model.NormalizeMembers(stored.Owner, stored.Members)
	m.lists[i] = stored
	out := clone(stored)
	return &out, nil
}

func (m *Mock) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(id)
	if i < 0 {
		return apperror.NotFound("shopping list", id)
	}
	m.lists = slices.Delete(m.lists, i, i+1)
	return nil
}

func (m *Mock) index(id string) int {
	return slices.IndexFunc(m.lists, func(l model.ShoppingList) bool { return l.ID == id })
}

// withNewIDs gives a new list and all of its items fresh ids and drops the
// owner from members.
func withNewIDs(l model.ShoppingList) model.ShoppingList {
	l.ID = xid.New().String()
	l.Owner = strings.TrimSpace(l.Owner)
	l.Members = model.NormalizeMembers(l.Owner, l.Members)
	for i := range l.Items {
		l.Items[i].ID = xid.New().String()
		l.Items[i].ListID = l.ID
	}
	return l
}

// mergeItems applies a replaced document's items the way the mock server
// does: items already stored keep their position, items with an unknown or
// repeated id get a fresh one and are appended in document order, and stored
// items missing from the document are dropped.
func mergeItems(listID string, stored, doc []model.Item) []model.Item {
	known := make(map[string]bool, len(stored))
	for _, it := range stored {
		known[it.ID] = true
	}

	incoming := make(map[string]model.Item, len(doc))
	var added []model.Item
	for _, it := range doc {
		it.ListID = listID
		if _, dup := incoming[it.ID]; known[it.ID] && !dup {
			incoming[it.ID] = it
			continue
		}
		it.ID = xid.New().String()
		added = append(added, it)
	}

	out := make([]model.Item, 0, len(doc))
	for _, it := range stored {
		if in, ok := incoming[it.ID]; ok {
			out = append(out, in)
		}
	}
	return append(out, added...)
}

func clone(l model.ShoppingList) model.ShoppingList {
	l.Members = slices.Clone(l.Members)
	if l.Members == nil {
		l.Members = []string{}
	}
	l.Items = slices.Clone(l.Items)
	if l.Items == nil {
		l.Items = []model.Item{}
	}
	return l
}
