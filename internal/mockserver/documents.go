package mockserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/sakif/shopping-list/internal/apperror"
	"github.com/sakif/shopping-list/internal/model"
	"github.com/sakif/shopping-list/internal/repository"
)

// Documents maps whole list documents onto a list/item store. A document is a
// list with its items embedded; identifiers are always assigned by the store.
type Documents struct {
	store repository.Store
}

// NewDocuments wraps store.
func NewDocuments(store repository.Store) *Documents {
	return &Documents{store: store}
}

// All returns every list with its items, in creation order.
func (d *Documents) All(ctx context.Context) ([]model.ShoppingList, error) {
	lists, err := d.store.ListLists(ctx)
	if err != nil {
		return nil, err
	}
	for i := range lists {
		items, err := d.store.ListItems(ctx, lists[i].ID)
		if err != nil {
			return nil, err
		}
		lists[i].Items = items
	}
	return lists, nil
}

// Create stores doc as a new list. Any id in doc or its items is ignored.
func (d *Documents) Create(ctx context.Context, doc model.ShoppingList) (*model.ShoppingList, error) {
	owner := strings.TrimSpace(doc.Owner)
	var fields []apperror.FieldError
	if owner == "" {
		fields = append(fields, apperror.FieldError{Field: "owner", Message: "owner is required"})
	}
	fields = append(fields, checkItems(doc.Items)...)
	if err := apperror.Validation(fields...); err != nil {
		return nil, err
	}

	list := &model.ShoppingList{
		Name:    doc.Name,
		Owner:   owner,
		Members: model.NormalizeMembers(owner, doc.Members),
	}
	if err := d.store.CreateList(ctx, list); err != nil {
		return nil, err
	}

	list.Items = make([]model.Item, 0, len(doc.Items))
	for _, in := range doc.Items {
		item := model.Item{ListID: list.ID, Name: strings.TrimSpace(in.Name), Done: in.Done}
		if err := d.store.CreateItem(ctx, &item); err != nil {
			return nil, err
		}
		list.Items = append(list.Items, item)
	}
	return list, nil
}

// Replace overwrites the stored document doc.ID with doc. The owner never
// changes. Items whose id is already stored under this list are updated,
// items without a known id are created with a fresh one, and stored items
// missing from doc are deleted.
//
// Item order is the store's: updated items keep their position and new ones
// are appended, so reordering items in doc does not reorder the list.
func (d *Documents) Replace(ctx context.Context, doc model.ShoppingList) (*model.ShoppingList, error) {
	if err := apperror.Validation(checkItems(doc.Items)...); err != nil {
		return nil, err
	}

	list, err := d.store.GetList(ctx, doc.ID)
	if err != nil {
		return nil, err
	}
	list.Name = doc.Name
	list.Members = model.NormalizeMembers(list.Owner, doc.Members)
	if err := d.store.UpdateList(ctx, list); err != nil {
		return nil, err
	}

	stored, err := d.store.ListItems(ctx, list.ID)
	if err != nil {
		return nil, err
	}
	existing := make(map[string]bool, len(stored))
	for _, it := range stored {
		existing[it.ID] = true
	}

	keep := make(map[string]bool, len(doc.Items))
	for _, in := range doc.Items {
		item := model.Item{ListID: list.ID, Name: strings.TrimSpace(in.Name), Done: in.Done}
		if in.ID != "" && existing[in.ID] && !keep[in.ID] {
			item.ID = in.ID
			if err := d.store.UpdateItem(ctx, &item); err != nil {
				return nil, err
			}
		} else if err := d.store.CreateItem(ctx, &item); err != nil {
			return nil, err
		}
		keep[item.ID] = true
	}
	for _, it := range stored {
		if !keep[it.ID] {
			if err := d.store.DeleteItem(ctx, list.ID, it.ID); err != nil {
				return nil, err
			}
		}
	}

	list.Items, err = d.store.ListItems(ctx, list.ID)
	if err != nil {
		return nil, err
	}
	return list, nil
}

// Delete removes the list and its items.
func (d *Documents) Delete(ctx context.Context, id string) error {
	return d.store.DeleteList(ctx, id)
}

func checkItems(items []model.Item) []apperror.FieldError {
	var fields []apperror.FieldError
	for i, it := range items {
		if strings.TrimSpace(it.Name) == "" {
			fields = append(fields, apperror.FieldError{
				Field:   fmt.Sprintf("items[%d].name", i),
				Message: "item name is required",
			})
		}
	}
	return fields
}
