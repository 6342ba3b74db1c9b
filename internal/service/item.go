package service

import (
	"context"
	"log/slog"

	"github.com/sakif/shopping-list/internal/access"
	"github.com/sakif/shopping-list/internal/model"
)

// AddItem appends a new, not-done item to the list. Owner or member only.
func (s *ShoppingListService) AddItem(ctx context.Context, caller, listID, name string) (*model.Item, error) {
	var fe fieldErrors
	fe.checkID("listId", listID, "list")
	name = fe.checkName("name", name, "item", MaxItemNameLength)
	if err := fe.err(); err != nil {
		return nil, err
	}
	if err := s.policy.Gate(caller, access.ActionMutateItems); err != nil {
		return nil, err
	}
	if _, err := s.loadList(ctx, caller, listID, access.ActionMutateItems); err != nil {
		return nil, err
	}

	item := &model.Item{ListID: listID, Name: name}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, s.storageFailure("create item", err)
	}

	s.logger.Info("item added",
		slog.String("list", listID),
		slog.String("item", item.ID),
		slog.String("by", caller),
	)
	return item, nil
}

// SetItemDone sets the item's done flag. Setting the value it already has
// succeeds and leaves the item unchanged apart from its timestamp.
func (s *ShoppingListService) SetItemDone(ctx context.Context, caller, listID, itemID string, done bool) (*model.Item, error) {
	item, err := s.loadItem(ctx, caller, listID, itemID)
	if err != nil {
		return nil, err
	}

	item.Done = done
	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, s.storageFailure("update item", err)
	}

	s.logger.Info("item checked",
		slog.String("list", listID),
		slog.String("item", itemID),
		slog.Bool("done", done),
	)
	return item, nil
}

// RenameItem changes the item's name. Owner or member only.
func (s *ShoppingListService) RenameItem(ctx context.Context, caller, listID, itemID, name string) (*model.Item, error) {
	var fe fieldErrors
	fe.checkID("listId", listID, "list")
	fe.checkID("itemId", itemID, "item")
	name = fe.checkName("name", name, "item", MaxItemNameLength)
	if err := fe.err(); err != nil {
		return nil, err
	}

	item, err := s.loadItem(ctx, caller, listID, itemID)
	if err != nil {
		return nil, err
	}

	item.Name = name
	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, s.storageFailure("rename item", err)
	}

	s.logger.Info("item renamed", slog.String("list", listID), slog.String("item", itemID))
	return item, nil
}

// DeleteItem removes one item from the list. Owner or member only.
func (s *ShoppingListService) DeleteItem(ctx context.Context, caller, listID, itemID string) error {
	if _, err := s.loadItem(ctx, caller, listID, itemID); err != nil {
		return err
	}
	if err := s.repo.DeleteItem(ctx, listID, itemID); err != nil {
		return s.storageFailure("delete item", err)
	}

	s.logger.Info("item deleted", slog.String("list", listID), slog.String("item", itemID))
	return nil
}

// loadItem runs the shared preamble of every item mutation: validate both
// ids, pass the gate, load and authorize the list, then load the item from
// that list.
func (s *ShoppingListService) loadItem(ctx context.Context, caller, listID, itemID string) (*model.Item, error) {
	var fe fieldErrors
	fe.checkID("listId", listID, "list")
	fe.checkID("itemId", itemID, "item")
	if err := fe.err(); err != nil {
		return nil, err
	}
	if err := s.policy.Gate(caller, access.ActionMutateItems); err != nil {
		return nil, err
	}
	if _, err := s.loadList(ctx, caller, listID, access.ActionMutateItems); err != nil {
		return nil, err
	}

	item, err := s.repo.GetItem(ctx, listID, itemID)
	if err != nil {
		return nil, s.storageFailure("get item", err)
	}
	return item, nil
}
