// Package service contains the business logic layer of the application.
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, authorizes, orchestrates
//	Repository (Data layer)  → reads/writes the store
//
// Every operation follows the same order: validate input, pass the role gate,
// load the referenced list (404), authorize against it (403), then load any
// referenced item (404) and mutate. Validation and the role gate run before
// any store access.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/shopping-list/internal/access"
	"github.com/sakif/shopping-list/internal/apperror"
	"github.com/sakif/shopping-list/internal/model"
	"github.com/sakif/shopping-list/internal/repository"
)

// ShoppingListService handles business logic for lists and their items.
type ShoppingListService struct {
	repo   repository.Store
	policy access.Policy
	logger *slog.Logger
}

// NewShoppingListService creates a ShoppingListService. The caller decides which
// store (sqlite, memory) and which policy to inject.
func NewShoppingListService(repo repository.Store, policy access.Policy, logger *slog.Logger) *ShoppingListService {
	return &ShoppingListService{
		repo:   repo,
		policy: policy,
		logger: logger,
	}
}

// ListUpdate carries the optional fields of an owner's list update.
// A nil field is left unchanged.
type ListUpdate struct {
	Name    *string
	Members *[]string
}

// CreateList validates and saves a new list owned by caller.
// members defaults to empty; the owner is never kept in it.
func (s *ShoppingListService) CreateList(ctx context.Context, caller, name string, members []string) (*model.ShoppingList, error) {
	var fe fieldErrors
	name = fe.checkName("name", name, "list", MaxListNameLength)
	fe.checkMembers("members", members)
	if err := fe.err(); err != nil {
		return nil, err
	}

	if err := s.policy.Gate(caller, access.ActionCreateList); err != nil {
		return nil, err
	}

	list := &model.ShoppingList{
		Name:    name,
		Owner:   caller,
		Members: model.NormalizeMembers(caller, members),
	}
	if err := s.repo.CreateList(ctx, list); err != nil {
		return nil, s.storageFailure("create list", err)
	}
	list.Items = []model.Item{}

	s.logger.Info("shopping list created",
		slog.String("id", list.ID),
		slog.String("owner", list.Owner),
		slog.Int("members", len(list.Members)),
	)
	return list, nil
}

// ListLists returns the full collection of lists (without items).
func (s *ShoppingListService) ListLists(ctx context.Context) ([]model.ShoppingList, error) {
	lists, err := s.repo.ListLists(ctx)
	if err != nil {
		return nil, s.storageFailure("list lists", err)
	}
	return lists, nil
}

// GetList returns one list together with its items.
func (s *ShoppingListService) GetList(ctx context.Context, id string) (*model.ShoppingList, error) {
	var fe fieldErrors
	fe.checkID("id", id, "list")
	if err := fe.err(); err != nil {
		return nil, err
	}

	list, err := s.repo.GetList(ctx, id)
	if err != nil {
		return nil, s.storageFailure("get list", err)
	}
	items, err := s.repo.ListItems(ctx, id)
	if err != nil {
		return nil, s.storageFailure("get list items", err)
	}
	list.Items = items
	return list, nil
}

// UpdateList renames the list and/or replaces its members. Owner only.
// Member changes are persisted immediately, like item edits.
func (s *ShoppingListService) UpdateList(ctx context.Context, caller, id string, upd ListUpdate) (*model.ShoppingList, error) {
	var fe fieldErrors
	fe.checkID("id", id, "list")
	var name string
	if upd.Name != nil {
		name = fe.checkName("name", *upd.Name, "list", MaxListNameLength)
	}
	if upd.Members != nil {
		fe.checkMembers("members", *upd.Members)
	}
	if upd.Name == nil && upd.Members == nil {
		fe.add("name", "nothing to update: provide name or members")
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	if err := s.policy.Gate(caller, access.ActionUpdateList); err != nil {
		return nil, err
	}

	list, err := s.loadList(ctx, caller, id, access.ActionUpdateList)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		list.Name = name
	}
	if upd.Members != nil {
		list.Members = model.NormalizeMembers(list.Owner, *upd.Members)
	}

	if err := s.repo.UpdateList(ctx, list); err != nil {
		return nil, s.storageFailure("update list", err)
	}

	s.logger.Info("shopping list updated",
		slog.String("id", list.ID),
		slog.String("name", list.Name),
		slog.Int("members", len(list.Members)),
	)
	return s.withItems(ctx, list)
}

// LeaveList removes caller from the list's members.
func (s *ShoppingListService) LeaveList(ctx context.Context, caller, id string) (*model.ShoppingList, error) {
	var fe fieldErrors
	fe.checkID("id", id, "list")
	if err := fe.err(); err != nil {
		return nil, err
	}
	if err := s.policy.Gate(caller, access.ActionLeaveList); err != nil {
		return nil, err
	}

	list, err := s.loadList(ctx, caller, id, access.ActionLeaveList)
	if err != nil {
		return nil, err
	}

	remaining := make([]string, 0, len(list.Members))
	for _, m := range list.Members {
		if m != caller {
			remaining = append(remaining, m)
		}
	}
	list.Members = remaining

	if err := s.repo.UpdateList(ctx, list); err != nil {
		return nil, s.storageFailure("leave list", err)
	}

	s.logger.Info("member left shopping list",
		slog.String("id", list.ID),
		slog.String("member", caller),
	)
	return list, nil
}

// DeleteList deletes the list and, in the same store operation, all its items.
// Owner only.
func (s *ShoppingListService) DeleteList(ctx context.Context, caller, id string) error {
	var fe fieldErrors
	fe.checkID("id", id, "list")
	if err := fe.err(); err != nil {
		return err
	}
	if err := s.policy.Gate(caller, access.ActionDeleteList); err != nil {
		return err
	}

	if _, err := s.loadList(ctx, caller, id, access.ActionDeleteList); err != nil {
		return err
	}

	if err := s.repo.DeleteList(ctx, id); err != nil {
		return s.storageFailure("delete list", err)
	}

	s.logger.Info("shopping list deleted", slog.String("id", id), slog.String("owner", caller))
	return nil
}

// loadList fetches the list and authorizes caller against it.
func (s *ShoppingListService) loadList(ctx context.Context, caller, id string, action access.Action) (*model.ShoppingList, error) {
	list, err := s.repo.GetList(ctx, id)
	if err != nil {
		return nil, s.storageFailure("get list", err)
	}
	if err := s.policy.Authorize(caller, action, list); err != nil {
		s.logger.Warn("access denied",
			slog.String("list", id),
			slog.String("caller", caller),
			slog.String("action", string(action)),
		)
		return nil, err
	}
	return list, nil
}

func (s *ShoppingListService) withItems(ctx context.Context, list *model.ShoppingList) (*model.ShoppingList, error) {
	items, err := s.repo.ListItems(ctx, list.ID)
	if err != nil {
		return nil, s.storageFailure("get list items", err)
	}
	list.Items = items
	return list, nil
}

// storageFailure logs store failures and passes every error through wrapped.
// Not-found is a normal outcome and is not logged.
func (s *ShoppingListService) storageFailure(op string, err error) error {
	if errors.Is(err, apperror.ErrStorage) {
		s.logger.Error("storage operation failed",
			slog.String("op", op),
			slog.String("error", err.Error()),
		)
	}
	return fmt.Errorf("%s: %w", op, err)
}
