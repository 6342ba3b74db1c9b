// Package client is the data-sync layer between the view controllers and a
// list backend. Every call either reaches the mock server over HTTP or is
// served from an in-memory collection; results come back unmodified and
// failures propagate to the caller. There is no retry, caching or offline
// queue.
package client

import (
	"context"
	"fmt"

	"github.com/sakif/shopping-list/internal/config"
	"github.com/sakif/shopping-list/internal/mockserver"
	"github.com/sakif/shopping-list/internal/model"
)

// Store is the sync contract the view controllers depend on.
type Store interface {
	FetchAll(ctx context.Context) ([]model.ShoppingList, error)
	Create(ctx context.Context, list model.ShoppingList) (*model.ShoppingList, error)
	// Update replaces the whole stored document list.ID with list.
	Update(ctx context.Context, list model.ShoppingList) (*model.ShoppingList, error)
	Delete(ctx context.Context, id string) error
}

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status=%d body=%s", e.Method, e.URL, e.StatusCode, e.Body)
}

// New picks the implementation from configuration. The in-memory mock starts
// with the same sample lists the mock server is seeded with.
func New(cfg *config.Config) Store {
	if cfg.Client.UseMock {
		return NewMock(mockserver.SampleLists())
	}
	return NewHTTP(cfg.Client.BaseURL, cfg.Client.Timeout)
}
