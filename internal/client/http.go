package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sakif/shopping-list/internal/model"
)

const listsPath = "/shoppingLists"

// HTTP talks to the mock server's /shoppingLists resource.
type HTTP struct {
	baseURL    string
	httpClient *http.Client
}

var _ Store = (*HTTP)(nil)

// NewHTTP creates a client for the backend at baseURL.
func NewHTTP(baseURL string, timeout time.Duration) *HTTP {
	return &HTTP{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *HTTP) FetchAll(ctx context.Context) ([]model.ShoppingList, error) {
	var lists []model.ShoppingList
	if err := c.do(ctx, http.MethodGet, listsPath, nil, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

func (c *HTTP) Create(ctx context.Context, list model.ShoppingList) (*model.ShoppingList, error) {
	var created model.ShoppingList
	if err := c.do(ctx, http.MethodPost, listsPath, list, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *HTTP) Update(ctx context.Context, list model.ShoppingList) (*model.ShoppingList, error) {
	var saved model.ShoppingList
	if err := c.do(ctx, http.MethodPut, listsPath+"/"+url.PathEscape(list.ID), list, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (c *HTTP) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, listsPath+"/"+url.PathEscape(id), nil, nil)
}

// do sends body as JSON (when non-nil) and decodes the response into out
// (when non-nil).
func (c *HTTP) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		rdr = bytes.NewReader(buf)
	}

	target := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, target, rdr)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Method: method, URL: target, StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
