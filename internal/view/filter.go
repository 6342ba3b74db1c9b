// Package view holds the screen state of the shopping-list client: which
// lists or items are shown, which dialogs are open and what the user is
// editing. Controllers mirror the remote store through a client.Store and
// replace their local copy with whatever the store returns after each
// mutation. A failed call leaves the previous state in place.
package view

import (
	"fmt"
	"strings"

	"github.com/sakif/shopping-list/internal/model"
)

// Filter selects which items of a list are shown.
type Filter string

const (
	FilterAll    Filter = "all"
	FilterDone   Filter = "done"
	FilterUndone Filter = "undone"
)

// ParseFilter accepts "all", "done" or "undone", case-insensitively.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case FilterAll, FilterDone, FilterUndone:
		return f, nil
	default:
		return "", fmt.Errorf("view: unknown filter %q", s)
	}
}

// FilterItems returns the items matching f in their original order. Done and
// undone partition the full set. Any unrecognised filter behaves like "all".
func FilterItems(items []model.Item, f Filter) []model.Item {
	out := make([]model.Item, 0, len(items))
	for _, it := range items {
		switch f {
		case FilterDone:
			if !it.Done {
				continue
			}
		case FilterUndone:
			if it.Done {
				continue
			}
		}
		out = append(out, it)
	}
	return out
}
