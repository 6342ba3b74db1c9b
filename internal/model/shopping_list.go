// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data: plain values with JSON tags,
// no behaviour beyond a few helpers that keep invariants in one place.
package model

import (
	"strings"
	"time"
)

// ShoppingList is a named collection of items with one owner and zero or more members.
//
// OWNER vs MEMBERS:
// Owner is set once at creation (the caller who created the list) and never changes.
// Members is the set of other users allowed to work with the list's items.
// The owner is never stored in Members (see NormalizeMembers).
//
// Items is only populated when a list is loaded together with its items
// (GetByID in the service layer, the mock server's whole-document shape).
type ShoppingList struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Owner     string    `json:"owner"`
	Members   []string  `json:"members"`
	Items     []Item    `json:"items,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Item is a named, checkable unit belonging to exactly one list.
//
// The JSON field for the flag is "done". ListID is the owning-list reference and
// is immutable after creation.
type Item struct {
	ID        string    `json:"id"`
	ListID    string    `json:"listId,omitempty"`
	Name      string    `json:"name"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsOwner reports whether user owns the list.
func (l *ShoppingList) IsOwner(user string) bool {
	return user != "" && l.Owner == user
}

// IsMember reports whether user is in the list's members set.
func (l *ShoppingList) IsMember(user string) bool {
	if user == "" {
		return false
	}
	for _, m := range l.Members {
		if m == user {
			return true
		}
	}
	return false
}

// CanAccess reports whether user is the owner or a member of the list.
func (l *ShoppingList) CanAccess(user string) bool {
	return l.IsOwner(user) || l.IsMember(user)
}

// NormalizeMembers returns members trimmed, with blanks, duplicates and the owner removed.
// Order of first appearance is kept. The result is never nil, so it always
// serializes as a JSON array.
func NormalizeMembers(owner string, members []string) []string {
	out := make([]string, 0, len(members))
	seen := make(map[string]struct{}, len(members))
	for _, m := range members {
		m = strings.TrimSpace(m)
		if m == "" || m == owner {
			continue
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}
