// Package access is the authorization gate for shopping list operations.
//
// Two checks exist, applied in this order by the service layer:
//
//  1. Gate(user, action): uses only the static identity→role table. It runs
//     before any store access, so a caller without the right role never
//     causes a read.
//  2. Authorize(user, action, list): uses the loaded list's owner and members.
//
// Roles come from configuration ("user1:owner,user2:member"), not from code.
package access

import (
	"fmt"
	"strings"

	"github.com/sakif/shopping-list/internal/apperror"
	"github.com/sakif/shopping-list/internal/model"
)

type Role string
type Action string

const (
	RoleNone   Role = ""
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)

const (
	ActionCreateList  Action = "create-list"
	ActionReadList    Action = "read-list"
	ActionUpdateList  Action = "update-list"
	ActionDeleteList  Action = "delete-list"
	ActionMutateItems Action = "mutate-items"
	ActionLeaveList   Action = "leave-list"
)

// Policy decides whether a caller may perform an action.
type Policy interface {
	RoleOf(user string) Role
	Gate(user string, action Action) error
	Authorize(user string, action Action, list *model.ShoppingList) error
}

// StaticPolicy resolves roles from a fixed table.
type StaticPolicy struct {
	roles       map[string]Role
	defaultRole Role
}

var _ Policy = (*StaticPolicy)(nil)

// NewStaticPolicy builds a policy from a role table. defaultRole applies to
// identities missing from the table; RoleNone grants nothing.
func NewStaticPolicy(roles map[string]Role, defaultRole Role) *StaticPolicy {
	table := make(map[string]Role, len(roles))
	for u, r := range roles {
		table[u] = r
	}
	return &StaticPolicy{roles: table, defaultRole: defaultRole}
}

// RoleOf returns the caller's table role.
func (p *StaticPolicy) RoleOf(user string) Role {
	if user == "" {
		return RoleNone
	}
	if r, ok := p.roles[user]; ok {
		return r
	}
	return p.defaultRole
}

// Gate performs the role-table check. Reads are open; every other action
// needs an identified caller, and list-level management needs the owner role.
func (p *StaticPolicy) Gate(user string, action Action) error {
	if action == ActionReadList {
		return nil
	}
	if user == "" {
		return apperror.Forbidden("Forbidden: caller identity is required")
	}
	switch action {
	case ActionCreateList, ActionUpdateList, ActionDeleteList:
		if p.RoleOf(user) != RoleOwner {
			return apperror.Forbidden("Forbidden: Insufficient permissions")
		}
	}
	return nil
}

// Authorize checks the caller against a loaded list.
func (p *StaticPolicy) Authorize(user string, action Action, list *model.ShoppingList) error {
	switch action {
	case ActionReadList, ActionCreateList:
		return nil
	case ActionUpdateList, ActionDeleteList:
		if !list.IsOwner(user) {
			return apperror.Forbidden("Forbidden: only the owner can manage this list")
		}
	case ActionMutateItems:
		if !list.CanAccess(user) {
			return apperror.Forbidden("Forbidden: Access denied")
		}
	case ActionLeaveList:
		if !list.IsMember(user) {
			return apperror.Forbidden("Forbidden: only members can leave a list")
		}
	default:
		return apperror.Forbidden(fmt.Sprintf("Forbidden: unknown action %q", action))
	}
	return nil
}

// ParseRole maps a configured role name onto a Role, case-insensitively.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleNone, RoleOwner, RoleMember:
		return r, nil
	default:
		return RoleNone, fmt.Errorf("access: unknown role %q", s)
	}
}

// ParseRoles parses "user:role" pairs separated by commas, e.g.
// "user1:owner,user2:member". Blank entries are skipped.
func ParseRoles(table string) (map[string]Role, error) {
	roles := make(map[string]Role)
	for _, entry := range strings.Split(table, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		user, roleName, ok := strings.Cut(entry, ":")
		user = strings.TrimSpace(user)
		if !ok || user == "" {
			return nil, fmt.Errorf("access: malformed role entry %q, want user:role", entry)
		}
		role, err := ParseRole(roleName)
		if err != nil {
			return nil, err
		}
		roles[user] = role
	}
	return roles, nil
}
