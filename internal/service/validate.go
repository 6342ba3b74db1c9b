package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/xid"

	"github.com/sakif/shopping-list/internal/apperror"
)

// Validation constants.
const (
	MaxListNameLength = 100
	MaxItemNameLength = 200
	MaxMembers        = 50
)

// fieldErrors accumulates validation failures so a request reports every
// invalid field at once.
type fieldErrors []apperror.FieldError

func (f *fieldErrors) add(field, format string, args ...any) {
	*f = append(*f, apperror.FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (f fieldErrors) err() error {
	return apperror.Validation(f...)
}

// checkID records an error unless id is a well-formed store identifier.
func (f *fieldErrors) checkID(field, id, label string) {
	if _, err := xid.FromString(id); err != nil {
		f.add(field, "invalid %s id", label)
	}
}

// checkName trims name and records an error if it is empty or too long.
func (f *fieldErrors) checkName(field, name, label string, max int) string {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		f.add(field, "%s name is required", label)
	case utf8.RuneCountInString(name) > max:
		f.add(field, "%s name must be %d characters or less", label, max)
	}
	return name
}

func (f *fieldErrors) checkMembers(field string, members []string) {
	if len(members) > MaxMembers {
		f.add(field, "a list can have at most %d members", MaxMembers)
	}
}

// ValidID reports whether id is a well-formed store identifier.
func ValidID(id string) bool {
	_, err := xid.FromString(id)
	return err == nil
}
