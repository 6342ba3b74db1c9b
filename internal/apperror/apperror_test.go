package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("shopping list", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("name", "name is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Forbidden wraps ErrForbidden",
			err:       Forbidden("not a member"),
			target:    ErrForbidden,
			wantMatch: true,
		},
		{
			name:      "Storage wraps ErrStorage",
			err:       Storage("itemDao.create", 5, errors.New("database is locked")),
			target:    ErrStorage,
			wantMatch: true,
		},
		{
			name:      "wrapped with fmt.Errorf still matches",
			err:       fmt.Errorf("adding item: %w", NotFound("shopping list", "x")),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("shopping list", "abc123"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "Forbidden does NOT match ErrNotFound",
			err:       Forbidden("nope"),
			target:    ErrNotFound,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("item", "abc123"),
			wantMessage: "item not found with id abc123",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("name", "name is required"),
			wantMessage: "name is required",
		},
		{
			name:        "Storage appends the cause",
			err:         Storage("shoppingListDao.find", 0, errors.New("disk I/O error")),
			wantMessage: "database operation failed: disk I/O error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestValidation_CollectsFields(t *testing.T) {
	err := Validation(
		FieldError{Field: "name", Message: "name must be a string"},
		FieldError{Field: "members", Message: "members must be an array of strings"},
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Len(t, appErr.Fields, 2)
	assert.Equal(t, "name", appErr.Field)
	assert.Equal(t, "name must be a string; members must be an array of strings", appErr.Message)
}

func TestValidation_NoFieldsIsNil(t *testing.T) {
	assert.NoError(t, Validation())
}

func TestStorage_KeepsDiagnostics(t *testing.T) {
	cause := errors.New("constraint failed")
	err := Storage("itemDao.update", 787, cause)

	assert.Equal(t, "itemDao.update", err.Op)
	assert.Equal(t, 787, err.Code)
	assert.Same(t, cause, err.Cause)
	assert.Equal(t, ErrStorage, err.Unwrap())
}

func TestValidationFailedField(t *testing.T) {
	err := ValidationFailed("checked", "checked must be a boolean")

	if err.Field != "checked" {
		t.Errorf("Field = %q, want %q", err.Field, "checked")
	}
	if len(err.Fields) != 1 || err.Fields[0].Field != "checked" {
		t.Errorf("Fields = %+v, want one entry for checked", err.Fields)
	}
}
