package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sakif/shopping-list/internal/apperror"
	"github.com/sakif/shopping-list/internal/service"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// jsonBody is a request body decoded one level deep. Field values stay raw so
// their JSON type can be checked exactly: a number is not accepted where a
// string is expected, and null counts as absent.
type jsonBody struct {
	fields map[string]json.RawMessage
	errs   []apperror.FieldError
}

// readBody decodes the request body as a JSON object. An empty body is an
// empty object.
func readBody(w http.ResponseWriter, r *http.Request) (*jsonBody, error) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, apperror.ValidationFailed("body", "request body is too large or unreadable")
	}
	b := &jsonBody{fields: map[string]json.RawMessage{}}
	if len(bytes.TrimSpace(raw)) == 0 {
		return b, nil
	}
	if err := json.Unmarshal(raw, &b.fields); err != nil {
		return nil, apperror.ValidationFailed("body", "request body must be a JSON object")
	}
	return b, nil
}

func (b *jsonBody) present(field string) bool {
	v, ok := b.fields[field]
	return ok && !bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

// String returns the field as a string. ok is false when the field is absent.
func (b *jsonBody) String(field string, required bool) (value string, ok bool) {
	if !b.present(field) {
		if required {
			b.fail(field, "%s is required", field)
		}
		return "", false
	}
	if err := json.Unmarshal(b.fields[field], &value); err != nil {
		b.fail(field, "%s must be a string", field)
		return "", false
	}
	return value, true
}

// StringSlice returns the field as a list of strings.
func (b *jsonBody) StringSlice(field string) (value []string, ok bool) {
	if !b.present(field) {
		return nil, false
	}
	if err := json.Unmarshal(b.fields[field], &value); err != nil {
		b.fail(field, "%s must be an array of strings", field)
		return nil, false
	}
	return value, true
}

// Bool returns the field as a boolean.
func (b *jsonBody) Bool(field string, required bool) (value bool, ok bool) {
	if !b.present(field) {
		if required {
			b.fail(field, "%s is required", field)
		}
		return false, false
	}
	if err := json.Unmarshal(b.fields[field], &value); err != nil {
		b.fail(field, "%s must be a boolean", field)
		return false, false
	}
	return value, true
}

func (b *jsonBody) fail(field, format string, args ...any) {
	b.errs = append(b.errs, apperror.FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// pathID is a path parameter that must be a store identifier.
type pathID struct {
	field, value, label string
}

// Err reports every type failure seen so far, or nil. When the body has type
// failures the service is never reached, so malformed path ids are reported
// here alongside them.
func (b *jsonBody) Err(ids ...pathID) error {
	if len(b.errs) == 0 {
		return nil
	}
	for _, id := range ids {
		if !service.ValidID(id.value) {
			b.fail(id.field, "invalid %s id", id.label)
		}
	}
	return apperror.Validation(b.errs...)
}
