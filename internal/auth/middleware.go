package auth

import (
	"context"
	"net/http"
	"strings"
)

// UserIDHeader carries the caller's identity on every request.
const UserIDHeader = "user-id"

// contextKey is an unexported type used for context keys in this package,
// so no other package can read or shadow the stored identity.
type contextKey string

const (
	userIDKey     contextKey = "userID"
	callerSlotKey contextKey = "callerSlot"
)

// Identify is a middleware that resolves the caller and stores it in the
// request context. It never blocks a request for a MISSING identity: the
// service layer decides per operation whether one is required. A bearer token
// that is present but invalid is rejected with 401.
//
// tokens may be nil, in which case only the user-id header is used.
func Identify(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := extractUserID(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","message":"invalid bearer token"}`))
				return
			}
			if userID != "" {
				r = r.WithContext(WithUserID(r.Context(), userID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithUserID returns a copy of ctx carrying userID. If ctx holds a caller
// slot, userID is recorded there too.
func WithUserID(ctx context.Context, userID string) context.Context {
	if slot, ok := ctx.Value(callerSlotKey).(*string); ok {
		*slot = userID
	}
	return context.WithValue(ctx, userIDKey, userID)
}

// WithCallerSlot returns a context whose caller, once resolved further down
// the handler chain, is reported by the returned func. Middleware mounted
// outside Identify never sees the request Identify derives, so this is how a
// request logger learns who made the call.
func WithCallerSlot(ctx context.Context) (context.Context, func() string) {
	slot := new(string)
	return context.WithValue(ctx, callerSlotKey, slot), func() string { return *slot }
}

// UserIDFromContext retrieves the caller's ID from the request context.
// Returns ("", false) for anonymous requests.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// extractUserID prefers a bearer token when token auth is enabled, and falls
// back to the user-id header.
func extractUserID(r *http.Request, tokens *TokenService) (string, error) {
	if tokens != nil {
		if raw, ok := bearerToken(r); ok {
			return tokens.Validate(raw)
		}
	}
	return strings.TrimSpace(r.Header.Get(UserIDHeader)), nil
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
