package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/readpath/readpath-api/internal/api/shared"
)

// UserIDHeader carries the caller's identity. Authentication itself is
// terminated upstream; this service trusts the header the gateway set.
const UserIDHeader = "X-User-ID"

// IdentityMiddleware extracts the caller's user ID from the identity
// header and stores it in the request context. Requests without a valid
// user ID are rejected.
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(UserIDHeader)
		if raw == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Missing user identity")
			return
		}

		userID, err := uuid.Parse(raw)
		if err != nil || userID == uuid.Nil {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid user identity")
			return
		}

		ctx := context.WithValue(r.Context(), shared.UserIDContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserIDFromContext retrieves the authenticated user ID placed in the
// context by IdentityMiddleware.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}
