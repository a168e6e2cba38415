package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/comptoir-erp/comptoir-erp/internal/platform/httpx"
)

// UserIDHeader carries the authenticated user id, set by the upstream
// session/token layer this core delegates authentication to.
const UserIDHeader = "X-User-Id"

// Middleware resolves the identity for each request and stores it in the
// request context. Requests without a resolvable identity are rejected.
type Middleware struct {
	Provider Provider
	Logger   *slog.Logger
}

// RequireIdentity rejects requests that carry no resolvable identity.
func (m Middleware) RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(UserIDHeader)
		identity, err := m.Provider.Resolve(r.Context(), userID)
		if err != nil {
			if !errors.Is(err, ErrNoIdentity) && m.Logger != nil {
				m.Logger.Error("resolve identity", slog.Any("error", err))
			}
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), identity)))
	})
}
