package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/fnpsdn/netinv/internal/server/auth"
)

type ctxKey string

const accountIDKey ctxKey = "accountID"

// AccountID returns the authenticated account ID stored by the auth
// middleware, or "" for unauthenticated requests.
func AccountID(ctx context.Context) string {
	id, _ := ctx.Value(accountIDKey).(string)
	return id
}

// requireToken rejects requests without a valid bearer token and stashes
// the token subject in the request context.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing_token", "missing token")
			return
		}

		accountID, err := auth.GetAccountIDFromToken(token, s.jwtSecret)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), accountIDKey, accountID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
