package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/JonMunkholm/flatbridge/internal/auth"
	"github.com/JonMunkholm/flatbridge/internal/core"
	"github.com/JonMunkholm/flatbridge/internal/logging"
)

// Authenticator validates bearer tokens. *core.Service satisfies it.
type Authenticator interface {
	Authenticate(token string) (*auth.Claims, error)
}

// BearerAuth requires "Authorization: Bearer <token>". The authenticated
// user id is stored with core.ContextWithUserID and added to the request
// logger.
func BearerAuth(a Authenticator, fail FailFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				fail(w, r, fmt.Errorf("%w: missing bearer token", auth.ErrInvalidToken), http.StatusUnauthorized)
				return
			}

			claims, err := a.Authenticate(token)
			if err != nil {
				fail(w, r, err, http.StatusUnauthorized)
				return
			}

			ctx := core.ContextWithUserID(r.Context(), claims.UserID)
			ctx = logging.WithLogger(ctx, logging.FromContext(r.Context()).With("user_id", claims.UserID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
