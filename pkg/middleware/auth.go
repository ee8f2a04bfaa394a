package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	jwtutil "github.com/Dias221467/Campus_Overflow/pkg/jwt"
	"github.com/Dias221467/Campus_Overflow/pkg/logger"
	"github.com/gorilla/mux"
)

type contextKey string

const UserContextKey contextKey = "user"

// TokenVerifier turns a bearer token into the caller's claims. Local JWTs
// and Firebase ID tokens both satisfy it.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*jwtutil.Claims, error)
}

// AuthMiddleware rejects requests without a valid bearer token. The token is
// read from the Authorization header, or from the "token" query parameter
// for websocket upgrades where browsers cannot set headers.
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "missing authorization token")
				return
			}

			claims, err := verifier.Verify(r.Context(), token)
			if err != nil {
				logger.Log.WithError(err).Warn("Rejected token")
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSelf allows the request only when the path variable param equals
// the authenticated user's id.
func RequireSelf(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetUserFromContext(r.Context())
			if claims == nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if mux.Vars(r)[param] != claims.UserID {
				logger.Log.WithField("user_id", claims.UserID).Warn("Forbidden access to another user's resource")
				writeError(w, http.StatusForbidden, "you can only modify your own profile")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetUserFromContext returns the claims stored by AuthMiddleware, or nil.
func GetUserFromContext(ctx context.Context) *jwtutil.Claims {
	claims, _ := ctx.Value(UserContextKey).(*jwtutil.Claims)
	return claims
}

// WithUser stores claims in ctx the same way AuthMiddleware does.
func WithUser(ctx context.Context, claims *jwtutil.Claims) context.Context {
	return context.WithValue(ctx, UserContextKey, claims)
}

func TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
