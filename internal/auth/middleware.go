// Package auth issues and checks the bearer tokens that guard write routes
// and the caller's own profile.
package auth

import (
	"context"
	"net/http"

	"SportHub/pkg/kit"
)

type ctxKey string

const userKey ctxKey = "user"

type User struct {
	ID       string
	Username string
	Role     string
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func UserFromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userKey).(User)
	return u, ok
}

// AuthJWT rejects requests without a valid bearer token and stores the
// caller in the request context.
func AuthJWT(tm *TokenMaker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, ok := kit.BearerToken(r)
			if !ok {
				kit.WriteError(w, r, http.StatusUnauthorized, "missing token", nil)
				return
			}

			claims, err := tm.Parse(tok)
			if err != nil {
				kit.WriteError(w, r, http.StatusUnauthorized, "invalid token", nil)
				return
			}

			ctx := WithUser(r.Context(), User{ID: claims.UserID, Username: claims.Username, Role: claims.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole must run after AuthJWT.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := UserFromContext(r.Context())
			if !ok {
				kit.WriteError(w, r, http.StatusUnauthorized, "no user", nil)
				return
			}
			if u.Role != role && !u.IsAdmin() {
				kit.WriteError(w, r, http.StatusForbidden, "forbidden", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
