package api

import (
	"context"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/warp/leave-engine/auth"
	"github.com/warp/leave-engine/leave"
)

type actorKey struct{}

// Authenticator turns the token verified by jwtauth.Verifier into a
// leave.Actor on the request context. Requests without a valid token get
// 401.
func Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			writeError(w, http.StatusUnauthorized, "Authentication required", err)
			return
		}
		actor, err := auth.ActorFromClaims(claims)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Authentication required", err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey{}, actor)))
	})
}

// RequireRole allows only the listed roles through.
func RequireRole(roles ...leave.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := actorFrom(r.Context())
			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, "Insufficient role", nil)
		})
	}
}

// RequirePrivileged allows managers and admins.
var RequirePrivileged = RequireRole(leave.RoleManager, leave.RoleAdmin)

// RequireAdmin allows admins only.
var RequireAdmin = RequireRole(leave.RoleAdmin)

func actorFrom(ctx context.Context) leave.Actor {
	actor, _ := ctx.Value(actorKey{}).(leave.Actor)
	return actor
}
