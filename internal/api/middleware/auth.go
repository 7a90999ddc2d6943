package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/warebase/server/internal/api/problem"
	"github.com/warebase/server/internal/auth"
	"github.com/warebase/server/internal/domain/roles"
	"github.com/warebase/server/internal/domain/users"
)

// Authenticator resolves the request principal from either the session
// cookie or an Authorization bearer token. The role and its permissions are
// loaded from storage on every request so role edits and revocations take
// effect immediately.
type Authenticator struct {
	Sessions   *auth.SessionManager
	Tokens     *auth.JWTManager
	Users      users.Repository
	Roles      roles.Repository
	CookieName string
	Env        string
}

// Principal attaches the authenticated principal to the request context when
// credentials are present and valid. Requests without credentials pass
// through unauthenticated; RequireAuth and RequirePermission do the
// rejecting.
func (a *Authenticator) Principal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := a.resolve(r)
		if principal != nil {
			r = r.WithContext(auth.WithPrincipal(r.Context(), principal))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth rejects unauthenticated requests with a 401 problem.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.PrincipalFromContext(r.Context()); !ok {
			problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Authentication required", nil, a.Env)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePermission gates a route on one permission string. Unauthenticated
// requests get 401 before the gate runs; authenticated principals whose role
// does not grant the permission (exactly, or via the "all" wildcard) get 403.
func (a *Authenticator) RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := auth.PrincipalFromContext(r.Context())
			if !ok {
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Authentication required", nil, a.Env)
				return
			}
			if !principal.Can(permission) {
				problem.Write(w, r, http.StatusForbidden, problem.TypeForbidden, "Insufficient permissions", nil, a.Env,
					problem.WithDetail("missing permission: "+permission))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (a *Authenticator) resolve(r *http.Request) *auth.Principal {
	if user, method := a.resolveUser(r); user != nil {
		return a.buildPrincipal(r, user, method)
	}
	return nil
}

func (a *Authenticator) resolveUser(r *http.Request) (*users.User, string) {
	// Bearer tokens win over cookies so API clients behind a browser
	// session still act as the token's subject.
	if header := strings.TrimSpace(r.Header.Get("Authorization")); header != "" && a.Tokens != nil {
		token, err := auth.TokenFromHeader(header)
		if err != nil {
			return nil, ""
		}
		claims, err := a.Tokens.Validate(token)
		if err != nil {
			return nil, ""
		}
		userID, err := claims.UserID()
		if err != nil {
			return nil, ""
		}
		user, err := a.Users.GetByID(r.Context(), userID)
		if err != nil || !user.Active {
			return nil, ""
		}
		return user, auth.MethodBearer
	}

	if a.Sessions == nil || a.CookieName == "" {
		return nil, ""
	}
	cookie, err := r.Cookie(a.CookieName)
	if err != nil || strings.TrimSpace(cookie.Value) == "" {
		return nil, ""
	}
	session, err := a.Sessions.Validate(r.Context(), cookie.Value)
	if err != nil {
		return nil, ""
	}
	user, err := a.Users.GetByID(r.Context(), session.UserID)
	if err != nil || !user.Active {
		return nil, ""
	}
	return user, auth.MethodSession
}

func (a *Authenticator) buildPrincipal(r *http.Request, user *users.User, method string) *auth.Principal {
	principal := &auth.Principal{
		UserID:         user.ID,
		Username:       user.Username,
		Email:          user.Email,
		FullName:       user.FullName,
		OrganizationID: user.OrganizationID,
		RoleID:         user.RoleID,
		Method:         method,
	}
	if user.RoleID != nil && a.Roles != nil {
		role, err := a.Roles.GetByID(r.Context(), *user.RoleID)
		if err == nil {
			principal.RoleName = role.Name
			principal.Permissions = role.Permissions
		} else if !errors.Is(err, roles.ErrNotFound) {
			// Storage failure: treat as no permissions rather than
			// failing the request outright.
			principal.Permissions = nil
		}
	}
	return principal
}
