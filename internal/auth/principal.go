package auth

import "context"

// AuthMethod values recorded on the principal.
const (
	MethodSession = "session"
	MethodBearer  = "bearer"
)

// Principal is the authenticated caller with its role resolved, attached to
// the request context by the auth middleware.
type Principal struct {
	UserID         int64
	Username       string
	Email          string
	FullName       string
	OrganizationID *int64
	RoleID         *int64
	RoleName       string
	Permissions    []string
	Method         string
}

// Can applies the permission gate for this principal's role.
func (p *Principal) Can(permission string) bool {
	if p == nil {
		return false
	}
	return HasPermission(p.Permissions, permission)
}

type principalContextKey struct{}

func WithPrincipal(ctx context.Context, principal *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, principal)
}

func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	principal, ok := ctx.Value(principalContextKey{}).(*Principal)
	if !ok || principal == nil {
		return nil, false
	}
	return principal, true
}
