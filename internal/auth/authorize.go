package auth

import (
	"context"

	"attendance.service/internal/core/model"
)

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID     string
	Role       model.Role
	EmployeeID string
}

// Allowed reports whether identity may use an operation gated by required.
// Managers may use every operation; employees only employee operations.
func Allowed(identity Identity, required model.Role) bool {
	switch identity.Role {
	case model.RoleManager:
		return required.Valid()
	case model.RoleEmployee:
		return required == model.RoleEmployee
	default:
		return false
	}
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity stored by WithIdentity.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
