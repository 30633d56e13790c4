package domain

import "context"

type CtxKey string

const (
	KeyUserID     CtxKey = "UserID"
	KeyUserEmail  CtxKey = "Email"
	KeyUserRole   CtxKey = "Role"
	KeyLineID     CtxKey = "LineID"
	KeyDepartment CtxKey = "Department"
	KeyPrincipal  CtxKey = "Principal"
)

// WithPrincipal stores the authenticated caller on ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, KeyPrincipal, p)
}

// PrincipalFromContext returns the caller stored by WithPrincipal.
// The zero Principal (anonymous, no role) is returned when none is set.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(KeyPrincipal).(Principal)
	return p, ok
}
