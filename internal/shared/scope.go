package shared

import "context"

// Scope carries the authenticated caller and its organizational context.
// It is passed explicitly into services instead of living in ambient state;
// audit stamps (created_by/updated_by/deleted_by) are derived from it.
type Scope struct {
	UserID       int64
	CompanyID    int64
	BranchID     *int64
	FiscalYearID *int64
}

// Valid reports whether the scope identifies a caller and a company.
func (s Scope) Valid() bool {
	return s.UserID > 0 && s.CompanyID > 0
}

type scopeContextKey struct{}

// ContextWithScope stores the request scope in context.
func ContextWithScope(ctx context.Context, scope Scope) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, scope)
}

// ScopeFromContext extracts the request scope from context.
func ScopeFromContext(ctx context.Context) Scope {
	scope, _ := ctx.Value(scopeContextKey{}).(Scope)
	return scope
}
