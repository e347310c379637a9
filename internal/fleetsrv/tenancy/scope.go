package tenancy

type scopeKind uint8

const (
	scopeInvalid scopeKind = iota
	scopeTenant
	scopeUnscoped
)

// Scope says which tenant's data an operation may see. The zero value is
// invalid: persistence operations given it fail with ErrMissingTenantContext.
type Scope struct {
	kind   scopeKind
	tenant TenantID
	reason string
}

// ForTenant returns a scope restricted to id.
func ForTenant(id TenantID) (Scope, error) {
	if id.IsNil() {
		return Scope{}, ErrMissingTenantContext
	}
	return Scope{kind: scopeTenant, tenant: id}, nil
}

// Unscoped returns a scope that sees every tenant's rows. It is reserved for
// migrations, administrative commands and system jobs. The reason is logged
// when a transaction begins with the scope.
func Unscoped(reason string) Scope {
	return Scope{kind: scopeUnscoped, reason: reason}
}

func (s Scope) Validate() error {
	if s.kind == scopeInvalid {
		return ErrMissingTenantContext
	}
	return nil
}

// TenantID returns the scoped tenant. ok is false for unscoped and invalid scopes.
func (s Scope) TenantID() (id TenantID, ok bool) {
	if s.kind != scopeTenant {
		return NilTenant, false
	}
	return s.tenant, true
}

func (s Scope) IsUnscoped() bool {
	return s.kind == scopeUnscoped
}

func (s Scope) String() string {
	switch s.kind {
	case scopeTenant:
		return "tenant:" + s.tenant.String()
	case scopeUnscoped:
		return "unscoped:" + s.reason
	}
	return "invalid"
}
