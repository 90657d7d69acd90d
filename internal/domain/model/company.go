package model

import "time"

// Company is a tenant. A job's company id is immutable after creation and
// every read and write of the remote store is filtered by it.
type Company struct {
	ID        string    `json:"id"         db:"id"`
	Name      string    `json:"name"       db:"name"`
	Active    bool      `json:"active"     db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Membership links a staff user to a tenant.
type Membership struct {
	UserID    string    `json:"user_id"    db:"user_id"`
	CompanyID string    `json:"company_id" db:"company_id"`
	Role      string    `json:"role"       db:"role"`
	Active    bool      `json:"active"     db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Driver belongs to exactly one tenant. Drivers never own jobs; while a
// job is assigned to them they hold a capability to advance it.
type Driver struct {
	ID          string    `json:"id"           db:"id"`
	CompanyID   string    `json:"company_id"   db:"company_id"`
	DisplayName string    `json:"display_name" db:"display_name"`
	Active      bool      `json:"active"       db:"active"`
	CreatedAt   time.Time `json:"created_at"   db:"created_at"`
}

// TenantScope restricts store operations to one tenant. The local
// fallback store runs with an implicit scope: there is only one tenant by
// construction, so filtering is a no-op.
type TenantScope struct {
	CompanyID string
	Implicit  bool
}

// Matches reports whether a record belonging to companyID is visible
// under this scope.
func (s TenantScope) Matches(companyID string) bool {
	return s.Implicit || s.CompanyID == companyID
}

// ImplicitScope returns the single-tenant scope used by the local
// fallback store.
func ImplicitScope() TenantScope {
	return TenantScope{Implicit: true}
}
