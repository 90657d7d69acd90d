package auth

// Package auth contains domain-level types for the identities the
// surrounding session layer hands to the core. The core performs no
// credential verification; it trusts these inputs.

import "time"

// ActorKind distinguishes the two principals that can mutate jobs.
type ActorKind string

const (
	// ActorStaff is a back-office user, tenant-scoped via membership.
	ActorStaff ActorKind = "staff"
	// ActorDriver is a mobile driver, scoped to jobs assigned to them.
	ActorDriver ActorKind = "driver"
)

// Valid returns true if the ActorKind is a known kind.
func (k ActorKind) Valid() bool {
	return k == ActorStaff || k == ActorDriver
}

// Identity is what the identity/session provider supplies. CompanyID is
// empty for staff whose tenant must be resolved through membership
// lookup.
type Identity struct {
	ActorID   string
	Kind      ActorKind
	CompanyID string
}

// Actor is a resolved principal: identity plus the tenant scope it is
// authorized to mutate.
type Actor struct {
	ID        string    `json:"id"`
	Kind      ActorKind `json:"kind"`
	CompanyID string    `json:"company_id"`
}

// IsDriver reports whether the actor is a driver.
func (a Actor) IsDriver() bool { return a.Kind == ActorDriver }

// IsStaff reports whether the actor is a staff user.
func (a Actor) IsStaff() bool { return a.Kind == ActorStaff }

// Session is the server-side record persisted for an authenticated actor.
// ID is an opaque session identifier. Sessions live in an injected,
// TTL-scoped store owned by the identity collaborator, never in
// process-global state.
type Session struct {
	ID        string    `json:"id"`
	ActorID   string    `json:"actor_id"`
	Kind      ActorKind `json:"kind"`
	CompanyID string    `json:"company_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session has passed its expiry.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
