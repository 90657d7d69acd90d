// Package core provides the business logic of the dispatch job system:
// the lifecycle state machine, the tenant scope resolver, and the ports
// the data layer implements.
package core

import (
	"context"

	"github.com/xdrive-logistics/dispatch/internal/domain/model"
	"github.com/xdrive-logistics/dispatch/internal/evidence"
	"github.com/xdrive-logistics/dispatch/internal/observability/notify"
)

// This file contains repository interface definitions (ports in
// hexagonal architecture). The state machine is written against JobStore
// only; which backend serves it is decided once at startup and never
// branched on inside business logic.

// CompareAndSetParams groups the inputs of the conditional status write.
// The write must apply the status, the history entry, and the evidence
// patch as one atomic operation, and must fail with Conflict when the
// job's current status no longer equals Expected.
type CompareAndSetParams struct {
	JobID    string
	Scope    model.TenantScope
	Expected model.JobStatus
	Target   model.JobStatus
	Event    model.StatusEvent
	Patch    evidence.Patch
	// AssignDriverID sets the job's driver together with the transition
	// (used on the posted→allocated edge).
	AssignDriverID *string
}

// JobStore is the persistence gateway contract. Both the remote
// multi-tenant store and the local fallback implement it with identical
// semantics; only tenant scoping differs (the fallback's scope is
// implicit).
type JobStore interface {
	// Get returns the job, or NotFound when the id is unknown or outside
	// the tenant scope. Callers cannot tell the two cases apart.
	Get(ctx context.Context, id string, scope model.TenantScope) (*model.Job, error)

	// List returns jobs visible under the scope, newest first.
	List(ctx context.Context, scope model.TenantScope, opts model.ListOptions) ([]*model.Job, error)

	// Create inserts a draft job with a store-assigned id, reference, and
	// initial history entry.
	Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error)

	// CompareAndSetStatus performs the conditional transition write.
	CompareAndSetStatus(ctx context.Context, params CompareAndSetParams) (*model.Job, error)

	// UpdateDriverNotes updates the driver's free-text notes without
	// touching status or history. It is the only evidence-level update
	// that bypasses the transition table, and it is never audited.
	UpdateDriverNotes(ctx context.Context, id string, scope model.TenantScope, notes string) (*model.Job, error)

	// CountByStatus returns per-status counts within the scope.
	CountByStatus(ctx context.Context, scope model.TenantScope) (*model.JobStats, error)
}

// MembershipRepository is the read-only tenant membership lookup the
// scope resolver consumes.
type MembershipRepository interface {
	// MembershipsFor returns the actor's memberships ordered oldest
	// first.
	MembershipsFor(ctx context.Context, userID string) ([]model.Membership, error)
}

// DriverRepository resolves driver identities to their fixed tenant.
type DriverRepository interface {
	GetByID(ctx context.Context, id string) (*model.Driver, error)
}

// Notifier receives status changes after a successful commit. Failures
// must not propagate to, or roll back, the transition.
type Notifier interface {
	Dispatch(ctx context.Context, change notify.StatusChange)
}
