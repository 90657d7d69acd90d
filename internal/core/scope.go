package core

import (
	"context"
	"log/slog"

	"github.com/xdrive-logistics/dispatch/internal/domain/auth"
	"github.com/xdrive-logistics/dispatch/internal/domain/model"
	apperrors "github.com/xdrive-logistics/dispatch/internal/errors"
)

// ScopeResolver turns an authenticated identity into an actor plus the
// tenant scope it is authorized to mutate. The core trusts the identity
// it is handed; credential verification happens upstream.
type ScopeResolver struct {
	memberships MembershipRepository
	drivers     DriverRepository
	logger      *slog.Logger
	// implicit collapses every resolved scope to the single-tenant scope
	// of the local fallback store.
	implicit bool
}

// ScopeResolverOptions bundles dependencies for NewScopeResolver.
type ScopeResolverOptions struct {
	Memberships MembershipRepository
	Drivers     DriverRepository
	Logger      *slog.Logger
	// ImplicitTenant must be set when the local fallback store is in use.
	ImplicitTenant bool
}

// NewScopeResolver creates a resolver with the given lookups.
func NewScopeResolver(opts ScopeResolverOptions) *ScopeResolver {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ScopeResolver{
		memberships: opts.Memberships,
		drivers:     opts.Drivers,
		logger:      logger,
		implicit:    opts.ImplicitTenant,
	}
}

// Resolve authorizes the identity and returns the actor with its tenant
// scope. Unauthorized is returned when no active membership or driver
// assignment exists.
func (r *ScopeResolver) Resolve(ctx context.Context, ident auth.Identity) (auth.Actor, model.TenantScope, error) {
	if ident.ActorID == "" || !ident.Kind.Valid() {
		return auth.Actor{}, model.TenantScope{}, apperrors.Unauthorized("identity is incomplete")
	}

	switch ident.Kind {
	case auth.ActorStaff:
		return r.resolveStaff(ctx, ident)
	case auth.ActorDriver:
		return r.resolveDriver(ctx, ident)
	default:
		return auth.Actor{}, model.TenantScope{}, apperrors.Unauthorized("unknown actor kind")
	}
}

func (r *ScopeResolver) resolveStaff(ctx context.Context, ident auth.Identity) (auth.Actor, model.TenantScope, error) {
	ms, err := r.memberships.MembershipsFor(ctx, ident.ActorID)
	if err != nil {
		return auth.Actor{}, model.TenantScope{}, err
	}

	var active []model.Membership
	for _, m := range ms {
		if m.Active {
			active = append(active, m)
		}
	}
	if len(active) == 0 {
		return auth.Actor{}, model.TenantScope{}, apperrors.Unauthorized("no active membership")
	}
	// Multi-tenant staff resolve to their first active membership. This is
	// an acknowledged simplification, not a correctness guarantee; callers
	// needing a specific tenant must pass it via the identity.
	chosen := active[0]
	if ident.CompanyID != "" {
		for _, m := range active {
			if m.CompanyID == ident.CompanyID {
				chosen = m
				break
			}
		}
	}
	if len(active) > 1 {
		r.logger.DebugContext(ctx, "staff actor has multiple active memberships",
			"actor_id", ident.ActorID,
			"chosen_company", chosen.CompanyID,
		)
	}

	actor := auth.Actor{ID: ident.ActorID, Kind: auth.ActorStaff, CompanyID: chosen.CompanyID}
	return actor, r.scopeFor(chosen.CompanyID), nil
}

func (r *ScopeResolver) resolveDriver(ctx context.Context, ident auth.Identity) (auth.Actor, model.TenantScope, error) {
	d, err := r.drivers.GetByID(ctx, ident.ActorID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return auth.Actor{}, model.TenantScope{}, apperrors.Unauthorized("driver not found")
		}
		return auth.Actor{}, model.TenantScope{}, err
	}
	if !d.Active {
		return auth.Actor{}, model.TenantScope{}, apperrors.Unauthorized("driver is not active")
	}

	actor := auth.Actor{ID: d.ID, Kind: auth.ActorDriver, CompanyID: d.CompanyID}
	return actor, r.scopeFor(d.CompanyID), nil
}

func (r *ScopeResolver) scopeFor(companyID string) model.TenantScope {
	if r.implicit {
		return model.ImplicitScope()
	}
	return model.TenantScope{CompanyID: companyID}
}
