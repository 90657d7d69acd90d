package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xdrive-logistics/dispatch/internal/domain/auth"
	"github.com/xdrive-logistics/dispatch/internal/domain/model"
	apperrors "github.com/xdrive-logistics/dispatch/internal/errors"
)

func TestScopeResolverStaff(t *testing.T) {
	ctx := context.Background()
	memberships := &stubMembershipRepo{byUser: map[string][]model.Membership{
		"staff-1": {
			{UserID: "staff-1", CompanyID: "co-1", Role: "admin", Active: true, CreatedAt: time.Unix(100, 0)},
			{UserID: "staff-1", CompanyID: "co-2", Role: "admin", Active: true, CreatedAt: time.Unix(200, 0)},
		},
		"staff-2": {
			{UserID: "staff-2", CompanyID: "co-1", Role: "ops", Active: false},
		},
	}}
	resolver := NewScopeResolver(ScopeResolverOptions{Memberships: memberships, Drivers: &stubDriverRepo{}})

	t.Run("first active membership wins", func(t *testing.T) {
		actor, scope, err := resolver.Resolve(ctx, auth.Identity{ActorID: "staff-1", Kind: auth.ActorStaff})
		require.NoError(t, err)
		assert.Equal(t, "co-1", actor.CompanyID)
		assert.Equal(t, "co-1", scope.CompanyID)
		assert.False(t, scope.Implicit)
	})

	t.Run("explicit company is honored when active", func(t *testing.T) {
		actor, scope, err := resolver.Resolve(ctx, auth.Identity{ActorID: "staff-1", Kind: auth.ActorStaff, CompanyID: "co-2"})
		require.NoError(t, err)
		assert.Equal(t, "co-2", actor.CompanyID)
		assert.Equal(t, "co-2", scope.CompanyID)
	})

	t.Run("inactive membership does not authorize", func(t *testing.T) {
		_, _, err := resolver.Resolve(ctx, auth.Identity{ActorID: "staff-2", Kind: auth.ActorStaff})
		assert.True(t, apperrors.IsUnauthorized(err))
	})

	t.Run("unknown user is unauthorized", func(t *testing.T) {
		_, _, err := resolver.Resolve(ctx, auth.Identity{ActorID: "nobody", Kind: auth.ActorStaff})
		assert.True(t, apperrors.IsUnauthorized(err))
	})

	t.Run("lookup errors propagate", func(t *testing.T) {
		broken := NewScopeResolver(ScopeResolverOptions{
			Memberships: &stubMembershipRepo{err: errors.New("boom")},
		})
		_, _, err := broken.Resolve(ctx, auth.Identity{ActorID: "staff-1", Kind: auth.ActorStaff})
		require.Error(t, err)
		assert.False(t, apperrors.IsUnauthorized(err))
	})
}

func TestScopeResolverDriver(t *testing.T) {
	ctx := context.Background()
	drivers := &stubDriverRepo{drivers: map[string]*model.Driver{
		"drv-1": {ID: "drv-1", CompanyID: "co-1", DisplayName: "Pat", Active: true},
		"drv-2": {ID: "drv-2", CompanyID: "co-1", DisplayName: "Sam", Active: false},
	}}
	resolver := NewScopeResolver(ScopeResolverOptions{Memberships: &stubMembershipRepo{}, Drivers: drivers})

	t.Run("active driver resolves to fixed tenant", func(t *testing.T) {
		actor, scope, err := resolver.Resolve(ctx, auth.Identity{ActorID: "drv-1", Kind: auth.ActorDriver})
		require.NoError(t, err)
		assert.True(t, actor.IsDriver())
		assert.Equal(t, "co-1", scope.CompanyID)
	})

	t.Run("inactive driver is unauthorized", func(t *testing.T) {
		_, _, err := resolver.Resolve(ctx, auth.Identity{ActorID: "drv-2", Kind: auth.ActorDriver})
		assert.True(t, apperrors.IsUnauthorized(err))
	})

	t.Run("unknown driver is unauthorized", func(t *testing.T) {
		_, _, err := resolver.Resolve(ctx, auth.Identity{ActorID: "drv-404", Kind: auth.ActorDriver})
		assert.True(t, apperrors.IsUnauthorized(err))
	})
}

func TestScopeResolverImplicitTenant(t *testing.T) {
	ctx := context.Background()
	memberships := &stubMembershipRepo{byUser: map[string][]model.Membership{
		"staff-1": {{UserID: "staff-1", CompanyID: "co-1", Active: true}},
	}}
	resolver := NewScopeResolver(ScopeResolverOptions{
		Memberships:    memberships,
		Drivers:        &stubDriverRepo{},
		ImplicitTenant: true,
	})

	actor, scope, err := resolver.Resolve(ctx, auth.Identity{ActorID: "staff-1", Kind: auth.ActorStaff})
	require.NoError(t, err)
	assert.Equal(t, "co-1", actor.CompanyID)
	assert.True(t, scope.Implicit)
	assert.True(t, scope.Matches("anything"))
}

func TestScopeResolverIncompleteIdentity(t *testing.T) {
	resolver := NewScopeResolver(ScopeResolverOptions{})
	_, _, err := resolver.Resolve(context.Background(), auth.Identity{})
	assert.True(t, apperrors.IsUnauthorized(err))
}
