package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xdrive-logistics/dispatch/internal/domain/auth"
	"github.com/xdrive-logistics/dispatch/internal/domain/model"
	apperrors "github.com/xdrive-logistics/dispatch/internal/errors"
)

var nonTerminal = []model.JobStatus{
	model.JobStatusDraft,
	model.JobStatusPosted,
	model.JobStatusAllocated,
	model.JobStatusInTransit,
}

var terminal = []model.JobStatus{
	model.JobStatusDelivered,
	model.JobStatusCancelled,
	model.JobStatusDisputed,
}

func TestRuleForForwardEdges(t *testing.T) {
	tests := []struct {
		from, to model.JobStatus
		requires Requirement
		staff    bool
		driver   bool
	}{
		{model.JobStatusDraft, model.JobStatusPosted, RequireNone, true, false},
		{model.JobStatusPosted, model.JobStatusAllocated, RequireDriverAssigned, true, false},
		{model.JobStatusAllocated, model.JobStatusInTransit, RequireCollectionOptional, false, true},
		{model.JobStatusInTransit, model.JobStatusDelivered, RequireDeliveryProof, false, true},
	}
	for _, tt := range tests {
		rule, ok := RuleFor(tt.from, tt.to)
		require.True(t, ok, "%s -> %s", tt.from, tt.to)
		assert.Equal(t, tt.requires, rule.Requires)
		assert.Equal(t, tt.staff, rule.Staff)
		assert.Equal(t, tt.driver, rule.Driver)
	}
}

func TestRuleForNoSkipping(t *testing.T) {
	assert.False(t, Allowed(model.JobStatusDraft, model.JobStatusAllocated))
	assert.False(t, Allowed(model.JobStatusDraft, model.JobStatusInTransit))
	assert.False(t, Allowed(model.JobStatusPosted, model.JobStatusDelivered))
	assert.False(t, Allowed(model.JobStatusAllocated, model.JobStatusDelivered), "each hop exists but the composed edge does not")
}

func TestRuleForNoBackwardEdges(t *testing.T) {
	assert.False(t, Allowed(model.JobStatusPosted, model.JobStatusDraft))
	assert.False(t, Allowed(model.JobStatusAllocated, model.JobStatusPosted))
	assert.False(t, Allowed(model.JobStatusInTransit, model.JobStatusAllocated))
}

func TestRuleForCancellation(t *testing.T) {
	for _, from := range nonTerminal {
		rule, ok := RuleFor(from, model.JobStatusCancelled)
		require.True(t, ok, "cancel from %s", from)
		assert.True(t, rule.Staff)
		assert.False(t, rule.Driver, "drivers cannot cancel")
		assert.Equal(t, RequireNone, rule.Requires)
	}
}

func TestRuleForDispute(t *testing.T) {
	for _, from := range nonTerminal {
		rule, ok := RuleFor(from, model.JobStatusDisputed)
		require.True(t, ok, "dispute from %s", from)
		assert.True(t, rule.Staff)
		assert.True(t, rule.Driver)
		assert.True(t, rule.AssigneeOnly)
		assert.Equal(t, RequireDisputeReason, rule.Requires)
	}
}

func TestRuleForTerminalStatesAreFrozen(t *testing.T) {
	all := append(append([]model.JobStatus{}, nonTerminal...), terminal...)
	for _, from := range terminal {
		for _, to := range all {
			assert.False(t, Allowed(from, to), "%s -> %s", from, to)
		}
	}
}

func TestRuleForUnknownStatuses(t *testing.T) {
	assert.False(t, Allowed(model.JobStatus("archived"), model.JobStatusPosted))
	assert.False(t, Allowed(model.JobStatusDraft, model.JobStatus("archived")))
	assert.False(t, Allowed("", model.JobStatusCancelled))
}

func TestCheckActor(t *testing.T) {
	driverID := "driver-1"
	job := &model.Job{ID: "job-1", DriverID: &driverID}
	staff := auth.Actor{ID: "staff-1", Kind: auth.ActorStaff}
	assignee := auth.Actor{ID: driverID, Kind: auth.ActorDriver}
	stranger := auth.Actor{ID: "driver-9", Kind: auth.ActorDriver}

	postRule, _ := RuleFor(model.JobStatusDraft, model.JobStatusPosted)
	transitRule, _ := RuleFor(model.JobStatusAllocated, model.JobStatusInTransit)
	disputeRule, _ := RuleFor(model.JobStatusInTransit, model.JobStatusDisputed)

	assert.NoError(t, CheckActor(postRule, staff, job))
	assert.True(t, apperrors.IsForbidden(CheckActor(postRule, assignee, job)))

	assert.NoError(t, CheckActor(transitRule, assignee, job))
	assert.True(t, apperrors.IsForbidden(CheckActor(transitRule, staff, job)))
	assert.True(t, apperrors.IsForbidden(CheckActor(transitRule, stranger, job)))

	assert.NoError(t, CheckActor(disputeRule, staff, job))
	assert.NoError(t, CheckActor(disputeRule, assignee, job))
	assert.True(t, apperrors.IsForbidden(CheckActor(disputeRule, stranger, job)))

	unknown := auth.Actor{ID: "x", Kind: auth.ActorKind("service")}
	assert.True(t, apperrors.IsForbidden(CheckActor(postRule, unknown, job)))
}
