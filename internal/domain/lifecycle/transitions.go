// Package lifecycle encodes the fixed transition table a courier job
// moves through. The table is data, not configuration: this is
// deliberately not a pluggable workflow engine.
package lifecycle

import (
	"github.com/xdrive-logistics/dispatch/internal/domain/auth"
	"github.com/xdrive-logistics/dispatch/internal/domain/model"
	apperrors "github.com/xdrive-logistics/dispatch/internal/errors"
)

// Requirement names the evidence precondition of an edge.
type Requirement int

const (
	// RequireNone has no precondition.
	RequireNone Requirement = iota
	// RequireDriverAssigned needs a driver id on the job (or supplied with
	// the request) before allocation.
	RequireDriverAssigned
	// RequireCollectionOptional permits a collection photo but treats its
	// absence as an explicit waiver. The edge never fails on evidence.
	RequireCollectionOptional
	// RequireDeliveryProof needs a signature and recipient name; delivery
	// photos are optional but their absence must be confirmed by the
	// caller.
	RequireDeliveryProof
	// RequireDisputeReason needs a recorded reason for the dispute.
	RequireDisputeReason
)

// Rule is one edge of the transition table.
type Rule struct {
	From model.JobStatus
	To   model.JobStatus
	// Staff / Driver flag which actor kinds may perform the edge.
	Staff  bool
	Driver bool
	// AssigneeOnly restricts driver edges to the assigned driver.
	AssigneeOnly bool
	Requires     Requirement
}

// rules holds the explicit edges. Cancellation and dispute are handled
// separately because they apply from any non-terminal state.
var rules = []Rule{
	{From: model.JobStatusDraft, To: model.JobStatusPosted, Staff: true},
	{From: model.JobStatusPosted, To: model.JobStatusAllocated, Staff: true, Requires: RequireDriverAssigned},
	{From: model.JobStatusAllocated, To: model.JobStatusInTransit, Driver: true, AssigneeOnly: true, Requires: RequireCollectionOptional},
	{From: model.JobStatusInTransit, To: model.JobStatusDelivered, Driver: true, AssigneeOnly: true, Requires: RequireDeliveryProof},
}

// RuleFor returns the rule for the exact (from, to) edge. There is no
// transitivity: allocated→delivered is not an edge even though each hop
// exists.
func RuleFor(from, to model.JobStatus) (Rule, bool) {
	if !from.Valid() || !to.Valid() {
		return Rule{}, false
	}
	for _, r := range rules {
		if r.From == from && r.To == to {
			return r, true
		}
	}
	if from.Terminal() {
		return Rule{}, false
	}
	switch to {
	case model.JobStatusCancelled:
		return Rule{From: from, To: to, Staff: true}, true
	case model.JobStatusDisputed:
		return Rule{From: from, To: to, Staff: true, Driver: true, AssigneeOnly: true, Requires: RequireDisputeReason}, true
	default:
		return Rule{}, false
	}
}

// Allowed reports whether (from, to) is an edge of the table.
func Allowed(from, to model.JobStatus) bool {
	_, ok := RuleFor(from, to)
	return ok
}

// CheckActor verifies the actor may perform the rule's edge on this job.
func CheckActor(rule Rule, actor auth.Actor, job *model.Job) error {
	switch actor.Kind {
	case auth.ActorStaff:
		if !rule.Staff {
			return apperrors.Forbiddenf("staff may not move a job from %s to %s", rule.From, rule.To)
		}
	case auth.ActorDriver:
		if !rule.Driver {
			return apperrors.Forbiddenf("drivers may not move a job from %s to %s", rule.From, rule.To)
		}
		if rule.AssigneeOnly && !job.AssignedTo(actor.ID) {
			return apperrors.Forbidden("driver is not assigned to this job")
		}
	default:
		return apperrors.Forbidden("unknown actor kind")
	}
	return nil
}
