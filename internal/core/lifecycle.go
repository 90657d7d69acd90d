package core

import (
	"context"
	"log/slog"
	"time"

	"github.com/xdrive-logistics/dispatch/internal/domain/auth"
	"github.com/xdrive-logistics/dispatch/internal/domain/lifecycle"
	"github.com/xdrive-logistics/dispatch/internal/domain/model"
	apperrors "github.com/xdrive-logistics/dispatch/internal/errors"
	"github.com/xdrive-logistics/dispatch/internal/evidence"
	"github.com/xdrive-logistics/dispatch/internal/observability/notify"
)

// Clock abstracts time for the service so tests can pin history
// timestamps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// TransitionRequest is a single attempt to move a job along the
// lifecycle. Evidence travels with the request and is applied in the
// same write as the status change.
type TransitionRequest struct {
	JobID  string
	Target model.JobStatus
	Patch  evidence.Patch
	// AssignDriverID assigns a driver as part of the transition. Only
	// meaningful on the edge into allocated.
	AssignDriverID *string
	// ConfirmNoPhotos acknowledges an intentionally photo-less delivery.
	ConfirmNoPhotos bool
}

// LifecycleService implements job creation and the transition state
// machine on top of the JobStore port.
type LifecycleService struct {
	store    JobStore
	notifier Notifier
	clock    Clock
	logger   *slog.Logger
}

// LifecycleServiceOptions bundles dependencies for NewLifecycleService.
type LifecycleServiceOptions struct {
	Store    JobStore
	Notifier Notifier
	Clock    Clock
	Logger   *slog.Logger
}

// NewLifecycleService creates the service. Notifier may be nil when no
// sinks are configured.
func NewLifecycleService(opts LifecycleServiceOptions) *LifecycleService {
	clock := opts.Clock
	if clock == nil {
		clock = systemClock{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &LifecycleService{
		store:    opts.Store,
		notifier: opts.Notifier,
		clock:    clock,
		logger:   logger,
	}
}

// CreateJob creates a draft job in the actor's tenant. Only staff may
// create jobs.
func (s *LifecycleService) CreateJob(ctx context.Context, actor auth.Actor, scope model.TenantScope, req *model.CreateJobRequest) (*model.Job, error) {
	if !actor.IsStaff() {
		return nil, apperrors.Forbidden("only staff can create jobs")
	}
	if req == nil {
		return nil, apperrors.Validation("create request is required")
	}
	req.CompanyID = scope.CompanyID
	req.CreatedBy = actor.ID
	if err := req.Validate(); err != nil {
		return nil, err
	}
	job, err := s.store.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "job created",
		"job_id", job.ID,
		"ref", job.Ref,
		"company_id", job.CompanyID,
	)
	return job, nil
}

// AttemptTransition validates and applies a single lifecycle step.
// Checks run in a fixed order: existence and visibility, transition
// legality, actor permission, patch placement, evidence sufficiency,
// then the conditional write. A concurrent transition that wins the
// race surfaces to the loser as InvalidTransition, because by the time
// the loser's write runs its from-status no longer holds.
func (s *LifecycleService) AttemptTransition(ctx context.Context, actor auth.Actor, scope model.TenantScope, req TransitionRequest) (*model.Job, error) {
	job, err := s.store.Get(ctx, req.JobID, scope)
	if err != nil {
		return nil, err
	}

	from := job.CurrentStatus()
	rule, ok := lifecycle.RuleFor(from, req.Target)
	if !ok {
		return nil, apperrors.InvalidTransitionf("cannot move job from %s to %s", from, req.Target)
	}
	if err := lifecycle.CheckActor(rule, actor, job); err != nil {
		return nil, err
	}
	if err := lifecycle.ValidatePatch(rule, req.Patch); err != nil {
		return nil, err
	}
	pre := lifecycle.Preconditions{
		AssignDriverID:  req.AssignDriverID,
		ConfirmNoPhotos: req.ConfirmNoPhotos,
	}
	if err := lifecycle.CheckEvidence(rule, job, req.Patch, pre); err != nil {
		return nil, err
	}

	event := model.StatusEvent{Status: req.Target, Timestamp: s.clock.Now().UTC()}
	updated, err := s.store.CompareAndSetStatus(ctx, CompareAndSetParams{
		JobID:          req.JobID,
		Scope:          scope,
		Expected:       from,
		Target:         req.Target,
		Event:          event,
		Patch:          req.Patch,
		AssignDriverID: req.AssignDriverID,
	})
	if err != nil {
		if apperrors.IsConflict(err) {
			return nil, apperrors.InvalidTransitionf("job moved out of %s concurrently", from)
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "job transitioned",
		"job_id", updated.ID,
		"ref", updated.Ref,
		"from", from,
		"to", updated.Status,
		"actor_id", actor.ID,
	)
	s.notifyStatusChange(ctx, updated)
	return updated, nil
}

// UpdateDriverNotes replaces the driver's free-text notes. Notes are
// working state, not evidence: the update is allowed in any non-terminal
// status and leaves the history untouched.
func (s *LifecycleService) UpdateDriverNotes(ctx context.Context, actor auth.Actor, scope model.TenantScope, jobID, notes string) (*model.Job, error) {
	job, err := s.store.Get(ctx, jobID, scope)
	if err != nil {
		return nil, err
	}
	if actor.IsDriver() && !job.AssignedTo(actor.ID) {
		return nil, apperrors.Forbidden("job is assigned to another driver")
	}
	if job.CurrentStatus().Terminal() {
		return nil, apperrors.InvalidTransitionf("job is %s and can no longer be edited", job.CurrentStatus())
	}
	return s.store.UpdateDriverNotes(ctx, jobID, scope, notes)
}

// Get returns a single job within the scope.
func (s *LifecycleService) Get(ctx context.Context, scope model.TenantScope, jobID string) (*model.Job, error) {
	return s.store.Get(ctx, jobID, scope)
}

// List returns jobs within the scope, newest first. Drivers see only
// their own assignments regardless of the filter passed in.
func (s *LifecycleService) List(ctx context.Context, actor auth.Actor, scope model.TenantScope, opts model.ListOptions) ([]*model.Job, error) {
	if actor.IsDriver() {
		opts.DriverID = actor.ID
	}
	return s.store.List(ctx, scope, opts)
}

// Stats returns per-status counts for dashboards.
func (s *LifecycleService) Stats(ctx context.Context, scope model.TenantScope) (*model.JobStats, error) {
	return s.store.CountByStatus(ctx, scope)
}

// notifyStatusChange fans the event out without blocking the caller.
// The write has already committed; notification failures are logged by
// the dispatcher and never unwind the transition.
func (s *LifecycleService) notifyStatusChange(ctx context.Context, job *model.Job) {
	if s.notifier == nil {
		return
	}
	change := notify.StatusChange{
		JobID:      job.ID,
		Ref:        job.Ref,
		CompanyID:  job.CompanyID,
		NewStatus:  string(job.Status),
		OccurredAt: s.clock.Now().UTC(),
	}
	go s.notifier.Dispatch(context.WithoutCancel(ctx), change)
}
