package core

import (
	"context"
	"log/slog"
	"time"

	"github.com/xdrive-logistics/dispatch/internal/domain/model"
	apperrors "github.com/xdrive-logistics/dispatch/internal/errors"
)

// RetryingJobStore wraps a JobStore and retries read-only operations
// once when the backend reports Unavailable. Mutations are never
// retried: a timed-out write may have committed, and replaying it would
// double-apply the transition.
type RetryingJobStore struct {
	next   JobStore
	delay  time.Duration
	logger *slog.Logger
	sleep  func(context.Context, time.Duration) bool
}

// NewRetryingJobStore decorates next with single-retry reads. Delay is
// the pause before the retry; zero means retry immediately.
func NewRetryingJobStore(next JobStore, delay time.Duration, logger *slog.Logger) *RetryingJobStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RetryingJobStore{
		next:   next,
		delay:  delay,
		logger: logger,
		sleep:  sleepWithContext,
	}
}

func (r *RetryingJobStore) Get(ctx context.Context, id string, scope model.TenantScope) (*model.Job, error) {
	job, err := r.next.Get(ctx, id, scope)
	if !r.shouldRetry(ctx, err, "Get") {
		return job, err
	}
	return r.next.Get(ctx, id, scope)
}

func (r *RetryingJobStore) List(ctx context.Context, scope model.TenantScope, opts model.ListOptions) ([]*model.Job, error) {
	jobs, err := r.next.List(ctx, scope, opts)
	if !r.shouldRetry(ctx, err, "List") {
		return jobs, err
	}
	return r.next.List(ctx, scope, opts)
}

func (r *RetryingJobStore) CountByStatus(ctx context.Context, scope model.TenantScope) (*model.JobStats, error) {
	stats, err := r.next.CountByStatus(ctx, scope)
	if !r.shouldRetry(ctx, err, "CountByStatus") {
		return stats, err
	}
	return r.next.CountByStatus(ctx, scope)
}

// Create passes through without retry.
func (r *RetryingJobStore) Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	return r.next.Create(ctx, req)
}

// CompareAndSetStatus passes through without retry.
func (r *RetryingJobStore) CompareAndSetStatus(ctx context.Context, params CompareAndSetParams) (*model.Job, error) {
	return r.next.CompareAndSetStatus(ctx, params)
}

// UpdateDriverNotes passes through without retry.
func (r *RetryingJobStore) UpdateDriverNotes(ctx context.Context, id string, scope model.TenantScope, notes string) (*model.Job, error) {
	return r.next.UpdateDriverNotes(ctx, id, scope, notes)
}

func (r *RetryingJobStore) shouldRetry(ctx context.Context, err error, method string) bool {
	if err == nil || !apperrors.IsRetryable(err) || ctx.Err() != nil {
		return false
	}
	r.logger.WarnContext(ctx, "job store read retry",
		"method", method,
		"delay", r.delay,
		"error", err,
	)
	return r.sleep(ctx, r.delay)
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
