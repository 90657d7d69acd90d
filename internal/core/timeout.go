package core

import (
	"context"
	"time"

	"github.com/xdrive-logistics/dispatch/internal/domain/model"
)

// TimeoutJobStore bounds every call to the wrapped store with its own
// deadline. Stacked under the retry decorator, each read attempt gets a
// fresh window instead of sharing one budget with the retry.
type TimeoutJobStore struct {
	next    JobStore
	timeout time.Duration
}

// NewTimeoutJobStore decorates next with a per-operation timeout. A
// non-positive timeout disables the bound.
func NewTimeoutJobStore(next JobStore, timeout time.Duration) *TimeoutJobStore {
	return &TimeoutJobStore{next: next, timeout: timeout}
}

func (t *TimeoutJobStore) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, t.timeout)
}

func (t *TimeoutJobStore) Get(ctx context.Context, id string, scope model.TenantScope) (*model.Job, error) {
	ctx, cancel := t.bound(ctx)
	defer cancel()
	return t.next.Get(ctx, id, scope)
}

func (t *TimeoutJobStore) List(ctx context.Context, scope model.TenantScope, opts model.ListOptions) ([]*model.Job, error) {
	ctx, cancel := t.bound(ctx)
	defer cancel()
	return t.next.List(ctx, scope, opts)
}

func (t *TimeoutJobStore) Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	ctx, cancel := t.bound(ctx)
	defer cancel()
	return t.next.Create(ctx, req)
}

func (t *TimeoutJobStore) CompareAndSetStatus(ctx context.Context, params CompareAndSetParams) (*model.Job, error) {
	ctx, cancel := t.bound(ctx)
	defer cancel()
	return t.next.CompareAndSetStatus(ctx, params)
}

func (t *TimeoutJobStore) UpdateDriverNotes(ctx context.Context, id string, scope model.TenantScope, notes string) (*model.Job, error) {
	ctx, cancel := t.bound(ctx)
	defer cancel()
	return t.next.UpdateDriverNotes(ctx, id, scope, notes)
}

func (t *TimeoutJobStore) CountByStatus(ctx context.Context, scope model.TenantScope) (*model.JobStats, error) {
	ctx, cancel := t.bound(ctx)
	defer cancel()
	return t.next.CountByStatus(ctx, scope)
}
