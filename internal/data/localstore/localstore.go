// Package localstore is the in-process fallback job store used when no
// remote database is configured or reachable at startup. It holds
// everything in memory under one implicit tenant and honors the exact
// gateway semantics of the remote store, including conditional writes.
package localstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xdrive-logistics/dispatch/internal/core"
	"github.com/xdrive-logistics/dispatch/internal/domain/model"
	apperrors "github.com/xdrive-logistics/dispatch/internal/errors"
)

// Store implements core.JobStore in memory. All methods are safe for
// concurrent use; the mutex makes every conditional write atomic.
type Store struct {
	mu    sync.Mutex
	jobs  map[string]*model.Job
	seq   int64
	clock core.Clock
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// New creates an empty Store. A nil clock means system time.
func New(clock core.Clock) *Store {
	if clock == nil {
		clock = systemClock{}
	}
	return &Store{jobs: make(map[string]*model.Job), clock: clock}
}

func (s *Store) nextRef() string {
	s.seq++
	return fmt.Sprintf("XD-%06d", s.seq)
}

// Create inserts a draft job with a store-assigned id and reference.
func (s *Store) Create(_ context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	if req == nil {
		return nil, apperrors.Validation("create job request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now().UTC()
	job := &model.Job{
		ID:                  uuid.NewString(),
		Ref:                 s.nextRef(),
		CompanyID:           req.CompanyID,
		CreatedBy:           req.CreatedBy,
		PickupLocation:      req.PickupLocation,
		PickupAt:            req.PickupAt,
		DeliveryLocation:    req.DeliveryLocation,
		DeliveryAt:          req.DeliveryAt,
		CargoType:           req.CargoType,
		LoadDetails:         req.LoadDetails,
		SpecialRequirements: req.SpecialRequirements,
		WeightKg:            req.WeightKg,
		DriverID:            req.DriverID,
		VehicleID:           req.VehicleID,
		Status:              model.JobStatusDraft,
		StatusHistory:       model.StatusHistory{{Status: model.JobStatusDraft, Timestamp: now}},
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	s.jobs[job.ID] = job
	return job.Clone(), nil
}

// Get returns a deep copy so callers can never mutate stored state.
func (s *Store) Get(_ context.Context, id string, scope model.TenantScope) (*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(id, scope)
}

func (s *Store) getLocked(id string, scope model.TenantScope) (*model.Job, error) {
	job, ok := s.jobs[id]
	if !ok || !scope.Matches(job.CompanyID) {
		return nil, apperrors.NotFound("job not found")
	}
	return job.Clone(), nil
}

// List returns jobs newest first, applying the same filters as the
// remote store.
func (s *Store) List(_ context.Context, scope model.TenantScope, opts model.ListOptions) ([]*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*model.Job
	for _, j := range s.jobs {
		if !scope.Matches(j.CompanyID) {
			continue
		}
		if opts.Status != "" && j.Status != opts.Status {
			continue
		}
		if opts.DriverID != "" && (j.DriverID == nil || *j.DriverID != opts.DriverID) {
			continue
		}
		out = append(out, j.Clone())
	}
	sort.Slice(out, func(a, b int) bool {
		if !out[a].CreatedAt.Equal(out[b].CreatedAt) {
			return out[a].CreatedAt.After(out[b].CreatedAt)
		}
		return out[a].Ref > out[b].Ref
	})

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CompareAndSetStatus applies the transition under the store lock, which
// gives the same winner-takes-all behavior as the remote store's
// conditional UPDATE.
func (s *Store) CompareAndSetStatus(_ context.Context, params core.CompareAndSetParams) (*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[params.JobID]
	if !ok || !params.Scope.Matches(job.CompanyID) {
		return nil, apperrors.NotFound("job not found")
	}
	if job.Status != params.Expected {
		return nil, apperrors.Conflictf("job status is no longer %s", params.Expected)
	}

	job.Status = params.Target
	job.StatusHistory = job.StatusHistory.Append(params.Event)
	if params.AssignDriverID != nil {
		id := strings.TrimSpace(*params.AssignDriverID)
		job.DriverID = &id
	}
	patch := params.Patch
	if patch.CollectionPhoto != nil {
		v := *patch.CollectionPhoto
		job.CollectionPhoto = &v
	}
	if patch.DeliveryPhotos != nil {
		job.DeliveryPhotos = append([]string(nil), patch.DeliveryPhotos...)
	}
	if patch.Signature != nil {
		data, name := patch.Signature.Data, patch.Signature.SignerName
		job.SignatureData = &data
		job.SignatureName = &name
	}
	if patch.DisputeReason != nil {
		v := *patch.DisputeReason
		job.DisputeReason = &v
	}
	job.UpdatedAt = s.clock.Now().UTC()

	return job.Clone(), nil
}

// UpdateDriverNotes replaces driver notes. No history entry is written.
func (s *Store) UpdateDriverNotes(_ context.Context, id string, scope model.TenantScope, notes string) (*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok || !scope.Matches(job.CompanyID) {
		return nil, apperrors.NotFound("job not found")
	}
	job.DriverNotes = &notes
	job.UpdatedAt = s.clock.Now().UTC()
	return job.Clone(), nil
}

// CountByStatus aggregates per-status counts.
func (s *Store) CountByStatus(_ context.Context, scope model.TenantScope) (*model.JobStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &model.JobStats{}
	for _, j := range s.jobs {
		if !scope.Matches(j.CompanyID) {
			continue
		}
		switch j.Status {
		case model.JobStatusDraft:
			stats.Draft++
		case model.JobStatusPosted:
			stats.Posted++
		case model.JobStatusAllocated:
			stats.Allocated++
		case model.JobStatusInTransit:
			stats.InTransit++
		case model.JobStatusDelivered:
			stats.Delivered++
		case model.JobStatusCancelled:
			stats.Cancelled++
		case model.JobStatusDisputed:
			stats.Disputed++
		}
	}
	return stats, nil
}

// Len reports the number of stored jobs, for diagnostics.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}
