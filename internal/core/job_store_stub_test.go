package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/xdrive-logistics/dispatch/internal/domain/model"
	apperrors "github.com/xdrive-logistics/dispatch/internal/errors"
	"github.com/xdrive-logistics/dispatch/internal/evidence"
	"github.com/xdrive-logistics/dispatch/internal/observability/notify"
)

// stubJobStore provides a minimal in-memory JobStore for tests with
// per-method error injection.
type stubJobStore struct {
	mu   sync.Mutex
	jobs map[string]*model.Job
	seq  int

	getErr    error
	listErr   error
	casErr    error
	countErr  error
	casCalled int
}

func newStubJobStore(jobs ...*model.Job) *stubJobStore {
	s := &stubJobStore{jobs: make(map[string]*model.Job)}
	for _, j := range jobs {
		s.jobs[j.ID] = j.Clone()
	}
	return s
}

func (s *stubJobStore) Get(_ context.Context, id string, scope model.TenantScope) (*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	job, ok := s.jobs[id]
	if !ok || !scope.Matches(job.CompanyID) {
		return nil, apperrors.NotFound("job not found")
	}
	return job.Clone(), nil
}

func (s *stubJobStore) List(_ context.Context, scope model.TenantScope, opts model.ListOptions) ([]*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []*model.Job
	for _, j := range s.jobs {
		if !scope.Matches(j.CompanyID) {
			continue
		}
		if opts.DriverID != "" && (j.DriverID == nil || *j.DriverID != opts.DriverID) {
			continue
		}
		if opts.Status != "" && j.Status != opts.Status {
			continue
		}
		out = append(out, j.Clone())
	}
	return out, nil
}

func (s *stubJobStore) Create(_ context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	job := &model.Job{
		ID:               fmt.Sprintf("job-%d", s.seq),
		Ref:              fmt.Sprintf("XD-%06d", s.seq),
		CompanyID:        req.CompanyID,
		CreatedBy:        req.CreatedBy,
		PickupLocation:   req.PickupLocation,
		DeliveryLocation: req.DeliveryLocation,
		CargoType:        req.CargoType,
		Status:           model.JobStatusDraft,
		StatusHistory:    model.StatusHistory{}.Append(model.StatusEvent{Status: model.JobStatusDraft}),
	}
	s.jobs[job.ID] = job
	return job.Clone(), nil
}

func (s *stubJobStore) CompareAndSetStatus(_ context.Context, params CompareAndSetParams) (*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.casCalled++
	if s.casErr != nil {
		return nil, s.casErr
	}
	job, ok := s.jobs[params.JobID]
	if !ok || !params.Scope.Matches(job.CompanyID) {
		return nil, apperrors.NotFound("job not found")
	}
	if job.Status != params.Expected {
		return nil, apperrors.Conflictf("job is %s, expected %s", job.Status, params.Expected)
	}
	job.Status = params.Target
	job.StatusHistory = job.StatusHistory.Append(params.Event)
	if params.AssignDriverID != nil {
		id := *params.AssignDriverID
		job.DriverID = &id
	}
	applyPatch(job, params.Patch)
	return job.Clone(), nil
}

func (s *stubJobStore) UpdateDriverNotes(_ context.Context, id string, scope model.TenantScope, notes string) (*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok || !scope.Matches(job.CompanyID) {
		return nil, apperrors.NotFound("job not found")
	}
	job.DriverNotes = &notes
	return job.Clone(), nil
}

func (s *stubJobStore) CountByStatus(_ context.Context, scope model.TenantScope) (*model.JobStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.countErr != nil {
		return nil, s.countErr
	}
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

func applyPatch(job *model.Job, patch evidence.Patch) {
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
}

// stubMembershipRepo returns a fixed membership list per user.
type stubMembershipRepo struct {
	byUser map[string][]model.Membership
	err    error
}

func (s *stubMembershipRepo) MembershipsFor(_ context.Context, userID string) ([]model.Membership, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.byUser[userID], nil
}

// stubDriverRepo returns fixed drivers by id.
type stubDriverRepo struct {
	drivers map[string]*model.Driver
	err     error
}

func (s *stubDriverRepo) GetByID(_ context.Context, id string) (*model.Driver, error) {
	if s.err != nil {
		return nil, s.err
	}
	d, ok := s.drivers[id]
	if !ok {
		return nil, apperrors.NotFound("driver not found")
	}
	return d, nil
}

// recordingNotifier collects dispatched changes and signals each one so
// tests can wait for the asynchronous dispatch.
type recordingNotifier struct {
	mu      sync.Mutex
	changes []notify.StatusChange
	ch      chan struct{}
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{ch: make(chan struct{}, 16)}
}

func (n *recordingNotifier) Dispatch(_ context.Context, change notify.StatusChange) {
	n.mu.Lock()
	n.changes = append(n.changes, change)
	n.mu.Unlock()
	n.ch <- struct{}{}
}

func (n *recordingNotifier) Changes() []notify.StatusChange {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.StatusChange(nil), n.changes...)
}
