package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xdrive-logistics/dispatch/internal/errors"
)

func TestJobStatusValid(t *testing.T) {
	for _, s := range []JobStatus{
		JobStatusDraft, JobStatusPosted, JobStatusAllocated,
		JobStatusInTransit, JobStatusDelivered, JobStatusCancelled, JobStatusDisputed,
	} {
		assert.True(t, s.Valid(), "status %q should be valid", s)
	}
	assert.False(t, JobStatus("").Valid())
	assert.False(t, JobStatus("archived").Valid())
	assert.False(t, JobStatus("DRAFT").Valid(), "statuses are stored lowercase")
}

func TestJobStatusTerminal(t *testing.T) {
	terminal := map[JobStatus]bool{
		JobStatusDraft:     false,
		JobStatusPosted:    false,
		JobStatusAllocated: false,
		JobStatusInTransit: false,
		JobStatusDelivered: true,
		JobStatusCancelled: true,
		JobStatusDisputed:  true,
	}
	for s, want := range terminal {
		assert.Equal(t, want, s.Terminal(), "status %q", s)
	}
}

func TestJobStatusUnmarshalText(t *testing.T) {
	var s JobStatus
	require.NoError(t, s.UnmarshalText([]byte("in_transit")))
	assert.Equal(t, JobStatusInTransit, s)

	require.NoError(t, s.UnmarshalText([]byte("  Delivered ")), "input is trimmed and lowercased")
	assert.Equal(t, JobStatusDelivered, s)

	err := s.UnmarshalText([]byte("unknown"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown")
	assert.Equal(t, JobStatusDelivered, s, "failed unmarshal leaves the value untouched")
}

func TestJobHistoryConsistent(t *testing.T) {
	now := time.Now().UTC()
	job := &Job{
		Status: JobStatusPosted,
		StatusHistory: StatusHistory{
			{Status: JobStatusDraft, Timestamp: now.Add(-time.Hour)},
			{Status: JobStatusPosted, Timestamp: now},
		},
	}
	assert.True(t, job.HistoryConsistent())
	assert.Equal(t, JobStatusPosted, job.CurrentStatus())

	job.Status = JobStatusAllocated
	assert.False(t, job.HistoryConsistent())
	assert.Equal(t, JobStatusPosted, job.CurrentStatus(), "the trail wins over the field")

	empty := &Job{Status: JobStatusDraft}
	assert.False(t, empty.HistoryConsistent())
	assert.Equal(t, JobStatusDraft, empty.CurrentStatus())
}

func TestJobAssignedTo(t *testing.T) {
	driver := "driver-1"
	job := &Job{DriverID: &driver}
	assert.True(t, job.AssignedTo("driver-1"))
	assert.False(t, job.AssignedTo("driver-2"))
	assert.False(t, job.AssignedTo(""))
	assert.False(t, (&Job{}).AssignedTo("driver-1"))
}

func TestJobClone(t *testing.T) {
	driver := "driver-1"
	photo := "data:image/jpeg;base64,AAAA"
	now := time.Now().UTC()
	job := &Job{
		ID:              "job-1",
		DriverID:        &driver,
		CollectionPhoto: &photo,
		DeliveryPhotos:  []string{"data:image/jpeg;base64,BBBB"},
		StatusHistory:   StatusHistory{{Status: JobStatusDraft, Timestamp: now}},
	}

	cp := job.Clone()
	require.Equal(t, job, cp)

	*cp.DriverID = "driver-2"
	cp.DeliveryPhotos[0] = "changed"
	cp.StatusHistory[0].Status = JobStatusPosted

	assert.Equal(t, "driver-1", *job.DriverID)
	assert.Equal(t, "data:image/jpeg;base64,BBBB", job.DeliveryPhotos[0])
	assert.Equal(t, JobStatusDraft, job.StatusHistory[0].Status)

	var nilJob *Job
	assert.Nil(t, nilJob.Clone())
}

func TestCreateJobRequestValidate(t *testing.T) {
	valid := func() *CreateJobRequest {
		return &CreateJobRequest{
			CreatedBy:        "staff-1",
			PickupLocation:   "12 Harbour Rd",
			DeliveryLocation: "4 Mill Lane",
			CargoType:        "pallets",
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name      string
		mutate    func(*CreateJobRequest)
		wantField string
	}{
		{"missing created by", func(r *CreateJobRequest) { r.CreatedBy = " " }, "created_by"},
		{"missing pickup", func(r *CreateJobRequest) { r.PickupLocation = "" }, "pickup_location"},
		{"missing delivery", func(r *CreateJobRequest) { r.DeliveryLocation = "" }, "delivery_location"},
		{"missing cargo type", func(r *CreateJobRequest) { r.CargoType = "" }, "cargo_type"},
		{"negative weight", func(r *CreateJobRequest) { w := -1.0; r.WeightKg = &w }, "weight_kg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(req)
			err := req.Validate()
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.wantField, appErr.Field)
		})
	}

	zero := 0.0
	req := valid()
	req.WeightKg = &zero
	assert.NoError(t, req.Validate(), "zero weight is allowed")
}

func TestTenantScopeMatches(t *testing.T) {
	scoped := TenantScope{CompanyID: "co-1"}
	assert.True(t, scoped.Matches("co-1"))
	assert.False(t, scoped.Matches("co-2"))
	assert.False(t, scoped.Matches(""))

	implicit := ImplicitScope()
	assert.True(t, implicit.Implicit)
	assert.True(t, implicit.Matches("co-1"))
	assert.True(t, implicit.Matches(""))
}
