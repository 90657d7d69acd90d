package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xdrive-logistics/dispatch/internal/domain/model"
	apperrors "github.com/xdrive-logistics/dispatch/internal/errors"
	"github.com/xdrive-logistics/dispatch/internal/evidence"
)

const photoURL = "data:image/jpeg;base64,AAAA"

func strptr(s string) *string { return &s }

func mustRule(t *testing.T, from, to model.JobStatus) Rule {
	t.Helper()
	rule, ok := RuleFor(from, to)
	require.True(t, ok)
	return rule
}

func fieldOf(t *testing.T, err error) string {
	t.Helper()
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.Field
}

func TestCheckEvidenceDriverAssigned(t *testing.T) {
	rule := mustRule(t, model.JobStatusPosted, model.JobStatusAllocated)
	job := &model.Job{Status: model.JobStatusPosted}

	err := CheckEvidence(rule, job, evidence.Patch{}, Preconditions{})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err), "an absent driver is a request problem, not missing proof")
	assert.Equal(t, "driver_id", fieldOf(t, err))

	assert.NoError(t, CheckEvidence(rule, job, evidence.Patch{}, Preconditions{AssignDriverID: strptr("driver-1")}))

	assigned := &model.Job{Status: model.JobStatusPosted, DriverID: strptr("driver-1")}
	assert.NoError(t, CheckEvidence(rule, assigned, evidence.Patch{}, Preconditions{}))
}

func TestCheckEvidenceCollectionPhotoIsWaivable(t *testing.T) {
	rule := mustRule(t, model.JobStatusAllocated, model.JobStatusInTransit)
	job := &model.Job{Status: model.JobStatusAllocated, DriverID: strptr("driver-1")}

	assert.NoError(t, CheckEvidence(rule, job, evidence.Patch{}, Preconditions{}))
	assert.NoError(t, CheckEvidence(rule, job, evidence.Patch{CollectionPhoto: strptr(photoURL)}, Preconditions{}))
}

func TestCheckEvidenceDeliveryProof(t *testing.T) {
	rule := mustRule(t, model.JobStatusInTransit, model.JobStatusDelivered)
	job := &model.Job{Status: model.JobStatusInTransit, DriverID: strptr("driver-1")}
	sig := &evidence.Signature{Data: photoURL, SignerName: "R. Chen"}

	t.Run("missing signature", func(t *testing.T) {
		err := CheckEvidence(rule, job, evidence.Patch{}, Preconditions{ConfirmNoPhotos: true})
		assert.True(t, apperrors.IsMissingEvidence(err))
		assert.Equal(t, "signature_data", fieldOf(t, err))
	})

	t.Run("blank signature payload", func(t *testing.T) {
		blank := &evidence.Signature{Data: "   ", SignerName: "R. Chen"}
		err := CheckEvidence(rule, job, evidence.Patch{Signature: blank}, Preconditions{ConfirmNoPhotos: true})
		assert.True(t, apperrors.IsMissingEvidence(err))
		assert.Equal(t, "signature_data", fieldOf(t, err))
	})

	t.Run("missing recipient name", func(t *testing.T) {
		unnamed := &evidence.Signature{Data: photoURL}
		err := CheckEvidence(rule, job, evidence.Patch{Signature: unnamed}, Preconditions{ConfirmNoPhotos: true})
		assert.True(t, apperrors.IsMissingEvidence(err))
		assert.Equal(t, "signature_name", fieldOf(t, err))
	})

	t.Run("photos absent without confirmation", func(t *testing.T) {
		err := CheckEvidence(rule, job, evidence.Patch{Signature: sig}, Preconditions{})
		assert.True(t, apperrors.IsMissingEvidence(err))
		assert.Equal(t, "delivery_photos", fieldOf(t, err))
	})

	t.Run("photos absent with confirmation", func(t *testing.T) {
		assert.NoError(t, CheckEvidence(rule, job, evidence.Patch{Signature: sig}, Preconditions{ConfirmNoPhotos: true}))
	})

	t.Run("photos attached", func(t *testing.T) {
		patch := evidence.Patch{Signature: sig, DeliveryPhotos: []string{photoURL}}
		assert.NoError(t, CheckEvidence(rule, job, patch, Preconditions{}))
	})

	t.Run("stored evidence satisfies the check", func(t *testing.T) {
		stored := &model.Job{
			Status:         model.JobStatusInTransit,
			DriverID:       strptr("driver-1"),
			SignatureData:  strptr(photoURL),
			SignatureName:  strptr("R. Chen"),
			DeliveryPhotos: []string{photoURL},
		}
		assert.NoError(t, CheckEvidence(rule, stored, evidence.Patch{}, Preconditions{}))
	})
}

func TestCheckEvidenceDisputeReason(t *testing.T) {
	rule := mustRule(t, model.JobStatusPosted, model.JobStatusDisputed)
	job := &model.Job{Status: model.JobStatusPosted}

	err := CheckEvidence(rule, job, evidence.Patch{}, Preconditions{})
	assert.True(t, apperrors.IsMissingEvidence(err))
	assert.Equal(t, "dispute_reason", fieldOf(t, err))

	err = CheckEvidence(rule, job, evidence.Patch{DisputeReason: strptr("  ")}, Preconditions{})
	assert.True(t, apperrors.IsMissingEvidence(err), "a blank reason does not count")

	assert.NoError(t, CheckEvidence(rule, job, evidence.Patch{DisputeReason: strptr("cargo damaged on arrival")}, Preconditions{}))
}

func TestValidatePatchRejectsEvidenceOnWrongEdge(t *testing.T) {
	sig := &evidence.Signature{Data: photoURL, SignerName: "R. Chen"}

	postRule := mustRule(t, model.JobStatusDraft, model.JobStatusPosted)
	transitRule := mustRule(t, model.JobStatusAllocated, model.JobStatusInTransit)
	deliverRule := mustRule(t, model.JobStatusInTransit, model.JobStatusDelivered)
	disputeRule := mustRule(t, model.JobStatusInTransit, model.JobStatusDisputed)

	assert.True(t, apperrors.IsValidation(ValidatePatch(postRule, evidence.Patch{CollectionPhoto: strptr(photoURL)})))
	assert.True(t, apperrors.IsValidation(ValidatePatch(deliverRule, evidence.Patch{CollectionPhoto: strptr(photoURL)})))
	assert.True(t, apperrors.IsValidation(ValidatePatch(transitRule, evidence.Patch{Signature: sig})))
	assert.True(t, apperrors.IsValidation(ValidatePatch(transitRule, evidence.Patch{DeliveryPhotos: []string{photoURL}})))
	assert.True(t, apperrors.IsValidation(ValidatePatch(deliverRule, evidence.Patch{DisputeReason: strptr("late")})))

	assert.NoError(t, ValidatePatch(transitRule, evidence.Patch{CollectionPhoto: strptr(photoURL)}))
	assert.NoError(t, ValidatePatch(deliverRule, evidence.Patch{Signature: sig, DeliveryPhotos: []string{photoURL}}))
	assert.NoError(t, ValidatePatch(disputeRule, evidence.Patch{DisputeReason: strptr("late")}))
	assert.NoError(t, ValidatePatch(postRule, evidence.Patch{}))
}
