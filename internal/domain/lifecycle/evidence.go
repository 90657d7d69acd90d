package lifecycle

import (
	"strings"

	"github.com/xdrive-logistics/dispatch/internal/domain/model"
	apperrors "github.com/xdrive-logistics/dispatch/internal/errors"
	"github.com/xdrive-logistics/dispatch/internal/evidence"
)

// Preconditions carries the caller-supplied context for an edge's checks.
type Preconditions struct {
	// AssignDriverID optionally assigns a driver together with the
	// posted→allocated edge, mirroring how allocation is performed.
	AssignDriverID *string
	// ConfirmNoPhotos acknowledges that delivery is being submitted
	// without photos. Photos are optional at the delivered edge, but the
	// omission must be deliberate.
	ConfirmNoPhotos bool
}

// CheckEvidence verifies the rule's precondition against the job's
// current evidence and the incoming patch. The asymmetry between the two
// driver edges is intentional: a missing collection photo is a waiver, a
// missing signature is a refusal.
func CheckEvidence(rule Rule, job *model.Job, patch evidence.Patch, pre Preconditions) error {
	switch rule.Requires {
	case RequireNone, RequireCollectionOptional:
		return nil

	case RequireDriverAssigned:
		if job.DriverID == nil && pre.AssignDriverID == nil {
			return apperrors.ValidationField("driver_id", "a driver must be assigned before allocation")
		}
		return nil

	case RequireDeliveryProof:
		if !patch.HasSignature() && !hasStored(job.SignatureData) {
			return apperrors.MissingEvidenceField("signature_data", "a signature is required before delivery")
		}
		if signerName(patch, job) == "" {
			return apperrors.MissingEvidenceField("signature_name", "recipient name is required before delivery")
		}
		photos := job.DeliveryPhotos
		if patch.DeliveryPhotos != nil {
			photos = patch.DeliveryPhotos
		}
		if len(photos) == 0 && !pre.ConfirmNoPhotos {
			return apperrors.MissingEvidenceField("delivery_photos", "no delivery photos attached; confirm submission without photos")
		}
		return nil

	case RequireDisputeReason:
		if patch.DisputeReason == nil || strings.TrimSpace(*patch.DisputeReason) == "" {
			return apperrors.MissingEvidenceField("dispute_reason", "a dispute reason must be recorded")
		}
		return nil

	default:
		return apperrors.Internal("unknown evidence requirement")
	}
}

// ValidatePatch rejects evidence that does not belong to the edge being
// taken. A field gated by a prior transition can never be rewritten
// through this interface; corrections require an explicit path outside
// the lifecycle.
func ValidatePatch(rule Rule, patch evidence.Patch) error {
	if patch.CollectionPhoto != nil && rule.To != model.JobStatusInTransit {
		return apperrors.ValidationField("collection_photo", "collection photo may only be attached when going in transit")
	}
	if (patch.DeliveryPhotos != nil || patch.Signature != nil) && rule.To != model.JobStatusDelivered {
		return apperrors.ValidationField("delivery_evidence", "delivery evidence may only be attached on delivery")
	}
	if patch.DisputeReason != nil && rule.To != model.JobStatusDisputed {
		return apperrors.ValidationField("dispute_reason", "dispute reason may only be recorded on dispute")
	}
	return nil
}

func hasStored(p *string) bool {
	return p != nil && strings.TrimSpace(*p) != ""
}

func signerName(patch evidence.Patch, job *model.Job) string {
	if patch.Signature != nil && strings.TrimSpace(patch.Signature.SignerName) != "" {
		return strings.TrimSpace(patch.Signature.SignerName)
	}
	if job.SignatureName != nil {
		return strings.TrimSpace(*job.SignatureName)
	}
	return ""
}
