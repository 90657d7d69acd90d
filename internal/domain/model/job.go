// Package model defines the core data types for the dispatch job system.
package model

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/xdrive-logistics/dispatch/internal/errors"
)

// JobStatus represents the lifecycle status of a delivery job.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type JobStatus string

const (
	// JobStatusDraft is the initial status of a staff-created job.
	JobStatusDraft JobStatus = "draft"
	// JobStatusPosted indicates the job is published and awaiting allocation.
	JobStatusPosted JobStatus = "posted"
	// JobStatusAllocated indicates a driver has been assigned.
	JobStatusAllocated JobStatus = "allocated"
	// JobStatusInTransit indicates the driver has collected the load.
	JobStatusInTransit JobStatus = "in_transit"
	// JobStatusDelivered indicates the job completed with proof of delivery.
	JobStatusDelivered JobStatus = "delivered"
	// JobStatusCancelled indicates the job was cancelled by staff.
	JobStatusCancelled JobStatus = "cancelled"
	// JobStatusDisputed indicates the job requires external resolution.
	JobStatusDisputed JobStatus = "disputed"
)

// Valid returns true if the JobStatus is one of the seven known statuses.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusDraft, JobStatusPosted, JobStatusAllocated,
		JobStatusInTransit, JobStatusDelivered, JobStatusCancelled,
		JobStatusDisputed:
		return true
	default:
		return false
	}
}

// Terminal returns true for statuses a job can never leave. Disputed is
// semi-terminal: leaving it requires external resolution, which is not a
// lifecycle transition.
func (s JobStatus) Terminal() bool {
	return s == JobStatusDelivered || s == JobStatusCancelled || s == JobStatusDisputed
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown statuses are
// rejected at the deserialization boundary rather than passed through.
func (s *JobStatus) UnmarshalText(text []byte) error {
	v := JobStatus(strings.ToLower(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return fmt.Errorf("invalid job status: %q", string(text))
	}
	*s = v
	return nil
}

// Job is the unit of work tracked through its lifecycle. The status field
// and the last status history entry are always written together; no code
// path updates one without the other.
type Job struct {
	ID        string `json:"id"         db:"id"`
	Ref       string `json:"ref"        db:"ref"`
	CompanyID string `json:"company_id" db:"company_id"`
	CreatedBy string `json:"created_by" db:"created_by"`

	// Route
	PickupLocation   string     `json:"pickup_location"       db:"pickup_location"`
	PickupAt         *time.Time `json:"pickup_at,omitempty"   db:"pickup_at"`
	DeliveryLocation string     `json:"delivery_location"     db:"delivery_location"`
	DeliveryAt       *time.Time `json:"delivery_at,omitempty" db:"delivery_at"`

	// Cargo
	CargoType           string   `json:"cargo_type"                     db:"cargo_type"`
	LoadDetails         string   `json:"load_details"                   db:"load_details"`
	SpecialRequirements string   `json:"special_requirements"           db:"special_requirements"`
	WeightKg            *float64 `json:"weight_kg,omitempty"            db:"weight_kg"`

	// Assignment
	DriverID  *string `json:"driver_id,omitempty"  db:"driver_id"`
	VehicleID *string `json:"vehicle_id,omitempty" db:"vehicle_id"`

	Status        JobStatus     `json:"status"         db:"status"`
	StatusHistory StatusHistory `json:"status_history" db:"status_history"`

	// Evidence
	CollectionPhoto *string  `json:"collection_photo,omitempty"  db:"collection_photo"`
	DeliveryPhotos  []string `json:"delivery_photos,omitempty"   db:"delivery_photos"`
	SignatureData   *string  `json:"signature_data,omitempty"    db:"signature_data"`
	SignatureName   *string  `json:"signature_name,omitempty"    db:"signature_name"`
	DisputeReason   *string  `json:"dispute_reason,omitempty"    db:"dispute_reason"`
	DriverNotes     *string  `json:"driver_notes,omitempty"      db:"driver_notes"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// HistoryConsistent reports whether the last history entry's status equals
// the job's current status field.
func (j *Job) HistoryConsistent() bool {
	last, ok := j.StatusHistory.Last()
	return ok && last.Status == j.Status
}

// CurrentStatus reconstructs the authoritative status from the audit
// trail, preferring the trail over the status field if the two ever drift.
func (j *Job) CurrentStatus() JobStatus {
	if last, ok := j.StatusHistory.Last(); ok {
		return last.Status
	}
	return j.Status
}

// AssignedTo reports whether the given driver holds the mutation
// capability for this job.
func (j *Job) AssignedTo(driverID string) bool {
	return j.DriverID != nil && *j.DriverID == driverID && driverID != ""
}

// Clone returns a deep copy. Stores hand out clones so callers can never
// alias internal state.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	cp := *j
	cp.StatusHistory = j.StatusHistory.Clone()
	if j.DeliveryPhotos != nil {
		cp.DeliveryPhotos = append([]string(nil), j.DeliveryPhotos...)
	}
	cp.PickupAt = cloneTimePtr(j.PickupAt)
	cp.DeliveryAt = cloneTimePtr(j.DeliveryAt)
	cp.WeightKg = cloneFloatPtr(j.WeightKg)
	cp.DriverID = cloneStringPtr(j.DriverID)
	cp.VehicleID = cloneStringPtr(j.VehicleID)
	cp.CollectionPhoto = cloneStringPtr(j.CollectionPhoto)
	cp.SignatureData = cloneStringPtr(j.SignatureData)
	cp.SignatureName = cloneStringPtr(j.SignatureName)
	cp.DisputeReason = cloneStringPtr(j.DisputeReason)
	cp.DriverNotes = cloneStringPtr(j.DriverNotes)
	return &cp
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTimePtr(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFloatPtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// CreateJobRequest represents a staff request to create a new job. New
// jobs always start in draft; the store assigns id, ref, and the initial
// history entry.
type CreateJobRequest struct {
	CompanyID string `json:"company_id"`
	CreatedBy string `json:"created_by"`

	PickupLocation   string     `json:"pickup_location"`
	PickupAt         *time.Time `json:"pickup_at,omitempty"`
	DeliveryLocation string     `json:"delivery_location"`
	DeliveryAt       *time.Time `json:"delivery_at,omitempty"`

	CargoType           string   `json:"cargo_type"`
	LoadDetails         string   `json:"load_details,omitempty"`
	SpecialRequirements string   `json:"special_requirements,omitempty"`
	WeightKg            *float64 `json:"weight_kg,omitempty"`

	DriverID  *string `json:"driver_id,omitempty"`
	VehicleID *string `json:"vehicle_id,omitempty"`
}

// Validate validates the CreateJobRequest fields.
func (r *CreateJobRequest) Validate() error {
	if strings.TrimSpace(r.CreatedBy) == "" {
		return apperrors.ValidationField("created_by", "created_by is required")
	}
	if strings.TrimSpace(r.PickupLocation) == "" {
		return apperrors.ValidationField("pickup_location", "pickup location is required")
	}
	if strings.TrimSpace(r.DeliveryLocation) == "" {
		return apperrors.ValidationField("delivery_location", "delivery location is required")
	}
	if strings.TrimSpace(r.CargoType) == "" {
		return apperrors.ValidationField("cargo_type", "cargo type is required")
	}
	if r.WeightKg != nil && *r.WeightKg < 0 {
		return apperrors.ValidationField("weight_kg", "weight must be >= 0")
	}
	return nil
}

// ListOptions filters job listings. Zero values mean "no filter".
type ListOptions struct {
	Status   JobStatus
	DriverID string
	Limit    int
	Offset   int
}

// JobStats counts jobs per status within one tenant.
type JobStats struct {
	Draft     int `json:"draft"`
	Posted    int `json:"posted"`
	Allocated int `json:"allocated"`
	InTransit int `json:"in_transit"`
	Delivered int `json:"delivered"`
	Cancelled int `json:"cancelled"`
	Disputed  int `json:"disputed"`
}
