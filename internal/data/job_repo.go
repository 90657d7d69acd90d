// Package data implements the persistence gateway against PostgreSQL.
// Repositories speak pgx through the database/sql pool and translate
// driver errors into the application taxonomy at the boundary.
package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/xdrive-logistics/dispatch/internal/core"
	"github.com/xdrive-logistics/dispatch/internal/data/pgxutil"
	"github.com/xdrive-logistics/dispatch/internal/domain/model"
	apperrors "github.com/xdrive-logistics/dispatch/internal/errors"
)

// JobRepo provides database operations for dispatch jobs. It implements
// core.JobStore with explicit tenant filtering on every statement.
type JobRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

// RepoConfig holds optional collaborators for repositories.
type RepoConfig struct {
	Logger       *slog.Logger
	TimeProvider TimeProvider
}

// NewJobRepo creates a JobRepo with the given database connection.
func NewJobRepo(db *sql.DB, cfg RepoConfig) *JobRepo {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &JobRepo{DB: db, timeProvider: tp, logger: logger}
}

// Create inserts a draft job. The reference is drawn from the jobs_ref_seq
// sequence inside the insert itself, so concurrent creates never collide.
func (r *JobRepo) Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	if req == nil {
		return nil, apperrors.Validation("create job request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := r.timeProvider.Now().UTC()
	history, err := json.Marshal(model.StatusHistory{{Status: model.JobStatusDraft, Timestamp: now}})
	if err != nil {
		return nil, fmt.Errorf("marshal initial history: %w", err)
	}

	var out model.Job
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qerr := conn.Query(ctx, jobInsertQuery,
			uuid.NewString(),
			req.CompanyID,
			req.CreatedBy,
			req.PickupLocation,
			req.PickupAt,
			req.DeliveryLocation,
			req.DeliveryAt,
			req.CargoType,
			req.LoadDetails,
			req.SpecialRequirements,
			req.WeightKg,
			req.DriverID,
			req.VehicleID,
			model.JobStatusDraft,
			history,
			now,
		)
		if qerr != nil {
			return qerr
		}
		defer rows.Close()
		out, qerr = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Job])
		return qerr
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// Get returns the job visible under the scope. A job in another tenant
// and a job that does not exist produce the same NotFound.
func (r *JobRepo) Get(ctx context.Context, id string, scope model.TenantScope) (*model.Job, error) {
	var out model.Job
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qerr := conn.Query(ctx, jobGetQuery, id, scope.Implicit, scope.CompanyID)
		if qerr != nil {
			return qerr
		}
		defer rows.Close()
		out, qerr = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Job])
		return qerr
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// List returns jobs under the scope, newest first.
func (r *JobRepo) List(ctx context.Context, scope model.TenantScope, opts model.ListOptions) ([]*model.Job, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	var rowsOut []model.Job
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qerr := conn.Query(ctx, jobListQuery,
			scope.Implicit,
			scope.CompanyID,
			string(opts.Status),
			opts.DriverID,
			limit,
			offset,
		)
		if qerr != nil {
			return qerr
		}
		defer rows.Close()
		rowsOut, qerr = pgx.CollectRows(rows, pgx.RowToStructByName[model.Job])
		return qerr
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}

	res := make([]*model.Job, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}

// CompareAndSetStatus applies the transition only if the job's status
// still equals params.Expected. Status, history entry, and evidence
// commit atomically in a single statement.
func (r *JobRepo) CompareAndSetStatus(ctx context.Context, params core.CompareAndSetParams) (*model.Job, error) {
	event, err := json.Marshal(params.Event)
	if err != nil {
		return nil, fmt.Errorf("marshal history event: %w", err)
	}

	var sigData, sigName *string
	if params.Patch.Signature != nil {
		sigData = &params.Patch.Signature.Data
		sigName = &params.Patch.Signature.SignerName
	}

	var out model.Job
	casErr := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qerr := conn.Query(ctx, jobCompareAndSetQuery,
			params.Target,
			event,
			params.AssignDriverID,
			params.Patch.CollectionPhoto,
			params.Patch.DeliveryPhotos,
			sigData,
			sigName,
			params.Patch.DisputeReason,
			r.timeProvider.Now().UTC(),
			params.JobID,
			params.Expected,
			params.Scope.Implicit,
			params.Scope.CompanyID,
		)
		if qerr != nil {
			return qerr
		}
		defer rows.Close()
		out, qerr = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Job])
		return qerr
	})
	if casErr == nil {
		return &out, nil
	}

	mapped := apperrors.MapDBError(casErr)
	if !apperrors.IsNotFound(mapped) {
		return nil, mapped
	}
	// Zero rows: either the row is gone or the status guard failed.
	// Re-probe to split the two.
	if _, getErr := r.Get(ctx, params.JobID, params.Scope); getErr != nil {
		return nil, getErr
	}
	return nil, apperrors.Conflictf("job status is no longer %s", params.Expected)
}

// UpdateDriverNotes replaces driver notes without touching the history.
func (r *JobRepo) UpdateDriverNotes(ctx context.Context, id string, scope model.TenantScope, notes string) (*model.Job, error) {
	var out model.Job
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qerr := conn.Query(ctx, jobUpdateNotesQuery,
			notes,
			r.timeProvider.Now().UTC(),
			id,
			scope.Implicit,
			scope.CompanyID,
		)
		if qerr != nil {
			return qerr
		}
		defer rows.Close()
		out, qerr = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Job])
		return qerr
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// CountByStatus aggregates per-status counts within the scope.
func (r *JobRepo) CountByStatus(ctx context.Context, scope model.TenantScope) (*model.JobStats, error) {
	stats := &model.JobStats{}
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qerr := conn.Query(ctx, jobCountByStatusQuery, scope.Implicit, scope.CompanyID)
		if qerr != nil {
			return qerr
		}
		defer rows.Close()
		for rows.Next() {
			var status model.JobStatus
			var n int
			if scanErr := rows.Scan(&status, &n); scanErr != nil {
				return scanErr
			}
			switch status {
			case model.JobStatusDraft:
				stats.Draft = n
			case model.JobStatusPosted:
				stats.Posted = n
			case model.JobStatusAllocated:
				stats.Allocated = n
			case model.JobStatusInTransit:
				stats.InTransit = n
			case model.JobStatusDelivered:
				stats.Delivered = n
			case model.JobStatusCancelled:
				stats.Cancelled = n
			case model.JobStatusDisputed:
				stats.Disputed = n
			}
		}
		return rows.Err()
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return stats, nil
}
