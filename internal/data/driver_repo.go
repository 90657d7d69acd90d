package data

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5"

	"github.com/xdrive-logistics/dispatch/internal/data/pgxutil"
	"github.com/xdrive-logistics/dispatch/internal/domain/model"
	apperrors "github.com/xdrive-logistics/dispatch/internal/errors"
)

// DriverRepo reads driver records.
type DriverRepo struct {
	DB *sql.DB
}

// NewDriverRepo creates a DriverRepo.
func NewDriverRepo(db *sql.DB) *DriverRepo {
	return &DriverRepo{DB: db}
}

const driverGetQuery = `
  SELECT id, company_id, display_name, active, created_at
  FROM drivers
  WHERE id = $1`

const driverListByCompanyQuery = `
  SELECT id, company_id, display_name, active, created_at
  FROM drivers
  WHERE company_id = $1
  ORDER BY display_name ASC`

// GetByID retrieves a driver by id.
func (r *DriverRepo) GetByID(ctx context.Context, id string) (*model.Driver, error) {
	var out model.Driver
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qerr := conn.Query(ctx, driverGetQuery, id)
		if qerr != nil {
			return qerr
		}
		defer rows.Close()
		out, qerr = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Driver])
		return qerr
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// ListByCompany returns a tenant's drivers ordered by display name.
func (r *DriverRepo) ListByCompany(ctx context.Context, companyID string) ([]model.Driver, error) {
	var out []model.Driver
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qerr := conn.Query(ctx, driverListByCompanyQuery, companyID)
		if qerr != nil {
			return qerr
		}
		defer rows.Close()
		out, qerr = pgx.CollectRows(rows, pgx.RowToStructByName[model.Driver])
		return qerr
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return out, nil
}
