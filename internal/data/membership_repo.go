package data

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5"

	"github.com/xdrive-logistics/dispatch/internal/data/pgxutil"
	"github.com/xdrive-logistics/dispatch/internal/domain/model"
	apperrors "github.com/xdrive-logistics/dispatch/internal/errors"
)

// MembershipRepo reads staff-to-company memberships.
type MembershipRepo struct {
	DB *sql.DB
}

// NewMembershipRepo creates a MembershipRepo.
func NewMembershipRepo(db *sql.DB) *MembershipRepo {
	return &MembershipRepo{DB: db}
}

const membershipListQuery = `
  SELECT user_id, company_id, role, active, created_at
  FROM company_memberships
  WHERE user_id = $1
  ORDER BY created_at ASC`

// MembershipsFor returns all memberships of a user, oldest first. An
// unknown user yields an empty slice, not an error; authorization policy
// lives with the caller.
func (r *MembershipRepo) MembershipsFor(ctx context.Context, userID string) ([]model.Membership, error) {
	var out []model.Membership
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, qerr := conn.Query(ctx, membershipListQuery, userID)
		if qerr != nil {
			return qerr
		}
		defer rows.Close()
		out, qerr = pgx.CollectRows(rows, pgx.RowToStructByName[model.Membership])
		return qerr
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return out, nil
}
