package testutil

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// SeedCompany inserts a company row and returns its id.
func SeedCompany(t TestingTB, db *sql.DB, name string) string {
	t.Helper()

	id := uuid.NewString()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx,
		`INSERT INTO companies (id, name) VALUES ($1, $2)`, id, name); err != nil {
		t.Fatalf("seed company %s: %v", name, err)
	}
	return id
}

// SeedMembership inserts an active membership linking a user to a
// company.
func SeedMembership(t TestingTB, db *sql.DB, userID, companyID string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx,
		`INSERT INTO company_memberships (user_id, company_id, role, active) VALUES ($1, $2, 'staff', TRUE)`,
		userID, companyID); err != nil {
		t.Fatalf("seed membership %s/%s: %v", userID, companyID, err)
	}
}

// SeedDriver inserts an active driver and returns its id.
func SeedDriver(t TestingTB, db *sql.DB, companyID, name string) string {
	t.Helper()

	id := uuid.NewString()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx,
		`INSERT INTO drivers (id, company_id, display_name, active) VALUES ($1, $2, $3, TRUE)`,
		id, companyID, name); err != nil {
		t.Fatalf("seed driver %s: %v", name, err)
	}
	return id
}
