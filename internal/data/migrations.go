package data

import (
	"context"
	"database/sql"

	"github.com/xdrive-logistics/dispatch/internal/migrate"
)

// RunMigrations sets up the required schema by delegating to the migrate
// package. Safe to call on every startup.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrate.Run(ctx, db)
}
