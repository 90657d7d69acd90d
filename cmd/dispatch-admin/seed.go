package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"

	"github.com/google/uuid"

	"github.com/xdrive-logistics/dispatch/internal/data"
	"github.com/xdrive-logistics/dispatch/internal/data/pgxutil"
	"github.com/xdrive-logistics/dispatch/internal/domain/model"
)

type seedResult struct {
	CompanyID string
	StaffID   string
	DriverIDs []string
	JobRefs   []string
}

func runSeed(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	companyName := fs.String("company-name", "XDrive Logistics", "company name to create")
	staffID := fs.String("staff", "seed-staff", "staff user id to grant membership")
	drivers := fs.Int("drivers", 2, "number of drivers to create")
	jobs := fs.Int("jobs", 3, "number of draft jobs to create")
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, err := connectDB(cmdCtx)
	if err != nil {
		return err
	}
	defer closeDB(cmdCtx, db)

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, commandTimeout)
	defer cancel()

	if err := data.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	res, err := seedTenant(ctx, db, *companyName, *staffID, *drivers)
	if err != nil {
		return err
	}

	repo := data.NewJobRepo(db, data.RepoConfig{Logger: cmdCtx.Logger})
	for i := 0; i < *jobs; i++ {
		job, createErr := repo.Create(ctx, &model.CreateJobRequest{
			CompanyID:        res.CompanyID,
			CreatedBy:        res.StaffID,
			PickupLocation:   fmt.Sprintf("Warehouse %d", i+1),
			DeliveryLocation: fmt.Sprintf("Customer site %d", i+1),
			CargoType:        "pallets",
		})
		if createErr != nil {
			return fmt.Errorf("seed job %d: %w", i+1, createErr)
		}
		res.JobRefs = append(res.JobRefs, job.Ref)
	}

	cmdCtx.Logger.Info("seed complete",
		"company_id", res.CompanyID,
		"staff_id", res.StaffID,
		"drivers", len(res.DriverIDs),
		"job_refs", res.JobRefs,
	)
	return nil
}

// seedTenant creates the company, the staff membership, and the drivers
// in one transaction so a partial seed never leaks into the database.
func seedTenant(ctx context.Context, db *sql.DB, companyName, staffID string, driverCount int) (*seedResult, error) {
	res := &seedResult{CompanyID: uuid.NewString(), StaffID: staffID}

	err := pgxutil.WithSQLTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO companies (id, name) VALUES ($1, $2)`,
			res.CompanyID, companyName); err != nil {
			return fmt.Errorf("insert company: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO company_memberships (user_id, company_id, role, active) VALUES ($1, $2, 'staff', TRUE)`,
			staffID, res.CompanyID); err != nil {
			return fmt.Errorf("insert membership: %w", err)
		}
		for i := 0; i < driverCount; i++ {
			id := uuid.NewString()
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO drivers (id, company_id, display_name, active) VALUES ($1, $2, $3, TRUE)`,
				id, res.CompanyID, fmt.Sprintf("Driver %d", i+1)); err != nil {
				return fmt.Errorf("insert driver %d: %w", i+1, err)
			}
			res.DriverIDs = append(res.DriverIDs, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
