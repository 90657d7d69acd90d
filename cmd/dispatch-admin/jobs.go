package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/xdrive-logistics/dispatch/internal/bootstrap"
	"github.com/xdrive-logistics/dispatch/internal/core"
	"github.com/xdrive-logistics/dispatch/internal/data"
	"github.com/xdrive-logistics/dispatch/internal/domain/auth"
	"github.com/xdrive-logistics/dispatch/internal/domain/model"
	"github.com/xdrive-logistics/dispatch/internal/evidence"
)

const commandTimeout = 2 * time.Minute

func writeLine(w io.Writer, s string) {
	fmt.Fprintln(w, s)
}

func writeLinef(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format+"\n", args...)
}

func connectDB(cmdCtx *commandContext) (*sql.DB, error) {
	if !cmdCtx.Config.Postgres.Configured() {
		return nil, fmt.Errorf("no remote database configured (set DB_HOST)")
	}
	return bootstrap.ConnectDB(cmdCtx.Config.Postgres, cmdCtx.Logger)
}

func closeDB(cmdCtx *commandContext, db *sql.DB) {
	if err := db.Close(); err != nil {
		cmdCtx.Logger.Warn("db close failed", "error", err)
	}
}

func runMigrate(cmdCtx *commandContext, _ []string) error {
	db, err := connectDB(cmdCtx)
	if err != nil {
		return err
	}
	defer closeDB(cmdCtx, db)

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, 5*time.Minute)
	defer cancel()

	if err := data.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	cmdCtx.Logger.Info("migrations complete")
	return nil
}

func runList(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	company := fs.String("company", "", "tenant company id (required)")
	status := fs.String("status", "", "filter by status")
	driver := fs.String("driver", "", "filter by driver id")
	limit := fs.Int("limit", 50, "maximum rows")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *company == "" {
		return fmt.Errorf("-company is required")
	}

	opts := model.ListOptions{DriverID: *driver, Limit: *limit}
	if *status != "" {
		var st model.JobStatus
		if err := st.UnmarshalText([]byte(*status)); err != nil {
			return err
		}
		opts.Status = st
	}

	db, err := connectDB(cmdCtx)
	if err != nil {
		return err
	}
	defer closeDB(cmdCtx, db)

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, commandTimeout)
	defer cancel()

	repo := data.NewJobRepo(db, data.RepoConfig{Logger: cmdCtx.Logger})
	jobs, err := repo.List(ctx, model.TenantScope{CompanyID: *company}, opts)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	writeLine(w, "REF\tSTATUS\tDRIVER\tPICKUP\tDELIVERY\tCREATED")
	for _, j := range jobs {
		driverID := "-"
		if j.DriverID != nil {
			driverID = *j.DriverID
		}
		writeLinef(w, "%s\t%s\t%s\t%s\t%s\t%s",
			j.Ref, j.Status, driverID, j.PickupLocation, j.DeliveryLocation,
			j.CreatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}

func runShow(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	company := fs.String("company", "", "tenant company id (required)")
	id := fs.String("id", "", "job id (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *company == "" || *id == "" {
		return fmt.Errorf("-company and -id are required")
	}

	db, err := connectDB(cmdCtx)
	if err != nil {
		return err
	}
	defer closeDB(cmdCtx, db)

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, commandTimeout)
	defer cancel()

	repo := data.NewJobRepo(db, data.RepoConfig{Logger: cmdCtx.Logger})
	job, err := repo.Get(ctx, *id, model.TenantScope{CompanyID: *company})
	if err != nil {
		return err
	}

	out := os.Stdout
	writeLinef(out, "Job %s (%s)", job.Ref, job.ID)
	writeLinef(out, "  Status:    %s", job.Status)
	writeLinef(out, "  Route:     %s -> %s", job.PickupLocation, job.DeliveryLocation)
	writeLinef(out, "  Cargo:     %s", job.CargoType)
	if job.DriverID != nil {
		writeLinef(out, "  Driver:    %s", *job.DriverID)
	}
	if job.CollectionPhoto != nil {
		writeLine(out, "  Collection photo attached")
	}
	if len(job.DeliveryPhotos) > 0 {
		writeLinef(out, "  Delivery photos: %d", len(job.DeliveryPhotos))
	}
	if job.SignatureName != nil {
		writeLinef(out, "  Signed by: %s", *job.SignatureName)
	}
	if job.DisputeReason != nil {
		writeLinef(out, "  Dispute:   %s", *job.DisputeReason)
	}
	writeLine(out, "  History:")
	for _, ev := range job.StatusHistory {
		writeLinef(out, "    %s  %s", ev.Timestamp.Format(time.RFC3339), ev.Status)
	}
	return nil
}

func runTransition(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("transition", flag.ContinueOnError)
	company := fs.String("company", "", "tenant company id (required)")
	id := fs.String("id", "", "job id (required)")
	target := fs.String("to", "", "target status (required)")
	actorID := fs.String("actor", "admin-cli", "staff actor id")
	driver := fs.String("assign-driver", "", "driver id to assign (allocation)")
	reason := fs.String("dispute-reason", "", "reason when disputing")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *company == "" || *id == "" || *target == "" {
		return fmt.Errorf("-company, -id and -to are required")
	}

	var st model.JobStatus
	if err := st.UnmarshalText([]byte(*target)); err != nil {
		return err
	}

	db, err := connectDB(cmdCtx)
	if err != nil {
		return err
	}
	defer closeDB(cmdCtx, db)

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, commandTimeout)
	defer cancel()

	repo := data.NewJobRepo(db, data.RepoConfig{Logger: cmdCtx.Logger})
	svc := core.NewLifecycleService(core.LifecycleServiceOptions{
		Store:  core.NewRetryingJobStore(repo, cmdCtx.Config.Store.ReadRetryDelay, cmdCtx.Logger),
		Logger: cmdCtx.Logger,
	})

	req := core.TransitionRequest{JobID: *id, Target: st}
	if *driver != "" {
		req.AssignDriverID = driver
	}
	if *reason != "" {
		req.Patch = evidence.Patch{DisputeReason: reason}
	}

	actor := auth.Actor{ID: *actorID, Kind: auth.ActorStaff, CompanyID: *company}
	job, err := svc.AttemptTransition(ctx, actor, model.TenantScope{CompanyID: *company}, req)
	if err != nil {
		return err
	}
	cmdCtx.Logger.Info("transition applied", "ref", job.Ref, "status", job.Status)
	return nil
}

func runStats(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	company := fs.String("company", "", "tenant company id (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *company == "" {
		return fmt.Errorf("-company is required")
	}

	db, err := connectDB(cmdCtx)
	if err != nil {
		return err
	}
	defer closeDB(cmdCtx, db)

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, commandTimeout)
	defer cancel()

	repo := data.NewJobRepo(db, data.RepoConfig{Logger: cmdCtx.Logger})
	stats, err := repo.CountByStatus(ctx, model.TenantScope{CompanyID: *company})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	writeLine(w, "STATUS\tCOUNT")
	writeLinef(w, "draft\t%d", stats.Draft)
	writeLinef(w, "posted\t%d", stats.Posted)
	writeLinef(w, "allocated\t%d", stats.Allocated)
	writeLinef(w, "in_transit\t%d", stats.InTransit)
	writeLinef(w, "delivered\t%d", stats.Delivered)
	writeLinef(w, "cancelled\t%d", stats.Cancelled)
	writeLinef(w, "disputed\t%d", stats.Disputed)
	return w.Flush()
}
