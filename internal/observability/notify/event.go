// Package notify defines the post-commit notification contract. Sinks
// bridge to external channels (email, WhatsApp gateways); a sink failure
// is logged and never rolls back the transition that triggered it.
package notify

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// StatusChange is the canonical payload emitted after a successful status
// transition commit.
type StatusChange struct {
	JobID      string
	Ref        string
	CompanyID  string
	NewStatus  string
	OccurredAt time.Time
}

// Sink describes a destination capable of consuming status change
// notifications.
type Sink interface {
	SendStatusChange(ctx context.Context, change StatusChange) error
}

// SinkFunc adapts a function to the Sink interface (useful for tests).
type SinkFunc func(ctx context.Context, change StatusChange) error

// SendStatusChange implements the Sink interface.
func (f SinkFunc) SendStatusChange(ctx context.Context, change StatusChange) error {
	if f == nil {
		return nil
	}
	return f(ctx, change)
}

// Dispatcher fans a status change out to every configured sink. Failures
// are logged per sink; the dispatcher never returns them to the caller.
type Dispatcher struct {
	sinks  []Sink
	logger *slog.Logger
}

// NewDispatcher creates a dispatcher over the given sinks.
func NewDispatcher(logger *slog.Logger, sinks ...Sink) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{sinks: sinks, logger: logger}
}

// Dispatch delivers the change to all sinks concurrently and waits for
// them to finish. Errors are logged, never propagated.
func (d *Dispatcher) Dispatch(ctx context.Context, change StatusChange) {
	if len(d.sinks) == 0 {
		return
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, sink := range d.sinks {
		sink := sink
		g.Go(func() error {
			if err := sink.SendStatusChange(gctx, change); err != nil {
				d.logger.WarnContext(ctx, "status change notification failed",
					"job_id", change.JobID,
					"status", change.NewStatus,
					"error", err,
				)
			}
			return nil
		})
	}
	// Sinks swallow their own errors; Wait only orders completion.
	_ = g.Wait()
}
