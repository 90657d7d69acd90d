// dispatch-admin is the operational CLI for the dispatch job system:
// migrations, development seeding, and job inspection or transition from
// the command line.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/xdrive-logistics/dispatch/config"
	"github.com/xdrive-logistics/dispatch/internal/bootstrap"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
}

func main() {
	logger := bootstrap.InitLogger()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		logger.Error("unknown command", "command", cmdName)
		printUsage()
		os.Exit(2)
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: logger,
		Config: cfg,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1)
	}
}

func commands() map[string]command {
	return map[string]command{
		"migrate": {
			name:        "migrate",
			description: "Run database migrations",
			run:         runMigrate,
		},
		"seed": {
			name:        "seed",
			description: "Seed development data (company, staff membership, drivers, jobs)",
			run:         runSeed,
		},
		"list": {
			name:        "list",
			description: "List jobs, optionally filtered by status or driver",
			run:         runList,
		},
		"show": {
			name:        "show",
			description: "Show one job including its status history",
			run:         runShow,
		},
		"transition": {
			name:        "transition",
			description: "Attempt a status transition as a staff actor",
			run:         runTransition,
		},
		"stats": {
			name:        "stats",
			description: "Show per-status job counts",
			run:         runStats,
		},
	}
}

func printUsage() {
	out := os.Stdout
	writeLine(out, "Usage: dispatch-admin <command> [flags]")
	writeLine(out, "")
	writeLine(out, "Available commands:")
	for _, name := range []string{"migrate", "seed", "list", "show", "transition", "stats"} {
		c := commands()[name]
		writeLinef(out, "  %-12s %s", c.name, c.description)
	}
}
