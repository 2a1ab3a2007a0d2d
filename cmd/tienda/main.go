// Package main implements the tienda command line tool: a small inventory
// and sales record keeper backed by two CSV files.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/velmoro/tienda/internal/app"
	"github.com/velmoro/tienda/internal/config"
	"github.com/velmoro/tienda/internal/pkg/bootstrap"
	"github.com/velmoro/tienda/internal/pkg/configloader"
	"github.com/velmoro/tienda/internal/transport/cli"
)

const appName = "tienda"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		os.Exit(1)
	}
}

// run loads configuration, builds the dependency graph and dispatches the
// requested command.
func run(ctx context.Context, args []string) error {
	cfg, cfgErr := configloader.Load[*config.Config](appName)
	if cfgErr != nil {
		log.Printf("failed to load configuration: %v", cfgErr)
		return cfgErr
	}

	// Logs go to stderr so command output on stdout stays clean. Every
	// invocation carries a run id for correlating its log records.
	logger := bootstrap.NewLogger(cfg.Log.Level, os.Stderr).With(slog.String("run_id", uuid.NewString()))
	slog.SetDefault(logger)
	logger.Debug("configuration loaded", "config", fmt.Sprintf("%v", cfg))

	deps := app.SetupDependencies(cfg, logger)
	handler := cli.NewHandler(deps.Catalog, deps.Sales, deps.Logger, os.Stdout, cfg.Report.TopLimit)
	return handler.Run(ctx, args)
}
