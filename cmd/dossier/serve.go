package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dossier/internal/server"
)

// serveCmd runs the HTTP service plus the interval scheduler
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server and the sweep scheduler",
	Long: `Serves the idea surface over HTTP and, when sweep.interval is configured,
runs the surveillance sweep on that interval. A manual sweep can always be
triggered with POST /sweep; the scheduler and the trigger share one in-flight
guard so sweeps never overlap. Shuts down gracefully on SIGINT/SIGTERM.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	app, err := openApp(context.Background())
	if err != nil {
		return err
	}
	defer app.Close()

	guard := &server.SweepGuard{}
	srv := server.New(app.engine, app.pipeline, app.records, server.Config{
		Version: version,
		Token:   cfg.Server.AuthToken,
		Logger:  logger,
		Guard:   guard,
	})

	if interval := cfg.SweepInterval(); interval > 0 {
		sched := server.NewScheduler(app.engine, interval, guard)
		sched.Start()
		defer sched.Stop()
		logger.Info("sweep scheduler running", zap.Duration("interval", interval))
	} else {
		logger.Info("sweep scheduler disabled; trigger sweeps via POST /sweep or 'dossier sweep'")
	}

	logger.Info("dossier serving",
		zap.String("addr", cfg.ListenAddr()),
		zap.String("version", version),
		zap.Bool("auth", cfg.Server.AuthToken != ""),
	)
	if err := server.Run(srv.HTTPServer(cfg.ListenAddr())); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
