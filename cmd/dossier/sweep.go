package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// sweepCmd runs a single synchronous sweep
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run one surveillance sweep and exit",
	Long: `Surveils every stasis and active idea once: research, re-assessment or
report consolidation, and persistence. Prints the sweep summary. Safe to run
from cron against the same data directory the server uses.`,
	RunE: runSweep,
}

func runSweep(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, stopping sweep")
		cancel()
	}()

	app, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	summary, err := app.engine.RunSweep(ctx)
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}
	fmt.Printf("Sweep complete: processed=%d failed=%d total=%d\n",
		summary.Processed, summary.Failed, summary.Total)
	return nil
}
