package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"dossier/internal/config"
	"dossier/internal/logging"
)

const version = "0.1.0"

var (
	// Global flags
	configPath string
	dataDir    string
	verbose    bool

	// Built in PersistentPreRunE, shared by all commands
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "dossier",
	Short: "dossier - business idea surveillance service",
	Long: `dossier tracks business ideas and keeps their viability assessments current.

Each tracked idea gets an AI-built SWOT analysis and confidence score at
intake. The surveillance sweep then re-researches every idea on a schedule,
rescores it against fresh findings, and leaves a consolidated intelligence
report waiting for the owner's next visit. Reports stack while unread and
collapse back to a full re-assessment once read.

Run 'dossier serve' for the HTTP service, or use the idea/sweep commands
directly against the same data directory.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			zapCfg.Encoding = "console"
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if dataDir != "" {
			cfg.Data.Dir = dataDir
		}
		if verbose {
			cfg.Logging.Level = "debug"
		}
		if dir := cfg.LogsDir(); dir != "" {
			if err := logging.Initialize(dir, cfg.Logging.Level); err != nil {
				logger.Warn("category logging disabled", zap.Error(err))
			}
		}
		logging.Config("active config: provider=%s model=%s data_dir=%s sweep_workers=%d sweep_interval=%q",
			cfg.LLM.Provider, cfg.LLM.Model, cfg.Data.Dir, cfg.SweepWorkers(), cfg.Sweep.Interval)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "dossier.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Data directory (overrides the config file)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	// Idea subcommands
	ideaCmd.AddCommand(ideaAddCmd)
	ideaCmd.AddCommand(ideaShowCmd)
	ideaCmd.AddCommand(ideaListCmd)

	// Add commands to root
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(ideaCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
