package cmd

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/graph-metrics/pkg/pprof"
	"github.com/graph-metrics/pkg/telemetry"
	"github.com/graph-metrics/pkg/utils"
)

var (
	// Global flags
	configPath string
	verbose    bool
	logger     utils.Logger

	telemetryConfig   *telemetry.Config
	telemetryShutdown telemetry.ShutdownFunc

	// Pprof flags
	pprofEnabled  bool
	pprofMode     string
	pprofDir      string
	pprofProfiles string
	pprofAddr     string

	pprofSession *pprof.Session
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "graph-metrics",
	Short: "Parallel per-node graph metrics",
	Long: `graph-metrics computes per-node metrics of large graphs on a fixed pool of
workers and exports one row per node.

Supported algorithms:
  - triangle_count               : triangles each node takes part in
  - local_clustering_coefficient : local clustering coefficient of each node`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logLevel := utils.LevelInfo
		if verbose {
			logLevel = utils.LevelDebug
		}
		logger = utils.NewDefaultLogger(logLevel, os.Stderr)
		utils.SetGlobalLogger(logger)

		telemetryConfig = telemetry.LoadFromEnv()
		shutdown, err := telemetry.Init(cmd.Context(), telemetryConfig)
		if err != nil {
			logger.Warn("Tracing disabled: %v", err)
			telemetryConfig.Enabled = false
		}
		telemetryShutdown = shutdown

		if pprofEnabled {
			profiles, err := pprof.ParseProfileTypes(pprofProfiles)
			if err != nil {
				return err
			}
			session, err := pprof.Start(pprof.Config{
				Mode:      pprof.Mode(pprofMode),
				Profiles:  profiles,
				OutputDir: pprofDir,
				Addr:      pprofAddr,
			}, logger)
			if err != nil {
				return err
			}
			pprofSession = session
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if pprofSession != nil {
			files, err := pprofSession.Stop()
			if err != nil {
				logger.Warn("Failed to stop pprof collection: %v", err)
			}
			for _, f := range files {
				logger.Info("pprof data saved to: %s", f)
			}
			pprofSession = nil
		}
		if telemetryShutdown == nil {
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetryShutdown(ctx); err != nil {
			logger.Warn("Failed to flush traces: %v", err)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")

	// Pprof flags
	rootCmd.PersistentFlags().BoolVar(&pprofEnabled, "pprof", false, "Enable pprof performance profiling")
	rootCmd.PersistentFlags().StringVar(&pprofMode, "pprof-mode", "file", "Pprof mode: file (profiles written on exit) or http (on-demand)")
	rootCmd.PersistentFlags().StringVar(&pprofDir, "pprof-dir", "./pprof", "Output directory for pprof data")
	rootCmd.PersistentFlags().StringVar(&pprofProfiles, "pprof-profiles", "cpu,heap", "Comma-separated profile types: cpu,heap,goroutine,block,mutex,allocs")
	rootCmd.PersistentFlags().StringVar(&pprofAddr, "pprof-addr", "localhost:6060", "HTTP listen address for http mode")

	binName := BinName()
	rootCmd.Example = `  # Count triangles of an edge list
  ` + binName + ` compute -i ./graph.txt -o ./output

  # Local clustering coefficient with 16 workers, CSV output
  ` + binName + ` compute -i ./graph.adj --input-format adjacency -a lcc -w 16 -f csv

  # Profile a large run
  ` + binName + ` compute -i ./big.txt.zst -w 32 --pprof --pprof-profiles cpu,heap,mutex

  # Generate a random graph to experiment with
  ` + binName + ` generate --kind random -n 10000 --p 0.001 -o ./random.txt`
}

// GetLogger returns the configured logger
func GetLogger() utils.Logger {
	return logger
}

// BinName returns the base name of the current executable
func BinName() string {
	return filepath.Base(os.Args[0])
}
