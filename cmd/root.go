package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwbudde/patchmatch/internal/interp"
)

var (
	logLevel    string
	backendName string
	logger      *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "patchmatch",
	Short: "Sub-pixel patch sampling and patch matching",
	Long: `patchmatch samples image patches at sub-pixel positions with bilinear
interpolation and compares them with SSD and zero-mean SSD costs.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Setup logger
		var level slog.Level
		switch logLevel {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}

		opts := &slog.HandlerOptions{Level: level}
		handler := slog.NewJSONHandler(os.Stderr, opts)
		logger = slog.New(handler)
		slog.SetDefault(logger)

		if backendName != "" {
			b, err := interp.ParseBackend(backendName)
			if err != nil {
				return fmt.Errorf("--backend: %w", err)
			}
			interp.SetBackend(b)
		}
		slog.Debug("Sampler backend", "backend", interp.ActiveBackend().String())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&backendName, "backend", "", "Sampler backend (reference, unrolled, packed); overrides "+interp.BackendEnv)
}
