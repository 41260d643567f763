// Package root wires the bipcal CLI: standalone calendar generation, the
// full reschedule procedure, Google authorization, and run history.
package root

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jordanwei/bipcal/pkg/auth"
	"github.com/jordanwei/bipcal/pkg/config"
	"github.com/jordanwei/bipcal/pkg/gcal"
	"github.com/jordanwei/bipcal/pkg/logging"
	"github.com/jordanwei/bipcal/pkg/store"
	"github.com/jordanwei/bipcal/pkg/upload"
)

const Version = "0.3.0"

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "bipcal",
	Short:         "Task calendar and reschedule engine for build-in-public planning documents",
	Long:          "bipcal scans project planning documents for dated tasks, packs them into day slots, publishes an ICS calendar, and reschedules overdue tasks under per-project time budgets.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(
		newCalendarCmd(),
		newRescheduleCmd(),
		newAuthCmd(),
		newHistoryCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, *zap.Logger, error) {
	log := logging.NewLogger(verbose)
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if len(cfg.Projects) == 0 {
		log.Warn("no projects configured", zap.String("config", configPath))
	}
	return cfg, log, nil
}

func openStore(cfg *config.Config) (*store.Store, error) {
	return store.Open(filepath.Join(cfg.OutputDir, "bipcal.db"))
}

// destinations builds the configured upload collaborators. A destination
// that cannot be constructed is reported and dropped.
func destinations(ctx context.Context, cfg *config.Config, log *zap.Logger) []upload.Destination {
	var dests []upload.Destination
	if cfg.Upload.Gist {
		dests = append(dests, upload.NewGistDestination(cfg.Upload.GistToken, cfg.OutputDir))
	}
	if cfg.Upload.GCal {
		dest, err := gcal.Connect(ctx, auth.CalendarService, cfg.Upload.Calendar)
		if err != nil {
			log.Warn("google calendar destination unavailable", zap.Error(err))
		} else {
			dests = append(dests, dest)
		}
	}
	return dests
}
