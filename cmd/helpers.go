package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/netviz/internal/category"
	"github.com/ziadkadry99/netviz/internal/config"
	"github.com/ziadkadry99/netviz/internal/db"
	"github.com/ziadkadry99/netviz/internal/history"
	"github.com/ziadkadry99/netviz/internal/inference"
	"github.com/ziadkadry99/netviz/internal/logging"
	"github.com/ziadkadry99/netviz/internal/metrics"
	"github.com/ziadkadry99/netviz/internal/viz"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `netviz init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// newLogger builds the logger for a command. One-shot commands stay quiet
// unless --verbose is given.
func newLogger(cfg *config.Config, quiet bool) (*zap.Logger, error) {
	level := cfg.LogLevel
	switch {
	case verbose:
		level = "debug"
	case quiet && level == "":
		level = "warn"
	}
	return logging.New(cfg.Environment, level)
}

// addCategoryFlag registers the repeatable --category flag.
func addCategoryFlag(cmd *cobra.Command) {
	cmd.Flags().StringSliceP("category", "c", nil, "category label (repeatable, overrides config)")
}

// newCategoryStore seeds a store from --category flags, falling back to the
// categories in the config.
func newCategoryStore(cmd *cobra.Command, cfg *config.Config) (*category.Store, error) {
	labels := cfg.Categories
	if cmd.Flags().Lookup("category") != nil {
		if flagLabels, _ := cmd.Flags().GetStringSlice("category"); len(flagLabels) > 0 {
			labels = flagLabels
		}
	}
	store, err := category.NewStore(category.FromLabels(labels))
	if err != nil {
		return nil, fmt.Errorf("building categories: %w", err)
	}
	return store, nil
}

// newSession creates a view session for store laid out on the configured
// canvas. m may be nil.
func newSession(cfg *config.Config, store *category.Store, logger *zap.Logger, m *metrics.Collector, extra ...viz.Option) *viz.Session {
	opts := []viz.Option{
		viz.WithLayout(cfg.Layout()),
		viz.WithLogger(logger),
	}
	if m != nil {
		opts = append(opts, viz.WithCacheHooks(m.CacheHooks()))
	}
	return viz.NewSession(store, append(opts, extra...)...)
}

// newClient creates the training server client. m may be nil.
func newClient(cfg *config.Config, logger *zap.Logger, m *metrics.Collector) *inference.Client {
	client := inference.NewClient(cfg.ServerURL, cfg.Timeout, logger)
	if m != nil {
		client.SetObserver(m.ObserveInference)
	}
	return client
}

// openHistory opens the history database under the data directory.
func openHistory(cfg *config.Config) (*history.Store, func() error, error) {
	database, err := db.Open(cfg.DBPath())
	if err != nil {
		return nil, nil, fmt.Errorf("opening history database: %w", err)
	}
	return history.NewStore(database), database.Close, nil
}

// recordHistory logs entry, marking it failed when opErr is set. History is
// best effort for CLI commands; a write failure only produces a warning.
func recordHistory(ctx context.Context, store *history.Store, logger *zap.Logger, entry history.Entry, opErr error) {
	if store == nil {
		return
	}
	if opErr != nil {
		entry.Outcome = history.OutcomeFailed
		entry.Error = opErr.Error()
	}
	if _, err := store.Log(ctx, entry); err != nil {
		logger.Warn("could not record history", zap.String("action", string(entry.Action)), zap.Error(err))
	}
}

// openImage opens an image file for sending to the training server. The
// caller closes the returned file.
func openImage(path string) (inference.Image, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return inference.Image{}, nil, fmt.Errorf("opening image: %w", err)
	}
	return inference.Image{Name: filepath.Base(path), Data: f}, f, nil
}

// writeOutput writes content to path, or to stdout when path is empty.
func writeOutput(path, content string) error {
	if path == "" {
		_, err := fmt.Fprint(os.Stdout, content)
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", path)
	return nil
}
