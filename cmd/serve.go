package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/netviz/internal/activation"
	"github.com/ziadkadry99/netviz/internal/category"
	"github.com/ziadkadry99/netviz/internal/dashboard"
	"github.com/ziadkadry99/netviz/internal/metrics"
	"github.com/ziadkadry99/netviz/internal/server"
	"github.com/ziadkadry99/netviz/internal/viz"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard and REST API",
	Long: `Starts the netviz HTTP server: the browser dashboard with a live network
view, the category and network REST API, proxies to the training server, the
history API and Prometheus metrics.`,
	RunE: runServe,
}

func init() {
	addCategoryFlag(serveCmd)
	serveCmd.Flags().Int("port", 0, "port to listen on (overrides config)")
	serveCmd.Flags().Bool("allow-all", false, "allow all CORS origins")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.Serve.Port = port
	}
	if allowAll, _ := cmd.Flags().GetBool("allow-all"); allowAll {
		cfg.Serve.AllowAll = true
	}

	logger, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer logger.Sync()

	m := metrics.NewCollector("netviz")

	store, err := newCategoryStore(cmd, cfg)
	if err != nil {
		return err
	}
	session := newSession(cfg, store, logger, m)
	defer session.Close()
	defer wireMetrics(store, session, m)()

	hist, closeDB, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	srv := server.New(server.Config{
		Port:     cfg.Serve.Port,
		AllowAll: cfg.Serve.AllowAll,
	}, server.Deps{
		Session:   session,
		Inference: newClient(cfg, logger, m),
		History:   hist,
		Metrics:   m,
		Logger:    logger,
	})
	dashboard.New(session, hist, m, logger).RegisterRoutes(srv.Router())

	// Graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "\nShutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown", zap.Error(err))
		}
	}()

	fmt.Fprintf(os.Stderr, "netviz server v%s starting on port %d\n", Version, cfg.Serve.Port)
	fmt.Fprintf(os.Stderr, "  Training server: %s\n", cfg.ServerURL)
	fmt.Fprintf(os.Stderr, "  Categories: %d\n", len(store.Get()))
	fmt.Fprintf(os.Stderr, "  History: %s\n", cfg.DBPath())
	fmt.Fprintf(os.Stderr, "  Dashboard: http://localhost:%d/\n", cfg.Serve.Port)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// wireMetrics counts category changes and published frames. The returned
// function detaches both listeners.
func wireMetrics(store *category.Store, session *viz.Session, m *metrics.Collector) func() {
	unsubCats := store.Subscribe(func(uint64, []category.Category) {
		m.CategoryChanges.Inc()
	})
	unsubFrames := session.Subscribe(func(*activation.Frame) {
		m.FramesPublished.Inc()
	})
	return func() {
		unsubCats()
		unsubFrames()
	}
}
