// Package cli is the mailagent command line: it loads configuration,
// wires the backend client, cache, keyring and monitor, and runs the UI.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/nhle/mailagent/internal/app"
	"github.com/nhle/mailagent/internal/backend"
	"github.com/nhle/mailagent/internal/config"
	"github.com/nhle/mailagent/internal/credential"
	"github.com/nhle/mailagent/internal/logging"
	"github.com/nhle/mailagent/internal/monitor"
	"github.com/nhle/mailagent/internal/store"
	"github.com/nhle/mailagent/internal/transport"
)

var (
	cfgPath string
	isDebug bool
	baseURL string
)

var rootCmd = &cobra.Command{
	Use:           "mailagent",
	Short:         "Terminal mail client with AI reply suggestions",
	Long:          `mailagent reads and answers Gmail through a local mail backend that also generates reply suggestions.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "mailagent:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultConfigPath(), "config file")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "backend URL, overrides api.base_url")
}

func run(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return err
	}
	if baseURL != "" {
		cfg.API.BaseURL = baseURL
	}
	if isDebug {
		cfg.Log.Level = "debug"
	}

	logger, logCloser, err := logging.Setup(cfg.Log)
	if err != nil {
		return err
	}
	defer logCloser.Close()
	logger.Info("starting mailagent", "config", cfgPath, "backend", cfg.API.BaseURL)

	creds := openCredentials(logger)
	token := ""
	if creds != nil {
		token, err = creds.LoadAPIKey(credential.BackendService)
		if err != nil && !errors.Is(err, credential.ErrNotFound) {
			logger.Warn("loading backend API key", "error", err)
		}
	}

	st := openStore(cfg.Cache, logger)
	if st != nil {
		defer st.Close()
	}

	metrics := transport.NewMetrics(prometheus.DefaultRegisterer)
	if cfg.Metrics.Addr != "" {
		srv := serveMetrics(cfg.Metrics.Addr, logger)
		defer srv.Shutdown(context.Background())
	}

	exec := transport.NewExecutor(
		cfg.API.BaseURL,
		&http.Client{},
		transport.PolicyFromConfig(cfg.API),
		transport.WithLogger(logger),
		transport.WithMetrics(metrics),
	)
	client := backend.New(exec, cfg.API.Timeout(),
		backend.WithToken(token),
		backend.WithLogger(logger),
	)
	mon := monitor.New(client, time.Duration(cfg.Display.StatusPollSec)*time.Second, logger)

	deps := app.Deps{
		Context: cmd.Context(),
		Config:  cfg,
		Backend: client,
		Monitor: mon,
		Logger:  logger,
	}
	// A nil *SQLiteStore must stay a nil interface.
	if st != nil {
		deps.Store = st
	}
	if creds != nil {
		deps.Credentials = creds
	}
	m := app.New(deps)
	defer m.Close()

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running UI: %w", err)
	}
	return nil
}

func openCredentials(logger *slog.Logger) *credential.Store {
	ring, err := credential.Open(config.Dir())
	if err != nil {
		logger.Warn("keyring unavailable", "error", err)
		return nil
	}
	return credential.NewStore(ring)
}

func openStore(cfg config.CacheConfig, logger *slog.Logger) *store.SQLiteStore {
	if cfg.Disabled {
		return nil
	}
	path := cfg.Path
	if path == "" {
		path = filepath.Join(config.Dir(), "cache.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		logger.Warn("creating cache directory", "path", path, "error", err)
		return nil
	}
	st, err := store.NewSQLiteStore(path)
	if err != nil {
		logger.Warn("offline cache unavailable", "path", path, "error", err)
		return nil
	}
	return st
}

func serveMetrics(addr string, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics listener stopped", "addr", addr, "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", addr)
	return srv
}
