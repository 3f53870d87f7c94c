package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/tobiaswren/mapforge/internal/api"
)

// serveCommand creates the serve command running the HTTP edit server.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		host       string
		port       int
		worldDir   string
		configPath string
		noCache    bool
		noStore    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP layout and edit server",
		Long: `Run the HTTP layout and edit server.

The server exposes the layout pipeline and interactive edit sessions over
a JSON API. Sessions are held in memory; saved change-sets go to the
configured store backend (file, redis, or mongo).

Flags override values from the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("worlds") {
				cfg.WorldDir = worldDir
			}
			return c.runServe(cmd.Context(), cfg, noCache, noStore)
		},
	}

	defaults := DefaultConfig()
	cmd.Flags().StringVar(&host, "host", defaults.Server.Host, "listen host")
	cmd.Flags().IntVarP(&port, "port", "p", defaults.Server.Port, "listen port")
	cmd.Flags().StringVar(&worldDir, "worlds", defaults.WorldDir, "directory containing world JSON files")
	cmd.Flags().StringVar(&configPath, "config", "", "config file (default: ./mapforge.toml when present)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable layout/render caching")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "run without a change-set store (saves are no-ops)")

	return cmd
}

// runServe wires the runner, store, and API server, then serves until the
// context is cancelled.
func (c *CLI) runServe(ctx context.Context, cfg Config, noCache, noStore bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	apiCfg := api.Config{
		WorldDir: cfg.WorldDir,
		Runner:   runner,
		Logger:   c.Logger,
	}
	if !noStore {
		st, err := cfg.Store.OpenStore(ctx)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()
		apiCfg.Store = st
		c.Logger.Info("store ready", "backend", storeBackendName(cfg.Store))
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewServer(apiCfg).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("serving", "addr", srv.Addr, "worlds", cfg.WorldDir)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// storeBackendName normalizes the backend label for logging.
func storeBackendName(s StoreConfig) string {
	if s.Backend == "" {
		return "file"
	}
	return s.Backend
}
