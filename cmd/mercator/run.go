package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/relaygw/relay/pkg/authgate"
	"github.com/relaygw/relay/pkg/cli"
	"github.com/relaygw/relay/pkg/config"
	"github.com/relaygw/relay/pkg/persistence"
	"github.com/relaygw/relay/pkg/proxyregistry"
	"github.com/relaygw/relay/pkg/recorder"
	"github.com/relaygw/relay/pkg/server"
	"github.com/relaygw/relay/pkg/telemetry/logging"
	"github.com/relaygw/relay/pkg/telemetry/metrics"
	"github.com/relaygw/relay/pkg/telemetry/tracing"
	"github.com/relaygw/relay/pkg/tokenpool"
	"github.com/relaygw/relay/pkg/translator"
	"github.com/relaygw/relay/pkg/vendorclient"
)

var runFlags struct {
	port     uint16
	logLevel string
	dryRun   bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the gateway server",
	Long: `Start the gateway server with the specified configuration.

The server listens on the configured port and translates the OpenAI-compatible
chat completion API and the code-completion surface into the upstream vendor's
streaming protocol.

Examples:
  # Start with default config
  mercator run

  # Start with custom config
  mercator run --config /etc/mercator/config.yaml

  # Override listen port
  mercator run --port 8080

  # Validate config without starting server
  mercator run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Uint16VarP(&runFlags.port, "port", "p", 0, "override listen port")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	if runFlags.port != 0 {
		cfg.Server.Port = runFlags.port
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	appLogger, err := logging.New(logging.Config{
		Level:          cfg.Telemetry.Logging.Level,
		Format:         cfg.Telemetry.Logging.Format,
		AddSource:      cfg.Telemetry.Logging.AddSource,
		RedactPII:      cfg.Telemetry.Logging.RedactPII,
		RedactPatterns: cfg.Telemetry.Logging.RedactPatterns,
		Writer:         os.Stdout,
	})
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("invalid logging configuration: %v", err))
	}
	slog.SetDefault(slog.New(appLogger.Handler()))
	defer appLogger.Shutdown()

	if runFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	printBanner(cfg)

	tokenStore, err := persistence.NewTokenStore(cfg.TokenStore.Path)
	if err != nil {
		return fmt.Errorf("failed to open token store: %w", err)
	}
	proxyStore, err := persistence.NewProxyStore(cfg.ProxyStore.Path)
	if err != nil {
		return fmt.Errorf("failed to open proxy store: %w", err)
	}

	pool := tokenpool.New(tokenStore, func(err error) {
		slog.Error("token store save failed", "error", err)
	})
	if records, numerics, loadErr := tokenStore.Load(); loadErr != nil {
		slog.Warn("token store load failed, starting with an empty pool", "error", loadErr)
	} else {
		pool.LoadSnapshot(records, numerics)
	}

	proxies := proxyregistry.New()
	if entries, general, loadErr := proxyStore.Load(); loadErr != nil {
		slog.Warn("proxy store load failed, starting with an empty registry", "error", loadErr)
	} else {
		proxies.LoadSnapshot(entries, general)
	}

	vendor := vendorclient.New(proxies, cfg.Vendor)
	gate := authgate.New(authgate.Config{AdminToken: cfg.Auth.AdminToken, SharedToken: cfg.Auth.SharedToken}, pool)
	ring := recorder.New(cfg.Logs.Capacity)
	metricsCollector := metrics.NewCollector(&cfg.Telemetry.Metrics, prometheus.NewRegistry())

	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := tokenpool.NewRefreshScheduler(pool, vendor)
	if err := scheduler.Start(ctx, cfg.Vendor.RefreshSchedule); err != nil {
		slog.Warn("failed to start profile refresh scheduler", "error", err)
	}

	catalog := translator.NewCatalog(defaultModelCatalog())

	srv := server.New(server.Deps{
		Config:     cfg,
		ConfigPath: cfgFile,
		Gate:       gate,
		Pool:       pool,
		Proxies:    proxies,
		ProxyStore: proxyStore,
		Ring:       ring,
		Vendor:     vendor,
		Metrics:    metricsCollector,
		Scheduler:  scheduler,
		Catalog:    catalog,
		Blob:       config.NewTextBlob(""),
		Tracer:     tracer,
		Version:    Version,
		Commit:     GitCommit,
		BuildTime:  BuildDate,
	})

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	fmt.Println()
	fmt.Printf("✓ Server listening on :%d\n", cfg.Server.Port)
	fmt.Printf("✓ Health endpoint: http://localhost:%d%s/health\n", cfg.Server.Port, cfg.Server.RoutePrefix)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("✓ Metrics endpoint: http://localhost:%d%s\n", cfg.Server.Port, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	sigChan := cli.WaitForShutdown()

	select {
	case err := <-errChan:
		return cli.NewCommandError("run", err)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal %s, shutting down gracefully...\n", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
			return cli.NewCommandError("run", err)
		}
		_ = tracer.Shutdown(shutdownCtx)

		fmt.Println("✓ Server stopped")
		return nil
	}
}

// defaultModelCatalog is the gateway's own /v1/models listing, independent
// of whatever model list a given token's cached catalog carries (§4.2
// "Model validation").
func defaultModelCatalog() []translator.ModelCatalogEntry {
	return []translator.ModelCatalogEntry{
		{ID: "gpt-4", Object: "model", OwnedBy: "system"},
		{ID: "gpt-4-turbo", Object: "model", OwnedBy: "system"},
		{ID: "gpt-4o", Object: "model", OwnedBy: "system"},
		{ID: "gpt-4o-mini", Object: "model", OwnedBy: "system"},
		{ID: "claude-3-opus", Object: "model", OwnedBy: "system"},
		{ID: "claude-3-5-sonnet", Object: "model", OwnedBy: "system"},
		{ID: "o1", Object: "model", OwnedBy: "system", Nightly: true},
		{ID: "o1-mini", Object: "model", OwnedBy: "system", Nightly: true},
	}
}

func printBanner(cfg *config.Config) {
	fmt.Printf("Gateway v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")
	slog.Debug("listener configured", "port", cfg.Server.Port, "tls", cfg.Security.TLS.Enabled)
}
