package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sjoshi/otp/pkg/application/services"
	"github.com/sjoshi/otp/pkg/config"
	"github.com/sjoshi/otp/pkg/domain/repositories"
	"github.com/sjoshi/otp/pkg/infrastructure/erpnext"
	"github.com/sjoshi/otp/pkg/infrastructure/repositories/memory"
	"github.com/sjoshi/otp/pkg/interfaces/rest"
)

// ServeConfig holds configuration for the serve command
type ServeConfig struct {
	ConfigFile string
}

// ServeCommand runs the HTTP API server
type ServeCommand struct {
	config ServeConfig
}

// NewServeCommand creates a serve command with the given configuration
func NewServeCommand(cfg ServeConfig) *ServeCommand {
	return &ServeCommand{config: cfg}
}

// Execute starts the server and blocks until shutdown
func (c *ServeCommand) Execute(ctx context.Context) error {
	cfg, err := config.Load(c.config.ConfigFile)
	if err != nil {
		return err
	}

	setupLogging(cfg.LogLevel)

	rules, err := cfg.BusinessRules()
	if err != nil {
		return err
	}

	provider, applySvc, health, err := buildBackend(cfg)
	if err != nil {
		return err
	}

	promiseSvc := services.NewPromiseService(provider, nil)
	handlers := rest.NewHandlers(promiseSvc, applySvc, rules, health)
	router := rest.NewRouter(handlers)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr, "supply_source", cfg.Supply.Source)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-sigCh:
		slog.Info("shutting down", "signal", sig.String())
	case <-ctx.Done():
		slog.Info("shutting down", "reason", "context cancelled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildBackend wires the supply provider, write-back services and
// health check for the configured supply source
func buildBackend(cfg *config.Config) (repositories.SupplyProvider, *services.ApplyService, rest.HealthChecker, error) {
	switch cfg.Supply.Source {
	case "erpnext":
		client := erpnext.NewClient(cfg.ERPNext.BaseURL, cfg.ERPNext.APIKey, cfg.ERPNext.APISecret)
		orders := erpnext.NewOrderAdapter(client)
		return erpnext.NewSupplyAdapter(client),
			services.NewApplyService(orders, orders),
			client.HealthCheck,
			nil
	case "csv":
		provider, err := loadCSVProvider(cfg.Supply.StockCSVPath, cfg.Supply.SupplyCSVPath)
		if err != nil {
			return nil, nil, nil, err
		}
		return provider, nil, nil, nil
	case "memory":
		provider, err := loadCSVProviderOptional(cfg.Supply.StockCSVPath, cfg.Supply.SupplyCSVPath)
		if err != nil {
			return nil, nil, nil, err
		}
		return provider, nil, nil, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown supply source %q", cfg.Supply.Source)
	}
}

// loadCSVProviderOptional seeds an in-memory provider from CSV files
// when paths are configured, otherwise starts empty
func loadCSVProviderOptional(stockFile, supplyFile string) (repositories.SupplyProvider, error) {
	if stockFile == "" {
		return memory.NewSupplyRepository(), nil
	}
	return loadCSVProvider(stockFile, supplyFile)
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}
