package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sheetproxy/internal/config"
	"sheetproxy/internal/handler"
	"sheetproxy/internal/logger"
	"sheetproxy/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	envFile string
	port    int
)

var rootCmd = &cobra.Command{
	Use:   "sheetproxy",
	Short: "Proxy between the browser frontend and the spreadsheet-backed data sources",
	Long: `sheetproxy hides the product, order and agent source URLs from the browser.

It forwards /api requests to the configured sources and reshapes grid or
callback-wrapped responses into plain JSON records.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	rootCmd.Flags().IntVar(&port, "port", 0, "listen port (overrides PORT)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if port != 0 {
		cfg.Port = port
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	audit, err := openAuditLog(ctx, cfg)
	if err != nil {
		return err
	}
	defer audit.Close()

	var opts []service.SheetClientOption
	if cfg.LegacyCallback != "" {
		opts = append(opts, service.WithCallbackName(cfg.LegacyCallback))
	}

	var clients []service.UpstreamClient
	for resource, base := range cfg.Sources() {
		clients = append(clients, service.NewSheetClient(resource, base, opts...))
	}

	if os.Getenv(gin.EnvGinMode) == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handler.NewRouter(handler.New(log, audit, clients...), log)

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Proxy server running", zap.String("addr", srv.Addr), zap.Stringer("config", cfg))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
	}

	return nil
}

func openAuditLog(ctx context.Context, cfg *config.Config) (service.AuditLog, error) {
	if cfg.AuditDSN == "" {
		return service.NopAuditLog{}, nil
	}

	pg := service.NewPostgresAuditLog()
	if err := pg.Connect(ctx, cfg.AuditDSN); err != nil {
		return nil, fmt.Errorf("failed to connect audit database: %w", err)
	}
	return pg, nil
}
