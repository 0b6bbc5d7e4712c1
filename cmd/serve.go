package main

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"wikicms/internal/app"
	"wikicms/internal/config"
	"wikicms/internal/logging"
)

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "port to listen on (overrides PORT)")
	return cmd
}

func serve(parent context.Context, cfg *config.Config) error {
	logger, err := logging.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)
	sugar := logger.Sugar()

	sugar.Infow("Starting wiki",
		"pid", os.Getpid(),
		"go_version", runtime.Version(),
		"store", cfg.StoreDriver,
		"port", cfg.Port,
	)

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, sugar)
	if err != nil {
		sugar.Errorw("Startup failed", "error", err)
		return err
	}
	defer a.Close()

	if err := a.Run(ctx); err != nil {
		sugar.Errorw("Server stopped with error", "error", err)
		return err
	}
	sugar.Info("Services stopped")
	return nil
}
