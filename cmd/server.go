package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/viktsys/woolauction/api"
	"github.com/viktsys/woolauction/cache"
	"github.com/viktsys/woolauction/database"
	"github.com/viktsys/woolauction/ingest"
	"github.com/viktsys/woolauction/logger"
	"github.com/viktsys/woolauction/metrics"
	"go.uber.org/zap"
)

var serverCMD = &cobra.Command{
	Use:   "server",
	Short: "Start the API server",
	Long:  `Start the HTTP API server that serves auction analytics and export summaries.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log.Info("Initializing database...")
		store, err := database.Open(ctx, cfg.Database, log)
		if err != nil {
			log.Error("Failed to initialize database", zap.Error(err))
			return err
		}
		defer store.Close()

		if err := store.Migrate(ctx); err != nil {
			log.Error("Failed to migrate database", zap.Error(err))
			return err
		}

		var c cache.Cache = cache.Nop{}
		if cfg.Redis.Addr != "" {
			rc, err := cache.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
			if err != nil {
				log.Warn("Redis unavailable, caching disabled", zap.Error(err))
			} else {
				c = rc
			}
		}
		defer c.Close()

		events, err := logger.NewEventLog(cfg.Logging.AnalyticsPath)
		if err != nil {
			return err
		}
		defer events.Sync()

		metrics.Register()
		gin.SetMode(gin.ReleaseMode)

		loader := ingest.NewLoader(cfg.Exports.DataDir, cfg.Exports.FileWorkers, log)
		h := api.NewHandler(store, loader, c, cfg, log, events)

		srv := &http.Server{
			Addr:         cfg.Server.Addr(),
			Handler:      h.SetupRoutes(),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info("Starting server", zap.String("addr", srv.Addr))
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				log.Error("Server failed", zap.Error(err))
				return err
			}
		case <-ctx.Done():
			log.Info("Shutting down server")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}
