package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pankajredekar/stockroom/internal/httpapi"
	"github.com/pankajredekar/stockroom/internal/scheduler"
	"github.com/pankajredekar/stockroom/internal/service"
	"github.com/pankajredekar/stockroom/internal/telemetry"
	"github.com/spf13/cobra"
)

const reportTimeout = time.Minute

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long:  "Serves the JSON API and, when Telegram is configured, sends the scheduled low-stock report",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a := newApp(ctx)
		defer a.Close()
		cfg := a.cfg
		logger := a.logger.With("serve")

		provider, err := telemetry.Setup(cfg.Tracing.Exporter, nil)
		if err != nil {
			exit("Failed to set up tracing: %v", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
			defer cancel()
			if err := provider.Shutdown(shutdownCtx); err != nil {
				logger.Warn("tracer shutdown failed", map[string]interface{}{"error": err})
			}
		}()

		if cfg.SeedOnEmpty {
			if _, err := a.seeder.Seed(ctx); err != nil {
				exit("Failed to seed: %v", err)
			}
		}

		notifier, err := newNotifier(cfg)
		if err != nil {
			logger.Warn("telegram unavailable, alerts disabled", map[string]interface{}{"error": err})
		}
		if notifier != nil {
			loc := alertLocation(cfg)
			reports := service.NewReportService(a.stats, notifier, a.logger.With("report"))
			sched := scheduler.New(loc, a.logger.With("scheduler"))
			id, err := sched.Schedule("low-stock-report", cfg.Alerts.Schedule, reportTimeout, func(ctx context.Context) error {
				_, err := reports.Send(ctx, time.Now().In(loc), false)
				return err
			})
			if err != nil {
				exit("Failed to schedule report: %v", err)
			}
			sched.Start()
			defer sched.Stop()
			logger.Info("low-stock report scheduled", map[string]interface{}{"next": sched.Next(id).Format(time.RFC3339)})
		}

		api := httpapi.NewServer(httpapi.Deps{
			Stock:      a.stock,
			Products:   a.products,
			Categories: a.categories,
			Stats:      a.stats,
		}, a.logger.With("http"))

		srv := &http.Server{
			Addr:         cfg.HTTP.Addr,
			Handler:      api.Handler(),
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("listening", map[string]interface{}{"addr": cfg.HTTP.Addr})
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				exit("Server failed: %v", err)
			}
		case <-ctx.Done():
			logger.Info("shutting down", nil)
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("graceful shutdown failed", map[string]interface{}{"error": err})
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
