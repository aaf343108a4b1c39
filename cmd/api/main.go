package main

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

	"github.com/cmlabs-hris/hris-overtime-report/internal/config"
	"github.com/cmlabs-hris/hris-overtime-report/internal/domain/overtime"
	appHTTP "github.com/cmlabs-hris/hris-overtime-report/internal/handler/http"
	"github.com/cmlabs-hris/hris-overtime-report/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-overtime-report/internal/pkg/database"
	"github.com/cmlabs-hris/hris-overtime-report/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-overtime-report/internal/repository/cache"
	"github.com/cmlabs-hris/hris-overtime-report/internal/repository/hrapi"
	"github.com/cmlabs-hris/hris-overtime-report/internal/repository/postgresql"
	overtimeService "github.com/cmlabs-hris/hris-overtime-report/internal/service/overtime"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logger := appHTTP.NewLogger(os.Stdout, cfg.App)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	location, err := cfg.Location()
	if err != nil {
		return err
	}

	var source overtime.Source
	switch cfg.Source {
	case config.SourcePostgres:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{})
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		source = postgresql.NewOvertimeSource(db)
	case config.SourceHRAPI:
		client, err := hrapi.NewClient(hrapi.Config{
			BaseURL:           cfg.HRAPI.BaseURL,
			APIKey:            cfg.HRAPI.APIKey,
			APISecret:         cfg.HRAPI.APISecret,
			OAuthClientID:     cfg.HRAPI.OAuthClientID,
			OAuthClientSecret: cfg.HRAPI.OAuthClientSecret,
			OAuthTokenURL:     cfg.HRAPI.OAuthTokenURL,
			Timeout:           cfg.HRAPI.Timeout,
			MaxConcurrent:     cfg.HRAPI.MaxConcurrent,
		})
		if err != nil {
			return fmt.Errorf("failed to create hr api client: %w", err)
		}
		source = hrapi.NewSource(client, location, logger)
	default:
		return fmt.Errorf("unsupported source %q", cfg.Source)
	}

	if cfg.Redis.Addr != "" {
		rdb, err := database.NewRedisClient(ctx, database.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer rdb.Close()

		cached := cache.NewCachedSource(source, rdb, cfg.Redis.TTL, logger)
		source = cached

		scheduler := cron.NewScheduler(logger)
		if cfg.Redis.RefreshInterval > 0 {
			scheduler.AddJob("refresh_master_cache", cfg.Redis.RefreshInterval, cached.Refresh)
		}
		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	reportService := overtimeService.NewReportService(source, overtimeService.Config{
		Location:       location,
		OvernightGrace: cfg.Report.OvernightGrace,
		Workers:        cfg.Report.Workers,
		MaxRangeDays:   cfg.Report.MaxRangeDays,
	}, logger)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	overtimeHandler := appHTTP.NewOvertimeHandler(reportService, cfg.Report.Timeout)
	router := appHTTP.NewRouter(logger, cfg.App.AllowedOrigins, JWTService, overtimeHandler)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server running", "addr", srv.Addr, "source", cfg.Source, "timezone", location.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
