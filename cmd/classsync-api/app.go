package main

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/classsync-api/internal/repository"
	"github.com/noah-isme/classsync-api/internal/service"
	"github.com/noah-isme/classsync-api/migrations"
	"github.com/noah-isme/classsync-api/pkg/cache"
	"github.com/noah-isme/classsync-api/pkg/config"
	"github.com/noah-isme/classsync-api/pkg/database"
	"github.com/noah-isme/classsync-api/pkg/export"
	"github.com/noah-isme/classsync-api/pkg/logger"
	"github.com/noah-isme/classsync-api/pkg/textgen"
)

// app holds the wired services shared by every subcommand.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *sqlx.DB
	redis  *redis.Client

	metrics      *service.MetricsService
	cache        *service.CacheService
	auth         *service.AuthService
	booking      *service.BookingService
	hub          *service.SubscriptionService
	reservations *service.ReservationService
	imports      *service.ImportService
	admin        *service.AdminService
	timetable    *service.TimetableService
	reports      *service.ReportService
	assistant    *service.AssistantService
}

func newApp(cfg *config.Config) (*app, error) {
	logr, err := logger.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient, err := cache.NewRedis(cfg.Redis, cfg.AppID)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	if redisClient == nil {
		logr.Info("redis disabled, snapshots are not shared between instances")
	}

	a := &app{cfg: cfg, logger: logr, db: db, redis: redisClient}
	a.wire()
	return a, nil
}

func (a *app) wire() {
	cfg := a.cfg
	validate := validator.New()

	records := repository.NewRecordRepository(a.db, cfg.AppID)
	cacheRepo := repository.NewCacheRepository(a.redis, cfg.AppID+":", a.logger)
	feed := repository.NewChangeFeedRepository(a.redis, cfg.AppID, a.logger)

	a.metrics = service.NewMetricsService()
	a.cache = service.NewCacheService(cacheRepo, a.metrics, cfg.Stream.SnapshotTTL, a.logger, a.redis != nil)
	a.auth = service.NewAuthService(a.logger, service.AuthConfig{
		Secret: cfg.JWT.Secret,
		Expiry: cfg.JWT.Expiration,
		AppID:  cfg.AppID,
	})

	a.booking = service.NewBookingService(records, a.metrics, a.logger)
	a.hub = service.NewSubscriptionService(a.booking, a.cache, feed, a.metrics, a.logger, service.SubscriptionConfig{
		Workers:  cfg.Stream.Workers,
		Buffer:   cfg.Stream.Buffer,
		CacheTTL: cfg.Stream.SnapshotTTL,
	})
	a.booking.SetNotifier(a.hub)

	a.reservations = service.NewReservationService(a.booking, validate, a.metrics, a.logger, cfg.Reservations.Strict)
	a.imports = service.NewImportService(a.booking, a.metrics, a.logger, cfg.Import.Encoding)
	a.admin = service.NewAdminService(a.booking, cfg.Admin.PinHash, a.logger)
	a.timetable = service.NewTimetableService(a.booking)
	a.reports = service.NewReportService(a.timetable, export.NewCSVExporter(), export.NewPDFExporter(cfg.Reports.FontPath), cfg.Reports.Title, a.logger)

	var generator service.TextGenerator
	if cfg.Assistant.Enabled {
		generator = textgen.NewClient(textgen.Config{
			BaseURL: cfg.Assistant.BaseURL,
			APIKey:  cfg.Assistant.APIKey,
			Model:   cfg.Assistant.Model,
			Timeout: cfg.Assistant.Timeout,
		}, a.logger)
	}
	a.assistant = service.NewAssistantService(generator, a.booking, a.logger)
}

func (a *app) migrate(ctx context.Context) error {
	applied, err := migrations.Up(ctx, a.db)
	if err != nil {
		return err
	}
	for _, name := range applied {
		a.logger.Info("migration applied", zap.String("file", name))
	}
	return nil
}

func (a *app) close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close postgres", zap.Error(err))
	}
	_ = a.logger.Sync()
}
