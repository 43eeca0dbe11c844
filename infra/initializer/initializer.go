// Package initializer wires the application dependencies at startup. Every
// implementation choice (mailer driver, idempotency backend) is made here,
// once, by explicit construction.
package initializer

import (
	"fmt"
	"log/slog"

	"github.com/amirasaad/pixflow/infra/clock"
	"github.com/amirasaad/pixflow/infra/database"
	infraidem "github.com/amirasaad/pixflow/infra/idempotency"
	"github.com/amirasaad/pixflow/infra/idgen"
	"github.com/amirasaad/pixflow/infra/mailer"
	infrarepo "github.com/amirasaad/pixflow/infra/repository"
	"github.com/amirasaad/pixflow/pkg/config"
	"github.com/amirasaad/pixflow/pkg/idempotency"
	"github.com/amirasaad/pixflow/pkg/notification"
	"github.com/amirasaad/pixflow/pkg/processor"
	"github.com/amirasaad/pixflow/pkg/repository"
	"github.com/amirasaad/pixflow/pkg/service"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps holds every constructed dependency the entrypoints need.
type Deps struct {
	Logger      *slog.Logger
	DB          *gorm.DB
	Redis       *redis.Client
	Clock       *clock.System
	Service     *service.WithdrawalService
	Reads       repository.WithdrawReadRepository
	Idempotency idempotency.Service
	Notifier    notification.Sender
	Processor   *processor.ScheduledProcessor
}

// Initialize builds the full dependency graph from configuration.
func Initialize(cfg *config.App) (*Deps, error) {
	logger := setupLogger(cfg.Log)

	clk, err := clock.NewSystem(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	db, err := database.New(*cfg.DB, cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	redisOpts.PoolSize = cfg.Redis.PoolSize
	redisOpts.DialTimeout = cfg.Redis.DialTimeout
	redisOpts.ReadTimeout = cfg.Redis.ReadTimeout
	redisOpts.WriteTimeout = cfg.Redis.WriteTimeout
	redisClient := redis.NewClient(redisOpts)

	uow := infrarepo.NewUoW(db, clk)
	svc := service.NewWithdrawalService(uow, idgen.UUID{}, clk, logger)

	deps := &Deps{
		Logger:      logger,
		DB:          db,
		Redis:       redisClient,
		Clock:       clk,
		Service:     svc,
		Reads:       infrarepo.NewWithdrawReadRepository(db),
		Idempotency: infraidem.NewRedisService(redisClient, cfg.Idempotency.TTL, logger),
		Notifier:    setupNotifier(cfg.Mail, logger),
		Processor:   processor.NewScheduledProcessor(svc, clk, cfg.Processor.BatchLimit, logger),
	}
	return deps, nil
}

// setupNotifier selects the receipt sender once at startup.
func setupNotifier(cfg *config.Mail, logger *slog.Logger) notification.Sender {
	switch cfg.Driver {
	case "smtp":
		return mailer.NewSMTP(cfg.Host, cfg.Port, cfg.From, logger)
	default:
		return mailer.NewMock(logger)
	}
}
