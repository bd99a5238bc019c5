// Package main - точка входа фонового воркера FinZen.
//
// Воркер выполняет периодические задачи движка прогресса:
// - Обновление челленджей и значков для активных пользователей
// - Перестройку Redis-проекции таблицы лидеров из PostgreSQL
// - Очистку устаревших уведомлений
//
// Воркер не обслуживает HTTP-запросы: он разделяет с API только базу,
// Redis и доменный код. Остановка по SIGINT/SIGTERM дожидается
// завершения запущенных задач.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/finzen-app/finzen-engine/config"
	"github.com/finzen-app/finzen-engine/internal/application/command"
	"github.com/finzen-app/finzen-engine/internal/domain/notification"
	"github.com/finzen-app/finzen-engine/internal/domain/shared"
	"github.com/finzen-app/finzen-engine/internal/infrastructure/messaging"
	"github.com/finzen-app/finzen-engine/internal/infrastructure/persistence/postgres"
	"github.com/finzen-app/finzen-engine/internal/infrastructure/persistence/redis"
	"github.com/finzen-app/finzen-engine/internal/infrastructure/scheduler"
	"github.com/finzen-app/finzen-engine/internal/infrastructure/scheduler/jobs"
	"github.com/finzen-app/finzen-engine/pkg/logger"
	"github.com/finzen-app/finzen-engine/pkg/retry"
	"github.com/finzen-app/finzen-engine/pkg/timeutil"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. КОНФИГУРАЦИЯ И ЛОГИРОВАНИЕ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	timeutil.SetAppLocation(cfg.App.Location)

	slogLog := setupLogger(cfg)
	appLog := logger.New(logger.Options{Level: parseLogLevel(cfg.Observability.LogLevel)})

	slogLog.Info("starting FinZen progress engine worker",
		"env", string(cfg.App.Environment),
		"version", cfg.App.Version,
	)

	if !cfg.Scheduler.Enabled {
		slogLog.Warn("scheduler is disabled, nothing to do")
		return nil
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. POSTGRESQL
	// ─────────────────────────────────────────────────────────────────────────
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbConn.Close()

	if err := retry.DatabaseRetrier().Do(ctx, func(ctx context.Context) error {
		return retry.Retryable(dbConn.Ping(ctx))
	}); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := postgres.NewMigrator(dbConn).Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 3. REDIS (опционально: без него нет перестройки лидерборда)
	// ─────────────────────────────────────────────────────────────────────────
	var (
		redisCache       *redis.Cache
		leaderboardCache *redis.LeaderboardCache
	)

	if !cfg.Redis.Disabled {
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		redisCache, err = redis.NewCache(redisCfg)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisCache.Close()

		if cfg.Features.IsEnabled(config.FeatureLeaderboardCache, nil) {
			leaderboardCache = redis.NewLeaderboardCache(redisCache)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ШИНА СОБЫТИЙ
	// ─────────────────────────────────────────────────────────────────────────
	// События фоновых обновлений уходят в Redis, чтобы API-инстансы
	// подхватили их для своих проекций. Без Redis остаётся локальная шина.
	busCfg := messaging.DefaultInMemoryEventBusConfig()
	busCfg.Logger = slogLog

	var publisher shared.EventPublisher

	if redisCache != nil {
		redisBus, err := messaging.NewRedisEventBus(messaging.RedisEventBusConfig{
			Client:         redis.NewPubSubAdapter(redisCache),
			LocalBusConfig: busCfg,
			Logger:         slogLog,
		})
		if err != nil {
			return fmt.Errorf("failed to start redis event bus: %w", err)
		}
		defer redisBus.Close()
		publisher = redisBus
	} else {
		localBus := messaging.NewInMemoryEventBus(busCfg)
		defer localBus.Close()
		publisher = localBus
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ДОМЕННЫЙ КОНВЕЙЕР ОБНОВЛЕНИЯ ПРОГРЕССА
	// ─────────────────────────────────────────────────────────────────────────
	userRepo := postgres.NewUserRepository(dbConn)
	profileRepo := postgres.NewProfileRepository(dbConn)
	challengeRepo := postgres.NewChallengeRepository(dbConn)
	badgeRepo := postgres.NewBadgeRepository(dbConn)
	notificationRepo := postgres.NewNotificationRepository(dbConn)
	activitySource := postgres.NewActivitySource(dbConn)

	// Фоновый refresh может дублировать синхронный путь API, поэтому лента
	// защищена тем же дедуплицирующим окном.
	notificationSink := notification.NewDedupSink(notificationRepo, notification.DefaultDedupWindow)

	awarder := command.NewAwardPointsHandler(profileRepo, notificationSink, publisher, appLog)
	recorder := command.NewRecordActivityHandler(profileRepo, awarder, notificationSink, publisher, appLog)
	refresher := command.NewRefreshProgressHandler(
		activitySource, profileRepo, challengeRepo, badgeRepo,
		awarder, recorder, notificationSink, publisher, appLog,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ПЛАНИРОВЩИК И ЗАДАЧИ
	// ─────────────────────────────────────────────────────────────────────────
	schedCfg := scheduler.DefaultSchedulerConfig()
	schedCfg.Logger = slogLog
	schedCfg.Timezone = cfg.App.Location

	sched := scheduler.NewScheduler(schedCfg)

	refreshJob := jobs.NewRefreshProgressJob(userRepo, refresher, slogLog, jobs.RefreshProgressConfig{
		BatchSize: cfg.Scheduler.RefreshBatchSize,
		Timeout:   cfg.Scheduler.JobTimeout,
	})
	if err := sched.Register(refreshJob, scheduler.NewIntervalSchedule(cfg.Scheduler.RefreshProgressInterval)); err != nil {
		return fmt.Errorf("failed to register refresh job: %w", err)
	}

	if leaderboardCache != nil {
		rebuildJob := jobs.NewRebuildLeaderboardJob(profileRepo, leaderboardCache, slogLog, jobs.RebuildLeaderboardConfig{
			Timeout: cfg.Scheduler.JobTimeout,
		})
		if err := sched.Register(rebuildJob, scheduler.NewIntervalSchedule(cfg.Scheduler.RebuildLeaderboardInterval)); err != nil {
			return fmt.Errorf("failed to register rebuild job: %w", err)
		}
	}

	// Очистка идёт ночью, когда нагрузка минимальна.
	cleanupSchedule, err := scheduler.ParseCronExpression("0 3 * * *")
	if err != nil {
		return fmt.Errorf("failed to parse cleanup schedule: %w", err)
	}
	cleanupJob := jobs.NewCleanupNotificationsJob(notificationRepo, cfg.Scheduler.NotificationRetention, slogLog)
	if err := sched.Register(cleanupJob, cleanupSchedule); err != nil {
		return fmt.Errorf("failed to register cleanup job: %w", err)
	}

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	slogLog.Info("worker is running",
		"jobs", len(sched.ListJobs()),
		"refresh_interval", cfg.Scheduler.RefreshProgressInterval.String(),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	sig := <-sigCh
	slogLog.Info("received shutdown signal", "signal", sig.String())

	if err := sched.Stop(); err != nil {
		return fmt.Errorf("scheduler shutdown failed: %w", err)
	}

	slogLog.Info("shutdown completed successfully")
	return nil
}

// setupLogger настраивает slog: JSON в production, текст в разработке.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "json" || cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}

// parseLogLevel переводит строку конфигурации в уровень логгера.
func parseLogLevel(level string) logger.Level {
	switch level {
	case "debug":
		return logger.LevelDebug
	case "warn", "warning":
		return logger.LevelWarn
	case "error":
		return logger.LevelError
	default:
		return logger.LevelInfo
	}
}
