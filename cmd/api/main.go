// Package main - точка входа REST API движка прогресса FinZen.
//
// API отвечает за:
// - Регистрацию и аутентификацию пользователей (opaque-токены в Redis)
// - Запись расходов, доходов, целей и уроков
// - Чтение профиля прогресса, челленджей, значков и таблицы лидеров
// - Ленту мотивационных уведомлений
//
// Каждая запись в финансах или обучении синхронно прогоняет движок
// прогресса: пользователь сразу видит новые очки, серию и награды.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/finzen-app/finzen-engine/config"
	"github.com/finzen-app/finzen-engine/internal/application/command"
	"github.com/finzen-app/finzen-engine/internal/application/eventhandler"
	"github.com/finzen-app/finzen-engine/internal/application/query"
	"github.com/finzen-app/finzen-engine/internal/application/saga"
	"github.com/finzen-app/finzen-engine/internal/domain/gamification"
	"github.com/finzen-app/finzen-engine/internal/domain/notification"
	"github.com/finzen-app/finzen-engine/internal/domain/shared"
	"github.com/finzen-app/finzen-engine/internal/infrastructure/messaging"
	"github.com/finzen-app/finzen-engine/internal/infrastructure/persistence/postgres"
	"github.com/finzen-app/finzen-engine/internal/infrastructure/persistence/redis"
	httpapi "github.com/finzen-app/finzen-engine/internal/interface/http"
	"github.com/finzen-app/finzen-engine/internal/interface/http/handlers"
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
	// 1. КОНФИГУРАЦИЯ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// Границы дня (серии, челленджи) считаются в часовом поясе приложения.
	timeutil.SetAppLocation(cfg.App.Location)

	// ─────────────────────────────────────────────────────────────────────────
	// 2. ЛОГИРОВАНИЕ
	// ─────────────────────────────────────────────────────────────────────────
	appLog := setupAppLogger(cfg)
	slogLog := setupSlogLogger(cfg)

	appLog.Info("starting FinZen progress engine API",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.String("timezone", cfg.App.Timezone),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. POSTGRESQL
	// ─────────────────────────────────────────────────────────────────────────
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer dbConn.Close()

	// Первый ping повторяется с экспоненциальной задержкой: база может
	// стартовать позже сервиса.
	if err := retry.DatabaseRetrier().Do(ctx, func(ctx context.Context) error {
		return retry.Retryable(dbConn.Ping(ctx))
	}); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	appLog.Info("database connection established")

	if cfg.Database.AutoMigrate {
		migrator := postgres.NewMigrator(dbConn)
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		appLog.Info("database schema is up to date")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. REDIS (сессии, проекция лидерборда, pub/sub)
	// ─────────────────────────────────────────────────────────────────────────
	var (
		redisCache       *redis.Cache
		leaderboardCache gamification.LeaderboardCache
		sessions         httpapi.SessionManager
	)

	if !cfg.Redis.Disabled {
		redisCfg := redis.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			MaxRetries:   redis.DefaultConfig().MaxRetries,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		}

		err = retry.RedisRetrier().Do(ctx, func(ctx context.Context) error {
			var cerr error
			redisCache, cerr = redis.NewCache(redisCfg)
			return retry.Retryable(cerr)
		})
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisCache.Close()
		appLog.Info("redis connection established")

		sessions = redis.NewSessionStore(redisCache, cfg.Auth.TokenTTL)

		if cfg.Features.IsEnabled(config.FeatureLeaderboardCache, nil) {
			leaderboardCache = redis.NewLeaderboardCache(redisCache)
		}
	} else {
		appLog.Warn("redis is disabled: protected endpoints will reject requests")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. EVENT BUS + DISPATCHER
	// ─────────────────────────────────────────────────────────────────────────
	var eventBus shared.EventBus

	if redisCache != nil {
		busCfg := messaging.DefaultInMemoryEventBusConfig()
		busCfg.Logger = slogLog

		redisBus, err := messaging.NewRedisEventBus(messaging.RedisEventBusConfig{
			Client:         redis.NewPubSubAdapter(redisCache),
			LocalBusConfig: busCfg,
			Logger:         slogLog,
		})
		if err != nil {
			return fmt.Errorf("failed to start redis event bus: %w", err)
		}
		defer redisBus.Close()
		eventBus = redisBus
	} else {
		busCfg := messaging.DefaultInMemoryEventBusConfig()
		busCfg.Logger = slogLog
		localBus := messaging.NewInMemoryEventBus(busCfg)
		defer localBus.Close()
		eventBus = localBus
	}

	dispatcher := messaging.NewDispatcher(messaging.DefaultDispatcherConfig(eventBus))
	dispatcher.Use(messaging.RecoveryMiddleware(slogLog))
	dispatcher.Use(messaging.LoggingMiddleware(slogLog))

	// ─────────────────────────────────────────────────────────────────────────
	// 6. РЕПОЗИТОРИИ
	// ─────────────────────────────────────────────────────────────────────────
	userRepo := postgres.NewUserRepository(dbConn)
	profileRepo := postgres.NewProfileRepository(dbConn)
	challengeRepo := postgres.NewChallengeRepository(dbConn)
	badgeRepo := postgres.NewBadgeRepository(dbConn)
	expenseRepo := postgres.NewExpenseRepository(dbConn)
	incomeRepo := postgres.NewIncomeRepository(dbConn)
	goalRepo := postgres.NewGoalRepository(dbConn)
	educationRepo := postgres.NewEducationRepository(dbConn)
	notificationRepo := postgres.NewNotificationRepository(dbConn)
	activitySource := postgres.NewActivitySource(dbConn)

	// Повторное уведомление того же типа и заголовка в пределах окна
	// в ленту не пишется.
	notificationSink := notification.NewDedupSink(notificationRepo, notification.DefaultDedupWindow)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. ОБРАБОТЧИКИ КОМАНД И ЗАПРОСОВ
	// ─────────────────────────────────────────────────────────────────────────
	awarder := command.NewAwardPointsHandler(profileRepo, notificationSink, eventBus, appLog)
	recorder := command.NewRecordActivityHandler(profileRepo, awarder, notificationSink, eventBus, appLog)
	refresher := command.NewRefreshProgressHandler(
		activitySource, profileRepo, challengeRepo, badgeRepo,
		awarder, recorder, notificationSink, eventBus, appLog,
	)

	registerHandler := command.NewRegisterUserHandler(userRepo, notificationSink, cfg.Auth.BcryptCost, appLog)
	onboarding := saga.NewOnboardingSaga(registerHandler, profileRepo, eventBus, appLog)

	deps := httpapi.Dependencies{
		Onboarding: onboarding,

		LoginHandler:                command.NewLoginHandler(userRepo, appLog),
		RecordExpenseHandler:        command.NewRecordExpenseHandler(expenseRepo, refresher, eventBus, appLog),
		RecordIncomeHandler:         command.NewRecordIncomeHandler(incomeRepo, refresher, eventBus, appLog),
		CreateGoalHandler:           command.NewCreateGoalHandler(goalRepo, refresher, appLog),
		AddGoalProgressHandler:      command.NewAddGoalProgressHandler(goalRepo, refresher, notificationSink, eventBus, appLog),
		CompleteLessonHandler:       command.NewCompleteLessonHandler(educationRepo, awarder, refresher, eventBus, appLog),
		RecordActivityHandler:       recorder,
		RefreshProgressHandler:      refresher,
		MarkNotificationReadHandler: command.NewMarkNotificationReadHandler(notificationRepo, appLog),

		GetProfileHandler:         query.NewGetProfileHandler(profileRepo),
		GetChallengesHandler:      query.NewGetChallengesHandler(challengeRepo),
		GetBadgesHandler:          query.NewGetBadgesHandler(badgeRepo),
		GetLeaderboardHandler:     query.NewGetLeaderboardHandler(profileRepo, leaderboardCache, appLog),
		GetNotificationsHandler:   query.NewGetNotificationsHandler(notificationRepo),
		GetFinanceOverviewHandler: query.NewGetFinanceOverviewHandler(expenseRepo, incomeRepo, goalRepo),

		Sessions: sessions,
		Logger:   appLog,
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 8. ОБРАБОТЧИКИ СОБЫТИЙ
	// ─────────────────────────────────────────────────────────────────────────
	if leaderboardCache != nil {
		projection := eventhandler.NewOnPointsAwardedHandler(profileRepo, userRepo, leaderboardCache, slogLog)
		for _, eventType := range []shared.EventType{shared.EventPointsAwarded, shared.EventStreakUpdated} {
			if err := dispatcher.Register(eventType, "leaderboard_projection", projection.Handle); err != nil {
				return fmt.Errorf("failed to register projection handler: %w", err)
			}
		}
	}

	// Фоновые запросы на пересчёт: первичный проход после регистрации и
	// запросы из других процессов через Redis pub/sub.
	backgroundRefresh := eventhandler.NewOnRefreshRequestedHandler(refresher, slogLog)
	if err := dispatcher.Register(shared.EventRefreshRequested, "progress_refresher", backgroundRefresh.Handle); err != nil {
		return fmt.Errorf("failed to register refresh handler: %w", err)
	}

	if err := dispatcher.Start(); err != nil {
		return fmt.Errorf("failed to start dispatcher: %w", err)
	}
	defer func() { _ = dispatcher.Stop() }()

	// ─────────────────────────────────────────────────────────────────────────
	// 9. HEALTH CHECKS
	// ─────────────────────────────────────────────────────────────────────────
	health := handlers.NewCompositeHealthChecker(cfg.App.Version)
	health.AddCheck("database", handlers.NewDatabaseCheck(dbConn))
	if redisCache != nil {
		health.AddCheck("redis", handlers.NewCacheCheck(redisCache))
	}
	deps.HealthChecker = health

	// ─────────────────────────────────────────────────────────────────────────
	// 10. HTTP СЕРВЕР
	// ─────────────────────────────────────────────────────────────────────────
	serverCfg := httpapi.DefaultConfig()
	serverCfg.Host = cfg.HTTP.Host
	serverCfg.Port = cfg.HTTP.Port
	serverCfg.ReadTimeout = cfg.HTTP.ReadTimeout
	serverCfg.WriteTimeout = cfg.HTTP.WriteTimeout
	serverCfg.IdleTimeout = cfg.HTTP.IdleTimeout
	serverCfg.AllowedOrigins = cfg.HTTP.AllowedOrigins
	serverCfg.RateLimitPerWindow = cfg.HTTP.RateLimit
	serverCfg.RateLimitWindow = cfg.HTTP.RateLimitWindow

	server := httpapi.NewServer(serverCfg, deps)
	errCh := server.StartAsync()

	appLog.Info("FinZen progress engine API is running",
		logger.String("address", server.Address()),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 11. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		appLog.Info("received shutdown signal", logger.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown failed: %w", err)
	}

	appLog.Info("shutdown completed successfully")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// setupAppLogger настраивает логгер приложения.
func setupAppLogger(cfg *config.Config) *logger.Logger {
	opts := logger.DefaultOptions()
	opts.Level = parseLogLevel(cfg.Observability.LogLevel)
	return logger.New(opts)
}

// setupSlogLogger настраивает slog для инфраструктурных компонентов
// (шина событий, проекции).
func setupSlogLogger(cfg *config.Config) *slog.Logger {
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
	switch strings.ToLower(level) {
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
