package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/aidar/activity-signup/internal/config"
	"github.com/aidar/activity-signup/internal/handler"
	"github.com/aidar/activity-signup/internal/logger"
	"github.com/aidar/activity-signup/internal/metrics"
	"github.com/aidar/activity-signup/internal/repository"
	"github.com/aidar/activity-signup/internal/repository/memory"
	"github.com/aidar/activity-signup/internal/repository/postgres"
	redisrepo "github.com/aidar/activity-signup/internal/repository/redis"
	"github.com/aidar/activity-signup/internal/seed"
	"github.com/aidar/activity-signup/internal/service"
)

// App представляет приложение со всеми зависимостями
type App struct {
	config  *config.Config
	db      *pgxpool.Pool
	redis   *goredis.Client
	repo    repository.ActivityRepository
	metrics *metrics.Metrics
	server  *http.Server
	logger  *zap.Logger
}

// New создает новый экземпляр приложения
func New(cfg *config.Config) (*App, error) {
	// Инициализируем структурированный логгер
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	app := &App{
		config:  cfg,
		logger:  log,
		metrics: metrics.New(),
	}

	return app, nil
}

// Initialize инициализирует все компоненты приложения
func (a *App) Initialize(ctx context.Context) error {
	// Подключаем хранилище мероприятий
	if err := a.connectStore(ctx); err != nil {
		return fmt.Errorf("failed to connect to %s store: %w", a.config.Store.Driver, err)
	}

	// Заполняем справочник начальными мероприятиями
	if err := a.seedStore(ctx); err != nil {
		return err
	}

	// Настраиваем HTTP сервер и роутинг
	a.setupServer()

	a.logger.Info("Application initialized successfully", zap.String("store", a.config.Store.Driver))
	return nil
}

// connectStore создает репозиторий выбранного драйвера
func (a *App) connectStore(ctx context.Context) error {
	switch a.config.Store.Driver {
	case config.DriverPostgres:
		if err := a.connectDB(ctx); err != nil {
			return err
		}
		a.repo = postgres.NewActivityRepository(a.db)
	case config.DriverRedis:
		if err := a.connectRedis(ctx); err != nil {
			return err
		}
		a.repo = redisrepo.NewActivityRepository(a.redis, a.config.Redis.Prefix)
	default:
		a.repo = memory.NewActivityRepository()
	}
	return nil
}

// connectDB устанавливает подключение к PostgreSQL с connection pool
func (a *App) connectDB(ctx context.Context) error {
	poolConfig, err := pgxpool.ParseConfig(a.config.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to parse database config: %w", err)
	}

	// Настраиваем размеры connection pool
	poolConfig.MaxConns = a.config.Database.MaxConns
	poolConfig.MinConns = a.config.Database.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Проверяем подключение к БД
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	a.db = pool
	a.logger.Info("Connected to database")
	return nil
}

// connectRedis устанавливает подключение к Redis
func (a *App) connectRedis(ctx context.Context) error {
	client := goredis.NewClient(&goredis.Options{
		Addr:         a.config.Redis.Addr,
		Password:     a.config.Redis.Password,
		DB:           a.config.Redis.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("redis ping failed: %w", err)
	}

	a.redis = client
	a.logger.Info("Connected to redis", zap.String("addr", a.config.Redis.Addr))
	return nil
}

// seedStore загружает начальный набор мероприятий
func (a *App) seedStore(ctx context.Context) error {
	activities, err := seed.Load(a.config.Store.SeedFile)
	if err != nil {
		return fmt.Errorf("failed to load seed activities: %w", err)
	}

	if err := a.repo.Seed(ctx, activities); err != nil {
		return fmt.Errorf("failed to seed activities: %w", err)
	}

	a.logger.Info("Activities seeded", zap.Int("count", len(activities)))
	return nil
}

// setupServer инициализирует HTTP роутер и обработчики
func (a *App) setupServer() {
	activityService := service.NewActivityService(a.repo, a.metrics, a.logger)
	activityHandler := handler.NewActivityHandler(activityService)

	// Создаем HTTP сервер с настройками таймаутов
	addr := fmt.Sprintf("%s:%s", a.config.Server.Host, a.config.Server.Port)
	a.server = &http.Server{
		Addr:         addr,
		Handler:      handler.NewRouter(activityHandler, a.metrics, a.logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	a.logger.Info("HTTP server configured", zap.String("addr", addr))
}

// Handler возвращает HTTP обработчик приложения (удобно для тестов)
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run запускает HTTP сервер. После Shutdown возвращает nil
func (a *App) Run() error {
	a.logger.Info("Starting HTTP server", zap.String("addr", a.server.Addr))
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown корректно останавливает приложение
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application")

	// Останавливаем HTTP сервер (ждем завершения текущих запросов)
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}

	// Закрываем подключения к хранилищам
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("Failed to close redis client", zap.Error(err))
		}
	}

	a.logger.Info("Application stopped gracefully")
	_ = a.logger.Sync()
	return nil
}
