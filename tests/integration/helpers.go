package integration

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aidar/activity-signup/internal/app"
	"github.com/aidar/activity-signup/internal/config"
)

// TestEnvironment содержит все ресурсы необходимые для интеграционных тестов
type TestEnvironment struct {
	PostgresContainer *postgres.PostgresContainer
	App               *app.App
	BaseURL           string
	DB                *pgxpool.Pool
	ctx               context.Context
}

// SetupTestEnvironment запускает приложение с указанным драйвером хранилища.
// Для postgres поднимается контейнер и применяются миграции
func SetupTestEnvironment(t *testing.T, driver, port string) *TestEnvironment {
	t.Helper()
	ctx := context.Background()

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port: port,
			Host: "127.0.0.1",
		},
		Store: config.StoreConfig{Driver: driver},
		Log:   config.LogConfig{Level: "warn", Format: "json"},
	}

	env := &TestEnvironment{
		BaseURL: fmt.Sprintf("http://%s:%s", cfg.Server.Host, port),
		ctx:     ctx,
	}

	if driver == config.DriverPostgres {
		env.startPostgres(t, cfg)
	}

	// Создаем и инициализируем приложение
	application, err := app.New(cfg)
	require.NoError(t, err, "Failed to create application")

	err = application.Initialize(ctx)
	require.NoError(t, err, "Failed to initialize application")
	env.App = application

	// Запускаем сервер в фоне
	go func() {
		if err := application.Run(); err != nil {
			t.Logf("Server error: %v", err)
		}
	}()

	return env
}

// startPostgres поднимает PostgreSQL контейнер и заполняет настройки БД
func (te *TestEnvironment) startPostgres(t *testing.T, cfg *config.Config) {
	t.Helper()

	pgContainer, err := postgres.Run(te.ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("activities_test"),
		postgres.WithUsername("test_user"),
		postgres.WithPassword("test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	te.PostgresContainer = pgContainer

	connStr, err := pgContainer.ConnectionString(te.ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	applyMigrations(t, connStr)

	host, err := pgContainer.Host(te.ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(te.ctx, "5432")
	require.NoError(t, err)

	cfg.Database = config.DatabaseConfig{
		Host:     host,
		Port:     port.Port(),
		User:     "test_user",
		Password: "test_password",
		Name:     "activities_test",
		SSLMode:  "disable",
		MaxConns: 10,
		MinConns: 1,
	}

	// Отдельное подключение для прямых проверок в тестах
	pool, err := pgxpool.New(te.ctx, connStr)
	require.NoError(t, err)
	te.DB = pool
}

// Cleanup очищает все тестовые ресурсы
func (te *TestEnvironment) Cleanup(t *testing.T) {
	t.Helper()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if te.App != nil {
		_ = te.App.Shutdown(shutdownCtx)
	}

	if te.DB != nil {
		te.DB.Close()
	}

	if te.PostgresContainer != nil {
		_ = te.PostgresContainer.Terminate(te.ctx)
	}
}

// applyMigrations применяет миграции БД
func applyMigrations(t *testing.T, connStr string) {
	t.Helper()

	db, err := sql.Open("pgx/v5", connStr)
	require.NoError(t, err, "Failed to open database connection")
	defer db.Close()

	migrationPath := filepath.Join(getProjectRoot(t), "migrations", "000001_init_schema.up.sql")
	migrationSQL, err := os.ReadFile(migrationPath)
	require.NoError(t, err, "Failed to read migration file")

	_, err = db.Exec(string(migrationSQL))
	require.NoError(t, err, "Failed to apply migration")
}

// getProjectRoot возвращает корневую директорию проекта
func getProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("Could not find project root (go.mod not found)")
		}
		dir = parent
	}
}

// MakeRequest вспомогательная функция для HTTP запросов в тестах
func (te *TestEnvironment) MakeRequest(t *testing.T, method, path string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, te.BaseURL+path, nil)
	require.NoError(t, err, "Failed to create request")

	client := &http.Client{
		Timeout: 10 * time.Second,
	}

	resp, err := client.Do(req)
	require.NoError(t, err, "Failed to make request")

	return resp
}

// WaitForHealthCheck ждет пока приложение станет доступным
func (te *TestEnvironment) WaitForHealthCheck(t *testing.T) {
	t.Helper()

	maxRetries := 30
	for i := 0; i < maxRetries; i++ {
		resp, err := http.Get(te.BaseURL + "/health")
		if err == nil && resp.StatusCode == http.StatusOK {
			resp.Body.Close()
			return
		}
		if resp != nil {
			resp.Body.Close()
		}
		time.Sleep(100 * time.Millisecond)
	}

	t.Fatal("Application did not become healthy in time")
}
