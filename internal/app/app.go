// Package app はアプリケーションの起動と依存関係のワイヤリングを行う。
package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/taskdeck/internal/auth"
	"github.com/hitoshi/taskdeck/internal/config"
	"github.com/hitoshi/taskdeck/internal/database"
	"github.com/hitoshi/taskdeck/internal/handler"
	"github.com/hitoshi/taskdeck/internal/logger"
	"github.com/hitoshi/taskdeck/internal/metrics"
	"github.com/hitoshi/taskdeck/internal/middleware"
	"github.com/hitoshi/taskdeck/internal/repository"
	"github.com/hitoshi/taskdeck/internal/security"
	"github.com/hitoshi/taskdeck/internal/task"
	"github.com/hitoshi/taskdeck/internal/user"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("store", cfg.StoreBackend()),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// storeSet は設定に応じて構築されたリポジトリ一式。
type storeSet struct {
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
	db       *sql.DB
}

// buildStores は設定のストアバックエンドに応じてリポジトリを構築する。
func buildStores(cfg *config.Config) (*storeSet, error) {
	switch cfg.StoreBackend() {
	case config.StorePostgres:
		db, err := database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		slog.Info("database connection established")
		return &storeSet{
			taskRepo: repository.NewPostgresTaskRepo(db),
			userRepo: repository.NewPostgresUserRepo(db),
			db:       db,
		}, nil

	case config.StoreFile:
		taskRepo, err := repository.NewFileTaskRepo(cfg.TasksFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open tasks file: %w", err)
		}
		slog.Info("file store opened", slog.String("path", cfg.TasksFile))
		return &storeSet{
			taskRepo: taskRepo,
			userRepo: repository.NewMemoryUserRepo(),
		}, nil

	default:
		return &storeSet{
			taskRepo: repository.NewMemoryTaskRepo(),
			userRepo: repository.NewMemoryUserRepo(),
		}, nil
	}
}

// Close はストアが保持するリソースを解放する。
func (s *storeSet) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

// dbHealthChecker は*sql.DBをhandler.HealthCheckerに適合させるアダプタ。
type dbHealthChecker struct {
	db *sql.DB
}

func (c *dbHealthChecker) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// runServe はAPIサーバーモードで起動する。
// ストアを開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. ストアの構築
	stores, err := buildStores(cfg)
	if err != nil {
		return err
	}
	defer stores.Close()

	// 2. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 3. ドメインサービスの初期化
	sanitizer := security.NewTextSanitizer()
	taskService := task.NewService(stores.taskRepo, sanitizer, collector)
	userService := user.NewService(stores.userRepo)
	authService := auth.NewService(stores.userRepo, auth.ServiceConfig{
		Secret:      cfg.JWTSecret,
		TokenExpiry: cfg.TokenExpiry,
	}, collector)

	// 4. レートリミッターの初期化
	rateLimiter := middleware.NewRateLimiter(
		middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitAuth),
	)
	defer rateLimiter.Stop()

	// 5. ルーターの構築
	var healthChecker handler.HealthChecker
	if stores.db != nil {
		healthChecker = &dbHealthChecker{db: stores.db}
	}

	deps := &handler.RouterDeps{
		TokenVerifier:     authService,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		Logger:            slog.Default(),
		MetricsMiddleware: collector.Middleware(),

		TaskService:       taskService,
		UserService:       userService,
		CredentialService: authService,

		HealthChecker: healthChecker,
	}

	router := handler.NewRouter(deps)

	// /metrics はAPIルーターの外で公開する（Prometheusスクレイプ用）
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(registry))
	mux.Handle("/", router)

	// 6. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for migrate")
	}

	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /healthz エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/healthz", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
