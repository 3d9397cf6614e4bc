package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/taskdeck/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// メトリクス記録ミドルウェア。nilの場合は記録しない。
	MetricsMiddleware func(next http.Handler) http.Handler

	// サービス
	TaskService       TaskServiceInterface
	UserService       UserServiceInterface
	CredentialService CredentialServiceInterface

	// ヘルスチェック。インメモリストアの場合はnil。
	HealthChecker HealthChecker
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RecoveryMiddleware → CORSMiddleware → LoggingMiddleware → MetricsMiddleware
//
// 認証ルート（/auth/*）はBearerトークン検証の外に置き、IP単位のレート制限を適用する。
// タスクルート（/tasks/*）はBearerトークン検証とユーザー単位のレート制限の内側に置く。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 全ルートに効く共通ミドルウェア
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	if deps.MetricsMiddleware != nil {
		r.Use(deps.MetricsMiddleware)
	}

	taskHandler := NewTaskHandler(deps.TaskService)
	authHandler := NewAuthHandler(deps.UserService, deps.CredentialService)
	healthHandler := NewHealthHandler(deps.HealthChecker)

	// --- 認証不要のルート ---

	r.Get("/healthz", healthHandler.Healthz)

	r.Route("/auth", func(r chi.Router) {
		r.Use(deps.RateLimiter.AuthMiddleware())
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.ListTasks)
			r.Post("/", taskHandler.CreateTask)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", taskHandler.GetTask)
				r.Put("/", taskHandler.UpdateTask)
				r.Delete("/", taskHandler.DeleteTask)

				// PUT /tasks/{id}/status - ステータスのみの更新
				r.Put("/status", taskHandler.UpdateTaskStatus)
			})
		})
	})

	return r
}
