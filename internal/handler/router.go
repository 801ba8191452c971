package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/postboard/internal/metrics"
	"github.com/hitoshi/postboard/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ストア
	TxBeginner middleware.TxBeginner
	Pinger     Pinger

	// ミドルウェア依存
	Logger             *slog.Logger
	CORSAllowedOrigins []string
	RateLimiter        *middleware.RateLimiter // nilの場合はレート制限なし

	// メトリクス。Metricsがnilなら記録せず、MetricsGathererがnilなら/metricsを公開しない。
	Metrics         metrics.MetricsCollector
	MetricsGatherer prometheus.Gatherer

	// サービス
	UserService    UserServiceInterface
	PostService    PostServiceInterface
	PostBoxService PostBoxServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Logging → Recovery → Tracing → Metrics → CORS → SecurityHeaders
//	  └ APIルートのみ: RateLimit → StoreSession
//
// /health と /metrics はレート制限とトランザクションの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewRecoveryMiddleware(logger))
	r.Use(middleware.NewTracingMiddleware())
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigins...))
	r.Use(middleware.NewSecurityHeadersMiddleware())

	// --- 運用エンドポイント ---
	if deps.Pinger != nil {
		r.Get("/health", NewHealthHandler(deps.Pinger).Check)
	}
	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	// --- APIルート ---
	// ミドルウェアスタック: RateLimit → StoreSession
	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Middleware())
		}
		r.Use(middleware.NewStoreSessionMiddleware(deps.TxBeginner, deps.Metrics))

		SetupUserRoutes(r, NewUserHandler(deps.UserService))
		SetupPostRoutes(r, NewPostHandler(deps.PostService))
		SetupPostBoxRoutes(r, NewPostBoxHandler(deps.PostBoxService))
	})

	return r
}
