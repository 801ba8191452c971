package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hitoshi/postboard/internal/config"
	"github.com/hitoshi/postboard/internal/database"
	"github.com/hitoshi/postboard/internal/handler"
	"github.com/hitoshi/postboard/internal/logger"
	"github.com/hitoshi/postboard/internal/metrics"
	"github.com/hitoshi/postboard/internal/middleware"
	"github.com/hitoshi/postboard/internal/post"
	"github.com/hitoshi/postboard/internal/postbox"
	"github.com/hitoshi/postboard/internal/repository"
	"github.com/hitoshi/postboard/internal/security"
	"github.com/hitoshi/postboard/internal/seed"
	"github.com/hitoshi/postboard/internal/telemetry"
	"github.com/hitoshi/postboard/internal/user"
)

// Server はワイヤリング済みのHTTPハンドラーと、停止時に解放するリソースを保持する。
type Server struct {
	Handler http.Handler

	db                *database.DB
	limiter           *middleware.RateLimiter
	shutdownTelemetry telemetry.ShutdownFunc
}

// NewServer はスキーマを準備し、全依存関係をワイヤリングしたServerを返す。
// DB_INITが真の場合はスキーマを作り直してフィクスチャを投入する。
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	shutdownTelemetry, err := telemetry.Setup(ctx, logger.ServiceName, cfg.OTelEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to set up tracing: %w", err)
	}

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		shutdownTelemetry(ctx)
		return nil, err
	}

	if bool(cfg.DatabaseInit) {
		slog.Warn("DB_INIT is set: dropping all tables and seeding fixtures")
		if err := resetAndSeed(ctx, cfg.DatabaseURI, db); err != nil {
			db.Close()
			shutdownTelemetry(ctx)
			return nil, err
		}
	} else if err := database.RunMigrations(cfg.DatabaseURI); err != nil {
		db.Close()
		shutdownTelemetry(ctx)
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	// 1. メトリクス
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db.DB, logger.ServiceName),
	)
	collector := metrics.NewCollector(reg)

	// 2. リポジトリ
	userRepo := repository.NewSQLUserRepo(db)
	postRepo := repository.NewSQLPostRepo(db)
	boxRepo := repository.NewSQLPostBoxRepo(db)

	// 3. ドメインサービス
	markup := security.NewMarkupDetector()
	userService := user.NewService(userRepo, markup, collector)
	postService := post.NewService(postRepo, markup, collector)
	boxService := postbox.NewService(boxRepo, markup, collector)

	// 4. ルーター
	var limiter *middleware.RateLimiter
	if cfg.RateLimitPerMinute > 0 {
		limiter = middleware.NewRateLimiter(middleware.RateLimiterConfigPerMinute(cfg.RateLimitPerMinute))
	}

	router := handler.NewRouter(&handler.RouterDeps{
		TxBeginner:         db,
		Pinger:             db,
		Logger:             slog.Default(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimiter:        limiter,
		Metrics:            collector,
		MetricsGatherer:    reg,
		UserService:        userService,
		PostService:        postService,
		PostBoxService:     boxService,
	})

	return &Server{
		Handler:           router,
		db:                db,
		limiter:           limiter,
		shutdownTelemetry: shutdownTelemetry,
	}, nil
}

// Close はレート制限のクリーンアップを止め、スパンをフラッシュしてDB接続を閉じる。
func (s *Server) Close(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.Stop()
	}

	var errs []error
	if err := s.shutdownTelemetry(ctx); err != nil {
		errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
	}
	if err := s.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("database close: %w", err))
	}
	return errors.Join(errs...)
}

// openDatabase はDB接続を開き、疎通を確認する。
func openDatabase(ctx context.Context, cfg *config.Config) (*database.DB, error) {
	slog.Info("connecting to database", slog.String("db_uri", logger.MaskURI(cfg.DatabaseURI)))

	db, err := database.Open(cfg.DatabaseURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)

	if err := database.PingWithRetry(ctx, db, cfg.DBConnectAttempts); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established", slog.String("dialect", string(db.Dialect)))
	return db, nil
}

// resetAndSeed は全テーブルを作り直し、フィクスチャユーザーを1トランザクションで投入する。
func resetAndSeed(ctx context.Context, uri string, db *database.DB) error {
	if err := database.Reset(uri); err != nil {
		return fmt.Errorf("schema reset failed: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := seed.Users(database.WithTx(ctx, tx), repository.NewSQLUserRepo(db)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed transaction: %w", err)
	}
	return nil
}
