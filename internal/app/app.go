// Package app はサブコマンドの解析と依存関係のワイヤリングを行う。
package app

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hitoshi/postboard/internal/config"
	"github.com/hitoshi/postboard/internal/database"
	"github.com/hitoshi/postboard/internal/logger"
)

// Init はJSONロガーをデフォルトに設定してから環境変数を読み込み、ログレベルを反映する。
// wがnilの場合はos.Stdoutに出力する。
func Init(w io.Writer) (*config.Config, error) {
	// 設定エラーもJSONで出せるよう、読み込みより先にロガーを用意する
	logger.SetupDefault(w)

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger.SetLevel(cfg.LogLevel)

	return cfg, nil
}

// Run はargs（os.Args[1:]）で選ばれたサブコマンドを実行する。
// serve、reset はSIGINTとSIGTERMで中断される。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	if cmd == CommandHealthcheck {
		// 設定の検証やログ設定をせずに即座に終わらせる
		ctx, cancel := context.WithTimeout(context.Background(), healthcheckTimeout)
		defer cancel()
		return runHealthcheck(ctx, healthcheckURL())
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	slog.Info("postboard starting",
		slog.String("command", string(cmd)),
		slog.String("db_uri", logger.MaskURI(cfg.DatabaseURI)),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	case CommandReset:
		return runReset(ctx, cfg)
	default:
		return runServe(ctx, cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// ctxがキャンセルされる（SIGINTまたはSIGTERMを受信する）とグレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config) error {
	srv, err := NewServer(ctx, cfg)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              net.JoinHostPort("", cfg.ServerPort),
		Handler:           srv.Handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		slog.Info("shutting down API server...")
	case err, ok := <-errCh:
		if ok {
			serveErr = fmt.Errorf("server listen error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		serveErr = errors.Join(serveErr, fmt.Errorf("server shutdown failed: %w", err))
	}
	if err := srv.Close(shutdownCtx); err != nil {
		serveErr = errors.Join(serveErr, err)
	}

	if serveErr == nil {
		slog.Info("API server stopped gracefully")
	}
	return serveErr
}

// runMigrate はスキーマを最新版まで上げる。適用済みなら何もしない。
func runMigrate(cfg *config.Config) error {
	if err := database.RunMigrations(cfg.DatabaseURI); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	slog.Info("schema is up to date")
	return nil
}

// runReset はスキーマを作り直し、フィクスチャを投入して終了する。
func runReset(ctx context.Context, cfg *config.Config) error {
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := resetAndSeed(ctx, cfg.DatabaseURI, db); err != nil {
		return err
	}

	slog.Info("database reset completed")
	return nil
}

const healthcheckTimeout = 5 * time.Second

// healthcheckURL はSERVER_PORT（省略時8080）で待ち受けるローカルサーバーの/healthを返す。
func healthcheckURL() string {
	return "http://127.0.0.1:" + cmp.Or(os.Getenv("SERVER_PORT"), "8080") + "/health"
}

// runHealthcheck はtargetが200を返さなければエラーを返す。
func runHealthcheck(ctx context.Context, target string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("healthcheck: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("healthcheck: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("healthcheck: %s returned %d", target, resp.StatusCode)
	}
	return nil
}
