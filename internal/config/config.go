// Package config は環境変数からアプリケーション設定を読み込む。
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURI       string `env:"DB_URI,required,notEmpty"`
	DatabaseInit      Flag   `env:"DB_INIT"`
	DBMaxOpenConns    int    `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	DBConnectAttempts int    `env:"DB_CONNECT_ATTEMPTS" envDefault:"5"`

	// Server
	ServerPort      string        `env:"SERVER_PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// CORS。カンマ区切りで複数指定できる。"*"は全オリジン許可（credentialsなし）。
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGIN" envSeparator:"," envDefault:"*"`

	// Rate Limit（0で無効）
	RateLimitPerMinute int `env:"RATE_LIMIT_PER_MINUTE" envDefault:"600"`

	// Tracing（空で無効）
	OTelEndpoint string `env:"OTEL_ENDPOINT"`

	// DEBUG, INFO, WARN, ERROR
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
}

// Flag は真偽値らしい環境変数を寛容に解釈する。
// 1, t, true, y, yes, on（大文字小文字を区別しない）を真とし、それ以外は偽とする。
type Flag bool

// UnmarshalText はencoding.TextUnmarshalerを実装する。不正な値でもエラーにしない。
func (f *Flag) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "1", "t", "true", "y", "yes", "on":
		*f = true
	default:
		*f = false
	}
	return nil
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合は、未設定の変数名を全て含むエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		if missing := missingVars(err); len(missing) > 0 {
			return nil, fmt.Errorf("required environment variables are not set: %v", missing)
		}
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.DBMaxOpenConns < 1 {
		return nil, fmt.Errorf("DB_MAX_OPEN_CONNS must be positive: %d", cfg.DBMaxOpenConns)
	}
	if cfg.DBConnectAttempts < 1 {
		return nil, fmt.Errorf("DB_CONNECT_ATTEMPTS must be positive: %d", cfg.DBConnectAttempts)
	}
	if cfg.RateLimitPerMinute < 0 {
		return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative: %d", cfg.RateLimitPerMinute)
	}

	return cfg, nil
}

// missingVars はenv.Parseのエラーから未設定・空の必須変数名を取り出す。
func missingVars(err error) []string {
	errs := []error{err}
	var agg env.AggregateError
	if errors.As(err, &agg) {
		errs = agg.Errors
	}

	var missing []string
	for _, e := range errs {
		var notSet env.VarIsNotSetError
		var empty env.EmptyVarError
		switch {
		case errors.As(e, &notSet):
			missing = append(missing, notSet.Key)
		case errors.As(e, &empty):
			missing = append(missing, empty.Key)
		}
	}
	return missing
}
