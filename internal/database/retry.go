package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	// initialPingBackoff は接続リトライの初回遅延。
	initialPingBackoff = 500 * time.Millisecond
	// maxPingBackoff は接続リトライの最大遅延。
	maxPingBackoff = 8 * time.Second
)

// Pinger は疎通確認ができる接続を表す。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// CalculateBackoff は失敗回数に基づいて指数バックオフ遅延を計算する。
// 初回500ミリ秒、2倍ずつ増加、最大8秒。
func CalculateBackoff(failures int) time.Duration {
	delay := initialPingBackoff
	for i := 0; i < failures; i++ {
		delay *= 2
		if delay > maxPingBackoff {
			return maxPingBackoff
		}
	}
	return delay
}

// PingWithRetry は疎通できるまで最大attempts回、指数バックオフを挟んでPingを繰り返す。
// attemptsが1未満の場合は1回だけ試す。
func PingWithRetry(ctx context.Context, p Pinger, attempts int) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = p.PingContext(ctx); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}

		delay := CalculateBackoff(i)
		slog.Warn("database not reachable, retrying",
			slog.Int("attempt", i+1),
			slog.Duration("retry_in", delay),
			slog.String("error", err.Error()),
		)

		select {
		case <-ctx.Done():
			return fmt.Errorf("gave up waiting for database: %w", ctx.Err())
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("database not reachable after %d attempts: %w", attempts, err)
}
