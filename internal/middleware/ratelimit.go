package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/hitoshi/postboard/internal/model"
)

// RateLimiterConfig はクライアントごとのトークンバケット設定。
type RateLimiterConfig struct {
	Rate    rate.Limit    // 1秒あたりの補充トークン数
	Burst   int           // バケット容量
	IdleTTL time.Duration // 最終リクエストからこの時間が経過したクライアントは破棄する
}

// RateLimiterConfigPerMinute は1分あたりのリクエスト数から設定を作る。
// バケット容量は1分間の上限と同じ。
func RateLimiterConfigPerMinute(perMinute int) RateLimiterConfig {
	return RateLimiterConfig{
		Rate:    rate.Limit(float64(perMinute) / 60.0),
		Burst:   perMinute,
		IdleTTL: 10 * time.Minute,
	}
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter はクライアントIPごとにトークンバケットを持つ。
// 使われなくなったバケットはバックグラウンドで定期的に破棄される。
type RateLimiter struct {
	cfg RateLimiterConfig

	mu      sync.Mutex
	buckets map[string]*bucket

	done     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter はRateLimiterを生成し、破棄ループを開始する。
// 不要になったらStopを呼ぶこと。
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		cfg:     cfg,
		buckets: make(map[string]*bucket),
		done:    make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

// Stop は破棄ループを止める。複数回呼んでもよい。
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

// Middleware はトークンを取得できなかったリクエストを429で拒否する。
// Retry-Afterには次のトークンが使えるまでの秒数（切り上げ）を入れる。
func (rl *RateLimiter) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := clientIP(r)
			now := time.Now()

			res := rl.take(client, now).ReserveN(now, 1)
			delay := res.DelayFrom(now)
			if !res.OK() {
				delay = time.Second
			}
			if delay > 0 {
				res.CancelAt(now)
				slog.Warn("rate limit exceeded",
					slog.String("client", client),
					slog.Duration("retry_after", delay),
					slog.String("request_id", RequestIDFromContext(r.Context())),
				)
				writeTooManyRequests(w, delay)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Clients は現在バケットを保持しているクライアント数を返す。
func (rl *RateLimiter) Clients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

// take はclientのバケットを返し、最終アクセス時刻を更新する。
func (rl *RateLimiter) take(client string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[client]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rl.cfg.Rate, rl.cfg.Burst)}
		rl.buckets[client] = b
	}
	b.lastSeen = now
	return b.limiter
}

func (rl *RateLimiter) sweepLoop() {
	interval := rl.cfg.IdleTTL / 2
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			rl.evictIdle(now)
		case <-rl.done:
			return
		}
	}
}

// evictIdle はnow時点でIdleTTLより長く使われていないバケットを破棄する。
func (rl *RateLimiter) evictIdle(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for client, b := range rl.buckets {
		if now.Sub(b.lastSeen) > rl.cfg.IdleTTL {
			delete(rl.buckets, client)
		}
	}
}

// clientIP はRemoteAddrからポートを除いたものを返す。
// X-Forwarded-For などのクライアント指定ヘッダーは信頼しない。
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func writeTooManyRequests(w http.ResponseWriter, delay time.Duration) {
	seconds := int(math.Ceil(delay.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	WriteErrorResponse(w, http.StatusTooManyRequests, &model.APIError{
		Code:     model.ErrCodeRateLimited,
		Message:  "リクエストが多すぎます。",
		Category: "system",
		Action:   "Retry-Afterの秒数だけ待ってから再度お試しください。",
	})
}
