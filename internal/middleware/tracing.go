package middleware

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// tracerName はHTTPサーバースパンのインストルメンテーション名。
const tracerName = "github.com/hitoshi/postboard/internal/middleware"

// NewTracingMiddleware はリクエストごとにサーバースパンを開始するミドルウェアを返す。
// 上流のtraceparentヘッダーがあれば親スパンとして引き継ぐ。
// トレーサープロバイダー未設定時はno-opになる。
func NewTracingMiddleware() func(next http.Handler) http.Handler {
	tracer := otel.Tracer(tracerName)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.request.method", r.Method),
					attribute.String("url.path", r.URL.Path),
				),
			)
			defer span.End()

			rec := newResponseRecorder(w)

			next.ServeHTTP(rec, r.WithContext(ctx))

			// ルーティング後はパターンでスパン名を付け直す
			if pattern := routePattern(r); pattern != unmatchedRoute {
				span.SetName(r.Method + " " + pattern)
				span.SetAttributes(attribute.String("http.route", pattern))
			}
			span.SetAttributes(attribute.Int("http.response.status_code", rec.statusCode))
			if rec.statusCode >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(rec.statusCode))
			}
		})
	}
}
