package repository

import (
	"context"
	"database/sql"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/hitoshi/postboard/internal/repository")

// startSpan はリポジトリ操作のスパンを開始する。
func startSpan(ctx context.Context, name string, id int64) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindClient))
	if id != 0 {
		span.SetAttributes(attribute.Int64("postboard.id", id))
	}
	return ctx, span
}

// endSpan はエラーを記録してスパンを終了する。
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// nullInt64 はnilを許容するIDをsql.NullInt64に変換する。
func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

// nullInt64Ptr はsql.NullInt64をnilを許容するIDに変換する。
func nullInt64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}
