// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/postboard/internal/database"
	"github.com/hitoshi/postboard/internal/metrics"
)

// TxBeginner はトランザクション開始に必要なインターフェース。
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// TxOutcomeRecorder はトランザクションの結果を記録するインターフェース。
type TxOutcomeRecorder interface {
	RecordTxOutcome(outcome string)
}

// bufferedResponseWriter はレスポンスをコミット判定まで保留する。
type bufferedResponseWriter struct {
	header      http.Header
	body        bytes.Buffer
	statusCode  int
	wroteHeader bool
}

// newBufferedResponseWriter は外側のヘッダーの複製から始まるバッファを返す。
func newBufferedResponseWriter(outer http.Header) *bufferedResponseWriter {
	return &bufferedResponseWriter{
		header:     outer.Clone(),
		statusCode: http.StatusOK,
	}
}

// Header はバッファ用のヘッダーを返す。
func (bw *bufferedResponseWriter) Header() http.Header {
	return bw.header
}

// WriteHeader は最初のステータスコードのみ記録する。
func (bw *bufferedResponseWriter) WriteHeader(code int) {
	if bw.wroteHeader {
		return
	}
	bw.statusCode = code
	bw.wroteHeader = true
}

// Write はボディをバッファに書き込む。WriteHeaderが未呼び出しの場合は200とみなす。
func (bw *bufferedResponseWriter) Write(b []byte) (int, error) {
	bw.wroteHeader = true
	return bw.body.Write(b)
}

// flushTo は保留していたレスポンスをwに書き出す。
func (bw *bufferedResponseWriter) flushTo(w http.ResponseWriter) {
	dst := w.Header()
	for k, v := range bw.header {
		dst[k] = v
	}
	w.WriteHeader(bw.statusCode)
	w.Write(bw.body.Bytes())
}

// NewStoreSessionMiddleware はリクエストごとにストアのトランザクションを開始し、
// コンテキスト経由でリポジトリに渡すミドルウェアを返す。
// ハンドラーが400未満のステータスで応答した場合のみコミットし、それ以外はロールバックする。
// コミットに失敗した場合は保留していたレスポンスを破棄して500を返す。
// recorderはnilでもよい。
func NewStoreSessionMiddleware(db TxBeginner, recorder TxOutcomeRecorder) func(next http.Handler) http.Handler {
	record := func(outcome string) {
		if recorder != nil {
			recorder.RecordTxOutcome(outcome)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tx, err := db.BeginTx(r.Context(), nil)
			if err != nil {
				slog.Error("failed to begin transaction",
					slog.String("error", err.Error()),
					slog.String("request_id", RequestIDFromContext(r.Context())),
				)
				WriteInternalServerError(w)
				return
			}

			// panic時もトランザクションを閉じる。コミット後のRollbackはErrTxDoneで無害。
			done := false
			defer func() {
				if !done {
					tx.Rollback()
					record(metrics.TxRolledBack)
				}
			}()

			bw := newBufferedResponseWriter(w.Header())
			next.ServeHTTP(bw, r.WithContext(database.WithTx(r.Context(), tx)))

			if bw.statusCode >= http.StatusBadRequest {
				done = true
				if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
					slog.Error("failed to roll back transaction",
						slog.String("error", err.Error()),
						slog.String("request_id", RequestIDFromContext(r.Context())),
					)
				}
				record(metrics.TxRolledBack)
				bw.flushTo(w)
				return
			}

			done = true
			if err := tx.Commit(); err != nil {
				slog.Error("failed to commit transaction",
					slog.String("error", err.Error()),
					slog.String("request_id", RequestIDFromContext(r.Context())),
				)
				record(metrics.TxCommitFailed)
				WriteInternalServerError(w)
				return
			}
			record(metrics.TxCommitted)
			bw.flushTo(w)
		})
	}
}
