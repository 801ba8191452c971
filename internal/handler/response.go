// Package handler はHTTPハンドラーとルーティングを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/postboard/internal/dto"
	"github.com/hitoshi/postboard/internal/middleware"
	"github.com/hitoshi/postboard/internal/model"
	"github.com/hitoshi/postboard/internal/projection"
)

// maxBodyBytes はリクエストボディの上限サイズ。
const maxBodyBytes = 1 << 20

// writeJSON はステータスコードとともにJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	middleware.WriteErrorResponse(w, statusCode, apiErr)
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error",
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
	)
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch {
	case apiErr.IsNotFound():
		return http.StatusNotFound
	case apiErr.Code == model.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case apiErr.Code == model.ErrCodeInvalidReference:
		return http.StatusUnprocessableEntity
	case apiErr.Code == model.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// handleDecodeError はボディ変換エラーを400レスポンスに変換する。
func handleDecodeError(w http.ResponseWriter, err error) {
	var (
		missing  *projection.MissingFieldError
		fieldErr *dto.FieldError
		reason   string
	)
	switch {
	case errors.As(err, &missing):
		reason = fmt.Sprintf("必須フィールド %s がありません", missing.Field)
	case errors.As(err, &fieldErr):
		reason = fmt.Sprintf("フィールド %s の値が不正です", fieldErr.Field)
	default:
		reason = "リクエストボディの解析に失敗しました"
	}
	writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError(reason))
}

// readBody はリクエストボディを上限サイズまで読み込む。
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", projection.ErrMalformedBody, err)
	}
	return body, nil
}

// pathID はURLパスの{id}を正の整数として取り出す。
func pathID(r *http.Request) (int64, bool) {
	return parseID(chi.URLParam(r, "id"))
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

func writeInvalidID(w http.ResponseWriter) {
	writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError("idは正の整数で指定してください"))
}
