package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/postboard/internal/model"
)

// TestWriteErrorResponse_IncludesRequestID はレスポンスのX-Request-IDがボディに含まれることを検証する。
func TestWriteErrorResponse_IncludesRequestID(t *testing.T) {
	w := httptest.NewRecorder()
	w.Header().Set(RequestIDHeader, "req-42")

	WriteErrorResponse(w, http.StatusNotFound, model.NewPostNotFoundError(42))

	var body ErrorResponseBody
	if err := json.NewDecoder(w.Result().Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if body.RequestID != "req-42" {
		t.Errorf("request_id = %q, want req-42", body.RequestID)
	}
	if body.Code != model.ErrCodePostNotFound {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodePostNotFound)
	}
}

// TestRequestIDThroughStoreSession はストアセッション内で書かれたエラーにもリクエストIDが載ることを検証する。
func TestRequestIDThroughStoreSession(t *testing.T) {
	db := newSessionTestDB(t)
	handler := NewRequestIDMiddleware()(NewStoreSessionMiddleware(db, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteErrorResponse(w, http.StatusNotFound, model.NewUserNotFoundError(9))
	})))

	req := httptest.NewRequest(http.MethodGet, "/user/9", nil)
	req.Header.Set(RequestIDHeader, "req-session")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	var body ErrorResponseBody
	if err := json.NewDecoder(w.Result().Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if body.RequestID != "req-session" {
		t.Errorf("request_id = %q, want req-session", body.RequestID)
	}
}

// TestWriteErrorResponse_Body は各エラーがステータスとボディに正しく反映されることを検証する。
func TestWriteErrorResponse_Body(t *testing.T) {
	tests := []struct {
		name   string
		status int
		err    *model.APIError
	}{
		{"invalid request", http.StatusBadRequest, model.NewInvalidRequestError("title is required")},
		{"not found", http.StatusNotFound, model.NewPostBoxNotFoundError(3)},
		{"invalid reference", http.StatusUnprocessableEntity, model.NewInvalidReferenceError()},
		{"internal", http.StatusInternalServerError, model.NewInternalError()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteErrorResponse(w, tt.status, tt.err)

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}

			var raw map[string]any
			if err := json.NewDecoder(w.Body).Decode(&raw); err != nil {
				t.Fatalf("failed to decode: %v", err)
			}
			want := map[string]any{
				"code":     tt.err.Code,
				"message":  tt.err.Message,
				"category": tt.err.Category,
				"action":   tt.err.Action,
			}
			for k, v := range want {
				if raw[k] != v {
					t.Errorf("%s = %v, want %v", k, raw[k], v)
				}
			}
			if _, ok := raw["request_id"]; ok {
				t.Error("request_id should be omitted without X-Request-ID")
			}
		})
	}
}

// TestWriteInternalServerError は汎用の500が内部情報を含まないことを検証する。
func TestWriteInternalServerError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteInternalServerError(w)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	var body ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if body.Code != model.ErrCodeInternal || body.Category != "system" || body.Action == "" {
		t.Errorf("body = %+v", body)
	}
}
