package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/postboard/internal/model"
)

// TestMapAPIErrorToHTTPStatus はエラーコードとHTTPステータスの対応を検証する。
func TestMapAPIErrorToHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  *model.APIError
		want int
	}{
		{"user not found", model.NewUserNotFoundError(1), http.StatusNotFound},
		{"post not found", model.NewPostNotFoundError(1), http.StatusNotFound},
		{"post box not found", model.NewPostBoxNotFoundError(1), http.StatusNotFound},
		{"invalid request", model.NewInvalidRequestError("x"), http.StatusBadRequest},
		{"invalid reference", model.NewInvalidReferenceError(), http.StatusUnprocessableEntity},
		{"rate limited", &model.APIError{Code: model.ErrCodeRateLimited}, http.StatusTooManyRequests},
		{"internal", model.NewInternalError(), http.StatusInternalServerError},
		{"unknown", &model.APIError{Code: "SOMETHING_ELSE"}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapAPIErrorToHTTPStatus(tt.err); got != tt.want {
				t.Errorf("mapAPIErrorToHTTPStatus(%s) = %d, want %d", tt.err.Code, got, tt.want)
			}
		})
	}
}

// TestHandleServiceError_WrappedAPIError はラップされたAPIErrorも識別できることを検証する。
func TestHandleServiceError_WrappedAPIError(t *testing.T) {
	err := fmt.Errorf("lookup: %w", model.NewPostNotFoundError(3))

	w := httptest.NewRecorder()
	handleServiceError(w, httptest.NewRequest(http.MethodGet, "/post/3", nil), err)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

// TestHandleServiceError_PlainError は通常のエラーが500になることを検証する。
func TestHandleServiceError_PlainError(t *testing.T) {
	w := httptest.NewRecorder()
	handleServiceError(w, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("boom"))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	if resp := parseAPIErrorResponse(t, w); resp["code"] != model.ErrCodeInternal {
		t.Errorf("code = %q, want %q", resp["code"], model.ErrCodeInternal)
	}
}

type fakePinger struct {
	err error
}

func (p fakePinger) PingContext(ctx context.Context) error { return p.err }

func TestHealthHandler_Check(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"reachable", nil, http.StatusOK},
		{"unreachable", errors.New("dial tcp: connection refused"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(fakePinger{err: tt.err})

			w := httptest.NewRecorder()
			h.Check(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}
