package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/postboard/internal/dto"
	"github.com/hitoshi/postboard/internal/model"
	"github.com/hitoshi/postboard/internal/projection"
)

// UserServiceInterface はUserHandlerが依存するサービスのインターフェース。
type UserServiceInterface interface {
	Get(ctx context.Context, id int64) (*model.User, error)
	GetFull(ctx context.Context, id int64) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
	Create(ctx context.Context, in *model.User) (*model.User, error)
}

// UserHandler はユーザー関連のHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerの新しいインスタンスを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// List は全ユーザーをoneビューで返す。
// GET /user
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projection.RenderAll(dto.Users.One, users))
}

// Get は指定IDのユーザーを返す。
// GET /user/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeInvalidID(w)
		return
	}

	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.Users.One.Render(user))
}

// GetFull は指定IDのユーザーを投稿一覧付きで返す。
// GET /user/{id}/full
func (h *UserHandler) GetFull(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeInvalidID(w)
		return
	}

	user, err := h.service.GetFull(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.Users.Full.Render(user))
}

// Create はユーザーを作成する。
// POST /user/create
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		handleDecodeError(w, err)
		return
	}
	in, err := dto.DecodeUser(dto.Users.Create, body)
	if err != nil {
		handleDecodeError(w, err)
		return
	}

	user, err := h.service.Create(r.Context(), in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.Users.One.Render(user))
}

// SetupUserRoutes はユーザー関連のルーティングを設定する。
func SetupUserRoutes(r chi.Router, h *UserHandler) {
	r.Route("/user", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/create", h.Create)
		r.Get("/{id:[0-9]+}", h.Get)
		r.Get("/{id:[0-9]+}/full", h.GetFull)
	})
}
