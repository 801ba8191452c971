package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/postboard/internal/dto"
	"github.com/hitoshi/postboard/internal/model"
	"github.com/hitoshi/postboard/internal/projection"
)

// PostServiceInterface はPostHandlerが依存するサービスのインターフェース。
type PostServiceInterface interface {
	Get(ctx context.Context, id int64) (*model.Post, error)
	GetFull(ctx context.Context, id int64) (*model.Post, error)
	List(ctx context.Context) ([]*model.Post, error)
	Create(ctx context.Context, in *model.Post) (*model.Post, error)
	Update(ctx context.Context, id int64, present map[string]bool) (*model.Post, error)
}

// PostHandler は投稿関連のHTTPハンドラー。
type PostHandler struct {
	service PostServiceInterface
}

// NewPostHandler はPostHandlerの新しいインスタンスを生成する。
func NewPostHandler(service PostServiceInterface) *PostHandler {
	return &PostHandler{service: service}
}

// List は全投稿を返す。
// GET /post
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projection.RenderAll(dto.Posts.One, posts))
}

// Get は指定IDの投稿を返す。
// GET /post/{id}
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeInvalidID(w)
		return
	}

	post, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.Posts.One.Render(post))
}

// GetFull は指定IDの投稿を所有ユーザー・ポストボックス付きで返す。
// GET /post/{id}/full
func (h *PostHandler) GetFull(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeInvalidID(w)
		return
	}

	post, err := h.service.GetFull(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.Posts.Full.Render(post))
}

// Create は投稿を作成する。
// POST /post/create
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		handleDecodeError(w, err)
		return
	}
	in, _, err := dto.DecodePost(dto.Posts.Create, body)
	if err != nil {
		handleDecodeError(w, err)
		return
	}

	post, err := h.service.Create(r.Context(), in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.Posts.One.Render(post))
}

// Update はpartialビューでボディを検証し、保存済みの投稿をそのまま返す。
// パッチ内容は反映されない。
// PATCH /post/update?id={id}
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r.URL.Query().Get("id"))
	if !ok {
		writeInvalidID(w)
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		handleDecodeError(w, err)
		return
	}
	_, present, err := dto.DecodePost(dto.Posts.Partial, body)
	if err != nil {
		handleDecodeError(w, err)
		return
	}

	post, err := h.service.Update(r.Context(), id, present)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.Posts.One.Render(post))
}

// SetupPostRoutes は投稿関連のルーティングを設定する。
func SetupPostRoutes(r chi.Router, h *PostHandler) {
	r.Route("/post", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/create", h.Create)
		r.Patch("/update", h.Update)
		r.Get("/{id:[0-9]+}", h.Get)
		r.Get("/{id:[0-9]+}/full", h.GetFull)
	})
}
