package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/postboard/internal/dto"
	"github.com/hitoshi/postboard/internal/model"
	"github.com/hitoshi/postboard/internal/projection"
)

// PostBoxServiceInterface はPostBoxHandlerが依存するサービスのインターフェース。
type PostBoxServiceInterface interface {
	Get(ctx context.Context, id int64) (*model.PostBox, error)
	GetFull(ctx context.Context, id int64) (*model.PostBox, error)
	List(ctx context.Context) ([]*model.PostBox, error)
	Create(ctx context.Context, in *model.PostBox) (*model.PostBox, error)
}

// PostBoxHandler はポストボックス関連のHTTPハンドラー。
type PostBoxHandler struct {
	service PostBoxServiceInterface
}

// NewPostBoxHandler はPostBoxHandlerの新しいインスタンスを生成する。
func NewPostBoxHandler(service PostBoxServiceInterface) *PostBoxHandler {
	return &PostBoxHandler{service: service}
}

// List は全ポストボックスを返す。
// GET /post_box
func (h *PostBoxHandler) List(w http.ResponseWriter, r *http.Request) {
	boxes, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projection.RenderAll(dto.PostBoxes.One, boxes))
}

// Get は指定IDのポストボックスを返す。
// GET /post_box/{id}
func (h *PostBoxHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeInvalidID(w)
		return
	}

	box, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.PostBoxes.One.Render(box))
}

// GetFull は指定IDのポストボックスを投稿一覧付きで返す。
// GET /post_box/{id}/full
func (h *PostBoxHandler) GetFull(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeInvalidID(w)
		return
	}

	box, err := h.service.GetFull(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.PostBoxes.Full.Render(box))
}

// Create はポストボックスを作成する。
// POST /post_box/create
func (h *PostBoxHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		handleDecodeError(w, err)
		return
	}
	in, err := dto.DecodePostBox(dto.PostBoxes.Create, body)
	if err != nil {
		handleDecodeError(w, err)
		return
	}

	box, err := h.service.Create(r.Context(), in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.PostBoxes.One.Render(box))
}

// SetupPostBoxRoutes はポストボックス関連のルーティングを設定する。
func SetupPostBoxRoutes(r chi.Router, h *PostBoxHandler) {
	r.Route("/post_box", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/create", h.Create)
		r.Get("/{id:[0-9]+}", h.Get)
		r.Get("/{id:[0-9]+}/full", h.GetFull)
	})
}
