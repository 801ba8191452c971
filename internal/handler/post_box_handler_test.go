package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/postboard/internal/model"
)

// mockPostBoxService はPostBoxServiceInterfaceのモック実装。
type mockPostBoxService struct {
	getFn     func(ctx context.Context, id int64) (*model.PostBox, error)
	getFullFn func(ctx context.Context, id int64) (*model.PostBox, error)
	listFn    func(ctx context.Context) ([]*model.PostBox, error)
	createFn  func(ctx context.Context, in *model.PostBox) (*model.PostBox, error)
}

func (m *mockPostBoxService) Get(ctx context.Context, id int64) (*model.PostBox, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, model.NewPostBoxNotFoundError(id)
}

func (m *mockPostBoxService) GetFull(ctx context.Context, id int64) (*model.PostBox, error) {
	if m.getFullFn != nil {
		return m.getFullFn(ctx, id)
	}
	return nil, model.NewPostBoxNotFoundError(id)
}

func (m *mockPostBoxService) List(ctx context.Context) ([]*model.PostBox, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []*model.PostBox{}, nil
}

func (m *mockPostBoxService) Create(ctx context.Context, in *model.PostBox) (*model.PostBox, error) {
	if m.createFn != nil {
		return m.createFn(ctx, in)
	}
	return &model.PostBox{ID: 1, Name: in.Name}, nil
}

func TestPostBoxHandler_Get_NotFound(t *testing.T) {
	h := NewPostBoxHandler(&mockPostBoxService{})

	req := withChiURLParam(httptest.NewRequest(http.MethodGet, "/post_box/2", nil), "id", "2")
	w := httptest.NewRecorder()
	h.Get(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	resp := parseAPIErrorResponse(t, w)
	if resp["code"] != model.ErrCodePostBoxNotFound {
		t.Errorf("code = %q, want %q", resp["code"], model.ErrCodePostBoxNotFound)
	}
}

func TestPostBoxHandler_GetFull_EmbedsPosts(t *testing.T) {
	svc := &mockPostBoxService{
		getFullFn: func(ctx context.Context, id int64) (*model.PostBox, error) {
			return &model.PostBox{
				ID:   id,
				Name: "inbox",
				Posts: []*model.Post{
					{ID: 1, Title: "a", BoxID: int64Ptr(id)},
					{ID: 2, Title: "b", BoxID: int64Ptr(id)},
				},
			}, nil
		},
	}
	h := NewPostBoxHandler(svc)

	req := withChiURLParam(httptest.NewRequest(http.MethodGet, "/post_box/4/full", nil), "id", "4")
	w := httptest.NewRecorder()
	h.GetFull(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	box := parseObject(t, w)
	assertKeys(t, box, "id", "name", "posts")
	if posts, ok := box["posts"].([]any); !ok || len(posts) != 2 {
		t.Errorf("posts = %v, want two posts", box["posts"])
	}
}

func TestPostBoxHandler_Create_Success(t *testing.T) {
	svc := &mockPostBoxService{
		createFn: func(ctx context.Context, in *model.PostBox) (*model.PostBox, error) {
			if in.ID != 0 {
				t.Errorf("id = %d, want 0", in.ID)
			}
			return &model.PostBox{ID: 8, Name: in.Name}, nil
		},
	}
	h := NewPostBoxHandler(svc)

	w := httptest.NewRecorder()
	h.Create(w, httptest.NewRequest(http.MethodPost, "/post_box/create", strings.NewReader(`{"id":1,"name":"inbox"}`)))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	box := parseObject(t, w)
	assertKeys(t, box, "id", "name")
	if box["id"] != float64(8) || box["name"] != "inbox" {
		t.Errorf("box = %v", box)
	}
}

func TestPostBoxHandler_List_Success(t *testing.T) {
	svc := &mockPostBoxService{
		listFn: func(ctx context.Context) ([]*model.PostBox, error) {
			return []*model.PostBox{{ID: 1, Name: "inbox"}}, nil
		},
	}
	h := NewPostBoxHandler(svc)

	w := httptest.NewRecorder()
	h.List(w, httptest.NewRequest(http.MethodGet, "/post_box", nil))

	boxes := parseArray(t, w)
	if len(boxes) != 1 {
		t.Fatalf("len = %d, want 1", len(boxes))
	}
	assertKeys(t, boxes[0], "id", "name")
}
