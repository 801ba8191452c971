package user

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/postboard/internal/model"
)

// --- モック ---

type mockUserRepo struct {
	findByIDFn          func(ctx context.Context, id int64) (*model.User, error)
	findByIDWithPostsFn func(ctx context.Context, id int64) (*model.User, error)
	listFn              func(ctx context.Context) ([]*model.User, error)
	createFn            func(ctx context.Context, user *model.User) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockUserRepo) FindByIDWithPosts(ctx context.Context, id int64) (*model.User, error) {
	if m.findByIDWithPostsFn != nil {
		return m.findByIDWithPostsFn(ctx, id)
	}
	return nil, nil
}
func (m *mockUserRepo) List(ctx context.Context) ([]*model.User, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []*model.User{}, nil
}
func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	user.ID = 1
	return nil
}

type stubDetector struct {
	markup bool
}

func (d stubDetector) ContainsMarkup(raw string) bool { return d.markup }

type countingRecorder struct {
	entities []string
}

func (r *countingRecorder) RecordCreated(entity string) {
	r.entities = append(r.entities, entity)
}

// --- テスト ---

// TestService_Get は存在するユーザーが返されることを検証する。
func TestService_Get(t *testing.T) {
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Name: "User 1"}, nil
		},
	}
	svc := NewService(repo, nil, nil)

	got, err := svc.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.ID != 1 || got.Name != "User 1" {
		t.Errorf("got %+v", got)
	}
}

// TestService_Get_NotFound は存在しないユーザーがUSER_NOT_FOUNDになることを検証する。
func TestService_Get_NotFound(t *testing.T) {
	svc := NewService(&mockUserRepo{}, nil, nil)

	_, err := svc.Get(context.Background(), 42)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError, got %T (%v)", err, err)
	}
	if apiErr.Code != model.ErrCodeUserNotFound {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeUserNotFound)
	}
	if !apiErr.IsNotFound() {
		t.Error("expected IsNotFound() to be true")
	}
}

// TestService_Get_RepoError はリポジトリのエラーがラップされて返ることを検証する。
func TestService_Get_RepoError(t *testing.T) {
	dbErr := errors.New("connection refused")
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return nil, dbErr
		},
	}
	svc := NewService(repo, nil, nil)

	_, err := svc.Get(context.Background(), 1)
	if !errors.Is(err, dbErr) {
		t.Errorf("expected wrapped db error, got %v", err)
	}
}

// TestService_GetFull は投稿付きユーザーが返されることを検証する。
func TestService_GetFull(t *testing.T) {
	repo := &mockUserRepo{
		findByIDWithPostsFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Name: "User 1", Posts: []*model.Post{{ID: 7, Title: "hello"}}}, nil
		},
	}
	svc := NewService(repo, nil, nil)

	got, err := svc.GetFull(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetFull returned error: %v", err)
	}
	if len(got.Posts) != 1 || got.Posts[0].Title != "hello" {
		t.Errorf("Posts = %+v", got.Posts)
	}

	_, err = NewService(&mockUserRepo{}, nil, nil).GetFull(context.Background(), 2)
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUserNotFound {
		t.Errorf("expected USER_NOT_FOUND, got %v", err)
	}
}

// TestService_List はリポジトリの一覧がそのまま返ることを検証する。
func TestService_List(t *testing.T) {
	repo := &mockUserRepo{
		listFn: func(ctx context.Context) ([]*model.User, error) {
			return []*model.User{{ID: 1, Name: "User 1"}, {ID: 2, Name: "User 2"}}, nil
		},
	}
	svc := NewService(repo, nil, nil)

	got, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
}

// TestService_Create は入力IDを無視し、名前をそのまま保存することを検証する。
func TestService_Create(t *testing.T) {
	var stored *model.User
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			stored = user
			user.ID = 10
			return nil
		},
	}
	rec := &countingRecorder{}
	svc := NewService(repo, stubDetector{}, rec)

	got, err := svc.Create(context.Background(), &model.User{ID: 999, Name: "user 1"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if stored == nil {
		t.Fatal("expected repository Create to be called")
	}
	if got.ID != 10 {
		t.Errorf("ID = %d, want server-assigned 10", got.ID)
	}
	if got.Name != "user 1" {
		t.Errorf("Name = %q, want %q", got.Name, "user 1")
	}
	if len(rec.entities) != 1 || rec.entities[0] != "user" {
		t.Errorf("recorded = %v, want [user]", rec.entities)
	}
}

// TestService_Create_RejectsMarkup はマークアップを含む名前がINVALID_REQUESTになり保存されないことを検証する。
func TestService_Create_RejectsMarkup(t *testing.T) {
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			t.Error("repository Create must not be called")
			return nil
		},
	}
	rec := &countingRecorder{}
	svc := NewService(repo, stubDetector{markup: true}, rec)

	_, err := svc.Create(context.Background(), &model.User{Name: "<b>x</b>"})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidRequest {
		t.Errorf("expected INVALID_REQUEST, got %v", err)
	}
	if len(rec.entities) != 0 {
		t.Errorf("recorded = %v, want none", rec.entities)
	}
}

// TestService_Create_RepoError は作成失敗時に記録されないことを検証する。
func TestService_Create_RepoError(t *testing.T) {
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			return errors.New("disk full")
		},
	}
	rec := &countingRecorder{}
	svc := NewService(repo, nil, rec)

	if _, err := svc.Create(context.Background(), &model.User{Name: "x"}); err == nil {
		t.Fatal("expected error")
	}
	if len(rec.entities) != 0 {
		t.Errorf("recorded = %v, want none", rec.entities)
	}
}
