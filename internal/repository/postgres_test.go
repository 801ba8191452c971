package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/hitoshi/postboard/internal/database"
	"github.com/hitoshi/postboard/internal/model"
)

// newPostgresTestDB はTEST_DATABASE_URLのPostgreSQLをリセットして返す。
// 未設定または接続できない場合はテストをスキップする。
func newPostgresTestDB(t *testing.T) *database.DB {
	t.Helper()

	uri := os.Getenv("TEST_DATABASE_URL")
	if uri == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	db, err := database.Open(uri)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		t.Skipf("PostgreSQL is unreachable: %v", err)
	}

	if err := database.Reset(uri); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	return db
}

// TestPostgres_RoundTrip はPostgreSQL上で作成・取得・外部キー違反の判定を通しで検証する。
func TestPostgres_RoundTrip(t *testing.T) {
	db := newPostgresTestDB(t)
	ctx := context.Background()

	users := NewSQLUserRepo(db)
	posts := NewSQLPostRepo(db)
	boxes := NewSQLPostBoxRepo(db)

	u := &model.User{Name: "User 1"}
	if err := users.Create(ctx, u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	b := &model.PostBox{Name: "inbox"}
	if err := boxes.Create(ctx, b); err != nil {
		t.Fatalf("create box: %v", err)
	}
	p := &model.Post{Title: "hello", UserID: &u.ID, BoxID: &b.ID}
	if err := posts.Create(ctx, p); err != nil {
		t.Fatalf("create post: %v", err)
	}

	full, err := posts.FindByIDWithRelations(ctx, p.ID)
	if err != nil {
		t.Fatalf("FindByIDWithRelations: %v", err)
	}
	if full.User == nil || full.User.Name != "User 1" {
		t.Errorf("User = %+v, want User 1", full.User)
	}
	if full.Box == nil || full.Box.Name != "inbox" {
		t.Errorf("Box = %+v, want inbox", full.Box)
	}

	withPosts, err := users.FindByIDWithPosts(ctx, u.ID)
	if err != nil {
		t.Fatalf("FindByIDWithPosts: %v", err)
	}
	if len(withPosts.Posts) != 1 {
		t.Errorf("len(Posts) = %d, want 1", len(withPosts.Posts))
	}

	missing := int64(9999)
	err = posts.Create(ctx, &model.Post{Title: "bad", UserID: &missing})
	if !database.IsForeignKeyViolation(err) {
		t.Errorf("IsForeignKeyViolation(%v) = false, want true", err)
	}
}
