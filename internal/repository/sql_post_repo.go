package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/postboard/internal/database"
	"github.com/hitoshi/postboard/internal/model"
)

// SQLPostRepo はdatabase/sqlを使用した投稿リポジトリ。
type SQLPostRepo struct {
	db *database.DB
}

// NewSQLPostRepo はSQLPostRepoを生成する。
func NewSQLPostRepo(db *database.DB) *SQLPostRepo {
	return &SQLPostRepo{db: db}
}

// FindByID は指定IDの投稿を取得する。見つからない場合はnilを返す。
func (r *SQLPostRepo) FindByID(ctx context.Context, id int64) (post *model.Post, err error) {
	ctx, span := startSpan(ctx, "PostRepo.FindByID", id)
	defer func() { endSpan(span, err) }()

	var userID, boxID sql.NullInt64
	post = &model.Post{}
	err = r.db.Conn(ctx).QueryRowContext(ctx,
		r.db.Dialect.Rebind(`SELECT id, title, user_id, box_id FROM post WHERE id = ?`),
		id,
	).Scan(&post.ID, &post.Title, &userID, &boxID)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find post by ID: %w", err)
	}

	post.UserID = nullInt64Ptr(userID)
	post.BoxID = nullInt64Ptr(boxID)
	return post, nil
}

// FindByIDWithRelations は指定IDの投稿を所有ユーザー・ポストボックスと外部結合して取得する。
// 関連が未設定の場合、User・Boxはnilのまま返す。
func (r *SQLPostRepo) FindByIDWithRelations(ctx context.Context, id int64) (post *model.Post, err error) {
	ctx, span := startSpan(ctx, "PostRepo.FindByIDWithRelations", id)
	defer func() { endSpan(span, err) }()

	var (
		userID, boxID sql.NullInt64
		uID, bID      sql.NullInt64
		uName, bName  sql.NullString
	)
	post = &model.Post{}
	err = r.db.Conn(ctx).QueryRowContext(ctx,
		r.db.Dialect.Rebind(
			`SELECT p.id, p.title, p.user_id, p.box_id, u.id, u.name, b.id, b.name
			 FROM post p
			 LEFT OUTER JOIN "user" u ON u.id = p.user_id
			 LEFT OUTER JOIN post_box b ON b.id = p.box_id
			 WHERE p.id = ?`),
		id,
	).Scan(&post.ID, &post.Title, &userID, &boxID, &uID, &uName, &bID, &bName)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find post with relations: %w", err)
	}

	post.UserID = nullInt64Ptr(userID)
	post.BoxID = nullInt64Ptr(boxID)
	if uID.Valid {
		post.User = &model.User{ID: uID.Int64, Name: uName.String}
	}
	if bID.Valid {
		post.Box = &model.PostBox{ID: bID.Int64, Name: bName.String}
	}
	return post, nil
}

// List は全投稿をID昇順で返す。
func (r *SQLPostRepo) List(ctx context.Context) (posts []*model.Post, err error) {
	ctx, span := startSpan(ctx, "PostRepo.List", 0)
	defer func() { endSpan(span, err) }()

	rows, err := r.db.Conn(ctx).QueryContext(ctx,
		`SELECT id, title, user_id, box_id FROM post ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts, err = scanPosts(rows)
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Create は投稿を作成し、採番されたIDをpost.IDに設定する。
func (r *SQLPostRepo) Create(ctx context.Context, post *model.Post) (err error) {
	ctx, span := startSpan(ctx, "PostRepo.Create", 0)
	defer func() { endSpan(span, err) }()

	err = r.db.Conn(ctx).QueryRowContext(ctx,
		r.db.Dialect.Rebind(`INSERT INTO post (title, user_id, box_id) VALUES (?, ?, ?) RETURNING id`),
		post.Title, nullInt64(post.UserID), nullInt64(post.BoxID),
	).Scan(&post.ID)
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}

	return nil
}

// scanPosts は (id, title, user_id, box_id) の行を投稿のスライスに変換する。
// 行がない場合も空のスライスを返す。
func scanPosts(rows *sql.Rows) ([]*model.Post, error) {
	posts := []*model.Post{}
	for rows.Next() {
		var userID, boxID sql.NullInt64
		p := &model.Post{}
		if err := rows.Scan(&p.ID, &p.Title, &userID, &boxID); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		p.UserID = nullInt64Ptr(userID)
		p.BoxID = nullInt64Ptr(boxID)
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}
	return posts, nil
}

// compile-time interface check
var _ PostRepository = (*SQLPostRepo)(nil)
