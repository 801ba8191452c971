package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/postboard/internal/database"
	"github.com/hitoshi/postboard/internal/model"
)

// SQLPostBoxRepo はdatabase/sqlを使用したポストボックスリポジトリ。
type SQLPostBoxRepo struct {
	db *database.DB
}

// NewSQLPostBoxRepo はSQLPostBoxRepoを生成する。
func NewSQLPostBoxRepo(db *database.DB) *SQLPostBoxRepo {
	return &SQLPostBoxRepo{db: db}
}

// FindByID は指定IDのポストボックスを取得する。見つからない場合はnilを返す。
func (r *SQLPostBoxRepo) FindByID(ctx context.Context, id int64) (box *model.PostBox, err error) {
	ctx, span := startSpan(ctx, "PostBoxRepo.FindByID", id)
	defer func() { endSpan(span, err) }()

	box = &model.PostBox{}
	err = r.db.Conn(ctx).QueryRowContext(ctx,
		r.db.Dialect.Rebind(`SELECT id, name FROM post_box WHERE id = ?`),
		id,
	).Scan(&box.ID, &box.Name)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find post box by ID: %w", err)
	}

	return box, nil
}

// FindByIDWithPosts は指定IDのポストボックスを投稿と外部結合して取得する。
func (r *SQLPostBoxRepo) FindByIDWithPosts(ctx context.Context, id int64) (box *model.PostBox, err error) {
	ctx, span := startSpan(ctx, "PostBoxRepo.FindByIDWithPosts", id)
	defer func() { endSpan(span, err) }()

	rows, err := r.db.Conn(ctx).QueryContext(ctx,
		r.db.Dialect.Rebind(
			`SELECT b.id, b.name, p.id, p.title, p.user_id, p.box_id
			 FROM post_box b
			 LEFT OUTER JOIN post p ON p.box_id = b.id
			 WHERE b.id = ?
			 ORDER BY p.id`),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find post box with posts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			b      model.PostBox
			postID sql.NullInt64
			title  sql.NullString
			userID sql.NullInt64
			boxID  sql.NullInt64
		)
		if err := rows.Scan(&b.ID, &b.Name, &postID, &title, &userID, &boxID); err != nil {
			return nil, fmt.Errorf("failed to scan post box with posts: %w", err)
		}

		if box == nil {
			b.Posts = []*model.Post{}
			box = &b
		}
		if postID.Valid {
			box.Posts = append(box.Posts, &model.Post{
				ID:     postID.Int64,
				Title:  title.String,
				UserID: nullInt64Ptr(userID),
				BoxID:  nullInt64Ptr(boxID),
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate post box with posts: %w", err)
	}

	return box, nil
}

// List は全ポストボックスをID昇順で返す。
func (r *SQLPostBoxRepo) List(ctx context.Context) (boxes []*model.PostBox, err error) {
	ctx, span := startSpan(ctx, "PostBoxRepo.List", 0)
	defer func() { endSpan(span, err) }()

	rows, err := r.db.Conn(ctx).QueryContext(ctx, `SELECT id, name FROM post_box ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list post boxes: %w", err)
	}
	defer rows.Close()

	boxes = []*model.PostBox{}
	for rows.Next() {
		b := &model.PostBox{}
		if err := rows.Scan(&b.ID, &b.Name); err != nil {
			return nil, fmt.Errorf("failed to scan post box: %w", err)
		}
		boxes = append(boxes, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate post boxes: %w", err)
	}

	return boxes, nil
}

// Create はポストボックスを作成し、採番されたIDをbox.IDに設定する。
func (r *SQLPostBoxRepo) Create(ctx context.Context, box *model.PostBox) (err error) {
	ctx, span := startSpan(ctx, "PostBoxRepo.Create", 0)
	defer func() { endSpan(span, err) }()

	err = r.db.Conn(ctx).QueryRowContext(ctx,
		r.db.Dialect.Rebind(`INSERT INTO post_box (name) VALUES (?) RETURNING id`),
		box.Name,
	).Scan(&box.ID)
	if err != nil {
		return fmt.Errorf("failed to insert post box: %w", err)
	}

	return nil
}

// compile-time interface check
var _ PostBoxRepository = (*SQLPostBoxRepo)(nil)
