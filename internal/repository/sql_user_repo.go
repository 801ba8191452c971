package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/postboard/internal/database"
	"github.com/hitoshi/postboard/internal/model"
)

// SQLUserRepo はdatabase/sqlを使用したユーザーリポジトリ。
// リクエストスコープのトランザクションがコンテキストにあればそれを使う。
type SQLUserRepo struct {
	db *database.DB
}

// NewSQLUserRepo はSQLUserRepoを生成する。
func NewSQLUserRepo(db *database.DB) *SQLUserRepo {
	return &SQLUserRepo{db: db}
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *SQLUserRepo) FindByID(ctx context.Context, id int64) (user *model.User, err error) {
	ctx, span := startSpan(ctx, "UserRepo.FindByID", id)
	defer func() { endSpan(span, err) }()

	user = &model.User{}
	err = r.db.Conn(ctx).QueryRowContext(ctx,
		r.db.Dialect.Rebind(`SELECT id, name FROM "user" WHERE id = ?`),
		id,
	).Scan(&user.ID, &user.Name)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	return user, nil
}

// FindByIDWithPosts は指定IDのユーザーを投稿と外部結合して取得する。
func (r *SQLUserRepo) FindByIDWithPosts(ctx context.Context, id int64) (user *model.User, err error) {
	ctx, span := startSpan(ctx, "UserRepo.FindByIDWithPosts", id)
	defer func() { endSpan(span, err) }()

	rows, err := r.db.Conn(ctx).QueryContext(ctx,
		r.db.Dialect.Rebind(
			`SELECT u.id, u.name, p.id, p.title, p.user_id, p.box_id
			 FROM "user" u
			 LEFT OUTER JOIN post p ON p.user_id = u.id
			 WHERE u.id = ?
			 ORDER BY p.id`),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find user with posts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			u      model.User
			postID sql.NullInt64
			title  sql.NullString
			userID sql.NullInt64
			boxID  sql.NullInt64
		)
		if err := rows.Scan(&u.ID, &u.Name, &postID, &title, &userID, &boxID); err != nil {
			return nil, fmt.Errorf("failed to scan user with posts: %w", err)
		}

		if user == nil {
			u.Posts = []*model.Post{}
			user = &u
		}
		if postID.Valid {
			user.Posts = append(user.Posts, &model.Post{
				ID:     postID.Int64,
				Title:  title.String,
				UserID: nullInt64Ptr(userID),
				BoxID:  nullInt64Ptr(boxID),
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user with posts: %w", err)
	}

	return user, nil
}

// List は全ユーザーをID昇順で返す。
func (r *SQLUserRepo) List(ctx context.Context) (users []*model.User, err error) {
	ctx, span := startSpan(ctx, "UserRepo.List", 0)
	defer func() { endSpan(span, err) }()

	rows, err := r.db.Conn(ctx).QueryContext(ctx, `SELECT id, name FROM "user" ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users = []*model.User{}
	for rows.Next() {
		u := &model.User{}
		if err := rows.Scan(&u.ID, &u.Name); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

// Create はユーザーを作成し、採番されたIDをuser.IDに設定する。
func (r *SQLUserRepo) Create(ctx context.Context, user *model.User) (err error) {
	ctx, span := startSpan(ctx, "UserRepo.Create", 0)
	defer func() { endSpan(span, err) }()

	err = r.db.Conn(ctx).QueryRowContext(ctx,
		r.db.Dialect.Rebind(`INSERT INTO "user" (name) VALUES (?) RETURNING id`),
		user.Name,
	).Scan(&user.ID)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// compile-time interface check
var _ UserRepository = (*SQLUserRepo)(nil)
