// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/postboard/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// FindByIDWithPosts は指定IDのユーザーを投稿と外部結合して取得する。
	// 見つからない場合はnilを返す。投稿がない場合Postsは空になる。
	FindByIDWithPosts(ctx context.Context, id int64) (*model.User, error)

	// List は全ユーザーをID昇順で返す。
	List(ctx context.Context) ([]*model.User, error)

	// Create はユーザーを作成し、採番されたIDをuser.IDに設定する。
	Create(ctx context.Context, user *model.User) error
}

// PostRepository は投稿データの永続化インターフェース。
type PostRepository interface {
	// FindByID は指定IDの投稿を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Post, error)

	// FindByIDWithRelations は指定IDの投稿を所有ユーザー・ポストボックスと外部結合して取得する。
	// 見つからない場合はnilを返す。
	FindByIDWithRelations(ctx context.Context, id int64) (*model.Post, error)

	// List は全投稿をID昇順で返す。
	List(ctx context.Context) ([]*model.Post, error)

	// Create は投稿を作成し、採番されたIDをpost.IDに設定する。
	// user_id、box_idが存在しないレコードを指す場合は外部キー制約違反のエラーを返す。
	Create(ctx context.Context, post *model.Post) error
}

// PostBoxRepository はポストボックスデータの永続化インターフェース。
type PostBoxRepository interface {
	// FindByID は指定IDのポストボックスを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.PostBox, error)

	// FindByIDWithPosts は指定IDのポストボックスを投稿と外部結合して取得する。
	FindByIDWithPosts(ctx context.Context, id int64) (*model.PostBox, error)

	// List は全ポストボックスをID昇順で返す。
	List(ctx context.Context) ([]*model.PostBox, error)

	// Create はポストボックスを作成し、採番されたIDをbox.IDに設定する。
	Create(ctx context.Context, box *model.PostBox) error
}
