// Package post は投稿管理のドメインロジックを提供する。
package post

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/hitoshi/postboard/internal/database"
	"github.com/hitoshi/postboard/internal/model"
	"github.com/hitoshi/postboard/internal/repository"
)

// MarkupDetector はプレーンテキスト入力のマークアップ検出インターフェース。
type MarkupDetector interface {
	ContainsMarkup(raw string) bool
}

// CreatedRecorder はレコード作成件数を記録するインターフェース。
type CreatedRecorder interface {
	RecordCreated(entity string)
}

// Service は投稿管理のサービス層。
type Service struct {
	postRepo  repository.PostRepository
	markup    MarkupDetector
	recorder  CreatedRecorder
}

// NewService はServiceの新しいインスタンスを生成する。
// markup、recorderはnilでもよい。
func NewService(postRepo repository.PostRepository, markup MarkupDetector, recorder CreatedRecorder) *Service {
	return &Service{
		postRepo:  postRepo,
		markup:    markup,
		recorder:  recorder,
	}
}

// Get は指定IDの投稿を返す。存在しない場合はPOST_NOT_FOUNDを返す。
func (s *Service) Get(ctx context.Context, id int64) (*model.Post, error) {
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("投稿の取得に失敗しました: %w", err)
	}
	if post == nil {
		return nil, model.NewPostNotFoundError(id)
	}
	return post, nil
}

// GetFull は指定IDの投稿を所有ユーザー・ポストボックス付きで返す。
func (s *Service) GetFull(ctx context.Context, id int64) (*model.Post, error) {
	post, err := s.postRepo.FindByIDWithRelations(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("投稿の取得に失敗しました: %w", err)
	}
	if post == nil {
		return nil, model.NewPostNotFoundError(id)
	}
	return post, nil
}

// List は全投稿を返す。
func (s *Service) List(ctx context.Context) ([]*model.Post, error) {
	posts, err := s.postRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("投稿一覧の取得に失敗しました: %w", err)
	}
	return posts, nil
}

// Create は投稿を作成する。IDはサーバー側で採番され、入力値は無視される。
// user_id、box_idが存在しないレコードを指す場合はINVALID_REFERENCEを返す。
func (s *Service) Create(ctx context.Context, in *model.Post) (*model.Post, error) {
	post := &model.Post{
		Title:  in.Title,
		UserID: in.UserID,
		BoxID:  in.BoxID,
	}
	if s.markup != nil && s.markup.ContainsMarkup(post.Title) {
		return nil, model.NewInvalidRequestError("title must not contain markup")
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, model.NewInvalidReferenceError()
		}
		return nil, fmt.Errorf("投稿の作成に失敗しました: %w", err)
	}

	if s.recorder != nil {
		s.recorder.RecordCreated("post")
	}
	slog.Info("投稿を作成しました",
		slog.Int64("post_id", post.ID),
	)

	return post, nil
}

// Update は指定IDの投稿を返す。
// 部分更新の反映は未実装のため、patchのフィールドは保存されず、
// 保存済みの投稿がそのまま返る。受け取ったフィールドは警告ログに残す。
func (s *Service) Update(ctx context.Context, id int64, present map[string]bool) (*model.Post, error) {
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("投稿の取得に失敗しました: %w", err)
	}
	if post == nil {
		return nil, model.NewPostNotFoundError(id)
	}

	fields := make([]string, 0, len(present))
	for f := range present {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	slog.Warn("投稿の更新は反映されません。保存済みの投稿を返します",
		slog.Int64("post_id", id),
		slog.Any("ignored_fields", fields),
	)

	return post, nil
}
