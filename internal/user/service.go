// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"

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

// Service はユーザー管理のサービス層。
type Service struct {
	userRepo  repository.UserRepository
	markup    MarkupDetector
	recorder  CreatedRecorder
}

// NewService はServiceの新しいインスタンスを生成する。
// markup、recorderはnilでもよい。
func NewService(userRepo repository.UserRepository, markup MarkupDetector, recorder CreatedRecorder) *Service {
	return &Service{
		userRepo:  userRepo,
		markup:    markup,
		recorder:  recorder,
	}
}

// Get は指定IDのユーザーを返す。存在しない場合はUSER_NOT_FOUNDを返す。
func (s *Service) Get(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError(id)
	}
	return user, nil
}

// GetFull は指定IDのユーザーを投稿一覧付きで返す。
func (s *Service) GetFull(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.userRepo.FindByIDWithPosts(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError(id)
	}
	return user, nil
}

// List は全ユーザーを返す。
func (s *Service) List(ctx context.Context) ([]*model.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}
	return users, nil
}

// Create はユーザーを作成する。IDはサーバー側で採番され、入力値は無視される。
func (s *Service) Create(ctx context.Context, in *model.User) (*model.User, error) {
	user := &model.User{Name: in.Name}
	if s.markup != nil && s.markup.ContainsMarkup(user.Name) {
		return nil, model.NewInvalidRequestError("name must not contain markup")
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}

	if s.recorder != nil {
		s.recorder.RecordCreated("user")
	}
	slog.Info("ユーザーを作成しました",
		slog.Int64("user_id", user.ID),
	)

	return user, nil
}
