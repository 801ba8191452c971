// Package postbox はポストボックス管理のドメインロジックを提供する。
package postbox

import (
	"context"
	"fmt"

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

// Service はポストボックス管理のサービス層。
type Service struct {
	boxRepo   repository.PostBoxRepository
	markup    MarkupDetector
	recorder  CreatedRecorder
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(boxRepo repository.PostBoxRepository, markup MarkupDetector, recorder CreatedRecorder) *Service {
	return &Service{
		boxRepo:   boxRepo,
		markup:    markup,
		recorder:  recorder,
	}
}

// Get は指定IDのポストボックスを返す。存在しない場合はPOST_BOX_NOT_FOUNDを返す。
func (s *Service) Get(ctx context.Context, id int64) (*model.PostBox, error) {
	box, err := s.boxRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ポストボックスの取得に失敗しました: %w", err)
	}
	if box == nil {
		return nil, model.NewPostBoxNotFoundError(id)
	}
	return box, nil
}

// GetFull は指定IDのポストボックスを投稿一覧付きで返す。
func (s *Service) GetFull(ctx context.Context, id int64) (*model.PostBox, error) {
	box, err := s.boxRepo.FindByIDWithPosts(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ポストボックスの取得に失敗しました: %w", err)
	}
	if box == nil {
		return nil, model.NewPostBoxNotFoundError(id)
	}
	return box, nil
}

// List は全ポストボックスを返す。
func (s *Service) List(ctx context.Context) ([]*model.PostBox, error) {
	boxes, err := s.boxRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ポストボックス一覧の取得に失敗しました: %w", err)
	}
	return boxes, nil
}

// Create はポストボックスを作成する。
func (s *Service) Create(ctx context.Context, in *model.PostBox) (*model.PostBox, error) {
	box := &model.PostBox{Name: in.Name}
	if s.markup != nil && s.markup.ContainsMarkup(box.Name) {
		return nil, model.NewInvalidRequestError("name must not contain markup")
	}

	if err := s.boxRepo.Create(ctx, box); err != nil {
		return nil, fmt.Errorf("ポストボックスの作成に失敗しました: %w", err)
	}

	if s.recorder != nil {
		s.recorder.RecordCreated("post_box")
	}
	return box, nil
}
