// Package seed はDB_INIT指定時に投入するフィクスチャデータを提供する。
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/postboard/internal/model"
	"github.com/hitoshi/postboard/internal/repository"
)

// FixtureUserNames は初期化時に作成するユーザー名。
var FixtureUserNames = []string{"User 1", "User 2"}

// Users はフィクスチャユーザーを順に作成し、作成したユーザーを返す。
func Users(ctx context.Context, repo repository.UserRepository) ([]*model.User, error) {
	users := make([]*model.User, 0, len(FixtureUserNames))
	for _, name := range FixtureUserNames {
		u := &model.User{Name: name}
		if err := repo.Create(ctx, u); err != nil {
			return nil, fmt.Errorf("failed to seed user %q: %w", name, err)
		}
		users = append(users, u)
	}

	slog.Info("フィクスチャを投入しました", slog.Int("users", len(users)))
	return users, nil
}
