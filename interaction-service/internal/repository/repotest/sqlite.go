// Package repotest opens throwaway SQL stores for tests.
package repotest

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/weiawesome/wes-io-live/interaction-service/internal/domain"
	"github.com/weiawesome/wes-io-live/interaction-service/internal/repository"
	"github.com/weiawesome/wes-io-live/pkg/database"
)

// NewStore returns a migrated in-memory sqlite store private to t.
func NewStore(t *testing.T) *repository.Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.New(&database.Config{
		Driver:       "sqlite",
		FilePath:     fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
		MaxOpenConns: 1,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return repository.NewGormStore(db)
}

// SeedUsers stores the given profiles.
func SeedUsers(t *testing.T, s *repository.Store, users ...*domain.User) {
	t.Helper()
	for _, u := range users {
		require.NoError(t, s.Users.Save(context.Background(), u))
	}
}
