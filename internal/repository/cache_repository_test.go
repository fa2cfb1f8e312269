package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/branch-roster-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	assert.False(t, repo.Enabled())

	var dest map[string]string
	assert.ErrorIs(t, repo.Get(ctx, "roster:snapshot", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "roster:snapshot", map[string]string{"a": "b"}, time.Minute))

	removed, err := repo.DeleteByPattern(ctx, "roster:*")
	assert.NoError(t, err)
	assert.Zero(t, removed)
	assert.NoError(t, repo.Close())
}
