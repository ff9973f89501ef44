package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/bus-fleet-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	assert.False(t, repo.Enabled())
	var dest map[string]int
	assert.ErrorIs(t, repo.Get(ctx, "k", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "k", 1, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(ctx, "k*"))
	_, _, err := repo.IncrWindow(ctx, "k", time.Minute)
	assert.Error(t, err)
	assert.NoError(t, repo.Close())
}
