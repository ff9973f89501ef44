package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/bus-fleet-api/pkg/config"
)

func TestNewRedisDisabledWithoutHost(t *testing.T) {
	client, err := NewRedis(context.Background(), config.RedisConfig{})
	assert.Nil(t, client)
	assert.ErrorIs(t, err, ErrDisabled)
}
