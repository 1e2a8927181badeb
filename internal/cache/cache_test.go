package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNilClientIsMiss(t *testing.T) {
	var c *Client
	ctx := context.Background()

	data, err := c.Get(ctx, "categories:active")
	assert.NoError(t, err)
	assert.Nil(t, data)

	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	assert.NoError(t, c.Delete(ctx, "k"))

	n, err := c.Incr(ctx, "login_attempts:a@x.com", time.Minute)
	assert.NoError(t, err)
	assert.Zero(t, n)

	assert.NoError(t, c.Ping(ctx))
	assert.NoError(t, c.Close())
}

func TestUnreachableRedisFailsSafe(t *testing.T) {
	// Nothing listens on port 1; every call must behave like a miss.
	c := New("127.0.0.1:1", "", 0)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	data, err := c.Get(ctx, "missing")
	assert.NoError(t, err)
	assert.Nil(t, data)

	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	n, err := c.Incr(ctx, "counter", time.Minute)
	assert.NoError(t, err)
	assert.Zero(t, n)

	assert.Error(t, c.Ping(ctx))
}
