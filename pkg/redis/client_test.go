package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquaforma/poolquote-backend/pkg/config"
)

func TestSetNXAndReleaseOwned(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}
	key := client.ReconcileLockKey("cfg-1", "heating")

	ok, err := client.SetNX(ctx, key, "owner-a", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = client.SetNX(ctx, key, "owner-b", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second writer must lose")

	released, err := client.ReleaseOwned(ctx, key, "owner-b")
	require.NoError(t, err)
	assert.False(t, released, "foreign owner must not release")

	value, err := client.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "owner-a", value)

	released, err = client.ReleaseOwned(ctx, key, "owner-a")
	require.NoError(t, err)
	assert.True(t, released)

	_, err = client.Get(ctx, key)
	assert.ErrorIs(t, err, redis.Nil)
}

func TestReconcileLockKey(t *testing.T) {
	client := &Client{}
	assert.Equal(t, "pq:lock:reconcile:cfg:heating", client.ReconcileLockKey("cfg", "heating"))
	assert.Equal(t, "pq:lock:reconcile:cfg", client.ReconcileLockKey(" cfg ", ""))
}

func TestUninitializedClient(t *testing.T) {
	client := &Client{}
	ctx := context.Background()

	assert.ErrorIs(t, client.Ping(ctx), errNotInitialized)
	_, err := client.ReleaseOwned(ctx, "k", "o")
	assert.ErrorIs(t, err, errNotInitialized)
	assert.NoError(t, client.Close())
}

func TestOptionsFromConfig(t *testing.T) {
	_, err := optionsFromConfig(config.RedisConfig{})
	assert.ErrorIs(t, err, errNoEndpoint)

	opts, err := optionsFromConfig(config.RedisConfig{Address: "localhost:6379", PoolSize: 7, DialTimeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 7, opts.PoolSize)
	assert.Equal(t, time.Second, opts.DialTimeout)

	opts, err = optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6380/2", DB: 5, PoolSize: 3})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB, "url database wins over discrete setting")
	assert.Equal(t, 3, opts.PoolSize)

	_, err = optionsFromConfig(config.RedisConfig{URL: "://bad"})
	assert.Error(t, err)
}

type mockCmdable struct {
	data map[string]string
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{data: make(map[string]string)}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) SetNX(_ context.Context, key string, value any, _ time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

// Eval understands only the release script.
func (m *mockCmdable) Eval(_ context.Context, script string, keys []string, args ...any) *redis.Cmd {
	if script != releaseOwnedScript || len(keys) != 1 || len(args) != 1 {
		return redis.NewCmdResult(nil, fmt.Errorf("unexpected script"))
	}
	if m.data[keys[0]] != fmt.Sprint(args[0]) {
		return redis.NewCmdResult(int64(0), nil)
	}
	delete(m.data, keys[0])
	return redis.NewCmdResult(int64(1), nil)
}
