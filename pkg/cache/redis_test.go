package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewFromClient(client), mr
}

func TestRedisCacheGetPutDelete(t *testing.T) {
	rc, mr := newTestRedis(t)
	ctx := context.Background()

	_, found, err := rc.Get(ctx, "case:1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, rc.Put(ctx, "case:1", []byte("v1"), time.Hour))
	val, found, err := rc.Get(ctx, "case:1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("v1"), val)
	assert.Equal(t, time.Hour, mr.TTL("case:1"))

	require.NoError(t, rc.Delete(ctx, "case:1", "case:missing"))
	assert.False(t, mr.Exists("case:1"))
	assert.NoError(t, rc.Delete(ctx))
}

func TestRedisCacheExpiry(t *testing.T) {
	rc, mr := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, rc.Put(ctx, "count:approved", []byte("3"), 600*time.Second))
	mr.FastForward(601 * time.Second)

	_, found, err := rc.Get(ctx, "count:approved")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCacheListByPrefix(t *testing.T) {
	rc, _ := newTestRedis(t)
	ctx := context.Background()

	for _, k := range []string{
		"cases:ACC123:VCB:50:0",
		"cases:ACC123:VCB:10:20",
		"cases:ACC123:TCB:50:0",
		"stats-search::input:nguyen::bank:VCB",
		"case:9",
	} {
		require.NoError(t, rc.Put(ctx, k, []byte("x"), time.Hour))
	}

	keys, err := rc.ListByPrefix(ctx, "cases:ACC123:VCB:")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"cases:ACC123:VCB:50:0", "cases:ACC123:VCB:10:20"}, keys)

	keys, err = rc.ListByPrefix(ctx, "stats-search::")
	require.NoError(t, err)
	assert.Equal(t, []string{"stats-search::input:nguyen::bank:VCB"}, keys)
}

func TestRedisCacheListByPrefixEscapesGlob(t *testing.T) {
	rc, _ := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, rc.Put(ctx, "search::input:a*b::bank:", []byte("x"), time.Hour))
	require.NoError(t, rc.Put(ctx, "search::input:axxb::bank:", []byte("x"), time.Hour))

	keys, err := rc.ListByPrefix(ctx, "search::input:a*b")
	require.NoError(t, err)
	assert.Equal(t, []string{"search::input:a*b::bank:"}, keys)
}

func TestRedisCacheUnavailable(t *testing.T) {
	rc, mr := newTestRedis(t)
	mr.Close()

	_, _, err := rc.Get(context.Background(), "case:1")
	assert.Error(t, err)
}
