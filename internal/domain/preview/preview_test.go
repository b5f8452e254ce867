package preview

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicelab-server-go/internal/domain/tts/adapters/mock"
	"voicelab-server-go/internal/platform/config"
)

func testCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewCache(rdb, "test", nil), mr
}

func mockProvider() *mock.Provider {
	return mock.New(config.TTSConfig{Type: "mock", Voice: "narrator", SampleRate: 16000}, nil)
}

func TestPreviewSynthesizesAndCaches(t *testing.T) {
	cache, mr := testCache(t)
	p := mockProvider()
	ctx := context.Background()

	first, err := cache.Get(ctx, p, "alto", "")
	require.NoError(t, err)
	assert.Equal(t, "RIFF", string(first[:4]))

	// Exactly one key landed in redis.
	assert.Len(t, mr.Keys(), 1)

	second, err := cache.Get(ctx, p, "alto", "")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPreviewKeysVaryByVoiceAndText(t *testing.T) {
	cache, mr := testCache(t)
	p := mockProvider()
	ctx := context.Background()

	_, err := cache.Get(ctx, p, "alto", "one")
	require.NoError(t, err)
	_, err = cache.Get(ctx, p, "alto", "two")
	require.NoError(t, err)
	_, err = cache.Get(ctx, p, "bass", "one")
	require.NoError(t, err)

	assert.Len(t, mr.Keys(), 3)
}

func TestPreviewWithoutRedis(t *testing.T) {
	cache := NewCache(nil, "", nil)
	wav, err := cache.Get(context.Background(), mockProvider(), "alto", "")
	require.NoError(t, err)
	assert.Equal(t, "RIFF", string(wav[:4]))
}

func TestPreviewRequiresVoice(t *testing.T) {
	cache, _ := testCache(t)
	_, err := cache.Get(context.Background(), mockProvider(), "", "")
	assert.Error(t, err)
}
