// Package preview caches short per-voice sample clips in redis so the
// frontend voice picker does not re-synthesize the same line on every open.
package preview

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"voicelab-server-go/internal/domain/tts"
	"voicelab-server-go/internal/domain/tts/merge"
	platformerrors "voicelab-server-go/internal/platform/errors"
	"voicelab-server-go/internal/platform/logging"
)

const (
	// DefaultSampleText is rendered when the caller does not provide one.
	DefaultSampleText = "Hello, this is a short voice preview."
	cacheTTL          = 24 * time.Hour
)

// Cache renders voice previews through a provider and memoizes the wav
// output in redis. A nil redis client degrades to synthesize-every-time.
type Cache struct {
	rdb    *redis.Client
	prefix string
	logger *logging.Logger
}

func NewCache(rdb *redis.Client, prefix string, logger *logging.Logger) *Cache {
	if prefix == "" {
		prefix = "voicelab"
	}
	return &Cache{rdb: rdb, prefix: prefix, logger: logger}
}

// Get returns a wav preview clip for the voice, from cache when possible.
func (c *Cache) Get(ctx context.Context, provider tts.Provider, voice, text string) ([]byte, error) {
	const op = "preview.get"

	if voice == "" {
		return nil, platformerrors.New(platformerrors.KindValidation, op, "voice must not be empty")
	}
	if text == "" {
		text = DefaultSampleText
	}

	key := c.key(provider.Name(), voice, text)
	if c.rdb != nil {
		cached, err := c.rdb.Get(ctx, key).Bytes()
		if err == nil {
			if c.logger != nil {
				c.logger.DebugTag("TTS", "preview cache hit for %s/%s", provider.Name(), voice)
			}
			return cached, nil
		}
		if err != redis.Nil && c.logger != nil {
			c.logger.WarnTag("TTS", "preview cache read failed: %v", err)
		}
	}

	res, err := provider.Synthesize(ctx, text, tts.SynthesisOptions{Voice: voice})
	if err != nil {
		return nil, err
	}
	wav := merge.EncodePCMAsWAV(res.PCM, res.SampleRate, res.Channels)

	if c.rdb != nil {
		if err := c.rdb.Set(ctx, key, wav, cacheTTL).Err(); err != nil && c.logger != nil {
			c.logger.WarnTag("TTS", "preview cache write failed: %v", err)
		}
	}
	return wav, nil
}

func (c *Cache) key(provider, voice, text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%s:preview:%s:%s:%s", c.prefix, provider, voice, hex.EncodeToString(sum[:8]))
}
