// Package stt defines the transcription contract used by the accuracy
// comparison endpoint.
package stt

import (
	"context"

	"voicelab-server-go/internal/platform/config"
	platformerrors "voicelab-server-go/internal/platform/errors"
	"voicelab-server-go/internal/platform/logging"
)

// Transcriber turns an audio payload into text.
type Transcriber interface {
	Name() string

	// Transcribe accepts a complete audio file payload. The filename hint
	// carries the extension some vendor APIs require.
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

// Factory builds a Transcriber from its configuration block.
type Factory func(cfg config.STTConfig, logger *logging.Logger) (Transcriber, error)

var factories = map[string]Factory{}

// RegisterFactory adds a transcriber constructor. Panics on duplicates.
func RegisterFactory(name string, factory Factory) {
	if _, exists := factories[name]; exists {
		panic("stt: factory already registered: " + name)
	}
	factories[name] = factory
}

// CreateTranscriber instantiates a transcriber by provider type.
func CreateTranscriber(name string, cfg config.STTConfig, logger *logging.Logger) (Transcriber, error) {
	factory, ok := factories[name]
	if !ok {
		return nil, platformerrors.Newf(platformerrors.KindPlatform, "stt.registry",
			"no factory registered for transcriber type %q", name)
	}
	return factory(cfg, logger)
}
