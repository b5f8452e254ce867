package stt

import (
	"bytes"
	"context"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"voicelab-server-go/internal/platform/config"
	platformerrors "voicelab-server-go/internal/platform/errors"
	"voicelab-server-go/internal/platform/logging"
)

func init() {
	RegisterFactory("openai", func(cfg config.STTConfig, logger *logging.Logger) (Transcriber, error) {
		return NewWhisper(cfg, logger)
	})
	RegisterFactory("mock", func(cfg config.STTConfig, logger *logging.Logger) (Transcriber, error) {
		return &MockTranscriber{}, nil
	})
}

// Whisper transcribes through the OpenAI audio endpoint.
type Whisper struct {
	client *goopenai.Client
	model  string
	logger *logging.Logger
}

func NewWhisper(cfg config.STTConfig, logger *logging.Logger) (*Whisper, error) {
	if cfg.APIKey == "" {
		return nil, platformerrors.New(platformerrors.KindBootstrap, "stt.whisper",
			"api_key is required")
	}

	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = goopenai.Whisper1
	}

	return &Whisper{
		client: goopenai.NewClientWithConfig(clientCfg),
		model:  model,
		logger: logger,
	}, nil
}

func (w *Whisper) Name() string { return "openai" }

func (w *Whisper) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	const op = "stt.whisper"

	if len(audio) == 0 {
		return "", platformerrors.New(platformerrors.KindValidation, op, "audio payload is empty")
	}
	if filename == "" {
		filename = "audio.wav"
	}

	resp, err := w.client.CreateTranscription(ctx, goopenai.AudioRequest{
		Model:    w.model,
		FilePath: filename,
		Reader:   bytes.NewReader(audio),
	})
	if err != nil {
		return "", platformerrors.Wrap(platformerrors.KindVendor, op, err)
	}

	if w.logger != nil {
		w.logger.DebugTag("STT", "transcribed %d audio bytes to %d chars", len(audio), len(resp.Text))
	}
	return resp.Text, nil
}

// MockTranscriber echoes a canned transcript; tests inject the expectation.
type MockTranscriber struct {
	Transcript string
}

func (m *MockTranscriber) Name() string { return "mock" }

func (m *MockTranscriber) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if len(audio) == 0 {
		return "", platformerrors.New(platformerrors.KindValidation, "stt.mock", "audio payload is empty")
	}
	if m.Transcript != "" {
		return m.Transcript, nil
	}
	return strings.TrimSuffix(filename, ".wav"), nil
}
