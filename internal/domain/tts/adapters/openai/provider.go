// Package openai adapts the OpenAI speech endpoint. Requesting raw PCM
// avoids a decode step; responses are 24kHz 16-bit mono.
package openai

import (
	"context"
	"io"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"voicelab-server-go/internal/domain/tts"
	"voicelab-server-go/internal/domain/tts/adapters/codec"
	"voicelab-server-go/internal/platform/config"
	platformerrors "voicelab-server-go/internal/platform/errors"
	"voicelab-server-go/internal/platform/logging"
)

func init() {
	tts.RegisterFactory("openai", func(cfg config.TTSConfig, logger *logging.Logger) (tts.Provider, error) {
		return New(cfg, logger)
	})
}

const pcmSampleRate = 24000

type Provider struct {
	client *goopenai.Client
	voice  string
	logger *logging.Logger
}

func New(cfg config.TTSConfig, logger *logging.Logger) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, platformerrors.New(platformerrors.KindBootstrap, "tts.openai",
			"api_key is required")
	}

	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	voice := cfg.Voice
	if voice == "" {
		voice = string(goopenai.VoiceAlloy)
	}

	return &Provider{
		client: goopenai.NewClientWithConfig(clientCfg),
		voice:  voice,
		logger: logger,
	}, nil
}

func (p *Provider) Name() string { return "openai" }

func (p *Provider) Synthesize(ctx context.Context, text string, options tts.SynthesisOptions) (*tts.SynthesisResult, error) {
	const op = "tts.openai"

	if strings.TrimSpace(text) == "" {
		return nil, platformerrors.New(platformerrors.KindValidation, op, "text cannot be empty")
	}

	voice := options.Voice
	if voice == "" {
		voice = p.voice
	}
	speed := float64(options.Speed)
	if speed <= 0 {
		speed = 1.0
	}

	resp, err := p.client.CreateSpeech(ctx, goopenai.CreateSpeechRequest{
		Model:          goopenai.TTSModel1,
		Input:          text,
		Voice:          goopenai.SpeechVoice(voice),
		ResponseFormat: goopenai.SpeechResponseFormatPcm,
		Speed:          speed,
	})
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindVendor, op, err)
	}
	defer resp.Close()

	pcm, err := io.ReadAll(resp)
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindVendor, op, err)
	}

	if p.logger != nil {
		p.logger.DebugTag("TTS", "openai rendered %d pcm bytes for %d input bytes", len(pcm), len(text))
	}

	return &tts.SynthesisResult{
		PCM:         pcm,
		SampleRate:  pcmSampleRate,
		Channels:    1,
		DurationMS:  codec.DurationMS(len(pcm), pcmSampleRate, 1),
		ContentType: "audio/pcm",
	}, nil
}

func (p *Provider) AvailableVoices() []tts.Voice {
	return []tts.Voice{
		{ID: "alloy", Name: "Alloy", Language: "en-US"},
		{ID: "echo", Name: "Echo", Language: "en-US"},
		{ID: "fable", Name: "Fable", Language: "en-US"},
		{ID: "onyx", Name: "Onyx", Language: "en-US"},
		{ID: "nova", Name: "Nova", Language: "en-US"},
		{ID: "shimmer", Name: "Shimmer", Language: "en-US"},
	}
}
