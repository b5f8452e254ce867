// Package edge adapts the Microsoft Edge speech service. Audio arrives as
// mp3 and is decoded to PCM before it leaves this package.
package edge

import (
	"context"
	"strings"

	"github.com/wujunwei928/edge-tts-go/edge_tts"

	"voicelab-server-go/internal/domain/tts"
	"voicelab-server-go/internal/domain/tts/adapters/codec"
	"voicelab-server-go/internal/platform/config"
	platformerrors "voicelab-server-go/internal/platform/errors"
	"voicelab-server-go/internal/platform/logging"
)

func init() {
	tts.RegisterFactory("edge", func(cfg config.TTSConfig, logger *logging.Logger) (tts.Provider, error) {
		return New(cfg, logger), nil
	})
}

type Provider struct {
	voice  string
	logger *logging.Logger
}

func New(cfg config.TTSConfig, logger *logging.Logger) *Provider {
	voice := cfg.Voice
	if voice == "" {
		voice = "zh-CN-XiaoxiaoNeural"
	}
	return &Provider{voice: voice, logger: logger}
}

func (p *Provider) Name() string { return "edge" }

func (p *Provider) Synthesize(ctx context.Context, text string, options tts.SynthesisOptions) (*tts.SynthesisResult, error) {
	const op = "tts.edge"

	if strings.TrimSpace(text) == "" {
		return nil, platformerrors.New(platformerrors.KindValidation, op, "text cannot be empty")
	}
	if err := ctx.Err(); err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindVendor, op, err)
	}

	voice := options.Voice
	if voice == "" {
		voice = p.voice
	}

	communicate, err := edge_tts.NewCommunicate(text, edge_tts.SetVoice(voice))
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindVendor, op, err)
	}

	mp3Data, err := communicate.Stream()
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindVendor, op, err)
	}

	pcm, sampleRate, channels, err := codec.DecodeMP3(mp3Data)
	if err != nil {
		return nil, err
	}

	if p.logger != nil {
		p.logger.DebugTag("TTS", "edge rendered %d bytes mp3 -> %d bytes pcm @%dHz",
			len(mp3Data), len(pcm), sampleRate)
	}

	return &tts.SynthesisResult{
		PCM:         pcm,
		SampleRate:  sampleRate,
		Channels:    channels,
		DurationMS:  codec.DurationMS(len(pcm), sampleRate, channels),
		ContentType: "audio/pcm",
	}, nil
}

func (p *Provider) AvailableVoices() []tts.Voice {
	return []tts.Voice{
		{ID: "zh-CN-XiaoxiaoNeural", Name: "晓晓", Language: "zh-CN", Gender: "Female"},
		{ID: "zh-CN-YunyangNeural", Name: "云扬", Language: "zh-CN", Gender: "Male"},
		{ID: "zh-CN-XiaoyiNeural", Name: "晓伊", Language: "zh-CN", Gender: "Female"},
		{ID: "en-US-AriaNeural", Name: "Aria", Language: "en-US", Gender: "Female"},
		{ID: "en-US-GuyNeural", Name: "Guy", Language: "en-US", Gender: "Male"},
	}
}
