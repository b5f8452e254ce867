// Package mock provides a deterministic offline synthesis adapter used in
// tests and credential-free local runs.
package mock

import (
	"context"
	"encoding/binary"
	"math"
	"strings"
	"unicode/utf8"

	"voicelab-server-go/internal/domain/tts"
	"voicelab-server-go/internal/domain/tts/adapters/codec"
	"voicelab-server-go/internal/platform/config"
	platformerrors "voicelab-server-go/internal/platform/errors"
	"voicelab-server-go/internal/platform/logging"
)

func init() {
	tts.RegisterFactory("mock", func(cfg config.TTSConfig, logger *logging.Logger) (tts.Provider, error) {
		return New(cfg, logger), nil
	})
}

// msPerChar fixes the synthetic speaking rate so durations are predictable
// in tests.
const msPerChar = 80.0

type Provider struct {
	voice      string
	sampleRate int
	logger     *logging.Logger
}

func New(cfg config.TTSConfig, logger *logging.Logger) *Provider {
	sampleRate := cfg.SampleRate
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	voice := cfg.Voice
	if voice == "" {
		voice = "narrator"
	}
	return &Provider{voice: voice, sampleRate: sampleRate, logger: logger}
}

func (p *Provider) Name() string { return "mock" }

// Synthesize renders a quiet sine tone whose pitch is derived from the voice
// name and whose length follows the character count. Same input, same bytes.
func (p *Provider) Synthesize(ctx context.Context, text string, options tts.SynthesisOptions) (*tts.SynthesisResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, platformerrors.New(platformerrors.KindValidation, "tts.mock",
			"text cannot be empty")
	}
	if err := ctx.Err(); err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindVendor, "tts.mock", err)
	}

	voice := options.Voice
	if voice == "" {
		voice = p.voice
	}

	chars := utf8.RuneCountInString(text)
	durationMS := float64(chars) * msPerChar
	n := codec.PCMLenForDuration(durationMS, p.sampleRate, 1)

	freq := toneFor(voice)
	pcm := make([]byte, n)
	for i := 0; i < n/2; i++ {
		t := float64(i) / float64(p.sampleRate)
		sample := int16(3000 * math.Sin(2*math.Pi*freq*t))
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(sample))
	}

	if p.logger != nil {
		p.logger.DebugTag("TTS", "mock synthesized %d chars as %.0fms of tone", chars, durationMS)
	}

	return &tts.SynthesisResult{
		PCM:         pcm,
		SampleRate:  p.sampleRate,
		Channels:    1,
		DurationMS:  codec.DurationMS(len(pcm), p.sampleRate, 1),
		ContentType: "audio/pcm",
	}, nil
}

func (p *Provider) AvailableVoices() []tts.Voice {
	return []tts.Voice{
		{ID: "narrator", Name: "Narrator", Language: "en-US"},
		{ID: "alto", Name: "Alto", Language: "en-US", Gender: "Female"},
		{ID: "bass", Name: "Bass", Language: "en-US", Gender: "Male"},
	}
}

// toneFor hashes the voice name into a frequency between 220 and 880 Hz so
// different speakers are audibly distinct in merged output.
func toneFor(voice string) float64 {
	var h uint32
	for _, r := range voice {
		h = h*31 + uint32(r)
	}
	return 220.0 + float64(h%661)
}
