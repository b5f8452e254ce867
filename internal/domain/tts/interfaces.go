// Package tts defines the vendor-neutral synthesis contract plus the static
// multi-role capability table and per-vendor text limits.
package tts

import "context"

// SynthesisOptions carries per-call tuning for one utterance.
type SynthesisOptions struct {
	// Voice is the vendor-specific voice identifier.
	Voice string `json:"voice,omitempty"`

	// Language code, e.g. "zh-CN" or "en-US".
	Language string `json:"language,omitempty"`

	// Style is a vendor-specific delivery hint (emotion, speaking style).
	Style string `json:"style,omitempty"`

	// Speed multiplier, 1.0 when zero.
	Speed float32 `json:"speed,omitempty"`

	// SampleRate requests an output rate; providers may ignore it.
	SampleRate int `json:"sample_rate,omitempty"`
}

// SynthesisResult is one rendered utterance, normalized to 16-bit
// little-endian PCM so the merge layer never touches codec details.
type SynthesisResult struct {
	PCM         []byte  `json:"-"`
	SampleRate  int     `json:"sample_rate"`
	Channels    int     `json:"channels"`
	DurationMS  float64 `json:"duration_ms"`
	ContentType string  `json:"content_type"`
}

// Voice describes one selectable voice of a provider.
type Voice struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Language string `json:"language"`
	Gender   string `json:"gender,omitempty"`
}

// Provider is the single-utterance synthesis abstraction every vendor
// adapter implements. Synthesize is a blocking call; adapters must honor
// context cancellation.
type Provider interface {
	Name() string

	Synthesize(ctx context.Context, text string, options SynthesisOptions) (*SynthesisResult, error)

	AvailableVoices() []Voice
}

// Closer is implemented by adapters holding connections worth releasing.
type Closer interface {
	Close() error
}
