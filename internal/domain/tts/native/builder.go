// Package native shapes single-call multi-speaker requests for vendors that
// accept a whole dialogue at once. Builders are pure request shaping; they
// never call the network.
package native

import (
	"strings"
	"unicode/utf8"

	"voicelab-server-go/internal/domain/dialogue"
	platformerrors "voicelab-server-go/internal/platform/errors"
)

// Builder produces a vendor request payload for a whole dialogue, or refuses
// when the vendor's budget or shape constraints cannot be met. A refusal is
// the caller's signal to fall back to segmented synthesis.
type Builder interface {
	Vendor() string

	// CanUseNative is the cheap pre-check: coverage plus budget.
	CanUseNative(turns []dialogue.Turn, voiceMap map[string]string) bool

	// EstimateBytes and EstimateChars measure the formatted script text.
	EstimateBytes(turns []dialogue.Turn) int
	EstimateChars(turns []dialogue.Turn) int

	// BuildPayload fails fast on empty turns, incomplete voice coverage,
	// or a blown budget. It never truncates.
	BuildPayload(turns []dialogue.Turn, voiceMap map[string]string, stylePrompt string) ([]byte, error)
}

// Attempt is the outcome of trying a builder against a dialogue.
type Attempt struct {
	Vendor  string `json:"vendor"`
	Fits    bool   `json:"fits"`
	Payload []byte `json:"-"`
	// Reason explains a refusal; empty when Fits.
	Reason string `json:"reason,omitempty"`
}

// Try runs a builder and folds its failure modes into an Attempt.
func Try(b Builder, turns []dialogue.Turn, voiceMap map[string]string, stylePrompt string) Attempt {
	payload, err := b.BuildPayload(turns, voiceMap, stylePrompt)
	if err != nil {
		return Attempt{Vendor: b.Vendor(), Fits: false, Reason: err.Error()}
	}
	return Attempt{Vendor: b.Vendor(), Fits: true, Payload: payload}
}

// ForProvider returns the builder for a native-capable vendor.
func ForProvider(name string) (Builder, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "gemini":
		return &GeminiBuilder{}, true
	case "elevenlabs":
		return &ElevenLabsBuilder{}, true
	default:
		return nil, false
	}
}

// formatScript renders turns as "Speaker: text" lines, the shape vendors
// expect inside a single-call dialogue prompt.
func formatScript(turns []dialogue.Turn) string {
	var b strings.Builder
	for i, t := range turns {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(t.Speaker)
		b.WriteString(": ")
		b.WriteString(t.Text)
	}
	return b.String()
}

func scriptBytes(turns []dialogue.Turn) int {
	return len(formatScript(turns))
}

func scriptChars(turns []dialogue.Turn) int {
	return utf8.RuneCountInString(formatScript(turns))
}

func validateCoverage(op string, turns []dialogue.Turn, voiceMap map[string]string) error {
	if len(turns) == 0 {
		return platformerrors.New(platformerrors.KindValidation, op, "no turns to build")
	}
	var missing []string
	for _, speaker := range dialogue.DistinctSpeakers(turns) {
		if _, ok := voiceMap[speaker]; !ok {
			missing = append(missing, speaker)
		}
	}
	if len(missing) > 0 {
		return platformerrors.Newf(platformerrors.KindValidation, op,
			"missing voice assignments for speakers: %s", strings.Join(missing, ", "))
	}
	return nil
}
