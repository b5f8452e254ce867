// Package usecase orchestrates dialogue and long-text synthesis: validation,
// mode selection against the capability table, then delegation to the merge
// layer.
package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"voicelab-server-go/internal/domain/dialogue"
	"voicelab-server-go/internal/domain/tts"
	"voicelab-server-go/internal/domain/tts/merge"
	"voicelab-server-go/internal/domain/tts/native"
	platformerrors "voicelab-server-go/internal/platform/errors"
	"voicelab-server-go/internal/platform/logging"
)

// VoiceAssignment maps a script speaker to a vendor voice.
type VoiceAssignment struct {
	Speaker     string `json:"speaker"`
	VoiceID     string `json:"voice_id"`
	DisplayName string `json:"display_name,omitempty"`
}

// MultiRoleRequest is one dialogue synthesis call.
type MultiRoleRequest struct {
	Provider         string
	Turns            []dialogue.Turn
	VoiceAssignments []VoiceAssignment
	Language         string
	OutputFormat     string
	GapMS            int
	CrossfadeMS      int
	StylePrompt      string
	StyleMap         map[string]string
}

// MultiRoleResult wraps the merged track with mode bookkeeping. When the
// vendor is native-capable the builder outcome rides along even though
// rendering currently always goes through the segmented path.
type MultiRoleResult struct {
	merge.Result

	Provider      string          `json:"provider"`
	Mode          string          `json:"mode"`
	LatencyMS     float64         `json:"latency_ms"`
	NativeAttempt *native.Attempt `json:"native_attempt,omitempty"`
}

const (
	ModeSegmented = "segmented"
)

// MultiRole validates dialogue requests and drives the merger.
type MultiRole struct {
	providers map[string]tts.Provider
	delays    map[string]int
	logger    *logging.Logger
}

// NewMultiRole wires the use case with instantiated vendor adapters and
// their per-vendor pacing delays, keyed by provider name.
func NewMultiRole(providers map[string]tts.Provider, delays map[string]int, logger *logging.Logger) *MultiRole {
	return &MultiRole{providers: providers, delays: delays, logger: logger}
}

// Execute runs the full validation sequence, then renders the dialogue.
// Native-capable vendors get a builder attempt first; segmented rendering is
// the delivery path either way until single-call synthesis is wired to the
// vendor clients.
func (u *MultiRole) Execute(ctx context.Context, req MultiRoleRequest) (*MultiRoleResult, error) {
	const op = "tts.multirole"

	start := time.Now()

	capability, err := tts.GetCapability(req.Provider)
	if err != nil {
		return nil, err
	}
	if capability.Support == tts.SupportUnsupported {
		return nil, platformerrors.Newf(platformerrors.KindCapability, op,
			"provider %q does not support multi-role synthesis", req.Provider)
	}

	voiceMap := make(map[string]string, len(req.VoiceAssignments))
	for _, a := range req.VoiceAssignments {
		voiceMap[a.Speaker] = a.VoiceID
	}

	if missing := missingSpeakers(req.Turns, voiceMap); len(missing) > 0 {
		return nil, platformerrors.Newf(platformerrors.KindValidation, op,
			"missing voice assignments for speakers: %s", strings.Join(missing, ", "))
	}

	if len(req.Turns) == 0 {
		return nil, platformerrors.New(platformerrors.KindValidation, op, "turns must not be empty")
	}

	speakers := dialogue.DistinctSpeakers(req.Turns)
	if capability.MaxSpeakers > 0 && len(speakers) > capability.MaxSpeakers {
		return nil, platformerrors.Newf(platformerrors.KindValidation, op,
			"%d distinct speakers exceed provider limit of %d", len(speakers), capability.MaxSpeakers)
	}

	var attempt *native.Attempt
	if capability.Support == tts.SupportNative {
		if builder, ok := native.ForProvider(req.Provider); ok && builder.CanUseNative(req.Turns, voiceMap) {
			a := native.Try(builder, req.Turns, voiceMap, req.StylePrompt)
			attempt = &a
			if u.logger != nil {
				u.logger.InfoTag("TTS", "native payload for %s fits (%d bytes), rendering segmented",
					req.Provider, len(a.Payload))
			}
		}
	}

	provider, ok := u.providers[strings.ToLower(req.Provider)]
	if !ok {
		return nil, platformerrors.Newf(platformerrors.KindPlatform, op,
			"provider %q has no configured adapter", req.Provider)
	}

	merged, err := merge.NewMerger(provider, u.delays[strings.ToLower(req.Provider)], u.logger).
		SynthesizeAndMerge(ctx, req.Turns, voiceMap, merge.Options{
			Language:     req.Language,
			OutputFormat: req.OutputFormat,
			GapMS:        req.GapMS,
			CrossfadeMS:  req.CrossfadeMS,
			StyleMap:     req.StyleMap,
		})
	if err != nil {
		return nil, err
	}

	return &MultiRoleResult{
		Result:        *merged,
		Provider:      capability.ProviderName,
		Mode:          ModeSegmented,
		LatencyMS:     float64(time.Since(start).Milliseconds()),
		NativeAttempt: attempt,
	}, nil
}

// missingSpeakers returns the sorted set of turn speakers without a voice.
func missingSpeakers(turns []dialogue.Turn, voiceMap map[string]string) []string {
	var missing []string
	for _, speaker := range dialogue.DistinctSpeakers(turns) {
		if _, ok := voiceMap[speaker]; !ok {
			missing = append(missing, speaker)
		}
	}
	sort.Strings(missing)
	return missing
}
