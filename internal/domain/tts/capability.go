package tts

import (
	"sort"
	"strings"

	platformerrors "voicelab-server-go/internal/platform/errors"
)

// SupportType classifies how a vendor can render multi-role dialogue.
type SupportType string

const (
	// SupportNative means the vendor accepts a whole multi-speaker script
	// in one API call.
	SupportNative SupportType = "native"
	// SupportSegmented means dialogue is rendered turn by turn and merged
	// client-side.
	SupportSegmented SupportType = "segmented"
	// SupportUnsupported means the vendor cannot serve multi-role requests.
	SupportUnsupported SupportType = "unsupported"
)

// Capability is the static multi-role profile of one vendor.
type Capability struct {
	ProviderName     string      `json:"provider_name"`
	Support          SupportType `json:"support_type"`
	MaxSpeakers      int         `json:"max_speakers"`
	CharacterLimit   int         `json:"character_limit"`
	AdvancedFeatures []string    `json:"advanced_features,omitempty"`
	Notes            string      `json:"notes,omitempty"`
}

// capabilityTable is seeded once and never mutated. Adding a vendor is a
// table entry, not code.
var capabilityTable = map[string]Capability{
	"gemini": {
		ProviderName:     "gemini",
		Support:          SupportNative,
		MaxSpeakers:      2,
		CharacterLimit:   4000,
		AdvancedFeatures: []string{"multi-speaker", "style-prompt"},
		Notes:            "single-call dialogue capped at 4000 UTF-8 bytes of script text",
	},
	"elevenlabs": {
		ProviderName:     "elevenlabs",
		Support:          SupportNative,
		MaxSpeakers:      6,
		CharacterLimit:   5000,
		AdvancedFeatures: []string{"dialogue-api", "audio-tags"},
	},
	"openai": {
		ProviderName:   "openai",
		Support:        SupportSegmented,
		MaxSpeakers:    6,
		CharacterLimit: 4096,
	},
	"edge": {
		ProviderName:   "edge",
		Support:        SupportSegmented,
		MaxSpeakers:    6,
		CharacterLimit: 500,
		Notes:          "aggressive rate limiting, pace requests",
	},
	"mock": {
		ProviderName:   "mock",
		Support:        SupportSegmented,
		MaxSpeakers:    6,
		CharacterLimit: 1000,
		Notes:          "deterministic synthetic audio for tests and local runs",
	},
	"webspeech": {
		ProviderName: "webspeech",
		Support:      SupportUnsupported,
		Notes:        "browser-only API, cannot synthesize server-side",
	},
}

// GetCapability looks up a vendor profile by name, case-insensitively.
func GetCapability(providerName string) (Capability, error) {
	cap, ok := capabilityTable[strings.ToLower(strings.TrimSpace(providerName))]
	if !ok {
		return Capability{}, platformerrors.Newf(platformerrors.KindCapability, "tts.capability",
			"provider %q not found in capability registry", providerName)
	}
	return cap, nil
}

// ListCapabilities returns every vendor profile, sorted by name.
func ListCapabilities() []Capability {
	out := make([]Capability, 0, len(capabilityTable))
	for _, cap := range capabilityTable {
		out = append(out, cap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProviderName < out[j].ProviderName })
	return out
}

// ListNativeProviders returns the names of vendors with single-call dialogue
// support, sorted.
func ListNativeProviders() []string {
	return listBySupport(SupportNative)
}

// ListSegmentedProviders returns the names of vendors rendered turn by turn,
// sorted.
func ListSegmentedProviders() []string {
	return listBySupport(SupportSegmented)
}

func listBySupport(s SupportType) []string {
	var out []string
	for name, cap := range capabilityTable {
		if cap.Support == s {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
