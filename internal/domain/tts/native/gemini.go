package native

import (
	"github.com/bytedance/sonic"

	"voicelab-server-go/internal/domain/dialogue"
	platformerrors "voicelab-server-go/internal/platform/errors"
)

const (
	// GeminiMaxScriptBytes is the hard cap on UTF-8 script bytes per call.
	GeminiMaxScriptBytes = 4000
	// GeminiSoftWarnBytes is where output quality starts degrading.
	GeminiSoftWarnBytes = 2400
	// geminiMaxSpeakers mirrors the vendor's two-voice dialogue limit.
	geminiMaxSpeakers = 2
)

// GeminiBuilder shapes a generateContent request with a multi-speaker voice
// config. The budget is counted in UTF-8 bytes of the formatted script.
type GeminiBuilder struct{}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	ResponseModalities []string         `json:"responseModalities"`
	SpeechConfig       geminiSpeechConf `json:"speechConfig"`
}

type geminiSpeechConf struct {
	MultiSpeakerVoiceConfig geminiMultiSpeaker `json:"multiSpeakerVoiceConfig"`
}

type geminiMultiSpeaker struct {
	SpeakerVoiceConfigs []geminiSpeakerVoice `json:"speakerVoiceConfigs"`
}

type geminiSpeakerVoice struct {
	Speaker     string            `json:"speaker"`
	VoiceConfig geminiVoiceConfig `json:"voiceConfig"`
}

type geminiVoiceConfig struct {
	PrebuiltVoiceConfig geminiPrebuilt `json:"prebuiltVoiceConfig"`
}

type geminiPrebuilt struct {
	VoiceName string `json:"voiceName"`
}

func (b *GeminiBuilder) Vendor() string { return "gemini" }

func (b *GeminiBuilder) EstimateBytes(turns []dialogue.Turn) int { return scriptBytes(turns) }

func (b *GeminiBuilder) EstimateChars(turns []dialogue.Turn) int { return scriptChars(turns) }

func (b *GeminiBuilder) CanUseNative(turns []dialogue.Turn, voiceMap map[string]string) bool {
	if validateCoverage("tts.native.gemini", turns, voiceMap) != nil {
		return false
	}
	if len(dialogue.DistinctSpeakers(turns)) > geminiMaxSpeakers {
		return false
	}
	return b.EstimateBytes(turns) <= GeminiMaxScriptBytes
}

func (b *GeminiBuilder) BuildPayload(turns []dialogue.Turn, voiceMap map[string]string, stylePrompt string) ([]byte, error) {
	const op = "tts.native.gemini"

	if err := validateCoverage(op, turns, voiceMap); err != nil {
		return nil, err
	}

	speakers := dialogue.DistinctSpeakers(turns)
	if len(speakers) > geminiMaxSpeakers {
		return nil, platformerrors.Newf(platformerrors.KindCapability, op,
			"%d speakers exceed the vendor dialogue limit of %d", len(speakers), geminiMaxSpeakers)
	}

	script := formatScript(turns)
	if len(script) > GeminiMaxScriptBytes {
		return nil, platformerrors.Newf(platformerrors.KindCapability, op,
			"script is %d UTF-8 bytes, limit is %d", len(script), GeminiMaxScriptBytes)
	}

	prompt := script
	if stylePrompt != "" {
		prompt = stylePrompt + "\n\n" + script
	}

	voiceConfigs := make([]geminiSpeakerVoice, 0, len(speakers))
	for _, speaker := range speakers {
		voiceConfigs = append(voiceConfigs, geminiSpeakerVoice{
			Speaker: speaker,
			VoiceConfig: geminiVoiceConfig{
				PrebuiltVoiceConfig: geminiPrebuilt{VoiceName: voiceMap[speaker]},
			},
		})
	}

	payload, err := sonic.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: geminiSpeechConf{
				MultiSpeakerVoiceConfig: geminiMultiSpeaker{SpeakerVoiceConfigs: voiceConfigs},
			},
		},
	})
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindPlatform, op, err)
	}
	return payload, nil
}

// OverSoftLimit reports whether the script passed the hard check but sits in
// the degraded-quality zone.
func (b *GeminiBuilder) OverSoftLimit(turns []dialogue.Turn) bool {
	n := b.EstimateBytes(turns)
	return n > GeminiSoftWarnBytes && n <= GeminiMaxScriptBytes
}
