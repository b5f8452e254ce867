package native

import (
	"github.com/bytedance/sonic"

	"voicelab-server-go/internal/domain/dialogue"
	platformerrors "voicelab-server-go/internal/platform/errors"
)

const (
	// ElevenLabsMaxScriptChars caps the formatted dialogue text per call.
	ElevenLabsMaxScriptChars = 5000
	elevenLabsModelID        = "eleven_v3"
)

// ElevenLabsBuilder shapes a text-to-dialogue request: one input entry per
// turn with its resolved voice id. The budget is counted in characters.
type ElevenLabsBuilder struct{}

type elevenLabsRequest struct {
	Inputs  []elevenLabsInput `json:"inputs"`
	ModelID string            `json:"model_id"`
}

type elevenLabsInput struct {
	Text    string `json:"text"`
	VoiceID string `json:"voice_id"`
}

func (b *ElevenLabsBuilder) Vendor() string { return "elevenlabs" }

func (b *ElevenLabsBuilder) EstimateBytes(turns []dialogue.Turn) int { return scriptBytes(turns) }

func (b *ElevenLabsBuilder) EstimateChars(turns []dialogue.Turn) int { return scriptChars(turns) }

func (b *ElevenLabsBuilder) CanUseNative(turns []dialogue.Turn, voiceMap map[string]string) bool {
	if validateCoverage("tts.native.elevenlabs", turns, voiceMap) != nil {
		return false
	}
	return b.EstimateChars(turns) <= ElevenLabsMaxScriptChars
}

func (b *ElevenLabsBuilder) BuildPayload(turns []dialogue.Turn, voiceMap map[string]string, stylePrompt string) ([]byte, error) {
	const op = "tts.native.elevenlabs"

	if err := validateCoverage(op, turns, voiceMap); err != nil {
		return nil, err
	}

	if n := b.EstimateChars(turns); n > ElevenLabsMaxScriptChars {
		return nil, platformerrors.Newf(platformerrors.KindCapability, op,
			"script is %d characters, limit is %d", n, ElevenLabsMaxScriptChars)
	}

	inputs := make([]elevenLabsInput, 0, len(turns))
	for _, t := range turns {
		text := t.Text
		if stylePrompt != "" {
			// The dialogue API takes delivery hints inline as audio tags.
			text = "[" + stylePrompt + "] " + text
		}
		inputs = append(inputs, elevenLabsInput{Text: text, VoiceID: voiceMap[t.Speaker]})
	}

	payload, err := sonic.Marshal(elevenLabsRequest{Inputs: inputs, ModelID: elevenLabsModelID})
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindPlatform, op, err)
	}
	return payload, nil
}
