package native

import (
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicelab-server-go/internal/domain/dialogue"
)

func twoSpeakerTurns() []dialogue.Turn {
	return []dialogue.Turn{
		{Speaker: "Host", Text: "welcome back", Index: 0},
		{Speaker: "Guest", Text: "glad to be here", Index: 1},
	}
}

func twoSpeakerVoices() map[string]string {
	return map[string]string{"Host": "Kore", "Guest": "Puck"}
}

func TestForProvider(t *testing.T) {
	b, ok := ForProvider("Gemini")
	require.True(t, ok)
	assert.Equal(t, "gemini", b.Vendor())

	b, ok = ForProvider("elevenlabs")
	require.True(t, ok)
	assert.Equal(t, "elevenlabs", b.Vendor())

	_, ok = ForProvider("edge")
	assert.False(t, ok)
}

func TestGeminiBuildPayload(t *testing.T) {
	b := &GeminiBuilder{}
	payload, err := b.BuildPayload(twoSpeakerTurns(), twoSpeakerVoices(), "read warmly")
	require.NoError(t, err)

	var req geminiRequest
	require.NoError(t, sonic.Unmarshal(payload, &req))

	require.Len(t, req.Contents, 1)
	text := req.Contents[0].Parts[0].Text
	assert.Contains(t, text, "read warmly")
	assert.Contains(t, text, "Host: welcome back")
	assert.Contains(t, text, "Guest: glad to be here")

	configs := req.GenerationConfig.SpeechConfig.MultiSpeakerVoiceConfig.SpeakerVoiceConfigs
	require.Len(t, configs, 2)
	assert.Equal(t, "Host", configs[0].Speaker)
	assert.Equal(t, "Kore", configs[0].VoiceConfig.PrebuiltVoiceConfig.VoiceName)
	assert.Equal(t, []string{"AUDIO"}, req.GenerationConfig.ResponseModalities)
}

func TestGeminiByteBudget(t *testing.T) {
	b := &GeminiBuilder{}

	big := []dialogue.Turn{{Speaker: "A", Text: strings.Repeat("中", 1400), Index: 0}}
	voices := map[string]string{"A": "Kore"}

	// 1400 CJK runes are 4200 bytes of text, over the 4000-byte cap.
	assert.Greater(t, b.EstimateBytes(big), GeminiMaxScriptBytes)
	assert.False(t, b.CanUseNative(big, voices))

	_, err := b.BuildPayload(big, voices, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "4000")
}

func TestGeminiSoftLimit(t *testing.T) {
	b := &GeminiBuilder{}
	voices := map[string]string{"A": "Kore"}

	warm := []dialogue.Turn{{Speaker: "A", Text: strings.Repeat("中", 1000), Index: 0}}
	assert.True(t, b.OverSoftLimit(warm))
	assert.True(t, b.CanUseNative(warm, voices))

	small := []dialogue.Turn{{Speaker: "A", Text: "hi", Index: 0}}
	assert.False(t, b.OverSoftLimit(small))
}

func TestGeminiSpeakerLimit(t *testing.T) {
	b := &GeminiBuilder{}
	turns := []dialogue.Turn{
		{Speaker: "A", Text: "one", Index: 0},
		{Speaker: "B", Text: "two", Index: 1},
		{Speaker: "C", Text: "three", Index: 2},
	}
	voices := map[string]string{"A": "v1", "B": "v2", "C": "v3"}

	assert.False(t, b.CanUseNative(turns, voices))
	_, err := b.BuildPayload(turns, voices, "")
	require.Error(t, err)
}

func TestElevenLabsBuildPayload(t *testing.T) {
	b := &ElevenLabsBuilder{}
	payload, err := b.BuildPayload(twoSpeakerTurns(), map[string]string{"Host": "voice-1", "Guest": "voice-2"}, "")
	require.NoError(t, err)

	var req elevenLabsRequest
	require.NoError(t, sonic.Unmarshal(payload, &req))

	require.Len(t, req.Inputs, 2)
	assert.Equal(t, elevenLabsInput{Text: "welcome back", VoiceID: "voice-1"}, req.Inputs[0])
	assert.Equal(t, "eleven_v3", req.ModelID)
}

func TestElevenLabsCharBudget(t *testing.T) {
	b := &ElevenLabsBuilder{}
	big := []dialogue.Turn{{Speaker: "A", Text: strings.Repeat("x", 5200), Index: 0}}
	voices := map[string]string{"A": "v"}

	assert.False(t, b.CanUseNative(big, voices))
	_, err := b.BuildPayload(big, voices, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "5000")
}

func TestBuildersFailFastOnBadInput(t *testing.T) {
	for _, name := range []string{"gemini", "elevenlabs"} {
		b, ok := ForProvider(name)
		require.True(t, ok)

		_, err := b.BuildPayload(nil, map[string]string{}, "")
		assert.Error(t, err, name)

		_, err = b.BuildPayload(twoSpeakerTurns(), map[string]string{"Host": "v"}, "")
		require.Error(t, err, name)
		assert.Contains(t, err.Error(), "Guest")

		assert.False(t, b.CanUseNative(twoSpeakerTurns(), map[string]string{"Host": "v"}))
	}
}

func TestTry(t *testing.T) {
	b := &GeminiBuilder{}

	ok := Try(b, twoSpeakerTurns(), twoSpeakerVoices(), "")
	assert.True(t, ok.Fits)
	assert.NotEmpty(t, ok.Payload)
	assert.Equal(t, "gemini", ok.Vendor)

	bad := Try(b, nil, nil, "")
	assert.False(t, bad.Fits)
	assert.NotEmpty(t, bad.Reason)
}
