package usecase

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicelab-server-go/internal/domain/dialogue"
	"voicelab-server-go/internal/domain/tts"
	"voicelab-server-go/internal/domain/tts/adapters/mock"
	"voicelab-server-go/internal/domain/tts/merge"
	"voicelab-server-go/internal/platform/config"
	platformerrors "voicelab-server-go/internal/platform/errors"
)

func mockProviders(t *testing.T) map[string]tts.Provider {
	t.Helper()
	p := mock.New(config.TTSConfig{Type: "mock", Voice: "narrator", SampleRate: 16000}, nil)
	// The mock adapter stands in for every capability entry under test.
	return map[string]tts.Provider{
		"mock":       p,
		"edge":       p,
		"gemini":     p,
		"elevenlabs": p,
	}
}

func basicRequest() MultiRoleRequest {
	return MultiRoleRequest{
		Provider: "mock",
		Turns: []dialogue.Turn{
			{Speaker: "A", Text: "hello", Index: 0},
			{Speaker: "B", Text: "hi there", Index: 1},
		},
		VoiceAssignments: []VoiceAssignment{
			{Speaker: "A", VoiceID: "alto"},
			{Speaker: "B", VoiceID: "bass"},
		},
		OutputFormat: merge.FormatWAV,
		GapMS:        100,
	}
}

func TestMultiRoleHappyPath(t *testing.T) {
	u := NewMultiRole(mockProviders(t), nil, nil)

	res, err := u.Execute(context.Background(), basicRequest())
	require.NoError(t, err)

	assert.Equal(t, "mock", res.Provider)
	assert.Equal(t, ModeSegmented, res.Mode)
	assert.Nil(t, res.NativeAttempt)
	assert.Equal(t, 2, res.SegmentCount)
	assert.Equal(t, "audio/wav", res.ContentType)
	require.Len(t, res.Timings, 2)
	assert.Equal(t, "A", res.Timings[0].Speaker)
}

func TestMultiRoleUnknownProvider(t *testing.T) {
	u := NewMultiRole(mockProviders(t), nil, nil)
	req := basicRequest()
	req.Provider = "nope"

	_, err := u.Execute(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found in capability registry")
}

func TestMultiRoleUnsupportedProvider(t *testing.T) {
	u := NewMultiRole(mockProviders(t), nil, nil)
	req := basicRequest()
	req.Provider = "webspeech"

	_, err := u.Execute(context.Background(), req)
	require.Error(t, err)
	assert.True(t, platformerrors.IsKind(err, platformerrors.KindCapability))
	assert.Contains(t, err.Error(), "does not support multi-role")
}

func TestMultiRoleMissingSpeakerSet(t *testing.T) {
	u := NewMultiRole(mockProviders(t), nil, nil)
	req := basicRequest()
	req.Turns = append(req.Turns, dialogue.Turn{Speaker: "C", Text: "me too", Index: 2})
	req.VoiceAssignments = req.VoiceAssignments[:1] // only A covered

	_, err := u.Execute(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "B, C")
	assert.NotContains(t, err.Error(), "A,")
}

func TestMultiRoleEmptyTurns(t *testing.T) {
	u := NewMultiRole(mockProviders(t), nil, nil)
	req := basicRequest()
	req.Turns = nil

	_, err := u.Execute(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestMultiRoleSpeakerLimit(t *testing.T) {
	u := NewMultiRole(mockProviders(t), nil, nil)
	req := basicRequest()
	req.Provider = "gemini" // capability allows 2 speakers
	req.Turns = []dialogue.Turn{
		{Speaker: "A", Text: "one", Index: 0},
		{Speaker: "B", Text: "two", Index: 1},
		{Speaker: "C", Text: "three", Index: 2},
	}
	req.VoiceAssignments = []VoiceAssignment{
		{Speaker: "A", VoiceID: "v1"}, {Speaker: "B", VoiceID: "v2"}, {Speaker: "C", VoiceID: "v3"},
	}

	_, err := u.Execute(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceed provider limit")
}

func TestMultiRoleValidationOrder(t *testing.T) {
	// Coverage is checked before the empty-turns rule, so an unknown
	// provider must win over everything.
	u := NewMultiRole(mockProviders(t), nil, nil)
	req := MultiRoleRequest{Provider: "nope", OutputFormat: merge.FormatPCM}

	_, err := u.Execute(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "capability registry")

	req.Provider = "mock"
	_, err = u.Execute(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestMultiRoleNativeAttemptRecorded(t *testing.T) {
	u := NewMultiRole(mockProviders(t), nil, nil)
	req := basicRequest()
	req.Provider = "gemini"
	req.OutputFormat = merge.FormatPCM

	res, err := u.Execute(context.Background(), req)
	require.NoError(t, err)

	// Vendor is native-capable and the script fits, so the builder outcome
	// is exposed even though rendering went segmented.
	require.NotNil(t, res.NativeAttempt)
	assert.True(t, res.NativeAttempt.Fits)
	assert.Equal(t, "gemini", res.NativeAttempt.Vendor)
	assert.NotEmpty(t, res.NativeAttempt.Payload)
	assert.Equal(t, ModeSegmented, res.Mode)
}

func TestMultiRoleNativeAttemptSkippedWhenOverBudget(t *testing.T) {
	u := NewMultiRole(mockProviders(t), nil, nil)
	req := basicRequest()
	req.Provider = "gemini"
	req.OutputFormat = merge.FormatPCM
	req.Turns = []dialogue.Turn{
		{Speaker: "A", Text: strings.Repeat("中", 1400), Index: 0},
	}
	req.VoiceAssignments = []VoiceAssignment{{Speaker: "A", VoiceID: "alto"}}

	res, err := u.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, res.NativeAttempt)
}

type captureStore struct {
	audio       []byte
	contentType string
	provider    string
	path        string
}

func (c *captureStore) Save(audio []byte, contentType, provider string) (string, error) {
	c.audio, c.contentType, c.provider = audio, contentType, provider
	if c.path == "" {
		c.path = "data/audio/test.wav"
	}
	return c.path, nil
}

func TestLongTextCJKEndToEnd(t *testing.T) {
	// 75 sentences of ~20 CJK characters blow past the mock provider's
	// 1000-character budget and must come back as several segments.
	var b strings.Builder
	for i := 0; i < 75; i++ {
		b.WriteString("这是一个大约二十个字符长度的完整测试句子。")
	}
	text := b.String()

	store := &captureStore{}
	u := NewLongText(mockProviders(t), nil, store, nil)

	res, err := u.Execute(context.Background(), LongTextRequest{
		Provider:     "mock",
		Text:         text,
		Voice:        "narrator",
		OutputFormat: merge.FormatWAV,
		GapMS:        50,
		Save:         true,
	})
	require.NoError(t, err)

	assert.GreaterOrEqual(t, res.SegmentCount, 2)
	assert.Equal(t, utf8.RuneCountInString(text), res.TotalTextLength)
	assert.Equal(t, len(text), res.TotalByteLength)

	// Segments reassemble the input exactly.
	var joined strings.Builder
	for _, seg := range res.Segments {
		joined.WriteString(seg.Text)
	}
	assert.Equal(t, text, joined.String())

	assert.Equal(t, "data/audio/test.wav", res.SavedPath)
	assert.Equal(t, "audio/wav", store.contentType)
	assert.Equal(t, "mock", store.provider)
	assert.NotEmpty(t, store.audio)
}

func TestLongTextShortInputSingleSegment(t *testing.T) {
	u := NewLongText(mockProviders(t), nil, nil, nil)

	res, err := u.Execute(context.Background(), LongTextRequest{
		Provider:     "mock",
		Text:         "short text",
		Voice:        "narrator",
		OutputFormat: merge.FormatPCM,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.SegmentCount)
	assert.Empty(t, res.SavedPath)
}

func TestLongTextValidation(t *testing.T) {
	u := NewLongText(mockProviders(t), nil, nil, nil)

	_, err := u.Execute(context.Background(), LongTextRequest{
		Provider: "mock", Voice: "narrator", Text: "  ", OutputFormat: merge.FormatPCM,
	})
	assert.Error(t, err)

	_, err = u.Execute(context.Background(), LongTextRequest{
		Provider: "mock", Text: "hello", OutputFormat: merge.FormatPCM,
	})
	assert.Error(t, err)

	_, err = u.Execute(context.Background(), LongTextRequest{
		Provider: "unconfigured", Text: "hello", Voice: "v", OutputFormat: merge.FormatPCM,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no configured adapter")
}
