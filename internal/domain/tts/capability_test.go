package tts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	platformerrors "voicelab-server-go/internal/platform/errors"
)

func TestGetCapabilityCaseInsensitive(t *testing.T) {
	for _, name := range []string{"gemini", "Gemini", "GEMINI", "  gemini "} {
		cap, err := GetCapability(name)
		require.NoError(t, err, name)
		assert.Equal(t, "gemini", cap.ProviderName)
		assert.Equal(t, SupportNative, cap.Support)
		assert.Equal(t, 2, cap.MaxSpeakers)
	}
}

func TestGetCapabilityNotFound(t *testing.T) {
	_, err := GetCapability("no-such-vendor")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found in capability registry")
	assert.True(t, platformerrors.IsKind(err, platformerrors.KindCapability))
}

func TestListNativeProviders(t *testing.T) {
	assert.Equal(t, []string{"elevenlabs", "gemini"}, ListNativeProviders())
}

func TestListSegmentedProviders(t *testing.T) {
	names := ListSegmentedProviders()
	assert.Contains(t, names, "edge")
	assert.Contains(t, names, "openai")
	assert.Contains(t, names, "mock")
	assert.NotContains(t, names, "gemini")
	assert.NotContains(t, names, "webspeech")
}

func TestListCapabilitiesSorted(t *testing.T) {
	caps := ListCapabilities()
	require.NotEmpty(t, caps)
	for i := 1; i < len(caps); i++ {
		assert.Less(t, caps[i-1].ProviderName, caps[i].ProviderName)
	}
}

func TestGetTextLimit(t *testing.T) {
	gemini := GetTextLimit("gemini")
	assert.Equal(t, 4000, gemini.MaxBytes)
	assert.Equal(t, 2400, gemini.SoftWarnBytes)

	edge := GetTextLimit("edge")
	assert.Equal(t, 500, edge.MaxChars)

	unknown := GetTextLimit("mystery")
	assert.Equal(t, defaultTextLimit, unknown)
}

func TestTextLimitFits(t *testing.T) {
	limit := TextLimit{MaxChars: 5}
	assert.True(t, limit.Fits("hello"))
	assert.False(t, limit.Fits("hello!"))

	byBytes := TextLimit{MaxBytes: 6}
	assert.True(t, byBytes.Fits("中中"))
	assert.False(t, byBytes.Fits("中中中"))
}
