package dialogue

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSingleLetterLabels(t *testing.T) {
	turns, speakers, err := Parse("A: hello B: hi")
	require.NoError(t, err)

	require.Len(t, turns, 2)
	assert.Equal(t, Turn{Speaker: "A", Text: "hello", Index: 0}, turns[0])
	assert.Equal(t, Turn{Speaker: "B", Text: "hi", Index: 1}, turns[1])
	assert.Equal(t, []string{"A", "B"}, speakers)
}

func TestParseBracketLabels(t *testing.T) {
	script := "[旁白]: 很久很久以前。\n[小明]: 你好！\n[旁白]: 他说。"
	turns, speakers, err := Parse(script)
	require.NoError(t, err)

	require.Len(t, turns, 3)
	assert.Equal(t, "旁白", turns[0].Speaker)
	assert.Equal(t, "很久很久以前。", turns[0].Text)
	assert.Equal(t, []string{"旁白", "小明"}, speakers)
}

func TestParseFullWidthColon(t *testing.T) {
	turns, _, err := Parse("[Alice]：你好\n[Bob]: hi")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "Alice", turns[0].Speaker)
	assert.Equal(t, "你好", turns[0].Text)
}

func TestParseMultilineTurnBody(t *testing.T) {
	script := "[Host]: first line\nsecond line of the same turn\n[Guest]: reply"
	turns, _, err := Parse(script)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "first line\nsecond line of the same turn", turns[0].Text)
}

func TestParseEmptyInput(t *testing.T) {
	_, _, err := Parse("   \n\t ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestParseNoLabels(t *testing.T) {
	_, _, err := Parse("just some prose without any speaker markers")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "format")
}

func TestParseSpeakerLimitBoundary(t *testing.T) {
	var six strings.Builder
	for i := 0; i < 6; i++ {
		fmt.Fprintf(&six, "[speaker%d]: line %d\n", i, i)
	}
	turns, speakers, err := Parse(six.String())
	require.NoError(t, err)
	assert.Len(t, turns, 6)
	assert.Len(t, speakers, 6)

	seven := six.String() + "[speaker6]: one too many\n"
	_, _, err = Parse(seven)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "6")
}

func TestParseSpeakerNameTooLong(t *testing.T) {
	name := strings.Repeat("x", 51)
	_, _, err := Parse("[" + name + "]: hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "50")
}

func TestParseRepeatedSpeakerNotDuplicated(t *testing.T) {
	turns, speakers, err := Parse("A: one B: two A: three")
	require.NoError(t, err)
	assert.Len(t, turns, 3)
	assert.Equal(t, []string{"A", "B"}, speakers)
	assert.Equal(t, 2, turns[2].Index)
}

func TestParseIgnoresLeadingText(t *testing.T) {
	turns, _, err := Parse("Scene one.\n[Narrator]: and so it began")
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "Narrator", turns[0].Speaker)
}

func TestDistinctSpeakers(t *testing.T) {
	turns := []Turn{
		{Speaker: "N", Text: "a", Index: 0},
		{Speaker: "M", Text: "b", Index: 1},
		{Speaker: "N", Text: "c", Index: 2},
	}
	assert.Equal(t, []string{"N", "M"}, DistinctSpeakers(turns))
}
