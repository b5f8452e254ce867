package textsplit

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSplitter(t *testing.T, cfg Config) *Splitter {
	t.Helper()
	s, err := NewSplitter(cfg)
	require.NoError(t, err)
	return s
}

func reassemble(segments []Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		b.WriteString(seg.Text)
	}
	return b.String()
}

func TestConfigValidation(t *testing.T) {
	assert.Error(t, Config{}.Validate())
	assert.Error(t, Config{MaxBytes: 100, MaxChars: 100}.Validate())
	assert.NoError(t, Config{MaxBytes: 100}.Validate())
	assert.NoError(t, Config{MaxChars: 100}.Validate())
}

func TestSplitShortTextSingleSegment(t *testing.T) {
	s := mustSplitter(t, Config{MaxChars: 100})
	segments, err := s.Split("short enough")
	require.NoError(t, err)

	require.Len(t, segments, 1)
	assert.Equal(t, BoundaryNone, segments[0].Boundary)
	assert.Equal(t, 0, segments[0].Index)
	assert.Equal(t, "short enough", segments[0].Text)
}

func TestSplitEmptyText(t *testing.T) {
	s := mustSplitter(t, Config{MaxChars: 100})
	_, err := s.Split("  \n ")
	require.Error(t, err)
}

func TestSplitPrefersParagraphBreak(t *testing.T) {
	text := "first paragraph. with sentences.\n\nsecond paragraph here"
	s := mustSplitter(t, Config{MaxChars: 40})
	segments, err := s.Split(text)
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(segments), 2)
	assert.Equal(t, BoundaryParagraph, segments[0].Boundary)
	assert.Equal(t, "first paragraph. with sentences.\n\n", segments[0].Text)
	assert.Equal(t, text, reassemble(segments))
}

func TestSplitCJKSentenceBoundary(t *testing.T) {
	text := "这是第一句话。这是第二句话。这是第三句话。"
	s := mustSplitter(t, Config{MaxChars: 10})
	segments, err := s.Split(text)
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(segments), 2)
	assert.Equal(t, BoundarySentence, segments[0].Boundary)
	assert.True(t, strings.HasSuffix(segments[0].Text, "。"))
	assert.Equal(t, text, reassemble(segments))
}

func TestSplitLatinSentenceBoundary(t *testing.T) {
	text := "First sentence here. Second sentence follows. Third one ends"
	s := mustSplitter(t, Config{MaxChars: 30})
	segments, err := s.Split(text)
	require.NoError(t, err)

	assert.Equal(t, BoundarySentence, segments[0].Boundary)
	assert.True(t, strings.HasSuffix(segments[0].Text, ". "))
	assert.Equal(t, text, reassemble(segments))
}

func TestSplitClauseFallback(t *testing.T) {
	text := "no sentence enders here, only clause commas, keep going and going"
	s := mustSplitter(t, Config{MaxChars: 30})
	segments, err := s.Split(text)
	require.NoError(t, err)

	assert.Equal(t, BoundaryClause, segments[0].Boundary)
	assert.True(t, strings.HasSuffix(segments[0].Text, ", "))
	assert.Equal(t, text, reassemble(segments))
}

func TestSplitHardCutWithoutBoundaries(t *testing.T) {
	text := strings.Repeat("x", 95)
	s := mustSplitter(t, Config{MaxChars: 30})
	segments, err := s.Split(text)
	require.NoError(t, err)

	require.Len(t, segments, 4)
	assert.Equal(t, BoundaryHard, segments[0].Boundary)
	assert.Equal(t, 30, segments[0].CharLength)
	assert.Equal(t, BoundaryNone, segments[3].Boundary)
	assert.Equal(t, text, reassemble(segments))
}

func TestSplitByteBudgetRespectsUTF8(t *testing.T) {
	// Each CJK rune is 3 bytes; a naive byte cut would land mid-rune.
	text := strings.Repeat("中", 40)
	s := mustSplitter(t, Config{MaxBytes: 32})
	segments, err := s.Split(text)
	require.NoError(t, err)

	for _, seg := range segments {
		assert.LessOrEqual(t, seg.ByteLength, 32)
		assert.True(t, utf8.ValidString(seg.Text))
		assert.Equal(t, len(seg.Text), seg.ByteLength)
		assert.Equal(t, utf8.RuneCountInString(seg.Text), seg.CharLength)
	}
	assert.Equal(t, text, reassemble(segments))
}

func TestSplitByteBudgetCJKSentences(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 20; i++ {
		b.WriteString("这是一个完整的中文句子。")
	}
	text := b.String()

	s := mustSplitter(t, Config{MaxBytes: 100})
	segments, err := s.Split(text)
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(segments), 2)
	for i, seg := range segments {
		assert.Equal(t, i, seg.Index)
		assert.LessOrEqual(t, seg.ByteLength, 100)
		if i < len(segments)-1 {
			assert.Equal(t, BoundarySentence, seg.Boundary)
		}
	}
	assert.Equal(t, text, reassemble(segments))
}

func TestSplitIndexesContiguous(t *testing.T) {
	text := strings.Repeat("alpha beta, gamma delta. ", 20)
	s := mustSplitter(t, Config{MaxChars: 40})
	segments, err := s.Split(text)
	require.NoError(t, err)

	for i, seg := range segments {
		assert.Equal(t, i, seg.Index)
	}
}

func TestNeedsSplitting(t *testing.T) {
	byBytes := mustSplitter(t, Config{MaxBytes: 6})
	assert.False(t, byBytes.NeedsSplitting("中中"))
	assert.True(t, byBytes.NeedsSplitting("中中中"))

	byChars := mustSplitter(t, Config{MaxChars: 2})
	assert.False(t, byChars.NeedsSplitting("中中"))
	assert.True(t, byChars.NeedsSplitting("abc"))
}

func TestNewSegmentRejectsBadLengths(t *testing.T) {
	_, err := NewSegment("abc", 0, 2, 3, BoundaryNone)
	assert.Error(t, err)
	_, err = NewSegment("中", 0, 3, 2, BoundaryNone)
	assert.Error(t, err)
}
