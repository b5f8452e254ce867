package wer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWERSingleSubstitution(t *testing.T) {
	assert.InDelta(t, 1.0/3.0, WER("the cat sat", "the cat sit"), 1e-9)
}

func TestWEREmptyConventions(t *testing.T) {
	assert.Equal(t, 0.0, WER("", ""))
	assert.Equal(t, 1.0, WER("", "anything at all"))
	assert.Equal(t, 1.0, WER("hello", ""))
}

func TestWERPerfectMatch(t *testing.T) {
	assert.Equal(t, 0.0, WER("a quick brown fox", "a quick brown fox"))
}

func TestWERCanExceedOne(t *testing.T) {
	// Insertions count against a short reference.
	assert.InDelta(t, 4.0, WER("hi", "hey there my friend"), 1e-9)
}

func TestCERCJKSubstitution(t *testing.T) {
	assert.InDelta(t, 0.25, CER("你好世界", "你好世介"), 1e-9)
}

func TestCERStripsWhitespace(t *testing.T) {
	assert.Equal(t, 0.0, CER("你好 世界", "你好世界"))
	assert.Equal(t, 0.0, CER("a b c", "abc"))
}

func TestAlignmentCounts(t *testing.T) {
	a := Align(
		[]string{"the", "cat", "sat", "down"},
		[]string{"the", "cat", "sit"},
	)
	assert.Equal(t, 1, a.Substitutions)
	assert.Equal(t, 1, a.Deletions)
	assert.Equal(t, 0, a.Insertions)
	assert.Equal(t, 2, a.Errors())
}

func TestAlignmentPairsInOrder(t *testing.T) {
	a := Align([]string{"a", "b", "c"}, []string{"a", "x", "c"})
	require.Len(t, a.Pairs, 3)
	assert.Equal(t, AlignedPair{Ref: "a", Hyp: "a", Op: OpMatch}, a.Pairs[0])
	assert.Equal(t, AlignedPair{Ref: "b", Hyp: "x", Op: OpSubstitute}, a.Pairs[1])
	assert.Equal(t, AlignedPair{Ref: "c", Hyp: "c", Op: OpMatch}, a.Pairs[2])
}

func TestAlignmentDeterministic(t *testing.T) {
	ref := []string{"one", "two", "three", "four"}
	hyp := []string{"two", "three", "five"}

	first := Align(ref, hyp)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Align(ref, hyp))
	}
}

func TestAlignmentInsertOnly(t *testing.T) {
	a := Align(nil, []string{"x", "y"})
	assert.Equal(t, 2, a.Insertions)
	require.Len(t, a.Pairs, 2)
	assert.Equal(t, OpInsert, a.Pairs[0].Op)
	assert.Empty(t, a.Pairs[0].Ref)
}
