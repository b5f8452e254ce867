// Package wer computes word and character error rates between a reference
// transcript and a hypothesis, with a deterministic token alignment.
package wer

import (
	"strings"
	"unicode"
)

// Op is one edit operation in an alignment.
type Op string

const (
	OpMatch      Op = "match"
	OpSubstitute Op = "substitute"
	OpDelete     Op = "delete"
	OpInsert     Op = "insert"
)

// AlignedPair is one step of the alignment. Ref is empty for insertions,
// Hyp is empty for deletions.
type AlignedPair struct {
	Ref string `json:"ref"`
	Hyp string `json:"hyp"`
	Op  Op     `json:"op"`
}

// Alignment is the full edit script plus the per-operation counts that
// determine the error rate.
type Alignment struct {
	Pairs         []AlignedPair `json:"pairs"`
	Insertions    int           `json:"insertions"`
	Deletions     int           `json:"deletions"`
	Substitutions int           `json:"substitutions"`
}

// Errors returns the total number of non-match operations.
func (a Alignment) Errors() int {
	return a.Insertions + a.Deletions + a.Substitutions
}

// WER computes the word error rate of hypothesis against reference,
// tokenizing on whitespace. Both empty yields 0; an empty reference with a
// non-empty hypothesis yields 1.
func WER(reference, hypothesis string) float64 {
	return rate(strings.Fields(reference), strings.Fields(hypothesis))
}

// CER computes the character error rate, comparing runes with all
// whitespace stripped. The same empty-input conventions as WER apply.
func CER(reference, hypothesis string) float64 {
	return rate(charTokens(reference), charTokens(hypothesis))
}

func rate(ref, hyp []string) float64 {
	if len(ref) == 0 {
		if len(hyp) == 0 {
			return 0.0
		}
		return 1.0
	}
	a := Align(ref, hyp)
	return float64(a.Errors()) / float64(len(ref))
}

func charTokens(s string) []string {
	var out []string
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		out = append(out, string(r))
	}
	return out
}

// Align computes the minimum edit script between ref and hyp tokens.
// Backtracking prefers match over substitute over delete over insert on cost
// ties, so repeated runs always produce the same alignment.
func Align(ref, hyp []string) Alignment {
	n, m := len(ref), len(hyp)

	dist := make([][]int, n+1)
	for i := range dist {
		dist[i] = make([]int, m+1)
		dist[i][0] = i
	}
	for j := 0; j <= m; j++ {
		dist[0][j] = j
	}

	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			cost := 1
			if ref[i-1] == hyp[j-1] {
				cost = 0
			}
			dist[i][j] = min3(
				dist[i-1][j-1]+cost, // match or substitute
				dist[i-1][j]+1,      // delete from reference
				dist[i][j-1]+1,      // insert from hypothesis
			)
		}
	}

	var out Alignment
	i, j := n, m
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && ref[i-1] == hyp[j-1] && dist[i][j] == dist[i-1][j-1]:
			out.Pairs = append(out.Pairs, AlignedPair{Ref: ref[i-1], Hyp: hyp[j-1], Op: OpMatch})
			i, j = i-1, j-1
		case i > 0 && j > 0 && dist[i][j] == dist[i-1][j-1]+1:
			out.Pairs = append(out.Pairs, AlignedPair{Ref: ref[i-1], Hyp: hyp[j-1], Op: OpSubstitute})
			out.Substitutions++
			i, j = i-1, j-1
		case i > 0 && dist[i][j] == dist[i-1][j]+1:
			out.Pairs = append(out.Pairs, AlignedPair{Ref: ref[i-1], Op: OpDelete})
			out.Deletions++
			i--
		default:
			out.Pairs = append(out.Pairs, AlignedPair{Hyp: hyp[j-1], Op: OpInsert})
			out.Insertions++
			j--
		}
	}

	// Backtracking walked tail to head.
	for a, b := 0, len(out.Pairs)-1; a < b; a, b = a+1, b-1 {
		out.Pairs[a], out.Pairs[b] = out.Pairs[b], out.Pairs[a]
	}
	return out
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
