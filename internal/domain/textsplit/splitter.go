// Package textsplit slices long-form text into vendor-safe segments at
// semantic boundaries, under either a UTF-8 byte budget or a character budget.
package textsplit

import (
	"strings"
	"unicode/utf8"

	platformerrors "voicelab-server-go/internal/platform/errors"
)

// BoundaryType records which boundary class ended a segment.
type BoundaryType string

const (
	BoundaryParagraph BoundaryType = "paragraph"
	BoundarySentence  BoundaryType = "sentence"
	BoundaryClause    BoundaryType = "clause"
	BoundaryHard      BoundaryType = "hard"
	BoundaryNone      BoundaryType = "none"
)

// Segment is one vendor-safe slice of the input text. Read-only once created.
type Segment struct {
	Text       string
	Index      int
	ByteLength int
	CharLength int
	Boundary   BoundaryType
}

// NewSegment builds a Segment and verifies the recorded lengths against the
// actual text. Downstream byte-limit checks rely on these being accurate.
func NewSegment(text string, index, byteLength, charLength int, boundary BoundaryType) (Segment, error) {
	if byteLength != len(text) {
		return Segment{}, platformerrors.Newf(platformerrors.KindValidation, "textsplit.segment",
			"byte length %d does not match text (%d bytes)", byteLength, len(text))
	}
	if charLength != utf8.RuneCountInString(text) {
		return Segment{}, platformerrors.Newf(platformerrors.KindValidation, "textsplit.segment",
			"char length %d does not match text (%d chars)", charLength, utf8.RuneCountInString(text))
	}
	return Segment{
		Text:       text,
		Index:      index,
		ByteLength: byteLength,
		CharLength: charLength,
		Boundary:   boundary,
	}, nil
}

// Config sets the split budget. Exactly one of MaxBytes or MaxChars must be
// positive; byte budgets are measured against the UTF-8 encoding.
type Config struct {
	MaxBytes           int
	MaxChars           int
	PreserveParagraphs bool
}

// Validate checks the byte/char budget exclusivity rule.
func (c Config) Validate() error {
	if c.MaxBytes > 0 && c.MaxChars > 0 {
		return platformerrors.New(platformerrors.KindValidation, "textsplit.config",
			"max_bytes and max_chars are mutually exclusive")
	}
	if c.MaxBytes <= 0 && c.MaxChars <= 0 {
		return platformerrors.New(platformerrors.KindValidation, "textsplit.config",
			"one of max_bytes or max_chars must be positive")
	}
	return nil
}

// Splitter implements boundary-aware splitting for one Config.
type Splitter struct {
	cfg Config
}

func NewSplitter(cfg Config) (*Splitter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Splitter{cfg: cfg}, nil
}

var (
	cjkSentenceEnders = []rune{'。', '！', '？'}
	cjkClauseEnders   = []rune{'，', '；', '：'}
	latinSentence     = []string{". ", "! ", "? "}
	latinClause       = []string{", ", "; ", ": "}
)

// NeedsSplitting reports whether text exceeds the configured budget.
func (s *Splitter) NeedsSplitting(text string) bool {
	if s.cfg.MaxBytes > 0 {
		return len(text) > s.cfg.MaxBytes
	}
	return utf8.RuneCountInString(text) > s.cfg.MaxChars
}

// Split returns segments covering the input in order. Concatenating the
// segment texts in index order reproduces the input exactly.
func (s *Splitter) Split(text string) ([]Segment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, platformerrors.New(platformerrors.KindValidation, "textsplit.split",
			"text must not be empty")
	}

	if !s.NeedsSplitting(text) {
		seg, err := NewSegment(text, 0, len(text), utf8.RuneCountInString(text), BoundaryNone)
		if err != nil {
			return nil, err
		}
		return []Segment{seg}, nil
	}

	var segments []Segment
	remaining := []rune(text)
	index := 0

	for len(remaining) > 0 {
		if s.fits(remaining) {
			seg, err := s.makeSegment(remaining, index, BoundaryNone)
			if err != nil {
				return nil, err
			}
			segments = append(segments, seg)
			break
		}

		limit := s.maxCharPosition(remaining)
		if limit < 1 {
			// Budget smaller than a single rune; take one anyway so the
			// loop always makes progress.
			limit = 1
		}

		cut, boundary := findCut(remaining, limit)
		seg, err := s.makeSegment(remaining[:cut], index, boundary)
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
		remaining = remaining[cut:]
		index++
	}

	return segments, nil
}

func (s *Splitter) fits(runes []rune) bool {
	if s.cfg.MaxBytes > 0 {
		return len(string(runes)) <= s.cfg.MaxBytes
	}
	return len(runes) <= s.cfg.MaxChars
}

func (s *Splitter) makeSegment(runes []rune, index int, boundary BoundaryType) (Segment, error) {
	text := string(runes)
	return NewSegment(text, index, len(text), len(runes), boundary)
}

// maxCharPosition returns the largest rune count of a prefix of remaining
// that fits the budget. For byte budgets this binary-searches the largest
// prefix whose UTF-8 encoding fits; a plain character cut is unsafe once
// multi-byte CJK text is involved.
func (s *Splitter) maxCharPosition(remaining []rune) int {
	if s.cfg.MaxChars > 0 {
		if len(remaining) < s.cfg.MaxChars {
			return len(remaining)
		}
		return s.cfg.MaxChars
	}

	lo, hi := 0, len(remaining)
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if len(string(remaining[:mid])) <= s.cfg.MaxBytes {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// findCut searches backward from limit for the best boundary, in strict
// priority order. The matched punctuation (and its trailing space for latin
// patterns) is consumed into the segment so the next one starts cleanly.
func findCut(runes []rune, limit int) (int, BoundaryType) {
	window := runes[:limit]

	// Paragraph break: cut after the blank line.
	if cut := lastIndexRunes(window, []rune{'\n', '\n'}); cut > 0 {
		return cut + 2, BoundaryParagraph
	}

	if cut := lastRuneOf(window, cjkSentenceEnders); cut > 0 {
		return cut + 1, BoundarySentence
	}

	if cut, n := lastPatternOf(window, latinSentence); cut > 0 {
		return cut + n, BoundarySentence
	}

	if cut := lastRuneOf(window, cjkClauseEnders); cut > 0 {
		return cut + 1, BoundaryClause
	}

	if cut, n := lastPatternOf(window, latinClause); cut > 0 {
		return cut + n, BoundaryClause
	}

	return limit, BoundaryHard
}

func lastIndexRunes(window, pattern []rune) int {
	for i := len(window) - len(pattern); i >= 0; i-- {
		match := true
		for j, r := range pattern {
			if window[i+j] != r {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func lastRuneOf(window []rune, candidates []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		for _, c := range candidates {
			if window[i] == c {
				return i
			}
		}
	}
	return -1
}

// lastPatternOf returns the position and rune length of the latest match of
// any two-rune latin pattern (punctuation plus space) inside window.
func lastPatternOf(window []rune, patterns []string) (int, int) {
	best, bestLen := -1, 0
	for _, p := range patterns {
		pr := []rune(p)
		if idx := lastIndexRunes(window, pr); idx > best {
			best, bestLen = idx, len(pr)
		}
	}
	return best, bestLen
}
