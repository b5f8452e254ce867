// Package dialogue parses multi-speaker scripts into ordered turns.
//
// Two label syntaxes are accepted interchangeably within one script:
//
//	[SpeakerName]: text
//	X: text            (single uppercase letter)
//
// Both the ASCII colon and the full-width colon work as the separator.
package dialogue

import (
	"regexp"
	"strings"
	"unicode/utf8"

	platformerrors "voicelab-server-go/internal/platform/errors"
)

const (
	// MaxSpeakers is the hard cap on distinct speakers per script.
	MaxSpeakers = 6
	// MaxSpeakerNameLen caps speaker names, in characters.
	MaxSpeakerNameLen = 50
)

// Turn is one speaker's utterance. Immutable once parsed; Index is the
// 0-based position in textual order.
type Turn struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
	Index   int    `json:"index"`
}

// labelPattern matches either a bracketed name or a single uppercase letter,
// followed by an ASCII or full-width colon. The single-letter form requires a
// word boundary so "B:" inside "WEB:" is not a label.
var labelPattern = regexp.MustCompile(`(\[[^\[\]\n]+\]|\b[A-Z])[:：]`)

// Parse extracts turns and the unique speaker list in first-appearance order.
// Everything between one label and the next belongs to the first label's
// turn, across newlines. Leading text before the first label is ignored.
func Parse(text string) ([]Turn, []string, error) {
	const op = "dialogue.parse"

	if strings.TrimSpace(text) == "" {
		return nil, nil, platformerrors.New(platformerrors.KindValidation, op,
			"dialogue text is empty")
	}

	matches := labelPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil, nil, platformerrors.New(platformerrors.KindValidation, op,
			"no speaker labels found, expected [Name]: or X: format")
	}

	var (
		turns    []Turn
		speakers []string
		seen     = map[string]bool{}
	)

	for i, m := range matches {
		name := text[m[2]:m[3]]
		if strings.HasPrefix(name, "[") {
			name = strings.TrimSuffix(strings.TrimPrefix(name, "["), "]")
		}
		name = strings.TrimSpace(name)

		if utf8.RuneCountInString(name) > MaxSpeakerNameLen {
			return nil, nil, platformerrors.Newf(platformerrors.KindValidation, op,
				"speaker name %q... exceeds %d characters", truncateName(name), MaxSpeakerNameLen)
		}

		if !seen[name] {
			seen[name] = true
			speakers = append(speakers, name)
			if len(speakers) > MaxSpeakers {
				return nil, nil, platformerrors.Newf(platformerrors.KindValidation, op,
					"script has %d distinct speakers, at most %d supported", len(speakers), MaxSpeakers)
			}
		}

		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		body := strings.TrimSpace(text[m[1]:end])
		if body == "" {
			continue
		}

		turns = append(turns, Turn{
			Speaker: name,
			Text:    body,
			Index:   len(turns),
		})
	}

	if len(turns) == 0 {
		return nil, nil, platformerrors.New(platformerrors.KindValidation, op,
			"no turns with text found")
	}

	return turns, speakers, nil
}

// DistinctSpeakers returns the unique speakers of the given turns in
// first-appearance order. Used by callers that build turns directly.
func DistinctSpeakers(turns []Turn) []string {
	var out []string
	seen := map[string]bool{}
	for _, t := range turns {
		if !seen[t.Speaker] {
			seen[t.Speaker] = true
			out = append(out, t.Speaker)
		}
	}
	return out
}

func truncateName(name string) string {
	runes := []rune(name)
	if len(runes) <= 20 {
		return name
	}
	return string(runes[:20])
}
