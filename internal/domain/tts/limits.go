package tts

import "voicelab-server-go/internal/domain/textsplit"

// TextLimit describes how much text a vendor accepts per synthesis call and
// whether the budget is measured in UTF-8 bytes or characters.
type TextLimit struct {
	MaxBytes      int
	MaxChars      int
	SoftWarnBytes int
}

// textLimits is the per-vendor request budget table. Gemini counts UTF-8
// bytes; everyone else counts characters.
var textLimits = map[string]TextLimit{
	"gemini":     {MaxBytes: 4000, SoftWarnBytes: 2400},
	"elevenlabs": {MaxChars: 5000},
	"openai":     {MaxChars: 4096},
	"edge":       {MaxChars: 500},
	"mock":       {MaxChars: 1000},
}

// defaultTextLimit is the conservative fallback for vendors without a table
// entry.
var defaultTextLimit = TextLimit{MaxChars: 1000}

// GetTextLimit returns the request budget for a provider, falling back to a
// conservative default for unknown vendors.
func GetTextLimit(providerName string) TextLimit {
	if limit, ok := textLimits[providerName]; ok {
		return limit
	}
	return defaultTextLimit
}

// SplitConfig converts the limit into a splitter budget.
func (l TextLimit) SplitConfig() textsplit.Config {
	if l.MaxBytes > 0 {
		return textsplit.Config{MaxBytes: l.MaxBytes}
	}
	return textsplit.Config{MaxChars: l.MaxChars}
}

// Fits reports whether text is within the hard budget.
func (l TextLimit) Fits(text string) bool {
	cfg := l.SplitConfig()
	s, err := textsplit.NewSplitter(cfg)
	if err != nil {
		return false
	}
	return !s.NeedsSplitting(text)
}
