package usecase

import (
	"context"
	"strings"
	"time"

	"voicelab-server-go/internal/domain/dialogue"
	"voicelab-server-go/internal/domain/textsplit"
	"voicelab-server-go/internal/domain/tts"
	"voicelab-server-go/internal/domain/tts/merge"
	platformerrors "voicelab-server-go/internal/platform/errors"
	"voicelab-server-go/internal/platform/logging"
)

// NarratorSpeaker labels the synthetic turns a long-text run is wrapped in.
const NarratorSpeaker = "narrator"

// AudioStore persists a merged track and returns its location.
type AudioStore interface {
	Save(audio []byte, contentType, provider string) (string, error)
}

// LongTextRequest is one single-voice long-form synthesis call.
type LongTextRequest struct {
	Provider     string
	Text         string
	Voice        string
	Language     string
	OutputFormat string
	GapMS        int
	CrossfadeMS  int
	StylePrompt  string
	// Save persists the merged track through the store when one is wired.
	Save bool
}

// LongTextResult carries the merged track plus how the input was segmented.
type LongTextResult struct {
	merge.Result

	Provider  string              `json:"provider"`
	LatencyMS float64             `json:"latency_ms"`
	Segments  []textsplit.Segment `json:"segments"`
	SavedPath string              `json:"saved_path,omitempty"`
}

// LongText splits oversized input to the vendor's budget and renders it as a
// sequence of narrator turns.
type LongText struct {
	providers map[string]tts.Provider
	delays    map[string]int
	store     AudioStore
	logger    *logging.Logger
}

func NewLongText(providers map[string]tts.Provider, delays map[string]int, store AudioStore, logger *logging.Logger) *LongText {
	return &LongText{providers: providers, delays: delays, store: store, logger: logger}
}

func (u *LongText) Execute(ctx context.Context, req LongTextRequest) (*LongTextResult, error) {
	const op = "tts.longtext"

	start := time.Now()

	if strings.TrimSpace(req.Text) == "" {
		return nil, platformerrors.New(platformerrors.KindValidation, op, "text must not be empty")
	}
	if req.Voice == "" {
		return nil, platformerrors.New(platformerrors.KindValidation, op, "voice must not be empty")
	}

	name := strings.ToLower(strings.TrimSpace(req.Provider))
	provider, ok := u.providers[name]
	if !ok {
		return nil, platformerrors.Newf(platformerrors.KindPlatform, op,
			"provider %q has no configured adapter", req.Provider)
	}

	splitter, err := textsplit.NewSplitter(tts.GetTextLimit(name).SplitConfig())
	if err != nil {
		return nil, err
	}
	segments, err := splitter.Split(req.Text)
	if err != nil {
		return nil, err
	}

	turns := make([]dialogue.Turn, len(segments))
	for i, seg := range segments {
		turns[i] = dialogue.Turn{Speaker: NarratorSpeaker, Text: seg.Text, Index: i}
	}

	if u.logger != nil {
		u.logger.InfoTag("TTS", "long text split into %d segments for %s", len(segments), name)
	}

	var styleMap map[string]string
	if req.StylePrompt != "" {
		styleMap = map[string]string{NarratorSpeaker: req.StylePrompt}
	}

	merged, err := merge.NewMerger(provider, u.delays[name], u.logger).
		SynthesizeAndMerge(ctx, turns, map[string]string{NarratorSpeaker: req.Voice}, merge.Options{
			Language:     req.Language,
			OutputFormat: req.OutputFormat,
			GapMS:        req.GapMS,
			CrossfadeMS:  req.CrossfadeMS,
			StyleMap:     styleMap,
		})
	if err != nil {
		return nil, err
	}

	result := &LongTextResult{
		Result:    *merged,
		Provider:  name,
		LatencyMS: float64(time.Since(start).Milliseconds()),
		Segments:  segments,
	}

	if req.Save && u.store != nil {
		path, err := u.store.Save(merged.Audio, merged.ContentType, name)
		if err != nil {
			return nil, platformerrors.Wrap(platformerrors.KindStorage, op, err)
		}
		result.SavedPath = path
	}

	return result, nil
}
