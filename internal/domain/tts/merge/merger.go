package merge

import (
	"context"
	"time"
	"unicode/utf8"

	"voicelab-server-go/internal/domain/dialogue"
	"voicelab-server-go/internal/domain/tts"
	"voicelab-server-go/internal/domain/tts/adapters/codec"
	platformerrors "voicelab-server-go/internal/platform/errors"
	"voicelab-server-go/internal/platform/logging"
)

const (
	MaxGapMS       = 2000
	MaxCrossfadeMS = 500

	FormatWAV = "wav"
	FormatPCM = "pcm"
)

// Options tunes one merge run.
type Options struct {
	Language     string
	OutputFormat string
	GapMS        int
	CrossfadeMS  int
	// StyleMap carries optional per-speaker delivery hints.
	StyleMap map[string]string
}

// TurnTiming locates one turn inside the merged track.
type TurnTiming struct {
	Index   int     `json:"index"`
	Speaker string  `json:"speaker"`
	StartMS float64 `json:"start_ms"`
	EndMS   float64 `json:"end_ms"`
}

// Result is one merged dialogue track.
type Result struct {
	Audio           []byte       `json:"-"`
	ContentType     string       `json:"content_type"`
	SampleRate      int          `json:"sample_rate"`
	Channels        int          `json:"channels"`
	DurationMS      float64      `json:"duration_ms"`
	Timings         []TurnTiming `json:"timings"`
	SegmentCount    int          `json:"segment_count"`
	TotalTextLength int          `json:"total_text_length"`
	TotalByteLength int          `json:"total_byte_length"`
}

// Merger renders turns strictly in order through one provider and joins the
// results. Calls are sequential on purpose: vendors rate-limit and the
// output ordering must match the script.
type Merger struct {
	provider     tts.Provider
	requestDelay time.Duration
	logger       *logging.Logger
}

func NewMerger(provider tts.Provider, requestDelayMS int, logger *logging.Logger) *Merger {
	return &Merger{
		provider:     provider,
		requestDelay: time.Duration(requestDelayMS) * time.Millisecond,
		logger:       logger,
	}
}

// SynthesizeAndMerge renders every turn and concatenates the audio. Any
// single vendor failure fails the whole run; partial audio is discarded and
// the vendor error propagates unchanged in the cause chain.
func (m *Merger) SynthesizeAndMerge(ctx context.Context, turns []dialogue.Turn, voiceMap map[string]string, opts Options) (*Result, error) {
	const op = "tts.merge"

	if err := validateOptions(opts); err != nil {
		return nil, err
	}
	if len(turns) == 0 {
		return nil, platformerrors.New(platformerrors.KindValidation, op, "no turns to synthesize")
	}

	var (
		buf        []byte
		timings    []TurnTiming
		sampleRate int
		channels   int
		totalChars int
		totalBytes int
	)

	start := time.Now()
	for i, turn := range turns {
		voice, ok := voiceMap[turn.Speaker]
		if !ok {
			return nil, platformerrors.Newf(platformerrors.KindValidation, op,
				"no voice assigned for speaker %q", turn.Speaker)
		}

		if i > 0 && m.requestDelay > 0 {
			select {
			case <-time.After(m.requestDelay):
			case <-ctx.Done():
				return nil, platformerrors.Wrap(platformerrors.KindVendor, op, ctx.Err())
			}
		}

		res, err := m.provider.Synthesize(ctx, turn.Text, tts.SynthesisOptions{
			Voice:    voice,
			Language: opts.Language,
			Style:    opts.StyleMap[turn.Speaker],
		})
		if err != nil {
			return nil, err
		}

		if i == 0 {
			sampleRate, channels = res.SampleRate, res.Channels
		} else if res.SampleRate != sampleRate || res.Channels != channels {
			return nil, platformerrors.Newf(platformerrors.KindVendor, op,
				"sample format changed mid-dialogue: %dHz/%dch then %dHz/%dch",
				sampleRate, channels, res.SampleRate, res.Channels)
		}

		var startMS float64
		switch {
		case i == 0:
			buf = append(buf, res.PCM...)
		case opts.CrossfadeMS > 0:
			// Crossfade replaces the gap at this join; the new turn
			// starts inside the previous turn's tail.
			startMS = codec.DurationMS(len(buf), sampleRate, channels) - float64(opts.CrossfadeMS)
			if startMS < 0 {
				startMS = 0
			}
			buf = appendCrossfaded(buf, res.PCM, float64(opts.CrossfadeMS), sampleRate, channels)
		default:
			buf = append(buf, silence(float64(opts.GapMS), sampleRate, channels)...)
			startMS = codec.DurationMS(len(buf), sampleRate, channels)
			buf = append(buf, res.PCM...)
		}
		timings = append(timings, TurnTiming{
			Index:   turn.Index,
			Speaker: turn.Speaker,
			StartMS: startMS,
			EndMS:   startMS + res.DurationMS,
		})

		totalChars += utf8.RuneCountInString(turn.Text)
		totalBytes += len(turn.Text)
	}

	audio, contentType := buf, "audio/pcm"
	if opts.OutputFormat == FormatWAV {
		audio = encodeWAV(buf, sampleRate, channels)
		contentType = "audio/wav"
	}

	durationMS := codec.DurationMS(len(buf), sampleRate, channels)
	if m.logger != nil {
		m.logger.InfoTag("Merge", "merged %d turns into %.0fms of audio in %v",
			len(turns), durationMS, time.Since(start).Round(time.Millisecond))
	}

	return &Result{
		Audio:           audio,
		ContentType:     contentType,
		SampleRate:      sampleRate,
		Channels:        channels,
		DurationMS:      durationMS,
		Timings:         timings,
		SegmentCount:    len(turns),
		TotalTextLength: totalChars,
		TotalByteLength: totalBytes,
	}, nil
}

func validateOptions(opts Options) error {
	const op = "tts.merge"

	if opts.GapMS < 0 || opts.GapMS > MaxGapMS {
		return platformerrors.Newf(platformerrors.KindValidation, op,
			"gap_ms %d out of range [0, %d]", opts.GapMS, MaxGapMS)
	}
	if opts.CrossfadeMS < 0 || opts.CrossfadeMS > MaxCrossfadeMS {
		return platformerrors.Newf(platformerrors.KindValidation, op,
			"crossfade_ms %d out of range [0, %d]", opts.CrossfadeMS, MaxCrossfadeMS)
	}
	if opts.OutputFormat != FormatWAV && opts.OutputFormat != FormatPCM {
		return platformerrors.Newf(platformerrors.KindValidation, op,
			"unsupported output format %q", opts.OutputFormat)
	}
	return nil
}
