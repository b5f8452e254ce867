// Package codec normalizes vendor audio payloads to 16-bit LE PCM.
package codec

import (
	"bytes"
	"io"

	"github.com/hajimehoshi/go-mp3"

	platformerrors "voicelab-server-go/internal/platform/errors"
)

const bytesPerSample = 2

// DecodeMP3 decodes an mp3 payload to PCM. The decoder always emits 16-bit
// little-endian stereo, so channels is 2.
func DecodeMP3(data []byte) (pcm []byte, sampleRate, channels int, err error) {
	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, platformerrors.Wrap(platformerrors.KindVendor, "codec.mp3", err)
	}

	pcm, err = io.ReadAll(decoder)
	if err != nil {
		return nil, 0, 0, platformerrors.Wrap(platformerrors.KindVendor, "codec.mp3", err)
	}
	return pcm, decoder.SampleRate(), 2, nil
}

// DurationMS computes the play time of a PCM buffer.
func DurationMS(pcmLen, sampleRate, channels int) float64 {
	if sampleRate <= 0 || channels <= 0 {
		return 0
	}
	bytesPerSecond := sampleRate * channels * bytesPerSample
	return float64(pcmLen) / float64(bytesPerSecond) * 1000.0
}

// PCMLenForDuration returns the buffer size for the given duration, aligned
// down to a whole sample frame.
func PCMLenForDuration(durationMS float64, sampleRate, channels int) int {
	bytesPerSecond := sampleRate * channels * bytesPerSample
	n := int(durationMS / 1000.0 * float64(bytesPerSecond))
	frame := channels * bytesPerSample
	return n - n%frame
}
