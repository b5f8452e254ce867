// Package merge stitches per-turn PCM renders into one dialogue track with
// silence gaps or crossfaded joins, and tracks per-turn timing offsets.
package merge

import (
	"bytes"
	"encoding/binary"

	"voicelab-server-go/internal/domain/tts/adapters/codec"
)

const bytesPerSample = 2

// silence returns durationMS of silence in the given sample format, aligned
// to whole frames.
func silence(durationMS float64, sampleRate, channels int) []byte {
	return make([]byte, codec.PCMLenForDuration(durationMS, sampleRate, channels))
}

// appendCrossfaded joins next onto buf with a linear crossfade of overlapMS.
// The tail of buf fades out while the head of next fades in over the same
// samples. When either side is shorter than the overlap the join degrades to
// plain concatenation.
func appendCrossfaded(buf, next []byte, overlapMS float64, sampleRate, channels int) []byte {
	overlapBytes := codec.PCMLenForDuration(overlapMS, sampleRate, channels)
	if overlapBytes <= 0 || overlapBytes > len(buf) || overlapBytes > len(next) {
		return append(buf, next...)
	}

	overlapSamples := overlapBytes / bytesPerSample
	tailStart := len(buf) - overlapBytes

	for i := 0; i < overlapSamples; i++ {
		fadeIn := float64(i) / float64(overlapSamples)
		fadeOut := 1.0 - fadeIn

		tailOff := tailStart + i*bytesPerSample
		tail := int16(binary.LittleEndian.Uint16(buf[tailOff:]))
		head := int16(binary.LittleEndian.Uint16(next[i*bytesPerSample:]))

		mixed := float64(tail)*fadeOut + float64(head)*fadeIn
		binary.LittleEndian.PutUint16(buf[tailOff:], uint16(clampSample(mixed)))
	}

	return append(buf, next[overlapBytes:]...)
}

func clampSample(v float64) int16 {
	switch {
	case v > 32767:
		return 32767
	case v < -32768:
		return -32768
	default:
		return int16(v)
	}
}

// EncodePCMAsWAV wraps PCM in a RIFF container. Exposed for callers that
// deliver single-provider renders without going through a merge.
func EncodePCMAsWAV(pcm []byte, sampleRate, channels int) []byte {
	return encodeWAV(pcm, sampleRate, channels)
}

// encodeWAV wraps PCM in a RIFF container.
func encodeWAV(pcm []byte, sampleRate, channels int) []byte {
	var out bytes.Buffer
	byteRate := sampleRate * channels * bytesPerSample
	blockAlign := channels * bytesPerSample

	out.WriteString("RIFF")
	binary.Write(&out, binary.LittleEndian, uint32(36+len(pcm)))
	out.WriteString("WAVE")

	out.WriteString("fmt ")
	binary.Write(&out, binary.LittleEndian, uint32(16))
	binary.Write(&out, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&out, binary.LittleEndian, uint16(channels))
	binary.Write(&out, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&out, binary.LittleEndian, uint32(byteRate))
	binary.Write(&out, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&out, binary.LittleEndian, uint16(16)) // bits per sample

	out.WriteString("data")
	binary.Write(&out, binary.LittleEndian, uint32(len(pcm)))
	out.Write(pcm)

	return out.Bytes()
}
