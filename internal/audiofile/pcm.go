package audiofile

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func decodeWAV(r io.ReadSeeker) (*Audio, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: not a PCM WAV file", ErrInvalidFile)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	// 8-bit WAV samples are unsigned with silence at 128.
	if buf.SourceBitDepth == 8 {
		for i := range buf.Data {
			buf.Data[i] -= 128
		}
	}

	return fromIntBuffer(buf)
}

func decodeAIFF(r io.ReadSeeker) (*Audio, error) {
	dec := aiff.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: not an AIFF file", ErrInvalidFile)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	return fromIntBuffer(buf)
}

func fromIntBuffer(buf *audio.IntBuffer) (*Audio, error) {
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 || buf.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: missing format", ErrInvalidFile)
	}

	depth := buf.SourceBitDepth
	if depth < 8 || depth > 32 {
		return nil, fmt.Errorf("%w: %d bits", ErrInvalidFile, depth)
	}

	return &Audio{
		SampleRate: float64(buf.Format.SampleRate),
		Channels:   deinterleave(buf.Data, buf.Format.NumChannels, 1/float64(int64(1)<<(depth-1))),
	}, nil
}

// WriteWAV writes a as integer PCM with the given bit depth (16 or 24).
// Samples outside [-1, 1] are clipped.
func WriteWAV(path string, a *Audio, bitDepth int) error {
	if bitDepth != 16 && bitDepth != 24 {
		return fmt.Errorf("%w: %d", ErrBitDepth, bitDepth)
	}
	if a.NumChannels() == 0 || a.SampleRate <= 0 {
		return fmt.Errorf("%w: empty audio", ErrInvalidFile)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("audiofile: create: %w", err)
	}

	channels := a.NumChannels()
	frames := a.NumFrames()
	full := float64(int64(1)<<(bitDepth-1)) - 1

	data := make([]int, frames*channels)
	for ch, samples := range a.Channels {
		for i, x := range samples[:frames] {
			data[i*channels+ch] = int(math.Round(math.Max(-1, math.Min(1, x)) * full))
		}
	}

	enc := wav.NewEncoder(f, int(a.SampleRate), bitDepth, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: int(a.SampleRate)},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("audiofile: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("audiofile: encode: %w", err)
	}

	return f.Close()
}
