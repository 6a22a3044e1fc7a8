// Package audiofile reads audio files into planar float64 channels and
// writes PCM WAV files. It serves the command line tools; the engine itself
// never touches files.
package audiofile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned for file extensions no decoder handles.
	ErrUnsupportedFormat = errors.New("audiofile: unsupported format")
	// ErrInvalidFile is returned when a decoder rejects the file contents.
	ErrInvalidFile = errors.New("audiofile: invalid file")
	// ErrBitDepth is returned by WriteWAV for bit depths other than 16 and 24.
	ErrBitDepth = errors.New("audiofile: unsupported bit depth")
)

// Audio is decoded audio in planar layout. Every channel has the same
// length and samples are nominally in [-1, 1].
type Audio struct {
	SampleRate float64
	Channels   [][]float64
}

// NumChannels returns the channel count.
func (a *Audio) NumChannels() int { return len(a.Channels) }

// NumFrames returns the number of samples per channel.
func (a *Audio) NumFrames() int {
	if len(a.Channels) == 0 {
		return 0
	}

	return len(a.Channels[0])
}

// Duration returns the length in seconds.
func (a *Audio) Duration() float64 {
	if a.SampleRate <= 0 {
		return 0
	}

	return float64(a.NumFrames()) / a.SampleRate
}

// Extensions lists the file extensions Read understands.
func Extensions() []string {
	return []string{".wav", ".aif", ".aiff", ".mp3", ".ogg", ".flac"}
}

// Read decodes the file at path, choosing the decoder by extension.
func Read(path string) (*Audio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audiofile: open: %w", err)
	}
	defer f.Close()

	var a *Audio
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		a, err = decodeWAV(f)
	case ".aif", ".aiff":
		a, err = decodeAIFF(f)
	case ".mp3":
		a, err = decodeMP3(f)
	case ".ogg":
		a, err = decodeOgg(f)
	case ".flac":
		a, err = decodeFLAC(f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return a, nil
}

// deinterleave splits interleaved frames into planar channels, scaling each
// value by scale.
func deinterleave[T int | int16 | float32](data []T, channels int, scale float64) [][]float64 {
	frames := len(data) / channels
	out := make([][]float64, channels)
	for ch := range out {
		out[ch] = make([]float64, frames)
	}

	for i := range frames {
		for ch := range channels {
			out[ch][i] = float64(data[i*channels+ch]) * scale
		}
	}

	return out
}
