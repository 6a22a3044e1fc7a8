package audiofile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// go-mp3 always produces 16-bit little-endian stereo.
const mp3Channels = 2

func decodeMP3(r io.Reader) (*Audio, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	pcm := make([]int16, len(raw)/2)
	for i := range pcm {
		pcm[i] = int16(binary.LittleEndian.Uint16(raw[2*i:]))
	}

	return &Audio{
		SampleRate: float64(dec.SampleRate()),
		Channels:   deinterleave(pcm, mp3Channels, 1.0/32768),
	}, nil
}

func decodeOgg(r io.Reader) (*Audio, error) {
	samples, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	if format.Channels < 1 {
		return nil, fmt.Errorf("%w: no channels", ErrInvalidFile)
	}

	return &Audio{
		SampleRate: float64(format.SampleRate),
		Channels:   deinterleave(samples, format.Channels, 1),
	}, nil
}

func decodeFLAC(r io.Reader) (*Audio, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	defer stream.Close()

	channels := int(stream.Info.NChannels)
	bps := int(stream.Info.BitsPerSample)
	if channels < 1 || bps < 4 || bps > 32 {
		return nil, fmt.Errorf("%w: %d channels at %d bits", ErrInvalidFile, channels, bps)
	}
	scale := 1 / float64(int64(1)<<(bps-1))

	a := &Audio{
		SampleRate: float64(stream.Info.SampleRate),
		Channels:   make([][]float64, channels),
	}
	for {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
		}

		for ch := range channels {
			for _, s := range frame.Subframes[ch].Samples {
				a.Channels[ch] = append(a.Channels[ch], float64(s)*scale)
			}
		}
	}

	return a, nil
}
