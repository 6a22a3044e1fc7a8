package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-eq/dsp/spectrum"
	"github.com/cwbudde/algo-eq/internal/audiofile"
	"github.com/cwbudde/algo-eq/internal/testutil"
	"github.com/cwbudde/algo-eq/param"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return logger
}

func baseOptions(out string) options {
	return options{
		freq:        1000,
		amp:         0.5,
		duration:    0.5,
		rate:        48000,
		channels:    2,
		zeroLatency: true,
		block:       512,
		out:         out,
		bits:        24,
		explicit:    map[string]bool{},
	}
}

func TestAssignments(t *testing.T) {
	var a assignments

	require.NoError(t, a.Set("Gain3=6"))
	require.NoError(t, a.Set(" Q3 = 2.5 "))
	assert.Equal(t, assignments{{param.GainID(3), 6}, {param.QID(3), 2.5}}, a)
	assert.Equal(t, "Gain3=6,Q3=2.5", a.String())

	assert.Error(t, a.Set("Gain3"))
	assert.Error(t, a.Set("=1"))
	assert.Error(t, a.Set("Gain3=loud"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*options)
		ok     bool
	}{
		{"signal", func(o *options) { o.signalType = "sine" }, true},
		{"no input", func(*options) {}, false},
		{"both inputs", func(o *options) { o.signalType, o.in = "sine", "a.wav" }, false},
		{"no output", func(o *options) { o.signalType, o.out = "sine", "" }, false},
		{"generate without file", func(o *options) { o.signalType, o.generate = "sine", true }, false},
		{"bad bits", func(o *options) { o.signalType, o.bits = "sine", 32 }, false},
		{"bad block", func(o *options) { o.signalType, o.block = "sine", 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := baseOptions("out.wav")
			tt.modify(&o)
			if tt.ok {
				assert.NoError(t, o.validate())
			} else {
				assert.Error(t, o.validate())
			}
		})
	}
}

func TestRenderTestSignal(t *testing.T) {
	dir := t.TempDir()
	o := baseOptions(filepath.Join(dir, "sine.wav"))
	o.signalType = "sine"
	o.spectrum = filepath.Join(dir, "spectrum.json")
	require.NoError(t, o.sets.Set("Frequency3=1000"))
	require.NoError(t, o.sets.Set("Gain3=6"))

	require.NoError(t, run(context.Background(), o, quietLogger()))

	a, err := audiofile.Read(o.out)
	require.NoError(t, err)
	assert.Equal(t, 48000.0, a.SampleRate)
	require.Equal(t, 2, a.NumChannels())
	require.Equal(t, 24000, a.NumFrames())

	level, err := spectrum.ToneLevelDB(a.Channels[0][a.NumFrames()-4800:], 1000, 48000)
	require.NoError(t, err)
	assert.InDelta(t, -6.02+6, level, 0.1)

	data, err := os.ReadFile(o.spectrum)
	require.NoError(t, err)
	var dump spectrumFile
	require.NoError(t, json.Unmarshal(data, &dump))
	assert.Len(t, dump.Bins, spectrum.NumBins)
	assert.Positive(t, dump.Sequence)
}

func TestRenderFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "noise.wav")
	src := &audiofile.Audio{
		SampleRate: 44100,
		Channels:   [][]float64{testutil.DeterministicNoise(1, 0.25, 4410)},
	}
	require.NoError(t, audiofile.WriteWAV(in, src, 24))

	o := baseOptions(filepath.Join(dir, "out.wav"))
	o.in = in
	o.bits = 16

	require.NoError(t, run(context.Background(), o, quietLogger()))

	out, err := audiofile.Read(o.out)
	require.NoError(t, err)
	assert.Equal(t, 44100.0, out.SampleRate)
	testutil.RequireSliceNearlyEqual(t, out.Channels[0], src.Channels[0], 2.0/32768)
}

func TestRenderStopsOnCancel(t *testing.T) {
	o := baseOptions(filepath.Join(t.TempDir(), "never.wav"))
	o.signalType = "pink"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, run(ctx, o, quietLogger()), context.Canceled)
	assert.NoFileExists(t, o.out)
}
