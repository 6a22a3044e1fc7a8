// Command eqrender runs audio through the equalizer offline and writes the
// result as a WAV file.
//
// Usage:
//
//	eqrender [flags] -out file.wav
//
// The input is either a decoded file (-in) or the built-in test signal
// (-signal). Band settings come from a preset, individual -set overrides,
// or both; -set is applied last.
//
// Examples:
//
//	eqrender -in drums.wav -preset Punchy.json -out drums_eq.wav
//	eqrender -signal pink -duration 5 -set Gain3=6 -set Q3=2 -out pink.wav
//	eqrender -in vocal.flac -generate -analyzer ./PresetGenerator -out vocal_eq.wav
//	eqrender -signal sine -freq 1000 -set Gain3=12 -spectrum spectrum.json -out /dev/null
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-eq/dsp/core"
	eqsignal "github.com/cwbudde/algo-eq/dsp/signal"
	"github.com/cwbudde/algo-eq/dsp/spectrum"
	"github.com/cwbudde/algo-eq/engine"
	"github.com/cwbudde/algo-eq/internal/audiofile"
	"github.com/cwbudde/algo-eq/param"
	"github.com/cwbudde/algo-eq/preset"
)

// assignment is one -set ID=value flag.
type assignment struct {
	id    param.ID
	value float64
}

// assignments collects repeated -set flags.
type assignments []assignment

func (a *assignments) String() string {
	parts := make([]string, len(*a))
	for i, s := range *a {
		parts[i] = fmt.Sprintf("%s=%g", s.id, s.value)
	}

	return strings.Join(parts, ",")
}

func (a *assignments) Set(s string) error {
	id, raw, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(id) == "" {
		return fmt.Errorf("want ID=value, got %q", s)
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("value of %s: %w", id, err)
	}
	*a = append(*a, assignment{id: param.ID(strings.TrimSpace(id)), value: v})

	return nil
}

type options struct {
	in         string
	signalType string
	freq       float64
	amp        float64
	duration   float64
	rate       float64
	channels   int

	presetPath  string
	sets        assignments
	zeroLatency bool
	block       int

	out      string
	bits     int
	spectrum string

	analyzer string
	generate bool
	name     string

	verbose bool

	// explicit records the flags given on the command line.
	explicit map[string]bool
}

func main() {
	var o options
	flag.StringVar(&o.in, "in", "", "input audio file (wav, aiff, mp3, ogg, flac)")
	flag.StringVar(&o.signalType, "signal", "", "test signal instead of -in: sine, white or pink")
	flag.Float64Var(&o.freq, "freq", eqsignal.DefaultFrequency, "test signal frequency in Hz")
	flag.Float64Var(&o.amp, "amp", eqsignal.DefaultAmplitude, "test signal amplitude (0..1)")
	flag.Float64Var(&o.duration, "duration", 2, "test signal length in seconds")
	flag.Float64Var(&o.rate, "rate", 48000, "test signal sample rate in Hz")
	flag.IntVar(&o.channels, "channels", 2, "test signal channel count")
	flag.StringVar(&o.presetPath, "preset", "", "preset file to load")
	flag.Var(&o.sets, "set", "parameter override ID=value in plain units, repeatable (e.g. Gain3=6)")
	flag.BoolVar(&o.zeroLatency, "zero-latency", true, "process at the host rate instead of 2x oversampled")
	flag.IntVar(&o.block, "block", 512, "processing block size in samples")
	flag.StringVar(&o.out, "out", "", "output WAV file")
	flag.IntVar(&o.bits, "bits", 24, "output bit depth (16 or 24)")
	flag.StringVar(&o.spectrum, "spectrum", "", "write the final analyzer snapshot as JSON to this file")
	flag.StringVar(&o.analyzer, "analyzer", "", "preset analyzer executable (default: search next to eqrender)")
	flag.BoolVar(&o.generate, "generate", false, "generate a preset from -in with the analyzer and apply it")
	flag.StringVar(&o.name, "name", "", "name of the generated preset (default: input base name)")
	flag.BoolVar(&o.verbose, "v", false, "verbose logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: eqrender [flags] -out file.wav\n\n")
		fmt.Fprintf(os.Stderr, "Runs audio through the seven-band equalizer and writes a WAV file.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nParameters: Frequency0..6, Gain0..6, Q0..6, ZeroLatency\n")
	}
	flag.Parse()

	o.explicit = make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { o.explicit[f.Name] = true })

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetLevel(logrus.InfoLevel)
	if o.verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, o, logger); err != nil {
		logger.WithError(err).Error("render failed")
		stop()
		os.Exit(1)
	}
}

func (o *options) validate() error {
	switch {
	case o.out == "":
		return errors.New("-out is required")
	case (o.in == "") == (o.signalType == ""):
		return errors.New("exactly one of -in and -signal is required")
	case o.generate && o.in == "":
		return errors.New("-generate needs -in")
	case o.block < 1:
		return fmt.Errorf("-block %d must be positive", o.block)
	case o.bits != 16 && o.bits != 24:
		return fmt.Errorf("-bits %d must be 16 or 24", o.bits)
	}

	return nil
}

func run(ctx context.Context, o options, logger *logrus.Logger) error {
	if err := o.validate(); err != nil {
		return err
	}

	eq, err := engine.New(engine.WithLogger(logger))
	if err != nil {
		return err
	}
	defer eq.Close()

	buf, err := loadInput(eq, o)
	if err != nil {
		return err
	}

	if o.generate {
		gen := &preset.Generator{Executable: o.analyzer, OutputDir: filepath.Dir(o.out)}
		if err := eq.GeneratePreset(ctx, gen, o.in, o.name); err != nil {
			return err
		}
	}
	if o.presetPath != "" {
		if _, err := eq.LoadPreset(o.presetPath); err != nil {
			return err
		}
	}
	if err := applyOverrides(eq.Parameters(), o); err != nil {
		return err
	}

	cfg := core.ApplyProcessorOptions(
		core.WithSampleRate(buf.SampleRate),
		core.WithBlockSize(o.block),
		core.WithChannels(buf.NumChannels()),
	)
	if err := eq.PrepareConfig(cfg); err != nil {
		return err
	}

	inPeak := peakDB(buf.Channels)
	if err := render(ctx, eq, buf.Channels, o.block); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"preset":      eq.PresetName(),
		"frames":      buf.NumFrames(),
		"seconds":     buf.Duration(),
		"latency":     eq.LatencySamples(),
		"inPeakDB":    round2(inPeak),
		"outPeakDB":   round2(peakDB(buf.Channels)),
		"spectrumSeq": eq.Spectrum().Sequence,
	}).Info("rendered")

	if err := audiofile.WriteWAV(o.out, buf, o.bits); err != nil {
		return err
	}
	if o.spectrum != "" {
		if err := writeSpectrum(o.spectrum, eq, buf.SampleRate); err != nil {
			return err
		}
	}

	return nil
}

// loadInput decodes -in or allocates silence that the engine's test signal
// fills while rendering.
func loadInput(eq *engine.Engine, o options) (*audiofile.Audio, error) {
	if o.in != "" {
		return audiofile.Read(o.in)
	}

	typ, err := eqsignal.ParseType(o.signalType)
	if err != nil {
		return nil, err
	}
	if !(o.rate > 0) || !(o.duration > 0) || o.channels < 1 {
		return nil, fmt.Errorf("invalid test signal: rate=%v duration=%v channels=%d", o.rate, o.duration, o.channels)
	}

	eq.TestSignal().Apply(eqsignal.Settings{
		Enabled:   true,
		Type:      typ,
		Frequency: o.freq,
		Amplitude: o.amp,
	})

	frames := int(math.Round(o.duration * o.rate))
	a := &audiofile.Audio{SampleRate: o.rate, Channels: make([][]float64, o.channels)}
	for ch := range a.Channels {
		a.Channels[ch] = make([]float64, frames)
	}

	return a, nil
}

func applyOverrides(store *param.Store, o options) error {
	if o.explicit["zero-latency"] {
		store.SetZeroLatency(o.zeroLatency)
	}

	for _, s := range o.sets {
		if err := store.Set(s.id, s.value); err != nil {
			return fmt.Errorf("-set %s: %w", s.id, err)
		}
	}

	return nil
}

// render feeds the channels through eq one block at a time so that an
// interrupt stops the render between blocks.
func render(ctx context.Context, eq *engine.Engine, channels [][]float64, block int) error {
	total := len(channels[0])
	view := make([][]float64, len(channels))

	for off := 0; off < total; off += block {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := min(off+block, total)
		for ch := range channels {
			view[ch] = channels[ch][off:end]
		}
		eq.ProcessBlock(view)
	}

	return nil
}

type spectrumBin struct {
	Frequency float64 `json:"frequency"`
	LevelDB   float64 `json:"levelDb"`
}

type spectrumFile struct {
	SampleRate float64       `json:"sampleRate"`
	Sequence   uint64        `json:"sequence"`
	Bins       []spectrumBin `json:"bins"`
}

func writeSpectrum(path string, eq *engine.Engine, sampleRate float64) error {
	snap := eq.Spectrum()

	out := spectrumFile{
		SampleRate: sampleRate,
		Sequence:   snap.Sequence,
		Bins:       make([]spectrumBin, spectrum.NumBins),
	}
	for k, v := range snap.MagnitudesDB {
		out.Bins[k] = spectrumBin{Frequency: spectrum.BinFrequency(k, sampleRate), LevelDB: v}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

func peakDB(channels [][]float64) float64 {
	peak := 0.0
	for _, ch := range channels {
		for _, x := range ch {
			peak = math.Max(peak, math.Abs(x))
		}
	}
	if peak == 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(peak)
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
