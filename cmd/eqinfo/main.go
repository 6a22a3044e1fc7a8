// Command eqinfo prints the band settings and magnitude response of an
// equalizer configuration.
//
// Usage:
//
//	eqinfo [flags]
//
// The response is evaluated from the coefficients at log-spaced
// frequencies. With -measure each frequency is additionally run through the
// engine as a sine and its output level measured with a Goertzel filter.
//
// Examples:
//
//	eqinfo -preset Punchy.json
//	eqinfo -preset Punchy.json -zero-latency=false -points 61
//	eqinfo -rate 44100 -measure
package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"text/tabwriter"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-eq/dsp/filter/parametric"
	eqsignal "github.com/cwbudde/algo-eq/dsp/signal"
	"github.com/cwbudde/algo-eq/dsp/spectrum"
	"github.com/cwbudde/algo-eq/engine"
)

const (
	measureBlock     = 512
	measureAmplitude = 0.5
	measureSettle    = 0.2 // seconds
	measureWindow    = 0.1 // seconds
)

type options struct {
	preset      string
	rate        float64
	zeroLatency bool
	points      int
	measure     bool
}

func main() {
	var o options
	flag.StringVar(&o.preset, "preset", "", "preset file to load")
	flag.Float64Var(&o.rate, "rate", 48000, "sample rate in Hz")
	flag.BoolVar(&o.zeroLatency, "zero-latency", true, "evaluate the zero-latency path instead of the oversampled one")
	flag.IntVar(&o.points, "points", 31, "number of log-spaced response points between 20 Hz and 20 kHz")
	flag.BoolVar(&o.measure, "measure", false, "also measure the processed level of a sine at every point")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: eqinfo [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Prints band settings and the magnitude response of the equalizer.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)

	if err := run(os.Stdout, o, logger); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(w io.Writer, o options, logger *logrus.Logger) error {
	if o.points < 2 {
		return fmt.Errorf("points must be at least 2, got %d", o.points)
	}

	eq, err := engine.New(engine.WithLogger(logger))
	if err != nil {
		return err
	}
	defer eq.Close()

	if o.preset != "" {
		if _, err := eq.LoadPreset(o.preset); err != nil {
			return err
		}
	}
	eq.Parameters().SetZeroLatency(o.zeroLatency)

	if err := eq.Prepare(o.rate, measureBlock, 1); err != nil {
		return err
	}

	if err := printBands(w, eq); err != nil {
		return err
	}
	fmt.Fprintln(w)

	freqs := logSpace(parametric.MinFrequency, math.Min(parametric.MaxFrequency, 0.45*o.rate), o.points)

	return printResponse(w, eq, freqs, o.rate, o.measure)
}

func printBands(w io.Writer, eq *engine.Engine) error {
	snap := eq.Coefficients()

	fmt.Fprintf(w, "Preset: %s   Latency: %d samples   Design rate: %.0f Hz\n\n",
		eq.PresetName(), eq.LatencySamples(), snap.SampleRate)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Band\tType\tFrequency [Hz]\tGain [dB]\tQ\tPeak [dB]\n")
	fmt.Fprintf(tw, "----\t----\t--------------\t---------\t-\t---------\n")
	for i, b := range snap.Bands {
		fmt.Fprintf(tw, "%d\t%s\t%.1f\t%+.2f\t%.3f\t%+.2f\n",
			i, parametric.RoleOf(i), b.Frequency, b.Gain, b.Q, snap.BandMagnitudeDB(i, b.Frequency))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}

	return nil
}

func printResponse(w io.Writer, eq *engine.Engine, freqs []float64, rate float64, measure bool) error {
	response := eq.ResponseDB(freqs, nil)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if measure {
		fmt.Fprintf(tw, "Frequency [Hz]\tResponse [dB]\tMeasured [dB]\tError [dB]\n")
		fmt.Fprintf(tw, "--------------\t-------------\t-------------\t----------\n")
	} else {
		fmt.Fprintf(tw, "Frequency [Hz]\tResponse [dB]\n")
		fmt.Fprintf(tw, "--------------\t-------------\n")
	}

	for i, f := range freqs {
		if !measure {
			fmt.Fprintf(tw, "%.1f\t%+.3f\n", f, response[i])
			continue
		}

		got, err := measureLevel(eq, f, rate)
		if err != nil {
			return fmt.Errorf("measure %.1f Hz: %w", f, err)
		}
		fmt.Fprintf(tw, "%.1f\t%+.3f\t%+.3f\t%+.3f\n", f, response[i], got, got-response[i])
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}

	return nil
}

// measureLevel runs a sine at freq through eq and returns the gain in dB
// over a window of whole periods taken after the filters have settled.
func measureLevel(eq *engine.Engine, freq, rate float64) (float64, error) {
	if err := eq.Prepare(rate, measureBlock, 1); err != nil {
		return 0, err
	}

	ts := eq.TestSignal()
	ts.Apply(eqsignal.Settings{
		Enabled:   true,
		Type:      eqsignal.Sine,
		Frequency: freq,
		Amplitude: measureAmplitude,
	})
	defer ts.SetEnabled(false)

	cycles := math.Max(4, math.Round(freq*measureWindow))
	window := int(math.Round(cycles * rate / freq))
	total := int(measureSettle*rate) + window

	out := make([]float64, total)
	for off := 0; off < total; off += measureBlock {
		eq.ProcessBlock([][]float64{out[off:min(off+measureBlock, total)]})
	}

	level, err := spectrum.ToneLevelDB(out[total-window:], freq, rate)
	if err != nil {
		return 0, err
	}

	return level - 20*math.Log10(measureAmplitude), nil
}

func logSpace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	ratio := math.Log(hi / lo)
	for i := range out {
		out[i] = lo * math.Exp(ratio*float64(i)/float64(n-1))
	}

	return out
}
