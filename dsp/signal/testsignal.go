package signal

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"

	"github.com/cwbudde/algo-eq/dsp/core"
)

// Type selects the waveform of a TestSignal.
type Type int

const (
	Sine Type = iota
	WhiteNoise
	PinkNoise
)

// Test signal limits and defaults.
const (
	MinFrequency     = 20.0
	MaxFrequency     = 20000.0
	DefaultFrequency = 440.0
	DefaultAmplitude = 0.5
)

var typeNames = map[Type]string{
	Sine:       "sine",
	WhiteNoise: "white",
	PinkNoise:  "pink",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}

	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType parses "sine", "white" or "pink" (case-insensitive). The long
// forms "white-noise" and "pink-noise" are accepted as well.
func ParseType(name string) (Type, error) {
	name = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), "-noise")
	for t, n := range typeNames {
		if n == name {
			return t, nil
		}
	}

	return Sine, fmt.Errorf("signal: unknown test signal type %q", name)
}

// MarshalText encodes t by name.
func (t Type) MarshalText() ([]byte, error) {
	if _, ok := typeNames[t]; !ok {
		return nil, fmt.Errorf("signal: invalid test signal type %d", int(t))
	}

	return []byte(t.String()), nil
}

// UnmarshalText decodes a name accepted by ParseType.
func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed

	return nil
}

// Settings is a copy of the user-facing state of a TestSignal.
type Settings struct {
	Enabled   bool    `json:"enabled"`
	Type      Type    `json:"type"`
	Frequency float64 `json:"frequency"`
	Amplitude float64 `json:"amplitude"`
}

// DefaultSettings returns a disabled 440 Hz sine at half scale.
func DefaultSettings() Settings {
	return Settings{
		Type:      Sine,
		Frequency: DefaultFrequency,
		Amplitude: DefaultAmplitude,
	}
}

// Option configures a TestSignal.
type Option func(*TestSignal)

// WithSeed sets the seed of the noise source.
func WithSeed(seed int64) Option {
	return func(s *TestSignal) {
		s.seed = seed
	}
}

// WithSettings sets the initial settings. Values are clamped as by the
// individual setters.
func WithSettings(st Settings) Option {
	return func(s *TestSignal) {
		s.settings = sanitizeSettings(st, s.settings)
	}
}

// TestSignal is a mutex-guarded sine/noise source that overwrites the input
// of the equalizer when enabled.
type TestSignal struct {
	mu         sync.Mutex
	settings   Settings
	sampleRate float64
	phase      float64
	seed       int64
	rng        *rand.Rand
	pink       pinkFilter
}

// NewTestSignal creates a disabled test signal. Generate produces nothing
// until a sample rate is set.
func NewTestSignal(opts ...Option) *TestSignal {
	s := &TestSignal{
		settings: DefaultSettings(),
		seed:     1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.rng = rand.New(rand.NewSource(s.seed))

	return s
}

// SetEnabled switches the signal on or off. Enabling restarts the sine at
// phase zero.
func (s *TestSignal) SetEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if enabled && !s.settings.Enabled {
		s.phase = 0
	}
	s.settings.Enabled = enabled
}

// Enabled reports whether Generate overwrites its input.
func (s *TestSignal) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.settings.Enabled
}

// SetFrequency sets the sine frequency, clamped to [MinFrequency,
// MaxFrequency]. NaN is ignored.
func (s *TestSignal) SetFrequency(hz float64) {
	if math.IsNaN(hz) {
		return
	}

	s.mu.Lock()
	s.settings.Frequency = core.Clamp(hz, MinFrequency, MaxFrequency)
	s.mu.Unlock()
}

// SetAmplitude sets the output amplitude, clamped to [0, 1]. NaN is ignored.
func (s *TestSignal) SetAmplitude(amp float64) {
	if math.IsNaN(amp) {
		return
	}

	s.mu.Lock()
	s.settings.Amplitude = core.Clamp(amp, 0, 1)
	s.mu.Unlock()
}

// SetType selects the waveform. Out-of-range values are clamped to the
// nearest valid type.
func (s *TestSignal) SetType(t Type) {
	s.mu.Lock()
	s.settings.Type = clampType(t)
	s.mu.Unlock()
}

// SetSampleRate sets the rate the sine phase advances at.
func (s *TestSignal) SetSampleRate(sampleRate float64) error {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("signal: sample rate must be > 0: %v", sampleRate)
	}

	s.mu.Lock()
	s.sampleRate = sampleRate
	s.mu.Unlock()

	return nil
}

// Reset restarts the sine phase, the pink filter and the noise sequence.
// Settings are kept.
func (s *TestSignal) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.phase = 0
	s.pink.reset()
	s.rng.Seed(s.seed)
}

// Settings returns a copy of the current settings.
func (s *TestSignal) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.settings
}

// Apply replaces all settings at once.
func (s *TestSignal) Apply(st Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st.Enabled && !s.settings.Enabled {
		s.phase = 0
	}
	s.settings = sanitizeSettings(st, s.settings)
}

// Generate overwrites the first n samples of every channel with the same
// signal and reports whether it did. It does nothing when the signal is
// disabled or no sample rate is set. n is limited to the shortest channel.
func (s *TestSignal) Generate(channels [][]float64, n int) bool {
	if len(channels) == 0 || n <= 0 {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.settings.Enabled || s.sampleRate <= 0 {
		return false
	}

	for _, ch := range channels {
		n = min(n, len(ch))
	}

	out := channels[0][:n]
	amp := s.settings.Amplitude

	switch s.settings.Type {
	case WhiteNoise:
		for i := range out {
			out[i] = s.white() * amp
		}
	case PinkNoise:
		for i := range out {
			out[i] = s.pink.next(s.white()) * amp
		}
	default:
		inc := 2 * math.Pi * s.settings.Frequency / s.sampleRate
		for i := range out {
			out[i] = math.Sin(s.phase) * amp
			s.phase += inc
			if s.phase >= 2*math.Pi {
				s.phase -= 2 * math.Pi
			}
		}
	}

	for _, ch := range channels[1:] {
		copy(ch[:n], out)
	}

	return true
}

func (s *TestSignal) white() float64 {
	return s.rng.Float64()*2 - 1
}

func clampType(t Type) Type {
	return Type(min(max(int(t), int(Sine)), int(PinkNoise)))
}

func sanitizeSettings(st, prev Settings) Settings {
	out := Settings{
		Enabled:   st.Enabled,
		Type:      clampType(st.Type),
		Frequency: prev.Frequency,
		Amplitude: prev.Amplitude,
	}
	if !math.IsNaN(st.Frequency) {
		out.Frequency = core.Clamp(st.Frequency, MinFrequency, MaxFrequency)
	}
	if !math.IsNaN(st.Amplitude) {
		out.Amplitude = core.Clamp(st.Amplitude, 0, 1)
	}

	return out
}
