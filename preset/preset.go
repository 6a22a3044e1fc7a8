package preset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cwbudde/algo-eq/dsp/filter/parametric"
	"github.com/cwbudde/algo-eq/param"
)

const (
	// MetadataKey is the JSON key of the optional metadata object.
	MetadataKey = "Metadata"
	// CreatedBy is stamped into the metadata of saved presets.
	CreatedBy = "EQPlugin"
	// DateLayout is the layout of Metadata.CreationDate.
	DateLayout = "2006-01-02 15:04:05"
	// Extension is the file extension of preset files.
	Extension = ".json"
)

var (
	// ErrInvalidPreset is returned for files that are not a flat JSON object
	// of numbers plus optional metadata.
	ErrInvalidPreset = errors.New("preset: invalid preset")
	// ErrAnalyzerNotFound is returned when the analyzer executable is missing.
	ErrAnalyzerNotFound = errors.New("preset: analyzer executable not found")
	// ErrGeneratorFailed is returned when the analyzer exits with an error or
	// times out.
	ErrGeneratorFailed = errors.New("preset: generator failed")
	// ErrPresetNotCreated is returned when the analyzer ran but no preset file
	// can be found.
	ErrPresetNotCreated = errors.New("preset: preset file not created")
)

// now is replaced in tests.
var now = time.Now

// Metadata describes the audio a preset was derived from.
type Metadata struct {
	CreatedBy        string     `json:"CreatedBy,omitempty"`
	TransientDensity float64    `json:"TransientDensity"`
	FrequencyRange   [2]float64 `json:"FrequencyRange"`
	SourceFile       string     `json:"SourceFile,omitempty"`
	CreationDate     string     `json:"CreationDate,omitempty"`
	SpectralBalance  []float64  `json:"SpectralBalance,omitempty"`
}

// DefaultMetadata returns metadata covering the full audio band.
func DefaultMetadata() Metadata {
	return Metadata{FrequencyRange: [2]float64{parametric.MinFrequency, parametric.MaxFrequency}}
}

// Preset is a decoded preset file.
type Preset struct {
	// Name is the file base name without extension. It is not serialized.
	Name     string
	Values   map[string]float64
	Metadata *Metadata
}

// Decode reads a preset from r.
func Decode(r io.Reader) (*Preset, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPreset, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: not an object", ErrInvalidPreset)
	}

	p := &Preset{Values: make(map[string]float64, len(raw))}
	for key, msg := range raw {
		if key == MetadataKey {
			if bytes.Equal(bytes.TrimSpace(msg), []byte("null")) {
				continue
			}

			meta := DefaultMetadata()
			if err := json.Unmarshal(msg, &meta); err != nil {
				return nil, fmt.Errorf("%w: metadata: %w", ErrInvalidPreset, err)
			}
			p.Metadata = &meta

			continue
		}

		var v float64
		if err := json.Unmarshal(msg, &v); err != nil {
			return nil, fmt.Errorf("%w: key %q: %w", ErrInvalidPreset, key, err)
		}
		p.Values[key] = v
	}

	return p, nil
}

// Encode writes p as an indented flat JSON object. Parameter keys come in
// band order, followed by ZeroLatency, any other keys sorted, and Metadata.
func Encode(w io.Writer, p *Preset) error {
	var buf bytes.Buffer
	buf.WriteString("{")

	first := true
	writeKey := func(key string, v any) error {
		data, err := json.MarshalIndent(v, "  ", "  ")
		if err != nil {
			return fmt.Errorf("preset: encode %q: %w", key, err)
		}
		if !first {
			buf.WriteString(",")
		}
		first = false

		name, _ := json.Marshal(key)
		fmt.Fprintf(&buf, "\n  %s: %s", name, data)

		return nil
	}

	for _, key := range orderedKeys(p.Values) {
		if err := writeKey(key, p.Values[key]); err != nil {
			return err
		}
	}
	if p.Metadata != nil {
		if err := writeKey(MetadataKey, p.Metadata); err != nil {
			return err
		}
	}

	buf.WriteString("\n}\n")

	_, err := w.Write(buf.Bytes())

	return err
}

func orderedKeys(values map[string]float64) []string {
	keys := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))

	known := make([]string, 0, param.NumParameters)
	for i := range parametric.NumBands {
		known = append(known, string(param.FrequencyID(i)), string(param.GainID(i)), string(param.QID(i)))
	}
	known = append(known, string(param.ZeroLatencyID))

	for _, key := range known {
		if _, ok := values[key]; ok {
			keys = append(keys, key)
			seen[key] = true
		}
	}

	var rest []string
	for key := range values {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)

	return append(keys, rest...)
}

// Load reads the preset at path. Name is set to the file base name.
func Load(path string) (*Preset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("preset: open: %w", err)
	}
	defer f.Close()

	p, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	p.Name = baseName(path)

	return p, nil
}

// Save writes p to path, creating the directory when needed. If p carries
// metadata, CreatedBy is stamped and an empty CreationDate is set to the
// current time. On success p.Name becomes the file base name.
func Save(path string, p *Preset) error {
	if p.Metadata != nil {
		p.Metadata.CreatedBy = CreatedBy
		if p.Metadata.CreationDate == "" {
			p.Metadata.CreationDate = now().Format(DateLayout)
		}
	}

	var buf bytes.Buffer
	if err := Encode(&buf, p); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("preset: create directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("preset: write: %w", err)
	}
	p.Name = baseName(path)

	return nil
}

func baseName(path string) string {
	base := filepath.Base(path)

	return strings.TrimSuffix(base, filepath.Ext(base))
}
