package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-eq/dsp/signal"
	"github.com/cwbudde/algo-eq/param"
	"github.com/cwbudde/algo-eq/preset"
)

// ErrInvalidState is returned by LoadState for unreadable blobs.
var ErrInvalidState = errors.New("engine: invalid state")

const stateFormat = 1

// hostState is the blob a host stores with a session.
type hostState struct {
	Format     int                `json:"format"`
	PresetName string             `json:"presetName"`
	TestSignal signal.Settings    `json:"testSignal"`
	Parameters map[string]float64 `json:"parameters"`
}

// SaveState writes the preset name, test-signal settings and every
// normalized parameter as JSON.
func (e *Engine) SaveState(w io.Writer) error {
	st := hostState{
		Format:     stateFormat,
		PresetName: e.PresetName(),
		TestSignal: e.signal.Settings(),
		Parameters: make(map[string]float64, param.NumParameters),
	}
	for id, v := range e.params.Values() {
		st.Parameters[string(id)] = v
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(st); err != nil {
		return fmt.Errorf("engine: save state: %w", err)
	}

	return nil
}

// LoadState restores a blob written by SaveState. Parameters are written as
// one batch; unknown keys are ignored.
func (e *Engine) LoadState(r io.Reader) error {
	var st hostState
	if err := json.NewDecoder(r).Decode(&st); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	if st.Format != stateFormat {
		return fmt.Errorf("%w: format %d", ErrInvalidState, st.Format)
	}

	ignored := 0
	e.params.Batch(func() {
		for key, v := range st.Parameters {
			if err := e.params.SetNormalized(param.ID(key), v); err != nil {
				ignored++
			}
		}
	})

	e.signal.Apply(st.TestSignal)
	e.setPreset(st.PresetName, nil)

	e.log.WithFields(logrus.Fields{
		"preset":  st.PresetName,
		"ignored": ignored,
	}).Info("state restored")

	return nil
}

// PresetName returns the name of the last loaded or saved preset.
func (e *Engine) PresetName() string {
	e.presetMu.Lock()
	defer e.presetMu.Unlock()

	return e.presetName
}

// PresetMetadata returns a copy of the metadata of the last loaded preset,
// or nil.
func (e *Engine) PresetMetadata() *preset.Metadata {
	e.presetMu.Lock()
	defer e.presetMu.Unlock()

	if e.presetMeta == nil {
		return nil
	}
	m := *e.presetMeta
	m.SpectralBalance = append([]float64(nil), m.SpectralBalance...)

	return &m
}

func (e *Engine) setPreset(name string, meta *preset.Metadata) {
	e.presetMu.Lock()
	e.presetName = name
	e.presetMeta = meta
	e.presetMu.Unlock()
}

// LoadPreset reads and applies the preset at path.
func (e *Engine) LoadPreset(path string) (preset.Report, error) {
	p, err := preset.Load(path)
	if err != nil {
		return preset.Report{}, err
	}

	rep := preset.Apply(e.params, p)
	e.setPreset(p.Name, p.Metadata)

	e.log.WithFields(logrus.Fields{
		"preset":    p.Name,
		"written":   rep.Written,
		"qAdjusted": len(rep.Q),
		"fAdjusted": len(rep.Frequency),
		"ignored":   strings.Join(rep.Ignored, ","),
	}).Info("preset loaded")

	return rep, nil
}

// SavePreset writes the current parameters to path together with the
// metadata of the loaded preset, or default metadata when none was loaded.
func (e *Engine) SavePreset(path string) error {
	meta := e.PresetMetadata()
	if meta == nil {
		m := preset.DefaultMetadata()
		meta = &m
	}

	p := preset.Capture(e.params, meta)
	if err := preset.Save(path, p); err != nil {
		return err
	}
	e.setPreset(p.Name, p.Metadata)

	e.log.WithField("path", path).Info("preset saved")

	return nil
}

// GeneratePreset runs the external analyzer on audioFile and loads the
// result. The preset is named name, or after the audio file when name is
// empty.
func (e *Engine) GeneratePreset(ctx context.Context, gen *preset.Generator, audioFile, name string) error {
	g := *gen
	if g.Logger == nil {
		g.Logger = e.log
	}

	path, err := g.Generate(ctx, audioFile, name)
	if err != nil {
		e.log.WithError(err).WithField("audio", audioFile).Warn("preset generation failed")
		return err
	}

	if _, err := e.LoadPreset(path); err != nil {
		return err
	}

	if name == "" {
		base := filepath.Base(audioFile)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	e.presetMu.Lock()
	e.presetName = name
	e.presetMu.Unlock()

	return nil
}
