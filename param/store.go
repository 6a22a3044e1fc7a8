package param

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/cwbudde/algo-eq/dsp/filter/parametric"
)

// NumParameters is the size of the parameter surface.
const NumParameters = 3*parametric.NumBands + 1

// ErrUnknownParameter is returned for IDs that are not part of the surface.
var ErrUnknownParameter = errors.New("param: unknown parameter")

// Listener is notified after every change of a parameter value.
type Listener interface {
	ParameterChanged(id ID, normalized float64)
}

// BatchListener is additionally told when the outermost batch ends.
type BatchListener interface {
	Listener
	BatchCompleted()
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(id ID, normalized float64)

func (f ListenerFunc) ParameterChanged(id ID, normalized float64) { f(id, normalized) }

// Store owns the parameter surface.
type Store struct {
	params []*Parameter
	index  map[ID]*Parameter

	version atomic.Uint64
	loading atomic.Bool

	mu         sync.Mutex
	batchDepth int
	listeners  map[int]Listener
	nextToken  int
}

// NewStore creates a store with every parameter at its default.
func NewStore() *Store {
	s := &Store{
		params:    newLayout(),
		listeners: make(map[int]Listener),
	}

	s.index = make(map[ID]*Parameter, len(s.params))
	for _, p := range s.params {
		s.index[p.id] = p
	}

	return s
}

// Parameter returns the parameter with the given ID.
func (s *Store) Parameter(id ID) (*Parameter, error) {
	p, ok := s.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownParameter, id)
	}

	return p, nil
}

// Parameters returns all parameters in host order.
func (s *Store) Parameters() []*Parameter {
	return append([]*Parameter(nil), s.params...)
}

// Version increases with every change. The audio goroutine compares it
// against the last value it acted on.
func (s *Store) Version() uint64 {
	return s.version.Load()
}

// Loading reports whether a batch is in progress.
func (s *Store) Loading() bool {
	return s.loading.Load()
}

// SetNormalized writes a normalized value. Values are clamped to [0, 1];
// NaN leaves the parameter unchanged.
func (s *Store) SetNormalized(id ID, v float64) error {
	p, err := s.Parameter(id)
	if err != nil {
		return err
	}
	if math.IsNaN(v) {
		return nil
	}

	s.write(p, p.quantize(math.Max(0, math.Min(1, v))))

	return nil
}

// Set writes a physical value, clamped to the parameter's range. NaN leaves
// the parameter unchanged.
func (s *Store) Set(id ID, value float64) error {
	p, err := s.Parameter(id)
	if err != nil {
		return err
	}
	if math.IsNaN(value) {
		return nil
	}

	s.write(p, p.Normalize(value))

	return nil
}

func (s *Store) write(p *Parameter, v float64) {
	if !p.store(v) {
		return
	}
	s.version.Add(1)

	for _, l := range s.snapshotListeners() {
		l.ParameterChanged(p.id, v)
	}
}

// Band returns the physical settings of band i.
func (s *Store) Band(i int) (parametric.Band, error) {
	if i < 0 || i >= parametric.NumBands {
		return parametric.Band{}, fmt.Errorf("param: %w: %d", parametric.ErrBandIndex, i)
	}

	return parametric.Band{
		Frequency: s.params[i].Value(),
		Gain:      s.params[parametric.NumBands+i].Value(),
		Q:         s.params[2*parametric.NumBands+i].Value(),
	}, nil
}

// Bands returns the physical settings of all bands.
func (s *Store) Bands() [parametric.NumBands]parametric.Band {
	var out [parametric.NumBands]parametric.Band
	for i := range out {
		out[i], _ = s.Band(i)
	}

	return out
}

// SetBand writes all three settings of band i as one batch.
func (s *Store) SetBand(i int, b parametric.Band) error {
	if i < 0 || i >= parametric.NumBands {
		return fmt.Errorf("param: %w: %d", parametric.ErrBandIndex, i)
	}

	s.Batch(func() {
		_ = s.Set(FrequencyID(i), b.Frequency)
		_ = s.Set(GainID(i), b.Gain)
		_ = s.Set(QID(i), b.Q)
	})

	return nil
}

// ZeroLatency reports the processing mode.
func (s *Store) ZeroLatency() bool {
	return s.index[ZeroLatencyID].Bool()
}

// SetZeroLatency switches the processing mode.
func (s *Store) SetZeroLatency(on bool) {
	v := 0.0
	if on {
		v = 1
	}
	s.write(s.index[ZeroLatencyID], v)
}

// Values returns every normalized value keyed by ID.
func (s *Store) Values() map[ID]float64 {
	out := make(map[ID]float64, len(s.params))
	for _, p := range s.params {
		out[p.id] = p.Normalized()
	}

	return out
}

// ResetToDefaults restores every default as one batch.
func (s *Store) ResetToDefaults() {
	s.Batch(func() {
		for _, p := range s.params {
			s.write(p, p.defNorm)
		}
	})
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) (cancel func()) {
	s.mu.Lock()
	token := s.nextToken
	s.nextToken++
	s.listeners[token] = l
	s.mu.Unlock()

	var once sync.Once

	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, token)
			s.mu.Unlock()
		})
	}
}

// BeginBatch raises the loading flag. Batches nest.
func (s *Store) BeginBatch() {
	s.mu.Lock()
	s.batchDepth++
	s.loading.Store(true)
	s.mu.Unlock()
}

// EndBatch closes a batch. When the outermost batch ends the loading flag is
// cleared and every BatchListener is told once, whether or not any value
// changed.
func (s *Store) EndBatch() {
	s.mu.Lock()
	if s.batchDepth == 0 {
		s.mu.Unlock()
		return
	}
	s.batchDepth--
	done := s.batchDepth == 0
	if done {
		s.loading.Store(false)
	}
	s.mu.Unlock()

	if !done {
		return
	}

	for _, l := range s.snapshotListeners() {
		if bl, ok := l.(BatchListener); ok {
			bl.BatchCompleted()
		}
	}
}

// Batch runs fn between BeginBatch and EndBatch.
func (s *Store) Batch(fn func()) {
	s.BeginBatch()
	defer s.EndBatch()

	fn()
}

func (s *Store) snapshotListeners() []Listener {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Listener, 0, len(s.listeners))
	for token := range s.nextToken {
		if l, ok := s.listeners[token]; ok {
			out = append(out, l)
		}
	}

	return out
}
