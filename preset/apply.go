package preset

import (
	"math"

	"github.com/cwbudde/algo-eq/dsp/core"
	"github.com/cwbudde/algo-eq/dsp/filter/parametric"
	"github.com/cwbudde/algo-eq/param"
)

// Load-time Q rules.
var qCaps = [parametric.NumBands]float64{0.8, 1.0, 1.2, 1.5, 1.8, 2.0, 1.5}

const (
	highGainDB     = 10.0
	highGainFactor = 0.7
	moderateGainDB = 6.0
	moderateFactor = 0.85
	lowBandFloorHz = 30.0
	lowBandRatio   = 0.8
	highBandCeilHz = 18000.0
	highBandRatio  = 1.2
)

// QCap returns the largest Q a preset may set on band i.
func QCap(i int) float64 {
	if i < 0 || i >= parametric.NumBands {
		return parametric.MaxQ
	}

	return qCaps[i]
}

// AdjustQ applies the load-time rules to q on band i: cap per band, then
// widen for large gains, then clamp to the global Q limits.
func AdjustQ(i int, q, gainDB float64, haveGain bool) float64 {
	q = math.Min(q, QCap(i))

	if haveGain {
		switch g := math.Abs(gainDB); {
		case g > highGainDB:
			q *= highGainFactor
		case g > moderateGainDB:
			q *= moderateFactor
		}
	}

	return core.Clamp(q, parametric.MinQ, parametric.MaxQ)
}

// Adjustment records one value changed by the load rules.
type Adjustment struct {
	Band int
	From float64
	To   float64
}

// Report describes what Apply did.
type Report struct {
	Written   int
	Ignored   []string
	Frequency []Adjustment
	Q         []Adjustment
}

// Apply writes the values of p into store as one batch. Frequency of the
// shelf bands may be moved towards the analyzed frequency range and Q is
// limited per band; all other values are written as stored.
func Apply(store *param.Store, p *Preset) Report {
	var rep Report

	store.Batch(func() {
		known := make(map[string]bool, param.NumParameters)

		for i := range parametric.NumBands {
			fid, gid, qid := param.FrequencyID(i), param.GainID(i), param.QID(i)
			known[string(fid)], known[string(gid)], known[string(qid)] = true, true, true

			if v, ok := p.Values[string(fid)]; ok {
				v = adjustFrequency(store, i, v, p.Metadata, &rep)
				rep.write(store, fid, v)
			}

			gv, haveGain := p.Values[string(gid)]
			if haveGain {
				rep.write(store, gid, gv)
			}

			if v, ok := p.Values[string(qid)]; ok {
				qp, _ := store.Parameter(qid)
				gp, _ := store.Parameter(gid)

				q := qp.Denormalize(v)
				adj := AdjustQ(i, q, gp.Denormalize(gv), haveGain)
				if adj != q {
					rep.Q = append(rep.Q, Adjustment{Band: i, From: q, To: adj})
					v = qp.Normalize(adj)
				}
				rep.write(store, qid, v)
			}
		}

		known[string(param.ZeroLatencyID)] = true
		if v, ok := p.Values[string(param.ZeroLatencyID)]; ok {
			rep.write(store, param.ZeroLatencyID, v)
		}

		for _, key := range orderedKeys(p.Values) {
			if !known[key] {
				rep.Ignored = append(rep.Ignored, key)
			}
		}
	})

	return rep
}

func (r *Report) write(store *param.Store, id param.ID, v float64) {
	if err := store.SetNormalized(id, v); err == nil {
		r.Written++
	}
}

func adjustFrequency(store *param.Store, band int, v float64, meta *Metadata, rep *Report) float64 {
	if meta == nil {
		return v
	}

	fp, _ := store.Parameter(param.FrequencyID(band))
	f := fp.Denormalize(v)
	adj := f

	switch {
	case band == 0 && meta.FrequencyRange[0] > lowBandFloorHz:
		adj = math.Min(f, lowBandRatio*meta.FrequencyRange[0])
	case band == parametric.NumBands-1 && meta.FrequencyRange[1] < highBandCeilHz:
		adj = math.Max(f, highBandRatio*meta.FrequencyRange[1])
	}

	if adj == f {
		return v
	}
	rep.Frequency = append(rep.Frequency, Adjustment{Band: band, From: f, To: adj})

	return fp.Normalize(adj)
}

// Capture builds a preset from the current values of store. meta may be nil.
func Capture(store *param.Store, meta *Metadata) *Preset {
	p := &Preset{Values: make(map[string]float64, param.NumParameters)}
	for id, v := range store.Values() {
		p.Values[string(id)] = v
	}

	if meta != nil {
		m := *meta
		m.SpectralBalance = append([]float64(nil), meta.SpectralBalance...)
		p.Metadata = &m
	}

	return p
}
