package signal

// pinkFilter shapes white noise to a -3 dB/octave slope with Paul Kellet's
// seven-term filter. It is accurate to about 0.05 dB above 10 Hz at 44.1 kHz.
type pinkFilter struct {
	b [7]float64
}

var (
	pinkPoles = [6]float64{0.99886, 0.99332, 0.96900, 0.86650, 0.55000, -0.7616}
	pinkGains = [6]float64{0.0555179, 0.0750759, 0.1538520, 0.3104856, 0.5329522, -0.0168980}
)

const (
	pinkDirect = 0.5362
	pinkDelay  = 0.115926
	pinkScale  = 0.11
)

func (p *pinkFilter) next(white float64) float64 {
	sum := 0.0
	for i, pole := range pinkPoles {
		p.b[i] = pole*p.b[i] + white*pinkGains[i]
		sum += p.b[i]
	}

	out := sum + p.b[6] + white*pinkDirect
	p.b[6] = white * pinkDelay

	return out * pinkScale
}

func (p *pinkFilter) reset() {
	p.b = [7]float64{}
}
