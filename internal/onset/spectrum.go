package onset

import "math"

// bands estimates coarse band energies with one Goertzel resonator per
// band and turns consecutive estimates into spectral flux.
type bands struct {
	coeff  []float64
	weight []float64

	cur, prev []float64
}

func newBands(n, frameSize int, tilt float64) *bands {
	b := &bands{
		coeff:  make([]float64, n),
		weight: make([]float64, n),
		cur:    make([]float64, n),
		prev:   make([]float64, n),
	}
	half := float64(frameSize / 2)
	for i := 0; i < n; i++ {
		bin := (float64(i) + 0.5) * half / float64(n)
		b.coeff[i] = 2 * math.Cos(2*math.Pi*bin/float64(frameSize))
		b.weight[i] = 1 + tilt*float64(i)/float64(n)
	}
	return b
}

// flux returns the weighted sum of positive band energy increases since
// the previous frame.
func (b *bands) flux(frame []float64) float64 {
	for i, c := range b.coeff {
		b.cur[i] = goertzel(frame, c)
	}
	flux := 0.0
	for i := range b.cur {
		if diff := b.cur[i] - b.prev[i]; diff > 0 {
			flux += diff * b.weight[i]
		}
	}
	b.cur, b.prev = b.prev, b.cur
	return flux
}

func goertzel(frame []float64, coeff float64) float64 {
	var s1, s2 float64
	for _, x := range frame {
		s0 := x + coeff*s1 - s2
		s2 = s1
		s1 = s0
	}
	p := s1*s1 + s2*s2 - coeff*s1*s2
	if p <= 0 {
		return 0
	}
	return math.Sqrt(p)
}
