package onset

import "math"

// picker thresholds a flux stream and picks peaks. Frame i is judged once
// the centered threshold window around it is complete, so streaming and
// batch detection accept the same frames.
type picker struct {
	half       int
	multiplier float64
	floor      float64
	minGap     float64 // frames

	flux []float64
	base int // frame index of flux[0]
	n    int // flux values seen
	next int // next frame to judge
	last float64
}

func newPicker(o Options, rate float64) *picker {
	frames := int(math.Round(o.ThresholdWindow * rate / float64(o.HopSize)))
	if frames < MinThresholdFrames {
		frames = MinThresholdFrames
	}
	return &picker{
		half:       frames / 2,
		multiplier: o.ThresholdMultiplier,
		floor:      o.SpreadFloor,
		minGap:     o.MinInterval * rate / float64(o.HopSize),
		last:       math.Inf(-1),
	}
}

func (p *picker) at(i int) float64 { return p.flux[i-p.base] }

// push adds the flux of the next frame and returns a newly accepted frame.
func (p *picker) push(v float64) (int, bool) {
	p.flux = append(p.flux, v)
	p.n++
	end := p.n - 1
	if p.next > end-p.half {
		return 0, false
	}
	i := p.next
	p.next++
	ok := p.judge(i, end)
	p.trim()
	return i, ok
}

// flush judges the frames left waiting for look-ahead at the end of input.
func (p *picker) flush() []int {
	var picked []int
	end := p.n - 1
	for ; p.next < end; p.next++ {
		if p.judge(p.next, end) {
			picked = append(picked, p.next)
		}
	}
	return picked
}

func (p *picker) judge(i, end int) bool {
	if i < 1 || i+1 > end {
		return false
	}
	lo := i - p.half
	if lo < 0 {
		lo = 0
	}
	hi := i + p.half
	if hi > end {
		hi = end
	}

	count := float64(hi - lo + 1)
	mean := 0.0
	for j := lo; j <= hi; j++ {
		mean += p.at(j)
	}
	mean /= count
	variance := 0.0
	for j := lo; j <= hi; j++ {
		d := p.at(j) - mean
		variance += d * d
	}
	threshold := mean + p.multiplier*math.Max(math.Sqrt(variance/count), p.floor)

	f := p.at(i)
	if f > threshold && f > p.at(i-1) && f >= p.at(i+1) && float64(i)-p.last >= p.minGap {
		p.last = float64(i)
		return true
	}
	return false
}

func (p *picker) trim() {
	keep := p.next - p.half - 1
	if drop := keep - p.base; drop > 0 && drop >= len(p.flux)/2 {
		p.flux = append(p.flux[:0], p.flux[drop:]...)
		p.base = keep
	}
}
