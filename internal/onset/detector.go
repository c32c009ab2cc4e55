package onset

// Detector is the streaming form of the onset detector. It keeps the
// previous band energies, the flux history and the stream position across
// calls. Timestamps are seconds since the first sample pushed.
type Detector struct {
	sampleRate, channels int
	opts                 Options

	p       *pipeline
	pending []float64
}

// NewDetector creates a streaming detector for interleaved input.
func NewDetector(sampleRate, channels int, opts Options) *Detector {
	return &Detector{
		sampleRate: sampleRate,
		channels:   channels,
		opts:       opts,
		p:          newPipeline(sampleRate, channels, opts),
	}
}

// PushFrame feeds a capture buffer and returns at most one onset. Onsets
// accepted beyond the first wait for the following calls, so no detection
// is lost when a buffer spans several hops.
func (d *Detector) PushFrame(buffer []float64) (float64, bool) {
	d.p.feed(buffer, func(frame int) {
		d.pending = append(d.pending, d.p.seconds(frame))
	})
	if len(d.pending) == 0 {
		return 0, false
	}
	t := d.pending[0]
	d.pending = d.pending[1:]
	return t, true
}

// SetThreshold changes the threshold multiplier, clamped to [0.5, 5].
func (d *Detector) SetThreshold(multiplier float64) {
	d.p.pick.multiplier = clampMultiplier(multiplier, d.p.pick.multiplier)
}

// Threshold returns the current threshold multiplier.
func (d *Detector) Threshold() float64 { return d.p.pick.multiplier }

// Rate returns the effective sample rate after decimation.
func (d *Detector) Rate() float64 { return d.p.rate }

// HopSamples is the number of input frames (per channel) that advance the
// detector by one hop.
func (d *Detector) HopSamples() int { return d.p.opts.HopSize * d.p.mix.factor }

// Elapsed returns the stream time covered so far in seconds.
func (d *Detector) Elapsed() float64 { return float64(d.p.produced()) / d.p.rate }

// Reset forgets all stream state, keeping the threshold multiplier.
func (d *Detector) Reset() {
	m := d.p.pick.multiplier
	d.p = newPipeline(d.sampleRate, d.channels, d.opts)
	d.p.pick.multiplier = m
	d.pending = nil
}
