package onset

// pipeline is the detector shared by Analyze and Detector: downmix and
// decimate, frame, band energies, flux, threshold and peak pick.
type pipeline struct {
	opts Options
	rate float64 // effective rate after decimation

	mix   *mixer
	frame *framer
	bands *bands
	pick  *picker

	buf []float64
}

func newPipeline(sampleRate, channels int, opts Options) *pipeline {
	opts = opts.normalized()
	mix := newMixer(sampleRate, channels, opts.TargetRate)
	rate := float64(sampleRate) / float64(mix.factor)
	return &pipeline{
		opts:  opts,
		rate:  rate,
		mix:   mix,
		frame: newFramer(opts.FrameSize, opts.HopSize),
		bands: newBands(opts.Bands, opts.FrameSize, opts.Tilt),
		pick:  newPicker(opts, rate),
		buf:   make([]float64, opts.FrameSize),
	}
}

// feed pushes interleaved samples and calls accept for every accepted frame.
func (p *pipeline) feed(samples []float64, accept func(frame int)) {
	p.mix.push(samples, p.frame.push)
	for p.frame.ready() {
		p.frame.take(p.buf)
		if i, ok := p.pick.push(p.bands.flux(p.buf)); ok {
			accept(i)
		}
	}
}

func (p *pipeline) flush(accept func(frame int)) {
	for _, i := range p.pick.flush() {
		accept(i)
	}
}

// seconds converts a frame index to a timestamp.
func (p *pipeline) seconds(frame int) float64 {
	return float64(frame*p.opts.HopSize) / p.rate
}

// produced reports how many decimated samples the stream has seen.
func (p *pipeline) produced() int {
	return p.frame.offset + len(p.frame.buf)
}
