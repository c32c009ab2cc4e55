// Package drift keeps a locked beat grid aligned with the music, using the
// player's own tap errors and onsets reported by trusted audio sources.
package drift

import (
	"math"

	"git.lost.host/meutraa/tapbeat/internal/game"
)

const (
	DefaultSelfRate      = 0.15
	DefaultBiasWindow    = 12
	DefaultBiasMinimum   = 6
	DefaultBiasThreshold = 0.015 // seconds
	DefaultTempoRate     = 0.05
	DefaultAcceptWindow  = 0.150 // seconds, the OK window

	DefaultSystemTrust     = 0.12
	DefaultMicrophoneTrust = 0.06
)

// Options are the correction rates.
type Options struct {
	// SelfRate is the share of each tap error folded into the anchor.
	SelfRate float64
	// BiasWindow is how many recent tap errors are kept.
	BiasWindow int
	// BiasMinimum is how many errors must be kept before tempo is touched.
	BiasMinimum int
	// BiasThreshold is the mean error above which tempo is corrected.
	BiasThreshold float64
	// TempoRate is the share of the mean error taken off the interval.
	TempoRate float64
	// AcceptWindow bounds the error of an onset that may move the grid.
	AcceptWindow float64
}

func DefaultOptions() Options {
	return Options{
		SelfRate:      DefaultSelfRate,
		BiasWindow:    DefaultBiasWindow,
		BiasMinimum:   DefaultBiasMinimum,
		BiasThreshold: DefaultBiasThreshold,
		TempoRate:     DefaultTempoRate,
		AcceptWindow:  DefaultAcceptWindow,
	}
}

// Correction reports what a tap did to the grid.
type Correction struct {
	Error float64 // nearest beat error before correction
	// Tempo is set when the tap completed a biased window and the interval
	// was changed.
	Tempo bool
	Bias  float64 // mean of the window when Tempo is set
}

// Corrector applies bounded corrections to a grid. It is not safe for
// concurrent use; every call is expected from the engine tick.
type Corrector struct {
	opts   Options
	errors []float64
}

func New(opts Options) *Corrector {
	def := DefaultOptions()
	if opts.BiasWindow <= 0 {
		opts.BiasWindow = def.BiasWindow
	}
	if opts.BiasMinimum <= 0 || opts.BiasMinimum > opts.BiasWindow {
		opts.BiasMinimum = min(def.BiasMinimum, opts.BiasWindow)
	}
	if opts.AcceptWindow <= 0 {
		opts.AcceptWindow = def.AcceptWindow
	}
	return &Corrector{opts: opts, errors: make([]float64, 0, opts.BiasWindow)}
}

// SelfCorrect nudges the grid toward a judged tap at t and, once the recent
// errors lean consistently one way, nudges the tempo.
func (c *Corrector) SelfCorrect(g *game.BeatGrid, t float64) Correction {
	err := g.NearestBeat(t).Error
	g.ShiftAnchor(err * c.opts.SelfRate)

	if len(c.errors) == c.opts.BiasWindow {
		c.errors = append(c.errors[:0], c.errors[1:]...)
	}
	c.errors = append(c.errors, err)

	res := Correction{Error: err}
	if len(c.errors) < c.opts.BiasMinimum {
		return res
	}
	mean := 0.0
	for _, e := range c.errors {
		mean += e
	}
	mean /= float64(len(c.errors))
	if math.Abs(mean) > c.opts.BiasThreshold {
		g.SetInterval(g.Interval() - mean*c.opts.TempoRate)
		c.errors = c.errors[:0]
		res.Tempo = true
		res.Bias = mean
	}
	return res
}

// ApplyOnset folds an onset into the grid, weighted by its trust, when it
// lands within the accept window of a beat. It reports the error and
// whether the grid was moved; a rejected onset leaves the grid untouched.
func (c *Corrector) ApplyOnset(g *game.BeatGrid, ev game.OnsetEvent) (float64, bool) {
	err := g.NearestBeat(ev.Time).Error
	if math.Abs(err) >= c.opts.AcceptWindow || ev.Trust <= 0 {
		return err, false
	}
	g.ShiftAnchor(err * math.Min(ev.Trust, 1))
	return err, true
}

// Pending returns the number of tap errors in the bias window.
func (c *Corrector) Pending() int { return len(c.errors) }

// Reset forgets the tap error window.
func (c *Corrector) Reset() { c.errors = c.errors[:0] }
