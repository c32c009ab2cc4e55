// Package calibrate turns a burst of taps into a beat grid.
package calibrate

import (
	"math"
	"sort"

	"git.lost.host/meutraa/tapbeat/internal/game"
)

const (
	DefaultTaps    = 6
	DefaultTimeout = 3.0 // seconds

	// ResetTouches is the number of simultaneous touches that resets the grid.
	ResetTouches = 3
)

type State int

const (
	FreeTap State = iota
	Calibrating
	Locked
)

func (s State) String() string {
	switch s {
	case FreeTap:
		return "free"
	case Calibrating:
		return "calibrating"
	case Locked:
		return "locked"
	}
	return "unknown"
}

// Result describes what a single tap did to the calibrator.
type Result struct {
	State State
	// Judge is set for taps made while locked; they belong to the scorer.
	Judge bool
	// Locked is set on the tap that completed calibration.
	Locked bool
	// Restarted is set when the tap came after the timeout and began a new
	// session.
	Restarted bool
	// Reset is set when the tap cleared the grid.
	Reset bool
}

// Calibrator is the tap tempo state machine. It is not safe for concurrent
// use.
type Calibrator struct {
	taps    int
	timeout float64

	state   State
	session []float64
	grid    *game.BeatGrid
}

// New creates a calibrator that locks after taps taps, each within timeout
// seconds of the previous one. Out of range values fall back to the defaults.
func New(taps int, timeout float64) *Calibrator {
	if taps < 2 {
		taps = DefaultTaps
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Calibrator{taps: taps, timeout: timeout, session: make([]float64, 0, taps)}
}

func (c *Calibrator) State() State { return c.state }

// Grid returns the locked grid, or nil before lock.
func (c *Calibrator) Grid() *game.BeatGrid { return c.grid }

// Pending returns the number of taps in the current session.
func (c *Calibrator) Pending() int { return len(c.session) }

// Tap feeds one tap at time t made with touches simultaneous touch points.
func (c *Calibrator) Tap(t float64, touches int) Result {
	if touches >= ResetTouches {
		c.Reset()
		return Result{State: c.state, Reset: true}
	}

	switch c.state {
	case Locked:
		return Result{State: Locked, Judge: true}
	case FreeTap:
		c.state = Calibrating
		c.session = append(c.session[:0], t)
		return Result{State: c.state}
	}

	var res Result
	if last := c.session[len(c.session)-1]; t-last > c.timeout || t < last {
		c.session = c.session[:0]
		res.Restarted = true
	}
	c.session = append(c.session, t)

	if len(c.session) >= c.taps {
		c.grid = lock(c.session)
		c.session = c.session[:0]
		c.state = Locked
		res.Locked = true
	}
	res.State = c.state
	return res
}

// Reset discards the session and the grid.
func (c *Calibrator) Reset() {
	c.state = FreeTap
	c.session = c.session[:0]
	c.grid = nil
}

// lock builds a grid from the session taps with an interquartile trimmed
// mean of the intervals, quantized to a whole bpm and anchored on the last
// tap.
func lock(taps []float64) *game.BeatGrid {
	intervals := make([]float64, 0, len(taps)-1)
	for i := 1; i < len(taps); i++ {
		intervals = append(intervals, taps[i]-taps[i-1])
	}
	sort.Float64s(intervals)

	trim := len(intervals) / 4
	kept := intervals[trim : len(intervals)-trim]
	sum := 0.0
	for _, iv := range kept {
		sum += iv
	}
	interval := sum / float64(len(kept))

	bpm := math.Round(60 / interval)
	return game.NewBeatGrid(bpm, taps[len(taps)-1])
}
