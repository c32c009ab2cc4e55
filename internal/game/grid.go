package game

import "math"

// Legal tempo range of a beat grid.
const (
	MinBPM = 30.0
	MaxBPM = 300.0
)

// BeatGrid is a periodic beat clock: a tempo plus one known beat instant.
// Interval and BPM are always derived from each other; the anchor may move
// to any beat instant without renumbering.
type BeatGrid struct {
	bpm      float64
	interval float64 // seconds per beat
	anchor   float64 // absolute time of some beat, in seconds
}

// Nearest is the result of a nearest beat lookup.
type Nearest struct {
	Index int64   // beat number relative to the anchor
	Time  float64 // time of that beat
	Error float64 // signed distance to it, positive when late
}

// NewBeatGrid builds a grid with bpm clamped to the legal range.
func NewBeatGrid(bpm, anchor float64) *BeatGrid {
	g := &BeatGrid{anchor: anchor}
	g.SetBPM(bpm)
	return g
}

func ClampBPM(bpm float64) float64 {
	if math.IsNaN(bpm) || bpm < MinBPM {
		return MinBPM
	}
	if bpm > MaxBPM {
		return MaxBPM
	}
	return bpm
}

func (g *BeatGrid) BPM() float64      { return g.bpm }
func (g *BeatGrid) Interval() float64 { return g.interval }
func (g *BeatGrid) Anchor() float64   { return g.anchor }

// SetBPM changes the tempo, keeping the anchor.
func (g *BeatGrid) SetBPM(bpm float64) {
	g.bpm = ClampBPM(bpm)
	g.interval = 60 / g.bpm
}

// SetInterval changes the beat length. Intervals implying a tempo outside
// the legal range are clamped.
func (g *BeatGrid) SetInterval(interval float64) {
	if interval <= 0 {
		g.SetBPM(MaxBPM)
		return
	}
	g.SetBPM(60 / interval)
}

// SetAnchor moves the phase anchor to t.
func (g *BeatGrid) SetAnchor(t float64) { g.anchor = t }

// ShiftAnchor moves the phase anchor by delta seconds.
func (g *BeatGrid) ShiftAnchor(delta float64) { g.anchor += delta }

// NearestBeat finds the beat closest to t.
func (g *BeatGrid) NearestBeat(t float64) Nearest {
	index := math.Round((t - g.anchor) / g.interval)
	at := g.anchor + index*g.interval
	return Nearest{Index: int64(index), Time: at, Error: t - at}
}

// BeatTime returns the time of the n-th beat relative to the anchor.
func (g *BeatGrid) BeatTime(n int64) float64 {
	return g.anchor + float64(n)*g.interval
}
