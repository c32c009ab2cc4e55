package render

import (
	"fmt"
	"math"

	"git.lost.host/meutraa/tapbeat/internal/game"
	"git.lost.host/meutraa/tapbeat/internal/score"
	"git.lost.host/meutraa/tapbeat/internal/theme"
)

const judgementFrames = 120

// Hud draws judgements, the beat and the round statistics. It observes the
// engine and is drawn from the same goroutine that ticks it.
type Hud struct {
	r  Renderer
	th theme.Theme

	columns, rows int
	sideCol       int

	bpm    float64
	status string
}

func NewHud(r Renderer, th theme.Theme) *Hud {
	h := &Hud{r: r, th: th, status: "tap to calibrate"}
	h.Resize()
	return h
}

// Resize recomputes the layout from the terminal size.
func (h *Hud) Resize() {
	h.columns, h.rows = h.r.Size()
	h.sideCol = h.columns/2 - 36
	if h.sideCol < 2 {
		h.sideCol = 2
	}
}

func (h *Hud) center() (int, int) { return h.columns / 2, h.rows / 2 }

func (h *Hud) OnJudgement(res game.JudgementResult) {
	col, row := h.center()
	h.r.AddDecoration(col-4, row+2, h.th.RenderTier(res.Tier), judgementFrames)
	if res.Tier.Hit() {
		h.r.AddDecoration(col-4, row+3, fmt.Sprintf("%+6.1f ms", res.Error*1000), judgementFrames)
	}
}

func (h *Hud) OnGridLocked(bpm float64) {
	h.bpm = bpm
	h.status = "locked"
}

func (h *Hud) OnGridReset() {
	h.bpm = 0
	h.status = "tap to calibrate"
}

// Draw renders the metronome for grid at time t, and the statistics.
func (h *Hud) Draw(stats score.Stats, grid *game.BeatGrid, t float64) {
	col, row := h.center()
	if nil != grid {
		phase := (t - grid.Anchor()) / grid.Interval()
		h.r.Fill(row, col, h.th.RenderBeat(phase-math.Floor(phase)))
		h.bpm = grid.BPM()
	} else {
		h.r.Fill(row, col, h.th.RenderHitField())
	}

	h.r.Fill(2, h.sideCol, fmt.Sprintf("     Status:  %-16v", h.status))
	h.r.Fill(3, h.sideCol, fmt.Sprintf("        BPM:  %6.1f", h.bpm))
	h.r.Fill(10, h.sideCol, fmt.Sprintf("      Combo:  %6v", stats.Combo))
	h.r.Fill(11, h.sideCol, fmt.Sprintf("  Max Combo:  %6v", stats.MaxCombo))
	h.r.Fill(12, h.sideCol, fmt.Sprintf("      Stdev:  %6.2f ms", stats.StdDev*1000))
	h.r.Fill(13, h.sideCol, fmt.Sprintf("       Mean:  %6.2f ms", stats.Mean*1000))
	h.r.Fill(14, h.sideCol, fmt.Sprintf("       Taps:  %6v", stats.Taps))
	for i, tier := range game.Tiers {
		h.r.Fill(18+i, h.sideCol, fmt.Sprintf("%v:  %6v", h.th.RenderTier(tier), stats.Counts[tier]))
	}
}

// SetStatus replaces the status line.
func (h *Hud) SetStatus(status string) { h.status = status }
