package theme

import "git.lost.host/meutraa/tapbeat/internal/game"

type Theme interface {
	// RenderTier is the label shown for a judgement.
	RenderTier(tier game.Tier) string
	// RenderBeat draws the metronome at phase in [0,1) of the beat.
	RenderBeat(phase float64) string
	RenderHitField() string
}
