package score

import (
	"math"

	"git.lost.host/meutraa/tapbeat/internal/game"
)

// Default judgement windows in seconds.
const (
	DefaultPerfect = 0.045
	DefaultGood    = 0.090
	DefaultOK      = 0.150

	// ClaimFactor scales the OK window into the range in which a tap may
	// claim a beat map beat.
	ClaimFactor = 1.5
)

// Windows are the nested absolute error bounds of the hit tiers.
type Windows struct {
	Perfect float64
	Good    float64
	OK      float64
}

func DefaultWindows() Windows {
	return Windows{Perfect: DefaultPerfect, Good: DefaultGood, OK: DefaultOK}
}

// Valid reports whether the windows are positive and nested.
func (w Windows) Valid() bool {
	return w.Perfect > 0 && w.Perfect <= w.Good && w.Good <= w.OK
}

// Claim is the distance within which a tap claims a beat map beat.
func (w Windows) Claim() float64 { return w.OK * ClaimFactor }

// Classify returns the tier of a signed error.
func (w Windows) Classify(err float64) game.Tier {
	bounds := [...]float64{w.Perfect, w.Good, w.OK}
	d := math.Abs(err)
	for i, b := range bounds {
		if d <= b {
			return game.Tiers[i]
		}
	}
	return game.Miss
}
