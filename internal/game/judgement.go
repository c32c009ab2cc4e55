package game

// Tier is a timing judgement, ordered from best to worst.
type Tier int

const (
	Perfect Tier = iota
	Good
	OK
	Miss
)

// Tiers lists every tier in order.
var Tiers = [...]Tier{Perfect, Good, OK, Miss}

func (t Tier) String() string {
	switch t {
	case Perfect:
		return "perfect"
	case Good:
		return "good"
	case OK:
		return "ok"
	case Miss:
		return "miss"
	}
	return "unknown"
}

// Hit reports whether the tier keeps the combo alive.
func (t Tier) Hit() bool { return t < Miss }

// JudgementResult is the outcome of judging one tap or one unplayed beat.
type JudgementResult struct {
	Tier  Tier
	Error float64 // signed seconds, positive when late; 0 for retroactive misses
	Combo int     // combo after this judgement
}
