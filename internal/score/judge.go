package score

import (
	"math"

	"git.lost.host/meutraa/tapbeat/internal/game"
)

// Stats are the aggregate results of a round.
type Stats struct {
	Counts   [len(game.Tiers)]int
	Taps     int // judged taps, not counting retroactive misses
	Combo    int
	MaxCombo int
	Mean     float64 // mean signed error of hits
	StdDev   float64 // population standard deviation of hit errors
}

// Hits returns the number of judgements better than Miss.
func (s Stats) Hits() int {
	return s.Counts[game.Perfect] + s.Counts[game.Good] + s.Counts[game.OK]
}

// Judge classifies errors and keeps the combo and the tallies of a round.
type Judge struct {
	windows Windows
	stats   Stats

	// Welford accumulators for hit errors.
	n    int
	mean float64
	m2   float64
}

func NewJudge(w Windows) *Judge {
	if !w.Valid() {
		w = DefaultWindows()
	}
	return &Judge{windows: w}
}

func (j *Judge) Windows() Windows { return j.windows }

// Judge classifies a tap with the given signed error and records it.
func (j *Judge) Judge(err float64) game.JudgementResult {
	j.stats.Taps++
	return j.record(j.windows.Classify(err), err)
}

// MissTap records a tap that had nothing to hit.
func (j *Judge) MissTap() game.JudgementResult {
	j.stats.Taps++
	return j.record(game.Miss, 0)
}

// MissBeat records a beat that nobody tapped.
func (j *Judge) MissBeat() game.JudgementResult {
	return j.record(game.Miss, 0)
}

func (j *Judge) record(tier game.Tier, err float64) game.JudgementResult {
	j.stats.Counts[tier]++
	if !tier.Hit() {
		j.stats.Combo = 0
		return game.JudgementResult{Tier: tier, Error: err, Combo: 0}
	}

	j.stats.Combo++
	if j.stats.Combo > j.stats.MaxCombo {
		j.stats.MaxCombo = j.stats.Combo
	}

	j.n++
	delta := err - j.mean
	j.mean += delta / float64(j.n)
	j.m2 += delta * (err - j.mean)

	return game.JudgementResult{Tier: tier, Error: err, Combo: j.stats.Combo}
}

// Stats returns a snapshot of the round so far.
func (j *Judge) Stats() Stats {
	s := j.stats
	s.Mean = j.mean
	if j.n > 0 {
		s.StdDev = math.Sqrt(j.m2 / float64(j.n))
	}
	return s
}

// Reset starts a new round.
func (j *Judge) Reset() {
	j.stats = Stats{}
	j.n, j.mean, j.m2 = 0, 0, 0
}
