package score

import (
	"math"

	"git.lost.host/meutraa/tapbeat/internal/game"
)

// ApplyTap claims the unclaimed beat closest to t, if one lies within
// claim seconds. It returns the claimed beat and the signed error of the
// tap against it, or nil when nothing could be claimed.
func ApplyTap(bm *game.BeatMap, t, claim float64) (*game.Beat, float64) {
	var closest *game.Beat
	best := math.Inf(1)
	distance := 0.0

	for i := bm.Search(t - claim); i < len(bm.Beats); i++ {
		beat := bm.Beats[i]
		if beat.Time-t > claim {
			break
		}
		if beat.Hit || beat.Miss {
			continue
		}
		d := t - beat.Time
		if math.Abs(d) < best {
			best = math.Abs(d)
			distance = d
			closest = beat
		}
	}

	if nil == closest {
		return nil, 0
	}
	closest.Hit = true
	closest.HitTime = t
	return closest, distance
}

// TrackTime converts seconds of playback into track time. The offset is
// added in playback seconds; at a rate above 1 the track runs ahead of the
// wall clock.
func TrackTime(elapsed, offset, rate float64) float64 {
	return (elapsed + offset) * rate
}

// Round judges taps against a beat map.
type Round struct {
	*Judge
	Map *game.BeatMap
}

func NewRound(bm *game.BeatMap, w Windows) *Round {
	return &Round{Judge: NewJudge(w), Map: bm}
}

// Tap judges a tap at t, seconds from track start. A tap with no unclaimed
// beat in range is a Miss and claims nothing.
func (r *Round) Tap(t float64) (game.JudgementResult, *game.Beat) {
	beat, err := ApplyTap(r.Map, t, r.windows.Claim())
	if nil == beat {
		return r.MissTap(), nil
	}
	return r.Judge.Judge(err), beat
}

// Finish counts every beat left unclaimed as a Miss. Beats already counted
// are skipped, so calling it twice changes nothing.
func (r *Round) Finish() []game.JudgementResult {
	var misses []game.JudgementResult
	for _, beat := range r.Map.Beats {
		if beat.Hit || beat.Miss {
			continue
		}
		beat.Miss = true
		misses = append(misses, r.MissBeat())
	}
	return misses
}

// Replay scores recorded taps against a fresh copy of a beat map.
func Replay(bm *game.BeatMap, taps []float64, w Windows) Stats {
	round := NewRound(bm.Clone(), w)
	for _, t := range taps {
		round.Tap(t)
	}
	round.Finish()
	return round.Stats()
}
