package score_test

import (
	"math"
	"testing"

	"git.lost.host/meutraa/tapbeat/internal/game"
	"git.lost.host/meutraa/tapbeat/internal/score"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClassify(t *testing.T) {
	w := score.DefaultWindows()
	tests := map[float64]game.Tier{
		0:      game.Perfect,
		0.045:  game.Perfect,
		-0.045: game.Perfect,
		0.046:  game.Good,
		-0.09:  game.Good,
		0.1:    game.OK,
		-0.15:  game.OK,
		0.151:  game.Miss,
		-2:     game.Miss,
	}
	for err, expected := range tests {
		if tier := w.Classify(err); tier != expected {
			t.Log("error   ", err)
			t.Log("tier    ", tier)
			t.Log("expected", expected)
			t.Fail()
		}
	}
}

func TestTrackTime(t *testing.T) {
	type playback struct{ elapsed, offset, rate float64 }
	tests := map[playback]float64{
		{10, 0, 1}:      10,
		{10, 0.03, 1}:   10.03,
		{10, -0.02, 1}:  9.98,
		{10, 0, 1.5}:    15,
		{10, 0.02, 0.5}: 5.01,
		{-1.5, 0.05, 1}: -1.45,
		{0, 0, 2}:       0,
	}
	for in, expected := range tests {
		if got := score.TrackTime(in.elapsed, in.offset, in.rate); math.Abs(got-expected) > 1e-9 {
			t.Log("playback", in)
			t.Log("got     ", got)
			t.Log("expected", expected)
			t.Fail()
		}
	}
}

func TestOffsetRound(t *testing.T) {
	Convey("Given a beat every second and audio lagging by 60ms", t, func() {
		bm := game.NewBeatMap([]float64{1, 2, 3, 4})
		taps := []float64{1.06, 2.06, 3.06, 4.06}

		Convey("Uncorrected taps are all judged late", func() {
			s := score.Replay(bm, taps, score.DefaultWindows())
			So(s.Counts[game.Good], ShouldEqual, 4)
			So(s.Mean, ShouldAlmostEqual, 0.06, 1e-9)
		})

		Convey("A matching offset removes the bias", func() {
			corrected := make([]float64, len(taps))
			for i, tap := range taps {
				corrected[i] = score.TrackTime(tap, -0.06, 1)
			}
			s := score.Replay(bm, corrected, score.DefaultWindows())
			So(s.Counts[game.Perfect], ShouldEqual, 4)
			So(s.Mean, ShouldAlmostEqual, 0, 1e-9)
		})
	})
}

func TestWindowsNested(t *testing.T) {
	w := score.DefaultWindows()
	for e := -0.3; e <= 0.3; e += 0.0007 {
		tier := w.Classify(e)
		abs := e
		if abs < 0 {
			abs = -abs
		}
		if tier == game.Perfect && (abs > w.Good || abs > w.OK) {
			t.Fail()
		}
		if tier.Hit() != (abs <= w.OK) {
			t.Log("error", e, "tier", tier)
			t.Fail()
		}
	}
}

func TestJudge(t *testing.T) {
	Convey("Given a judge with default windows", t, func() {
		j := score.NewJudge(score.DefaultWindows())

		Convey("Hits build a combo and a miss breaks it", func() {
			So(j.Judge(0.01).Combo, ShouldEqual, 1)
			So(j.Judge(-0.06).Combo, ShouldEqual, 2)
			So(j.Judge(0.12).Combo, ShouldEqual, 3)
			res := j.Judge(0.3)
			So(res.Tier, ShouldEqual, game.Miss)
			So(res.Combo, ShouldEqual, 0)
			So(j.Judge(0).Combo, ShouldEqual, 1)

			s := j.Stats()
			So(s.MaxCombo, ShouldEqual, 3)
			So(s.Combo, ShouldEqual, 1)
			So(s.Taps, ShouldEqual, 5)
			So(s.Counts[game.Perfect], ShouldEqual, 2)
			So(s.Counts[game.Good], ShouldEqual, 1)
			So(s.Counts[game.OK], ShouldEqual, 1)
			So(s.Counts[game.Miss], ShouldEqual, 1)
			So(s.Hits(), ShouldEqual, 4)
		})

		Convey("Only hits feed the error statistics", func() {
			j.Judge(0.02)
			j.Judge(-0.02)
			j.Judge(1.0)
			s := j.Stats()
			So(s.Mean, ShouldAlmostEqual, 0, 1e-12)
			So(s.StdDev, ShouldAlmostEqual, 0.02, 1e-12)
		})

		Convey("Reset clears the round", func() {
			j.Judge(0.01)
			j.Reset()
			So(j.Stats(), ShouldResemble, score.Stats{})
		})
	})

	Convey("Invalid windows fall back to the defaults", t, func() {
		j := score.NewJudge(score.Windows{Perfect: 0.2, Good: 0.1, OK: 0.05})
		So(j.Windows(), ShouldResemble, score.DefaultWindows())
	})
}

func TestRound(t *testing.T) {
	Convey("Given beats at 1, 2 and 3 seconds", t, func() {
		r := score.NewRound(game.NewBeatMap([]float64{1, 2, 3}), score.DefaultWindows())

		Convey("A tap at 1.02 claims the first beat as Perfect", func() {
			res, beat := r.Tap(1.02)
			So(beat, ShouldEqual, r.Map.Beats[0])
			So(res.Tier, ShouldEqual, game.Perfect)
			So(res.Error, ShouldAlmostEqual, 0.02, 1e-12)
			So(res.Combo, ShouldEqual, 1)

			Convey("A tap at 2.50 is a Miss and claims nothing", func() {
				res, beat := r.Tap(2.50)
				So(beat, ShouldBeNil)
				So(res.Tier, ShouldEqual, game.Miss)
				So(res.Combo, ShouldEqual, 0)
				So(r.Map.Beats[1].Hit, ShouldBeFalse)
				So(r.Map.Beats[2].Hit, ShouldBeFalse)

				Convey("A tap at 2.95 claims the third beat", func() {
					res, beat := r.Tap(2.95)
					So(beat, ShouldEqual, r.Map.Beats[2])
					So(res.Error, ShouldAlmostEqual, -0.05, 1e-12)
					So(res.Tier, ShouldEqual, game.Good)

					Convey("Finishing counts the second beat as a Miss once", func() {
						misses := r.Finish()
						So(misses, ShouldHaveLength, 1)
						So(r.Map.Beats[1].Miss, ShouldBeTrue)
						So(r.Finish(), ShouldBeEmpty)

						s := r.Stats()
						So(s.Counts[game.Miss], ShouldEqual, 2)
						So(s.Hits(), ShouldEqual, 2)
						So(s.Taps, ShouldEqual, 3)
						So(s.MaxCombo, ShouldEqual, 1)
					})
				})
			})
		})

		Convey("A beat is claimed at most once", func() {
			_, first := r.Tap(2.0)
			_, second := r.Tap(2.01)
			So(first, ShouldEqual, r.Map.Beats[1])
			So(second, ShouldBeNil)
		})

		Convey("A tap near an already claimed beat misses", func() {
			r.Tap(1.0)
			res, beat := r.Tap(1.2)
			So(beat, ShouldBeNil)
			So(res.Tier, ShouldEqual, game.Miss)
		})
	})
}

func TestReplay(t *testing.T) {
	Convey("Replaying taps does not touch the original map", t, func() {
		bm := game.NewBeatMap([]float64{0.5, 1, 1.5, 2})
		s := score.Replay(bm, []float64{0.51, 1.04, 1.62}, score.DefaultWindows())
		So(s.Counts[game.Perfect], ShouldEqual, 2)
		So(s.Counts[game.Good], ShouldEqual, 0)
		So(s.Counts[game.OK], ShouldEqual, 1)
		So(s.Counts[game.Miss], ShouldEqual, 1)
		for _, b := range bm.Beats {
			So(b.Hit, ShouldBeFalse)
		}
	})
}

func BenchmarkApplyTap(b *testing.B) {
	onsets := make([]float64, 4000)
	for i := range onsets {
		onsets[i] = float64(i) * 0.5
	}
	bm := game.NewBeatMap(onsets)
	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		if n%len(onsets) == 0 {
			bm = bm.Clone()
		}
		score.ApplyTap(bm, float64(n%len(onsets))*0.5+0.01, 0.225)
	}
}
