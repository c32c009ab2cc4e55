package drift_test

import (
	"testing"

	"git.lost.host/meutraa/tapbeat/internal/drift"
	"git.lost.host/meutraa/tapbeat/internal/game"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSelfCorrect(t *testing.T) {
	Convey("Given a 120 bpm grid anchored at zero", t, func() {
		g := game.NewBeatGrid(120, 0)
		c := drift.New(drift.DefaultOptions())

		Convey("A late tap pulls the anchor by 15% of its error", func() {
			res := c.SelfCorrect(g, 1.02)
			So(res.Error, ShouldAlmostEqual, 0.02, 1e-12)
			So(g.Anchor(), ShouldAlmostEqual, 0.003, 1e-12)
			So(res.Tempo, ShouldBeFalse)
			So(g.Interval(), ShouldEqual, 0.5)
		})

		Convey("Consistently late taps slow nothing until six are seen", func() {
			beat := 0.0
			var res drift.Correction
			for i := 0; i < 5; i++ {
				beat += 0.5
				res = c.SelfCorrect(g, g.NearestBeat(beat).Time+0.03)
				So(res.Tempo, ShouldBeFalse)
			}
			So(c.Pending(), ShouldEqual, 5)

			Convey("The sixth shortens the interval and clears the window", func() {
				before := g.Interval()
				beat += 0.5
				res = c.SelfCorrect(g, g.NearestBeat(beat).Time+0.03)
				So(res.Tempo, ShouldBeTrue)
				So(res.Bias, ShouldAlmostEqual, 0.03, 1e-9)
				So(g.Interval(), ShouldAlmostEqual, before-0.03*drift.DefaultTempoRate, 1e-9)
				So(g.BPM(), ShouldAlmostEqual, 60/g.Interval(), 1e-9)
				So(c.Pending(), ShouldEqual, 0)
			})
		})

		Convey("Errors that cancel out leave the tempo alone", func() {
			for i := 1; i <= 20; i++ {
				off := 0.03
				if i%2 == 0 {
					off = -0.03
				}
				res := c.SelfCorrect(g, g.BeatTime(int64(i))+off)
				So(res.Tempo, ShouldBeFalse)
			}
			So(c.Pending(), ShouldEqual, drift.DefaultBiasWindow)
			So(g.BPM(), ShouldEqual, 120)
		})
	})
}

func TestApplyOnset(t *testing.T) {
	Convey("Given a 100 bpm grid anchored at 1s", t, func() {
		g := game.NewBeatGrid(100, 1)
		c := drift.New(drift.DefaultOptions())

		Convey("A trusted onset near a beat moves the anchor by error times trust", func() {
			err, ok := c.ApplyOnset(g, game.OnsetEvent{Time: 1.62, Trust: drift.DefaultSystemTrust, Source: game.SourceSystem})
			So(ok, ShouldBeTrue)
			So(err, ShouldAlmostEqual, 0.02, 1e-12)
			So(g.Anchor(), ShouldAlmostEqual, 1+0.02*drift.DefaultSystemTrust, 1e-12)
		})

		Convey("An onset far from every beat is dropped with the grid unchanged", func() {
			before := *g
			err, ok := c.ApplyOnset(g, game.OnsetEvent{Time: 1.25, Trust: 1, Source: game.SourceMicrophone})
			So(ok, ShouldBeFalse)
			So(err, ShouldAlmostEqual, 0.25, 1e-12)
			So(*g, ShouldResemble, before)
		})

		Convey("Onsets never touch the tempo", func() {
			for i := 0; i < 50; i++ {
				c.ApplyOnset(g, game.OnsetEvent{Time: g.BeatTime(int64(i)) + 0.05, Trust: drift.DefaultMicrophoneTrust})
			}
			So(g.BPM(), ShouldEqual, 100)
			So(c.Pending(), ShouldEqual, 0)
		})
	})
}

func BenchmarkSelfCorrect(b *testing.B) {
	g := game.NewBeatGrid(120, 0)
	c := drift.New(drift.DefaultOptions())
	for i := 0; i < b.N; i++ {
		c.SelfCorrect(g, float64(i)*0.5+0.01)
	}
}
