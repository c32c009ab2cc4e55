package render_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"git.lost.host/meutraa/tapbeat/internal/engine"
	"git.lost.host/meutraa/tapbeat/internal/game"
	"git.lost.host/meutraa/tapbeat/internal/render"
	"git.lost.host/meutraa/tapbeat/internal/score"
	"git.lost.host/meutraa/tapbeat/internal/theme"
	. "github.com/smartystreets/goconvey/convey"
)

var _ engine.Observer = (*render.Hud)(nil)

func TestRenderLoop(t *testing.T) {
	Convey("Given a renderer writing to a buffer", t, func() {
		var out bytes.Buffer
		r := render.NewWriterRenderer(&out)
		So(r.Init(), ShouldBeNil)

		Convey("Decorations are drawn and later erased", func() {
			frames := 0
			r.RenderLoop(0, time.Millisecond, func(now time.Time, elapsed time.Duration) bool {
				if frames == 0 {
					r.AddDecoration(5, 3, "\033[1mPerfect\033[0m", 1)
				}
				frames++
				return frames < 4
			})
			So(frames, ShouldEqual, 4)
			So(out.String(), ShouldContainSubstring, "\033[3;5H\033[1mPerfect")
			So(out.String(), ShouldContainSubstring, "\033[3;5H       ")
		})

		Convey("Fills are positioned with cursor escapes", func() {
			r.Fill(2, 7, "x")
			r.RenderLoop(0, 0, func(time.Time, time.Duration) bool { return false })
			So(out.String(), ShouldEndWith, "\033[2;7Hx")
		})

		So(r.Deinit(), ShouldBeNil)
	})
}

func TestHud(t *testing.T) {
	Convey("Given a hud on an 80x24 buffer", t, func() {
		var out bytes.Buffer
		r := render.NewWriterRenderer(&out)
		h := render.NewHud(r, &theme.DefaultTheme{})

		h.OnGridLocked(120)
		h.OnJudgement(game.JudgementResult{Tier: game.Good, Error: -0.05, Combo: 2})
		h.Draw(score.Stats{Combo: 2, Taps: 2}, game.NewBeatGrid(120, 0), 10.25)
		r.RenderLoop(0, 0, func(time.Time, time.Duration) bool { return false })

		s := out.String()
		So(s, ShouldContainSubstring, "Good")
		So(s, ShouldContainSubstring, "-50.0 ms")
		So(s, ShouldContainSubstring, "120.0")
		So(strings.Count(s, "locked"), ShouldEqual, 1)

		Convey("A reset clears the tempo", func() {
			out.Reset()
			h.OnGridReset()
			h.Draw(score.Stats{}, nil, 11)
			r.RenderLoop(0, 0, func(time.Time, time.Duration) bool { return false })
			So(out.String(), ShouldContainSubstring, "tap to calibrate")
			So(out.String(), ShouldContainSubstring, "   0.0")
		})
	})
}
