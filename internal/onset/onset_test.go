package onset_test

import (
	"math"
	"testing"

	"git.lost.host/meutraa/tapbeat/internal/onset"
	"git.lost.host/meutraa/tapbeat/internal/testdata"
	. "github.com/smartystreets/goconvey/convey"
)

const hopSeconds = float64(onset.DefaultHopSize) / onset.DefaultBatchRate

func nearest(xs []float64, t float64) float64 {
	best := math.Inf(1)
	for _, x := range xs {
		if d := math.Abs(x - t); d < best {
			best = d
		}
	}
	return best
}

func TestAnalyze(t *testing.T) {
	Convey("Given a 120 bpm click track", t, func() {
		samples, clicks := testdata.ClickTrack(44100, 1, 0.25, 0.5, 10)
		So(clicks, ShouldHaveLength, 20)

		onsets := onset.Analyze(samples, 44100, 1, onset.BatchOptions())

		Convey("Every click is found once, within one hop", func() {
			So(onsets, ShouldHaveLength, len(clicks))
			for _, c := range clicks {
				So(nearest(onsets, c), ShouldBeLessThanOrEqualTo, hopSeconds)
			}
		})

		Convey("Onsets are ascending and spaced by the minimum interval", func() {
			for i := 1; i < len(onsets); i++ {
				So(onsets[i]-onsets[i-1], ShouldBeGreaterThanOrEqualTo, onset.DefaultBatchMinInterval)
			}
		})

		Convey("The tempo estimate is close to 120", func() {
			So(onset.EstimateBPM(onsets), ShouldAlmostEqual, 120, 1.5)
		})
	})

	Convey("Stereo input is downmixed before detection", t, func() {
		mono, _ := testdata.ClickTrack(44100, 1, 0.25, 0.5, 5)
		stereo, _ := testdata.ClickTrack(44100, 2, 0.25, 0.5, 5)
		So(onset.Analyze(stereo, 44100, 2, onset.BatchOptions()), ShouldResemble,
			onset.Analyze(mono, 44100, 1, onset.BatchOptions()))
	})

	Convey("Empty, short and silent input yield no onsets", t, func() {
		So(onset.Analyze(nil, 44100, 1, onset.BatchOptions()), ShouldBeEmpty)
		So(onset.Analyze(make([]float64, 1000), 44100, 1, onset.BatchOptions()), ShouldBeEmpty)
		So(onset.Analyze(testdata.Silence(44100, 2, 3), 44100, 2, onset.BatchOptions()), ShouldBeEmpty)
	})
}

func TestMergeCloseOnsets(t *testing.T) {
	Convey("Close onsets collapse onto the earlier one", t, func() {
		merged := onset.MergeCloseOnsets([]float64{1.0, 0.5, 0.52, 1.0, 1.05, 1.2}, 0.06)
		So(merged, ShouldResemble, []float64{0.5, 1.0, 1.2})
	})

	Convey("Merged output is ascending with no gap below the minimum", t, func() {
		in := []float64{3.3, 0.01, 2.2, 2.21, 0.02, 7, 6.95, 0, 0, 4.5}
		merged := onset.MergeCloseOnsets(in, 0.1)
		for i := 1; i < len(merged); i++ {
			So(merged[i]-merged[i-1], ShouldBeGreaterThanOrEqualTo, 0.1)
		}
		So(in[0], ShouldEqual, 3.3)
	})

	Convey("Nothing in, nothing out", t, func() {
		So(onset.MergeCloseOnsets(nil, 0.1), ShouldBeEmpty)
	})
}

func TestEstimateBPM(t *testing.T) {
	Convey("Too few onsets give no estimate", t, func() {
		So(onset.EstimateBPM([]float64{0, 0.5, 1}), ShouldEqual, 0)
	})

	Convey("Intervals out of range give no estimate", t, func() {
		So(onset.EstimateBPM([]float64{0, 0.1, 0.15, 0.2, 0.3}), ShouldEqual, 0)
		So(onset.EstimateBPM([]float64{0, 3, 6, 9}), ShouldEqual, 0)
	})

	Convey("A steady beat with outliers keeps its tempo", t, func() {
		onsets := []float64{}
		for i := 0; i < 16; i++ {
			onsets = append(onsets, float64(i)*0.5)
		}
		onsets = append(onsets, 8.1, 8.6, 9.1, 9.6, 12.0)
		So(onset.EstimateBPM(onsets), ShouldAlmostEqual, 120, 1e-6)
	})

	Convey("Only intervals near the median count", t, func() {
		steady := func(last float64) []float64 {
			onsets := []float64{0}
			for i := 0; i < 8; i++ {
				onsets = append(onsets, onsets[len(onsets)-1]+0.5)
			}
			return append(onsets, onsets[len(onsets)-1]+last)
		}
		// 12% long: inside the cluster, averaged in.
		So(onset.EstimateBPM(steady(0.56)), ShouldAlmostEqual, 60/((8*0.5+0.56)/9), 1e-6)
		// 20% long: outside, ignored.
		So(onset.EstimateBPM(steady(0.6)), ShouldAlmostEqual, 120, 1e-6)
	})

	Convey("Hop quantized intervals average out", t, func() {
		onsets := []float64{}
		for i := 0; i < 20; i++ {
			t := 0.25 + float64(i)*0.5
			onsets = append(onsets, math.Round(t/hopSeconds)*hopSeconds)
		}
		So(onset.EstimateBPM(onsets), ShouldAlmostEqual, 120, 1)
	})
}

func TestDetector(t *testing.T) {
	Convey("Given a streaming detector with batch settings", t, func() {
		samples, _ := testdata.ClickTrack(44100, 2, 0.25, 0.5, 10)
		batch := onset.Analyze(samples, 44100, 2, onset.BatchOptions())
		d := onset.NewDetector(44100, 2, onset.BatchOptions())

		var stream []float64
		for start := 0; start < len(samples); start += 735 {
			end := min(start+735, len(samples))
			if t, ok := d.PushFrame(samples[start:end]); ok {
				stream = append(stream, t)
			}
		}
		for {
			t, ok := d.PushFrame(nil)
			if !ok {
				break
			}
			stream = append(stream, t)
		}

		Convey("It agrees with offline analysis away from the end", func() {
			So(len(stream), ShouldBeGreaterThanOrEqualTo, len(batch)-1)
			for i, t := range stream {
				So(t, ShouldEqual, batch[i])
			}
		})

		Convey("Reset restarts the stream clock", func() {
			So(d.Elapsed(), ShouldBeGreaterThan, 9.9)
			d.Reset()
			So(d.Elapsed(), ShouldEqual, 0)
		})
	})

	Convey("Large buffers return one onset per call", t, func() {
		samples, clicks := testdata.ClickTrack(44100, 1, 0.25, 0.5, 4)
		d := onset.NewDetector(44100, 1, onset.BatchOptions())
		first, ok := d.PushFrame(samples)
		So(ok, ShouldBeTrue)
		So(math.Abs(first-clicks[0]), ShouldBeLessThanOrEqualTo, hopSeconds)

		n := 1
		for {
			if _, ok := d.PushFrame(nil); !ok {
				break
			}
			n++
		}
		So(n, ShouldBeGreaterThanOrEqualTo, len(clicks)-1)
	})

	Convey("The threshold multiplier is clamped", t, func() {
		d := onset.NewDetector(48000, 2, onset.StreamOptions())
		So(d.Threshold(), ShouldEqual, onset.DefaultStreamMultiplier)
		d.SetThreshold(0.1)
		So(d.Threshold(), ShouldEqual, 0.5)
		d.SetThreshold(9)
		So(d.Threshold(), ShouldEqual, 5.0)
		d.Reset()
		So(d.Threshold(), ShouldEqual, 5.0)
		So(d.Rate(), ShouldEqual, 24000)
	})
}

func BenchmarkAnalyze(b *testing.B) {
	samples, _ := testdata.ClickTrack(44100, 2, 0.25, 0.5, 30)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		onset.Analyze(samples, 44100, 2, onset.BatchOptions())
	}
}

func BenchmarkDetector(b *testing.B) {
	samples, _ := testdata.ClickTrack(48000, 2, 0.25, 0.5, 10)
	d := onset.NewDetector(48000, 2, onset.StreamOptions())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		start := (i * 1024) % (len(samples) - 1024)
		d.PushFrame(samples[start : start+1024])
	}
}
