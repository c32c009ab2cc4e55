// Package onset detects musical onsets with banded spectral flux, an
// adaptive threshold and peak picking, offline over a whole track or live
// over a stream of capture buffers.
package onset

import (
	"math"
	"sort"
)

// Analyze returns the ascending onset times, in seconds, of interleaved
// samples in [-1,1]. Empty input, or input shorter than one frame after
// decimation, yields an empty slice.
func Analyze(samples []float64, sampleRate, channels int, opts Options) []float64 {
	onsets := []float64{}
	if len(samples) == 0 || sampleRate <= 0 {
		return onsets
	}
	p := newPipeline(sampleRate, channels, opts)
	if len(samples)/max(channels, 1)/p.mix.factor < p.opts.FrameSize {
		return onsets
	}

	accept := func(frame int) { onsets = append(onsets, p.seconds(frame)) }
	p.feed(samples, accept)
	p.flush(accept)

	return MergeCloseOnsets(onsets, p.opts.MinInterval)
}

// MergeCloseOnsets drops every onset closer than minInterval to the last
// kept one. The result is ascending with no duplicates.
func MergeCloseOnsets(onsets []float64, minInterval float64) []float64 {
	if len(onsets) == 0 {
		return []float64{}
	}
	sorted := append([]float64(nil), onsets...)
	sort.Float64s(sorted)

	merged := []float64{sorted[0]}
	for _, t := range sorted[1:] {
		last := merged[len(merged)-1]
		if t > last && t-last >= minInterval {
			merged = append(merged, t)
		}
	}
	return merged
}

// EstimateBPM estimates a tempo from onset times. Intervals outside
// [0.2s, 2s] are ignored; the median interval seeds a cluster whose mean
// gives the beat length. Returns 0 when fewer than 4 onsets are given or no
// interval survives.
//
// The cluster spans 15% either side of the median, wide enough for the hop
// jitter of detected onsets, so a stray interval inside it shifts the
// estimate where the bare median would not. Intervals beyond it are
// ignored.
func EstimateBPM(onsets []float64) float64 {
	if len(onsets) < minOnsetsForBPM {
		return 0
	}

	intervals := make([]float64, 0, len(onsets)-1)
	for i := 1; i < len(onsets); i++ {
		iv := onsets[i] - onsets[i-1]
		if iv >= minBeatInterval && iv <= maxBeatInterval {
			intervals = append(intervals, iv)
		}
	}
	if len(intervals) == 0 {
		return 0
	}

	sort.Float64s(intervals)
	median := intervals[len(intervals)/2]

	// Onsets sit on a hop grid, so intervals alternate around the true beat
	// length. The mean of the cluster around the median undoes that.
	sum, n := 0.0, 0
	for _, iv := range intervals {
		if math.Abs(iv-median) <= bpmClusterTolerance*median {
			sum += iv
			n++
		}
	}
	return 60 / (sum / float64(n))
}
