// Package testdata generates synthetic audio for tests and benchmarks.
package testdata

import (
	"math"
	"math/rand"
)

// ClickTrack renders length seconds of interleaved audio with a short
// decaying noise burst at first, first+period, ... Bursts are identical in
// every channel. The returned click times are the burst starts.
func ClickTrack(sampleRate, channels int, first, period, length float64) ([]float64, []float64) {
	frames := int(length * float64(sampleRate))
	samples := make([]float64, frames*channels)
	rng := rand.New(rand.NewSource(1))

	// Low background noise keeps the flux from being exactly zero.
	for i := 0; i < frames; i++ {
		v := (rng.Float64()*2 - 1) * 1e-6
		for c := 0; c < channels; c++ {
			samples[i*channels+c] = v
		}
	}

	burst := int(0.003 * float64(sampleRate))
	var clicks []float64
	for t := first; t < length-0.01; t += period {
		clicks = append(clicks, t)
		start := int(math.Round(t * float64(sampleRate)))
		for k := 0; k < burst && start+k < frames; k++ {
			v := (rng.Float64()*2 - 1) * 0.8 * math.Exp(-float64(k)/float64(burst)*3)
			for c := 0; c < channels; c++ {
				samples[(start+k)*channels+c] = v
			}
		}
	}
	return samples, clicks
}

// Silence returns length seconds of zeroed interleaved audio.
func Silence(sampleRate, channels int, length float64) []float64 {
	return make([]float64, int(length*float64(sampleRate))*channels)
}
