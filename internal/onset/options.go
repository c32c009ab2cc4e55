package onset

// Default analysis parameters.
const (
	DefaultFrameSize       = 1024
	DefaultHopSize         = 512
	DefaultTilt            = 1.0
	DefaultThresholdWindow = 0.25 // seconds, centered
	DefaultSpreadFloor     = 0.001
	MinThresholdFrames     = 10

	DefaultBatchBands       = 32
	DefaultBatchRate        = 11025
	DefaultBatchMultiplier  = 1.4
	DefaultBatchMinInterval = 0.06

	DefaultStreamBands       = 8
	DefaultStreamRate        = 22050
	DefaultStreamMultiplier  = 1.5
	DefaultStreamMinInterval = 0.1

	minThresholdMultiplier = 0.5
	maxThresholdMultiplier = 5.0

	bpmClusterTolerance = 0.15
	minOnsetsForBPM     = 4
	minBeatInterval     = 0.2 // 300 bpm
	maxBeatInterval     = 2.0 // 30 bpm
)

// Options tunes the detector. Batch and streaming detection share the
// algorithm and differ only in these values.
type Options struct {
	FrameSize int
	HopSize   int

	// Bands is the number of Goertzel resonators per frame.
	Bands int
	// Tilt weights band b of n by 1+Tilt*b/n, favouring high frequencies.
	Tilt float64

	// TargetRate is the rate the input is decimated toward; 0 keeps the input rate.
	TargetRate int

	// ThresholdWindow is the width in seconds of the centered threshold window.
	ThresholdWindow     float64
	ThresholdMultiplier float64
	// SpreadFloor is the lowest spread term, so silence never yields a zero threshold.
	SpreadFloor float64

	// MinInterval is the shortest gap in seconds between accepted onsets.
	MinInterval float64
}

// BatchOptions returns the defaults for offline track analysis.
func BatchOptions() Options {
	return Options{
		FrameSize:           DefaultFrameSize,
		HopSize:             DefaultHopSize,
		Bands:               DefaultBatchBands,
		Tilt:                DefaultTilt,
		TargetRate:          DefaultBatchRate,
		ThresholdWindow:     DefaultThresholdWindow,
		ThresholdMultiplier: DefaultBatchMultiplier,
		SpreadFloor:         DefaultSpreadFloor,
		MinInterval:         DefaultBatchMinInterval,
	}
}

// StreamOptions returns the defaults for live capture.
func StreamOptions() Options {
	return Options{
		FrameSize:           DefaultFrameSize,
		HopSize:             DefaultHopSize,
		Bands:               DefaultStreamBands,
		Tilt:                DefaultTilt,
		TargetRate:          DefaultStreamRate,
		ThresholdWindow:     DefaultThresholdWindow,
		ThresholdMultiplier: DefaultStreamMultiplier,
		SpreadFloor:         DefaultSpreadFloor,
		MinInterval:         DefaultStreamMinInterval,
	}
}

// normalized fills unset or invalid fields from the batch defaults.
func (o Options) normalized() Options {
	def := BatchOptions()
	if o.FrameSize <= 1 {
		o.FrameSize = def.FrameSize
	}
	if o.HopSize <= 0 || o.HopSize > o.FrameSize {
		o.HopSize = o.FrameSize / 2
	}
	if o.Bands <= 0 {
		o.Bands = def.Bands
	}
	if o.Bands > o.FrameSize/2 {
		o.Bands = o.FrameSize / 2
	}
	if o.TargetRate < 0 {
		o.TargetRate = 0
	}
	if o.ThresholdWindow <= 0 {
		o.ThresholdWindow = def.ThresholdWindow
	}
	o.ThresholdMultiplier = clampMultiplier(o.ThresholdMultiplier, def.ThresholdMultiplier)
	if o.SpreadFloor <= 0 {
		o.SpreadFloor = def.SpreadFloor
	}
	if o.MinInterval < 0 {
		o.MinInterval = 0
	}
	return o
}

func clampMultiplier(m, fallback float64) float64 {
	if m == 0 {
		return fallback
	}
	if m < minThresholdMultiplier {
		return minThresholdMultiplier
	}
	if m > maxThresholdMultiplier {
		return maxThresholdMultiplier
	}
	return m
}
