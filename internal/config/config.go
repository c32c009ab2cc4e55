// Package config holds every tunable of tapbeat with its default, loads
// overrides from YAML and the environment, and parses the command line.
package config

import (
	"time"

	"git.lost.host/meutraa/tapbeat/internal/calibrate"
	"git.lost.host/meutraa/tapbeat/internal/drift"
	"git.lost.host/meutraa/tapbeat/internal/engine"
	"git.lost.host/meutraa/tapbeat/internal/onset"
	"git.lost.host/meutraa/tapbeat/internal/score"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// MetricsAddr serves prometheus metrics when set, e.g. ":9100".
	MetricsAddr string `koanf:"metrics_addr"`

	// MetricsNamespace prefixes every metric name.
	MetricsNamespace string `koanf:"metrics_namespace"`

	// Database is the sqlite file holding beat maps and history.
	Database string `koanf:"database"`

	// QueueSize bounds the engine event queue.
	QueueSize int `koanf:"queue_size"`

	Calibration Calibration `koanf:"calibration"`
	Judgement   Judgement   `koanf:"judgement"`
	Drift       Drift       `koanf:"drift"`
	Onset       Onset       `koanf:"onset"`
	Capture     Capture     `koanf:"capture"`
	Render      Render      `koanf:"render"`
}

type Calibration struct {
	Taps    int           `koanf:"taps"`
	Timeout time.Duration `koanf:"timeout"`
}

type Judgement struct {
	Perfect time.Duration `koanf:"perfect"`
	Good    time.Duration `koanf:"good"`
	OK      time.Duration `koanf:"ok"`

	// Offset is added to every tap in play mode, compensating audio output
	// latency. Positive when the speaker lags.
	Offset time.Duration `koanf:"offset"`
}

type Drift struct {
	SelfRate      float64       `koanf:"self_rate"`
	TempoRate     float64       `koanf:"tempo_rate"`
	BiasWindow    int           `koanf:"bias_window"`
	BiasMinimum   int           `koanf:"bias_minimum"`
	BiasThreshold time.Duration `koanf:"bias_threshold"`

	SystemTrust     float64 `koanf:"system_trust"`
	MicrophoneTrust float64 `koanf:"microphone_trust"`
}

type Onset struct {
	FrameSize       int           `koanf:"frame_size"`
	HopSize         int           `koanf:"hop_size"`
	BatchRate       int           `koanf:"batch_rate"`
	BatchBands      int           `koanf:"batch_bands"`
	BatchThreshold  float64       `koanf:"batch_threshold"`
	BatchInterval   time.Duration `koanf:"batch_interval"`
	StreamRate      int           `koanf:"stream_rate"`
	StreamBands     int           `koanf:"stream_bands"`
	StreamThreshold float64       `koanf:"stream_threshold"`
	StreamInterval  time.Duration `koanf:"stream_interval"`
}

// Capture describes raw PCM streams fed to live mode.
type Capture struct {
	SampleRate int `koanf:"sample_rate"`
	Channels   int `koanf:"channels"`

	// Ring is how much audio each capture ring holds.
	Ring time.Duration `koanf:"ring"`
}

type Render struct {
	FramePeriod time.Duration `koanf:"frame_period"`
	Delay       time.Duration `koanf:"delay"`

	// Rate is the playback speed in play mode, 1 being the original.
	Rate float64 `koanf:"rate"`
}

// New creates a Config with every default.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		MetricsNamespace: "tapbeat",
		Database:         "./scores.db",
		QueueSize:        256,
		Calibration: Calibration{
			Taps:    calibrate.DefaultTaps,
			Timeout: 3 * time.Second,
		},
		Judgement: Judgement{
			Perfect: 45 * time.Millisecond,
			Good:    90 * time.Millisecond,
			OK:      150 * time.Millisecond,
		},
		Drift: Drift{
			SelfRate:        drift.DefaultSelfRate,
			TempoRate:       drift.DefaultTempoRate,
			BiasWindow:      drift.DefaultBiasWindow,
			BiasMinimum:     drift.DefaultBiasMinimum,
			BiasThreshold:   15 * time.Millisecond,
			SystemTrust:     drift.DefaultSystemTrust,
			MicrophoneTrust: drift.DefaultMicrophoneTrust,
		},
		Onset: Onset{
			FrameSize:       onset.DefaultFrameSize,
			HopSize:         onset.DefaultHopSize,
			BatchRate:       onset.DefaultBatchRate,
			BatchBands:      onset.DefaultBatchBands,
			BatchThreshold:  onset.DefaultBatchMultiplier,
			BatchInterval:   60 * time.Millisecond,
			StreamRate:      onset.DefaultStreamRate,
			StreamBands:     onset.DefaultStreamBands,
			StreamThreshold: onset.DefaultStreamMultiplier,
			StreamInterval:  100 * time.Millisecond,
		},
		Capture: Capture{
			SampleRate: 48000,
			Channels:   2,
			Ring:       2 * time.Second,
		},
		Render: Render{
			FramePeriod: 4 * time.Millisecond,
			Delay:       1500 * time.Millisecond,
			Rate:        1,
		},
	}
}

// Windows returns the judgement windows in seconds.
func (c *Config) Windows() score.Windows {
	return score.Windows{
		Perfect: c.Judgement.Perfect.Seconds(),
		Good:    c.Judgement.Good.Seconds(),
		OK:      c.Judgement.OK.Seconds(),
	}
}

// ErrorBuckets are the tap error histogram buckets: each judgement window
// and the claim range, with finer steps inside the Perfect window.
func (c *Config) ErrorBuckets() []float64 {
	w := c.Windows()
	return []float64{w.Perfect / 3, 2 * w.Perfect / 3, w.Perfect, w.Good, w.OK, w.Claim()}
}

// TrackClock returns a clock reporting track time, in seconds, for
// playback that started at start.
func (c *Config) TrackClock(start time.Time) func() float64 {
	offset, rate := c.Judgement.Offset.Seconds(), c.Render.Rate
	return func() float64 {
		return score.TrackTime(time.Since(start).Seconds(), offset, rate)
	}
}

// EngineOptions returns the session settings.
func (c *Config) EngineOptions() engine.Options {
	return engine.Options{
		CalibrationTaps:    c.Calibration.Taps,
		CalibrationTimeout: c.Calibration.Timeout.Seconds(),
		Windows:            c.Windows(),
		Drift: drift.Options{
			SelfRate:      c.Drift.SelfRate,
			BiasWindow:    c.Drift.BiasWindow,
			BiasMinimum:   c.Drift.BiasMinimum,
			BiasThreshold: c.Drift.BiasThreshold.Seconds(),
			TempoRate:     c.Drift.TempoRate,
			AcceptWindow:  c.Judgement.OK.Seconds(),
		},
		QueueCapacity: c.QueueSize,
	}
}

// BatchOptions returns the offline onset detector settings.
func (c *Config) BatchOptions() onset.Options {
	o := onset.BatchOptions()
	o.FrameSize = c.Onset.FrameSize
	o.HopSize = c.Onset.HopSize
	o.TargetRate = c.Onset.BatchRate
	o.Bands = c.Onset.BatchBands
	o.ThresholdMultiplier = c.Onset.BatchThreshold
	o.MinInterval = c.Onset.BatchInterval.Seconds()
	return o
}

// StreamOptions returns the live onset detector settings.
func (c *Config) StreamOptions() onset.Options {
	o := onset.StreamOptions()
	o.FrameSize = c.Onset.FrameSize
	o.HopSize = c.Onset.HopSize
	o.TargetRate = c.Onset.StreamRate
	o.Bands = c.Onset.StreamBands
	o.ThresholdMultiplier = c.Onset.StreamThreshold
	o.MinInterval = c.Onset.StreamInterval.Seconds()
	return o
}

// RingSamples is the capacity of a capture ring in interleaved samples.
func (c *Config) RingSamples() int {
	return int(c.Capture.Ring.Seconds()*float64(c.Capture.SampleRate)) * c.Capture.Channels
}
