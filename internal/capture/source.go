package capture

import (
	"git.lost.host/meutraa/tapbeat/internal/game"
	"git.lost.host/meutraa/tapbeat/internal/onset"
	"git.lost.host/meutraa/tapbeat/pkg/metrics"
)

// Source turns the audio written into a ring into trust tagged onsets. It
// is polled from the engine tick and never blocks.
type Source struct {
	name     string
	trust    float64
	channels int
	rate     int

	ring     *Ring
	detector *onset.Detector
	cursor   uint64
	hop      uint64 // samples, all channels

	// origin is the session time of sample zero of the ring; base is the
	// offset of the detector's own clock after the reader was lapped.
	origin float64
	base   float64

	chunk []float64
}

// SourceConfig describes the audio written into a source's ring.
type SourceConfig struct {
	Name       string
	Trust      float64
	SampleRate int
	Channels   int
	// Origin is the session time at which the first sample was captured.
	Origin  float64
	Options onset.Options
}

func NewSource(ring *Ring, cfg SourceConfig) *Source {
	if cfg.Channels < 1 {
		cfg.Channels = 1
	}
	d := onset.NewDetector(cfg.SampleRate, cfg.Channels, cfg.Options)
	hop := uint64(d.HopSamples() * cfg.Channels)
	return &Source{
		name:     cfg.Name,
		trust:    cfg.Trust,
		channels: cfg.Channels,
		rate:     cfg.SampleRate,
		ring:     ring,
		detector: d,
		hop:      hop,
		origin:   cfg.Origin,
		chunk:    make([]float64, hop),
	}
}

func (s *Source) Name() string              { return s.name }
func (s *Source) Trust() float64            { return s.trust }
func (s *Source) Cursor() uint64            { return s.cursor }
func (s *Source) Detector() *onset.Detector { return s.detector }

// Poll consumes the samples written since the last call and returns the
// onsets found in them. Fewer than one hop of new samples is left for the
// next poll. When the writer has lapped the reader, the reader jumps to the
// freshest capacity minus one hop of samples and the detector restarts
// there.
func (s *Source) Poll() []game.OnsetEvent {
	written := s.ring.Written()
	avail := written - s.cursor
	if avail < s.hop {
		return nil
	}

	if limit := uint64(s.ring.Cap()) - min(s.hop, uint64(s.ring.Cap())); avail > limit {
		skip := avail - limit
		skip += (uint64(s.channels) - skip%uint64(s.channels)) % uint64(s.channels)
		s.cursor += skip
		s.detector.Reset()
		s.base = float64(s.cursor/uint64(s.channels)) / float64(s.rate)
		metrics.RecordLapped(s.name)
	}

	var events []game.OnsetEvent
	emit := func(t float64) {
		events = append(events, game.OnsetEvent{
			Time:   s.origin + s.base + t,
			Trust:  s.trust,
			Source: s.name,
		})
		metrics.RecordOnset(s.name)
	}

	for written-s.cursor >= s.hop {
		n := s.ring.Read(s.cursor, s.chunk)
		s.cursor += uint64(n)
		if t, ok := s.detector.PushFrame(s.chunk[:n]); ok {
			emit(t)
		}
	}
	for {
		t, ok := s.detector.PushFrame(nil)
		if !ok {
			break
		}
		emit(t)
	}
	return events
}
