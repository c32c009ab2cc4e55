// Package engine owns a beat tracking session: it calibrates the beat grid
// from taps, keeps it aligned with live onsets and judges every tap.
package engine

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"git.lost.host/meutraa/tapbeat/internal/calibrate"
	"git.lost.host/meutraa/tapbeat/internal/capture"
	"git.lost.host/meutraa/tapbeat/internal/drift"
	"git.lost.host/meutraa/tapbeat/internal/game"
	"git.lost.host/meutraa/tapbeat/internal/queue"
	"git.lost.host/meutraa/tapbeat/internal/score"
	"git.lost.host/meutraa/tapbeat/pkg/logger"
	"git.lost.host/meutraa/tapbeat/pkg/metrics"
)

// Options configure a session.
type Options struct {
	CalibrationTaps    int
	CalibrationTimeout float64 // seconds
	Windows            score.Windows
	Drift              drift.Options
	QueueCapacity      int
}

func DefaultOptions() Options {
	return Options{
		CalibrationTaps:    calibrate.DefaultTaps,
		CalibrationTimeout: calibrate.DefaultTimeout,
		Windows:            score.DefaultWindows(),
		Drift:              drift.DefaultOptions(),
		QueueCapacity:      256,
	}
}

// Session is one beat tracking round. All grid mutation happens in the
// methods below, which must be called from a single goroutine; producers
// on other goroutines use Post.
type Session struct {
	ID      string
	Started time.Time

	log        logger.Logger
	calibrator *calibrate.Calibrator
	corrector  *drift.Corrector
	judge      *score.Judge
	round      *score.Round // set in beat map mode
	queue      *queue.InMemoryQueue

	sources   []*capture.Source
	observers []Observer

	taps []float64
}

func NewSession(opts Options, log logger.Logger) *Session {
	if nil == log {
		log = logger.Nop()
	}
	judge := score.NewJudge(opts.Windows)
	// Onsets may only move the grid from within the OK window.
	opts.Drift.AcceptWindow = judge.Windows().OK

	return &Session{
		ID:         uuid.NewString(),
		Started:    time.Now(),
		log:        log.Named("engine"),
		calibrator: calibrate.New(opts.CalibrationTaps, opts.CalibrationTimeout),
		corrector:  drift.New(opts.Drift),
		judge:      judge,
		queue:      queue.NewInMemoryQueue(queue.WithCapacity(opts.QueueCapacity)),
	}
}

// UseBeatMap switches the session to judging taps against a beat map
// instead of the tap calibrated grid.
func (s *Session) UseBeatMap(bm *game.BeatMap) {
	s.round = score.NewRound(bm, s.judge.Windows())
	s.judge = s.round.Judge
}

func (s *Session) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// AddSource registers a capture source polled on every tick.
func (s *Session) AddSource(src *capture.Source) { s.sources = append(s.sources, src) }

// Queue returns the inbound event queue.
func (s *Session) Queue() *queue.InMemoryQueue { return s.queue }

// Post queues an event for the next tick. It is safe for concurrent use
// and never blocks; false means the event was dropped.
func (s *Session) Post(e queue.Event) bool { return s.queue.Enqueue(e) }

func (s *Session) State() calibrate.State { return s.calibrator.State() }

// Grid returns the live grid, or nil before calibration.
func (s *Session) Grid() *game.BeatGrid { return s.calibrator.Grid() }

func (s *Session) Stats() score.Stats { return s.judge.Stats() }

// Taps returns the judged tap times of the round.
func (s *Session) Taps() []float64 { return s.taps }

// Clock returns the session time of now.
func (s *Session) Clock() float64 { return time.Since(s.Started).Seconds() }

// Tick handles every queued event, then polls every capture source.
func (s *Session) Tick(ctx context.Context) {
	s.queue.Drain(0, func(e queue.Event) {
		switch e.Kind {
		case queue.KindTap:
			s.OnTap(ctx, e.Tap.Time, e.Tap.Touches)
		case queue.KindReset:
			s.OnReset(ctx)
		case queue.KindOnset:
			s.OnOnset(ctx, e.Onset)
		}
	})
	for _, src := range s.sources {
		for _, ev := range src.Poll() {
			s.OnOnset(ctx, ev)
		}
	}
}

// OnTap handles a tap at session time t.
func (s *Session) OnTap(ctx context.Context, t float64, touches int) {
	if nil != s.round {
		if touches >= calibrate.ResetTouches {
			return
		}
		res, _ := s.round.Tap(t)
		s.taps = append(s.taps, t)
		s.judged(res)
		return
	}

	res := s.calibrator.Tap(t, touches)
	switch {
	case res.Reset:
		s.reset(ctx)
	case res.Locked:
		grid := s.calibrator.Grid()
		s.judge.Reset()
		s.corrector.Reset()
		s.taps = s.taps[:0]
		metrics.RecordGridLock(grid.BPM())
		s.log.Info(ctx, "grid locked",
			logger.Float64("bpm", grid.BPM()),
			logger.Float64("anchor", grid.Anchor()))
		for _, o := range s.observers {
			o.OnGridLocked(grid.BPM())
		}
	case res.Restarted:
		s.log.Debug(ctx, "calibration restarted", logger.Float64("at", t))
	case res.Judge:
		s.judgeTap(ctx, t)
	}
}

func (s *Session) judgeTap(ctx context.Context, t float64) {
	grid := s.calibrator.Grid()
	res := s.judge.Judge(grid.NearestBeat(t).Error)
	s.taps = append(s.taps, t)
	s.judged(res)

	c := s.corrector.SelfCorrect(grid, t)
	if c.Tempo {
		metrics.RecordTempoCorrection(grid.BPM())
		s.log.Debug(ctx, "tempo corrected",
			logger.Float64("bias", c.Bias),
			logger.Float64("bpm", grid.BPM()))
	}
}

func (s *Session) judged(res game.JudgementResult) {
	if res.Tier.Hit() {
		metrics.RecordTap(res.Tier.String(), math.Abs(res.Error))
	} else {
		metrics.RecordMiss(res.Tier.String())
	}
	for _, o := range s.observers {
		o.OnJudgement(res)
	}
}

// OnReset drops the grid and any calibration in progress.
func (s *Session) OnReset(ctx context.Context) {
	if nil != s.round {
		return
	}
	s.calibrator.Reset()
	s.reset(ctx)
}

func (s *Session) reset(ctx context.Context) {
	s.corrector.Reset()
	metrics.RecordGridReset()
	s.log.Info(ctx, "grid reset")
	for _, o := range s.observers {
		o.OnGridReset()
	}
}

// OnOnset folds an onset from a live source into the grid. Onsets arriving
// before lock, or in beat map mode, are ignored.
func (s *Session) OnOnset(ctx context.Context, ev game.OnsetEvent) {
	grid := s.calibrator.Grid()
	if nil != s.round || nil == grid {
		return
	}
	err, ok := s.corrector.ApplyOnset(grid, ev)
	outcome := metrics.OutcomeDropped
	if ok {
		outcome = metrics.OutcomeApplied
	}
	metrics.RecordCorrection(ev.Source, outcome)
	s.log.Debug(ctx, "onset",
		logger.String("source", ev.Source),
		logger.Float64("error", err),
		logger.String("outcome", outcome))
}

// Finish ends the round. In beat map mode every unclaimed beat is judged a
// Miss.
func (s *Session) Finish() score.Stats {
	if nil != s.round {
		for _, res := range s.round.Finish() {
			s.judged(res)
		}
	}
	s.queue.Close()
	return s.judge.Stats()
}

// History returns the round as a history record for track sum.
func (s *Session) History(sum string) *score.History {
	h := &score.History{
		ID:     s.ID,
		Sum:    sum,
		Played: s.Started,
		Taps:   append([]float64(nil), s.taps...),
	}
	if grid := s.Grid(); nil != grid {
		h.BPM = grid.BPM()
	}
	return h
}
