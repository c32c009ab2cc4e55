package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/pkg/errors"

	"git.lost.host/meutraa/tapbeat/internal/capture"
	"git.lost.host/meutraa/tapbeat/internal/config"
	"git.lost.host/meutraa/tapbeat/internal/engine"
	"git.lost.host/meutraa/tapbeat/internal/game"
	"git.lost.host/meutraa/tapbeat/internal/input"
	"git.lost.host/meutraa/tapbeat/internal/onset"
	"git.lost.host/meutraa/tapbeat/internal/parser"
	"git.lost.host/meutraa/tapbeat/internal/render"
	"git.lost.host/meutraa/tapbeat/internal/score"
	"git.lost.host/meutraa/tapbeat/internal/theme"
	"git.lost.host/meutraa/tapbeat/pkg/logger"
	"git.lost.host/meutraa/tapbeat/pkg/metrics"
)

const keyBuffer = 128

type Program struct {
	Parser parser.Parser
	Store  score.Store
	Theme  theme.Theme

	cfg *config.Config
	log logger.Logger
}

func NewProgram(cfg *config.Config, log logger.Logger) *Program {
	return &Program{
		Parser: &parser.DefaultParser{},
		Store:  score.NewSQLiteStore(cfg.Database),
		Theme:  &theme.DefaultTheme{},
		cfg:    cfg,
		log:    log.Named("program"),
	}
}

func (p *Program) Init(ctx context.Context) error {
	return p.Store.Init(ctx)
}

func (p *Program) Deinit() {
	p.Store.Deinit()
}

// beatMap returns the onsets and tempo of track from the cache, analysing
// and caching them on a miss or when force is set.
func (p *Program) beatMap(ctx context.Context, track *game.Track, force bool) ([]float64, float64, error) {
	if !force {
		onsets, bpm, err := p.Store.LoadBeatMap(ctx, track.Sum)
		if nil == err {
			p.log.Debug(ctx, "beat map cached", logger.String("sum", track.Sum))
			return onsets, bpm, nil
		}
		if !errors.Is(err, score.ErrNotFound) {
			return nil, 0, err
		}
	}

	start := time.Now()
	onsets := onset.Analyze(track.Samples, track.SampleRate, track.Channels, p.cfg.BatchOptions())
	bpm := onset.EstimateBPM(onsets)
	metrics.RecordAnalysis(time.Since(start).Seconds())
	p.log.Info(ctx, "track analysed",
		logger.String("path", track.Path),
		logger.Int("onsets", len(onsets)),
		logger.Float64("bpm", bpm),
		logger.Float64("seconds", time.Since(start).Seconds()))

	if err := p.Store.SaveBeatMap(ctx, track.Sum, onsets, bpm); nil != err {
		return nil, 0, err
	}
	return onsets, bpm, nil
}

func (p *Program) Analyze(ctx context.Context, path string, force bool) error {
	track, err := p.Parser.Parse(path)
	if nil != err {
		return err
	}
	onsets, bpm, err := p.beatMap(ctx, track, force)
	if nil != err {
		return err
	}
	fmt.Printf("%v\n", track.Path)
	fmt.Printf("   Duration:  %8.2f s\n", track.Duration())
	fmt.Printf("     Onsets:  %8v\n", len(onsets))
	if bpm == 0 {
		fmt.Printf("        BPM:  %8v\n", "unknown")
	} else {
		fmt.Printf("        BPM:  %8.2f\n", bpm)
	}
	return nil
}

func (p *Program) History(ctx context.Context, path string) error {
	track, err := p.Parser.Parse(path)
	if nil != err {
		return err
	}
	onsets, _, err := p.beatMap(ctx, track, false)
	if nil != err {
		return err
	}
	histories, err := p.Store.LoadHistory(ctx, track.Sum)
	if nil != err {
		return err
	}

	bm := game.NewBeatMap(onsets)
	fmt.Printf("%-20v %-36v %5v %5v %5v %5v %9v\n", "Played", "Session", "Perf", "Good", "Okay", "Miss", "Stdev")
	for _, h := range histories {
		s := score.Replay(bm, h.Taps, p.cfg.Windows())
		fmt.Printf("%-20v %-36v %5v %5v %5v %5v %6.2f ms\n",
			h.Played.Format("2006-01-02 15:04:05"), h.ID,
			s.Counts[game.Perfect], s.Counts[game.Good], s.Counts[game.OK], s.Counts[game.Miss],
			s.StdDev*1000)
	}
	return nil
}

// runSession drives a session from the keyboard until quit, ctx is done or
// draw returns false. clock stamps key presses.
func (p *Program) runSession(
	ctx context.Context,
	session *engine.Session,
	delay time.Duration,
	clock func() float64,
	draw func(hud *render.Hud, t float64) bool,
) error {
	kb, err := input.Open(keyBuffer)
	if nil != err {
		return errors.Wrap(err, "open keyboard")
	}
	defer func() {
		if err := kb.Close(); nil != err {
			p.log.Warn(ctx, "unable to close keyboard", logger.Error(err))
		}
	}()

	r := render.NewDefaultRenderer()
	if err := r.Init(); nil != err {
		return errors.Wrap(err, "init terminal")
	}
	defer func() {
		if err := r.Deinit(); nil != err {
			p.log.Warn(ctx, "unable to restore terminal", logger.Error(err))
		}
	}()
	hud := render.NewHud(r, p.Theme)
	session.AddObserver(hud)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := input.Forward(ctx, kb.Keys(), clock, session.Post); nil != err && ctx.Err() == nil {
			p.log.Error(ctx, "keyboard failed", logger.Error(err))
		}
	}()

	r.RenderLoop(delay, p.cfg.Render.FramePeriod, func(now time.Time, elapsed time.Duration) bool {
		select {
		case <-done:
			return false
		case <-ctx.Done():
			return false
		default:
		}
		session.Tick(ctx)
		return draw(hud, clock())
	})
	return nil
}

func (p *Program) Play(ctx context.Context, path string) error {
	track, err := p.Parser.Parse(path)
	if nil != err {
		return err
	}
	onsets, _, err := p.beatMap(ctx, track, false)
	if nil != err {
		return err
	}
	streamer, format, err := p.Parser.Open(path)
	if nil != err {
		return err
	}
	defer streamer.Close()

	// The speaker runs at a scaled sample rate, so the same samples play at
	// the configured rate.
	rate := beep.SampleRate(math.Round(float64(format.SampleRate) * p.cfg.Render.Rate))
	if err := speaker.Init(rate, format.SampleRate.N(time.Second/60)); nil != err {
		return errors.Wrap(err, "init speaker")
	}
	defer speaker.Close()

	session := engine.NewSession(p.cfg.EngineOptions(), p.log)
	session.UseBeatMap(game.NewBeatMap(onsets))
	p.log.Info(ctx, "round started",
		logger.String("session", session.ID),
		logger.String("track", track.Path),
		logger.Float64("rate", p.cfg.Render.Rate),
		logger.Float64("offset", p.cfg.Judgement.Offset.Seconds()))

	delay := p.cfg.Render.Delay
	clock := p.cfg.TrackClock(time.Now().Add(delay))
	end := track.Duration() + 1

	timer := time.AfterFunc(delay, func() { speaker.Play(streamer) })
	defer timer.Stop()

	err = p.runSession(ctx, session, delay, clock, func(hud *render.Hud, t float64) bool {
		hud.Draw(session.Stats(), nil, t)
		return t < end
	})
	if nil != err {
		return err
	}
	return p.finish(ctx, session, track.Sum)
}

func (p *Program) Live(ctx context.Context, systemPath, micPath string) error {
	session := engine.NewSession(p.cfg.EngineOptions(), p.log)
	p.log.Info(ctx, "live session started", logger.String("session", session.ID))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	streams := []struct {
		name, path string
		trust      float64
	}{
		{game.SourceSystem, systemPath, p.cfg.Drift.SystemTrust},
		{game.SourceMicrophone, micPath, p.cfg.Drift.MicrophoneTrust},
	}
	for _, s := range streams {
		if s.path == "" {
			continue
		}
		r, err := openPCM(s.path)
		if nil != err {
			return err
		}
		ring := capture.NewRing(p.cfg.RingSamples())
		session.AddSource(capture.NewSource(ring, capture.SourceConfig{
			Name:       s.name,
			Trust:      s.trust,
			SampleRate: p.cfg.Capture.SampleRate,
			Channels:   p.cfg.Capture.Channels,
			Origin:     session.Clock(),
			Options:    p.cfg.StreamOptions(),
		}))

		go func(name string) {
			defer r.Close()
			// A failed source stops producing; the session keeps the others.
			if err := capture.ReadPCM(ctx, r, ring, p.cfg.Capture.Channels); nil != err && ctx.Err() == nil {
				p.log.Error(ctx, "capture stopped", logger.String("source", name), logger.Error(err))
			}
		}(s.name)
	}

	err := p.runSession(ctx, session, 0, session.Clock, func(hud *render.Hud, t float64) bool {
		if session.Grid() == nil {
			hud.SetStatus(session.State().String())
		}
		hud.Draw(session.Stats(), session.Grid(), t)
		return true
	})
	cancel()
	if nil != err {
		return err
	}
	return p.finish(ctx, session, "")
}

func (p *Program) finish(ctx context.Context, session *engine.Session, sum string) error {
	stats := session.Finish()
	p.log.Info(ctx, "round finished",
		logger.String("session", session.ID),
		logger.Int("taps", stats.Taps),
		logger.Int("max_combo", stats.MaxCombo))

	if len(session.Taps()) > 0 {
		if err := p.Store.SaveHistory(context.WithoutCancel(ctx), session.History(sum)); nil != err {
			return err
		}
	}

	for _, tier := range game.Tiers {
		fmt.Printf("%v:  %6v\n", p.Theme.RenderTier(tier), stats.Counts[tier])
	}
	fmt.Printf("  Max Combo:  %6v\n", stats.MaxCombo)
	fmt.Printf("       Mean:  %6.2f ms\n", stats.Mean*1000)
	fmt.Printf("      Stdev:  %6.2f ms\n", stats.StdDev*1000)
	return nil
}

// openPCM opens a raw PCM stream, "-" being stdin.
func openPCM(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if nil != err {
		return nil, errors.Wrap(err, "open capture")
	}
	return f, nil
}
