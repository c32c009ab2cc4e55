package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"git.lost.host/meutraa/tapbeat/internal/config"
	"git.lost.host/meutraa/tapbeat/pkg/logger"
	"git.lost.host/meutraa/tapbeat/pkg/metrics"
)

const version = "0.3.0"

func main() {
	if err := run(); nil != err {
		fmt.Fprintln(os.Stderr, "tapbeat:", err)
		os.Exit(1)
	}
}

func run() error {
	cli := config.NewCLI(version)
	cmd, err := cli.Parse(os.Args[1:])
	if nil != err {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx, *cli.ConfigPath)
	if nil != err {
		return err
	}
	if err := cli.Apply(cfg); nil != err {
		return err
	}
	if err := logger.Init(os.Stderr, cfg.LogLevel); nil != err {
		return err
	}
	log := logger.Get()
	metrics.Init(metrics.WithNamespace(cfg.MetricsNamespace), metrics.WithErrorBuckets(cfg.ErrorBuckets()))

	if cfg.MetricsAddr != "" {
		srv := serveMetrics(ctx, cfg.MetricsAddr, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	p := NewProgram(cfg, log)
	if err := p.Init(ctx); nil != err {
		return err
	}
	defer p.Deinit()

	switch cmd {
	case config.CommandAnalyze:
		return p.Analyze(ctx, *cli.AnalyzePath, *cli.Force)
	case config.CommandPlay:
		return p.Play(ctx, *cli.PlayPath)
	case config.CommandLive:
		return p.Live(ctx, *cli.System, *cli.Microphone)
	case config.CommandHistory:
		return p.History(ctx, *cli.HistoryPath)
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func serveMetrics(ctx context.Context, addr string, log logger.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info(ctx, "serving metrics", logger.String("addr", addr))
		if err := srv.ListenAndServe(); nil != err && err != http.ErrServerClosed {
			log.Error(ctx, "metrics server failed", logger.Error(err))
		}
	}()
	return srv
}
