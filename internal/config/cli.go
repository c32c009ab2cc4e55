package config

import (
	"time"

	"gopkg.in/alecthomas/kingpin.v2"
)

// Commands.
const (
	CommandAnalyze = "analyze"
	CommandPlay    = "play"
	CommandLive    = "live"
	CommandHistory = "history"
)

// CLI is the parsed command line.
type CLI struct {
	app *kingpin.Application

	ConfigPath  *string
	LogLevel    *string
	MetricsAddr *string
	Database    *string
	Offset      *time.Duration
	Rate        *float64

	// analyze, play and history take a track.
	AnalyzePath *string
	Force       *bool
	PlayPath    *string
	HistoryPath *string

	// live takes raw PCM streams, "-" for stdin.
	System     *string
	Microphone *string
}

func NewCLI(version string) *CLI {
	app := kingpin.New("tapbeat", "Tap along to music and get judged on your timing.")
	app.Version(version)
	c := &CLI{app: app}

	c.ConfigPath = app.Flag("config", "YAML configuration file").Short('c').Envar(EnvConfig).String()
	c.LogLevel = app.Flag("log-level", "debug, info, warn or error").Short('l').String()
	c.MetricsAddr = app.Flag("metrics-addr", "Serve prometheus metrics on this address").String()
	c.Database = app.Flag("db", "Score database").String()
	c.Offset = app.Flag("offset", "Global offset").Short('o').Duration()
	c.Rate = app.Flag("rate", "Playback rate").Short('r').Float64()

	analyze := app.Command(CommandAnalyze, "Detect onsets and tempo of a track")
	c.AnalyzePath = analyze.Arg("track", "Audio file (mp3, ogg, wav)").Required().ExistingFile()
	c.Force = analyze.Flag("force", "Ignore the cached beat map").Short('f').Bool()

	play := app.Command(CommandPlay, "Play a track and judge taps against its beats")
	c.PlayPath = play.Arg("track", "Audio file (mp3, ogg, wav)").Required().ExistingFile()

	live := app.Command(CommandLive, "Tap a tempo and keep it aligned with live audio")
	c.System = live.Flag("system", "Raw s16le PCM of system audio").String()
	c.Microphone = live.Flag("mic", "Raw s16le PCM of a microphone").String()

	history := app.Command(CommandHistory, "Rescore past rounds of a track")
	c.HistoryPath = history.Arg("track", "Audio file (mp3, ogg, wav)").Required().ExistingFile()

	return c
}

// Parse parses args, without the program name, and returns the command.
func (c *CLI) Parse(args []string) (string, error) {
	return c.app.Parse(args)
}

// Apply overrides cfg with the flags that were given.
func (c *CLI) Apply(cfg *Config) error {
	if *c.LogLevel != "" {
		cfg.LogLevel = *c.LogLevel
	}
	if *c.MetricsAddr != "" {
		cfg.MetricsAddr = *c.MetricsAddr
	}
	if *c.Database != "" {
		cfg.Database = *c.Database
	}
	if *c.Offset != 0 {
		cfg.Judgement.Offset = *c.Offset
	}
	if *c.Rate != 0 {
		cfg.Render.Rate = *c.Rate
	}
	return cfg.Validate()
}
