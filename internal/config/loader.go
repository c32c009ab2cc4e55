package config

import (
	"context"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	envPrefix = "TAPBEAT_"
	// EnvConfig names the YAML file to load when no path is given.
	EnvConfig = envPrefix + "CONFIG"
)

// Load builds a Config by layering defaults, an optional YAML file and
// environment variables, lowest precedence first:
//  1. defaults (New())
//  2. the YAML file at path, or at $TAPBEAT_CONFIG when path is empty
//  3. env (prefix TAPBEAT_, "__" separates sections, e.g.
//     TAPBEAT_JUDGEMENT__PERFECT=40ms)
func Load(_ context.Context, path string) (*Config, error) {
	base := New()
	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); nil != err {
			return nil, errors.Wrapf(ErrLoadConfig, "%s: %v", path, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); nil != err {
		return nil, errors.Wrapf(ErrLoadConfig, "env: %v", err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); nil != err {
		return nil, errors.Wrapf(ErrLoadConfig, "unmarshal: %v", err)
	}
	if err := cfg.Validate(); nil != err {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	switch {
	case !c.Windows().Valid():
		return errors.Wrap(ErrInvalidConfig, "judgement windows must be positive and nested")
	case c.Calibration.Taps < 2:
		return errors.Wrap(ErrInvalidConfig, "calibration needs at least 2 taps")
	case c.Calibration.Timeout <= 0:
		return errors.Wrap(ErrInvalidConfig, "calibration timeout must be positive")
	case c.Onset.HopSize <= 0 || c.Onset.HopSize > c.Onset.FrameSize:
		return errors.Wrap(ErrInvalidConfig, "hop size must be in (0, frame size]")
	case c.Render.Rate <= 0:
		return errors.Wrap(ErrInvalidConfig, "playback rate must be positive")
	case c.Capture.SampleRate <= 0 || c.Capture.Channels <= 0:
		return errors.Wrap(ErrInvalidConfig, "capture needs a sample rate and channels")
	case c.Drift.SystemTrust <= 0 || c.Drift.SystemTrust > 1 ||
		c.Drift.MicrophoneTrust <= 0 || c.Drift.MicrophoneTrust > 1:
		return errors.Wrap(ErrInvalidConfig, "source trust must be in (0, 1]")
	}
	return nil
}
