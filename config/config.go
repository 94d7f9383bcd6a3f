package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

const (
	ModeServe       = "serve"
	ModeWalkthrough = "walkthrough"
)

type Config struct {
	Addr          string `env:"ADDR" envDefault:":8855"`
	Store         string `env:"STORE" envDefault:"genji"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	Profile       string `env:"PROFILE"`
	Mode          string `env:"MODE" envDefault:"serve"`
	SessionCookie string `env:"SESSION_COOKIE" envDefault:"fasttx_session"`
}

// FromEnv reads FASTTX_* variables.
func FromEnv() (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Prefix: "FASTTX_"})
	if err != nil {
		return Config{}, errors.Wrap(err, "parse env")
	}
	switch cfg.Mode {
	case ModeServe, ModeWalkthrough:
	default:
		return Config{}, errors.Newf("unknown mode %q", cfg.Mode)
	}
	switch cfg.Profile {
	case "", "cpu", "mem":
	default:
		return Config{}, errors.Newf("unknown profile %q", cfg.Profile)
	}
	return cfg, nil
}

// SetupLogging applies LogLevel to the standard logrus logger.
func (c Config) SetupLogging() error {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return errors.WithStack(err)
	}
	logrus.SetLevel(level)
	return nil
}
