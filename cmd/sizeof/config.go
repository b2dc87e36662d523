// ABOUTME: Configuration for the sizeof command
// ABOUTME: Loads an optional TOML file and lets command-line flags override it

package main

import (
	"time"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"
)

// Config holds the settings shared by all commands
type Config struct {
	Verbosity   string   `toml:"verbosity"`
	Human       bool     `toml:"human"`
	Workers     int      `toml:"workers"`
	Timeout     string   `toml:"timeout"`
	SharedTypes []string `toml:"shared_types"`
}

func defaultConfig() Config {
	return Config{Verbosity: "info"}
}

// loadConfig reads a TOML config file over the defaults. Unknown keys are
// rejected so typos do not pass silently.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, errors.Wrapf(err, "loading config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.Newf("config %s: unknown field %q", path, undecoded[0].String())
	}
	if _, err := cfg.timeout(); err != nil {
		return Config{}, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// timeout parses the configured timeout; empty means none
func (c Config) timeout() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, errors.Wrap(err, "timeout")
	}
	return d, nil
}

// settings loads the config named by --config and applies any flags set on
// the command line.
func settings(ctx *cli.Context) (Config, error) {
	cfg, err := loadConfig(ctx.String(configFlag.Name))
	if err != nil {
		return Config{}, err
	}
	if ctx.IsSet(verbosityFlag.Name) {
		cfg.Verbosity = ctx.String(verbosityFlag.Name)
	}
	if ctx.IsSet(humanFlag.Name) {
		cfg.Human = ctx.Bool(humanFlag.Name)
	}
	if ctx.IsSet(workersFlag.Name) {
		cfg.Workers = ctx.Int(workersFlag.Name)
	}
	if ctx.IsSet(timeoutFlag.Name) {
		cfg.Timeout = ctx.Duration(timeoutFlag.Name).String()
	}
	if ctx.IsSet(sharedTypesFlag.Name) {
		cfg.SharedTypes = ctx.StringSlice(sharedTypesFlag.Name)
	}
	return cfg, nil
}
