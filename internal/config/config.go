// Package config loads the optional guppy configuration file.
//
// The file is TOML:
//
//	platform = "x86_64-unknown-linux-gnu"
//	verbose = true
//
//	[serve]
//	addr = ":8080"
//
//	[dot]
//	detailed = true
//
// Command-line flags override values from the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	appName = "guppy"

	// DefaultAddr is the listen address of "guppy serve".
	DefaultAddr = "127.0.0.1:8080"
)

// Config holds settings shared by all commands.
type Config struct {
	// Platform is a target triple used to evaluate platform conditions.
	Platform string `toml:"platform"`
	Verbose  bool   `toml:"verbose"`
	Serve    Serve  `toml:"serve"`
	Dot      Dot    `toml:"dot"`
}

type Serve struct {
	Addr string `toml:"addr"`
}

type Dot struct {
	Detailed bool `toml:"detailed"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{Serve: Serve{Addr: DefaultAddr}}
}

// Path returns the default configuration file location,
// $XDG_CONFIG_HOME/guppy/config.toml or ~/.config/guppy/config.toml.
func Path() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the configuration at path. An empty path means [Path]; a
// missing file at the default location yields [Default], but a missing
// explicit path is an error.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes TOML configuration, filling unset values from [Default].
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Serve.Addr == "" {
		cfg.Serve.Addr = DefaultAddr
	}
	return cfg, nil
}
