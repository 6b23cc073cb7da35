// Copyright (c) 2026 TTBT Enterprises LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads server and terminal client settings. Values come from
// built-in defaults, then an optional YAML file, then DT_* environment
// variables, then command line flags, each overriding the one before.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "DT_"

// Config holds every setting of the server and the terminal client.
type Config struct {
	Addr    string `yaml:"addr" env:"ADDR"`
	DataDir string `yaml:"data_dir" env:"DATA_DIR"`
	TLSCert string `yaml:"tls_cert" env:"TLS_CERT"`
	TLSKey  string `yaml:"tls_key" env:"TLS_KEY"`
	Debug   bool   `yaml:"debug" env:"DEBUG"`

	UseMockAuth    bool   `yaml:"use_mock_auth" env:"USE_MOCK_AUTH"`
	AuthCookieName string `yaml:"auth_cookie_name" env:"AUTH_COOKIE_NAME"`
	AuthJWKSURL    string `yaml:"auth_jwks_url" env:"AUTH_JWKS_URL"`
	AuthSecret     string `yaml:"auth_secret" env:"AUTH_SECRET"`

	// SettleDelay is how long the third out stays on the board before the
	// half inning advances.
	SettleDelay  time.Duration `yaml:"settle_delay" env:"SETTLE_DELAY"`
	Highlights   int           `yaml:"highlights" env:"HIGHLIGHTS"`
	TickInterval time.Duration `yaml:"tick_interval" env:"TICK_INTERVAL"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Addr:           ":8080",
		DataDir:        "data",
		AuthCookieName: "diamondtracker_auth",
		SettleDelay:    1300 * time.Millisecond,
		Highlights:     4,
		TickInterval:   time.Second,
	}
}

// RegisterFlags binds c to flags on fs, using the current values as the
// flag defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Addr, "addr", c.Addr, "The TCP address to listen to")
	fs.StringVar(&c.DataDir, "data-dir", c.DataDir, "Directory for session data")
	fs.StringVar(&c.TLSCert, "tls-cert", c.TLSCert, "Path to the TLS certificate")
	fs.StringVar(&c.TLSKey, "tls-key", c.TLSKey, "Path to the TLS key")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "Enable debug mode")
	fs.BoolVar(&c.UseMockAuth, "use-mock-auth", c.UseMockAuth, "Use Mock Authentication. For testing purposes only.")
	fs.StringVar(&c.AuthCookieName, "auth-cookie-name", c.AuthCookieName, "Name of the cookie containing the JWT")
	fs.StringVar(&c.AuthJWKSURL, "auth-jwks-url", c.AuthJWKSURL, "URL of the JWKS endpoint")
	fs.StringVar(&c.AuthSecret, "auth-secret", c.AuthSecret, "Shared secret for HS256 tokens")
	fs.DurationVar(&c.SettleDelay, "settle-delay", c.SettleDelay, "How long the third out is shown before the half inning advances")
	fs.IntVar(&c.Highlights, "highlights", c.Highlights, "Number of recent plays in the recap")
	fs.DurationVar(&c.TickInterval, "tick-interval", c.TickInterval, "How often a running game clock is redrawn")
}

// Load builds the configuration. path may be empty. Only the flags that were
// explicitly set on fs override the file and the environment.
func Load(path string, fs *flag.FlagSet) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if fs != nil {
		bound := flag.NewFlagSet("config", flag.ContinueOnError)
		cfg.RegisterFlags(bound)
		var errs []error
		fs.Visit(func(f *flag.Flag) {
			if bound.Lookup(f.Name) == nil {
				return
			}
			if err := bound.Set(f.Name, f.Value.String()); err != nil {
				errs = append(errs, fmt.Errorf("flag -%s: %w", f.Name, err))
			}
		})
		if err := errors.Join(errs...); err != nil {
			return cfg, err
		}
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir is required"))
	}
	if (c.TLSCert == "") != (c.TLSKey == "") {
		errs = append(errs, errors.New("tls_cert and tls_key must be set together"))
	}
	if c.SettleDelay <= 0 {
		errs = append(errs, fmt.Errorf("settle_delay must be positive, got %v", c.SettleDelay))
	}
	if c.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("tick_interval must be positive, got %v", c.TickInterval))
	}
	if c.Highlights <= 0 {
		errs = append(errs, fmt.Errorf("highlights must be positive, got %d", c.Highlights))
	}
	return errors.Join(errs...)
}
