// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

// Package config holds the process-wide tuning parameters for the mempool
// subsystem. It is deliberately small: the outer process supervisor (out of
// scope for this module) is responsible for locating the configuration file
// and calling Load before any mempool component starts.
package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/magiconair/properties"
	"github.com/pkg/errors"
)

// Mempool holds every startup-fixed parameter the mempool subsystem reads.
//
// All durations and counts here are the production equivalents of the
// placeholder constants found in the source fragments (MEMPOOL_SIZE = 2,
// FANOUT = 4, RATE_LIMIT_DELAY = 75s, PEER_RESPONSE_TIMEOUT = 6s): real
// deployments must override the placeholders via a config file rather than
// compiling them in.
type Mempool struct {
	// Capacity is the maximum number of verified transactions held at once.
	// Must be >= 1; CAPACITY < 1 is a misconfiguration, not a valid "empty
	// mempool" request.
	Capacity int `toml:"capacity"`

	// RejectedCapacity bounds the rejection ledger. Like Capacity, it must
	// be >= 1: the ledger cannot be turned off by setting it to zero.
	RejectedCapacity int `toml:"rejected_capacity"`

	// FanOut is the number of peers queried per crawl event.
	FanOut int `toml:"fan_out"`

	// RateLimitDelay is the minimum interval between crawl events.
	RateLimitDelay time.Duration `toml:"rate_limit_delay"`

	// PeerResponseTimeout bounds a single peer request during a crawl.
	PeerResponseTimeout time.Duration `toml:"peer_response_timeout"`

	// DownloadTimeout bounds a single transaction-body download.
	DownloadTimeout time.Duration `toml:"download_timeout"`

	// DownloaderConcurrency is the maximum number of in-flight
	// download+verify operations.
	DownloaderConcurrency int `toml:"downloader_concurrency"`

	// IdleLogInterval is how often the mempool driver logs a summary of its
	// current state while otherwise idle.
	IdleLogInterval time.Duration `toml:"idle_log_interval"`

	// GateQueueDuringSync, when true, makes the Queue request path consult
	// the tip gate as well: a Queue request made while the node is not
	// close to the tip is refused with ErrTipGateClosed rather than
	// waiting. When false, only crawl events are gated.
	GateQueueDuringSync bool `toml:"gate_queue_during_sync"`
}

// Config is the top-level configuration document.
type Config struct {
	Mempool Mempool `toml:"mempool"`
}

// Default returns the spec's production-realistic defaults. These are not
// the placeholder values seen in the source fragments: CAPACITY = 2 there
// is explicitly a development stub (spec.md §9), so Default uses a value
// several orders of magnitude larger.
func Default() Config {
	return Config{
		Mempool: Mempool{
			Capacity:              20000,
			RejectedCapacity:      40000,
			FanOut:                4,
			RateLimitDelay:        75 * time.Second,
			PeerResponseTimeout:   6 * time.Second,
			DownloadTimeout:       10 * time.Second,
			DownloaderConcurrency: 16,
			IdleLogInterval:       20 * time.Second,
			GateQueueDuringSync:   false,
		},
	}
}

// Validate rejects configurations that would violate a storage invariant
// before any component is started.
func (c Config) Validate() error {
	if c.Mempool.Capacity < 1 {
		return errors.Errorf("mempool.capacity must be >= 1, got %d", c.Mempool.Capacity)
	}

	if c.Mempool.RejectedCapacity < 1 {
		return errors.Errorf("mempool.rejected_capacity must be >= 1, got %d", c.Mempool.RejectedCapacity)
	}

	if c.Mempool.FanOut < 1 {
		return errors.Errorf("mempool.fan_out must be >= 1, got %d", c.Mempool.FanOut)
	}

	if c.Mempool.DownloaderConcurrency < 1 {
		return errors.Errorf("mempool.downloader_concurrency must be >= 1, got %d", c.Mempool.DownloaderConcurrency)
	}

	if c.Mempool.RateLimitDelay <= 0 {
		return errors.Errorf("mempool.rate_limit_delay must be positive, got %s", c.Mempool.RateLimitDelay)
	}

	if c.Mempool.PeerResponseTimeout <= 0 {
		return errors.Errorf("mempool.peer_response_timeout must be positive, got %s", c.Mempool.PeerResponseTimeout)
	}

	return nil
}

var (
	mu      sync.RWMutex
	current = Default()
)

// Get returns the currently active configuration. Safe for concurrent use.
func Get() Config {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// set installs cfg as the active configuration after validating it.
func set(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	mu.Lock()
	current = cfg
	mu.Unlock()
	return nil
}

// Load reads a TOML document from path, starting from Default so that any
// field the file omits keeps its production-realistic default, then
// installs it as the active configuration.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "decode toml config %q", path)
	}

	if err := set(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// ApplyPropertiesOverride merges a .properties file on top of the currently
// active configuration. This is the format operators historically use for
// small per-host overrides (a single changed timeout, a different fan-out)
// without having to hand-edit the full TOML document.
func ApplyPropertiesOverride(path string) (Config, error) {
	p, err := properties.LoadFile(path, properties.UTF8)
	if err != nil {
		return Config{}, errors.Wrapf(err, "load properties override %q", path)
	}

	cfg := Get()

	if v, ok := p.Get("mempool.capacity"); ok {
		if _, err := fmt.Sscanf(v, "%d", &cfg.Mempool.Capacity); err != nil {
			return Config{}, errors.Wrapf(err, "parse mempool.capacity override %q", v)
		}
	}

	if v, ok := p.Get("mempool.rejected_capacity"); ok {
		if _, err := fmt.Sscanf(v, "%d", &cfg.Mempool.RejectedCapacity); err != nil {
			return Config{}, errors.Wrapf(err, "parse mempool.rejected_capacity override %q", v)
		}
	}

	if v, ok := p.Get("mempool.fan_out"); ok {
		if _, err := fmt.Sscanf(v, "%d", &cfg.Mempool.FanOut); err != nil {
			return Config{}, errors.Wrapf(err, "parse mempool.fan_out override %q", v)
		}
	}

	if v, ok := p.Get("mempool.rate_limit_delay"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, errors.Wrapf(err, "parse mempool.rate_limit_delay override %q", v)
		}
		cfg.Mempool.RateLimitDelay = d
	}

	if v, ok := p.Get("mempool.peer_response_timeout"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, errors.Wrapf(err, "parse mempool.peer_response_timeout override %q", v)
		}
		cfg.Mempool.PeerResponseTimeout = d
	}

	if err := set(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Set installs cfg directly, bypassing file loading, after validating it
// the same way Load does; useful for a small CAPACITY (the "2" seen in the
// source fragments) without going through a temp file.
func Set(cfg Config) error {
	return set(cfg)
}

// Reset restores the package-level configuration to Default. Tests call
// this in cleanup so one test's overrides never leak into another.
func Reset() {
	mu.Lock()
	current = Default()
	mu.Unlock()
}
