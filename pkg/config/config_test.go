// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidateRejectsSmallCapacity(t *testing.T) {
	cfg := Default()
	cfg.Mempool.Capacity = 0
	require.Error(t, cfg.Validate())
}

func TestLoadTOML(t *testing.T) {
	t.Cleanup(Reset)

	dir := t.TempDir()
	path := dir + "/mempool.toml"
	contents := []byte("[mempool]\ncapacity = 2\nfan_out = 2\n")
	require.NoError(t, os.WriteFile(path, contents, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 2, cfg.Mempool.Capacity)
	require.Equal(t, 2, cfg.Mempool.FanOut)
	// Fields the file omitted keep their production default.
	require.Equal(t, Default().Mempool.PeerResponseTimeout, cfg.Mempool.PeerResponseTimeout)
	require.Equal(t, cfg, Get())
}

func TestApplyPropertiesOverride(t *testing.T) {
	t.Cleanup(Reset)

	dir := t.TempDir()
	path := dir + "/override.properties"
	contents := []byte("mempool.rate_limit_delay=1s\nmempool.fan_out=8\n")
	require.NoError(t, os.WriteFile(path, contents, 0o600))

	cfg, err := ApplyPropertiesOverride(path)
	require.NoError(t, err)
	require.Equal(t, time.Second, cfg.Mempool.RateLimitDelay)
	require.Equal(t, 8, cfg.Mempool.FanOut)
}
