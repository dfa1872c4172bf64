// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

package mempool

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeSyncStatus struct {
	close bool
}

func (f *fakeSyncStatus) CloseToTip() bool { return f.close }

func (f *fakeSyncStatus) AwaitCloseToTip(ctx context.Context) error {
	for !f.close {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Millisecond):
		}
	}
	return nil
}

func TestTipGateAdmitWhenCloseToTip(t *testing.T) {
	gate := NewTipGate(&fakeSyncStatus{close: true}, true)
	require.True(t, gate.Admit())
}

func TestTipGateAdmitRefusesWhenGatingAndFar(t *testing.T) {
	gate := NewTipGate(&fakeSyncStatus{close: false}, true)
	require.False(t, gate.Admit())
}

func TestTipGateAdmitAllowsWhenNotGating(t *testing.T) {
	gate := NewTipGate(&fakeSyncStatus{close: false}, false)
	require.True(t, gate.Admit())
}

func TestTipGateAwaitCrawlWindowReturnsImmediatelyWhenClose(t *testing.T) {
	gate := NewTipGate(&fakeSyncStatus{close: true}, false)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.NoError(t, gate.AwaitCrawlWindow(ctx))
}

func TestTipGateAwaitCrawlWindowPropagatesContextCancellation(t *testing.T) {
	gate := NewTipGate(&fakeSyncStatus{close: false}, false)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	err := gate.AwaitCrawlWindow(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
