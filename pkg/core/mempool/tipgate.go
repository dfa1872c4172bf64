// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

package mempool

import (
	"context"

	"github.com/dusk-network/zebra-mempool/pkg/log"
)

var tipGateLog = log.WithPrefix("mempool.tipgate")

// TipGate wraps a SyncStatus collaborator with the two questions the rest
// of this package actually needs answered: is it worth crawling right
// now, and should a transaction offered while catching up be queued or
// refused outright.
type TipGate struct {
	status SyncStatus

	// gateQueue mirrors config.Mempool.GateQueueDuringSync: when true,
	// Admit refuses work while not close to the tip instead of letting it
	// through to be processed right away.
	gateQueue bool
}

// NewTipGate wraps status. gateQueue should come from
// config.Mempool.GateQueueDuringSync.
func NewTipGate(status SyncStatus, gateQueue bool) *TipGate {
	return &TipGate{status: status, gateQueue: gateQueue}
}

// AwaitCrawlWindow blocks until the node is close enough to the tip for a
// crawl round to be worthwhile, or ctx is done. The crawler calls this
// once per round rather than checking CloseToTip and giving up, since a
// node that is merely a little behind is expected to catch up within the
// crawler's own rate limit window.
func (g *TipGate) AwaitCrawlWindow(ctx context.Context) error {
	if g.status.CloseToTip() {
		return nil
	}

	tipGateLog.Debug("crawl round waiting for tip")
	return g.status.AwaitCloseToTip(ctx)
}

// Admit reports whether a transaction offered right now should be
// processed. When the node is close to the tip this is always true. When
// it is not, the answer depends on gateQueue: true means refuse outright
// (ErrTipGateClosed), false means let the work through right away.
func (g *TipGate) Admit() bool {
	if g.status.CloseToTip() {
		return true
	}
	return !g.gateQueue
}
