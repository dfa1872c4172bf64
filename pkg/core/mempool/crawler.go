// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

package mempool

import (
	"context"
	"time"

	"github.com/dusk-network/zebra-mempool/pkg/log"
	"golang.org/x/sync/errgroup"
)

var crawlerLog = log.WithPrefix("mempool.crawler")

// Discovered is what the crawler hands the downloader for every peer
// response it collects in a round.
type Discovered struct {
	Peer Peer
	IDs  []UnminedTxId
}

// Crawler periodically asks a sample of connected peers which unmined
// transactions they know about. It never downloads transaction bodies
// itself; that is the Downloader's job, driven by the ids this type
// reports.
type Crawler struct {
	peers PeerSet
	gate  *TipGate

	fanOut              int
	rateLimitDelay      time.Duration
	peerResponseTimeout time.Duration

	onDiscovered func(Discovered)
}

// NewCrawler returns a Crawler that samples up to fanOut peers every
// rateLimitDelay, giving each peer peerResponseTimeout to answer before
// giving up on it for that round. onDiscovered is invoked once per peer
// that answered in time.
func NewCrawler(peers PeerSet, gate *TipGate, fanOut int, rateLimitDelay, peerResponseTimeout time.Duration, onDiscovered func(Discovered)) *Crawler {
	return &Crawler{
		peers:               peers,
		gate:                gate,
		fanOut:              fanOut,
		rateLimitDelay:      rateLimitDelay,
		peerResponseTimeout: peerResponseTimeout,
		onDiscovered:        onDiscovered,
	}
}

// Run drives crawl rounds until ctx is done or the tip gate fails. It
// returns either ctx.Err() or the error from TipGate.AwaitCrawlWindow;
// peer failures never end it: a round in which every sampled peer times
// out is simply an empty round, not a failure.
func (c *Crawler) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.rateLimitDelay)
	defer ticker.Stop()

	for {
		if err := c.gate.AwaitCrawlWindow(ctx); err != nil {
			return err
		}

		c.round(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// round samples peers serially (PeerSet.Sample is expected to be cheap
// and synchronous) and then dispatches the fan-out requests concurrently.
// errgroup is used purely for the join, not for error propagation: one
// peer's context deadline should not cancel the others' in-flight
// requests.
func (c *Crawler) round(ctx context.Context) {
	peers := c.peers.Sample(c.fanOut)
	if len(peers) == 0 {
		return
	}

	var g errgroup.Group

	for _, peer := range peers {
		peer := peer
		g.Go(func() error {
			peerCtx, cancel := context.WithTimeout(ctx, c.peerResponseTimeout)
			defer cancel()

			ids, err := peer.AdvertisedTxIds(peerCtx)
			if err != nil {
				crawlerLog.WithError(err).Infof("peer %s did not answer in time", peer.String())
				return nil
			}

			if len(ids) == 0 {
				return nil
			}

			c.onDiscovered(Discovered{Peer: peer, IDs: ids})
			return nil
		})
	}

	// errgroup.Wait's error is always nil here: every goroutine above
	// swallows its own error after logging it.
	_ = g.Wait()
}
