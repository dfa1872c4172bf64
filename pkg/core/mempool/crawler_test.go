// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

package mempool

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dusk-network/zebra-mempool/pkg/core/data/transaction"
	"github.com/stretchr/testify/require"
)

type fakePeer struct {
	name  string
	ids   []UnminedTxId
	delay time.Duration
	err   error
}

func (p *fakePeer) String() string { return p.name }

func (p *fakePeer) AdvertisedTxIds(ctx context.Context) ([]UnminedTxId, error) {
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return p.ids, p.err
}

func (p *fakePeer) FetchTransaction(ctx context.Context, id UnminedTxId) (*transaction.Transaction, error) {
	return nil, nil
}

type fakePeerSet struct {
	peers []Peer
}

func (s *fakePeerSet) Sample(n int) []Peer {
	if n >= len(s.peers) {
		return s.peers
	}
	return s.peers[:n]
}

func TestCrawlerRoundReportsRespondingPeers(t *testing.T) {
	peers := &fakePeerSet{peers: []Peer{
		&fakePeer{name: "fast", ids: []UnminedTxId{{1}}},
		&fakePeer{name: "slow", delay: time.Second},
	}}
	gate := NewTipGate(&fakeSyncStatus{close: true}, false)

	var mu sync.Mutex
	var got []Discovered

	c := NewCrawler(peers, gate, 2, time.Hour, 20*time.Millisecond, func(d Discovered) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, d)
	})

	c.round(context.Background())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	require.Equal(t, "fast", got[0].Peer.String())
}

func TestCrawlerRoundEmptyPeerSetIsNoop(t *testing.T) {
	gate := NewTipGate(&fakeSyncStatus{close: true}, false)
	c := NewCrawler(&fakePeerSet{}, gate, 4, time.Hour, time.Millisecond, func(Discovered) {
		t.Fatal("onDiscovered should not be called with no peers")
	})
	c.round(context.Background())
}

func TestCrawlerRunStopsOnContextCancellation(t *testing.T) {
	gate := NewTipGate(&fakeSyncStatus{close: true}, false)
	c := NewCrawler(&fakePeerSet{}, gate, 1, time.Millisecond, time.Millisecond, func(Discovered) {})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}
