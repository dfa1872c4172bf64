// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

package mempool

import (
	"context"

	"github.com/dusk-network/zebra-mempool/pkg/core/data/transaction"
)

// Peer is a single connected node this mempool can ask about its
// candidate transactions, or ask to deliver the full bytes of one.
type Peer interface {
	// AdvertisedTxIds asks the peer what unmined transaction ids it knows
	// about, blocking until the peer responds or ctx is done.
	AdvertisedTxIds(ctx context.Context) ([]UnminedTxId, error)

	// FetchTransaction asks the peer for the full transaction behind id.
	FetchTransaction(ctx context.Context, id UnminedTxId) (*transaction.Transaction, error)

	String() string
}

// PeerSet is however this node tracks its currently connected peers. The
// crawler asks it for a fresh sample every crawl round rather than caching
// peers itself, since connectivity can change between rounds.
type PeerSet interface {
	// Sample returns up to n currently connected peers, chosen however
	// the peer set likes (random, most-recently-useful, ...).
	Sample(n int) []Peer
}

// TransactionVerifier applies full consensus and policy validation to a
// downloaded transaction. The mempool treats this as a black box: any
// non-nil error from Verify is taken as a hard rejection and the id goes
// straight to the rejection ledger as Invalid. The mempool does not tell
// a transient verifier failure apart from a rejection.
type TransactionVerifier interface {
	Verify(ctx context.Context, tx *transaction.Transaction) error
}

// SyncStatus reports how close to the chain tip this node believes it is.
// The tip gate consults it before letting crawl rounds or queued
// submissions proceed, since accepting mempool transactions while still
// catching up on history wastes bandwidth on data that will mostly be
// obsoleted by the blocks still to be downloaded.
type SyncStatus interface {
	// CloseToTip reports whether the node is near enough to the chain tip
	// for mempool activity to be worthwhile.
	CloseToTip() bool

	// AwaitCloseToTip blocks until CloseToTip would return true, or ctx is
	// done.
	AwaitCloseToTip(ctx context.Context) error
}
