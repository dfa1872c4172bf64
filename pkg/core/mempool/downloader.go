// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

package mempool

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/dusk-network/zebra-mempool/pkg/core/data/transaction"
	"github.com/dusk-network/zebra-mempool/pkg/log"
	"golang.org/x/sync/singleflight"
)

var downloaderLog = log.WithPrefix("mempool.downloader")

// Lookup reports whether id is already held or already rejected, so the
// downloader can skip fetching bytes it has no use for. It is expected to
// be backed by Storage, reached the same way every other caller reaches
// it: through the Mempool driver goroutine.
type Lookup func(id UnminedTxId) (held, rejected bool)

// Verified is delivered to the downloader's result callback once a
// downloaded transaction has been run through the TransactionVerifier.
// Err is nil only on success; any non-nil Err is whatever the
// TransactionVerifier returned, and the Mempool driver records every such
// id as RejectionInvalid. Failures to fetch the transaction from a peer
// are logged and dropped, never delivered here.
type Verified struct {
	ID  UnminedTxId
	Tx  *transaction.Transaction
	Err error
}

// Downloader turns ids the Crawler discovered into verified transactions.
// Concurrent requests for the same id collapse into a single fetch via
// singleflight, and a bounded semaphore caps how many fetch+verify
// pipelines run at once regardless of how many distinct ids are in
// flight.
type Downloader struct {
	lookup   Lookup
	verifier TransactionVerifier
	timeout  time.Duration

	sem   chan struct{}
	group singleflight.Group

	onVerified func(Verified)
}

// NewDownloader returns a Downloader that fetches and verifies at most
// concurrency transactions at a time, giving each fetch+verify pipeline
// timeout to complete.
func NewDownloader(lookup Lookup, verifier TransactionVerifier, concurrency int, timeout time.Duration, onVerified func(Verified)) *Downloader {
	return &Downloader{
		lookup:     lookup,
		verifier:   verifier,
		timeout:    timeout,
		sem:        make(chan struct{}, concurrency),
		onVerified: onVerified,
	}
}

// Submit queues id for download from peer, unless it is already held,
// already rejected, or already has a download in flight. It returns
// immediately; the result arrives later via onVerified.
func (d *Downloader) Submit(ctx context.Context, peer Peer, id UnminedTxId) {
	key := hex.EncodeToString(id[:])

	go func() {
		if held, rejected := d.lookup(id); held || rejected {
			return
		}

		_, _, _ = d.group.Do(key, func() (interface{}, error) {
			d.fetchAndVerify(ctx, peer, id)
			return nil, nil
		})
	}()
}

func (d *Downloader) fetchAndVerify(ctx context.Context, peer Peer, id UnminedTxId) {
	select {
	case d.sem <- struct{}{}:
	case <-ctx.Done():
		return
	}
	defer func() { <-d.sem }()

	fetchCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	tx, err := peer.FetchTransaction(fetchCtx, id)
	if err != nil {
		downloaderLog.WithError(err).Debugf("fetching %x from %s", id, peer.String())
		return
	}

	d.verify(fetchCtx, id, tx)
}

// SubmitLocal runs tx (already known to the caller, not fetched from a
// peer) through the same dedup, semaphore, and verification pipeline as a
// peer-discovered id. It is the path a locally-submitted transaction
// (via Service.Queue) takes.
func (d *Downloader) SubmitLocal(ctx context.Context, id UnminedTxId, tx *transaction.Transaction) {
	key := hex.EncodeToString(id[:])

	go func() {
		if held, rejected := d.lookup(id); held || rejected {
			return
		}

		_, _, _ = d.group.Do(key, func() (interface{}, error) {
			verifyCtx, cancel := context.WithTimeout(ctx, d.timeout)
			defer cancel()

			select {
			case d.sem <- struct{}{}:
			case <-ctx.Done():
				return nil, nil
			}
			defer func() { <-d.sem }()

			d.verify(verifyCtx, id, tx)
			return nil, nil
		})
	}()
}

func (d *Downloader) verify(ctx context.Context, id UnminedTxId, tx *transaction.Transaction) {
	if held, rejected := d.lookup(id); held || rejected {
		// Another path (a direct submission, or a faster peer in a
		// previous singleflight generation) resolved this id while the
		// fetch was in flight.
		return
	}

	if err := d.verifier.Verify(ctx, tx); err != nil {
		d.onVerified(Verified{ID: id, Tx: tx, Err: err})
		return
	}

	d.onVerified(Verified{ID: id, Tx: tx})
}
