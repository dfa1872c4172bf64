// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

package mempool

import (
	"time"

	"github.com/dusk-network/zebra-mempool/pkg/core/data/transaction"
)

// UnminedTxId is the 32-byte id a transaction is known by while it sits in
// the mempool, derived from its contents by ComputeID.
type UnminedTxId [32]byte

// UnminedTransaction pairs a parsed transaction with the id it was
// admitted under and the time Storage first accepted it, the latter used
// only for diagnostics (the FIFO eviction order tracked by Storage is
// insertion order, not wall-clock age).
type UnminedTransaction struct {
	ID        UnminedTxId
	Tx        *transaction.Transaction
	Size      int
	InsertedAt time.Time
}

// RejectionKind classifies why a transaction was turned away, mirroring
// the shape of Rust's RejectionReason enum: most variants carry no payload,
// Expired and LowFee do.
type RejectionKind uint8

const (
	// RejectionInvalid means a TransactionVerifier rejected the
	// transaction outright; it will never become valid for this node.
	RejectionInvalid RejectionKind = iota
	// RejectionConfirmed means the transaction was already mined into a
	// block the node has seen.
	RejectionConfirmed
	// RejectionSpendConflict means the transaction conflicts with another
	// transaction already held, on a transparent outpoint or a shielded
	// nullifier.
	RejectionSpendConflict
	// RejectionExpired means the transaction's expiry height has passed.
	RejectionExpired
	// RejectionLowFee means the transaction's fee rate was too low to
	// justify the storage it would occupy.
	RejectionLowFee
	// RejectionExcess means the transaction was evicted to make room
	// under CAPACITY, being the oldest held transaction (FIFO order).
	RejectionExcess
)

func (k RejectionKind) String() string {
	switch k {
	case RejectionInvalid:
		return "Invalid"
	case RejectionConfirmed:
		return "Confirmed"
	case RejectionSpendConflict:
		return "SpendConflict"
	case RejectionExpired:
		return "Expired"
	case RejectionLowFee:
		return "LowFee"
	case RejectionExcess:
		return "Excess"
	default:
		return "Unknown"
	}
}

// Rejection records why an id is being kept on the rejection ledger rather
// than forgotten outright, so a peer re-offering the same id can be told
// not to bother re-sending it.
type Rejection struct {
	Kind RejectionKind

	// ExpiredAtHeight is populated only for RejectionExpired.
	ExpiredAtHeight uint32

	// FeeRate is populated only for RejectionLowFee, in zatoshis per
	// serialized byte.
	FeeRate float64
}
