// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

package mempool

import "github.com/dusk-network/zebra-mempool/pkg/core/data/transaction"

// conflictIndex tracks, for every transparent outpoint or shielded
// nullifier currently spent or revealed by a held transaction, which
// transaction did so. The reference implementation answers "does this
// candidate conflict with anything held" by scanning every held
// transaction's spends; maintaining these four maps in lockstep with
// Storage turns that scan into an O(1) lookup per spend, at the cost of
// keeping them consistent on every insert and remove.
type conflictIndex struct {
	outpoints map[transaction.Outpoint]UnminedTxId
	sprout    map[[32]byte]UnminedTxId
	sapling   map[[32]byte]UnminedTxId
	orchard   map[[32]byte]UnminedTxId
}

func newConflictIndex() *conflictIndex {
	return &conflictIndex{
		outpoints: make(map[transaction.Outpoint]UnminedTxId),
		sprout:    make(map[[32]byte]UnminedTxId),
		sapling:   make(map[[32]byte]UnminedTxId),
		orchard:   make(map[[32]byte]UnminedTxId),
	}
}

// conflictWith returns the id of a held transaction that conflicts with
// tx, and true, or the zero id and false if tx spends nothing already
// spent or reveals nothing already revealed.
func (c *conflictIndex) conflictWith(tx *transaction.Transaction) (UnminedTxId, bool) {
	for _, op := range tx.SpentOutpoints() {
		if id, ok := c.outpoints[op]; ok {
			return id, true
		}
	}
	for _, n := range tx.RevealedSproutNullifiers() {
		if id, ok := c.sprout[n]; ok {
			return id, true
		}
	}
	for _, n := range tx.RevealedSaplingNullifiers() {
		if id, ok := c.sapling[n]; ok {
			return id, true
		}
	}
	for _, n := range tx.RevealedOrchardNullifiers() {
		if id, ok := c.orchard[n]; ok {
			return id, true
		}
	}
	return UnminedTxId{}, false
}

// insert records id as the owner of every spend and reveal tx makes. It
// does not check for conflicts; callers must have already resolved them
// via conflictWith.
func (c *conflictIndex) insert(id UnminedTxId, tx *transaction.Transaction) {
	for _, op := range tx.SpentOutpoints() {
		c.outpoints[op] = id
	}
	for _, n := range tx.RevealedSproutNullifiers() {
		c.sprout[n] = id
	}
	for _, n := range tx.RevealedSaplingNullifiers() {
		c.sapling[n] = id
	}
	for _, n := range tx.RevealedOrchardNullifiers() {
		c.orchard[n] = id
	}
}

// remove forgets every spend and reveal tx made.
func (c *conflictIndex) remove(tx *transaction.Transaction) {
	for _, op := range tx.SpentOutpoints() {
		delete(c.outpoints, op)
	}
	for _, n := range tx.RevealedSproutNullifiers() {
		delete(c.sprout, n)
	}
	for _, n := range tx.RevealedSaplingNullifiers() {
		delete(c.sapling, n)
	}
	for _, n := range tx.RevealedOrchardNullifiers() {
		delete(c.orchard, n)
	}
}
