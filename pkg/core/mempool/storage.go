// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

// Package mempool holds transactions this node has verified but that are
// not yet mined into a block, and remembers why transactions it turned
// away should not be re-offered by peers.
package mempool

import (
	"container/list"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/dusk-network/zebra-mempool/pkg/core/data/transaction"
)

// Storage holds accepted transactions and the rejection ledger. It has no
// internal locking: a single owning goroutine (the Mempool driver) is
// expected to be the only caller, serializing access the same way every
// other component in this package reaches Storage — through messages to
// that goroutine (rpcbus requests or channel sends) rather than
// shared-memory calls.
type Storage struct {
	capacity int

	order *list.List // newest transaction at Front, oldest at Back
	byID  map[UnminedTxId]*list.Element

	conflicts *conflictIndex

	rejected *lru.Cache[UnminedTxId, Rejection]
}

// NewStorage returns an empty Storage bounded by capacity held
// transactions and rejectedCapacity remembered rejections.
func NewStorage(capacity, rejectedCapacity int) (*Storage, error) {
	rejected, err := lru.New[UnminedTxId, Rejection](rejectedCapacity)
	if err != nil {
		return nil, newError(ErrUnknownTx, UnminedTxId{}, "allocating rejection ledger: %v", err)
	}

	return &Storage{
		capacity:  capacity,
		order:     list.New(),
		byID:      make(map[UnminedTxId]*list.Element),
		conflicts: newConflictIndex(),
		rejected:  rejected,
	}, nil
}

// Len reports how many transactions are currently held.
func (s *Storage) Len() int {
	return s.order.Len()
}

// Contains reports whether id is currently held.
func (s *Storage) Contains(id UnminedTxId) bool {
	_, ok := s.byID[id]
	return ok
}

// ContainsRejected reports whether id is on the rejection ledger, and if
// so, why.
func (s *Storage) ContainsRejected(id UnminedTxId) (Rejection, bool) {
	return s.rejected.Get(id)
}

// Insert admits tx under id. It fails if id is already held or already
// rejected, returning the ErrorKind matching the recorded reason. A
// transaction with no transparent inputs, no transparent outputs, and no
// shielded data is refused outright: it can never pay a fee and occupies
// a storage slot for nothing.
//
// If tx conflicts with a held transaction (spends a transparent outpoint
// or reveals a shielded nullifier the incumbent already claims), tx is
// the one rejected — the incumbent is left untouched. First-seen wins.
//
// When Storage is already at capacity, the oldest held transaction is
// evicted (RejectionExcess) to make room before tx is admitted.
func (s *Storage) Insert(id UnminedTxId, tx *transaction.Transaction, size int) error {
	if s.Contains(id) {
		return newError(ErrAlreadyHeld, id, "")
	}

	if reason, rejected := s.ContainsRejected(id); rejected {
		return newError(errorKindForRejection(reason.Kind), id, "")
	}

	if isEmptyTransaction(tx) {
		return newError(ErrEmptyTransaction, id, "")
	}

	if _, ok := s.conflicts.conflictWith(tx); ok {
		s.markRejected(id, Rejection{Kind: RejectionSpendConflict})
		return newError(ErrSpendConflict, id, "")
	}

	if s.order.Len() >= s.capacity {
		s.evictOldest()
	}

	entry := &UnminedTransaction{ID: id, Tx: tx, Size: size, InsertedAt: insertTime()}
	elem := s.order.PushFront(entry)
	s.byID[id] = elem
	s.conflicts.insert(id, tx)

	return nil
}

// Remove drops id from the held set without recording a rejection,
// used when a transaction was mined into a block the node just accepted.
func (s *Storage) Remove(id UnminedTxId) (*UnminedTransaction, bool) {
	return s.removeHeld(id)
}

// Reject marks id as rejected for reason without it ever having been
// held, the path taken when a TransactionVerifier turns a candidate away
// before Storage ever sees it accepted.
func (s *Storage) Reject(id UnminedTxId, reason Rejection) {
	s.markRejected(id, reason)
}

// Clear empties both the held set and the rejection ledger, used when the
// node reorgs far enough that every assumption Storage made is suspect.
func (s *Storage) Clear() {
	s.order.Init()
	s.byID = make(map[UnminedTxId]*list.Element)
	s.conflicts = newConflictIndex()
	s.rejected.Purge()
}

// TxIds returns the ids of every currently held transaction, newest
// first.
func (s *Storage) TxIds() []UnminedTxId {
	ids := make([]UnminedTxId, 0, s.order.Len())
	for e := s.order.Front(); e != nil; e = e.Next() {
		ids = append(ids, e.Value.(*UnminedTransaction).ID)
	}
	return ids
}

// Transactions returns every currently held transaction, newest first.
func (s *Storage) Transactions() []*UnminedTransaction {
	txs := make([]*UnminedTransaction, 0, s.order.Len())
	for e := s.order.Front(); e != nil; e = e.Next() {
		txs = append(txs, e.Value.(*UnminedTransaction))
	}
	return txs
}

// TransactionByID returns the held transaction for id, if any.
func (s *Storage) TransactionByID(id UnminedTxId) (*UnminedTransaction, bool) {
	elem, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return elem.Value.(*UnminedTransaction), true
}

// RejectedTransactionIds returns every id currently on the rejection
// ledger. Order is unspecified; the ledger is an LRU cache, not a queue.
func (s *Storage) RejectedTransactionIds() []UnminedTxId {
	return s.rejected.Keys()
}

func (s *Storage) removeHeld(id UnminedTxId) (*UnminedTransaction, bool) {
	elem, ok := s.byID[id]
	if !ok {
		return nil, false
	}

	entry := elem.Value.(*UnminedTransaction)
	s.order.Remove(elem)
	delete(s.byID, id)
	s.conflicts.remove(entry.Tx)

	return entry, true
}

func (s *Storage) markRejected(id UnminedTxId, reason Rejection) {
	s.rejected.Add(id, reason)
}

func (s *Storage) evictOldest() {
	back := s.order.Back()
	if back == nil {
		return
	}

	entry := back.Value.(*UnminedTransaction)
	s.removeHeld(entry.ID)
	s.markRejected(entry.ID, Rejection{Kind: RejectionExcess})
}

func isEmptyTransaction(tx *transaction.Transaction) bool {
	return len(tx.Inputs) == 0 &&
		len(tx.Outputs) == 0 &&
		len(tx.SproutNullifiers) == 0 &&
		len(tx.SaplingNullifiers) == 0 &&
		len(tx.OrchardNullifiers) == 0
}

// insertTime is a seam so tests can avoid depending on wall-clock time.
var insertTime = time.Now
