// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

package mempool

import (
	"testing"

	"github.com/dusk-network/zebra-mempool/pkg/core/data/transaction"
	"github.com/stretchr/testify/require"
)

func nonEmptyTx(seed byte) *transaction.Transaction {
	return &transaction.Transaction{
		Version: 4,
		Inputs:  []transaction.Outpoint{{Hash: [32]byte{seed}, Index: 0}},
	}
}

func idFor(t *testing.T, tx *transaction.Transaction, upgrade transaction.NetworkUpgrade) UnminedTxId {
	t.Helper()
	id, err := ComputeID(tx, upgrade)
	require.NoError(t, err)
	return id
}

func TestStorageInsertAndContains(t *testing.T) {
	s, err := NewStorage(10, 10)
	require.NoError(t, err)

	tx := nonEmptyTx(1)
	id := idFor(t, tx, transaction.Sapling)

	require.NoError(t, s.Insert(id, tx, 200))
	require.True(t, s.Contains(id))
	require.Equal(t, 1, s.Len())
}

func TestStorageRejectsEmptyTransaction(t *testing.T) {
	s, err := NewStorage(10, 10)
	require.NoError(t, err)

	tx := &transaction.Transaction{Version: 4}
	id := idFor(t, tx, transaction.Sapling)

	err = s.Insert(id, tx, 10)
	require.Error(t, err)
	var merr *Error
	require.ErrorAs(t, err, &merr)
	require.Equal(t, ErrEmptyTransaction, merr.Kind)
}

func TestStorageRejectsDuplicateInsert(t *testing.T) {
	s, err := NewStorage(10, 10)
	require.NoError(t, err)

	tx := nonEmptyTx(2)
	id := idFor(t, tx, transaction.Sapling)

	require.NoError(t, s.Insert(id, tx, 100))
	err = s.Insert(id, tx, 100)
	require.Error(t, err)
	var merr *Error
	require.ErrorAs(t, err, &merr)
	require.Equal(t, ErrAlreadyHeld, merr.Kind)
}

func TestStorageSpendConflictRejectsCandidateAndKeepsIncumbent(t *testing.T) {
	s, err := NewStorage(10, 10)
	require.NoError(t, err)

	shared := transaction.Outpoint{Hash: [32]byte{9}, Index: 0}

	first := &transaction.Transaction{Version: 4, Inputs: []transaction.Outpoint{shared}}
	firstID := idFor(t, first, transaction.Sapling)
	require.NoError(t, s.Insert(firstID, first, 100))

	second := &transaction.Transaction{Version: 4, LockTime: 1, Inputs: []transaction.Outpoint{shared}}
	secondID := idFor(t, second, transaction.Sapling)

	err = s.Insert(secondID, second, 100)
	require.Error(t, err)
	var merr *Error
	require.ErrorAs(t, err, &merr)
	require.Equal(t, ErrSpendConflict, merr.Kind)

	require.True(t, s.Contains(firstID), "the incumbent must survive a losing candidate")
	require.False(t, s.Contains(secondID))

	rej, ok := s.ContainsRejected(secondID)
	require.True(t, ok)
	require.Equal(t, RejectionSpendConflict, rej.Kind)
}

func TestStorageCapacityEvictsOldestFIFO(t *testing.T) {
	s, err := NewStorage(2, 10)
	require.NoError(t, err)

	txA := nonEmptyTx(1)
	idA := idFor(t, txA, transaction.Sapling)
	require.NoError(t, s.Insert(idA, txA, 10))

	txB := nonEmptyTx(2)
	idB := idFor(t, txB, transaction.Sapling)
	require.NoError(t, s.Insert(idB, txB, 10))

	txC := nonEmptyTx(3)
	idC := idFor(t, txC, transaction.Sapling)
	require.NoError(t, s.Insert(idC, txC, 10))

	require.False(t, s.Contains(idA))
	rej, ok := s.ContainsRejected(idA)
	require.True(t, ok)
	require.Equal(t, RejectionExcess, rej.Kind)

	require.True(t, s.Contains(idB))
	require.True(t, s.Contains(idC))
	require.Equal(t, 2, s.Len())
}

func TestStorageReinsertOfExcessRejectedIdSurfacesExcess(t *testing.T) {
	s, err := NewStorage(1, 10)
	require.NoError(t, err)

	txA := nonEmptyTx(1)
	idA := idFor(t, txA, transaction.Sapling)
	require.NoError(t, s.Insert(idA, txA, 10))

	txB := nonEmptyTx(2)
	idB := idFor(t, txB, transaction.Sapling)
	require.NoError(t, s.Insert(idB, txB, 10))

	rej, ok := s.ContainsRejected(idA)
	require.True(t, ok)
	require.Equal(t, RejectionExcess, rej.Kind)

	err = s.Insert(idA, txA, 10)
	require.Error(t, err)
	var merr *Error
	require.ErrorAs(t, err, &merr)
	require.Equal(t, ErrExcess, merr.Kind)
}

func TestStorageReinsertSurfacesRecordedRejectionReason(t *testing.T) {
	s, err := NewStorage(10, 10)
	require.NoError(t, err)

	tx := nonEmptyTx(4)
	id := idFor(t, tx, transaction.Sapling)

	s.Reject(id, Rejection{Kind: RejectionInvalid})

	err = s.Insert(id, tx, 10)
	require.Error(t, err)
	var merr *Error
	require.ErrorAs(t, err, &merr)
	require.Equal(t, ErrInvalid, merr.Kind)
}

func TestStorageRemoveDoesNotReject(t *testing.T) {
	s, err := NewStorage(10, 10)
	require.NoError(t, err)

	tx := nonEmptyTx(5)
	id := idFor(t, tx, transaction.Sapling)
	require.NoError(t, s.Insert(id, tx, 10))

	_, removed := s.Remove(id)
	require.True(t, removed)
	require.False(t, s.Contains(id))

	_, rejected := s.ContainsRejected(id)
	require.False(t, rejected)
}

func TestStorageRejectionLedgerIsBounded(t *testing.T) {
	s, err := NewStorage(10, 2)
	require.NoError(t, err)

	s.Reject(UnminedTxId{1}, Rejection{Kind: RejectionInvalid})
	s.Reject(UnminedTxId{2}, Rejection{Kind: RejectionInvalid})
	s.Reject(UnminedTxId{3}, Rejection{Kind: RejectionInvalid})

	require.Len(t, s.RejectedTransactionIds(), 2)
	_, ok := s.ContainsRejected(UnminedTxId{1})
	require.False(t, ok, "oldest rejection should have been evicted by the LRU ledger")
}

func TestStorageClearResetsEverything(t *testing.T) {
	s, err := NewStorage(10, 10)
	require.NoError(t, err)

	tx := nonEmptyTx(6)
	id := idFor(t, tx, transaction.Sapling)
	require.NoError(t, s.Insert(id, tx, 10))
	s.Reject(UnminedTxId{7}, Rejection{Kind: RejectionInvalid})

	s.Clear()

	require.Equal(t, 0, s.Len())
	require.False(t, s.Contains(id))
	require.Empty(t, s.RejectedTransactionIds())
}
