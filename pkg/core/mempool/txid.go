// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

package mempool

import (
	"encoding/binary"

	"github.com/dusk-network/zebra-mempool/pkg/core/data/transaction"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

// txidPersonalizationPrefix is written ahead of the branch id and the
// transaction payload into the digest, so two otherwise-identical
// transactions built under different network upgrades hash to different
// ids. This is the network-upgrade-aware derivation; see this project's
// design notes for why the upgrade-naive variant was rejected.
const txidPersonalizationPrefix = "ZecTxHash_"

// ComputeID derives the UnminedTxId for tx under the given network
// upgrade.
func ComputeID(tx *transaction.Transaction, upgrade transaction.NetworkUpgrade) (UnminedTxId, error) {
	var id UnminedTxId

	payload, err := tx.SerializeForHashing()
	if err != nil {
		return id, errors.Wrap(err, "mempool: serializing transaction for id derivation")
	}

	h, err := blake2b.New256(nil)
	if err != nil {
		return id, errors.Wrap(err, "mempool: initializing txid hasher")
	}

	branchIDBytes := make([]byte, 4)
	if branchID, ok := upgrade.BranchID(); ok {
		binary.LittleEndian.PutUint32(branchIDBytes, branchID)
	}

	if _, err := h.Write([]byte(txidPersonalizationPrefix)); err != nil {
		return id, errors.Wrap(err, "mempool: hashing txid personalization")
	}
	if _, err := h.Write(branchIDBytes); err != nil {
		return id, errors.Wrap(err, "mempool: hashing branch id")
	}
	if _, err := h.Write(payload); err != nil {
		return id, errors.Wrap(err, "mempool: hashing transaction payload")
	}

	copy(id[:], h.Sum(nil))
	return id, nil
}
