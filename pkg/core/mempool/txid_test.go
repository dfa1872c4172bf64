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

func TestComputeIDDeterministic(t *testing.T) {
	tx := &transaction.Transaction{Version: 4, NetworkUpgrade: transaction.Sapling, LockTime: 10}

	a, err := ComputeID(tx, transaction.Sapling)
	require.NoError(t, err)

	b, err := ComputeID(tx, transaction.Sapling)
	require.NoError(t, err)

	require.Equal(t, a, b)
}

func TestComputeIDVariesByNetworkUpgrade(t *testing.T) {
	tx := &transaction.Transaction{Version: 4, LockTime: 10}

	sapling, err := ComputeID(tx, transaction.Sapling)
	require.NoError(t, err)

	nu5, err := ComputeID(tx, transaction.Nu5)
	require.NoError(t, err)

	require.NotEqual(t, sapling, nu5)
}

func TestComputeIDVariesByContent(t *testing.T) {
	a := &transaction.Transaction{Version: 4, LockTime: 10}
	b := &transaction.Transaction{Version: 4, LockTime: 11}

	idA, err := ComputeID(a, transaction.Sapling)
	require.NoError(t, err)

	idB, err := ComputeID(b, transaction.Sapling)
	require.NoError(t, err)

	require.NotEqual(t, idA, idB)
}
