// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

package transaction

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsCoinbase(t *testing.T) {
	tx := &Transaction{}
	require.True(t, tx.IsCoinbase())

	tx.Inputs = []Outpoint{{Index: 0}}
	require.False(t, tx.IsCoinbase())
}

func TestBranchIDKnownUpgrades(t *testing.T) {
	_, ok := Genesis.BranchID()
	require.False(t, ok)

	id, ok := Nu5.BranchID()
	require.True(t, ok)
	require.Equal(t, uint32(0xc2d6d0b4), id)
}

func TestSerializeForHashingDeterministic(t *testing.T) {
	tx := &Transaction{
		Version:        4,
		NetworkUpgrade: Sapling,
		LockTime:       100,
		Inputs:         []Outpoint{{Hash: [32]byte{1}, Index: 0}},
		SaplingNullifiers: [][32]byte{
			{2},
		},
	}

	a, err := tx.SerializeForHashing()
	require.NoError(t, err)

	b, err := tx.SerializeForHashing()
	require.NoError(t, err)

	require.Equal(t, a, b)

	tx.LockTime = 101
	c, err := tx.SerializeForHashing()
	require.NoError(t, err)
	require.NotEqual(t, a, c)
}
