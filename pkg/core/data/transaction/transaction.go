// This Source Code Form is subject to the terms of the MIT License.
// If a copy of the MIT License was not distributed with this
// file, you can obtain one at https://opensource.org/licenses/MIT.
//
// Copyright (c) DUSK NETWORK. All rights reserved.

// Package transaction holds the already-parsed shape of a transaction.
// Parsing the wire bytes into this shape, and cryptographically verifying
// that shape, both remain the job of external collaborators (a stable
// byte-exact codec and a TransactionVerifier, respectively); this package
// only models what the mempool needs once that work is done: transparent
// spends, shielded nullifier reveals, and the network upgrade the
// transaction was built under.
package transaction

import (
	"bytes"
	"encoding/binary"

	"github.com/bwesterb/go-ristretto"
)

// NetworkUpgrade identifies which consensus rule set produced a
// transaction. Each upgrade after Sprout carries its own branch id, mixed
// into the transaction id derivation (see mempool.ComputeID) the same way
// it is mixed into signature hashes.
type NetworkUpgrade uint8

// The network upgrades this module knows about, oldest first.
const (
	Genesis NetworkUpgrade = iota
	Overwinter
	Sapling
	Blossom
	Heartwood
	Canopy
	Nu5
)

// BranchID returns the consensus branch id mixed into hashes for this
// upgrade, and false for Genesis, which predates branch ids entirely.
func (n NetworkUpgrade) BranchID() (uint32, bool) {
	switch n {
	case Genesis:
		return 0, false
	case Overwinter:
		return 0x5ba81b19, true
	case Sapling:
		return 0x76b809bb, true
	case Blossom:
		return 0x2bb40e60, true
	case Heartwood:
		return 0xf5b9230b, true
	case Canopy:
		return 0xe9ff75a6, true
	case Nu5:
		return 0xc2d6d0b4, true
	default:
		return 0, false
	}
}

func (n NetworkUpgrade) String() string {
	switch n {
	case Genesis:
		return "Genesis"
	case Overwinter:
		return "Overwinter"
	case Sapling:
		return "Sapling"
	case Blossom:
		return "Blossom"
	case Heartwood:
		return "Heartwood"
	case Canopy:
		return "Canopy"
	case Nu5:
		return "Nu5"
	default:
		return "Unknown"
	}
}

// Outpoint identifies a transparent unspent output being spent: the
// producing transaction's id and the output index within it. Both fields
// are fixed width, so Outpoint is comparable and usable as a map key.
type Outpoint struct {
	Hash  [32]byte
	Index uint32
}

// Output is a transparent output. The commitment to the spent amount is
// modeled the same way this codebase's existing shielded output type
// models it (a Ristretto point plus blinded scalars); the mempool never
// opens the commitment, it only needs a comparable value to round-trip.
type Output struct {
	Commitment ristretto.Point
	Mask       ristretto.Scalar
}

// Transaction is the parsed shape of an unmined transaction.
type Transaction struct {
	Version        uint32
	NetworkUpgrade NetworkUpgrade
	LockTime       uint32

	Inputs  []Outpoint
	Outputs []Output

	SproutNullifiers  [][32]byte
	SaplingNullifiers [][32]byte
	OrchardNullifiers [][32]byte
}

// IsCoinbase reports whether tx has no transparent inputs, the shape a
// block's coinbase transaction takes. The mempool itself does not reject
// coinbase transactions (that is a verifier concern), but callers wiring a
// verifier frequently need this check before submission.
func (t *Transaction) IsCoinbase() bool {
	return len(t.Inputs) == 0
}

// SpentOutpoints returns the transparent outpoints this transaction
// consumes.
func (t *Transaction) SpentOutpoints() []Outpoint {
	return t.Inputs
}

// RevealedSproutNullifiers returns the Sprout nullifiers this transaction
// reveals.
func (t *Transaction) RevealedSproutNullifiers() [][32]byte {
	return t.SproutNullifiers
}

// RevealedSaplingNullifiers returns the Sapling nullifiers this
// transaction reveals.
func (t *Transaction) RevealedSaplingNullifiers() [][32]byte {
	return t.SaplingNullifiers
}

// RevealedOrchardNullifiers returns the Orchard nullifiers this
// transaction reveals.
func (t *Transaction) RevealedOrchardNullifiers() [][32]byte {
	return t.OrchardNullifiers
}

// SerializeForHashing writes a canonical, deterministic encoding of the
// transaction. It stands in for the real consensus wire codec, which
// spec.md treats as an external, already-stable collaborator; this
// encoding exists only so ComputeID has stable bytes to hash, and is not
// meant to match the real Zcash wire format byte for byte.
func (t *Transaction) SerializeForHashing() ([]byte, error) {
	buf := new(bytes.Buffer)

	if err := binary.Write(buf, binary.LittleEndian, t.Version); err != nil {
		return nil, err
	}

	if err := buf.WriteByte(byte(t.NetworkUpgrade)); err != nil {
		return nil, err
	}

	if err := binary.Write(buf, binary.LittleEndian, t.LockTime); err != nil {
		return nil, err
	}

	if err := binary.Write(buf, binary.LittleEndian, uint32(len(t.Inputs))); err != nil {
		return nil, err
	}

	for _, in := range t.Inputs {
		buf.Write(in.Hash[:])
		if err := binary.Write(buf, binary.LittleEndian, in.Index); err != nil {
			return nil, err
		}
	}

	if err := binary.Write(buf, binary.LittleEndian, uint32(len(t.Outputs))); err != nil {
		return nil, err
	}

	for _, out := range t.Outputs {
		buf.Write(out.Commitment.Bytes())
	}

	for _, nullifierSet := range [][][32]byte{t.SproutNullifiers, t.SaplingNullifiers, t.OrchardNullifiers} {
		if err := binary.Write(buf, binary.LittleEndian, uint32(len(nullifierSet))); err != nil {
			return nil, err
		}
		for _, n := range nullifierSet {
			buf.Write(n[:])
		}
	}

	return buf.Bytes(), nil
}
