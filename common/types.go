// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package common

// Serializable is a type that can convert itself to and from bytes.
type Serializable interface {
	ToBytes() []byte
	SetBytes([]byte) bool
	Size() int // size in bytes when serialized
}

// Identifier is a type used for ordinal numbers of indexed entities.
type Identifier interface {
	uint64 | uint32
}

// Address is an Ethereum-like account address.
type Address [20]byte

// Key is a 256-bit storage slot key.
type Key [32]byte

// Value is a 256-bit storage slot value. The all-zero value represents
// an absent slot and is never persisted.
type Value [32]byte

// Hash is a 256-bit content hash.
type Hash [32]byte

// IsZero returns true when the value equals the all-zero value.
func (v Value) IsZero() bool {
	return v == Value{}
}

// IsEmpty returns true when the hash equals the all-zero hash, used
// to encode the absence of a code reference.
func (h Hash) IsEmpty() bool {
	return h == Hash{}
}
