// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package vault

import (
	"encoding/binary"
	"fmt"

	"github.com/Fantom-foundation/Otello/go/common"
	"github.com/Fantom-foundation/Otello/go/common/amount"
)

// The host ledger's native asset carries 4 decimal digits of precision
// while wei values carry 18, so one native unit corresponds to 10^14 wei.
// The dust field holds the sub-unit remainder needed to represent a wei
// value exactly.
const (
	NativePrecision = 4
	DustPerUnit     = 100_000_000_000_000 // 10^(18-NativePrecision)
)

// Balance is a ledger-native holding: a fixed-precision asset amount plus
// the integer remainder ("dust") below the asset's smallest unit. The
// pair reconciles exactly against a 256-bit wei value.
type Balance struct {
	Amount uint64 // native asset units
	Dust   uint64 // remainder in wei, always < DustPerUnit
}

// IsZero returns true when the balance holds nothing, dust included.
func (b Balance) IsZero() bool {
	return b.Amount == 0 && b.Dust == 0
}

// Wei provides the exact 256-bit wei value of the balance.
func (b Balance) Wei() amount.Amount {
	units := amount.Mul(amount.New(b.Amount), amount.New(DustPerUnit))
	return amount.Add(units, amount.New(b.Dust))
}

// BalanceFromWei converts a 256-bit wei value into a native balance. The
// conversion is exact; values exceeding the native asset's 64-bit range
// are rejected.
func BalanceFromWei(wei amount.Amount) (Balance, error) {
	units := amount.Div(wei, amount.New(DustPerUnit))
	if !units.IsUint64() {
		return Balance{}, fmt.Errorf("wei value %s exceeds the native asset range", wei)
	}
	dust := amount.Mod(wei, amount.New(DustPerUnit))
	return Balance{Amount: units.Uint64(), Dust: dust.Uint64()}, nil
}

// Add returns the balance increased by the given wei value.
func (b Balance) Add(wei amount.Amount) (Balance, error) {
	sum, overflow := amount.AddOverflow(b.Wei(), wei)
	if overflow {
		return Balance{}, fmt.Errorf("balance overflow")
	}
	return BalanceFromWei(sum)
}

// Sub returns the balance decreased by the given wei value. Underflow is
// an insufficient-funds condition.
func (b Balance) Sub(wei amount.Amount) (Balance, error) {
	rest, underflow := amount.SubUnderflow(b.Wei(), wei)
	if underflow {
		return Balance{}, ErrInsufficientFunds
	}
	return BalanceFromWei(rest)
}

// ErrInsufficientFunds is reported when a debit exceeds the held balance.
const ErrInsufficientFunds = common.ConstError("insufficient funds")

// BalanceSerializer is a Serializer of the Balance type
type BalanceSerializer struct{}

func (a BalanceSerializer) ToBytes(balance Balance) []byte {
	out := make([]byte, a.Size())
	a.CopyBytes(balance, out)
	return out
}
func (a BalanceSerializer) CopyBytes(balance Balance, out []byte) {
	binary.BigEndian.PutUint64(out[0:8], balance.Amount)
	binary.BigEndian.PutUint64(out[8:16], balance.Dust)
}
func (a BalanceSerializer) FromBytes(bytes []byte) Balance {
	return Balance{
		Amount: binary.BigEndian.Uint64(bytes[0:8]),
		Dust:   binary.BigEndian.Uint64(bytes[8:16]),
	}
}
func (a BalanceSerializer) Size() int {
	return 16
}
