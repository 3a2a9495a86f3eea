// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package fee

//go:generate mockgen -source settle.go -destination settle_mocks.go -package fee

import (
	"github.com/Fantom-foundation/Otello/go/common"
	"github.com/Fantom-foundation/Otello/go/common/amount"
	"github.com/Fantom-foundation/Otello/go/state"
)

// Errors reported by fee settlement.
const (
	ErrInsufficientFunds = common.ConstError("insufficient funds for value and gas fee")
	ErrUnknownPayer      = common.ConstError("paying account does not exist")
	ErrFrozenPayer       = common.ConstError("paying account is frozen")
)

// AccountLedger provides and updates the EVM balances the gas fee is
// paid from.
type AccountLedger interface {
	// ReadAccount provides a snapshot of the account stored for the
	// given address, or false when the account does not exist.
	ReadAccount(address common.Address) (state.Account, bool, error)

	// CreateOrUpdateAccount inserts or in-place modifies the account row
	// of the given address.
	CreateOrUpdateAccount(address common.Address, nonce uint64, balance amount.Amount, codeHash common.Hash) error
}

// VaultLedger credits settled fee portions to vault balances.
type VaultLedger interface {
	// Credit adds the given wei value to the owner's vault.
	Credit(owner common.Address, wei amount.Amount) error
}

// Settler computes and applies the gas fee of an executed transaction:
// the fee is debited from the payer's balance and split between the
// designated miner's vault and the contract's reserve vault.
type Settler struct {
	config  *Store
	ledger  AccountLedger
	vaults  VaultLedger
	reserve common.Address // owner of the contract's reserve vault
}

// NewSettler creates a settler crediting the contract's portion to the
// reserve vault of the given owner.
func NewSettler(config *Store, ledger AccountLedger, vaults VaultLedger, reserve common.Address) *Settler {
	return &Settler{
		config:  config,
		ledger:  ledger,
		vaults:  vaults,
		reserve: reserve,
	}
}

// Settle debits gasUsed × gasPrice from the payer and credits the miner
// and contract portions of the fee. The split follows the configured
// miner cut: the miner portion is rounded down and the contract portion
// is the exact remainder, so both always sum to the total fee. The miner
// portion goes to the designated miner's vault only when a miner is
// given and distinct from the reserve owner; otherwise the whole fee
// goes to the reserve. An insufficient payer balance rejects the
// settlement before any mutation.
func (s *Settler) Settle(gasUsed uint64, gasPrice uint64, payer common.Address, miner *common.Address) (minerCredit amount.Amount, contractCredit amount.Amount, err error) {
	config, err := s.config.Config()
	if err != nil {
		return amount.New(), amount.New(), err
	}

	// The multiplication of two 64-bit quantities is carried out in
	// 256 bits; it must not silently truncate.
	total := amount.Mul(amount.New(gasUsed), amount.New(gasPrice))
	minerPortion := amount.Div(amount.Mul(total, amount.New(uint64(config.MinerCut))), amount.New(uint64(HundredPercent)))
	contractPortion := amount.Sub(total, minerPortion)

	account, exists, err := s.ledger.ReadAccount(payer)
	if err != nil {
		return amount.New(), amount.New(), err
	}
	if !exists {
		return amount.New(), amount.New(), ErrUnknownPayer
	}
	if account.IsFrozen() {
		return amount.New(), amount.New(), ErrFrozenPayer
	}
	rest, underflow := amount.SubUnderflow(account.Balance, total)
	if underflow {
		return amount.New(), amount.New(), ErrInsufficientFunds
	}
	if err := s.ledger.CreateOrUpdateAccount(payer, account.Nonce, rest, account.CodeHash); err != nil {
		return amount.New(), amount.New(), err
	}

	if miner != nil && *miner != s.reserve {
		if !minerPortion.IsZero() {
			if err := s.vaults.Credit(*miner, minerPortion); err != nil {
				return amount.New(), amount.New(), err
			}
		}
		if err := s.vaults.Credit(s.reserve, contractPortion); err != nil {
			return amount.New(), amount.New(), err
		}
		return minerPortion, contractPortion, nil
	}

	if err := s.vaults.Credit(s.reserve, total); err != nil {
		return amount.New(), amount.New(), err
	}
	return amount.New(), total, nil
}
