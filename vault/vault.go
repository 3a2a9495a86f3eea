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
	"fmt"

	"github.com/Fantom-foundation/Otello/go/backend"
	"github.com/Fantom-foundation/Otello/go/common"
	"github.com/Fantom-foundation/Otello/go/common/amount"
	"github.com/syndtr/goleveldb/leveldb/errors"
)

// Store keeps per-owner vault balances, the settlement target for fee
// portions and transferred values.
type Store struct {
	db backend.LevelDB
}

// NewStore creates a vault balance store on the given database.
func NewStore(db backend.LevelDB) *Store {
	return &Store{db: db}
}

// Open creates an empty vault row for the given owner. Opening an
// already open vault is a no-op.
func (s *Store) Open(owner common.Address) error {
	has, err := s.db.Has(vaultKey(owner), nil)
	if err != nil || has {
		return err
	}
	return s.db.Put(vaultKey(owner), BalanceSerializer{}.ToBytes(Balance{}), nil)
}

// Close removes the vault row of the given owner. A vault still holding
// funds, dust included, cannot be closed.
func (s *Store) Close(owner common.Address) error {
	balance, exists, err := s.Get(owner)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("vault of %x is not open", owner)
	}
	if !balance.IsZero() {
		return fmt.Errorf("cannot close vault of %x holding funds", owner)
	}
	return s.db.Delete(vaultKey(owner), nil)
}

// Get provides the balance held for the given owner, or false when the
// owner has no vault.
func (s *Store) Get(owner common.Address) (Balance, bool, error) {
	data, err := s.db.Get(vaultKey(owner), nil)
	if err != nil {
		if err == errors.ErrNotFound {
			return Balance{}, false, nil
		}
		return Balance{}, false, err
	}
	return BalanceSerializer{}.FromBytes(data), true, nil
}

// Credit adds the given wei value to the owner's vault, creating the
// vault when absent.
func (s *Store) Credit(owner common.Address, wei amount.Amount) error {
	balance, _, err := s.Get(owner)
	if err != nil {
		return err
	}
	updated, err := balance.Add(wei)
	if err != nil {
		return err
	}
	return s.db.Put(vaultKey(owner), BalanceSerializer{}.ToBytes(updated), nil)
}

// Debit removes the given wei value from the owner's vault. The debit
// fails without effect when the held balance does not cover it.
func (s *Store) Debit(owner common.Address, wei amount.Amount) error {
	balance, exists, err := s.Get(owner)
	if err != nil {
		return err
	}
	if !exists {
		return ErrInsufficientFunds
	}
	updated, err := balance.Sub(wei)
	if err != nil {
		return err
	}
	return s.db.Put(vaultKey(owner), BalanceSerializer{}.ToBytes(updated), nil)
}

func vaultKey(owner common.Address) []byte {
	return backend.VaultStoreKey.ToDBKey(owner[:]).ToBytes()
}
