// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package state

import (
	"encoding/binary"
	"fmt"

	"github.com/Fantom-foundation/Otello/go/backend"
	"github.com/Fantom-foundation/Otello/go/common"
	"github.com/Fantom-foundation/Otello/go/common/amount"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"
)

// FlagFrozen marks an account excluded from balance transfers.
const FlagFrozen uint32 = 0x1

// Account is a snapshot of one account row. The address and the internal
// id are immutable once the row is created.
type Account struct {
	Address  common.Address
	Nonce    uint64
	Balance  amount.Amount
	CodeHash common.Hash // the empty hash encodes an account without code
	Flags    uint32
}

// IsFrozen returns true when the frozen flag is set.
func (a *Account) IsFrozen() bool {
	return a.Flags&FlagFrozen != 0
}

// AccountSerializer is a Serializer of the Account type
type AccountSerializer struct{}

func (a AccountSerializer) ToBytes(account Account) []byte {
	out := make([]byte, a.Size())
	a.CopyBytes(account, out)
	return out
}
func (a AccountSerializer) CopyBytes(account Account, out []byte) {
	copy(out[0:20], account.Address[:])
	binary.BigEndian.PutUint64(out[20:28], account.Nonce)
	balance := account.Balance.Bytes32()
	copy(out[28:60], balance[:])
	copy(out[60:92], account.CodeHash[:])
	binary.BigEndian.PutUint32(out[92:96], account.Flags)
}
func (a AccountSerializer) FromBytes(bytes []byte) Account {
	var account Account
	copy(account.Address[:], bytes[0:20])
	account.Nonce = binary.BigEndian.Uint64(bytes[20:28])
	account.Balance = amount.NewFromBytes(bytes[28:60]...)
	copy(account.CodeHash[:], bytes[60:92])
	account.Flags = binary.BigEndian.Uint32(bytes[92:96])
	return account
}
func (a AccountSerializer) Size() int {
	return 96
}

// ResolveAccount provides the internal id assigned to the given address,
// or false when no account row exists for it. Resolved ids are cached for
// the lifetime of the current execution batch.
func (s *State) ResolveAccount(address common.Address) (uint64, bool, error) {
	if id, exists := s.addr2id[address]; exists {
		return id, true, nil
	}
	s.stats.Account.Read++
	data, err := s.db.Get(addressKey(address), nil)
	if err != nil {
		if err == errors.ErrNotFound {
			return 0, false, nil
		}
		return 0, false, err
	}
	id := common.Identifier64Serializer{}.FromBytes(data)
	s.addr2id[address] = id
	return id, true, nil
}

// ReadAccount provides a snapshot of the account stored for the given
// address, or false when the account does not exist.
func (s *State) ReadAccount(address common.Address) (Account, bool, error) {
	id, exists, err := s.ResolveAccount(address)
	if err != nil || !exists {
		return Account{}, false, err
	}
	account, err := s.getAccount(id)
	if err != nil {
		return Account{}, false, err
	}
	return account, true, nil
}

// CreateOrUpdateAccount inserts a new account row for the address, or
// modifies the nonce, balance and code hash of the present one. The
// address, the id and the flags word are left untouched on updates.
func (s *State) CreateOrUpdateAccount(address common.Address, nonce uint64, balance amount.Amount, codeHash common.Hash) error {
	id, exists, err := s.ResolveAccount(address)
	if err != nil {
		return err
	}
	if !exists {
		_, err := s.createAccount(Account{
			Address:  address,
			Nonce:    nonce,
			Balance:  balance,
			CodeHash: codeHash,
		})
		return err
	}
	account, err := s.getAccount(id)
	if err != nil {
		return err
	}
	account.Nonce = nonce
	account.Balance = balance
	account.CodeHash = codeHash
	s.stats.Account.Update++
	return s.db.Put(accountKey(id), AccountSerializer{}.ToBytes(account), nil)
}

// DeleteAccount removes the account row of the given address. The
// account's storage namespace is enqueued for deferred reclamation, and
// the reference count of its code blob, if any, is decremented; when the
// removed reference was the last one, the blob is enqueued for
// reclamation as well. Deleting an absent account is a no-op.
func (s *State) DeleteAccount(address common.Address) error {
	id, exists, err := s.ResolveAccount(address)
	if err != nil || !exists {
		return err
	}
	account, err := s.getAccount(id)
	if err != nil {
		return err
	}

	batch := new(leveldb.Batch)
	if err := s.enqueueStorageGC(batch, id); err != nil {
		return err
	}
	if !account.CodeHash.IsEmpty() {
		if err := s.releaseCode(batch, account.CodeHash); err != nil {
			return err
		}
	}
	batch.Delete(addressKey(address))
	batch.Delete(accountKey(id))
	if err := s.db.Write(batch, nil); err != nil {
		return err
	}
	delete(s.addr2id, address)
	s.stats.Account.Remove++
	return nil
}

// SetAccountFrozen toggles the frozen flag of an existing account.
func (s *State) SetAccountFrozen(address common.Address, frozen bool) error {
	id, exists, err := s.ResolveAccount(address)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("cannot freeze unknown account %x", address)
	}
	account, err := s.getAccount(id)
	if err != nil {
		return err
	}
	if frozen {
		account.Flags |= FlagFrozen
	} else {
		account.Flags &^= FlagFrozen
	}
	s.stats.Account.Update++
	return s.db.Put(accountKey(id), AccountSerializer{}.ToBytes(account), nil)
}

// getAccount reads the account row of the given id. A missing row for a
// resolved id is a consistency violation.
func (s *State) getAccount(id uint64) (Account, error) {
	data, err := s.db.Get(accountKey(id), nil)
	if err != nil {
		if err == errors.ErrNotFound {
			return Account{}, fmt.Errorf("account row %d missing while its address is indexed", id)
		}
		return Account{}, err
	}
	return AccountSerializer{}.FromBytes(data), nil
}

// createAccount allocates a fresh id and inserts the account row together
// with its address index entry in one atomic write.
func (s *State) createAccount(account Account) (uint64, error) {
	id := s.lastAccountID
	batch := new(leveldb.Batch)
	batch.Put(addressKey(account.Address), common.Identifier64Serializer{}.ToBytes(id))
	batch.Put(accountKey(id), AccountSerializer{}.ToBytes(account))
	putLastId(batch, backend.AddressIndexKey, id+1)
	if err := s.db.Write(batch, nil); err != nil {
		return 0, err
	}
	s.lastAccountID = id + 1
	s.addr2id[account.Address] = id
	s.stats.Account.Create++
	return id, nil
}

func addressKey(address common.Address) []byte {
	return backend.AddressIndexKey.ToDBKey(address[:]).ToBytes()
}

func accountKey(id uint64) []byte {
	return backend.AccountStoreKey.ToDBKey(common.Identifier64Serializer{}.ToBytes(id)).ToBytes()
}
