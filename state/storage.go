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
	"github.com/Fantom-foundation/Otello/go/backend"
	"github.com/Fantom-foundation/Otello/go/common"
	"github.com/syndtr/goleveldb/leveldb/errors"
)

// ReadStorage provides the value stored under the given slot key of the
// given account. Absent slots read as the zero value, indistinguishable
// from a slot explicitly set to zero.
func (s *State) ReadStorage(address common.Address, key common.Key) (common.Value, error) {
	id, exists, err := s.ResolveAccount(address)
	if err != nil || !exists {
		return common.Value{}, err
	}
	s.stats.Storage.Read++
	data, err := s.db.Get(slotKey(id, key), nil)
	if err != nil {
		if err == errors.ErrNotFound {
			return common.Value{}, nil
		}
		return common.Value{}, err
	}
	return common.ValueSerializer{}.FromBytes(data), nil
}

// SetStorage updates the slot value of the given account. Writing the
// zero value deletes the slot row; writing a non-zero value to an address
// without an account row first materializes a bare account. The original
// value is accepted for interface compatibility with the interpreter and
// carries no effect on the stored outcome.
func (s *State) SetStorage(address common.Address, key common.Key, original common.Value, current common.Value) error {
	_ = original

	if current.IsZero() {
		id, exists, err := s.ResolveAccount(address)
		if err != nil || !exists {
			return err
		}
		s.stats.Storage.Read++
		dbKey := slotKey(id, key)
		has, err := s.db.Has(dbKey, nil)
		if err != nil {
			return err
		}
		if !has {
			return nil
		}
		if err := s.db.Delete(dbKey, nil); err != nil {
			return err
		}
		s.stats.Storage.Remove++
		return nil
	}

	id, exists, err := s.ResolveAccount(address)
	if err != nil {
		return err
	}
	if !exists {
		id, err = s.createAccount(Account{Address: address})
		if err != nil {
			return err
		}
	}

	s.stats.Storage.Read++
	dbKey := slotKey(id, key)
	has, err := s.db.Has(dbKey, nil)
	if err != nil {
		return err
	}
	if err := s.db.Put(dbKey, common.ValueSerializer{}.ToBytes(current), nil); err != nil {
		return err
	}
	if has {
		s.stats.Storage.Update++
	} else {
		s.stats.Storage.Create++
	}
	return nil
}

// slotKey composes the database key of one storage slot row: the slot
// table space, the owning account id, and the 256-bit slot key.
func slotKey(id uint64, key common.Key) []byte {
	var composed [40]byte
	common.Identifier64Serializer{}.CopyBytes(id, composed[0:8])
	common.KeySerializer{}.CopyBytes(key, composed[8:40])
	return backend.SlotStoreKey.ToDBKey(composed[:]).ToBytes()
}

// slotPrefix provides the common prefix of all slot rows of one account,
// used for namespace scans and sweeps.
func slotPrefix(id uint64) []byte {
	var prefix [9]byte
	prefix[0] = byte(backend.SlotStoreKey)
	common.Identifier64Serializer{}.CopyBytes(id, prefix[1:9])
	return prefix[:]
}
