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
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"
)

// codeCacheCapacity bounds the number of code blobs kept in the
// batch-scoped read cache.
const codeCacheCapacity = 128

// State is the account, storage and code adapter between the EVM
// interpreter and the host ledger's key-value tables. All operations are
// synchronous table accesses; one instance serves one serially ordered
// stream of state transitions.
type State struct {
	db backend.LevelDB

	// Batch-scoped caches, discarded by BeginBlock. They absorb repeated
	// lookups within one block and must never outlive it.
	addr2id   map[common.Address]uint64
	addr2code *common.LruCache[common.Hash, []byte]

	lastAccountID uint64
	lastCodeID    uint64

	stats AccessStats
}

// AccessStats counts table accesses performed on behalf of the caller,
// exposed for resource accounting.
type AccessStats struct {
	Account TableStats
	Storage TableStats
	Code    TableStats
}

// TableStats counts accesses of a single table.
type TableStats struct {
	Read   uint64
	Create uint64
	Update uint64
	Remove uint64
}

const lastIdKey = "last"

// NewState creates a state adapter on the given database, restoring the
// id allocation counters persisted by previous instances.
func NewState(db backend.LevelDB) (*State, error) {
	lastAccount, err := readLastId(db, backend.AddressIndexKey)
	if err != nil {
		return nil, err
	}
	lastCode, err := readLastId(db, backend.CodeHashIndexKey)
	if err != nil {
		return nil, err
	}
	return &State{
		db:            db,
		addr2id:       map[common.Address]uint64{},
		addr2code:     common.NewLruCache[common.Hash, []byte](codeCacheCapacity),
		lastAccountID: lastAccount,
		lastCodeID:    lastCode,
	}, nil
}

// BeginBlock drops all caches scoped to the previous execution batch.
func (s *State) BeginBlock() {
	if len(s.addr2id) > 0 {
		s.addr2id = map[common.Address]uint64{}
	}
	s.addr2code.Clear()
}

// Stats provides the table access counters collected so far.
func (s *State) Stats() AccessStats {
	return s.stats
}

// readLastId reads the persisted id allocation counter of the given
// table space, starting at zero when none was stored yet.
func readLastId(db backend.LevelDB, table backend.TableSpace) (uint64, error) {
	data, err := db.Get(table.StrToDBKey(lastIdKey).ToBytes(), nil)
	if err != nil {
		if err == errors.ErrNotFound {
			return 0, nil
		}
		return 0, err
	}
	return common.Identifier64Serializer{}.FromBytes(data), nil
}

// putLastId adds the persisted id allocation counter update of the given
// table space into the write batch.
func putLastId(batch *leveldb.Batch, table backend.TableSpace, next uint64) {
	batch.Put(table.StrToDBKey(lastIdKey).ToBytes(), common.Identifier64Serializer{}.ToBytes(next))
}
