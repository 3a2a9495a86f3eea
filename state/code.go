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
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"
)

// CodeBlob is one content-addressed contract bytecode row, shared by
// reference across all accounts whose code hash matches. The bytecode is
// write-once; only the reference count is ever modified.
type CodeBlob struct {
	RefCount uint32
	Hash     common.Hash
	Code     []byte
}

// CodeBlobSerializer is a Serializer of the CodeBlob type
type CodeBlobSerializer struct{}

func (a CodeBlobSerializer) ToBytes(blob CodeBlob) []byte {
	out := make([]byte, 36+len(blob.Code))
	binary.BigEndian.PutUint32(out[0:4], blob.RefCount)
	copy(out[4:36], blob.Hash[:])
	copy(out[36:], blob.Code)
	return out
}
func (a CodeBlobSerializer) FromBytes(bytes []byte) CodeBlob {
	var blob CodeBlob
	blob.RefCount = binary.BigEndian.Uint32(bytes[0:4])
	copy(blob.Hash[:], bytes[4:36])
	blob.Code = make([]byte, len(bytes)-36)
	copy(blob.Code, bytes[36:])
	return blob
}

// ReadCode provides the bytecode stored under the given content hash, or
// nil when no blob is known for it. A batch-scoped write-through cache
// absorbs repeated reads of the same code.
func (s *State) ReadCode(codeHash common.Hash) ([]byte, error) {
	if code, exists := s.addr2code.Get(codeHash); exists {
		return code, nil
	}
	id, found, err := s.resolveCode(codeHash)
	if err != nil || !found {
		return nil, err
	}
	blob, found, err := s.getCode(id)
	if err != nil || !found {
		return nil, err
	}
	if len(blob.Code) == 0 {
		return nil, nil
	}
	s.addr2code.Set(codeHash, blob.Code)
	return blob.Code, nil
}

// UpdateAccountCode attaches the given bytecode to the account of the
// given address. Identical bytecode attached to many accounts is stored
// once and reference-counted; the account row is created when absent.
func (s *State) UpdateAccountCode(address common.Address, codeHash common.Hash, code []byte) error {
	id, found, err := s.resolveCode(codeHash)
	if err != nil {
		return err
	}
	if !found {
		if err := s.createCode(CodeBlob{RefCount: 1, Hash: codeHash, Code: code}); err != nil {
			return err
		}
	} else {
		blob, found, err := s.getCode(id)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("code row %d missing while its hash is indexed", id)
		}
		// code is immutable, only the reference count moves
		blob.RefCount++
		s.stats.Code.Update++
		if err := s.db.Put(codeKey(id), CodeBlobSerializer{}.ToBytes(blob), nil); err != nil {
			return err
		}
	}
	s.addr2code.Set(codeHash, code)

	accountID, exists, err := s.ResolveAccount(address)
	if err != nil {
		return err
	}
	if !exists {
		_, err := s.createAccount(Account{Address: address, CodeHash: codeHash})
		return err
	}
	account, err := s.getAccount(accountID)
	if err != nil {
		return err
	}
	account.CodeHash = codeHash
	s.stats.Account.Update++
	return s.db.Put(accountKey(accountID), AccountSerializer{}.ToBytes(account), nil)
}

// releaseCode drops one reference from the blob stored under the given
// hash and enqueues the blob for reclamation when the dropped reference
// was the last one. A missing blob is tolerated and ignored; an account
// cannot reference a hash that was never stored.
func (s *State) releaseCode(batch *leveldb.Batch, codeHash common.Hash) error {
	id, found, err := s.resolveCode(codeHash)
	if err != nil || !found {
		return err
	}
	blob, found, err := s.getCode(id)
	if err != nil || !found {
		return err
	}
	if blob.RefCount <= 1 {
		if err := s.enqueueCodeGC(batch, id); err != nil {
			return err
		}
	}
	if blob.RefCount > 0 {
		blob.RefCount--
	}
	s.stats.Code.Update++
	batch.Put(codeKey(id), CodeBlobSerializer{}.ToBytes(blob))
	return nil
}

// resolveCode provides the internal id of the blob stored under the given
// content hash, or false when the hash is unknown.
func (s *State) resolveCode(codeHash common.Hash) (uint64, bool, error) {
	s.stats.Code.Read++
	data, err := s.db.Get(codeHashKey(codeHash), nil)
	if err != nil {
		if err == errors.ErrNotFound {
			return 0, false, nil
		}
		return 0, false, err
	}
	return common.Identifier64Serializer{}.FromBytes(data), true, nil
}

// getCode reads the blob row of the given code id.
func (s *State) getCode(id uint64) (CodeBlob, bool, error) {
	data, err := s.db.Get(codeKey(id), nil)
	if err != nil {
		if err == errors.ErrNotFound {
			return CodeBlob{}, false, nil
		}
		return CodeBlob{}, false, err
	}
	return CodeBlobSerializer{}.FromBytes(data), true, nil
}

// createCode allocates a fresh code id and inserts the blob row together
// with its content hash index entry in one atomic write.
func (s *State) createCode(blob CodeBlob) error {
	id := s.lastCodeID
	batch := new(leveldb.Batch)
	batch.Put(codeHashKey(blob.Hash), common.Identifier64Serializer{}.ToBytes(id))
	batch.Put(codeKey(id), CodeBlobSerializer{}.ToBytes(blob))
	putLastId(batch, backend.CodeHashIndexKey, id+1)
	if err := s.db.Write(batch, nil); err != nil {
		return err
	}
	s.lastCodeID = id + 1
	s.stats.Code.Create++
	return nil
}

func codeKey(id uint64) []byte {
	return backend.CodeDepotKey.ToDBKey(common.Identifier64Serializer{}.ToBytes(id)).ToBytes()
}

func codeHashKey(codeHash common.Hash) []byte {
	return backend.CodeHashIndexKey.ToDBKey(codeHash[:]).ToBytes()
}
