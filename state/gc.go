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
	"github.com/syndtr/goleveldb/leveldb/util"
)

// CollectGarbage drains the two reclamation queues within the given
// budget and reports whether both queues ended up empty. Every deleted
// slot row, every erased code blob and every removed queue entry costs
// one unit of budget; the drain stops mid-queue once the budget is
// exhausted and resumes on a later call. The storage queue is processed
// before the code queue. A code blob is only erased when its reference
// count is still zero at drain time; a blob re-attached after being
// queued survives and only its queue entry is discarded.
func (s *State) CollectGarbage(max uint32) (bool, error) {
	if err := s.sweepStorage(&max); err != nil {
		return false, err
	}
	if err := s.sweepCodes(&max); err != nil {
		return false, err
	}

	storageEmpty, err := s.queueEmpty(backend.StorageGCQueueKey)
	if err != nil {
		return false, err
	}
	codeEmpty, err := s.queueEmpty(backend.CodeGCQueueKey)
	if err != nil {
		return false, err
	}
	return storageEmpty && codeEmpty, nil
}

// sweepStorage deletes slot rows of orphaned accounts queued for
// reclamation, entry by entry, until the budget runs out.
func (s *State) sweepStorage(max *uint32) error {
	queue := s.db.NewIterator(util.BytesPrefix(queuePrefix(backend.StorageGCQueueKey)), nil)
	defer queue.Release()

	for *max > 0 && queue.Next() {
		accountID := common.Identifier64Serializer{}.FromBytes(queue.Value())

		slots := s.db.NewIterator(util.BytesPrefix(slotPrefix(accountID)), nil)
		for *max > 0 && slots.Next() {
			if err := s.db.Delete(slots.Key(), nil); err != nil {
				slots.Release()
				return err
			}
			*max--
		}
		err := slots.Error()
		slots.Release()
		if err != nil {
			return err
		}

		// Out of budget - the queue entry stays so a later call can
		// verify the namespace is fully swept before dropping it.
		if *max == 0 {
			break
		}
		if err := s.db.Delete(queue.Key(), nil); err != nil {
			return err
		}
		*max--
	}
	return queue.Error()
}

// sweepCodes erases queued code blobs whose reference count is still
// zero, entry by entry, until the budget runs out.
func (s *State) sweepCodes(max *uint32) error {
	queue := s.db.NewIterator(util.BytesPrefix(queuePrefix(backend.CodeGCQueueKey)), nil)
	defer queue.Release()

	for *max > 0 && queue.Next() {
		codeID := common.Identifier64Serializer{}.FromBytes(queue.Value())

		blob, found, err := s.getCode(codeID)
		if err != nil {
			return err
		}
		if found && blob.RefCount == 0 {
			batch := new(leveldb.Batch)
			batch.Delete(codeKey(codeID))
			batch.Delete(codeHashKey(blob.Hash))
			if err := s.db.Write(batch, nil); err != nil {
				return err
			}
			s.addr2code.Remove(blob.Hash)
			*max--
		}

		if *max == 0 {
			break
		}
		if err := s.db.Delete(queue.Key(), nil); err != nil {
			return err
		}
		*max--
	}
	return queue.Error()
}

// enqueueStorageGC appends the storage namespace of the given account id
// to the storage reclamation queue. Accounts without slots are enqueued
// too; the drain no-ops over them cheaply.
func (s *State) enqueueStorageGC(batch *leveldb.Batch, accountID uint64) error {
	return s.enqueue(batch, backend.StorageGCQueueKey, accountID)
}

// enqueueCodeGC appends the given code id to the code reclamation queue.
// Reference count reaching zero is the single terminal signal producing
// an entry; a blob is never queued twice.
func (s *State) enqueueCodeGC(batch *leveldb.Batch, codeID uint64) error {
	return s.enqueue(batch, backend.CodeGCQueueKey, codeID)
}

// enqueue appends an id to the FIFO queue held in the given table space.
// Queue entries are keyed by a monotonic sequence number so iteration
// yields them in insertion order.
func (s *State) enqueue(batch *leveldb.Batch, table backend.TableSpace, id uint64) error {
	seq, err := s.nextQueueSeq(table)
	if err != nil {
		return err
	}
	key := table.ToDBKey(common.Identifier64Serializer{}.ToBytes(seq))
	batch.Put(key.ToBytes(), common.Identifier64Serializer{}.ToBytes(id))
	return nil
}

// nextQueueSeq derives the next free sequence number of a queue from its
// current last entry. Queues are small; the lookup is one reverse seek.
func (s *State) nextQueueSeq(table backend.TableSpace) (uint64, error) {
	iter := s.db.NewIterator(util.BytesPrefix(queuePrefix(table)), nil)
	defer iter.Release()
	if !iter.Last() {
		return 0, iter.Error()
	}
	last := common.Identifier64Serializer{}.FromBytes(iter.Key()[1:9])
	return last + 1, iter.Error()
}

// queueEmpty reports whether the queue in the given table space holds no
// entries.
func (s *State) queueEmpty(table backend.TableSpace) (bool, error) {
	iter := s.db.NewIterator(util.BytesPrefix(queuePrefix(table)), nil)
	defer iter.Release()
	return !iter.Next(), iter.Error()
}

func queuePrefix(table backend.TableSpace) []byte {
	return []byte{byte(table)}
}
