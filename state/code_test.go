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
	"bytes"
	"testing"

	"github.com/Fantom-foundation/Otello/go/backend"
	"github.com/Fantom-foundation/Otello/go/common"
)

var (
	someCode     = []byte{0x60, 0x80, 0x60, 0x40, 0x52}
	someCodeHash = common.Keccak256(someCode)
)

func TestCodeStoredOnceWhenShared(t *testing.T) {
	db, _ := openStateTempDb(t)
	s := createState(t, db)

	if err := s.UpdateAccountCode(addrA, someCodeHash, someCode); err != nil {
		t.Fatalf("failed to attach code to A; %s", err)
	}
	if err := s.UpdateAccountCode(addrB, someCodeHash, someCode); err != nil {
		t.Fatalf("failed to attach code to B; %s", err)
	}

	id, found, err := s.resolveCode(someCodeHash)
	if err != nil || !found {
		t.Fatalf("code hash is not indexed; found %v, err %s", found, err)
	}
	blob, _, err := s.getCode(id)
	if err != nil {
		t.Fatalf("failed to read blob; %s", err)
	}
	if blob.RefCount != 2 {
		t.Errorf("shared blob must count two references; got %d", blob.RefCount)
	}
	if !bytes.Equal(blob.Code, someCode) {
		t.Errorf("stored bytecode does not match")
	}

	// the same id serves both accounts
	if s.Stats().Code.Create != 1 {
		t.Errorf("shared code was stored more than once")
	}
}

func TestReadCodeUnknownHash(t *testing.T) {
	db, _ := openStateTempDb(t)
	s := createState(t, db)

	code, err := s.ReadCode(someCodeHash)
	if err != nil {
		t.Fatalf("failed to read unknown code; %s", err)
	}
	if code != nil {
		t.Errorf("unknown hash must read as nil; got %x", code)
	}
}

func TestReadCodeServedFromCache(t *testing.T) {
	db, _ := openStateTempDb(t)
	s := createState(t, db)

	if err := s.UpdateAccountCode(addrA, someCodeHash, someCode); err != nil {
		t.Fatalf("failed to attach code; %s", err)
	}
	s.BeginBlock()

	if _, err := s.ReadCode(someCodeHash); err != nil {
		t.Fatalf("failed to read code; %s", err)
	}
	reads := s.Stats().Code.Read
	if _, err := s.ReadCode(someCodeHash); err != nil {
		t.Fatalf("failed to re-read code; %s", err)
	}
	if got := s.Stats().Code.Read; got != reads {
		t.Errorf("repeated read hit the table; %d extra reads", got-reads)
	}
}

func TestDeleteAccountReleasesCodeReference(t *testing.T) {
	db, _ := openStateTempDb(t)
	s := createState(t, db)

	_ = s.UpdateAccountCode(addrA, someCodeHash, someCode)
	_ = s.UpdateAccountCode(addrB, someCodeHash, someCode)

	// the first release keeps the blob off the queue
	if err := s.DeleteAccount(addrA); err != nil {
		t.Fatalf("failed to delete account A; %s", err)
	}
	id, _, _ := s.resolveCode(someCodeHash)
	blob, _, _ := s.getCode(id)
	if blob.RefCount != 1 {
		t.Errorf("release did not decrement the reference count; got %d", blob.RefCount)
	}
	if empty, _ := s.queueEmpty(backend.CodeGCQueueKey); !empty {
		t.Errorf("blob with remaining references was queued for reclamation")
	}

	// the last release queues the blob
	if err := s.DeleteAccount(addrB); err != nil {
		t.Fatalf("failed to delete account B; %s", err)
	}
	blob, _, _ = s.getCode(id)
	if blob.RefCount != 0 {
		t.Errorf("reference count did not reach zero; got %d", blob.RefCount)
	}
	if empty, _ := s.queueEmpty(backend.CodeGCQueueKey); empty {
		t.Errorf("zero-referenced blob was not queued for reclamation")
	}

	// the blob stays readable until the queue is drained
	code, err := s.ReadCode(someCodeHash)
	if err != nil || !bytes.Equal(code, someCode) {
		t.Errorf("queued blob must stay readable; got %x, err %s", code, err)
	}
}

func TestUpdateAccountCodeCreatesBareAccount(t *testing.T) {
	db, _ := openStateTempDb(t)
	s := createState(t, db)

	if err := s.UpdateAccountCode(addrA, someCodeHash, someCode); err != nil {
		t.Fatalf("failed to attach code to unknown account; %s", err)
	}
	account, exists, err := s.ReadAccount(addrA)
	if err != nil || !exists {
		t.Fatalf("attaching code must materialize the account; exists %v, err %s", exists, err)
	}
	if account.CodeHash != someCodeHash {
		t.Errorf("account does not reference the attached code; got %x", account.CodeHash)
	}
}

func TestCodeBlobSerializer(t *testing.T) {
	serializer := CodeBlobSerializer{}
	blob := CodeBlob{RefCount: 3, Hash: someCodeHash, Code: someCode}
	restored := serializer.FromBytes(serializer.ToBytes(blob))
	if restored.RefCount != blob.RefCount || restored.Hash != blob.Hash || !bytes.Equal(restored.Code, blob.Code) {
		t.Errorf("blob does not survive serialization: %v != %v", restored, blob)
	}

	// empty bytecode round-trips as well
	empty := CodeBlob{RefCount: 1, Hash: common.Keccak256(nil)}
	restored = serializer.FromBytes(serializer.ToBytes(empty))
	if restored.RefCount != 1 || len(restored.Code) != 0 {
		t.Errorf("empty blob does not survive serialization: %v", restored)
	}
}
