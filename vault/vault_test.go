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
	"testing"

	"github.com/Fantom-foundation/Otello/go/backend"
	"github.com/Fantom-foundation/Otello/go/common"
	"github.com/Fantom-foundation/Otello/go/common/amount"
)

var (
	owner = common.Address{0x01}
	other = common.Address{0x02}
)

func TestBalanceWeiConversion(t *testing.T) {
	tests := []struct {
		balance Balance
		wei     amount.Amount
	}{
		{Balance{}, amount.New()},
		{Balance{Amount: 1}, amount.New(DustPerUnit)},
		{Balance{Dust: 5}, amount.New(5)},
		{Balance{Amount: 2, Dust: 5}, amount.New(2*DustPerUnit + 5)},
		{Balance{Amount: 1, Dust: DustPerUnit - 1}, amount.New(2*DustPerUnit - 1)},
	}

	for _, test := range tests {
		if got := test.balance.Wei(); got != test.wei {
			t.Errorf("wrong wei value of %+v; got %s, want %s", test.balance, got, test.wei)
		}
		restored, err := BalanceFromWei(test.wei)
		if err != nil {
			t.Errorf("failed to convert %s back; %s", test.wei, err)
		}
		if restored != test.balance {
			t.Errorf("balance does not survive conversion; got %+v, want %+v", restored, test.balance)
		}
	}
}

func TestBalanceFromWeiRejectsOutOfRangeValues(t *testing.T) {
	if _, err := BalanceFromWei(amount.Max()); err == nil {
		t.Errorf("value beyond the native range must be rejected")
	}
}

func TestBalanceAddCarriesDust(t *testing.T) {
	balance := Balance{Amount: 1, Dust: DustPerUnit - 1}
	sum, err := balance.Add(amount.New(1))
	if err != nil {
		t.Fatalf("failed to add; %s", err)
	}
	if sum != (Balance{Amount: 2}) {
		t.Errorf("dust did not carry into a full unit; got %+v", sum)
	}
}

func TestBalanceSubBorrowsDust(t *testing.T) {
	balance := Balance{Amount: 2}
	rest, err := balance.Sub(amount.New(1))
	if err != nil {
		t.Fatalf("failed to subtract; %s", err)
	}
	if rest != (Balance{Amount: 1, Dust: DustPerUnit - 1}) {
		t.Errorf("unit did not break into dust; got %+v", rest)
	}
}

func TestBalanceSubUnderflow(t *testing.T) {
	balance := Balance{Dust: 5}
	if _, err := balance.Sub(amount.New(6)); err != ErrInsufficientFunds {
		t.Errorf("underflow must report insufficient funds; got %v", err)
	}
}

func TestBalanceSerializer(t *testing.T) {
	serializer := BalanceSerializer{}
	balance := Balance{Amount: 123, Dust: 456}
	restored := serializer.FromBytes(serializer.ToBytes(balance))
	if restored != balance {
		t.Errorf("balance does not survive serialization; got %+v", restored)
	}
}

func TestVaultOpenIsIdempotent(t *testing.T) {
	store := createVaultStore(t)

	if err := store.Open(owner); err != nil {
		t.Fatalf("failed to open vault; %s", err)
	}
	if err := store.Open(owner); err != nil {
		t.Errorf("re-opening an open vault must be a no-op; %s", err)
	}
	if _, exists, _ := store.Get(owner); !exists {
		t.Errorf("opened vault does not exist")
	}
}

func TestVaultReopeningKeepsFunds(t *testing.T) {
	store := createVaultStore(t)

	_ = store.Open(owner)
	if err := store.Credit(owner, amount.New(42)); err != nil {
		t.Fatalf("failed to credit; %s", err)
	}
	if err := store.Open(owner); err != nil {
		t.Fatalf("failed to re-open vault; %s", err)
	}
	balance, _, _ := store.Get(owner)
	if balance.Wei() != amount.New(42) {
		t.Errorf("re-opening wiped the vault; got %s", balance.Wei())
	}
}

func TestVaultCloseRequiresZeroBalance(t *testing.T) {
	store := createVaultStore(t)

	_ = store.Open(owner)
	if err := store.Credit(owner, amount.New(1)); err != nil {
		t.Fatalf("failed to credit; %s", err)
	}

	// one wei of dust blocks the close
	if err := store.Close(owner); err == nil {
		t.Errorf("closing a vault holding dust must fail")
	}

	if err := store.Debit(owner, amount.New(1)); err != nil {
		t.Fatalf("failed to debit; %s", err)
	}
	if err := store.Close(owner); err != nil {
		t.Errorf("failed to close an emptied vault; %s", err)
	}
	if _, exists, _ := store.Get(owner); exists {
		t.Errorf("closed vault still exists")
	}
	if err := store.Close(owner); err == nil {
		t.Errorf("closing a closed vault must fail")
	}
}

func TestVaultCreditCreatesVault(t *testing.T) {
	store := createVaultStore(t)

	if err := store.Credit(owner, amount.New(DustPerUnit+7)); err != nil {
		t.Fatalf("failed to credit; %s", err)
	}
	balance, exists, err := store.Get(owner)
	if err != nil || !exists {
		t.Fatalf("credited vault does not exist; exists %v, err %s", exists, err)
	}
	if balance != (Balance{Amount: 1, Dust: 7}) {
		t.Errorf("unexpected balance; got %+v", balance)
	}
}

func TestVaultDebit(t *testing.T) {
	store := createVaultStore(t)

	_ = store.Credit(owner, amount.New(100))
	if err := store.Debit(owner, amount.New(30)); err != nil {
		t.Fatalf("failed to debit; %s", err)
	}
	balance, _, _ := store.Get(owner)
	if balance.Wei() != amount.New(70) {
		t.Errorf("unexpected balance after debit; got %s", balance.Wei())
	}

	// debits above the held balance fail without effect
	if err := store.Debit(owner, amount.New(71)); err != ErrInsufficientFunds {
		t.Errorf("overdraft must fail; got %v", err)
	}
	balance, _, _ = store.Get(owner)
	if balance.Wei() != amount.New(70) {
		t.Errorf("failed debit changed the balance; got %s", balance.Wei())
	}

	// unknown owners hold nothing
	if err := store.Debit(other, amount.New(1)); err != ErrInsufficientFunds {
		t.Errorf("debit of an unknown owner must fail; got %v", err)
	}
}

func TestVaultBalancesAreIndependent(t *testing.T) {
	store := createVaultStore(t)

	_ = store.Credit(owner, amount.New(10))
	_ = store.Credit(other, amount.New(20))

	balance, _, _ := store.Get(owner)
	if balance.Wei() != amount.New(10) {
		t.Errorf("unexpected balance of owner; got %s", balance.Wei())
	}
	balance, _, _ = store.Get(other)
	if balance.Wei() != amount.New(20) {
		t.Errorf("unexpected balance of other; got %s", balance.Wei())
	}
}

func createVaultStore(t *testing.T) *Store {
	db, err := backend.OpenLevelDb(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("cannot open db; %s", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db)
}
