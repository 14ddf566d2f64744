package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func newTestAccount() Account {
	return Account{
		ID:              uuid.NewString(),
		Email:           "user@example.com",
		DisplayName:     "Test User",
		Balance:         decimal.Zero,
		TotalEarnings:   decimal.Zero,
		WithdrawnAmount: decimal.Zero,
		Streak:          1,
		Rank:            RankBronze,
		CreatedAt:       time.Now().UTC(),
		Version:         1,
	}
}

func TestMemoryStore_CreateAccountIdempotent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	account := newTestAccount()

	first, err := store.CreateAccount(ctx, account)
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	changed := account
	changed.Email = "other@example.com"
	second, err := store.CreateAccount(ctx, changed)
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if second.Email != first.Email {
		t.Fatalf("second create replaced the stored record: %+v", second)
	}
}

func TestMemoryStore_ApplyMutationVersionCheck(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	account, _ := store.CreateAccount(ctx, newTestAccount())

	updated := account
	updated.Balance = decimal.NewFromFloat(1.50)
	updated.TotalEarnings = decimal.NewFromFloat(1.50)
	updated.Version = account.Version + 1

	txn := Transaction{ID: uuid.NewString(), AccountID: account.ID, Type: TypeEarn, Amount: decimal.NewFromFloat(1.50), Timestamp: time.Now().UTC()}
	if err := store.ApplyMutation(ctx, updated, txn); err != nil {
		t.Fatalf("apply mutation: %v", err)
	}

	// Re-applying with the stale version must lose the race.
	if err := store.ApplyMutation(ctx, updated, txn); err != ErrConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestMemoryStore_RewardKeyUnique(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	account, _ := store.CreateAccount(ctx, newTestAccount())

	amount := decimal.NewFromFloat(0.20)
	updated := account
	updated.Balance = amount
	updated.TotalEarnings = amount
	updated.Version = 2
	first := Transaction{ID: uuid.NewString(), AccountID: account.ID, Type: TypeEarn, Amount: amount, RewardKey: "channel-follow", Timestamp: time.Now().UTC()}
	if err := store.ApplyMutation(ctx, updated, first); err != nil {
		t.Fatalf("apply first: %v", err)
	}

	again := updated
	again.Version = 3
	dup := Transaction{ID: uuid.NewString(), AccountID: account.ID, Type: TypeEarn, Amount: amount, RewardKey: "channel-follow", Timestamp: time.Now().UTC()}
	if err := store.ApplyMutation(ctx, again, dup); err != ErrDuplicateReward {
		t.Fatalf("expected duplicate reward, got %v", err)
	}

	found, err := store.FindTransactionByRewardKey(ctx, account.ID, "channel-follow")
	if err != nil {
		t.Fatalf("find by reward key: %v", err)
	}
	if found.ID != first.ID {
		t.Fatalf("expected original transaction %s, got %s", first.ID, found.ID)
	}
}

func TestMemoryStore_ListTransactionsOrderAndFilter(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	account, _ := store.CreateAccount(ctx, newTestAccount())

	kinds := []TransactionType{TypeEarn, TypeEarn, TypeWithdraw}
	ids := make([]string, 0, len(kinds))
	version := account.Version
	balance := decimal.Zero
	for _, kind := range kinds {
		version++
		updated := account
		updated.Version = version
		amount := decimal.NewFromInt(60)
		if kind == TypeWithdraw {
			updated.WithdrawnAmount = amount
		} else {
			balance = balance.Add(amount)
			updated.Balance = balance
			updated.TotalEarnings = balance
		}
		txn := Transaction{ID: uuid.NewString(), AccountID: account.ID, Type: kind, Amount: amount, Timestamp: time.Now().UTC()}
		if err := store.ApplyMutation(ctx, updated, txn); err != nil {
			t.Fatalf("apply %s: %v", kind, err)
		}
		ids = append(ids, txn.ID)
		account = updated
	}

	all, err := store.ListTransactions(ctx, account.ID, FilterAll, 10)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(all))
	}
	if all[0].ID != ids[2] || all[2].ID != ids[0] {
		t.Fatalf("expected most recent first, got %v", all)
	}

	earns, err := store.ListTransactions(ctx, account.ID, FilterEarn, 10)
	if err != nil {
		t.Fatalf("list earn: %v", err)
	}
	if len(earns) != 2 {
		t.Fatalf("expected 2 earn transactions, got %d", len(earns))
	}

	limited, err := store.ListTransactions(ctx, account.ID, FilterAll, 1)
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != ids[2] {
		t.Fatalf("expected only the newest transaction, got %v", limited)
	}
}

func TestMemoryStore_NotFound(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.GetAccount(ctx, uuid.NewString()); err != ErrNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := store.GetTransaction(ctx, uuid.NewString()); err != ErrNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := store.ListTransactions(ctx, uuid.NewString(), FilterAll, 10); err != ErrNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
