package ledger

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu       sync.RWMutex
	accounts map[string]Account
	history  map[string][]Transaction // account ID -> transactions in insertion order
	byID     map[string]Transaction
	byReward map[string]Transaction // account ID + "\x00" + reward key
}

// NewMemoryStore creates a concurrency-safe in-memory store used for unit
// tests and local development without Postgres.
func NewMemoryStore() Store {
	return &memoryStore{
		accounts: make(map[string]Account),
		history:  make(map[string][]Transaction),
		byID:     make(map[string]Transaction),
		byReward: make(map[string]Transaction),
	}
}

func rewardIndexKey(accountID, rewardKey string) string {
	return accountID + "\x00" + rewardKey
}

func (s *memoryStore) CreateAccount(_ context.Context, account Account) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.accounts[account.ID]; ok {
		return existing, nil
	}
	s.accounts[account.ID] = account
	return account, nil
}

func (s *memoryStore) GetAccount(_ context.Context, accountID string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[accountID]
	if !ok {
		return Account{}, ErrNotFound
	}
	return account, nil
}

func (s *memoryStore) ApplyMutation(_ context.Context, updated Account, txn Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.accounts[updated.ID]
	if !ok {
		return ErrNotFound
	}
	if current.Version != updated.Version-1 {
		return ErrConflict
	}
	if txn.RewardKey != "" {
		if _, exists := s.byReward[rewardIndexKey(txn.AccountID, txn.RewardKey)]; exists {
			return ErrDuplicateReward
		}
	}

	s.accounts[updated.ID] = updated
	s.history[txn.AccountID] = append(s.history[txn.AccountID], txn)
	s.byID[txn.ID] = txn
	if txn.RewardKey != "" {
		s.byReward[rewardIndexKey(txn.AccountID, txn.RewardKey)] = txn
	}
	return nil
}

func (s *memoryStore) GetTransaction(_ context.Context, transactionID string) (Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	txn, ok := s.byID[transactionID]
	if !ok {
		return Transaction{}, ErrNotFound
	}
	return txn, nil
}

func (s *memoryStore) FindTransactionByRewardKey(_ context.Context, accountID, rewardKey string) (Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	txn, ok := s.byReward[rewardIndexKey(accountID, rewardKey)]
	if !ok {
		return Transaction{}, ErrNotFound
	}
	return txn, nil
}

func (s *memoryStore) ListTransactions(_ context.Context, accountID string, filter Filter, limit int) ([]Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.accounts[accountID]; !ok {
		return nil, ErrNotFound
	}

	history := s.history[accountID]
	out := make([]Transaction, 0, limit)
	// Insertion order follows timestamp order, so walking backwards yields
	// most-recent-first with ties broken correctly.
	for i := len(history) - 1; i >= 0 && len(out) < limit; i-- {
		if filter.Matches(history[i]) {
			out = append(out, history[i])
		}
	}
	return out, nil
}
