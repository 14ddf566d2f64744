package ledger

import "github.com/shopspring/decimal"

// SeedEarnings is a test helper that credits an account on the in-memory
// store directly, keeping the balance invariant intact without going through
// the service retry loop.
func SeedEarnings(s Store, accountID string, amount decimal.Decimal) {
	mem, ok := s.(*memoryStore)
	if !ok {
		return
	}
	mem.mu.Lock()
	defer mem.mu.Unlock()
	account, ok := mem.accounts[accountID]
	if !ok {
		return
	}
	account.Balance = account.Balance.Add(amount)
	account.TotalEarnings = account.TotalEarnings.Add(amount)
	account.Rank = RankFor(account.TotalEarnings)
	mem.accounts[accountID] = account
}
