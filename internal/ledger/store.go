package ledger

import "context"

// Store is the durable home of account records and their append-only
// transaction history. Implementations must make ApplyMutation atomic per
// account: the version-checked account update and the transaction append
// either both commit or neither does.
type Store interface {
	// CreateAccount inserts the account if no record exists for its ID and
	// returns the stored record either way, making creation idempotent.
	CreateAccount(ctx context.Context, account Account) (Account, error)

	// GetAccount fetches the current account record or ErrNotFound.
	GetAccount(ctx context.Context, accountID string) (Account, error)

	// ApplyMutation commits an updated account plus its audit transaction as
	// one unit. The update succeeds only when the stored version equals
	// updated.Version-1; otherwise ErrConflict is returned and nothing is
	// written. A transaction whose RewardKey already exists for the account
	// fails with ErrDuplicateReward.
	ApplyMutation(ctx context.Context, updated Account, txn Transaction) error

	// GetTransaction fetches a transaction by ID or ErrNotFound.
	GetTransaction(ctx context.Context, transactionID string) (Transaction, error)

	// FindTransactionByRewardKey returns the transaction previously recorded
	// under the reward key for the account, or ErrNotFound.
	FindTransactionByRewardKey(ctx context.Context, accountID, rewardKey string) (Transaction, error)

	// ListTransactions returns up to limit transactions for the account,
	// most recent first, ties broken by insertion order.
	ListTransactions(ctx context.Context, accountID string, filter Filter, limit int) ([]Transaction, error)
}
