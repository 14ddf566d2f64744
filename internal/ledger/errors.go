package ledger

import "errors"

var (
	// ErrNotFound indicates the referenced account or transaction does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument covers non-positive amounts and missing required fields.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrBelowMinimum occurs when a withdrawal is under the configured threshold.
	ErrBelowMinimum = errors.New("amount below minimum withdrawal")

	// ErrInsufficientBalance occurs when a withdrawal exceeds the available balance.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInvalidMethod indicates the payout method is missing or unrecognized.
	ErrInvalidMethod = errors.New("invalid withdrawal method")

	// ErrDuplicateReward indicates a reward key was already applied to the
	// account; the operation is treated as idempotent and the original
	// transaction is returned alongside this error.
	ErrDuplicateReward = errors.New("duplicate reward")

	// ErrConflict indicates a concurrent update won the race. The service
	// retries these internally; callers should not see it under normal load.
	ErrConflict = errors.New("concurrent update conflict")

	// ErrStoreUnavailable indicates a transient persistence failure after
	// retries were exhausted. Safe to retry with backoff.
	ErrStoreUnavailable = errors.New("store unavailable")
)
