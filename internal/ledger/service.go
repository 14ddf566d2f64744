package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// mutationAttempts bounds the optimistic-concurrency retry loop.
	mutationAttempts = 3
	retryDelay       = 25 * time.Millisecond

	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// DefaultMinWithdrawal is the payout threshold applied when none is configured.
var DefaultMinWithdrawal = decimal.NewFromInt(50)

// DefaultMethods lists the payout channels the product supports.
var DefaultMethods = []string{"jazzcash", "easypaisa", "nayapay", "sadapay", "bank"}

// ServiceConfig tunes the ledger's validation rules.
type ServiceConfig struct {
	MinWithdrawal decimal.Decimal
	Methods       []string
}

// Service enforces the ledger invariants and applies balance-changing
// operations atomically per account. It never caches account state across
// calls; the store is the single source of truth.
type Service struct {
	store   Store
	min     decimal.Decimal
	methods map[string]struct{}
}

// NewService builds a ledger service over the given store.
func NewService(store Store, cfg ServiceConfig) *Service {
	min := cfg.MinWithdrawal
	if min.IsZero() {
		min = DefaultMinWithdrawal
	}
	names := cfg.Methods
	if len(names) == 0 {
		names = DefaultMethods
	}
	methods := make(map[string]struct{}, len(names))
	for _, m := range names {
		methods[m] = struct{}{}
	}
	return &Service{store: store, min: min, methods: methods}
}

// MinWithdrawal reports the configured payout threshold.
func (s *Service) MinWithdrawal() decimal.Decimal { return s.min }

// Methods reports the recognized payout channels.
func (s *Service) Methods() []string {
	out := make([]string, 0, len(s.methods))
	for _, m := range DefaultMethods {
		if _, ok := s.methods[m]; ok {
			out = append(out, m)
		}
	}
	var extra []string
	for m := range s.methods {
		if !contains(out, m) {
			extra = append(extra, m)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// CreateAccount provisions a zero-balance account for the identity. Calling
// it again for the same identity returns the existing account unchanged.
func (s *Service) CreateAccount(ctx context.Context, identityID, email, displayName string) (Account, error) {
	if _, err := uuid.Parse(identityID); err != nil {
		return Account{}, fmt.Errorf("%w: identity id must be a uuid", ErrInvalidArgument)
	}
	if email == "" {
		return Account{}, fmt.Errorf("%w: email is required", ErrInvalidArgument)
	}

	account := Account{
		ID:              identityID,
		Email:           email,
		DisplayName:     displayName,
		Balance:         decimal.Zero,
		TotalEarnings:   decimal.Zero,
		WithdrawnAmount: decimal.Zero,
		AdsWatched:      0,
		Streak:          1,
		Rank:            RankBronze,
		CreatedAt:       time.Now().UTC(),
		Version:         1,
	}

	stored, err := s.store.CreateAccount(ctx, account)
	if err != nil {
		return Account{}, s.classify(err)
	}
	return stored, nil
}

// GetAccount is a pure read of the current account state.
func (s *Service) GetAccount(ctx context.Context, accountID string) (Account, error) {
	account, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		return Account{}, s.classify(err)
	}
	return account, nil
}

// EarnInput describes a credit event from a reward trigger source.
type EarnInput struct {
	AccountID   string
	Amount      decimal.Decimal
	Description string
	// RewardKey, when set, makes the earning idempotent per account: a second
	// call with the same key returns the original transaction and
	// ErrDuplicateReward instead of paying twice.
	RewardKey string
	// AdView marks earnings that count toward the watched-ads total.
	AdView bool
}

// RecordEarning atomically credits the balance and lifetime earnings and
// appends the audit transaction.
func (s *Service) RecordEarning(ctx context.Context, input EarnInput) (Account, Transaction, error) {
	if err := validateAmount(input.Amount); err != nil {
		return Account{}, Transaction{}, err
	}

	if input.RewardKey != "" {
		if existing, err := s.store.FindTransactionByRewardKey(ctx, input.AccountID, input.RewardKey); err == nil {
			account, getErr := s.GetAccount(ctx, input.AccountID)
			if getErr != nil {
				return Account{}, Transaction{}, getErr
			}
			return account, existing, ErrDuplicateReward
		} else if !errors.Is(err, ErrNotFound) {
			return Account{}, Transaction{}, s.classify(err)
		}
	}

	return s.mutate(ctx, input.AccountID, func(account Account) (Account, Transaction, error) {
		account.Balance = account.Balance.Add(input.Amount)
		account.TotalEarnings = account.TotalEarnings.Add(input.Amount)
		if input.AdView {
			account.AdsWatched++
		}
		account.Rank = RankFor(account.TotalEarnings)

		txn := Transaction{
			ID:          uuid.NewString(),
			AccountID:   account.ID,
			Type:        TypeEarn,
			Amount:      input.Amount,
			Description: input.Description,
			RewardKey:   input.RewardKey,
			Timestamp:   time.Now().UTC(),
		}
		return account, txn, nil
	})
}

// WithdrawInput describes a payout request.
type WithdrawInput struct {
	AccountID string
	Amount    decimal.Decimal
	Method    string
}

// RequestWithdrawal debits the balance immediately, reserving the funds
// pending the out-of-band admin approval, and appends the audit transaction.
func (s *Service) RequestWithdrawal(ctx context.Context, input WithdrawInput) (Account, Transaction, error) {
	if err := validateAmount(input.Amount); err != nil {
		return Account{}, Transaction{}, err
	}
	if _, ok := s.methods[input.Method]; !ok {
		return Account{}, Transaction{}, fmt.Errorf("%w: %q", ErrInvalidMethod, input.Method)
	}
	if input.Amount.LessThan(s.min) {
		return Account{}, Transaction{}, fmt.Errorf("%w: minimum is %s", ErrBelowMinimum, s.min.StringFixed(2))
	}

	return s.mutate(ctx, input.AccountID, func(account Account) (Account, Transaction, error) {
		if input.Amount.GreaterThan(account.Balance) {
			return Account{}, Transaction{}, ErrInsufficientBalance
		}
		account.Balance = account.Balance.Sub(input.Amount)
		account.WithdrawnAmount = account.WithdrawnAmount.Add(input.Amount)

		txn := Transaction{
			ID:          uuid.NewString(),
			AccountID:   account.ID,
			Type:        TypeWithdraw,
			Amount:      input.Amount,
			Method:      input.Method,
			Description: fmt.Sprintf("Withdrawal via %s", input.Method),
			Timestamp:   time.Now().UTC(),
		}
		return account, txn, nil
	})
}

// ReverseWithdrawal compensates a withdrawal the admin rejected: the balance
// is credited back and a reversal transaction recorded. Reversing the same
// withdrawal twice fails with ErrDuplicateReward.
func (s *Service) ReverseWithdrawal(ctx context.Context, transactionID string) (Account, Transaction, error) {
	original, err := s.store.GetTransaction(ctx, transactionID)
	if err != nil {
		return Account{}, Transaction{}, s.classify(err)
	}
	if original.Type != TypeWithdraw {
		return Account{}, Transaction{}, fmt.Errorf("%w: transaction %s is not a withdrawal", ErrInvalidArgument, transactionID)
	}

	return s.mutate(ctx, original.AccountID, func(account Account) (Account, Transaction, error) {
		account.Balance = account.Balance.Add(original.Amount)
		account.WithdrawnAmount = account.WithdrawnAmount.Sub(original.Amount)

		txn := Transaction{
			ID:          uuid.NewString(),
			AccountID:   account.ID,
			Type:        TypeReversal,
			Amount:      original.Amount,
			Method:      original.Method,
			Description: fmt.Sprintf("Reversal of withdrawal %s", original.ID),
			RewardKey:   "reversal:" + original.ID,
			Timestamp:   time.Now().UTC(),
		}
		return account, txn, nil
	})
}

// ListTransactions returns up to limit transactions, most recent first.
func (s *Service) ListTransactions(ctx context.Context, accountID string, filter Filter, limit int) ([]Transaction, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	switch filter {
	case FilterAll, FilterEarn, FilterWithdraw, "":
	default:
		return nil, fmt.Errorf("%w: unknown filter %q", ErrInvalidArgument, filter)
	}
	txns, err := s.store.ListTransactions(ctx, accountID, filter, limit)
	if err != nil {
		return nil, s.classify(err)
	}
	return txns, nil
}

// mutate runs the read-validate-write cycle under optimistic concurrency,
// retrying lost races a bounded number of times.
func (s *Service) mutate(ctx context.Context, accountID string, apply func(Account) (Account, Transaction, error)) (Account, Transaction, error) {
	for attempt := 0; attempt < mutationAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return Account{}, Transaction{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, ctx.Err())
			case <-time.After(retryDelay * time.Duration(attempt)):
			}
		}

		account, err := s.store.GetAccount(ctx, accountID)
		if err != nil {
			return Account{}, Transaction{}, s.classify(err)
		}

		updated, txn, err := apply(account)
		if err != nil {
			return Account{}, Transaction{}, err
		}
		updated.Version = account.Version + 1

		switch err := s.store.ApplyMutation(ctx, updated, txn); {
		case err == nil:
			return updated, txn, nil
		case errors.Is(err, ErrConflict):
			continue
		case errors.Is(err, ErrDuplicateReward):
			existing, findErr := s.store.FindTransactionByRewardKey(ctx, accountID, txn.RewardKey)
			if findErr != nil {
				return Account{}, Transaction{}, s.classify(findErr)
			}
			return account, existing, ErrDuplicateReward
		default:
			return Account{}, Transaction{}, s.classify(err)
		}
	}
	return Account{}, Transaction{}, fmt.Errorf("%w: retries exhausted", ErrStoreUnavailable)
}

// classify maps unexpected store failures onto the retryable taxonomy while
// letting sentinel errors pass through untouched.
func (s *Service) classify(err error) error {
	for _, sentinel := range []error{
		ErrNotFound, ErrInvalidArgument, ErrBelowMinimum, ErrInsufficientBalance,
		ErrInvalidMethod, ErrDuplicateReward, ErrConflict, ErrStoreUnavailable,
	} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidArgument)
	}
	if !amount.Equal(amount.Round(2)) {
		return fmt.Errorf("%w: amount precision exceeds cents", ErrInvalidArgument)
	}
	return nil
}
