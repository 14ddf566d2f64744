package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Schema declares the ledger tables. Applied at startup by EnsureSchema.
const Schema = `
CREATE TABLE IF NOT EXISTS accounts (
    id UUID PRIMARY KEY,
    email TEXT NOT NULL,
    display_name TEXT NOT NULL,
    balance NUMERIC(12,2) NOT NULL,
    total_earnings NUMERIC(12,2) NOT NULL,
    withdrawn_amount NUMERIC(12,2) NOT NULL,
    ads_watched INT NOT NULL,
    streak INT NOT NULL,
    rank TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    version BIGINT NOT NULL
);
CREATE TABLE IF NOT EXISTS transactions (
    id UUID PRIMARY KEY,
    account_id UUID NOT NULL REFERENCES accounts (id),
    type TEXT NOT NULL,
    amount NUMERIC(12,2) NOT NULL,
    method TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL,
    reward_key TEXT NOT NULL DEFAULT '',
    ts TIMESTAMPTZ NOT NULL,
    seq BIGSERIAL
);
CREATE UNIQUE INDEX IF NOT EXISTS transactions_reward_key
    ON transactions (account_id, reward_key) WHERE reward_key <> '';
CREATE INDEX IF NOT EXISTS transactions_account_ts
    ON transactions (account_id, ts DESC, seq DESC);
`

const pgUniqueViolation = "23505"

// PostgresStore persists accounts and transactions in PostgreSQL. Amounts
// travel as text across the wire to keep NUMERIC exact.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed ledger store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the ledger tables when they do not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, Schema)
	return err
}

const accountColumns = `id, email, display_name, balance::text, total_earnings::text,
    withdrawn_amount::text, ads_watched, streak, rank, created_at, version`

// CreateAccount inserts the account unless one already exists, then returns
// the stored record so repeated calls are idempotent.
func (s *PostgresStore) CreateAccount(ctx context.Context, account Account) (Account, error) {
	_, err := s.db.Exec(ctx, `INSERT INTO accounts
        (id, email, display_name, balance, total_earnings, withdrawn_amount, ads_watched, streak, rank, created_at, version)
        VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6::numeric, $7, $8, $9, $10, $11)
        ON CONFLICT (id) DO NOTHING`,
		account.ID, account.Email, account.DisplayName,
		account.Balance.String(), account.TotalEarnings.String(), account.WithdrawnAmount.String(),
		account.AdsWatched, account.Streak, account.Rank, account.CreatedAt.UTC(), account.Version)
	if err != nil {
		return Account{}, err
	}
	return s.GetAccount(ctx, account.ID)
}

// GetAccount fetches the current account record.
func (s *PostgresStore) GetAccount(ctx context.Context, accountID string) (Account, error) {
	row := s.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, accountID)
	return scanAccount(row)
}

// ApplyMutation commits the version-checked account update and the audit
// transaction in a single database transaction.
func (s *PostgresStore) ApplyMutation(ctx context.Context, updated Account, txn Transaction) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	cmd, err := tx.Exec(ctx, `UPDATE accounts SET
        balance = $2::numeric, total_earnings = $3::numeric, withdrawn_amount = $4::numeric,
        ads_watched = $5, streak = $6, rank = $7, version = $8
        WHERE id = $1 AND version = $9`,
		updated.ID,
		updated.Balance.String(), updated.TotalEarnings.String(), updated.WithdrawnAmount.String(),
		updated.AdsWatched, updated.Streak, updated.Rank, updated.Version, updated.Version-1)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, updated.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrConflict
	}

	_, err = tx.Exec(ctx, `INSERT INTO transactions
        (id, account_id, type, amount, method, description, reward_key, ts)
        VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8)`,
		txn.ID, txn.AccountID, string(txn.Type), txn.Amount.String(),
		txn.Method, txn.Description, txn.RewardKey, txn.Timestamp.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicateReward
		}
		return err
	}

	return tx.Commit(ctx)
}

// GetTransaction fetches one transaction by its identifier.
func (s *PostgresStore) GetTransaction(ctx context.Context, transactionID string) (Transaction, error) {
	row := s.db.QueryRow(ctx, `SELECT id, account_id, type, amount::text, method, description, reward_key, ts
        FROM transactions WHERE id = $1`, transactionID)
	return scanTransaction(row)
}

// FindTransactionByRewardKey looks up the transaction recorded under the
// reward key for the account.
func (s *PostgresStore) FindTransactionByRewardKey(ctx context.Context, accountID, rewardKey string) (Transaction, error) {
	row := s.db.QueryRow(ctx, `SELECT id, account_id, type, amount::text, method, description, reward_key, ts
        FROM transactions WHERE account_id = $1 AND reward_key = $2`, accountID, rewardKey)
	return scanTransaction(row)
}

// ListTransactions returns the most recent transactions for the account.
func (s *PostgresStore) ListTransactions(ctx context.Context, accountID string, filter Filter, limit int) ([]Transaction, error) {
	if _, err := s.GetAccount(ctx, accountID); err != nil {
		return nil, err
	}

	query := `SELECT id, account_id, type, amount::text, method, description, reward_key, ts
        FROM transactions WHERE account_id = $1`
	switch filter {
	case FilterEarn:
		query += ` AND type = 'earn'`
	case FilterWithdraw:
		query += ` AND type IN ('withdraw', 'reversal')`
	}
	query += ` ORDER BY ts DESC, seq DESC LIMIT $2`

	rows, err := s.db.Query(ctx, query, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, txn)
	}
	return out, rows.Err()
}

func scanAccount(row pgx.Row) (Account, error) {
	var (
		a         Account
		balance   string
		earnings  string
		withdrawn string
	)
	if err := row.Scan(&a.ID, &a.Email, &a.DisplayName, &balance, &earnings, &withdrawn,
		&a.AdsWatched, &a.Streak, &a.Rank, &a.CreatedAt, &a.Version); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}
	var err error
	if a.Balance, err = decimal.NewFromString(balance); err != nil {
		return Account{}, fmt.Errorf("parse balance: %w", err)
	}
	if a.TotalEarnings, err = decimal.NewFromString(earnings); err != nil {
		return Account{}, fmt.Errorf("parse total earnings: %w", err)
	}
	if a.WithdrawnAmount, err = decimal.NewFromString(withdrawn); err != nil {
		return Account{}, fmt.Errorf("parse withdrawn amount: %w", err)
	}
	a.CreatedAt = a.CreatedAt.UTC()
	return a, nil
}

func scanTransaction(row pgx.Row) (Transaction, error) {
	var (
		t      Transaction
		kind   string
		amount string
	)
	if err := row.Scan(&t.ID, &t.AccountID, &kind, &amount, &t.Method, &t.Description, &t.RewardKey, &t.Timestamp); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Transaction{}, ErrNotFound
		}
		return Transaction{}, err
	}
	t.Type = TransactionType(kind)
	var err error
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return Transaction{}, fmt.Errorf("parse amount: %w", err)
	}
	t.Timestamp = t.Timestamp.UTC()
	return t, nil
}
