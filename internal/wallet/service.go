package wallet

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/watchpay/watchpay/internal/ledger"
	"github.com/watchpay/watchpay/internal/notification"
	"github.com/watchpay/watchpay/internal/stats"
)

// Service exposes the wallet views over the ledger: balance overview,
// withdrawal requests with the admin hand-off, history, and reversals.
type Service struct {
	ledger        *ledger.Service
	notifier      notification.Notifier
	stats         *stats.Service
	adminWhatsApp string
}

// NewService builds a wallet service.
func NewService(ledgerSvc *ledger.Service, notifier notification.Notifier, statsSvc *stats.Service, adminWhatsApp string) *Service {
	return &Service{ledger: ledgerSvc, notifier: notifier, stats: statsSvc, adminWhatsApp: adminWhatsApp}
}

// Overview summarizes the account plus the withdrawal rules the client
// needs to render the payout form.
type Overview struct {
	Account       ledger.Account
	MinWithdrawal decimal.Decimal
	Methods       []string
	AsOf          time.Time
}

// Overview returns the current wallet state for the account.
func (s *Service) Overview(ctx context.Context, accountID string) (Overview, error) {
	account, err := s.ledger.GetAccount(ctx, accountID)
	if err != nil {
		return Overview{}, err
	}
	return Overview{
		Account:       account,
		MinWithdrawal: s.ledger.MinWithdrawal(),
		Methods:       s.ledger.Methods(),
		AsOf:          time.Now().UTC(),
	}, nil
}

// WithdrawResult carries the committed withdrawal plus the admin hand-off link.
type WithdrawResult struct {
	Account ledger.Account
	Txn     ledger.Transaction
	// ApprovalURL opens the admin chat pre-filled with the approval request.
	// Empty when no admin number is configured.
	ApprovalURL string
}

// Withdraw debits the balance immediately and hands the approval request to
// the admin channel. Funds are reserved pending the out-of-band approval.
func (s *Service) Withdraw(ctx context.Context, accountID string, amount decimal.Decimal, method string) (WithdrawResult, error) {
	account, txn, err := s.ledger.RequestWithdrawal(ctx, ledger.WithdrawInput{
		AccountID: accountID,
		Amount:    amount,
		Method:    method,
	})
	if err != nil {
		return WithdrawResult{}, err
	}

	if s.stats != nil {
		s.stats.RecordWithdrawal(ctx, amount)
	}

	summary := notification.WithdrawalSummary(amount, method, account.Email)
	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindWithdrawalRequested,
			Destination: s.adminWhatsApp,
			Body:        summary,
		})
	}

	return WithdrawResult{
		Account:     account,
		Txn:         txn,
		ApprovalURL: notification.WhatsAppLink(s.adminWhatsApp, summary),
	}, nil
}

// History lists the account's transactions, most recent first.
func (s *Service) History(ctx context.Context, accountID string, filter ledger.Filter, limit int) ([]ledger.Transaction, error) {
	return s.ledger.ListTransactions(ctx, accountID, filter, limit)
}

// Reverse credits back a withdrawal the admin rejected.
func (s *Service) Reverse(ctx context.Context, transactionID string) (ledger.Account, ledger.Transaction, error) {
	account, txn, err := s.ledger.ReverseWithdrawal(ctx, transactionID)
	if err != nil {
		return ledger.Account{}, ledger.Transaction{}, err
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindWithdrawalReversed,
			Destination: account.Email,
			Body:        txn.Description,
		})
	}
	return account, txn, nil
}
