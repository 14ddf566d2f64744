package wallet

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/watchpay/watchpay/internal/ledger"
	"github.com/watchpay/watchpay/internal/notification"
)

type captureNotifier struct {
	last notification.Message
	sent int
}

func (n *captureNotifier) Send(_ context.Context, message notification.Message) error {
	n.last = message
	n.sent++
	return nil
}

func newTestWallet(t *testing.T) (*Service, *captureNotifier, ledger.Store, string) {
	t.Helper()
	store := ledger.NewMemoryStore()
	ledgerSvc := ledger.NewService(store, ledger.ServiceConfig{})
	account, err := ledgerSvc.CreateAccount(context.Background(), uuid.NewString(), "viewer@example.com", "Viewer")
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	notifier := &captureNotifier{}
	svc := NewService(ledgerSvc, notifier, nil, "+923001234567")
	return svc, notifier, store, account.ID
}

func TestOverview(t *testing.T) {
	svc, _, store, accountID := newTestWallet(t)
	ledger.SeedEarnings(store, accountID, decimal.NewFromFloat(12.50))

	overview, err := svc.Overview(context.Background(), accountID)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if !overview.Account.Balance.Equal(decimal.NewFromFloat(12.50)) {
		t.Fatalf("expected balance 12.50, got %s", overview.Account.Balance)
	}
	if !overview.MinWithdrawal.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected min withdrawal 50, got %s", overview.MinWithdrawal)
	}
	if len(overview.Methods) == 0 {
		t.Fatal("expected payout methods")
	}
}

func TestWithdrawNotifiesAdmin(t *testing.T) {
	svc, notifier, store, accountID := newTestWallet(t)
	ledger.SeedEarnings(store, accountID, decimal.NewFromInt(80))

	result, err := svc.Withdraw(context.Background(), accountID, decimal.NewFromInt(60), "jazzcash")
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if !result.Account.Balance.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("expected balance 20, got %s", result.Account.Balance)
	}
	if notifier.sent != 1 || notifier.last.Kind != notification.KindWithdrawalRequested {
		t.Fatalf("expected one withdrawal notification, got %+v", notifier.last)
	}
	if !strings.Contains(notifier.last.Body, "60.00") || !strings.Contains(notifier.last.Body, "jazzcash") {
		t.Fatalf("notification body missing details: %q", notifier.last.Body)
	}
	if !strings.HasPrefix(result.ApprovalURL, "https://wa.me/923001234567?text=") {
		t.Fatalf("unexpected approval url: %q", result.ApprovalURL)
	}
	if strings.Contains(result.ApprovalURL, " ") {
		t.Fatalf("approval url not escaped: %q", result.ApprovalURL)
	}
}

func TestWithdrawFailureSkipsNotification(t *testing.T) {
	svc, notifier, store, accountID := newTestWallet(t)
	ledger.SeedEarnings(store, accountID, decimal.NewFromInt(80))

	if _, err := svc.Withdraw(context.Background(), accountID, decimal.NewFromInt(500), "jazzcash"); err == nil {
		t.Fatal("expected insufficient balance error")
	}
	if notifier.sent != 0 {
		t.Fatalf("failed withdrawal sent a notification: %+v", notifier.last)
	}
}

func TestReverseNotifiesUser(t *testing.T) {
	svc, notifier, store, accountID := newTestWallet(t)
	ledger.SeedEarnings(store, accountID, decimal.NewFromInt(80))

	withdrawal, err := svc.Withdraw(context.Background(), accountID, decimal.NewFromInt(60), "easypaisa")
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	account, txn, err := svc.Reverse(context.Background(), withdrawal.Txn.ID)
	if err != nil {
		t.Fatalf("reverse: %v", err)
	}
	if !account.Balance.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("expected balance restored to 80, got %s", account.Balance)
	}
	if txn.Type != ledger.TypeReversal {
		t.Fatalf("expected reversal transaction, got %s", txn.Type)
	}
	if notifier.last.Kind != notification.KindWithdrawalReversed {
		t.Fatalf("expected reversal notification, got %+v", notifier.last)
	}
	if notifier.last.Destination != "viewer@example.com" {
		t.Fatalf("reversal notified wrong destination: %q", notifier.last.Destination)
	}
}

func TestHistoryPassthrough(t *testing.T) {
	svc, _, store, accountID := newTestWallet(t)
	ledger.SeedEarnings(store, accountID, decimal.NewFromInt(80))
	if _, err := svc.Withdraw(context.Background(), accountID, decimal.NewFromInt(50), "bank"); err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	txns, err := svc.History(context.Background(), accountID, ledger.FilterWithdraw, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(txns) != 1 || txns[0].Type != ledger.TypeWithdraw {
		t.Fatalf("unexpected history: %+v", txns)
	}
}
