package notification

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestWithdrawalSummary(t *testing.T) {
	got := WithdrawalSummary(decimal.NewFromInt(50), "bank", "viewer@example.com")
	want := "Hi! I want to withdraw $50.00 via bank. My email: viewer@example.com"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestWhatsAppLink(t *testing.T) {
	link := WhatsAppLink("+923001234567", "hello admin")
	if !strings.HasPrefix(link, "https://wa.me/923001234567?text=") {
		t.Fatalf("unexpected link prefix: %q", link)
	}
	if !strings.Contains(link, "hello+admin") {
		t.Fatalf("message not escaped into link: %q", link)
	}

	if WhatsAppLink("", "hello") != "" {
		t.Fatal("expected empty link without an admin number")
	}
}
