package notification

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// WithdrawalSummary renders the human-readable approval request the admin
// receives for a pending payout.
func WithdrawalSummary(amount decimal.Decimal, method, email string) string {
	return fmt.Sprintf("Hi! I want to withdraw $%s via %s. My email: %s", amount.StringFixed(2), method, email)
}

// WhatsAppLink builds the wa.me deep link that opens an admin chat
// pre-filled with the given message. Returns empty when no admin number is
// configured.
func WhatsAppLink(adminNumber, message string) string {
	number := strings.TrimPrefix(strings.TrimSpace(adminNumber), "+")
	if number == "" {
		return ""
	}
	return fmt.Sprintf("https://wa.me/%s?text=%s", number, url.QueryEscape(message))
}
