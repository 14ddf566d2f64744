package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a balance-changing event.
type TransactionType string

const (
	// TypeEarn credits the balance and lifetime earnings.
	TypeEarn TransactionType = "earn"
	// TypeWithdraw debits the balance pending out-of-band admin approval.
	TypeWithdraw TransactionType = "withdraw"
	// TypeReversal credits back a withdrawal that was rejected by the admin.
	TypeReversal TransactionType = "reversal"
)

// Rank tiers derived from lifetime earnings. Informational only.
const (
	RankBronze = "bronze"
	RankSilver = "silver"
	RankGold   = "gold"
)

var (
	silverThreshold = decimal.NewFromInt(50)
	goldThreshold   = decimal.NewFromInt(200)
)

// RankFor returns the tier an account with the given lifetime earnings holds.
func RankFor(totalEarnings decimal.Decimal) string {
	switch {
	case totalEarnings.GreaterThanOrEqual(goldThreshold):
		return RankGold
	case totalEarnings.GreaterThanOrEqual(silverThreshold):
		return RankSilver
	default:
		return RankBronze
	}
}

// Account is the per-user financial record. The identifier is owned by the
// identity system; the ledger only references it.
//
// Invariant after every committed mutation:
// Balance = TotalEarnings - WithdrawnAmount, and Balance >= 0.
type Account struct {
	ID              string
	Email           string
	DisplayName     string
	Balance         decimal.Decimal
	TotalEarnings   decimal.Decimal
	WithdrawnAmount decimal.Decimal
	AdsWatched      int
	Streak          int
	Rank            string
	CreatedAt       time.Time
	Version         int64
}

// Transaction is the immutable audit record of one balance-changing event.
type Transaction struct {
	ID          string
	AccountID   string
	Type        TransactionType
	Amount      decimal.Decimal
	Method      string
	Description string
	RewardKey   string
	Timestamp   time.Time
}

// Filter narrows a transaction listing by type.
type Filter string

const (
	FilterAll      Filter = "all"
	FilterEarn     Filter = "earn"
	FilterWithdraw Filter = "withdraw"
)

// Matches reports whether the transaction passes the filter. Reversals show
// up under the withdraw filter since they belong to the withdrawal story.
func (f Filter) Matches(t Transaction) bool {
	switch f {
	case FilterEarn:
		return t.Type == TypeEarn
	case FilterWithdraw:
		return t.Type == TypeWithdraw || t.Type == TypeReversal
	default:
		return true
	}
}
