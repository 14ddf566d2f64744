package stats

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const (
	usersKey          = "stats:users"
	visitorsKey       = "stats:visitors"
	withdrawalsKey    = "stats:withdrawals"
	withdrawnCentsKey = "stats:withdrawn_cents"
)

// Snapshot holds the public platform counters shown on the landing page.
type Snapshot struct {
	TotalUsers       int64  `json:"total_users"`
	TotalVisitors    int64  `json:"total_visitors"`
	TotalWithdrawals int64  `json:"total_withdrawals"`
	WithdrawnAmount  string `json:"withdrawn_amount"`
}

// Service maintains platform counters in Redis. All writes fail open: a
// cache outage must never block a signup or a withdrawal.
type Service struct {
	cache  *redis.Client
	logger *slog.Logger
}

// NewService builds a stats service. A nil cache turns every call into a no-op.
func NewService(cache *redis.Client, logger *slog.Logger) *Service {
	return &Service{cache: cache, logger: logger}
}

// RecordUser counts a completed registration.
func (s *Service) RecordUser(ctx context.Context) {
	s.incr(ctx, usersKey)
}

// RecordVisitor counts a landing-page visit.
func (s *Service) RecordVisitor(ctx context.Context) {
	s.incr(ctx, visitorsKey)
}

// RecordWithdrawal counts a successful withdrawal request and its amount.
// The amount accumulates as integer cents so the displayed total stays exact.
func (s *Service) RecordWithdrawal(ctx context.Context, amount decimal.Decimal) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Incr(ctx, withdrawalsKey).Err(); err != nil {
		s.warn("incr withdrawals", err)
	}
	cents := amount.Mul(decimal.NewFromInt(100)).IntPart()
	if err := s.cache.IncrBy(ctx, withdrawnCentsKey, cents).Err(); err != nil {
		s.warn("incr withdrawn cents", err)
	}
}

// Current reads the counters. Missing keys read as zero.
func (s *Service) Current(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{WithdrawnAmount: "0.00"}
	if s.cache == nil {
		return snap, nil
	}

	values, err := s.cache.MGet(ctx, usersKey, visitorsKey, withdrawalsKey, withdrawnCentsKey).Result()
	if err != nil {
		return Snapshot{}, err
	}

	snap.TotalUsers = parseCount(values[0])
	snap.TotalVisitors = parseCount(values[1])
	snap.TotalWithdrawals = parseCount(values[2])
	snap.WithdrawnAmount = decimal.New(parseCount(values[3]), -2).StringFixed(2)
	return snap, nil
}

func (s *Service) incr(ctx context.Context, key string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Incr(ctx, key).Err(); err != nil {
		s.warn("incr "+key, err)
	}
}

func (s *Service) warn(op string, err error) {
	if s.logger != nil {
		s.logger.Warn("stats update failed", "op", op, "error", err)
	}
}

func parseCount(v any) int64 {
	raw, ok := v.(string)
	if !ok {
		return 0
	}
	n, err := decimal.NewFromString(raw)
	if err != nil {
		return 0
	}
	return n.IntPart()
}
