package rewards

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/watchpay/watchpay/internal/ledger"
)

const followRewardKey = "channel-follow"

// Service applies the product's fixed-amount rewards through the ledger.
// It trusts the caller's completion claim; replay protection comes from
// per-account reward keys.
type Service struct {
	ledger       *ledger.Service
	videoReward  decimal.Decimal
	followReward decimal.Decimal
}

// NewService builds a rewards service with the configured reward amounts.
func NewService(ledgerSvc *ledger.Service, videoReward, followReward decimal.Decimal) *Service {
	return &Service{ledger: ledgerSvc, videoReward: videoReward, followReward: followReward}
}

// Result reports the outcome of a reward claim.
type Result struct {
	Account ledger.Account
	Txn     ledger.Transaction
	// AlreadyClaimed is set when the reward key was seen before; the original
	// transaction is returned and no balance change occurred.
	AlreadyClaimed bool
}

// CompleteVideo credits the fixed per-video reward. The video identifier
// keys the earning so one completion event pays at most once, while distinct
// videos remain repeatable.
func (s *Service) CompleteVideo(ctx context.Context, accountID, videoID string) (Result, error) {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return Result{}, fmt.Errorf("%w: video id is required", ledger.ErrInvalidArgument)
	}

	return s.claim(ctx, ledger.EarnInput{
		AccountID:   accountID,
		Amount:      s.videoReward,
		Description: "YouTube Video Reward",
		RewardKey:   "video:" + videoID,
		AdView:      true,
	})
}

// FollowChannel credits the one-time channel-follow reward. A second claim
// returns the original transaction without paying again.
func (s *Service) FollowChannel(ctx context.Context, accountID string) (Result, error) {
	return s.claim(ctx, ledger.EarnInput{
		AccountID:   accountID,
		Amount:      s.followReward,
		Description: "WhatsApp Channel Follow Reward",
		RewardKey:   followRewardKey,
	})
}

func (s *Service) claim(ctx context.Context, input ledger.EarnInput) (Result, error) {
	account, txn, err := s.ledger.RecordEarning(ctx, input)
	switch {
	case err == nil:
		return Result{Account: account, Txn: txn}, nil
	case errors.Is(err, ledger.ErrDuplicateReward):
		return Result{Account: account, Txn: txn, AlreadyClaimed: true}, nil
	default:
		return Result{}, err
	}
}
