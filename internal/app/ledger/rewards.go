package ledger

import (
	"context"
	"fmt"

	"github.com/beautyboost/beautyboost/internal/domain"
)

// ─── Redeemed Rewards ───────────────────────────────────────────────────────

// RedeemReward deducts pointsCost and records the redemption in one
// critical section. On ErrInsufficientBalance nothing is written.
func (s *Service) RedeemReward(ctx context.Context, uid, rewardID, rewardName string, pointsCost int64) (domain.RedeemedReward, error) {
	if pointsCost <= 0 {
		return domain.RedeemedReward{}, fmt.Errorf("reward %s cost %d: %w", rewardID, pointsCost, domain.ErrInvalidAmount)
	}
	unlock, err := s.acquire(uid)
	if err != nil {
		return domain.RedeemedReward{}, err
	}
	defer unlock()

	// Decode first so a corrupt list fails before any points move.
	rewards, err := s.redeemed(ctx, uid)
	if err != nil {
		return domain.RedeemedReward{}, err
	}
	if _, err := s.redeem(ctx, uid, pointsCost, rewardName, rewardID); err != nil {
		return domain.RedeemedReward{}, err
	}

	now := s.nowFn()
	r := domain.RedeemedReward{
		ID:         s.newID("reward"),
		RewardID:   rewardID,
		RewardName: rewardName,
		PointsCost: pointsCost,
		RedeemedAt: now.UTC(),
		Status:     domain.RewardActive,
		ExpiryDate: domain.FormatDate(now.AddDate(0, 0, s.validityDays)),
	}
	if err := s.putJSON(ctx, UserKey(uid, keyRedeemedRewards), append(rewards, r)); err != nil {
		return domain.RedeemedReward{}, err
	}
	s.metrics.Reward("redeemed")
	s.log.Info("reward redeemed", "user", uid, "reward", rewardID, "cost", pointsCost)
	return r, nil
}

// ListRedeemedRewards returns the user's redemptions in redemption order.
// Active rewards past their expiry date are marked expired first.
func (s *Service) ListRedeemedRewards(ctx context.Context, uid string) ([]domain.RedeemedReward, error) {
	unlock, err := s.acquire(uid)
	if err != nil {
		return nil, err
	}
	defer unlock()

	rewards, err := s.expireRewards(ctx, uid)
	return nonNil(rewards), err
}

// UseReward marks an active redemption as used.
func (s *Service) UseReward(ctx context.Context, uid, redemptionID string) (domain.RedeemedReward, error) {
	unlock, err := s.acquire(uid)
	if err != nil {
		return domain.RedeemedReward{}, err
	}
	defer unlock()

	rewards, err := s.expireRewards(ctx, uid)
	if err != nil {
		return domain.RedeemedReward{}, err
	}
	for i := range rewards {
		if rewards[i].ID != redemptionID {
			continue
		}
		if rewards[i].Status != domain.RewardActive {
			return domain.RedeemedReward{}, fmt.Errorf("reward %s is %s: %w", redemptionID, rewards[i].Status, domain.ErrInvalidTransition)
		}
		rewards[i].Status = domain.RewardUsed
		if err := s.putJSON(ctx, UserKey(uid, keyRedeemedRewards), rewards); err != nil {
			return domain.RedeemedReward{}, err
		}
		s.metrics.Reward("used")
		s.log.Info("reward used", "user", uid, "redemption", redemptionID)
		return rewards[i], nil
	}
	return domain.RedeemedReward{}, fmt.Errorf("redemption %q: %w", redemptionID, domain.ErrNotFound)
}

// expireRewards loads the redemptions and persists any expiry transitions.
func (s *Service) expireRewards(ctx context.Context, uid string) ([]domain.RedeemedReward, error) {
	rewards, err := s.redeemed(ctx, uid)
	if err != nil {
		return nil, err
	}
	now := s.nowFn()
	expired := 0
	for i := range rewards {
		if rewards[i].ExpiredAt(now) {
			rewards[i].Status = domain.RewardExpired
			expired++
		}
	}
	if expired == 0 {
		return rewards, nil
	}
	if err := s.putJSON(ctx, UserKey(uid, keyRedeemedRewards), rewards); err != nil {
		return nil, err
	}
	for i := 0; i < expired; i++ {
		s.metrics.Reward("expired")
	}
	s.log.Info("rewards expired", "user", uid, "count", expired)
	return rewards, nil
}
