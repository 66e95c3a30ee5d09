package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/beautyboost/beautyboost/internal/domain"
)

func TestRedeemReward(t *testing.T) {
	s, _, _ := newTestLedger(t, testAlice)
	ctx := context.Background()
	s.EarnPoints(ctx, testAlice.ID, 600, "seed", "")

	r, err := s.RedeemReward(ctx, testAlice.ID, "rwd_luxury_facial", "Luxury Facial Treatment", 500)
	if err != nil {
		t.Fatalf("RedeemReward() error: %v", err)
	}
	if r.Status != domain.RewardActive || r.PointsCost != 500 || r.RewardID != "rwd_luxury_facial" {
		t.Errorf("RedeemReward() = %+v", r)
	}
	// 90 days after 2026-10-17.
	if r.ExpiryDate != "2027-01-15" {
		t.Errorf("ExpiryDate = %q, want 2027-01-15", r.ExpiryDate)
	}
	if bal := mustBalance(t, s, testAlice.ID); bal != 100 {
		t.Errorf("balance = %d, want 100", bal)
	}

	h, _ := s.TransactionHistory(ctx, testAlice.ID)
	if h[0].Type != domain.TxRedeemed || h[0].RewardID != "rwd_luxury_facial" || h[0].Description != "Luxury Facial Treatment" {
		t.Errorf("redeem transaction = %+v", h[0])
	}
	list, _ := s.ListRedeemedRewards(ctx, testAlice.ID)
	if len(list) != 1 || list[0].ID != r.ID {
		t.Errorf("ListRedeemedRewards() = %+v", list)
	}
}

func TestRedeemReward_InsufficientHasNoSideEffects(t *testing.T) {
	s, _, _ := newTestLedger(t, testAlice)
	ctx := context.Background()
	s.EarnPoints(ctx, testAlice.ID, 99, "seed", "")

	if _, err := s.RedeemReward(ctx, testAlice.ID, "rwd_hair_wash", "Free Hair Wash", 100); !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("RedeemReward() error = %v, want ErrInsufficientBalance", err)
	}
	list, _ := s.ListRedeemedRewards(ctx, testAlice.ID)
	h, _ := s.TransactionHistory(ctx, testAlice.ID)
	if len(list) != 0 || len(h) != 1 || mustBalance(t, s, testAlice.ID) != 99 {
		t.Errorf("side effects: rewards=%d history=%d", len(list), len(h))
	}

	if _, err := s.RedeemReward(ctx, testAlice.ID, "rwd_free", "Free", 0); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Errorf("RedeemReward(cost 0) error = %v, want ErrInvalidAmount", err)
	}
}

func TestRedeemReward_CorruptListMovesNoPoints(t *testing.T) {
	s, store, _ := newTestLedger(t, testAlice)
	ctx := context.Background()
	s.EarnPoints(ctx, testAlice.ID, 500, "seed", "")
	store.Set(ctx, UserKey(testAlice.ID, keyRedeemedRewards), "not json")

	if _, err := s.RedeemReward(ctx, testAlice.ID, "rwd_hair_wash", "Wash", 100); !errors.Is(err, domain.ErrCorruptData) {
		t.Fatalf("RedeemReward() error = %v, want ErrCorruptData", err)
	}
	if bal := mustBalance(t, s, testAlice.ID); bal != 500 {
		t.Errorf("balance = %d, want 500", bal)
	}
}

func TestUseReward(t *testing.T) {
	s, _, _ := newTestLedger(t, testAlice)
	ctx := context.Background()
	s.EarnPoints(ctx, testAlice.ID, 1000, "seed", "")
	r, _ := s.RedeemReward(ctx, testAlice.ID, "rwd_makeup", "Makeup", 300)

	used, err := s.UseReward(ctx, testAlice.ID, r.ID)
	if err != nil {
		t.Fatalf("UseReward() error: %v", err)
	}
	if used.Status != domain.RewardUsed {
		t.Errorf("status = %s, want used", used.Status)
	}
	if _, err := s.UseReward(ctx, testAlice.ID, r.ID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("UseReward(used) error = %v, want ErrInvalidTransition", err)
	}
	if _, err := s.UseReward(ctx, testAlice.ID, "reward_nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("UseReward(missing) error = %v, want ErrNotFound", err)
	}
}

func TestRewards_ExpireOnRead(t *testing.T) {
	s, _, clock := newTestLedger(t, testAlice)
	ctx := context.Background()
	s.EarnPoints(ctx, testAlice.ID, 1000, "seed", "")
	r, _ := s.RedeemReward(ctx, testAlice.ID, "rwd_hair_wash", "Wash", 100)

	clock.mu.Lock()
	clock.now = clock.now.Add(91 * 24 * time.Hour)
	clock.mu.Unlock()

	list, err := s.ListRedeemedRewards(ctx, testAlice.ID)
	if err != nil {
		t.Fatalf("ListRedeemedRewards() error: %v", err)
	}
	if list[0].Status != domain.RewardExpired {
		t.Errorf("status = %s, want expired", list[0].Status)
	}
	if _, err := s.UseReward(ctx, testAlice.ID, r.ID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("UseReward(expired) error = %v, want ErrInvalidTransition", err)
	}
	// Expiry never refunds points.
	if bal := mustBalance(t, s, testAlice.ID); bal != 900 {
		t.Errorf("balance = %d, want 900", bal)
	}
}
