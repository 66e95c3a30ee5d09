package ledger

import (
	"context"
	"fmt"
	"math"

	"github.com/beautyboost/beautyboost/internal/domain"
)

// ─── Profile ────────────────────────────────────────────────────────────────

// GetProfile returns the user's profile, or nil if none has been seeded.
func (s *Service) GetProfile(ctx context.Context, uid string) (*domain.Profile, error) {
	unlock, err := s.acquire(uid)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return s.profile(ctx, uid)
}

// UpdateProfile merges u onto the stored profile and returns the result.
// Without a stored profile it does nothing and returns nil.
func (s *Service) UpdateProfile(ctx context.Context, uid string, u domain.ProfileUpdate) (*domain.Profile, error) {
	unlock, err := s.acquire(uid)
	if err != nil {
		return nil, err
	}
	defer unlock()

	p, err := s.profile(ctx, uid)
	if err != nil || p == nil {
		return nil, err
	}
	updated := u.Apply(*p)
	if err := s.putJSON(ctx, UserKey(uid, keyProfile), updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// ─── Balance ────────────────────────────────────────────────────────────────

// GetBalance returns the user's points balance (0 when unseeded).
func (s *Service) GetBalance(ctx context.Context, uid string) (int64, error) {
	unlock, err := s.acquire(uid)
	if err != nil {
		return 0, err
	}
	defer unlock()
	return s.balance(ctx, uid)
}

// Summary returns the balance with tier progress.
func (s *Service) Summary(ctx context.Context, uid string) (domain.PointsSummary, error) {
	bal, err := s.GetBalance(ctx, uid)
	if err != nil {
		return domain.PointsSummary{}, err
	}
	return domain.Summarize(bal, s.nowFn().UTC()), nil
}

// EarnPoints credits amount and prepends an earned transaction.
func (s *Service) EarnPoints(ctx context.Context, uid string, amount int64, description, serviceID string) (domain.Transaction, error) {
	if amount <= 0 {
		return domain.Transaction{}, fmt.Errorf("earn %d: %w", amount, domain.ErrInvalidAmount)
	}
	unlock, err := s.acquire(uid)
	if err != nil {
		return domain.Transaction{}, err
	}
	defer unlock()
	return s.earn(ctx, uid, amount, description, serviceID)
}

// RedeemPoints debits amount if the balance covers it. On
// ErrInsufficientBalance nothing is written.
func (s *Service) RedeemPoints(ctx context.Context, uid string, amount int64, description, rewardID string) (domain.Transaction, error) {
	if amount <= 0 {
		return domain.Transaction{}, fmt.Errorf("redeem %d: %w", amount, domain.ErrInvalidAmount)
	}
	unlock, err := s.acquire(uid)
	if err != nil {
		return domain.Transaction{}, err
	}
	defer unlock()
	return s.redeem(ctx, uid, amount, description, rewardID)
}

// RecomputeTier rewrites the profile tier from the current balance.
func (s *Service) RecomputeTier(ctx context.Context, uid string) (domain.Tier, error) {
	unlock, err := s.acquire(uid)
	if err != nil {
		return "", err
	}
	defer unlock()

	bal, err := s.balance(ctx, uid)
	if err != nil {
		return "", err
	}
	return s.recomputeTier(ctx, uid, bal)
}

// ─── History ────────────────────────────────────────────────────────────────

// TransactionHistory returns the user's transactions, newest first.
func (s *Service) TransactionHistory(ctx context.Context, uid string) ([]domain.Transaction, error) {
	unlock, err := s.acquire(uid)
	if err != nil {
		return nil, err
	}
	defer unlock()

	h, err := s.history(ctx, uid)
	return nonNil(h), err
}

// ServiceHistory returns completed services, newest first. limit <= 0
// returns the full history.
func (s *Service) ServiceHistory(ctx context.Context, uid string, limit int) ([]domain.ServiceHistoryEntry, error) {
	unlock, err := s.acquire(uid)
	if err != nil {
		return nil, err
	}
	defer unlock()

	h, err := s.services(ctx, uid)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(h) > limit {
		h = h[:limit]
	}
	return nonNil(h), nil
}

// ─── Unlocked Primitives ────────────────────────────────────────────────────
// Callers hold the user's lock.

func (s *Service) earn(ctx context.Context, uid string, amount int64, description, serviceID string) (domain.Transaction, error) {
	bal, err := s.balance(ctx, uid)
	if err != nil {
		return domain.Transaction{}, err
	}
	if amount > math.MaxInt64-bal {
		return domain.Transaction{}, fmt.Errorf("earn %d with balance %d overflows: %w", amount, bal, domain.ErrInvalidAmount)
	}
	tx := domain.Transaction{
		ID:          s.newID("txn"),
		Type:        domain.TxEarned,
		Amount:      amount,
		Description: description,
		Date:        domain.FormatDate(s.nowFn()),
		ServiceID:   serviceID,
	}
	if err := s.apply(ctx, uid, tx, bal+amount); err != nil {
		return domain.Transaction{}, err
	}
	s.metrics.Earned(amount)
	s.log.Debug("points earned", "user", uid, "amount", amount, "balance", bal+amount)
	return tx, nil
}

func (s *Service) redeem(ctx context.Context, uid string, amount int64, description, rewardID string) (domain.Transaction, error) {
	bal, err := s.balance(ctx, uid)
	if err != nil {
		return domain.Transaction{}, err
	}
	if bal < amount {
		s.metrics.RedemptionRejected("insufficient_balance")
		return domain.Transaction{}, fmt.Errorf("redeem %d with balance %d: %w", amount, bal, domain.ErrInsufficientBalance)
	}
	tx := domain.Transaction{
		ID:          s.newID("txn"),
		Type:        domain.TxRedeemed,
		Amount:      amount,
		Description: description,
		Date:        domain.FormatDate(s.nowFn()),
		RewardID:    rewardID,
	}
	if err := s.apply(ctx, uid, tx, bal-amount); err != nil {
		return domain.Transaction{}, err
	}
	s.metrics.Redeemed(amount)
	s.log.Debug("points redeemed", "user", uid, "amount", amount, "balance", bal-amount)
	return tx, nil
}

// apply prepends tx, writes the new balance and refreshes the tier.
func (s *Service) apply(ctx context.Context, uid string, tx domain.Transaction, newBalance int64) error {
	history, err := s.history(ctx, uid)
	if err != nil {
		return err
	}
	if err := s.putJSON(ctx, UserKey(uid, keyHistory), append([]domain.Transaction{tx}, history...)); err != nil {
		return err
	}
	if err := s.setBalance(ctx, uid, newBalance); err != nil {
		// Best effort: drop the transaction the balance never reflected.
		if rerr := s.putJSON(ctx, UserKey(uid, keyHistory), history); rerr != nil {
			s.log.Error("restore history failed", "user", uid, "txn", tx.ID, "err", rerr)
		}
		return err
	}
	_, err = s.recomputeTier(ctx, uid, newBalance)
	return err
}

// recomputeTier writes TierFor(balance) to the profile when it changed.
// Users without a profile get the derived tier back and nothing is written.
func (s *Service) recomputeTier(ctx context.Context, uid string, balance int64) (domain.Tier, error) {
	tier := domain.TierFor(balance)
	p, err := s.profile(ctx, uid)
	if err != nil || p == nil {
		return tier, err
	}
	if p.Tier == tier {
		return tier, nil
	}
	prev := p.Tier
	p.Tier = tier
	if err := s.putJSON(ctx, UserKey(uid, keyProfile), p); err != nil {
		return "", err
	}
	s.metrics.TierChanged(string(prev), string(tier))
	s.log.Info("tier changed", "user", uid, "from", prev, "to", tier)
	return tier, nil
}
