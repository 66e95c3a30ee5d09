package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/beautyboost/beautyboost/internal/domain"
)

// demoUserID is the seeded customer that receives a demo history.
const demoUserID = "user_001"

// ─── Provisioning ───────────────────────────────────────────────────────────

// Initialize seeds the account's namespace with defaults for every key that
// is absent. Existing records are never overwritten; they are decoded so
// corrupt data fails here rather than later.
func (s *Service) Initialize(ctx context.Context, account domain.Account) error {
	unlock, err := s.acquire(account.ID)
	if err != nil {
		return err
	}
	defer unlock()

	seed := s.defaults(account)

	if _, err := s.balance(ctx, account.ID); err != nil {
		return err
	}
	if err := s.setIfAbsent(ctx, account.ID, keyBalance, seed.balance); err != nil {
		return err
	}
	balance, err := s.balance(ctx, account.ID)
	if err != nil {
		return err
	}

	profile := domain.ProfileFromAccount(account, balance)
	records := []struct {
		name  string
		value any
		check func() error
	}{
		{keyProfile, profile, func() error { _, err := s.profile(ctx, account.ID); return err }},
		{keyHistory, nonNil(seed.history), func() error { _, err := s.history(ctx, account.ID); return err }},
		{keyBookings, []domain.Booking{}, func() error { _, err := s.bookings(ctx, account.ID); return err }},
		{keyRedeemedRewards, []domain.RedeemedReward{}, func() error { _, err := s.redeemed(ctx, account.ID); return err }},
		{keyServicesHistory, nonNil(seed.services), func() error { _, err := s.services(ctx, account.ID); return err }},
	}
	for _, r := range records {
		if err := r.check(); err != nil {
			return err
		}
		if err := s.setIfAbsent(ctx, account.ID, r.name, r.value); err != nil {
			return err
		}
	}
	// A profile written by an older seed may cache a stale tier.
	_, err = s.recomputeTier(ctx, account.ID, balance)
	return err
}

// Provision implements domain.Provisioner.
func (s *Service) Provision(ctx context.Context, account domain.Account) error {
	return s.Initialize(ctx, account)
}

// InitializeAll provisions every account in the directory.
func (s *Service) InitializeAll(ctx context.Context) error {
	if s.accounts == nil {
		return errors.New("ledger: no account directory configured")
	}
	accounts, err := s.accounts.ListAccounts(ctx)
	if err != nil {
		return err
	}
	for _, a := range accounts {
		if err := s.Initialize(ctx, a); err != nil {
			return fmt.Errorf("initialize %s: %w", a.ID, err)
		}
	}
	return nil
}

func (s *Service) setIfAbsent(ctx context.Context, uid, name string, value any) error {
	key := UserKey(uid, name)
	_, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}
	if ok {
		return nil
	}
	if n, isBalance := value.(int64); isBalance {
		return s.setBalance(ctx, uid, n)
	}
	return s.putJSON(ctx, key, value)
}

// ─── Seed Data ──────────────────────────────────────────────────────────────

type seedData struct {
	balance  int64
	history  []domain.Transaction
	services []domain.ServiceHistoryEntry
}

// defaults returns the starting ledger for an account. New accounts start
// empty; the demo customer gets a history whose net equals its balance.
func (s *Service) defaults(account domain.Account) seedData {
	if !s.seedDemo || account.ID != demoUserID {
		return seedData{}
	}
	history := []domain.Transaction{
		{ID: "txn_001", Type: domain.TxEarned, Amount: 150, Description: "Hair Cut & Style", Date: "2024-05-20"},
		{ID: "txn_002", Type: domain.TxEarned, Amount: 200, Description: "Facial Treatment", Date: "2024-05-15"},
		{ID: "txn_003", Type: domain.TxEarned, Amount: 100, Description: "Manicure", Date: "2024-05-10"},
		{ID: "txn_000", Type: domain.TxEarned, Amount: 2000, Description: "Welcome balance", Date: account.JoinDate},
	}
	return seedData{
		balance: domain.NetBalance(history),
		history: history,
		services: []domain.ServiceHistoryEntry{
			{Name: "Hair Cut & Style", Date: "2024-05-20", Points: 150},
			{Name: "Facial Treatment", Date: "2024-05-15", Points: 200},
			{Name: "Manicure", Date: "2024-05-10", Points: 100},
		},
	}
}
