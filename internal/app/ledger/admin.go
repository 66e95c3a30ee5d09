package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/beautyboost/beautyboost/internal/domain"
)

// ─── Admin Views ────────────────────────────────────────────────────────────
// These read across namespaces one user at a time. The result is not a
// consistent snapshot across users.

func (s *Service) requireAdmin(actor domain.Account) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("account %q is not an admin: %w", actor.ID, domain.ErrForbidden)
	}
	if s.accounts == nil {
		return errors.New("ledger: no account directory configured")
	}
	return nil
}

// ListAllBookings returns every account's bookings, newest first.
func (s *Service) ListAllBookings(ctx context.Context, actor domain.Account) ([]domain.Booking, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}
	accounts, err := s.accounts.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}

	all := []domain.Booking{}
	for _, a := range accounts {
		b, err := s.ListBookings(ctx, a.ID)
		if err != nil {
			return nil, fmt.Errorf("bookings of %s: %w", a.ID, err)
		}
		all = append(all, b...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	return all, nil
}

// AdminSummary aggregates booking counts and outstanding points.
func (s *Service) AdminSummary(ctx context.Context, actor domain.Account) (domain.AdminSummary, error) {
	var sum domain.AdminSummary
	if err := s.requireAdmin(actor); err != nil {
		return sum, err
	}
	accounts, err := s.accounts.ListAccounts(ctx)
	if err != nil {
		return sum, err
	}

	for _, a := range accounts {
		snap, err := s.snapshot(ctx, a.ID)
		if err != nil {
			return sum, err
		}
		if a.Role == domain.RoleCustomer {
			sum.TotalCustomers++
			sum.OutstandingPoints += snap.balance
		}
		sum.RedeemedRewards += snap.redeemed
		for _, b := range snap.bookings {
			sum.TotalBookings++
			switch b.Status {
			case domain.BookingCompleted:
				sum.CompletedBookings++
			case domain.BookingUpcoming:
				sum.UpcomingBookings++
			case domain.BookingCancelled:
				sum.CancelledBookings++
			}
		}
	}
	return sum, nil
}

// ListCustomers returns one overview row per customer account.
func (s *Service) ListCustomers(ctx context.Context, actor domain.Account) ([]domain.CustomerOverview, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}
	accounts, err := s.accounts.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}

	out := []domain.CustomerOverview{}
	for _, a := range accounts {
		if a.Role != domain.RoleCustomer {
			continue
		}
		snap, err := s.snapshot(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.CustomerOverview{
			Account:  a.Public(),
			Tier:     domain.TierFor(snap.balance),
			Balance:  snap.balance,
			Bookings: len(snap.bookings),
		})
	}
	return out, nil
}

type userSnapshot struct {
	balance  int64
	bookings []domain.Booking
	redeemed int
}

func (s *Service) snapshot(ctx context.Context, uid string) (userSnapshot, error) {
	unlock, err := s.acquire(uid)
	if err != nil {
		return userSnapshot{}, err
	}
	defer unlock()

	var snap userSnapshot
	if snap.balance, err = s.balance(ctx, uid); err != nil {
		return snap, err
	}
	if snap.bookings, err = s.bookings(ctx, uid); err != nil {
		return snap, err
	}
	rewards, err := s.redeemed(ctx, uid)
	if err != nil {
		return snap, err
	}
	snap.redeemed = len(rewards)
	return snap, nil
}
