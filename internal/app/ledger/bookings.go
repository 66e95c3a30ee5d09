package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/beautyboost/beautyboost/internal/domain"
)

// ─── Bookings ───────────────────────────────────────────────────────────────

// ListBookings returns the user's bookings in creation order.
func (s *Service) ListBookings(ctx context.Context, uid string) ([]domain.Booking, error) {
	unlock, err := s.acquire(uid)
	if err != nil {
		return nil, err
	}
	defer unlock()

	b, err := s.bookings(ctx, uid)
	return nonNil(b), err
}

// GetBooking returns one of the user's bookings.
func (s *Service) GetBooking(ctx context.Context, uid, id string) (domain.Booking, error) {
	unlock, err := s.acquire(uid)
	if err != nil {
		return domain.Booking{}, err
	}
	defer unlock()

	bookings, err := s.bookings(ctx, uid)
	if err != nil {
		return domain.Booking{}, err
	}
	i := indexBooking(bookings, id)
	if i < 0 {
		return domain.Booking{}, fmt.Errorf("booking %q: %w", id, domain.ErrNotFound)
	}
	return bookings[i], nil
}

// CreateBooking appends an upcoming booking for the user.
func (s *Service) CreateBooking(ctx context.Context, uid string, in domain.BookingInput) (domain.Booking, error) {
	if err := validateBooking(in); err != nil {
		return domain.Booking{}, err
	}
	unlock, err := s.acquire(uid)
	if err != nil {
		return domain.Booking{}, err
	}
	defer unlock()

	bookings, err := s.bookings(ctx, uid)
	if err != nil {
		return domain.Booking{}, err
	}
	b := domain.Booking{
		ID:          s.newID("booking"),
		UserID:      uid,
		ServiceID:   in.ServiceID,
		ServiceName: in.ServiceName,
		Stylist:     in.Stylist,
		Date:        in.Date,
		Time:        in.Time,
		Duration:    in.Duration,
		Price:       in.Price,
		Points:      in.Points,
		Status:      domain.BookingUpcoming,
		CreatedAt:   s.nowFn().UTC(),
	}
	if err := s.putJSON(ctx, UserKey(uid, keyBookings), append(bookings, b)); err != nil {
		return domain.Booking{}, err
	}
	s.metrics.Booking("created")
	s.log.Info("booking created", "user", uid, "booking", b.ID, "service", b.ServiceName, "date", b.Date)
	return b, nil
}

// SetBookingStatus moves a booking to status. Completing goes through
// CompleteBooking so points are always awarded. Re-applying the current
// status is a no-op.
func (s *Service) SetBookingStatus(ctx context.Context, uid, id string, status domain.BookingStatus) (domain.Booking, error) {
	if !status.Valid() {
		return domain.Booking{}, fmt.Errorf("status %q: %w", status, domain.ErrInvalidInput)
	}
	if status == domain.BookingCompleted {
		return s.CompleteBooking(ctx, uid, id)
	}

	unlock, err := s.acquire(uid)
	if err != nil {
		return domain.Booking{}, err
	}
	defer unlock()

	bookings, err := s.bookings(ctx, uid)
	if err != nil {
		return domain.Booking{}, err
	}
	i := indexBooking(bookings, id)
	if i < 0 {
		return domain.Booking{}, fmt.Errorf("booking %q: %w", id, domain.ErrNotFound)
	}
	cur := bookings[i].Status
	if !cur.CanTransition(status) {
		return domain.Booking{}, fmt.Errorf("booking %s %s -> %s: %w", id, cur, status, domain.ErrInvalidTransition)
	}
	if cur == status {
		return bookings[i], nil
	}

	bookings[i].Status = status
	if err := s.putJSON(ctx, UserKey(uid, keyBookings), bookings); err != nil {
		return domain.Booking{}, err
	}
	s.metrics.Booking(string(status))
	s.log.Info("booking status changed", "user", uid, "booking", id, "status", status)
	return bookings[i], nil
}

// CancelBooking is SetBookingStatus(cancelled).
func (s *Service) CancelBooking(ctx context.Context, uid, id string) (domain.Booking, error) {
	return s.SetBookingStatus(ctx, uid, id, domain.BookingCancelled)
}

// CompleteBooking marks an upcoming booking completed, credits its points
// and records a service-history entry. Completing an already completed
// booking returns it unchanged and awards nothing.
func (s *Service) CompleteBooking(ctx context.Context, uid, id string) (domain.Booking, error) {
	unlock, err := s.acquire(uid)
	if err != nil {
		return domain.Booking{}, err
	}
	defer unlock()

	bookings, err := s.bookings(ctx, uid)
	if err != nil {
		return domain.Booking{}, err
	}
	i := indexBooking(bookings, id)
	if i < 0 {
		return domain.Booking{}, fmt.Errorf("booking %q: %w", id, domain.ErrNotFound)
	}

	switch bookings[i].Status {
	case domain.BookingCompleted:
		return bookings[i], nil
	case domain.BookingCancelled:
		return domain.Booking{}, fmt.Errorf("booking %s is cancelled: %w", id, domain.ErrInvalidTransition)
	}

	// Status is persisted before the award; a retry never credits twice.
	bookings[i].Status = domain.BookingCompleted
	if err := s.putJSON(ctx, UserKey(uid, keyBookings), bookings); err != nil {
		return domain.Booking{}, err
	}
	b := bookings[i]

	if b.Points > 0 {
		if _, err := s.earn(ctx, uid, b.Points, b.ServiceName, b.ServiceID); err != nil {
			// Reopen the booking so a retry can still award it.
			bookings[i].Status = domain.BookingUpcoming
			if rerr := s.putJSON(ctx, UserKey(uid, keyBookings), bookings); rerr != nil {
				s.log.Error("reopen booking failed", "user", uid, "booking", id, "err", rerr)
			}
			return domain.Booking{}, err
		}
	}

	services, err := s.services(ctx, uid)
	if err != nil {
		return domain.Booking{}, err
	}
	entry := domain.ServiceHistoryEntry{Name: b.ServiceName, Date: b.Date, Points: b.Points}
	if err := s.putJSON(ctx, UserKey(uid, keyServicesHistory), append([]domain.ServiceHistoryEntry{entry}, services...)); err != nil {
		return domain.Booking{}, err
	}

	s.metrics.Booking("completed")
	s.log.Info("booking completed", "user", uid, "booking", id, "points", b.Points)
	return b, nil
}

func indexBooking(bookings []domain.Booking, id string) int {
	for i, b := range bookings {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func validateBooking(in domain.BookingInput) error {
	switch {
	case strings.TrimSpace(in.ServiceName) == "":
		return fmt.Errorf("service name is required: %w", domain.ErrInvalidInput)
	case strings.TrimSpace(in.Date) == "":
		return fmt.Errorf("date is required: %w", domain.ErrInvalidInput)
	case in.Points < 0:
		return fmt.Errorf("points must not be negative: %w", domain.ErrInvalidInput)
	case in.Points > domain.MaxAward:
		return fmt.Errorf("points %d exceed %d: %w", in.Points, domain.MaxAward, domain.ErrInvalidInput)
	case in.Price < 0:
		return fmt.Errorf("price must not be negative: %w", domain.ErrInvalidInput)
	}
	return nil
}
