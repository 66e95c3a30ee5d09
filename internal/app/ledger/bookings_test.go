package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/beautyboost/beautyboost/internal/domain"
)

var haircut = domain.BookingInput{
	ServiceID:   "svc_haircut",
	ServiceName: "Hair Cut & Style",
	Stylist:     "Emma Rodriguez",
	Date:        "2026-10-20",
	Time:        "10:00 AM",
	Duration:    "60 min",
	Price:       65,
	Points:      150,
}

func TestCreateBooking(t *testing.T) {
	s, _, _ := newTestLedger(t, testAlice)
	ctx := context.Background()

	b, err := s.CreateBooking(ctx, testAlice.ID, haircut)
	if err != nil {
		t.Fatalf("CreateBooking() error: %v", err)
	}
	if b.ID == "" || b.UserID != testAlice.ID || b.Status != domain.BookingUpcoming || b.CreatedAt.IsZero() {
		t.Errorf("CreateBooking() = %+v", b)
	}

	second, _ := s.CreateBooking(ctx, testAlice.ID, haircut)
	list, _ := s.ListBookings(ctx, testAlice.ID)
	if len(list) != 2 || list[0].ID != b.ID || list[1].ID != second.ID {
		t.Errorf("ListBookings() = %+v, want creation order", list)
	}
	// Booking alone moves no points.
	if bal := mustBalance(t, s, testAlice.ID); bal != 0 {
		t.Errorf("balance = %d, want 0", bal)
	}
}

func TestCreateBooking_Invalid(t *testing.T) {
	s, _, _ := newTestLedger(t, testAlice)

	tests := []struct {
		name string
		mod  func(in *domain.BookingInput)
	}{
		{"no service name", func(in *domain.BookingInput) { in.ServiceName = " " }},
		{"no date", func(in *domain.BookingInput) { in.Date = "" }},
		{"negative points", func(in *domain.BookingInput) { in.Points = -1 }},
		{"negative price", func(in *domain.BookingInput) { in.Price = -5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := haircut
			tt.mod(&in)
			if _, err := s.CreateBooking(context.Background(), testAlice.ID, in); !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("CreateBooking() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestCompleteBooking(t *testing.T) {
	s, _, _ := newTestLedger(t, testAlice)
	ctx := context.Background()
	b, _ := s.CreateBooking(ctx, testAlice.ID, haircut)

	done, err := s.CompleteBooking(ctx, testAlice.ID, b.ID)
	if err != nil {
		t.Fatalf("CompleteBooking() error: %v", err)
	}
	if done.Status != domain.BookingCompleted {
		t.Errorf("status = %s, want completed", done.Status)
	}
	if bal := mustBalance(t, s, testAlice.ID); bal != 150 {
		t.Errorf("balance = %d, want 150", bal)
	}

	h, _ := s.TransactionHistory(ctx, testAlice.ID)
	if len(h) != 1 || h[0].Type != domain.TxEarned || h[0].Amount != 150 || h[0].Description != "Hair Cut & Style" || h[0].ServiceID != "svc_haircut" {
		t.Errorf("history = %+v", h)
	}
	svc, _ := s.ServiceHistory(ctx, testAlice.ID, 0)
	if len(svc) != 1 || svc[0] != (domain.ServiceHistoryEntry{Name: "Hair Cut & Style", Date: "2026-10-20", Points: 150}) {
		t.Errorf("service history = %+v", svc)
	}
	stored, _ := s.GetBooking(ctx, testAlice.ID, b.ID)
	if stored.Status != domain.BookingCompleted {
		t.Errorf("stored status = %s", stored.Status)
	}
}

func TestCompleteBooking_Idempotent(t *testing.T) {
	s, _, _ := newTestLedger(t, testAlice)
	ctx := context.Background()
	b, _ := s.CreateBooking(ctx, testAlice.ID, haircut)

	s.CompleteBooking(ctx, testAlice.ID, b.ID)
	again, err := s.CompleteBooking(ctx, testAlice.ID, b.ID)
	if err != nil {
		t.Fatalf("second CompleteBooking() error: %v", err)
	}
	if again.Status != domain.BookingCompleted {
		t.Errorf("status = %s", again.Status)
	}
	if bal := mustBalance(t, s, testAlice.ID); bal != 150 {
		t.Errorf("balance after double completion = %d, want 150", bal)
	}
	h, _ := s.TransactionHistory(ctx, testAlice.ID)
	svc, _ := s.ServiceHistory(ctx, testAlice.ID, 0)
	if len(h) != 1 || len(svc) != 1 {
		t.Errorf("history %d / services %d, want 1 / 1", len(h), len(svc))
	}
}

func TestCompleteBooking_ConcurrentAwardsOnce(t *testing.T) {
	s, _, _ := newTestLedger(t, testAlice)
	ctx := context.Background()
	b, _ := s.CreateBooking(ctx, testAlice.ID, haircut)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.CompleteBooking(ctx, testAlice.ID, b.ID)
		}()
	}
	wg.Wait()

	if bal := mustBalance(t, s, testAlice.ID); bal != 150 {
		t.Errorf("balance = %d, want 150", bal)
	}
}

func TestCompleteBooking_Errors(t *testing.T) {
	s, _, _ := newTestLedger(t, testAlice, testBob)
	ctx := context.Background()

	if _, err := s.CompleteBooking(ctx, testAlice.ID, "booking_missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("CompleteBooking(missing) error = %v, want ErrNotFound", err)
	}

	b, _ := s.CreateBooking(ctx, testAlice.ID, haircut)
	// Another user's booking id is not visible.
	if _, err := s.CompleteBooking(ctx, testBob.ID, b.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("CompleteBooking(other user) error = %v, want ErrNotFound", err)
	}

	if _, err := s.CancelBooking(ctx, testAlice.ID, b.ID); err != nil {
		t.Fatalf("CancelBooking() error: %v", err)
	}
	if _, err := s.CompleteBooking(ctx, testAlice.ID, b.ID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("CompleteBooking(cancelled) error = %v, want ErrInvalidTransition", err)
	}
	if bal := mustBalance(t, s, testAlice.ID); bal != 0 {
		t.Errorf("balance = %d, want 0", bal)
	}
}

func TestCompleteBooking_ZeroPoints(t *testing.T) {
	s, _, _ := newTestLedger(t, testAlice)
	ctx := context.Background()
	in := haircut
	in.Points = 0
	b, _ := s.CreateBooking(ctx, testAlice.ID, in)

	if _, err := s.CompleteBooking(ctx, testAlice.ID, b.ID); err != nil {
		t.Fatalf("CompleteBooking() error: %v", err)
	}
	h, _ := s.TransactionHistory(ctx, testAlice.ID)
	svc, _ := s.ServiceHistory(ctx, testAlice.ID, 0)
	if len(h) != 0 || len(svc) != 1 {
		t.Errorf("history %d / services %d, want 0 / 1", len(h), len(svc))
	}
}

func TestSetBookingStatus(t *testing.T) {
	s, _, _ := newTestLedger(t, testAlice)
	ctx := context.Background()

	a, _ := s.CreateBooking(ctx, testAlice.ID, haircut)
	b, _ := s.CreateBooking(ctx, testAlice.ID, haircut)

	// completed goes through CompleteBooking and awards points.
	if _, err := s.SetBookingStatus(ctx, testAlice.ID, a.ID, domain.BookingCompleted); err != nil {
		t.Fatalf("SetBookingStatus(completed) error: %v", err)
	}
	if bal := mustBalance(t, s, testAlice.ID); bal != 150 {
		t.Errorf("balance = %d, want 150", bal)
	}

	tests := []struct {
		name   string
		id     string
		status domain.BookingStatus
		want   error
	}{
		{"cancel completed", a.ID, domain.BookingCancelled, domain.ErrInvalidTransition},
		{"back to upcoming", a.ID, domain.BookingUpcoming, domain.ErrInvalidTransition},
		{"unknown status", b.ID, "postponed", domain.ErrInvalidInput},
		{"unknown booking", "booking_nope", domain.BookingCancelled, domain.ErrNotFound},
		{"cancel upcoming", b.ID, domain.BookingCancelled, nil},
		{"cancel again", b.ID, domain.BookingCancelled, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.SetBookingStatus(ctx, testAlice.ID, tt.id, tt.status)
			if !errors.Is(err, tt.want) {
				t.Errorf("SetBookingStatus() error = %v, want %v", err, tt.want)
			}
		})
	}

	got, _ := s.GetBooking(ctx, testAlice.ID, b.ID)
	if got.Status != domain.BookingCancelled {
		t.Errorf("status = %s, want cancelled", got.Status)
	}
}

func TestServiceHistory_Limit(t *testing.T) {
	s, _, _ := newTestLedger(t, testAlice)
	ctx := context.Background()

	names := []string{"one", "two", "three", "four", "five"}
	for _, n := range names {
		in := haircut
		in.ServiceName = n
		b, _ := s.CreateBooking(ctx, testAlice.ID, in)
		s.CompleteBooking(ctx, testAlice.ID, b.ID)
	}

	recent, _ := s.ServiceHistory(ctx, testAlice.ID, RecentServiceLimit)
	if len(recent) != 3 || recent[0].Name != "five" || recent[2].Name != "three" {
		t.Errorf("recent = %+v", recent)
	}
	all, _ := s.ServiceHistory(ctx, testAlice.ID, 0)
	if len(all) != 5 || all[4].Name != "one" {
		t.Errorf("full history = %+v", all)
	}
}
