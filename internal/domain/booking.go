package domain

import "time"

// ─── Booking Types ──────────────────────────────────────────────────────────

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingUpcoming  BookingStatus = "upcoming"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// Valid reports whether s is a known booking status.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingUpcoming, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

// CanTransition reports whether a booking may move from s to next.
// Only upcoming bookings change state; re-applying the current terminal
// state is allowed and treated as a no-op by the ledger.
func (s BookingStatus) CanTransition(next BookingStatus) bool {
	if s == next {
		return true
	}
	return s == BookingUpcoming && (next == BookingCompleted || next == BookingCancelled)
}

// Booking is an appointment for a salon service.
type Booking struct {
	ID          string        `json:"id"`
	UserID      string        `json:"userId"`
	ServiceID   string        `json:"serviceId"`
	ServiceName string        `json:"serviceName"`
	Stylist     string        `json:"stylist"`
	Date        string        `json:"date"`
	Time        string        `json:"time"`
	Duration    string        `json:"duration"`
	Price       float64       `json:"price"`
	Points      int64         `json:"points"`
	Status      BookingStatus `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// BookingInput is everything a caller supplies when booking.
// ID, UserID, Status and CreatedAt are assigned by the ledger.
type BookingInput struct {
	ServiceID   string  `json:"serviceId"`
	ServiceName string  `json:"serviceName"`
	Stylist     string  `json:"stylist"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Duration    string  `json:"duration"`
	Price       float64 `json:"price"`
	Points      int64   `json:"points"`
}

// ServiceHistoryEntry is a denormalized record of a completed service.
type ServiceHistoryEntry struct {
	Name   string `json:"name"`
	Date   string `json:"date"`
	Points int64  `json:"points"`
}

// ─── Redeemed Rewards ───────────────────────────────────────────────────────

// RewardStatus is the lifecycle state of a redeemed reward.
type RewardStatus string

const (
	RewardActive  RewardStatus = "active"
	RewardUsed    RewardStatus = "used"
	RewardExpired RewardStatus = "expired"
)

// RedeemedReward is created together with a successful points redemption.
type RedeemedReward struct {
	ID         string       `json:"id"`
	RewardID   string       `json:"rewardId"`
	RewardName string       `json:"rewardName"`
	PointsCost int64        `json:"pointsCost"`
	RedeemedAt time.Time    `json:"redeemedAt"`
	Status     RewardStatus `json:"status"`
	ExpiryDate string       `json:"expiryDate,omitempty"`
}

// ExpiredAt reports whether an active reward is past its expiry date at now.
// Rewards without an expiry date never expire.
func (r RedeemedReward) ExpiredAt(now time.Time) bool {
	if r.Status != RewardActive || r.ExpiryDate == "" {
		return false
	}
	exp, err := time.Parse(time.DateOnly, r.ExpiryDate)
	if err != nil {
		return false
	}
	return FormatDate(now) > FormatDate(exp)
}

// ─── Admin Views ────────────────────────────────────────────────────────────

// AdminSummary aggregates bookings and points across every customer.
type AdminSummary struct {
	TotalCustomers    int   `json:"total_customers"`
	TotalBookings     int   `json:"total_bookings"`
	CompletedBookings int   `json:"completed_bookings"`
	UpcomingBookings  int   `json:"upcoming_bookings"`
	CancelledBookings int   `json:"cancelled_bookings"`
	OutstandingPoints int64 `json:"outstanding_points"`
	RedeemedRewards   int   `json:"redeemed_rewards"`
}

// CustomerOverview is one row of the admin customer table.
type CustomerOverview struct {
	Account  Account `json:"account"`
	Tier     Tier    `json:"tier"`
	Balance  int64   `json:"balance"`
	Bookings int     `json:"bookings"`
}
