package domain

// ─── Catalog Types ──────────────────────────────────────────────────────────
// The salon's bookable services and redeemable rewards. These are
// reference data; the ledger never stores them, it stores copies in
// bookings and redemptions.

// ServiceOffering is a bookable salon service.
type ServiceOffering struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Duration    string  `json:"duration" yaml:"duration"`
	Price       float64 `json:"price" yaml:"price"`
	Points      int64   `json:"points" yaml:"points"`
	Stylist     string  `json:"stylist" yaml:"stylist"`
	Rating      float64 `json:"rating" yaml:"rating"`
	Description string  `json:"description" yaml:"description"`
}

// BookingInput builds the ledger input for booking this service.
func (s ServiceOffering) BookingInput(date, at string) BookingInput {
	return BookingInput{
		ServiceID:   s.ID,
		ServiceName: s.Name,
		Stylist:     s.Stylist,
		Date:        date,
		Time:        at,
		Duration:    s.Duration,
		Price:       s.Price,
		Points:      s.Points,
	}
}

// RewardOffering is an entry in the rewards catalog.
type RewardOffering struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Points      int64  `json:"points" yaml:"points"`
	Category    string `json:"category" yaml:"category"`
	Tier        Tier   `json:"tier" yaml:"tier"` // display badge only
}
