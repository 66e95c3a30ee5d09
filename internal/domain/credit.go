package domain

import "time"

// ─── Points Ledger Types ────────────────────────────────────────────────────
// These live in domain because they represent core business rules.
// The balance is maintained incrementally; it must always equal the net
// sum of earned minus redeemed transactions.

// TransactionType is the direction of a points movement.
type TransactionType string

const (
	TxEarned   TransactionType = "earned"
	TxRedeemed TransactionType = "redeemed"
)

// Transaction is a single entry in a user's points ledger.
type Transaction struct {
	ID          string          `json:"id"`
	Type        TransactionType `json:"type"`
	Amount      int64           `json:"amount"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
	ServiceID   string          `json:"serviceId,omitempty"`
	RewardID    string          `json:"rewardId,omitempty"`
}

// NetBalance folds a transaction history into the balance it implies.
func NetBalance(history []Transaction) int64 {
	var total int64
	for _, tx := range history {
		switch tx.Type {
		case TxEarned:
			total += tx.Amount
		case TxRedeemed:
			total -= tx.Amount
		}
	}
	return total
}

// ─── Tiers ──────────────────────────────────────────────────────────────────

// Tier is a membership level derived from the points balance.
type Tier string

const (
	TierBronze   Tier = "Bronze"
	TierSilver   Tier = "Silver"
	TierGold     Tier = "Gold"
	TierPlatinum Tier = "Platinum"
)

// Tier thresholds (inclusive lower bounds).
const (
	SilverThreshold   int64 = 1000
	GoldThreshold     int64 = 3000
	PlatinumThreshold int64 = 5000
)

// MaxAward caps the points a single booking or catalog entry may carry.
const MaxAward int64 = 1_000_000

// TierFor maps a balance to its tier. Pure and monotonic.
func TierFor(balance int64) Tier {
	switch {
	case balance >= PlatinumThreshold:
		return TierPlatinum
	case balance >= GoldThreshold:
		return TierGold
	case balance >= SilverThreshold:
		return TierSilver
	default:
		return TierBronze
	}
}

// Rank orders tiers from Bronze (0) to Platinum (3); unknown tiers rank -1.
func (t Tier) Rank() int {
	switch t {
	case TierBronze:
		return 0
	case TierSilver:
		return 1
	case TierGold:
		return 2
	case TierPlatinum:
		return 3
	default:
		return -1
	}
}

// Valid reports whether t is one of the four known tiers.
func (t Tier) Valid() bool { return t.Rank() >= 0 }

// ─── Profile ────────────────────────────────────────────────────────────────

// Profile is the per-user loyalty profile. Tier is a cached value of
// TierFor(balance) and is rewritten on every balance change.
type Profile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
	JoinDate string `json:"joinDate"`
	Tier     Tier   `json:"tier"`
}

// ProfileUpdate is a partial profile; nil fields are left untouched.
// Tier is deliberately absent: it is only written by tier recomputation.
type ProfileUpdate struct {
	Name   *string `json:"name,omitempty"`
	Email  *string `json:"email,omitempty"`
	Phone  *string `json:"phone,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
}

// Apply merges the non-nil fields of u onto p.
func (u ProfileUpdate) Apply(p Profile) Profile {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Email != nil {
		p.Email = *u.Email
	}
	if u.Phone != nil {
		p.Phone = *u.Phone
	}
	if u.Avatar != nil {
		p.Avatar = *u.Avatar
	}
	return p
}

// ProfileFromAccount builds the initial profile for a freshly provisioned user.
func ProfileFromAccount(a Account, balance int64) Profile {
	return Profile{
		ID:       a.ID,
		Name:     a.Name,
		Email:    a.Email,
		Phone:    a.Phone,
		Avatar:   a.Avatar,
		JoinDate: a.JoinDate,
		Tier:     TierFor(balance),
	}
}

// PointsSummary is the balance view shown on dashboards.
type PointsSummary struct {
	Balance   int64     `json:"balance"`
	Tier      Tier      `json:"tier"`
	NextTier  Tier      `json:"next_tier,omitempty"`
	ToNext    int64     `json:"points_to_next,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Summarize computes the tier progress for a balance.
func Summarize(balance int64, at time.Time) PointsSummary {
	s := PointsSummary{Balance: balance, Tier: TierFor(balance), CheckedAt: at}
	switch s.Tier {
	case TierBronze:
		s.NextTier, s.ToNext = TierSilver, SilverThreshold-balance
	case TierSilver:
		s.NextTier, s.ToNext = TierGold, GoldThreshold-balance
	case TierGold:
		s.NextTier, s.ToNext = TierPlatinum, PlatinumThreshold-balance
	}
	return s
}
