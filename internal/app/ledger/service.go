// Package ledger implements the per-user loyalty ledger: profile, points
// balance and history, bookings, redeemed rewards and service history,
// plus the admin aggregate views across all accounts.
//
// Every operation takes the user id explicitly. Each user's records live
// under user:<id>:<name> in the KV store and every operation on a user
// runs under that user's mutex, so read-modify-write sequences on the
// balance and its history are atomic per user.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/beautyboost/beautyboost/internal/domain"
	"github.com/beautyboost/beautyboost/internal/infra/observability"
)

// Per-user key names.
const (
	keyProfile         = "profile"
	keyBalance         = "points_balance"
	keyHistory         = "points_history"
	keyBookings        = "bookings"
	keyRedeemedRewards = "redeemed_rewards"
	keyServicesHistory = "services_history"
)

// RecentServiceLimit is the number of service-history entries shown by
// default views.
const RecentServiceLimit = 3

// DefaultRewardValidityDays applies when Options leaves it unset.
const DefaultRewardValidityDays = 90

// UserKey returns the store key of a per-user record.
func UserKey(uid, name string) string {
	return "user:" + uid + ":" + name
}

// UserPrefix returns the key prefix of a user's namespace.
func UserPrefix(uid string) string {
	return "user:" + uid + ":"
}

// Options configure a Service.
type Options struct {
	RewardValidityDays int
	// SeedDemo gives the demo customer a pre-populated history.
	SeedDemo bool
	Metrics  *observability.Recorder
	Logger   *slog.Logger
}

// Service is the Ledger Store. It is safe for concurrent use.
type Service struct {
	store        domain.KVStore
	accounts     domain.AccountLister
	validityDays int
	seedDemo     bool
	metrics      *observability.Recorder
	log          *slog.Logger

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	nowFn func() time.Time
	newID func(prefix string) string
}

// New creates a ledger over store. accounts backs the admin views and
// InitializeAll; it may be nil when those are not used.
func New(store domain.KVStore, accounts domain.AccountLister, opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	days := opts.RewardValidityDays
	if days <= 0 {
		days = DefaultRewardValidityDays
	}
	return &Service{
		store:        store,
		accounts:     accounts,
		validityDays: days,
		seedDemo:     opts.SeedDemo,
		metrics:      opts.Metrics,
		log:          log.With("component", "ledger"),
		locks:        make(map[string]*sync.Mutex),
		nowFn:        time.Now,
		newID:        func(prefix string) string { return prefix + "_" + uuid.NewString() },
	}
}

// ─── Locking ────────────────────────────────────────────────────────────────

// acquire validates uid and locks its namespace. Callers defer the
// returned unlock.
func (s *Service) acquire(uid string) (func(), error) {
	if uid == "" || strings.Contains(uid, ":") {
		return nil, fmt.Errorf("user id %q: %w", uid, domain.ErrInvalidInput)
	}
	s.locksMu.Lock()
	m, ok := s.locks[uid]
	if !ok {
		m = &sync.Mutex{}
		s.locks[uid] = m
	}
	s.locksMu.Unlock()

	m.Lock()
	return m.Unlock, nil
}

// ─── Record I/O ─────────────────────────────────────────────────────────────

func getJSON[T any](ctx context.Context, store domain.KVStore, key string) (T, bool, error) {
	var v T
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		return v, false, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok || raw == "" {
		return v, false, nil
	}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return v, false, fmt.Errorf("%w: %s: %v", domain.ErrCorruptData, key, err)
	}
	return v, true, nil
}

func (s *Service) putJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *Service) balance(ctx context.Context, uid string) (int64, error) {
	key := UserKey(uid, keyBalance)
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok || raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s: %q", domain.ErrCorruptData, key, raw)
	}
	return n, nil
}

func (s *Service) setBalance(ctx context.Context, uid string, n int64) error {
	key := UserKey(uid, keyBalance)
	if err := s.store.Set(ctx, key, strconv.FormatInt(n, 10)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *Service) profile(ctx context.Context, uid string) (*domain.Profile, error) {
	p, ok, err := getJSON[domain.Profile](ctx, s.store, UserKey(uid, keyProfile))
	if err != nil || !ok {
		return nil, err
	}
	return &p, nil
}

func (s *Service) history(ctx context.Context, uid string) ([]domain.Transaction, error) {
	h, _, err := getJSON[[]domain.Transaction](ctx, s.store, UserKey(uid, keyHistory))
	return h, err
}

func (s *Service) bookings(ctx context.Context, uid string) ([]domain.Booking, error) {
	b, _, err := getJSON[[]domain.Booking](ctx, s.store, UserKey(uid, keyBookings))
	return b, err
}

func (s *Service) redeemed(ctx context.Context, uid string) ([]domain.RedeemedReward, error) {
	r, _, err := getJSON[[]domain.RedeemedReward](ctx, s.store, UserKey(uid, keyRedeemedRewards))
	return r, err
}

func (s *Service) services(ctx context.Context, uid string) ([]domain.ServiceHistoryEntry, error) {
	h, _, err := getJSON[[]domain.ServiceHistoryEntry](ctx, s.store, UserKey(uid, keyServicesHistory))
	return h, err
}

// nonNil keeps JSON encodings as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// ClearAll erases every key in the user's namespace. Other users are
// untouched.
func (s *Service) ClearAll(ctx context.Context, uid string) error {
	unlock, err := s.acquire(uid)
	if err != nil {
		return err
	}
	defer unlock()

	keys, err := s.store.Keys(ctx, UserPrefix(uid))
	if err != nil {
		return fmt.Errorf("list %s: %w", uid, err)
	}
	for _, k := range keys {
		if err := s.store.Delete(ctx, k); err != nil {
			return fmt.Errorf("delete %s: %w", k, err)
		}
	}
	s.log.Info("cleared ledger namespace", "user", uid, "keys", len(keys))
	return nil
}
