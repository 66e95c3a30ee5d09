// Package accounts implements the account directory: registered users and
// the durable current-session pointer used by the CLI.
package accounts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/beautyboost/beautyboost/internal/domain"
	"github.com/beautyboost/beautyboost/internal/infra/observability"
	"github.com/beautyboost/beautyboost/internal/security"
)

// Directory keys.
const (
	KeyAccounts = "accounts"
	KeySession  = "session"
)

// Seeded accounts.
const (
	AdminID    = "admin_001"
	AdminEmail = "admin@beautyboost.com"
	DemoID     = "user_001"
	DemoEmail  = "sarah.johnson@email.com"
)

// Options configure a Directory. The zero value runs in demo mode.
type Options struct {
	// VerifyPasswords stores bcrypt hashes at registration and checks them
	// at login. When false any non-empty password is accepted.
	VerifyPasswords bool
	Passwords       *security.Passwords
	Metrics         *observability.Recorder
	Logger          *slog.Logger
}

// Directory is safe for concurrent use. All mutations are serialized.
type Directory struct {
	mu        sync.Mutex
	store     domain.KVStore
	prov      domain.Provisioner
	verify    bool
	passwords *security.Passwords
	metrics   *observability.Recorder
	log       *slog.Logger

	nowFn func() time.Time
	newID func() string
}

type session struct {
	AccountID  string    `json:"accountId"`
	LoggedInAt time.Time `json:"loggedInAt"`
}

// New creates a directory over store. prov may be nil.
func New(store domain.KVStore, prov domain.Provisioner, opts Options) *Directory {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	pw := opts.Passwords
	if pw == nil {
		pw = security.NewPasswords(0)
	}
	d := &Directory{
		store:     store,
		prov:      prov,
		verify:    opts.VerifyPasswords,
		passwords: pw,
		metrics:   opts.Metrics,
		log:       log.With("component", "accounts"),
		nowFn:     time.Now,
		newID:     func() string { return "user_" + uuid.NewString() },
	}
	if !d.verify {
		d.log.Warn("password verification disabled: any non-empty password is accepted")
	}
	return d
}

// SetProvisioner wires the ledger after construction.
func (d *Directory) SetProvisioner(p domain.Provisioner) {
	d.mu.Lock()
	d.prov = p
	d.mu.Unlock()
}

// ─── Seeding ────────────────────────────────────────────────────────────────

func seedAccounts() []domain.Account {
	return []domain.Account{
		{
			ID:       AdminID,
			Email:    AdminEmail,
			Name:     "Admin User",
			Role:     domain.RoleAdmin,
			JoinDate: "2024-01-01",
		},
		{
			ID:       DemoID,
			Email:    DemoEmail,
			Name:     "Sarah Johnson",
			Role:     domain.RoleCustomer,
			Phone:    "+1 (555) 123-4567",
			JoinDate: "2024-01-15",
		},
	}
}

// Initialize seeds the admin and demo customer when the directory is empty.
// It never overwrites existing accounts.
func (d *Directory) Initialize(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	accounts, err := d.load(ctx)
	if err != nil {
		return err
	}
	if len(accounts) > 0 {
		return nil
	}
	if err := d.save(ctx, seedAccounts()); err != nil {
		return err
	}
	d.log.Info("seeded account directory", "accounts", 2)
	return nil
}

// ─── Queries ────────────────────────────────────────────────────────────────

// ListAccounts returns every account in registration order, without
// password hashes.
func (d *Directory) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	d.mu.Lock()
	accounts, err := d.load(ctx)
	d.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out := make([]domain.Account, len(accounts))
	for i, a := range accounts {
		out[i] = a.Public()
	}
	return out, nil
}

// Get returns the account with id.
func (d *Directory) Get(ctx context.Context, id string) (domain.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	accounts, err := d.load(ctx)
	if err != nil {
		return domain.Account{}, err
	}
	for _, a := range accounts {
		if a.ID == id {
			return a.Public(), nil
		}
	}
	return domain.Account{}, fmt.Errorf("account %q: %w", id, domain.ErrNotFound)
}

// CurrentSession returns the logged-in account, or nil when there is no
// session or it points at an account that no longer exists. An unreadable
// session is ErrCorruptData; Logout clears it.
func (d *Directory) CurrentSession(ctx context.Context) (*domain.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	raw, ok, err := d.store.Get(ctx, KeySession)
	if err != nil || !ok {
		return nil, err
	}
	var s session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("%w: session: %v", domain.ErrCorruptData, err)
	}

	accounts, err := d.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		if a.ID == s.AccountID {
			pub := a.Public()
			return &pub, nil
		}
	}
	return nil, nil
}

// IsAdmin reports whether the current session belongs to an admin.
func (d *Directory) IsAdmin(ctx context.Context) (bool, error) {
	a, err := d.CurrentSession(ctx)
	if err != nil {
		return false, err
	}
	return a != nil && a.IsAdmin(), nil
}

// ─── Authentication ─────────────────────────────────────────────────────────

// Authenticate checks credentials without touching the session.
// The API uses it directly; Login wraps it for the CLI.
func (d *Directory) Authenticate(ctx context.Context, email, password string) (domain.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.authenticate(ctx, email, password)
}

// Login authenticates and makes the account the current session.
func (d *Directory) Login(ctx context.Context, email, password string) (domain.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	a, err := d.authenticate(ctx, email, password)
	if err != nil {
		return domain.Account{}, err
	}
	if err := d.setSession(ctx, a.ID); err != nil {
		return domain.Account{}, err
	}
	d.log.Info("login", "account", a.ID)
	return a, nil
}

func (d *Directory) authenticate(ctx context.Context, email, password string) (domain.Account, error) {
	if password == "" {
		return domain.Account{}, fmt.Errorf("password is required: %w", domain.ErrInvalidInput)
	}
	accounts, err := d.load(ctx)
	if err != nil {
		return domain.Account{}, err
	}

	idx := -1
	for i, a := range accounts {
		if domain.SameEmail(a.Email, email) {
			idx = i
			break
		}
	}
	if idx < 0 {
		d.metrics.Login("not_found")
		return domain.Account{}, fmt.Errorf("account %q: %w", email, domain.ErrNotFound)
	}

	a := accounts[idx]
	if d.verify {
		if a.PasswordHash == "" {
			// Accounts created before verification was enabled adopt the
			// first password they log in with.
			hash, err := d.passwords.Hash(password)
			if err != nil {
				return domain.Account{}, fmt.Errorf("hash password: %w", err)
			}
			accounts[idx].PasswordHash = hash
			if err := d.save(ctx, accounts); err != nil {
				return domain.Account{}, err
			}
			d.log.Warn("stored first password for account without hash", "account", a.ID)
		} else if !d.passwords.Verify(a.PasswordHash, password) {
			d.metrics.Login("bad_password")
			return domain.Account{}, domain.ErrInvalidCredentials
		}
	}

	d.metrics.Login("ok")
	return a.Public(), nil
}

// Register creates a customer account, makes it the current session and
// signals the provisioner. If provisioning fails the account still exists
// and is returned together with the error.
func (d *Directory) Register(ctx context.Context, in domain.RegisterInput) (domain.Account, error) {
	return d.register(ctx, in, true)
}

// CreateAccount is Register without the session side effect. The API uses
// it since bearer tokens carry the caller's identity.
func (d *Directory) CreateAccount(ctx context.Context, in domain.RegisterInput) (domain.Account, error) {
	return d.register(ctx, in, false)
}

func (d *Directory) register(ctx context.Context, in domain.RegisterInput, withSession bool) (domain.Account, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := validateRegistration(in); err != nil {
		return domain.Account{}, err
	}

	d.mu.Lock()
	accounts, err := d.load(ctx)
	if err != nil {
		d.mu.Unlock()
		return domain.Account{}, err
	}
	for _, a := range accounts {
		if domain.SameEmail(a.Email, in.Email) {
			d.mu.Unlock()
			return domain.Account{}, fmt.Errorf("email %q: %w", in.Email, domain.ErrAlreadyExists)
		}
	}

	a := domain.Account{
		ID:       d.newID(),
		Email:    in.Email,
		Name:     in.Name,
		Role:     domain.RoleCustomer,
		Phone:    strings.TrimSpace(in.Phone),
		JoinDate: domain.FormatDate(d.nowFn()),
	}
	if d.verify {
		hash, err := d.passwords.Hash(in.Password)
		if err != nil {
			d.mu.Unlock()
			return domain.Account{}, fmt.Errorf("hash password: %w", err)
		}
		a.PasswordHash = hash
	}

	if err := d.save(ctx, append(accounts, a)); err != nil {
		d.mu.Unlock()
		return domain.Account{}, err
	}
	if withSession {
		if err := d.setSession(ctx, a.ID); err != nil {
			d.mu.Unlock()
			return domain.Account{}, err
		}
	}
	prov := d.prov
	d.mu.Unlock()

	d.metrics.Registered()
	d.log.Info("registered account", "account", a.ID)

	pub := a.Public()
	if prov != nil {
		if err := prov.Provision(ctx, pub); err != nil {
			return pub, fmt.Errorf("provision ledger for %s: %w", a.ID, err)
		}
	}
	return pub, nil
}

// Logout clears the session unconditionally.
func (d *Directory) Logout(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.store.Delete(ctx, KeySession)
}

func validateRegistration(in domain.RegisterInput) error {
	switch {
	case in.Email == "" || !strings.Contains(in.Email, "@"):
		return fmt.Errorf("a valid email is required: %w", domain.ErrInvalidInput)
	case in.Name == "":
		return fmt.Errorf("name is required: %w", domain.ErrInvalidInput)
	case in.Password == "":
		return fmt.Errorf("password is required: %w", domain.ErrInvalidInput)
	}
	return nil
}

// ─── Persistence ────────────────────────────────────────────────────────────

func (d *Directory) load(ctx context.Context) ([]domain.Account, error) {
	raw, ok, err := d.store.Get(ctx, KeyAccounts)
	if err != nil {
		return nil, fmt.Errorf("read accounts: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var accounts []domain.Account
	if err := json.Unmarshal([]byte(raw), &accounts); err != nil {
		return nil, fmt.Errorf("%w: accounts: %v", domain.ErrCorruptData, err)
	}
	return accounts, nil
}

func (d *Directory) save(ctx context.Context, accounts []domain.Account) error {
	data, err := json.Marshal(accounts)
	if err != nil {
		return err
	}
	if err := d.store.Set(ctx, KeyAccounts, string(data)); err != nil {
		return fmt.Errorf("write accounts: %w", err)
	}
	return nil
}

func (d *Directory) setSession(ctx context.Context, id string) error {
	data, err := json.Marshal(session{AccountID: id, LoggedInAt: d.nowFn().UTC()})
	if err != nil {
		return err
	}
	if err := d.store.Set(ctx, KeySession, string(data)); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}
