package domain

import "context"

// ─── Service Interfaces ─────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; application layer depends on them.

// KVStore abstracts the durable textual key-value store that backs both
// the account directory and every user's ledger namespace.
// Implementations: sqlite (default), memstore (tests), redisstore.
type KVStore interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set writes value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys lists every key starting with prefix, sorted ascending.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Close releases the backend.
	Close() error
}

// AccountLister exposes the directory to the ledger's admin views
// without making the ledger depend on the directory implementation.
type AccountLister interface {
	ListAccounts(ctx context.Context) ([]Account, error)
}

// Provisioner is signalled by the directory when a new account is
// registered so its ledger namespace can be seeded.
type Provisioner interface {
	Provision(ctx context.Context, account Account) error
}
