package sqlite

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// ─── Schema Tests ───────────────────────────────────────────────────────────

func TestKVMigrations_TableExists(t *testing.T) {
	db := newTestDB(t)

	var name string
	err := db.db.QueryRow(
		`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, "kv",
	).Scan(&name)
	if err != nil {
		t.Fatalf("table kv not found: %v", err)
	}
}

func TestOpen_Reopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	db, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if err := db.Set(ctx, "accounts", `[]`); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	db.Close()

	// Migrations must be idempotent and data must survive.
	db2, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer db2.Close()

	v, ok, err := db2.Get(ctx, "accounts")
	if err != nil || !ok || v != `[]` {
		t.Errorf("Get() after reopen = (%q, %v, %v)", v, ok, err)
	}
}

// ─── KV Operation Tests ─────────────────────────────────────────────────────

func TestGet_Missing(t *testing.T) {
	db := newTestDB(t)

	v, ok, err := db.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if ok || v != "" {
		t.Errorf("Get(missing) = (%q, %v), want (\"\", false)", v, ok)
	}
}

func TestSet_Upsert(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.Set(ctx, "user:u1:points_balance", "150"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if err := db.Set(ctx, "user:u1:points_balance", "1100"); err != nil {
		t.Fatalf("Set() overwrite error: %v", err)
	}

	v, ok, err := db.Get(ctx, "user:u1:points_balance")
	if err != nil || !ok {
		t.Fatalf("Get() = (%q, %v, %v)", v, ok, err)
	}
	if v != "1100" {
		t.Errorf("value = %q, want 1100", v)
	}

	n, err := db.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error: %v", err)
	}
	if n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
}

func TestDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	db.Set(ctx, "session", `{"id":"user_001"}`)
	if err := db.Delete(ctx, "session"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, ok, _ := db.Get(ctx, "session"); ok {
		t.Error("key still present after Delete()")
	}
	if err := db.Delete(ctx, "session"); err != nil {
		t.Errorf("Delete(missing) error: %v", err)
	}
}

func TestKeys_Prefix(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for _, k := range []string{
		"user:b:profile",
		"user:a:profile",
		"user:a:bookings",
		"accounts",
		"user_%:profile", // wildcard characters must match literally
	} {
		if err := db.Set(ctx, k, "x"); err != nil {
			t.Fatalf("Set(%s) error: %v", k, err)
		}
	}

	tests := []struct {
		prefix string
		want   []string
	}{
		{"user:a:", []string{"user:a:bookings", "user:a:profile"}},
		{"user:", []string{"user:a:bookings", "user:a:profile", "user:b:profile"}},
		{"user_%", []string{"user_%:profile"}},
		{"missing:", nil},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			got, err := db.Keys(ctx, tt.prefix)
			if err != nil {
				t.Fatalf("Keys() error: %v", err)
			}
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("Keys(%q) = %v, want %v", tt.prefix, got, tt.want)
			}
		})
	}
}

func TestSet_Concurrent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := db.Set(ctx, fmt.Sprintf("k%02d", i), "v"); err != nil {
				t.Errorf("Set() error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	n, _ := db.Count(ctx)
	if n != 20 {
		t.Errorf("Count() = %d, want 20", n)
	}
}
