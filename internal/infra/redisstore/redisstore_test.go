package redisstore

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/beautyboost/beautyboost/internal/domain"
)

var _ domain.KVStore = (*Store)(nil)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func TestStore_SetGet(t *testing.T) {
	mr, client := setupTestRedis(t)
	s := New(client, "")
	ctx := context.Background()

	if err := s.Set(ctx, "user:u1:points_balance", "2450"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	// Keys are written under the namespace prefix.
	raw, err := mr.Get(DefaultPrefix + "user:u1:points_balance")
	if err != nil || raw != "2450" {
		t.Errorf("raw redis value = (%q, %v)", raw, err)
	}

	v, ok, err := s.Get(ctx, "user:u1:points_balance")
	if err != nil || !ok || v != "2450" {
		t.Errorf("Get() = (%q, %v, %v)", v, ok, err)
	}
}

func TestStore_GetMissing(t *testing.T) {
	_, client := setupTestRedis(t)
	s := New(client, "")

	v, ok, err := s.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if ok || v != "" {
		t.Errorf("Get(missing) = (%q, %v)", v, ok)
	}
}

func TestStore_Delete(t *testing.T) {
	_, client := setupTestRedis(t)
	s := New(client, "")
	ctx := context.Background()

	s.Set(ctx, "session", "{}")
	if err := s.Delete(ctx, "session"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "session"); ok {
		t.Error("key still present after Delete()")
	}
	if err := s.Delete(ctx, "session"); err != nil {
		t.Errorf("Delete(missing) error: %v", err)
	}
}

func TestStore_KeysPrefixAndIsolation(t *testing.T) {
	mr, client := setupTestRedis(t)
	s := New(client, "app1:")
	ctx := context.Background()

	for _, k := range []string{"user:b:profile", "user:a:profile", "user:a:bookings", "accounts", "user*:x"} {
		s.Set(ctx, k, "x")
	}
	// A foreign namespace must stay invisible.
	mr.Set("app2:user:z:profile", "x")

	tests := []struct {
		prefix string
		want   []string
	}{
		{"user:a:", []string{"user:a:bookings", "user:a:profile"}},
		{"user:", []string{"user:a:bookings", "user:a:profile", "user:b:profile"}},
		{"user*", []string{"user*:x"}},
		{"", []string{"accounts", "user*:x", "user:a:bookings", "user:a:profile", "user:b:profile"}},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			got, err := s.Keys(ctx, tt.prefix)
			if err != nil {
				t.Fatalf("Keys() error: %v", err)
			}
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("Keys(%q) = %v, want %v", tt.prefix, got, tt.want)
			}
		})
	}
}

func TestConnect(t *testing.T) {
	mr, _ := setupTestRedis(t)
	ctx := context.Background()

	for _, addr := range []string{mr.Addr(), "redis://" + mr.Addr() + "/0"} {
		client, err := Connect(ctx, addr, "", 0)
		if err != nil {
			t.Fatalf("Connect(%s) error: %v", addr, err)
		}
		client.Close()
	}

	if _, err := Connect(ctx, "redis://%zz", "", 0); err == nil {
		t.Error("Connect() with a malformed URL should fail")
	}
}
