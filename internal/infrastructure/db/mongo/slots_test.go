package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/chaldal/admin-console/internal/infrastructure/tokenstore"
)

// Runs against a real server when MONGO_TEST_URI is set.
func newSlotStore(t *testing.T) *SlotStore {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	ctx := context.Background()
	db, err := Open(ctx, Config{URI: uri, Database: "admin_console_test_" + uuid.NewString()[:8]})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Database().Drop(context.Background())
		_ = db.Close()
	})
	s := NewSlotStore(db.Database())
	if err := s.EnsureIndexes(ctx); err != nil {
		t.Fatalf("indexes: %v", err)
	}
	return s
}

func TestSlotStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	s := newSlotStore(t)

	if err := s.Set(ctx, "k", []byte("v1"), time.Hour); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, "k", []byte("v2"), time.Hour); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil || string(got) != "v2" {
		t.Fatalf("expected v2, got %q (%v)", got, err)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, "k"); err != tokenstore.ErrMissing {
		t.Fatalf("expected ErrMissing, got %v", err)
	}
}

func TestSlotStore_HidesExpired(t *testing.T) {
	ctx := context.Background()
	s := newSlotStore(t)

	now := time.Now()
	s.now = func() time.Time { return now }
	_ = s.Set(ctx, "k", []byte("v"), time.Minute)

	now = now.Add(2 * time.Minute)
	if _, err := s.Get(ctx, "k"); err != tokenstore.ErrMissing {
		t.Fatalf("expected ErrMissing for expired slot, got %v", err)
	}
}
