package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/filmvault/filmvault/internal/store"
)

func TestStore_ReadWrite(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	if _, err := s.Read(ctx, "missing"); !errors.Is(err, store.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}

	if err := s.Write(ctx, "users", []byte(`{}`)); err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}

	value, err := s.Read(ctx, "users")
	if err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}
	if string(value) != `{}` {
		t.Errorf("expected {}, got %s", value)
	}
}

func TestStore_ReadReturnsCopy(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	if err := s.Write(ctx, "k", []byte("abc")); err != nil {
		t.Fatal(err)
	}
	value, _ := s.Read(ctx, "k")
	value[0] = 'x'

	again, _ := s.Read(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("stored value was mutated through a read: %s", again)
	}
}

func TestStore_QuotaExceeded(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	s.SetQuota(10)

	if err := s.Write(ctx, "small", []byte("12345")); err != nil {
		t.Fatalf("write within quota failed: %v", err)
	}
	err := s.Write(ctx, "big", []byte("123456789012345"))
	if !errors.Is(err, store.ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}

	// The failed write must not clobber existing data.
	if _, err := s.Read(ctx, "small"); err != nil {
		t.Errorf("existing key lost after failed write: %v", err)
	}
}

func TestStore_Delete(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	_ = s.Write(ctx, "k", []byte("v"))
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Read(ctx, "k"); !errors.Is(err, store.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound after delete, got %v", err)
	}

	// Deleting an absent key is a no-op.
	if err := s.Delete(ctx, "k"); err != nil {
		t.Errorf("delete of absent key should not error: %v", err)
	}
}
