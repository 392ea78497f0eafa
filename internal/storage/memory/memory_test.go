package memory

import (
	"context"
	"errors"
	"testing"

	"moneymap/internal/storage"
)

func TestStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	s := New()

	buf := []byte("abc")
	if err := s.Save(ctx, "k", buf); err != nil {
		t.Fatalf("save: %v", err)
	}
	buf[0] = 'z'

	got, ok, err := s.Load(ctx, "k")
	if err != nil || !ok || string(got) != "abc" {
		t.Fatalf("got %q ok=%v err=%v", got, ok, err)
	}
	got[1] = 'z'
	again, _, _ := s.Load(ctx, "k")
	if string(again) != "abc" {
		t.Fatalf("caller mutation leaked into store: %q", again)
	}
}

func TestStoreDeleteAndClose(t *testing.T) {
	ctx := context.Background()
	s := New()
	_ = s.Save(ctx, "k", []byte("v"))
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := s.Load(ctx, "k"); ok {
		t.Fatal("expected key to be gone")
	}

	_ = s.Close()
	if err := s.Save(ctx, "k", []byte("v")); !errors.Is(err, storage.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}
