package store

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRead_MissingKey(t *testing.T) {
	s := openTestStore(t)

	value, found, err := s.Read(context.Background(), "absent")
	if err != nil {
		t.Fatalf("Read() failed: %v", err)
	}
	if found {
		t.Error("expected found == false for missing key")
	}
	if value != nil {
		t.Errorf("expected nil value, got %q", value)
	}
}

func TestWrite_ThenRead(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	blob := []byte(`{"1":{"box":2,"lastReviewed":1700000000000}}`)
	if err := s.Write(ctx, "progress", blob); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}

	got, found, err := s.Read(ctx, "progress")
	if err != nil {
		t.Fatalf("Read() failed: %v", err)
	}
	if !found {
		t.Fatal("expected key to be found")
	}
	if !bytes.Equal(got, blob) {
		t.Errorf("Read() = %q, want %q", got, blob)
	}
}

func TestWrite_LastWriterWins(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, v := range []string{"first", "second", "third"} {
		if err := s.Write(ctx, "progress", []byte(v)); err != nil {
			t.Fatalf("Write(%q) failed: %v", v, err)
		}
	}

	got, _, err := s.Read(ctx, "progress")
	if err != nil {
		t.Fatalf("Read() failed: %v", err)
	}
	if string(got) != "third" {
		t.Errorf("Read() = %q, want %q", got, "third")
	}

	rev, err := s.Revision(ctx, "progress")
	if err != nil {
		t.Fatalf("Revision() failed: %v", err)
	}
	if rev != 3 {
		t.Errorf("Revision() = %d, want 3", rev)
	}
}

func TestWrite_StampsUpdatedAt(t *testing.T) {
	s := openTestStore(t)
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	if err := s.Write(context.Background(), "k", []byte("v")); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}

	var updated int64
	if err := s.db.QueryRow("SELECT updated_at FROM blobs WHERE key = 'k'").Scan(&updated); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if updated != fixed.UnixMilli() {
		t.Errorf("updated_at = %d, want %d", updated, fixed.UnixMilli())
	}
}

func TestWrite_NilValueStoredAsEmpty(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Write(ctx, "k", nil); err != nil {
		t.Fatalf("Write(nil) failed: %v", err)
	}
	got, found, err := s.Read(ctx, "k")
	if err != nil || !found {
		t.Fatalf("Read() = found %v, err %v", found, err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty value, got %q", got)
	}
}

func TestWrite_ClosedStoreFails(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	s.Close()

	if err := s.Write(context.Background(), "k", []byte("v")); err == nil {
		t.Error("expected error writing to closed store")
	}
}

func TestMemory_RoundTripAndFailures(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, found, _ := m.Read(ctx, "k"); found {
		t.Fatal("empty memory should not find key")
	}

	if err := m.Write(ctx, "k", []byte("v1")); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
	got, found, err := m.Read(ctx, "k")
	if err != nil || !found || string(got) != "v1" {
		t.Fatalf("Read() = %q, %v, %v", got, found, err)
	}

	boom := errors.New("quota exceeded")
	m.FailWrites(boom)
	if err := m.Write(ctx, "k", []byte("v2")); !errors.Is(err, boom) {
		t.Errorf("Write() error = %v, want %v", err, boom)
	}
	if v, _ := m.Get("k"); string(v) != "v1" {
		t.Errorf("failed write changed value to %q", v)
	}
	if m.Writes() != 1 {
		t.Errorf("Writes() = %d, want 1", m.Writes())
	}

	m.FailReads(boom)
	if _, _, err := m.Read(ctx, "k"); !errors.Is(err, boom) {
		t.Errorf("Read() error = %v, want %v", err, boom)
	}

	m.Put("seed", []byte("x"))
	if m.Writes() != 1 {
		t.Error("Put() should not count as a write")
	}
}
