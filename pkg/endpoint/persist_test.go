package endpoint

import (
	"context"
	"testing"
	"time"
)

func openTestDirectory(t *testing.T) *Directory {
	t.Helper()
	d, err := OpenDirectory(":memory:")
	if err != nil {
		t.Fatalf("OpenDirectory: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestRecordThenListReturnsOldestFirst(t *testing.T) {
	d := openTestDirectory(t)
	ctx := context.Background()

	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	if err := d.Record(ctx, "edpt://localhost/app/b", newer); err != nil {
		t.Fatalf("Record b: %v", err)
	}
	if err := d.Record(ctx, "edpt://localhost/app/a", older); err != nil {
		t.Fatalf("Record a: %v", err)
	}

	entries, err := d.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].URI != "edpt://localhost/app/a" || entries[1].URI != "edpt://localhost/app/b" {
		t.Fatalf("unexpected order: %+v", entries)
	}
	if !entries[0].CreatedAt.Equal(older) {
		t.Fatalf("created_at not preserved: got %v want %v", entries[0].CreatedAt, older)
	}
}

func TestRecordIsIdempotentPerURI(t *testing.T) {
	d := openTestDirectory(t)
	ctx := context.Background()
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	if err := d.Record(ctx, "edpt://localhost/app/a", at); err != nil {
		t.Fatalf("first record: %v", err)
	}
	if err := d.Record(ctx, "edpt://localhost/app/a", at); err != nil {
		t.Fatalf("second record: %v", err)
	}

	entries, err := d.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected reconnection to update the same row, got %d rows", len(entries))
	}
}
