package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/PierreBrethes/life-map-back/internal/core"
)

func TestMemoryStoreAppend(t *testing.T) {
	s := New()

	ref, err := s.AppendEntry(context.Background(), core.LedgerEntry{
		ID:       "e1",
		ItemID:   "acct-1",
		Date:     time.Date(2025, 11, 15, 0, 0, 0, 0, time.UTC),
		Value:    decimal.NewFromFloat(-12.34),
		Label:    "Coffee",
		Category: core.LedgerExpense,
	})
	if err != nil || ref != "mem:1" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}

	entries := s.Entries()
	if len(entries) != 1 || entries[0].ID != "e1" {
		t.Fatalf("unexpected entries: %v", entries)
	}
}

func TestMemoryStoreRejectsInvalidEntry(t *testing.T) {
	s := New()

	_, err := s.AppendEntry(context.Background(), core.LedgerEntry{
		ID:       "e1",
		Date:     time.Date(2025, 11, 15, 0, 0, 0, 0, time.UTC),
		Value:    decimal.NewFromInt(-1),
		Label:    "No account",
		Category: core.LedgerExpense,
	})
	if err == nil {
		t.Fatal("AppendEntry() without item reference should fail")
	}
	if len(s.Entries()) != 0 {
		t.Fatal("invalid entry must not be stored")
	}
}
