package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/PierreBrethes/life-map-back/internal/amqp"
	"github.com/PierreBrethes/life-map-back/internal/core"
	"github.com/PierreBrethes/life-map-back/internal/sheets/memory"
	"github.com/PierreBrethes/life-map-back/internal/storage"
)

func newTestStorage(t *testing.T) *storage.SQLiteRepository {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "lifemap.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedEntry(t *testing.T, repo *storage.SQLiteRepository, label string) core.LedgerEntry {
	t.Helper()
	ctx := context.Background()

	account, err := repo.CreateLifeItem(ctx, core.LifeItem{
		Name:   "Checking account",
		Type:   core.ItemTypeCurrency,
		Status: core.ItemStatusOK,
	})
	if err != nil {
		t.Fatalf("CreateLifeItem() error = %v", err)
	}

	entry, err := repo.AppendLedgerEntry(ctx, core.LedgerEntry{
		ItemID:   account.ID,
		Date:     time.Date(2025, 11, 15, 0, 0, 0, 0, time.UTC),
		Value:    decimal.NewFromFloat(-12.50),
		Label:    label,
		Category: core.LedgerExpense,
	})
	if err != nil {
		t.Fatalf("AppendLedgerEntry() error = %v", err)
	}
	return entry
}

func TestMirrorWorker_HandleSyncMessage(t *testing.T) {
	repo := newTestStorage(t)
	mirror := memory.New()
	w := NewMirrorWorker(repo, mirror, 10)
	ctx := context.Background()

	entry := seedEntry(t, repo, "Groceries")

	if err := w.HandleSyncMessage(ctx, amqp.NewLedgerSyncMessage(entry.ID)); err != nil {
		t.Fatalf("HandleSyncMessage() error = %v", err)
	}

	mirrored := mirror.Entries()
	if len(mirrored) != 1 || mirrored[0].ID != entry.ID {
		t.Fatalf("mirror holds %v, want entry %s", mirrored, entry.ID)
	}

	pending, err := repo.GetPendingMirrorEntries(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingMirrorEntries() error = %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending = %v, want empty after mirror", pending)
	}
}

func TestMirrorWorker_HandleSyncMessageUnknownEntry(t *testing.T) {
	repo := newTestStorage(t)
	w := NewMirrorWorker(repo, memory.New(), 10)

	err := w.HandleSyncMessage(context.Background(), amqp.NewLedgerSyncMessage("no-such-entry"))
	if err == nil {
		t.Error("HandleSyncMessage() with unknown entry should fail")
	}
}

func TestMirrorWorker_StartupCatchUp(t *testing.T) {
	repo := newTestStorage(t)
	mirror := memory.New()
	w := NewMirrorWorker(repo, mirror, 10)
	ctx := context.Background()

	seedEntry(t, repo, "Rent")
	seedEntry(t, repo, "Netflix")

	if err := w.StartupCatchUp(ctx); err != nil {
		t.Fatalf("StartupCatchUp() error = %v", err)
	}

	if got := len(mirror.Entries()); got != 2 {
		t.Errorf("mirrored %d entries, want 2", got)
	}

	pending, err := repo.GetPendingMirrorEntries(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingMirrorEntries() error = %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending = %v, want empty after catch-up", pending)
	}
}

type failingMirror struct{}

func (failingMirror) AppendEntry(_ context.Context, _ core.LedgerEntry) (string, error) {
	return "", errors.New("spreadsheet unavailable")
}

func TestMirrorWorker_FailedMirrorStaysPending(t *testing.T) {
	repo := newTestStorage(t)
	w := NewMirrorWorker(repo, failingMirror{}, 10)
	ctx := context.Background()

	entry := seedEntry(t, repo, "Groceries")

	if err := w.HandleSyncMessage(ctx, amqp.NewLedgerSyncMessage(entry.ID)); err == nil {
		t.Fatal("HandleSyncMessage() should fail when the mirror is down")
	}

	pending, err := repo.GetPendingMirrorEntries(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingMirrorEntries() error = %v", err)
	}
	if len(pending) != 1 || pending[0].ID != entry.ID {
		t.Errorf("pending = %v, want the failed entry for retry", pending)
	}
}
