package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/PierreBrethes/life-map-back/internal/amqp"
	"github.com/PierreBrethes/life-map-back/internal/sheets"
	"github.com/PierreBrethes/life-map-back/internal/storage"
)

// MirrorWorker copies posted ledger entries from SQLite into the
// spreadsheet. It consumes AMQP mirror messages and sweeps entries left in
// pending state, so a lost message or worker downtime never loses a row.
type MirrorWorker struct {
	storage   *storage.SQLiteRepository
	mirror    sheets.LedgerMirror
	batchSize int
}

func NewMirrorWorker(storage *storage.SQLiteRepository, mirror sheets.LedgerMirror, batchSize int) *MirrorWorker {
	return &MirrorWorker{
		storage:   storage,
		mirror:    mirror,
		batchSize: batchSize,
	}
}

// HandleSyncMessage mirrors the single entry named by an AMQP message.
func (w *MirrorWorker) HandleSyncMessage(ctx context.Context, msg *amqp.LedgerSyncMessage) error {
	slog.InfoContext(ctx, "Processing mirror message", "entry_id", msg.EntryID)

	if err := w.mirrorEntry(ctx, msg.EntryID); err != nil {
		return fmt.Errorf("mirror ledger entry: %w", err)
	}

	return nil
}

// ProcessPending sweeps a batch of entries still waiting for their
// spreadsheet copy. This backs up the queue in case messages are lost.
func (w *MirrorWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.storage.GetPendingMirrorEntries(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending mirror entries: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending mirror entries", "count", len(pending))

	for _, p := range pending {
		if err := w.mirrorEntry(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror pending entry", "entry_id", p.ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupCatchUp mirrors everything left pending while the worker was down.
// It uses a larger batch than the periodic sweep.
func (w *MirrorWorker) StartupCatchUp(ctx context.Context) error {
	pending, err := w.storage.GetPendingMirrorEntries(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending mirror entries for startup: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending mirror entries found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending mirror entries on startup, processing...",
		"count", len(pending))

	mirrored := 0
	failed := 0
	for _, p := range pending {
		if err := w.mirrorEntry(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror entry during startup",
				"entry_id", p.ID, "error", err)
			failed++
			continue
		}
		mirrored++
	}

	slog.InfoContext(ctx, "Startup mirror catch-up completed",
		"total", len(pending),
		"mirrored", mirrored,
		"errors", failed)

	return nil
}

func (w *MirrorWorker) mirrorEntry(ctx context.Context, id string) error {
	entry, err := w.storage.GetLedgerEntry(ctx, id)
	if err != nil {
		if markErr := w.storage.MarkMirrorError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark mirror error", "entry_id", id, "error", markErr)
		}
		return fmt.Errorf("get ledger entry: %w", err)
	}

	ref, err := w.mirror.AppendEntry(ctx, entry)
	if err != nil {
		if markErr := w.storage.MarkMirrorError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark mirror error", "entry_id", id, "error", markErr)
		}
		return fmt.Errorf("append to spreadsheet: %w", err)
	}

	if err := w.storage.MarkMirrored(ctx, id); err != nil {
		// The entry stays pending, so the sweep re-runs the whole mirror
		// and the spreadsheet may get a duplicate row. Mirroring is
		// at-least-once; the entry id column is the dedup key.
		slog.ErrorContext(ctx, "Failed to mark as mirrored", "entry_id", id, "error", err)
	}

	slog.InfoContext(ctx, "Ledger entry mirrored",
		"entry_id", id,
		"row_ref", ref,
		"label", entry.Label)

	return nil
}
