package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/PierreBrethes/life-map-back/internal/amqp"
	"github.com/PierreBrethes/life-map-back/internal/core"
	"github.com/PierreBrethes/life-map-back/internal/storage"
)

// LedgerService writes ledger entries to SQLite and enqueues spreadsheet
// mirror messages. The database is the source of truth; a failed publish
// never fails the write, the startup catch-up re-enqueues pending entries.
type LedgerService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewLedgerService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *LedgerService {
	return &LedgerService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// AppendLedgerEntry validates and saves an entry, then publishes its mirror
// message. The recurring engine posts occurrences through this method so
// generated entries reach the spreadsheet the same way manual ones do.
func (s *LedgerService) AppendLedgerEntry(ctx context.Context, e core.LedgerEntry) (core.LedgerEntry, error) {
	if err := e.Validate(); err != nil {
		return core.LedgerEntry{}, fmt.Errorf("validate ledger entry: %w", err)
	}

	saved, err := s.storage.AppendLedgerEntry(ctx, e)
	if err != nil {
		return core.LedgerEntry{}, fmt.Errorf("save ledger entry: %w", err)
	}

	if err := s.publishMirrorMessage(ctx, saved.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger mirror message",
			"entry_id", saved.ID, "error", err)
		// The entry is saved locally; the worker's catch-up will retry.
	}

	return saved, nil
}

func (s *LedgerService) GetEntry(ctx context.Context, id string) (core.LedgerEntry, error) {
	return s.storage.GetLedgerEntry(ctx, id)
}

func (s *LedgerService) ListEntries(ctx context.Context, itemID string, from, to time.Time) ([]core.LedgerEntry, error) {
	return s.storage.ListLedgerEntries(ctx, itemID, from, to)
}

func (s *LedgerService) DeleteEntry(ctx context.Context, id string) error {
	if err := s.storage.DeleteLedgerEntry(ctx, id); err != nil {
		return fmt.Errorf("delete ledger entry: %w", err)
	}
	return nil
}

func (s *LedgerService) publishMirrorMessage(ctx context.Context, entryID string) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping mirror message")
		return nil
	}
	return s.amqpClient.PublishLedgerSync(ctx, entryID)
}

// Close releases the underlying storage and AMQP connections.
func (s *LedgerService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}
	return nil
}
