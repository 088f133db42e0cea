package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/PierreBrethes/life-map-back/internal/core"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Mirror states of a ledger entry relative to the spreadsheet copy.
const (
	MirrorPending  = "pending"
	MirrorMirrored = "mirrored"
	MirrorError    = "error"
)

// AppendLedgerEntry inserts a new ledger entry in pending mirror state.
func (r *SQLiteRepository) AppendLedgerEntry(ctx context.Context, e core.LedgerEntry) (core.LedgerEntry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ledger_entries (id, item_id, date, value, label, category, mirror_status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.ItemID, timeToMillis(e.Date), e.Value.String(), e.Label, string(e.Category),
		MirrorPending, time.Now().UnixMilli())
	if err != nil {
		return core.LedgerEntry{}, fmt.Errorf("insert ledger entry: %w", err)
	}

	slog.InfoContext(ctx, "Ledger entry saved",
		"id", e.ID,
		"item_id", e.ItemID,
		"label", e.Label,
		"value", e.Value.String())

	return e, nil
}

func (r *SQLiteRepository) GetLedgerEntry(ctx context.Context, id string) (core.LedgerEntry, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, item_id, date, value, label, category
		FROM ledger_entries WHERE id = ?`, id)

	e, err := scanLedgerEntry(row)
	if err != nil {
		return core.LedgerEntry{}, fmt.Errorf("get ledger entry %s: %w", id, err)
	}
	return e, nil
}

// ListLedgerEntries returns the entries of one account, newest first. Zero
// from/to bounds are open.
func (r *SQLiteRepository) ListLedgerEntries(ctx context.Context, itemID string, from, to time.Time) ([]core.LedgerEntry, error) {
	query := `
		SELECT id, item_id, date, value, label, category
		FROM ledger_entries WHERE item_id = ?`
	args := []any{itemID}

	if !from.IsZero() {
		query += ` AND date >= ?`
		args = append(args, timeToMillis(from))
	}
	if !to.IsZero() {
		query += ` AND date < ?`
		args = append(args, timeToMillis(to))
	}
	query += ` ORDER BY date DESC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []core.LedgerEntry
	for rows.Next() {
		e, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *SQLiteRepository) DeleteLedgerEntry(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM ledger_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete ledger entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// PendingMirrorEntry identifies an entry still waiting for its spreadsheet
// copy, used to build catch-up messages at worker startup.
type PendingMirrorEntry struct {
	ID        string
	CreatedAt time.Time
}

func (r *SQLiteRepository) GetPendingMirrorEntries(ctx context.Context, limit int) ([]PendingMirrorEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, created_at FROM ledger_entries
		WHERE mirror_status != ?
		ORDER BY created_at ASC LIMIT ?`, MirrorMirrored, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending mirror entries: %w", err)
	}
	defer rows.Close()

	var pending []PendingMirrorEntry
	for rows.Next() {
		var p PendingMirrorEntry
		var createdAt int64
		if err := rows.Scan(&p.ID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan pending mirror entry: %w", err)
		}
		p.CreatedAt = millisToTime(createdAt)
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// MarkMirrored records that the entry now has a spreadsheet copy.
func (r *SQLiteRepository) MarkMirrored(ctx context.Context, id string) error {
	if err := r.setMirrorStatus(ctx, id, MirrorMirrored); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Ledger entry marked as mirrored", "id", id)
	return nil
}

// MarkMirrorError flags the entry so the startup catch-up retries it.
func (r *SQLiteRepository) MarkMirrorError(ctx context.Context, id string) error {
	if err := r.setMirrorStatus(ctx, id, MirrorError); err != nil {
		return err
	}
	slog.WarnContext(ctx, "Ledger entry marked with mirror error", "id", id)
	return nil
}

func (r *SQLiteRepository) setMirrorStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE ledger_entries SET mirror_status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("set mirror status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLedgerEntry(row rowScanner) (core.LedgerEntry, error) {
	var (
		e        core.LedgerEntry
		date     int64
		value    string
		category string
	)
	if err := row.Scan(&e.ID, &e.ItemID, &date, &value, &e.Label, &category); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.LedgerEntry{}, ErrNotFound
		}
		return core.LedgerEntry{}, err
	}

	amount, err := parseStoredAmount(value)
	if err != nil {
		return core.LedgerEntry{}, err
	}

	e.Date = millisToTime(date)
	e.Value = amount
	e.Category = core.LedgerCategory(category)
	return e, nil
}

// CreateRecurringRule inserts a new rule, assigning an ID when absent.
func (r *SQLiteRepository) CreateRecurringRule(ctx context.Context, rule core.RecurringRule) (core.RecurringRule, error) {
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO recurring_rules (
			id, source_type, source_item_id, target_account_id, amount, day_of_month,
			label, category, icon, color, is_active,
			start_date, end_date, last_processed_date, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.ID, string(rule.Source), rule.SourceRef, rule.ItemID, rule.Amount.String(), rule.DayOfMonth,
		rule.Label, rule.Category, rule.Icon, rule.Color, boolToInt(rule.Active),
		timeToMillis(rule.StartDate), timeToMillis(rule.EndDate), timeToMillis(rule.LastProcessed),
		timeToMillis(rule.CreatedAt), timeToMillis(rule.UpdatedAt))
	if err != nil {
		return core.RecurringRule{}, fmt.Errorf("insert recurring rule: %w", err)
	}

	slog.InfoContext(ctx, "Recurring rule created",
		"id", rule.ID,
		"label", rule.Label,
		"source", string(rule.Source))

	return rule, nil
}

func (r *SQLiteRepository) GetRecurringRule(ctx context.Context, id string) (core.RecurringRule, error) {
	row := r.db.QueryRowContext(ctx, selectRecurringRule+` WHERE id = ?`, id)
	rule, err := scanRecurringRule(row)
	if err != nil {
		return core.RecurringRule{}, fmt.Errorf("get recurring rule %s: %w", id, err)
	}
	return rule, nil
}

func (r *SQLiteRepository) ListRecurringRules(ctx context.Context) ([]core.RecurringRule, error) {
	return r.queryRecurringRules(ctx, selectRecurringRule+` ORDER BY created_at ASC`)
}

func (r *SQLiteRepository) ListActiveRecurringRules(ctx context.Context) ([]core.RecurringRule, error) {
	return r.queryRecurringRules(ctx, selectRecurringRule+` WHERE is_active = 1 ORDER BY created_at ASC`)
}

func (r *SQLiteRepository) queryRecurringRules(ctx context.Context, query string, args ...any) ([]core.RecurringRule, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recurring rules: %w", err)
	}
	defer rows.Close()

	var rules []core.RecurringRule
	for rows.Next() {
		rule, err := scanRecurringRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recurring rule: %w", err)
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// SaveRecurringRule updates every mutable field of an existing rule.
func (r *SQLiteRepository) SaveRecurringRule(ctx context.Context, rule core.RecurringRule) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE recurring_rules SET
			source_type = ?, source_item_id = ?, target_account_id = ?, amount = ?, day_of_month = ?,
			label = ?, category = ?, icon = ?, color = ?, is_active = ?,
			start_date = ?, end_date = ?, last_processed_date = ?, updated_at = ?
		WHERE id = ?`,
		string(rule.Source), rule.SourceRef, rule.ItemID, rule.Amount.String(), rule.DayOfMonth,
		rule.Label, rule.Category, rule.Icon, rule.Color, boolToInt(rule.Active),
		timeToMillis(rule.StartDate), timeToMillis(rule.EndDate), timeToMillis(rule.LastProcessed),
		timeToMillis(rule.UpdatedAt), rule.ID)
	if err != nil {
		return fmt.Errorf("update recurring rule: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteRecurringRule(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recurring_rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete recurring rule: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// RecurringRuleExistsForSource reports whether a rule already references the
// given source record. The migration runner uses it for idempotent re-runs.
func (r *SQLiteRepository) RecurringRuleExistsForSource(ctx context.Context, source core.RecurringSource, sourceRef string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM recurring_rules
		WHERE source_type = ? AND source_item_id = ?`,
		string(source), sourceRef).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check rule for source %s/%s: %w", source, sourceRef, err)
	}
	return count > 0, nil
}

const selectRecurringRule = `
	SELECT id, source_type, source_item_id, target_account_id, amount, day_of_month,
		label, category, icon, color, is_active,
		start_date, end_date, last_processed_date, created_at, updated_at
	FROM recurring_rules`

func scanRecurringRule(row rowScanner) (core.RecurringRule, error) {
	var (
		rule                                                    core.RecurringRule
		source, amount                                          string
		active                                                  int64
		startDate, endDate, lastProcessed, createdAt, updatedAt int64
	)
	err := row.Scan(&rule.ID, &source, &rule.SourceRef, &rule.ItemID, &amount, &rule.DayOfMonth,
		&rule.Label, &rule.Category, &rule.Icon, &rule.Color, &active,
		&startDate, &endDate, &lastProcessed, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.RecurringRule{}, ErrNotFound
		}
		return core.RecurringRule{}, err
	}

	value, err := parseStoredAmount(amount)
	if err != nil {
		return core.RecurringRule{}, err
	}

	rule.Source = core.RecurringSource(source)
	rule.Amount = value
	rule.Active = active != 0
	rule.StartDate = millisToTime(startDate)
	rule.EndDate = millisToTime(endDate)
	rule.LastProcessed = millisToTime(lastProcessed)
	rule.CreatedAt = millisToTime(createdAt)
	rule.UpdatedAt = millisToTime(updatedAt)
	return rule, nil
}

func (r *SQLiteRepository) CreateSubscription(ctx context.Context, s core.Subscription) (core.Subscription, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO subscriptions (id, item_id, name, amount, billing_day, icon, color, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.ItemID, s.Name, s.Amount.String(), s.BillingDay, s.Icon, s.Color, boolToInt(s.Active))
	if err != nil {
		return core.Subscription{}, fmt.Errorf("insert subscription: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) GetSubscription(ctx context.Context, id string) (core.Subscription, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, item_id, name, amount, billing_day, icon, color, is_active
		FROM subscriptions WHERE id = ?`, id)

	s, err := scanSubscription(row)
	if err != nil {
		return core.Subscription{}, fmt.Errorf("get subscription %s: %w", id, err)
	}
	return s, nil
}

func (r *SQLiteRepository) ListSubscriptions(ctx context.Context) ([]core.Subscription, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, item_id, name, amount, billing_day, icon, color, is_active
		FROM subscriptions ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []core.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

func (r *SQLiteRepository) UpdateSubscription(ctx context.Context, s core.Subscription) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions SET item_id = ?, name = ?, amount = ?, billing_day = ?, icon = ?, color = ?, is_active = ?
		WHERE id = ?`,
		s.ItemID, s.Name, s.Amount.String(), s.BillingDay, s.Icon, s.Color, boolToInt(s.Active), s.ID)
	if err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteSubscription(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanSubscription(row rowScanner) (core.Subscription, error) {
	var (
		s      core.Subscription
		amount string
		active int64
	)
	if err := row.Scan(&s.ID, &s.ItemID, &s.Name, &amount, &s.BillingDay, &s.Icon, &s.Color, &active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Subscription{}, ErrNotFound
		}
		return core.Subscription{}, err
	}

	value, err := parseStoredAmount(amount)
	if err != nil {
		return core.Subscription{}, err
	}

	s.Amount = value
	s.Active = active != 0
	return s, nil
}
