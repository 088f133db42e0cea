package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/PierreBrethes/life-map-back/internal/core"
)

const selectContact = `
	SELECT id, item_id, name, birthday, last_contact_date, contact_frequency_days, avatar, notes
	FROM contacts`

func (r *SQLiteRepository) CreateContact(ctx context.Context, c core.Contact) (core.Contact, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO contacts (id, item_id, name, birthday, last_contact_date, contact_frequency_days, avatar, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.ItemID, c.Name, timeToMillis(c.Birthday), timeToMillis(c.LastContactDate),
		c.ContactFrequencyDays, c.Avatar, c.Notes)
	if err != nil {
		return core.Contact{}, fmt.Errorf("insert contact: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) GetContact(ctx context.Context, id string) (core.Contact, error) {
	row := r.db.QueryRowContext(ctx, selectContact+` WHERE id = ?`, id)
	c, err := scanContact(row)
	if err != nil {
		return core.Contact{}, fmt.Errorf("get contact %s: %w", id, err)
	}
	return c, nil
}

func (r *SQLiteRepository) ListContacts(ctx context.Context, itemID string) ([]core.Contact, error) {
	query := selectContact
	var args []any
	if itemID != "" {
		query += ` WHERE item_id = ?`
		args = append(args, itemID)
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []core.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func (r *SQLiteRepository) UpdateContact(ctx context.Context, c core.Contact) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE contacts SET item_id = ?, name = ?, birthday = ?, last_contact_date = ?,
			contact_frequency_days = ?, avatar = ?, notes = ?
		WHERE id = ?`,
		c.ItemID, c.Name, timeToMillis(c.Birthday), timeToMillis(c.LastContactDate),
		c.ContactFrequencyDays, c.Avatar, c.Notes, c.ID)
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteContact(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanContact(row rowScanner) (core.Contact, error) {
	var (
		c                     core.Contact
		birthday, lastContact int64
	)
	err := row.Scan(&c.ID, &c.ItemID, &c.Name, &birthday, &lastContact,
		&c.ContactFrequencyDays, &c.Avatar, &c.Notes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Contact{}, ErrNotFound
		}
		return core.Contact{}, err
	}

	c.Birthday = millisToTime(birthday)
	c.LastContactDate = millisToTime(lastContact)
	return c, nil
}

const selectSocialEvent = `
	SELECT id, item_id, title, date, location, type, contact_ids
	FROM social_events`

func (r *SQLiteRepository) CreateSocialEvent(ctx context.Context, e core.SocialEvent) (core.SocialEvent, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	contactIDs, err := encodeContactIDs(e.ContactIDs)
	if err != nil {
		return core.SocialEvent{}, err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO social_events (id, item_id, title, date, location, type, contact_ids)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.ItemID, e.Title, timeToMillis(e.Date), e.Location, string(e.Type), contactIDs)
	if err != nil {
		return core.SocialEvent{}, fmt.Errorf("insert social event: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) GetSocialEvent(ctx context.Context, id string) (core.SocialEvent, error) {
	row := r.db.QueryRowContext(ctx, selectSocialEvent+` WHERE id = ?`, id)
	e, err := scanSocialEvent(row)
	if err != nil {
		return core.SocialEvent{}, fmt.Errorf("get social event %s: %w", id, err)
	}
	return e, nil
}

func (r *SQLiteRepository) ListSocialEvents(ctx context.Context, itemID string) ([]core.SocialEvent, error) {
	query := selectSocialEvent
	var args []any
	if itemID != "" {
		query += ` WHERE item_id = ?`
		args = append(args, itemID)
	}
	query += ` ORDER BY date ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list social events: %w", err)
	}
	defer rows.Close()

	var events []core.SocialEvent
	for rows.Next() {
		e, err := scanSocialEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan social event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *SQLiteRepository) UpdateSocialEvent(ctx context.Context, e core.SocialEvent) error {
	contactIDs, err := encodeContactIDs(e.ContactIDs)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE social_events SET item_id = ?, title = ?, date = ?, location = ?, type = ?, contact_ids = ?
		WHERE id = ?`,
		e.ItemID, e.Title, timeToMillis(e.Date), e.Location, string(e.Type), contactIDs, e.ID)
	if err != nil {
		return fmt.Errorf("update social event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteSocialEvent(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM social_events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete social event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Contact references are stored as a JSON array; SQLite has no native list
// column and events rarely reference more than a handful of people.
func encodeContactIDs(ids []string) (string, error) {
	if len(ids) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("encode contact ids: %w", err)
	}
	return string(data), nil
}

func scanSocialEvent(row rowScanner) (core.SocialEvent, error) {
	var (
		e          core.SocialEvent
		date       int64
		eventType  string
		contactIDs string
	)
	err := row.Scan(&e.ID, &e.ItemID, &e.Title, &date, &e.Location, &eventType, &contactIDs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.SocialEvent{}, ErrNotFound
		}
		return core.SocialEvent{}, err
	}

	e.Date = millisToTime(date)
	e.Type = core.SocialEventType(eventType)
	if contactIDs != "" && contactIDs != "[]" {
		if err := json.Unmarshal([]byte(contactIDs), &e.ContactIDs); err != nil {
			return core.SocialEvent{}, fmt.Errorf("decode contact ids: %w", err)
		}
	}
	return e, nil
}

const selectAlert = `
	SELECT id, item_id, name, severity, due_date, is_active, created_at
	FROM alerts`

func (r *SQLiteRepository) CreateAlert(ctx context.Context, a core.Alert) (core.Alert, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO alerts (id, item_id, name, severity, due_date, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.ItemID, a.Name, string(a.Severity), timeToMillis(a.DueDate),
		boolToInt(a.Active), timeToMillis(a.CreatedAt))
	if err != nil {
		return core.Alert{}, fmt.Errorf("insert alert: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) GetAlert(ctx context.Context, id string) (core.Alert, error) {
	row := r.db.QueryRowContext(ctx, selectAlert+` WHERE id = ?`, id)
	a, err := scanAlert(row)
	if err != nil {
		return core.Alert{}, fmt.Errorf("get alert %s: %w", id, err)
	}
	return a, nil
}

// ListAlerts returns alerts, optionally narrowed to one item and to active
// ones only.
func (r *SQLiteRepository) ListAlerts(ctx context.Context, itemID string, activeOnly bool) ([]core.Alert, error) {
	query := selectAlert + ` WHERE 1 = 1`
	var args []any
	if itemID != "" {
		query += ` AND item_id = ?`
		args = append(args, itemID)
	}
	if activeOnly {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY due_date ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []core.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

func (r *SQLiteRepository) UpdateAlert(ctx context.Context, a core.Alert) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE alerts SET item_id = ?, name = ?, severity = ?, due_date = ?, is_active = ?
		WHERE id = ?`,
		a.ItemID, a.Name, string(a.Severity), timeToMillis(a.DueDate), boolToInt(a.Active), a.ID)
	if err != nil {
		return fmt.Errorf("update alert: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteAlert(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM alerts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete alert: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAlert(row rowScanner) (core.Alert, error) {
	var (
		a                core.Alert
		severity         string
		dueDate, created int64
		active           int64
	)
	err := row.Scan(&a.ID, &a.ItemID, &a.Name, &severity, &dueDate, &active, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Alert{}, ErrNotFound
		}
		return core.Alert{}, err
	}

	a.Severity = core.AlertSeverity(severity)
	a.DueDate = millisToTime(dueDate)
	a.Active = active != 0
	a.CreatedAt = millisToTime(created)
	return a, nil
}
