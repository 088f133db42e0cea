package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/PierreBrethes/life-map-back/internal/core"
)

const selectBodyMetric = `
	SELECT id, item_id, date, weight, height, body_fat, muscle_mass, note
	FROM body_metrics`

func (r *SQLiteRepository) CreateBodyMetric(ctx context.Context, m core.BodyMetric) (core.BodyMetric, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO body_metrics (id, item_id, date, weight, height, body_fat, muscle_mass, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.ItemID, timeToMillis(m.Date), m.Weight, m.Height, m.BodyFat, m.MuscleMass, m.Note)
	if err != nil {
		return core.BodyMetric{}, fmt.Errorf("insert body metric: %w", err)
	}
	return m, nil
}

func (r *SQLiteRepository) GetBodyMetric(ctx context.Context, id string) (core.BodyMetric, error) {
	row := r.db.QueryRowContext(ctx, selectBodyMetric+` WHERE id = ?`, id)
	m, err := scanBodyMetric(row)
	if err != nil {
		return core.BodyMetric{}, fmt.Errorf("get body metric %s: %w", id, err)
	}
	return m, nil
}

func (r *SQLiteRepository) ListBodyMetrics(ctx context.Context, itemID string) ([]core.BodyMetric, error) {
	query := selectBodyMetric
	var args []any
	if itemID != "" {
		query += ` WHERE item_id = ?`
		args = append(args, itemID)
	}
	query += ` ORDER BY date ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list body metrics: %w", err)
	}
	defer rows.Close()

	var metrics []core.BodyMetric
	for rows.Next() {
		m, err := scanBodyMetric(rows)
		if err != nil {
			return nil, fmt.Errorf("scan body metric: %w", err)
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}

func (r *SQLiteRepository) UpdateBodyMetric(ctx context.Context, m core.BodyMetric) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE body_metrics SET item_id = ?, date = ?, weight = ?, height = ?,
			body_fat = ?, muscle_mass = ?, note = ?
		WHERE id = ?`,
		m.ItemID, timeToMillis(m.Date), m.Weight, m.Height, m.BodyFat, m.MuscleMass, m.Note, m.ID)
	if err != nil {
		return fmt.Errorf("update body metric: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteBodyMetric(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM body_metrics WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete body metric: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanBodyMetric(row rowScanner) (core.BodyMetric, error) {
	var (
		m    core.BodyMetric
		date int64
	)
	err := row.Scan(&m.ID, &m.ItemID, &date, &m.Weight, &m.Height, &m.BodyFat, &m.MuscleMass, &m.Note)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.BodyMetric{}, ErrNotFound
		}
		return core.BodyMetric{}, err
	}

	m.Date = millisToTime(date)
	return m, nil
}

const selectHealthAppointment = `
	SELECT id, item_id, title, date, type, doctor_name, location, notes, is_completed
	FROM health_appointments`

func (r *SQLiteRepository) CreateHealthAppointment(ctx context.Context, a core.HealthAppointment) (core.HealthAppointment, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO health_appointments (id, item_id, title, date, type, doctor_name, location, notes, is_completed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.ItemID, a.Title, timeToMillis(a.Date), string(a.Type),
		a.DoctorName, a.Location, a.Notes, boolToInt(a.Completed))
	if err != nil {
		return core.HealthAppointment{}, fmt.Errorf("insert health appointment: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) GetHealthAppointment(ctx context.Context, id string) (core.HealthAppointment, error) {
	row := r.db.QueryRowContext(ctx, selectHealthAppointment+` WHERE id = ?`, id)
	a, err := scanHealthAppointment(row)
	if err != nil {
		return core.HealthAppointment{}, fmt.Errorf("get health appointment %s: %w", id, err)
	}
	return a, nil
}

func (r *SQLiteRepository) ListHealthAppointments(ctx context.Context, itemID string) ([]core.HealthAppointment, error) {
	query := selectHealthAppointment
	var args []any
	if itemID != "" {
		query += ` WHERE item_id = ?`
		args = append(args, itemID)
	}
	query += ` ORDER BY date ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list health appointments: %w", err)
	}
	defer rows.Close()

	var appointments []core.HealthAppointment
	for rows.Next() {
		a, err := scanHealthAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan health appointment: %w", err)
		}
		appointments = append(appointments, a)
	}
	return appointments, rows.Err()
}

func (r *SQLiteRepository) UpdateHealthAppointment(ctx context.Context, a core.HealthAppointment) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE health_appointments SET item_id = ?, title = ?, date = ?, type = ?,
			doctor_name = ?, location = ?, notes = ?, is_completed = ?
		WHERE id = ?`,
		a.ItemID, a.Title, timeToMillis(a.Date), string(a.Type),
		a.DoctorName, a.Location, a.Notes, boolToInt(a.Completed), a.ID)
	if err != nil {
		return fmt.Errorf("update health appointment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteHealthAppointment(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM health_appointments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete health appointment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanHealthAppointment(row rowScanner) (core.HealthAppointment, error) {
	var (
		a               core.HealthAppointment
		date, completed int64
		kind            string
	)
	err := row.Scan(&a.ID, &a.ItemID, &a.Title, &date, &kind,
		&a.DoctorName, &a.Location, &a.Notes, &completed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.HealthAppointment{}, ErrNotFound
		}
		return core.HealthAppointment{}, err
	}

	a.Date = millisToTime(date)
	a.Type = core.HealthAppointmentType(kind)
	a.Completed = completed != 0
	return a, nil
}
