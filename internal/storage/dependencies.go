package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/PierreBrethes/life-map-back/internal/core"
)

const selectDependency = `
	SELECT id, from_category_id, from_item_id, to_category_id, to_item_id
	FROM dependencies`

func (r *SQLiteRepository) CreateDependency(ctx context.Context, d core.Dependency) (core.Dependency, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO dependencies (id, from_category_id, from_item_id, to_category_id, to_item_id)
		VALUES (?, ?, ?, ?, ?)`,
		d.ID, d.FromCategoryID, d.FromItemID, d.ToCategoryID, d.ToItemID)
	if err != nil {
		return core.Dependency{}, fmt.Errorf("insert dependency: %w", err)
	}
	return d, nil
}

func (r *SQLiteRepository) GetDependency(ctx context.Context, id string) (core.Dependency, error) {
	row := r.db.QueryRowContext(ctx, selectDependency+` WHERE id = ?`, id)
	d, err := scanDependency(row)
	if err != nil {
		return core.Dependency{}, fmt.Errorf("get dependency %s: %w", id, err)
	}
	return d, nil
}

// ListDependencies returns the edges, optionally narrowed to those leaving
// one item.
func (r *SQLiteRepository) ListDependencies(ctx context.Context, fromItemID string) ([]core.Dependency, error) {
	query := selectDependency
	var args []any
	if fromItemID != "" {
		query += ` WHERE from_item_id = ?`
		args = append(args, fromItemID)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list dependencies: %w", err)
	}
	defer rows.Close()

	var deps []core.Dependency
	for rows.Next() {
		d, err := scanDependency(rows)
		if err != nil {
			return nil, fmt.Errorf("scan dependency: %w", err)
		}
		deps = append(deps, d)
	}
	return deps, rows.Err()
}

func (r *SQLiteRepository) UpdateDependency(ctx context.Context, d core.Dependency) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE dependencies SET from_category_id = ?, from_item_id = ?, to_category_id = ?, to_item_id = ?
		WHERE id = ?`,
		d.FromCategoryID, d.FromItemID, d.ToCategoryID, d.ToItemID, d.ID)
	if err != nil {
		return fmt.Errorf("update dependency: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteDependency(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM dependencies WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete dependency: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanDependency(row rowScanner) (core.Dependency, error) {
	var d core.Dependency
	err := row.Scan(&d.ID, &d.FromCategoryID, &d.FromItemID, &d.ToCategoryID, &d.ToItemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Dependency{}, ErrNotFound
		}
		return core.Dependency{}, err
	}
	return d, nil
}
