package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/PierreBrethes/life-map-back/internal/core"
)

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, color, icon) VALUES (?, ?, ?, ?)`,
		c.ID, c.Name, c.Color, c.Icon)
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id string) (core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, color, icon FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Color, &c.Icon)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Category{}, ErrNotFound
		}
		return core.Category{}, fmt.Errorf("get category %s: %w", id, err)
	}
	return c, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, color, icon FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.Icon); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE categories SET name = ?, color = ?, icon = ? WHERE id = ?`,
		c.Name, c.Color, c.Icon, c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

const selectLifeItem = `
	SELECT id, category_id, name, value, type, status, asset_type, last_updated,
		notification_dismissed, notification_label, initial_balance,
		rent_amount, rent_due_day, address, city, postal_code, mileage
	FROM life_items`

func (r *SQLiteRepository) CreateLifeItem(ctx context.Context, item core.LifeItem) (core.LifeItem, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO life_items (
			id, category_id, name, value, type, status, asset_type, last_updated,
			notification_dismissed, notification_label, initial_balance,
			rent_amount, rent_due_day, address, city, postal_code, mileage
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.CategoryID, item.Name, item.Value, string(item.Type), string(item.Status),
		item.AssetType, timeToMillis(item.LastUpdated),
		boolToInt(item.NotificationDismissed), item.NotificationLabel, item.InitialBalance,
		item.RentAmount, item.RentDueDay, item.Address, item.City, item.PostalCode, item.Mileage)
	if err != nil {
		return core.LifeItem{}, fmt.Errorf("insert life item: %w", err)
	}
	return item, nil
}

func (r *SQLiteRepository) GetLifeItem(ctx context.Context, id string) (core.LifeItem, error) {
	row := r.db.QueryRowContext(ctx, selectLifeItem+` WHERE id = ?`, id)
	item, err := scanLifeItem(row)
	if err != nil {
		return core.LifeItem{}, fmt.Errorf("get life item %s: %w", id, err)
	}
	return item, nil
}

// ListLifeItems returns every item, or only one category's items when
// categoryID is non-empty.
func (r *SQLiteRepository) ListLifeItems(ctx context.Context, categoryID string) ([]core.LifeItem, error) {
	query := selectLifeItem
	var args []any
	if categoryID != "" {
		query += ` WHERE category_id = ?`
		args = append(args, categoryID)
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list life items: %w", err)
	}
	defer rows.Close()

	var items []core.LifeItem
	for rows.Next() {
		item, err := scanLifeItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan life item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *SQLiteRepository) UpdateLifeItem(ctx context.Context, item core.LifeItem) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE life_items SET
			category_id = ?, name = ?, value = ?, type = ?, status = ?, asset_type = ?, last_updated = ?,
			notification_dismissed = ?, notification_label = ?, initial_balance = ?,
			rent_amount = ?, rent_due_day = ?, address = ?, city = ?, postal_code = ?, mileage = ?
		WHERE id = ?`,
		item.CategoryID, item.Name, item.Value, string(item.Type), string(item.Status),
		item.AssetType, timeToMillis(item.LastUpdated),
		boolToInt(item.NotificationDismissed), item.NotificationLabel, item.InitialBalance,
		item.RentAmount, item.RentDueDay, item.Address, item.City, item.PostalCode, item.Mileage,
		item.ID)
	if err != nil {
		return fmt.Errorf("update life item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteLifeItem(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM life_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete life item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanLifeItem(row rowScanner) (core.LifeItem, error) {
	var (
		item             core.LifeItem
		itemType, status string
		lastUpdated      int64
		dismissed        int64
	)
	err := row.Scan(&item.ID, &item.CategoryID, &item.Name, &item.Value, &itemType, &status,
		&item.AssetType, &lastUpdated,
		&dismissed, &item.NotificationLabel, &item.InitialBalance,
		&item.RentAmount, &item.RentDueDay, &item.Address, &item.City, &item.PostalCode, &item.Mileage)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.LifeItem{}, ErrNotFound
		}
		return core.LifeItem{}, err
	}

	item.Type = core.ItemType(itemType)
	item.Status = core.ItemStatus(status)
	item.LastUpdated = millisToTime(lastUpdated)
	item.NotificationDismissed = dismissed != 0
	return item, nil
}

const selectValuation = `
	SELECT id, item_id, estimated_value, purchase_price, purchase_date,
		loan_amount, loan_monthly_payment, loan_interest_rate, loan_start_date,
		loan_duration_months, capital_repaid
	FROM property_valuations`

// UpsertPropertyValuation writes the valuation of a property item. Each item
// holds at most one valuation row.
func (r *SQLiteRepository) UpsertPropertyValuation(ctx context.Context, v core.PropertyValuation) (core.PropertyValuation, error) {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO property_valuations (
			id, item_id, estimated_value, purchase_price, purchase_date,
			loan_amount, loan_monthly_payment, loan_interest_rate, loan_start_date,
			loan_duration_months, capital_repaid
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (item_id) DO UPDATE SET
			estimated_value = excluded.estimated_value,
			purchase_price = excluded.purchase_price,
			purchase_date = excluded.purchase_date,
			loan_amount = excluded.loan_amount,
			loan_monthly_payment = excluded.loan_monthly_payment,
			loan_interest_rate = excluded.loan_interest_rate,
			loan_start_date = excluded.loan_start_date,
			loan_duration_months = excluded.loan_duration_months,
			capital_repaid = excluded.capital_repaid`,
		v.ID, v.ItemID, v.EstimatedValue, v.PurchasePrice, timeToMillis(v.PurchaseDate),
		v.LoanAmount, v.LoanMonthlyPayment, v.LoanInterestRate, timeToMillis(v.LoanStartDate),
		v.LoanDurationMonths, v.CapitalRepaid)
	if err != nil {
		return core.PropertyValuation{}, fmt.Errorf("upsert property valuation: %w", err)
	}
	return v, nil
}

func (r *SQLiteRepository) GetPropertyValuation(ctx context.Context, itemID string) (core.PropertyValuation, error) {
	row := r.db.QueryRowContext(ctx, selectValuation+` WHERE item_id = ?`, itemID)
	v, err := scanValuation(row)
	if err != nil {
		return core.PropertyValuation{}, fmt.Errorf("get property valuation for item %s: %w", itemID, err)
	}
	return v, nil
}

func (r *SQLiteRepository) DeletePropertyValuation(ctx context.Context, itemID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM property_valuations WHERE item_id = ?`, itemID)
	if err != nil {
		return fmt.Errorf("delete property valuation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanValuation(row rowScanner) (core.PropertyValuation, error) {
	var (
		v                       core.PropertyValuation
		purchaseDate, loanStart int64
	)
	err := row.Scan(&v.ID, &v.ItemID, &v.EstimatedValue, &v.PurchasePrice, &purchaseDate,
		&v.LoanAmount, &v.LoanMonthlyPayment, &v.LoanInterestRate, &loanStart,
		&v.LoanDurationMonths, &v.CapitalRepaid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.PropertyValuation{}, ErrNotFound
		}
		return core.PropertyValuation{}, err
	}

	v.PurchaseDate = millisToTime(purchaseDate)
	v.LoanStartDate = millisToTime(loanStart)
	return v, nil
}
