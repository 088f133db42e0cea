package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/PierreBrethes/life-map-back/internal/core"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()

	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "lifemap.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedAccount(t *testing.T, repo *SQLiteRepository) core.LifeItem {
	t.Helper()

	item, err := repo.CreateLifeItem(context.Background(), core.LifeItem{
		Name:        "Checking account",
		Type:        core.ItemTypeCurrency,
		Status:      core.ItemStatusOK,
		AssetType:   "bank_account",
		LastUpdated: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateLifeItem() error = %v", err)
	}
	return item
}

func TestRecurringRuleRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	account := seedAccount(t, repo)

	rule := core.RecurringRule{
		Source:     core.SourceRent,
		ItemID:     account.ID,
		Amount:     decimal.RequireFromString("-850.00"),
		DayOfMonth: 5,
		Label:      "Apartment rent",
		Category:   "expense",
		Active:     true,
		StartDate:  time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}

	created, err := repo.CreateRecurringRule(ctx, rule)
	if err != nil {
		t.Fatalf("CreateRecurringRule() error = %v", err)
	}
	if created.ID == "" {
		t.Fatal("CreateRecurringRule() did not assign an ID")
	}

	got, err := repo.GetRecurringRule(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetRecurringRule() error = %v", err)
	}
	if got.Label != rule.Label || got.DayOfMonth != rule.DayOfMonth || got.Source != rule.Source {
		t.Errorf("GetRecurringRule() = %+v, want fields of %+v", got, rule)
	}
	if !got.Amount.Equal(rule.Amount) {
		t.Errorf("Amount = %s, want %s", got.Amount, rule.Amount)
	}
	if !got.LastProcessed.IsZero() {
		t.Errorf("LastProcessed = %v, want zero for a fresh rule", got.LastProcessed)
	}

	// Advance the watermark and read it back.
	got.LastProcessed = time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC)
	got.UpdatedAt = time.Now().UTC()
	if err := repo.SaveRecurringRule(ctx, got); err != nil {
		t.Fatalf("SaveRecurringRule() error = %v", err)
	}
	reloaded, err := repo.GetRecurringRule(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetRecurringRule() after save error = %v", err)
	}
	if !reloaded.LastProcessed.Equal(got.LastProcessed) {
		t.Errorf("LastProcessed = %v, want %v", reloaded.LastProcessed, got.LastProcessed)
	}
}

func TestListActiveRecurringRulesFiltersInactive(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	account := seedAccount(t, repo)

	for _, active := range []bool{true, false, true} {
		rule := core.RecurringRule{
			Source:     core.SourceCustom,
			ItemID:     account.ID,
			Amount:     decimal.NewFromInt(-10),
			DayOfMonth: 1,
			Label:      "Rule",
			Category:   "expense",
			Active:     active,
			StartDate:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		}
		if _, err := repo.CreateRecurringRule(ctx, rule); err != nil {
			t.Fatalf("CreateRecurringRule() error = %v", err)
		}
	}

	active, err := repo.ListActiveRecurringRules(ctx)
	if err != nil {
		t.Fatalf("ListActiveRecurringRules() error = %v", err)
	}
	if len(active) != 2 {
		t.Errorf("ListActiveRecurringRules() returned %d rules, want 2", len(active))
	}

	all, err := repo.ListRecurringRules(ctx)
	if err != nil {
		t.Fatalf("ListRecurringRules() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("ListRecurringRules() returned %d rules, want 3", len(all))
	}
}

func TestRecurringRuleExistsForSource(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	account := seedAccount(t, repo)

	exists, err := repo.RecurringRuleExistsForSource(ctx, core.SourceSubscription, "sub-1")
	if err != nil {
		t.Fatalf("RecurringRuleExistsForSource() error = %v", err)
	}
	if exists {
		t.Error("RecurringRuleExistsForSource() = true before any rule exists")
	}

	_, err = repo.CreateRecurringRule(ctx, core.RecurringRule{
		Source:     core.SourceSubscription,
		SourceRef:  "sub-1",
		ItemID:     account.ID,
		Amount:     decimal.NewFromFloat(-15.99),
		DayOfMonth: 3,
		Label:      "Netflix",
		Category:   "expense",
		Active:     true,
		StartDate:  time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateRecurringRule() error = %v", err)
	}

	exists, err = repo.RecurringRuleExistsForSource(ctx, core.SourceSubscription, "sub-1")
	if err != nil {
		t.Fatalf("RecurringRuleExistsForSource() error = %v", err)
	}
	if !exists {
		t.Error("RecurringRuleExistsForSource() = false after creating the rule")
	}
}

func TestLedgerEntryMirrorLifecycle(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	account := seedAccount(t, repo)

	entry, err := repo.AppendLedgerEntry(ctx, core.LedgerEntry{
		ItemID:   account.ID,
		Date:     time.Date(2025, 11, 15, 0, 0, 0, 0, time.UTC),
		Value:    decimal.RequireFromString("-42.10"),
		Label:    "Groceries",
		Category: core.LedgerExpense,
	})
	if err != nil {
		t.Fatalf("AppendLedgerEntry() error = %v", err)
	}

	pending, err := repo.GetPendingMirrorEntries(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingMirrorEntries() error = %v", err)
	}
	if len(pending) != 1 || pending[0].ID != entry.ID {
		t.Fatalf("GetPendingMirrorEntries() = %v, want the new entry", pending)
	}

	if err := repo.MarkMirrored(ctx, entry.ID); err != nil {
		t.Fatalf("MarkMirrored() error = %v", err)
	}

	pending, err = repo.GetPendingMirrorEntries(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingMirrorEntries() after mirror error = %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("GetPendingMirrorEntries() = %v, want empty after mirroring", pending)
	}

	// An errored entry goes back into the pending set.
	if err := repo.MarkMirrorError(ctx, entry.ID); err != nil {
		t.Fatalf("MarkMirrorError() error = %v", err)
	}
	pending, err = repo.GetPendingMirrorEntries(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingMirrorEntries() after error flag error = %v", err)
	}
	if len(pending) != 1 {
		t.Errorf("GetPendingMirrorEntries() = %v, want errored entry back", pending)
	}
}

func TestListLedgerEntriesDateWindow(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	account := seedAccount(t, repo)

	for _, day := range []int{1, 10, 20} {
		_, err := repo.AppendLedgerEntry(ctx, core.LedgerEntry{
			ItemID:   account.ID,
			Date:     time.Date(2025, 11, day, 0, 0, 0, 0, time.UTC),
			Value:    decimal.NewFromInt(-5),
			Label:    "Coffee",
			Category: core.LedgerExpense,
		})
		if err != nil {
			t.Fatalf("AppendLedgerEntry() error = %v", err)
		}
	}

	entries, err := repo.ListLedgerEntries(ctx, account.ID,
		time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ListLedgerEntries() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("ListLedgerEntries() returned %d entries, want 1", len(entries))
	}
	if entries[0].Date.Day() != 10 {
		t.Errorf("entry date = %v, want the 10th", entries[0].Date)
	}
}

func TestSubscriptionCRUD(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	account := seedAccount(t, repo)

	sub, err := repo.CreateSubscription(ctx, core.Subscription{
		ItemID:     account.ID,
		Name:       "Netflix",
		Amount:     decimal.NewFromFloat(15.99),
		BillingDay: 3,
		Icon:       "tv",
		Active:     true,
	})
	if err != nil {
		t.Fatalf("CreateSubscription() error = %v", err)
	}

	sub.Amount = decimal.NewFromFloat(17.99)
	if err := repo.UpdateSubscription(ctx, sub); err != nil {
		t.Fatalf("UpdateSubscription() error = %v", err)
	}

	got, err := repo.GetSubscription(ctx, sub.ID)
	if err != nil {
		t.Fatalf("GetSubscription() error = %v", err)
	}
	if !got.Amount.Equal(decimal.NewFromFloat(17.99)) {
		t.Errorf("Amount = %s, want 17.99", got.Amount)
	}

	if err := repo.DeleteSubscription(ctx, sub.ID); err != nil {
		t.Fatalf("DeleteSubscription() error = %v", err)
	}
	if _, err := repo.GetSubscription(ctx, sub.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSubscription() after delete error = %v, want ErrNotFound", err)
	}
}

func TestSocialEventContactIDsRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	account := seedAccount(t, repo)

	event, err := repo.CreateSocialEvent(ctx, core.SocialEvent{
		ItemID:     account.ID,
		Title:      "Housewarming",
		Date:       time.Date(2025, 12, 20, 19, 0, 0, 0, time.UTC),
		Type:       core.EventParty,
		ContactIDs: []string{"c1", "c2"},
	})
	if err != nil {
		t.Fatalf("CreateSocialEvent() error = %v", err)
	}

	got, err := repo.GetSocialEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetSocialEvent() error = %v", err)
	}
	if len(got.ContactIDs) != 2 || got.ContactIDs[0] != "c1" || got.ContactIDs[1] != "c2" {
		t.Errorf("ContactIDs = %v, want [c1 c2]", got.ContactIDs)
	}
}

func TestBodyMetricRoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	account := seedAccount(t, repo)

	height := 182.0
	metric, err := repo.CreateBodyMetric(ctx, core.BodyMetric{
		ItemID: account.ID,
		Date:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Weight: 78.4,
		Height: &height,
		Note:   "morning",
	})
	if err != nil {
		t.Fatalf("CreateBodyMetric() error = %v", err)
	}

	got, err := repo.GetBodyMetric(ctx, metric.ID)
	if err != nil {
		t.Fatalf("GetBodyMetric() error = %v", err)
	}
	if got.Weight != 78.4 {
		t.Errorf("Weight = %v, want 78.4", got.Weight)
	}
	if got.Height == nil || *got.Height != 182.0 {
		t.Errorf("Height = %v, want 182", got.Height)
	}
	if got.BodyFat != nil {
		t.Errorf("BodyFat = %v, want nil", got.BodyFat)
	}
	if !got.Date.Equal(metric.Date) {
		t.Errorf("Date = %v, want %v", got.Date, metric.Date)
	}

	got.Weight = 77.9
	if err := repo.UpdateBodyMetric(ctx, got); err != nil {
		t.Fatalf("UpdateBodyMetric() error = %v", err)
	}

	metrics, err := repo.ListBodyMetrics(ctx, account.ID)
	if err != nil {
		t.Fatalf("ListBodyMetrics() error = %v", err)
	}
	if len(metrics) != 1 || metrics[0].Weight != 77.9 {
		t.Errorf("ListBodyMetrics() = %v, want one metric at 77.9", metrics)
	}

	if err := repo.DeleteBodyMetric(ctx, metric.ID); err != nil {
		t.Fatalf("DeleteBodyMetric() error = %v", err)
	}
	if _, err := repo.GetBodyMetric(ctx, metric.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetBodyMetric() after delete error = %v, want ErrNotFound", err)
	}
}

func TestHealthAppointmentCRUD(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	account := seedAccount(t, repo)

	appt, err := repo.CreateHealthAppointment(ctx, core.HealthAppointment{
		ItemID:     account.ID,
		Title:      "Annual checkup",
		Date:       time.Date(2025, 9, 10, 9, 30, 0, 0, time.UTC),
		Type:       core.AppointmentCheckup,
		DoctorName: "Dr. Martin",
	})
	if err != nil {
		t.Fatalf("CreateHealthAppointment() error = %v", err)
	}

	appt.Completed = true
	if err := repo.UpdateHealthAppointment(ctx, appt); err != nil {
		t.Fatalf("UpdateHealthAppointment() error = %v", err)
	}

	got, err := repo.GetHealthAppointment(ctx, appt.ID)
	if err != nil {
		t.Fatalf("GetHealthAppointment() error = %v", err)
	}
	if !got.Completed {
		t.Error("Completed = false after update, want true")
	}
	if got.Type != core.AppointmentCheckup {
		t.Errorf("Type = %s, want checkup", got.Type)
	}

	if err := repo.DeleteHealthAppointment(ctx, appt.ID); err != nil {
		t.Fatalf("DeleteHealthAppointment() error = %v", err)
	}
	if _, err := repo.GetHealthAppointment(ctx, appt.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetHealthAppointment() after delete error = %v, want ErrNotFound", err)
	}
}

func TestDependencyCRUD(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	from := seedAccount(t, repo)
	to := seedAccount(t, repo)

	dep, err := repo.CreateDependency(ctx, core.Dependency{
		FromCategoryID: "cat-vehicles",
		FromItemID:     from.ID,
		ToCategoryID:   "cat-insurance",
		ToItemID:       to.ID,
	})
	if err != nil {
		t.Fatalf("CreateDependency() error = %v", err)
	}

	deps, err := repo.ListDependencies(ctx, from.ID)
	if err != nil {
		t.Fatalf("ListDependencies() error = %v", err)
	}
	if len(deps) != 1 || deps[0].ToItemID != to.ID {
		t.Errorf("ListDependencies() = %v, want one edge to %s", deps, to.ID)
	}

	deps, err = repo.ListDependencies(ctx, to.ID)
	if err != nil {
		t.Fatalf("ListDependencies() error = %v", err)
	}
	if len(deps) != 0 {
		t.Errorf("ListDependencies(to) = %v, want none", deps)
	}

	dep.ToCategoryID = "cat-finance"
	if err := repo.UpdateDependency(ctx, dep); err != nil {
		t.Fatalf("UpdateDependency() error = %v", err)
	}
	got, err := repo.GetDependency(ctx, dep.ID)
	if err != nil {
		t.Fatalf("GetDependency() error = %v", err)
	}
	if got.ToCategoryID != "cat-finance" {
		t.Errorf("ToCategoryID = %s, want cat-finance", got.ToCategoryID)
	}

	if err := repo.DeleteDependency(ctx, dep.ID); err != nil {
		t.Fatalf("DeleteDependency() error = %v", err)
	}
	if _, err := repo.GetDependency(ctx, dep.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetDependency() after delete error = %v, want ErrNotFound", err)
	}
}
