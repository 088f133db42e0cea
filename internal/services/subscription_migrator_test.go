package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/PierreBrethes/life-map-back/internal/core"
)

type fakeSubStore struct {
	subs    []core.Subscription
	listErr error
}

func (s *fakeSubStore) ListSubscriptions(ctx context.Context) ([]core.Subscription, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.subs, nil
}

type fakeMigrationRuleStore struct {
	created   []core.RecurringRule
	failNames map[string]bool
}

func (s *fakeMigrationRuleStore) RecurringRuleExistsForSource(ctx context.Context, source core.RecurringSource, sourceRef string) (bool, error) {
	for _, r := range s.created {
		if r.Source == source && r.SourceRef == sourceRef {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeMigrationRuleStore) CreateRecurringRule(ctx context.Context, rule core.RecurringRule) (core.RecurringRule, error) {
	if s.failNames[rule.Label] {
		return core.RecurringRule{}, errors.New("insert failed")
	}
	rule.ID = rule.SourceRef + "-rule"
	s.created = append(s.created, rule)
	return rule, nil
}

func (s *fakeMigrationRuleStore) bySourceRef(ref string) core.RecurringRule {
	for _, r := range s.created {
		if r.SourceRef == ref {
			return r
		}
	}
	return core.RecurringRule{}
}

func subscription(id, name string, amount float64, billingDay int) core.Subscription {
	return core.Subscription{
		ID:         id,
		ItemID:     "acct-1",
		Name:       name,
		Amount:     decimal.NewFromFloat(amount),
		BillingDay: billingDay,
		Icon:       "tv",
		Color:      "#e50914",
		Active:     true,
	}
}

func TestSubscriptionMigrator_MigratesAllSubscriptions(t *testing.T) {
	subs := &fakeSubStore{subs: []core.Subscription{
		subscription("sub-1", "Netflix", 15.99, 3),
		subscription("sub-2", "Gym", 29.90, 12),
	}}
	rules := &fakeMigrationRuleStore{}
	migratedAt := time.Date(2025, 12, 11, 9, 30, 0, 0, time.UTC)

	m := NewSubscriptionMigrator(subs, rules)
	m.now = func() time.Time { return migratedAt }

	result, err := m.Migrate(context.Background())
	if err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if result.Migrated != 2 || result.Skipped != 0 || len(result.Errors) != 0 {
		t.Fatalf("Migrate() = %+v, want 2 migrated, 0 skipped, no errors", result)
	}

	rule := rules.bySourceRef("sub-1")
	if rule.Source != core.SourceSubscription {
		t.Errorf("Source = %q, want %q", rule.Source, core.SourceSubscription)
	}
	if rule.Label != "Netflix" || rule.DayOfMonth != 3 {
		t.Errorf("rule = %q day %d, want Netflix day 3", rule.Label, rule.DayOfMonth)
	}
	if rule.Category != "expense" {
		t.Errorf("Category = %q, want expense", rule.Category)
	}
	if !rule.StartDate.Equal(migratedAt) {
		t.Errorf("StartDate = %v, want migration time %v", rule.StartDate, migratedAt)
	}
	if !rule.LastProcessed.IsZero() {
		t.Errorf("LastProcessed = %v, want unset for a fresh rule", rule.LastProcessed)
	}
	if rule.Icon != "tv" || rule.Color != "#e50914" || !rule.Active {
		t.Errorf("presentation fields not carried over: %+v", rule)
	}
}

func TestSubscriptionMigrator_AmountAlwaysNegated(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
	}{
		{"positive stored amount", 15.99},
		{"already negative amount", -15.99},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subs := &fakeSubStore{subs: []core.Subscription{subscription("sub-1", "Netflix", tt.amount, 3)}}
			rules := &fakeMigrationRuleStore{}

			if _, err := NewSubscriptionMigrator(subs, rules).Migrate(context.Background()); err != nil {
				t.Fatalf("Migrate() error = %v", err)
			}

			want := decimal.NewFromFloat(-15.99)
			if got := rules.bySourceRef("sub-1").Amount; !got.Equal(want) {
				t.Errorf("Amount = %s, want %s", got, want)
			}
		})
	}
}

func TestSubscriptionMigrator_SecondRunSkipsEverything(t *testing.T) {
	subs := &fakeSubStore{subs: []core.Subscription{
		subscription("sub-1", "Netflix", 15.99, 3),
		subscription("sub-2", "Gym", 29.90, 12),
	}}
	rules := &fakeMigrationRuleStore{}
	m := NewSubscriptionMigrator(subs, rules)

	if _, err := m.Migrate(context.Background()); err != nil {
		t.Fatalf("first Migrate() error = %v", err)
	}
	second, err := m.Migrate(context.Background())
	if err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}

	if second.Migrated != 0 || second.Skipped != 2 {
		t.Errorf("second run = %+v, want 0 migrated, 2 skipped", second)
	}
	if len(rules.created) != 2 {
		t.Errorf("store holds %d rules after two runs, want 2", len(rules.created))
	}
}

func TestSubscriptionMigrator_FailureDoesNotBlockOthers(t *testing.T) {
	subs := &fakeSubStore{subs: []core.Subscription{
		subscription("sub-1", "Netflix", 15.99, 3),
		subscription("sub-2", "Cursed", 9.99, 5),
		subscription("sub-3", "Gym", 29.90, 12),
	}}
	rules := &fakeMigrationRuleStore{failNames: map[string]bool{"Cursed": true}}

	result, err := NewSubscriptionMigrator(subs, rules).Migrate(context.Background())
	if err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	if result.Migrated != 2 {
		t.Errorf("Migrated = %d, want 2", result.Migrated)
	}
	if len(result.Errors) != 1 || result.Errors[0].SubscriptionID != "sub-2" {
		t.Fatalf("Errors = %v, want exactly one for sub-2", result.Errors)
	}

	// A later run picks the failed one back up without duplicating the rest.
	retry, err := NewSubscriptionMigrator(subs, &fakeMigrationRuleStore{created: rules.created}).Migrate(context.Background())
	if err != nil {
		t.Fatalf("retry Migrate() error = %v", err)
	}
	if retry.Migrated != 1 || retry.Skipped != 2 {
		t.Errorf("retry = %+v, want 1 migrated, 2 skipped", retry)
	}
}

func TestSubscriptionMigrator_ListFailureIsFatal(t *testing.T) {
	subs := &fakeSubStore{listErr: errors.New("database gone")}
	if _, err := NewSubscriptionMigrator(subs, &fakeMigrationRuleStore{}).Migrate(context.Background()); err == nil {
		t.Error("Migrate() with unavailable subscription store should fail")
	}
}
