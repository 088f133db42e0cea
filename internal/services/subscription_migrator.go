package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/PierreBrethes/life-map-back/internal/core"
)

// SubscriptionStore lists the legacy subscription records to migrate.
type SubscriptionStore interface {
	ListSubscriptions(ctx context.Context) ([]core.Subscription, error)
}

// MigrationRuleStore is the rule-store surface the migrator needs: existence
// checks for idempotent re-runs and creation of the migrated rules.
type MigrationRuleStore interface {
	RecurringRuleExistsForSource(ctx context.Context, source core.RecurringSource, sourceRef string) (bool, error)
	CreateRecurringRule(ctx context.Context, rule core.RecurringRule) (core.RecurringRule, error)
}

// MigrationError reports a failure while migrating a single subscription.
type MigrationError struct {
	SubscriptionID string `json:"subscriptionId"`
	Message        string `json:"message"`
}

// MigrationResult summarizes one migration run.
type MigrationResult struct {
	Migrated int              `json:"migratedCount"`
	Skipped  int              `json:"skippedCount"`
	Errors   []MigrationError `json:"errors"`
}

// SubscriptionMigrator converts legacy subscriptions into recurring rules.
// Re-running it is safe: subscriptions that already have a rule with a
// matching source reference are counted as skipped.
type SubscriptionMigrator struct {
	subs  SubscriptionStore
	rules MigrationRuleStore
	now   func() time.Time
}

func NewSubscriptionMigrator(subs SubscriptionStore, rules MigrationRuleStore) *SubscriptionMigrator {
	return &SubscriptionMigrator{
		subs:  subs,
		rules: rules,
		now:   time.Now,
	}
}

// Migrate creates one recurring rule per not-yet-migrated subscription.
// Subscriptions are always treated as expenses: the rule amount is the
// negated absolute value of the stored amount, whatever its sign. The new
// rule starts at the migration moment with an unset watermark, so no
// occurrence before the migration is ever back-filled.
func (m *SubscriptionMigrator) Migrate(ctx context.Context) (MigrationResult, error) {
	subs, err := m.subs.ListSubscriptions(ctx)
	if err != nil {
		return MigrationResult{}, fmt.Errorf("list subscriptions: %w", err)
	}

	slog.InfoContext(ctx, "Migrating legacy subscriptions to recurring rules", "total", len(subs))

	var result MigrationResult
	for _, sub := range subs {
		exists, err := m.rules.RecurringRuleExistsForSource(ctx, core.SourceSubscription, sub.ID)
		if err != nil {
			result.Errors = append(result.Errors, MigrationError{
				SubscriptionID: sub.ID,
				Message:        fmt.Sprintf("check existing rule: %v", err),
			})
			continue
		}
		if exists {
			result.Skipped++
			slog.DebugContext(ctx, "Subscription already migrated", "subscription_id", sub.ID, "name", sub.Name)
			continue
		}

		now := m.now().UTC()
		rule := core.RecurringRule{
			Source:     core.SourceSubscription,
			SourceRef:  sub.ID,
			ItemID:     sub.ItemID,
			Amount:     sub.Amount.Abs().Neg(),
			DayOfMonth: sub.BillingDay,
			Label:      sub.Name,
			Category:   string(core.LedgerExpense),
			Icon:       sub.Icon,
			Color:      sub.Color,
			Active:     sub.Active,
			StartDate:  now,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		if _, err := m.rules.CreateRecurringRule(ctx, rule); err != nil {
			result.Errors = append(result.Errors, MigrationError{
				SubscriptionID: sub.ID,
				Message:        fmt.Sprintf("create recurring rule: %v", err),
			})
			continue
		}

		result.Migrated++
		slog.InfoContext(ctx, "Migrated subscription",
			"subscription_id", sub.ID,
			"name", sub.Name,
			"amount", rule.Amount.String(),
			"day_of_month", rule.DayOfMonth)
	}

	slog.InfoContext(ctx, "Subscription migration complete",
		"migrated", result.Migrated,
		"skipped", result.Skipped,
		"failed", len(result.Errors))

	return result, nil
}
