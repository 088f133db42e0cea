package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/PierreBrethes/life-map-back/internal/core"
)

// RuleStore supplies active recurring rules and persists watermark updates.
type RuleStore interface {
	ListActiveRecurringRules(ctx context.Context) ([]core.RecurringRule, error)
	SaveRecurringRule(ctx context.Context, rule core.RecurringRule) error
}

// LedgerStore appends generated ledger entries. The engine never reads the
// ledger back; duplicate prevention rests entirely on the rule watermark.
type LedgerStore interface {
	AppendLedgerEntry(ctx context.Context, entry core.LedgerEntry) (core.LedgerEntry, error)
}

// RuleError reports a failure while processing a single rule.
type RuleError struct {
	RuleID  string `json:"ruleId"`
	Message string `json:"message"`
}

// ReconciliationResult summarizes one engine run across all rules.
type ReconciliationResult struct {
	Posted int         `json:"postedCount"`
	Errors []RuleError `json:"errors"`
}

// RecurringEngine posts due occurrences of recurring rules to the ledger.
// It holds no state between runs; all progress lives in the rule watermarks.
type RecurringEngine struct {
	rules   RuleStore
	ledger  LedgerStore
	workers int
	now     func() time.Time
}

// NewRecurringEngine creates an engine processing rules sequentially.
func NewRecurringEngine(rules RuleStore, ledger LedgerStore) *RecurringEngine {
	return &RecurringEngine{
		rules:   rules,
		ledger:  ledger,
		workers: 1,
		now:     time.Now,
	}
}

// WithWorkers sets the number of rules processed concurrently. Rules are
// independent, so any bound >= 1 is safe; within a rule, occurrences are
// always posted in ascending date order.
func (e *RecurringEngine) WithWorkers(n int) *RecurringEngine {
	if n > 0 {
		e.workers = n
	}
	return e
}

// Run reconciles every active rule against asOf and returns the total number
// of posted entries plus the per-rule errors. A failure in one rule never
// aborts the others; Run itself fails only when the rules cannot be listed.
func (e *RecurringEngine) Run(ctx context.Context, asOf time.Time) (ReconciliationResult, error) {
	rules, err := e.rules.ListActiveRecurringRules(ctx)
	if err != nil {
		return ReconciliationResult{}, fmt.Errorf("list active recurring rules: %w", err)
	}

	today := core.DateOnly(asOf)
	slog.InfoContext(ctx, "Reconciling recurring rules",
		"total_active", len(rules),
		"as_of", today.Format("2006-01-02"))

	var (
		mu     sync.Mutex
		result ReconciliationResult
	)

	g := new(errgroup.Group)
	g.SetLimit(e.workers)

	for _, rule := range rules {
		rule := rule
		g.Go(func() error {
			posted, err := e.processRule(ctx, rule, today)

			mu.Lock()
			result.Posted += posted
			if err != nil {
				result.Errors = append(result.Errors, RuleError{RuleID: rule.ID, Message: err.Error()})
			}
			mu.Unlock()

			if err != nil {
				slog.ErrorContext(ctx, "Failed to process recurring rule",
					"rule_id", rule.ID,
					"label", rule.Label,
					"error", err)
			}
			// Per-rule errors are collected, never propagated: a bad rule
			// must not cancel its siblings.
			return nil
		})
	}
	_ = g.Wait()

	slog.InfoContext(ctx, "Recurring reconciliation complete",
		"posted", result.Posted,
		"failed_rules", len(result.Errors),
		"total_checked", len(rules))

	return result, nil
}

// processRule posts every due occurrence of one rule in ascending order and
// advances the watermark once all of them succeeded. It returns the number
// of entries actually posted, which counts even when an error cut the rule
// short; those entries exist in the ledger and the unmoved watermark makes
// the next run retry from the same point.
func (e *RecurringEngine) processRule(ctx context.Context, rule core.RecurringRule, today time.Time) (int, error) {
	// Expired rules cannot have due occurrences; skip the calculator.
	if !rule.EndDate.IsZero() && rule.EndDate.Before(today) {
		return 0, nil
	}

	due := Occurrences(rule, today)
	if len(due) == 0 {
		return 0, nil
	}

	posted := 0
	for _, occurrence := range due {
		entry := core.LedgerEntry{
			ItemID:   rule.ItemID,
			Date:     occurrence,
			Value:    rule.Amount,
			Label:    rule.Label,
			Category: core.LedgerCategory(rule.Category),
		}
		if _, err := e.ledger.AppendLedgerEntry(ctx, entry); err != nil {
			return posted, fmt.Errorf("post occurrence %s: %w", occurrence.Format("2006-01-02"), err)
		}
		posted++

		slog.InfoContext(ctx, "Posted recurring occurrence",
			"rule_id", rule.ID,
			"label", rule.Label,
			"occurrence", occurrence.Format("2006-01-02"),
			"amount", rule.Amount.String())
	}

	rule.LastProcessed = due[len(due)-1]
	rule.UpdatedAt = e.now().UTC()
	if err := e.rules.SaveRecurringRule(ctx, rule); err != nil {
		return posted, fmt.Errorf("advance watermark to %s: %w", rule.LastProcessed.Format("2006-01-02"), err)
	}

	return posted, nil
}
