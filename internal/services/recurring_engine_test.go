package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/PierreBrethes/life-map-back/internal/core"
)

type fakeRuleStore struct {
	rules   []core.RecurringRule
	listErr error
	saveErr error
	saves   int
}

func (s *fakeRuleStore) ListActiveRecurringRules(ctx context.Context) ([]core.RecurringRule, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	active := make([]core.RecurringRule, 0, len(s.rules))
	for _, r := range s.rules {
		if r.Active {
			active = append(active, r)
		}
	}
	return active, nil
}

func (s *fakeRuleStore) SaveRecurringRule(ctx context.Context, rule core.RecurringRule) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	for i := range s.rules {
		if s.rules[i].ID == rule.ID {
			s.rules[i] = rule
			return nil
		}
	}
	return errors.New("rule not found")
}

func (s *fakeRuleStore) byID(id string) core.RecurringRule {
	for _, r := range s.rules {
		if r.ID == id {
			return r
		}
	}
	return core.RecurringRule{}
}

type fakeLedger struct {
	entries   []core.LedgerEntry
	failLabel string
	failAfter int
}

func (l *fakeLedger) AppendLedgerEntry(ctx context.Context, entry core.LedgerEntry) (core.LedgerEntry, error) {
	if entry.Label == l.failLabel && len(l.entriesFor(entry.Label)) >= l.failAfter {
		return core.LedgerEntry{}, errors.New("ledger store unavailable")
	}
	l.entries = append(l.entries, entry)
	return entry, nil
}

func (l *fakeLedger) entriesFor(label string) []core.LedgerEntry {
	var out []core.LedgerEntry
	for _, e := range l.entries {
		if e.Label == label {
			out = append(out, e)
		}
	}
	return out
}

func engineRule(id, label string, dayOfMonth int) core.RecurringRule {
	return core.RecurringRule{
		ID:         id,
		ItemID:     "acct-" + id,
		Source:     core.SourceCustom,
		Amount:     decimal.NewFromFloat(-12.50),
		DayOfMonth: dayOfMonth,
		Label:      label,
		Category:   "expense",
		Active:     true,
		StartDate:  date(2025, 1, 1),
	}
}

func TestRecurringEngine_PostsDueOccurrencesAndAdvancesWatermark(t *testing.T) {
	rule := engineRule("r1", "Rent", 1)
	rule.LastProcessed = date(2025, 9, 1)
	rules := &fakeRuleStore{rules: []core.RecurringRule{rule}}
	ledger := &fakeLedger{}

	engine := NewRecurringEngine(rules, ledger)
	result, err := engine.Run(context.Background(), date(2025, 12, 11))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Posted != 3 {
		t.Errorf("Posted = %d, want 3", result.Posted)
	}
	if len(result.Errors) != 0 {
		t.Errorf("Errors = %v, want none", result.Errors)
	}

	wantDates := []time.Time{date(2025, 10, 1), date(2025, 11, 1), date(2025, 12, 1)}
	if len(ledger.entries) != len(wantDates) {
		t.Fatalf("posted %d entries, want %d", len(ledger.entries), len(wantDates))
	}
	for i, e := range ledger.entries {
		if !e.Date.Equal(wantDates[i]) {
			t.Errorf("entry[%d].Date = %v, want %v", i, e.Date, wantDates[i])
		}
		if e.ItemID != rule.ItemID || e.Label != rule.Label {
			t.Errorf("entry[%d] copied fields %q/%q, want %q/%q", i, e.ItemID, e.Label, rule.ItemID, rule.Label)
		}
		if !e.Value.Equal(rule.Amount) {
			t.Errorf("entry[%d].Value = %s, want %s", i, e.Value, rule.Amount)
		}
	}

	saved := rules.byID("r1")
	if !saved.LastProcessed.Equal(date(2025, 12, 1)) {
		t.Errorf("watermark = %v, want 2025-12-01", saved.LastProcessed)
	}
	if saved.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not refreshed on watermark advance")
	}
}

func TestRecurringEngine_SecondRunIsIdempotent(t *testing.T) {
	rule := engineRule("r1", "Rent", 1)
	rule.LastProcessed = date(2025, 9, 1)
	rules := &fakeRuleStore{rules: []core.RecurringRule{rule}}
	ledger := &fakeLedger{}
	engine := NewRecurringEngine(rules, ledger)
	asOf := date(2025, 12, 11)

	first, err := engine.Run(context.Background(), asOf)
	if err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	second, err := engine.Run(context.Background(), asOf)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}

	if first.Posted == 0 {
		t.Fatal("first run posted nothing")
	}
	if second.Posted != 0 {
		t.Errorf("second run Posted = %d, want 0", second.Posted)
	}
	if len(ledger.entries) != first.Posted {
		t.Errorf("ledger has %d entries after two runs, want %d", len(ledger.entries), first.Posted)
	}
}

func TestRecurringEngine_RuleFailureDoesNotBlockSiblings(t *testing.T) {
	healthy := engineRule("good", "Salary", 28)
	healthy.Amount = decimal.NewFromInt(2500)
	healthy.Category = "income"
	healthy.LastProcessed = date(2025, 10, 28)

	broken := engineRule("bad", "Cursed", 5)
	broken.LastProcessed = date(2025, 10, 5)

	rules := &fakeRuleStore{rules: []core.RecurringRule{broken, healthy}}
	ledger := &fakeLedger{failLabel: "Cursed"}
	engine := NewRecurringEngine(rules, ledger)

	result, err := engine.Run(context.Background(), date(2025, 12, 11))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Posted != 1 {
		t.Errorf("Posted = %d, want 1 (healthy sibling)", result.Posted)
	}
	if len(result.Errors) != 1 || result.Errors[0].RuleID != "bad" {
		t.Fatalf("Errors = %v, want exactly one for rule 'bad'", result.Errors)
	}

	// The failing rule's watermark must not move, so the next run retries it.
	if got := rules.byID("bad").LastProcessed; !got.Equal(date(2025, 10, 5)) {
		t.Errorf("failed rule watermark = %v, want unchanged 2025-10-05", got)
	}
	if got := rules.byID("good").LastProcessed; !got.Equal(date(2025, 11, 28)) {
		t.Errorf("healthy rule watermark = %v, want 2025-11-28", got)
	}
}

func TestRecurringEngine_PartialFailureCountsPostedEntries(t *testing.T) {
	// Two occurrences due; the append fails on the second one. The first
	// entry exists, so it is counted, but the watermark stays put.
	rule := engineRule("r1", "Flaky", 1)
	rule.LastProcessed = date(2025, 9, 1)
	rules := &fakeRuleStore{rules: []core.RecurringRule{rule}}
	ledger := &fakeLedger{failLabel: "Flaky", failAfter: 1}
	engine := NewRecurringEngine(rules, ledger)

	result, err := engine.Run(context.Background(), date(2025, 11, 11))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Posted != 1 {
		t.Errorf("Posted = %d, want 1", result.Posted)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("Errors = %v, want one", result.Errors)
	}
	if got := rules.byID("r1").LastProcessed; !got.Equal(date(2025, 9, 1)) {
		t.Errorf("watermark = %v, want unchanged after partial failure", got)
	}
}

func TestRecurringEngine_WatermarkSaveFailureIsReported(t *testing.T) {
	rule := engineRule("r1", "Rent", 1)
	rule.LastProcessed = date(2025, 10, 1)
	rules := &fakeRuleStore{rules: []core.RecurringRule{rule}, saveErr: errors.New("disk full")}
	ledger := &fakeLedger{}
	engine := NewRecurringEngine(rules, ledger)

	result, err := engine.Run(context.Background(), date(2025, 12, 11))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Posted != 2 {
		t.Errorf("Posted = %d, want 2 (entries were appended)", result.Posted)
	}
	if len(result.Errors) != 1 {
		t.Errorf("Errors = %v, want the save failure reported", result.Errors)
	}
}

func TestRecurringEngine_ExpiredRuleSkipped(t *testing.T) {
	rule := engineRule("r1", "Old gym", 15)
	rule.LastProcessed = date(2025, 6, 15)
	rule.EndDate = date(2025, 8, 1)
	rules := &fakeRuleStore{rules: []core.RecurringRule{rule}}
	ledger := &fakeLedger{}
	engine := NewRecurringEngine(rules, ledger)

	result, err := engine.Run(context.Background(), date(2025, 12, 11))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Posted != 0 || len(result.Errors) != 0 {
		t.Errorf("expired rule produced Posted=%d Errors=%v, want nothing", result.Posted, result.Errors)
	}
	if got := rules.byID("r1").LastProcessed; !got.Equal(date(2025, 6, 15)) {
		t.Errorf("expired rule watermark = %v, want untouched", got)
	}
}

func TestRecurringEngine_ListFailureIsFatal(t *testing.T) {
	rules := &fakeRuleStore{listErr: errors.New("database gone")}
	engine := NewRecurringEngine(rules, &fakeLedger{})

	if _, err := engine.Run(context.Background(), date(2025, 12, 11)); err == nil {
		t.Error("Run() with unavailable rule store should fail")
	}
}

func TestRecurringEngine_ParallelWorkersPostSameTotals(t *testing.T) {
	var ruleSet []core.RecurringRule
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		r := engineRule(id, "Sub "+id, 10)
		r.LastProcessed = date(2025, 9, 10)
		ruleSet = append(ruleSet, r)
	}

	sequential := &fakeRuleStore{rules: append([]core.RecurringRule(nil), ruleSet...)}
	seqResult, err := NewRecurringEngine(sequential, &fakeLedger{}).Run(context.Background(), date(2025, 12, 11))
	if err != nil {
		t.Fatalf("sequential Run() error = %v", err)
	}

	parallel := &syncedRuleStore{fakeRuleStore: fakeRuleStore{rules: append([]core.RecurringRule(nil), ruleSet...)}}
	parLedger := &syncedLedger{}
	parResult, err := NewRecurringEngine(parallel, parLedger).WithWorkers(4).Run(context.Background(), date(2025, 12, 11))
	if err != nil {
		t.Fatalf("parallel Run() error = %v", err)
	}

	if parResult.Posted != seqResult.Posted {
		t.Errorf("parallel Posted = %d, sequential = %d", parResult.Posted, seqResult.Posted)
	}
	if len(parLedger.entries) != seqResult.Posted {
		t.Errorf("parallel ledger has %d entries, want %d", len(parLedger.entries), seqResult.Posted)
	}
}

// syncedLedger is safe for concurrent appends from parallel rule workers.
type syncedLedger struct {
	mu      sync.Mutex
	entries []core.LedgerEntry
}

func (l *syncedLedger) AppendLedgerEntry(ctx context.Context, entry core.LedgerEntry) (core.LedgerEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	return entry, nil
}

type syncedRuleStore struct {
	mu sync.Mutex
	fakeRuleStore
}

func (s *syncedRuleStore) SaveRecurringRule(ctx context.Context, rule core.RecurringRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fakeRuleStore.SaveRecurringRule(ctx, rule)
}
