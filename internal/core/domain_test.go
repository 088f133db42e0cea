package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		month time.Month
		want  int
	}{
		{"february non-leap", 2023, time.February, 28},
		{"february leap", 2024, time.February, 29},
		{"april", 2023, time.April, 30},
		{"december", 2023, time.December, 31},
		{"century non-leap", 1900, time.February, 28},
		{"quadricentennial leap", 2000, time.February, 29},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysInMonth(tt.year, tt.month); got != tt.want {
				t.Errorf("DaysInMonth(%d, %s) = %d, want %d", tt.year, tt.month, got, tt.want)
			}
		})
	}
}

func TestDateOnly(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	in := time.Date(2025, 12, 11, 23, 59, 59, 123, loc)
	got := DateOnly(in)
	want := time.Date(2025, 12, 11, 22, 0, 0, 0, time.UTC)
	// 23:59 CET is 22:59 UTC, so the UTC calendar day is still the 11th.
	if got.Year() != want.Year() || got.Month() != want.Month() || got.Day() != want.Day() {
		t.Errorf("DateOnly(%v) = %v, want day %v", in, got, want.Day())
	}
	if h, m, s := got.Clock(); h != 0 || m != 0 || s != 0 {
		t.Errorf("DateOnly(%v) clock = %02d:%02d:%02d, want midnight", in, h, m, s)
	}
}

func validRule() RecurringRule {
	return RecurringRule{
		ItemID:     "acct-1",
		Source:     SourceCustom,
		Amount:     decimal.NewFromFloat(-42.50),
		DayOfMonth: 15,
		Label:      "Gym",
		Category:   "expense",
		Active:     true,
		StartDate:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestRecurringRuleValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*RecurringRule)
		wantErr bool
	}{
		{"valid", func(r *RecurringRule) {}, false},
		{"day zero", func(r *RecurringRule) { r.DayOfMonth = 0 }, true},
		{"day 32", func(r *RecurringRule) { r.DayOfMonth = 32 }, true},
		{"day 31 is allowed", func(r *RecurringRule) { r.DayOfMonth = 31 }, false},
		{"missing account", func(r *RecurringRule) { r.ItemID = "" }, true},
		{"blank label", func(r *RecurringRule) { r.Label = "   " }, true},
		{"zero amount", func(r *RecurringRule) { r.Amount = decimal.Zero }, true},
		{"positive amount is allowed", func(r *RecurringRule) { r.Amount = decimal.NewFromInt(2500) }, false},
		{"unknown source", func(r *RecurringRule) { r.Source = "lottery" }, true},
		{"free-text category", func(r *RecurringRule) { r.Category = "groceries" }, true},
		{"empty category", func(r *RecurringRule) { r.Category = "" }, true},
		{"income category is allowed", func(r *RecurringRule) { r.Category = "income" }, false},
		{"transfer category is allowed", func(r *RecurringRule) { r.Category = "transfer" }, false},
		{"zero start date", func(r *RecurringRule) { r.StartDate = time.Time{} }, true},
		{"end before start", func(r *RecurringRule) {
			r.EndDate = r.StartDate.AddDate(0, -1, 0)
		}, true},
		{"end equals start", func(r *RecurringRule) { r.EndDate = r.StartDate }, true},
		{"end after start", func(r *RecurringRule) {
			r.EndDate = r.StartDate.AddDate(1, 0, 0)
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRule()
			tt.mutate(&r)
			err := r.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSubscriptionValidate(t *testing.T) {
	valid := Subscription{
		ItemID:     "acct-1",
		Name:       "Netflix",
		Amount:     decimal.NewFromFloat(15.99),
		BillingDay: 12,
		Active:     true,
	}

	tests := []struct {
		name    string
		mutate  func(*Subscription)
		wantErr bool
	}{
		{"valid", func(s *Subscription) {}, false},
		{"missing item", func(s *Subscription) { s.ItemID = "" }, true},
		{"blank name", func(s *Subscription) { s.Name = "" }, true},
		{"billing day zero", func(s *Subscription) { s.BillingDay = 0 }, true},
		{"billing day 32", func(s *Subscription) { s.BillingDay = 32 }, true},
		{"zero amount", func(s *Subscription) { s.Amount = decimal.Zero }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLedgerEntryValidate(t *testing.T) {
	valid := LedgerEntry{
		ItemID:   "acct-1",
		Date:     time.Date(2025, 11, 15, 0, 0, 0, 0, time.UTC),
		Value:    decimal.NewFromFloat(-9.99),
		Label:    "Spotify",
		Category: LedgerExpense,
	}

	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}

	e := valid
	e.Category = "refund"
	if err := e.Validate(); err == nil {
		t.Error("Validate() accepted unknown category")
	}

	e = valid
	e.Date = time.Time{}
	if err := e.Validate(); err == nil {
		t.Error("Validate() accepted zero date")
	}
}

func TestBodyMetricValidate(t *testing.T) {
	negative := -5.0
	valid := BodyMetric{
		ItemID: "item-1",
		Date:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Weight: 80,
	}

	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}

	m := valid
	m.Weight = 0
	if err := m.Validate(); err == nil {
		t.Error("Validate() accepted zero weight")
	}

	m = valid
	m.BodyFat = &negative
	if err := m.Validate(); err == nil {
		t.Error("Validate() accepted negative body fat")
	}

	m = valid
	m.ItemID = ""
	if err := m.Validate(); err == nil {
		t.Error("Validate() accepted missing item")
	}
}

func TestHealthAppointmentValidate(t *testing.T) {
	valid := HealthAppointment{
		ItemID: "item-1",
		Title:  "Dentist cleaning",
		Date:   time.Date(2025, 9, 10, 9, 0, 0, 0, time.UTC),
		Type:   AppointmentDentist,
	}

	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}

	a := valid
	a.Type = "spa"
	if err := a.Validate(); err == nil {
		t.Error("Validate() accepted unknown appointment type")
	}

	a = valid
	a.Title = "  "
	if err := a.Validate(); err == nil {
		t.Error("Validate() accepted blank title")
	}
}

func TestDependencyValidate(t *testing.T) {
	valid := Dependency{
		FromCategoryID: "cat-1",
		FromItemID:     "item-1",
		ToCategoryID:   "cat-2",
		ToItemID:       "item-2",
	}

	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}

	d := valid
	d.ToItemID = d.FromItemID
	if err := d.Validate(); err == nil {
		t.Error("Validate() accepted self-referencing edge")
	}

	d = valid
	d.FromCategoryID = ""
	if err := d.Validate(); err == nil {
		t.Error("Validate() accepted missing category")
	}

	d = valid
	d.ToItemID = ""
	if err := d.Validate(); err == nil {
		t.Error("Validate() accepted missing item")
	}
}
