package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	LedgerIncome   LedgerCategory = "income"
	LedgerExpense  LedgerCategory = "expense"
	LedgerTransfer LedgerCategory = "transfer"

	SourceSubscription RecurringSource = "subscription"
	SourceSalary       RecurringSource = "salary"
	SourceRent         RecurringSource = "rent"
	SourceInsurance    RecurringSource = "insurance"
	SourceCustom       RecurringSource = "custom"
)

type (
	LedgerCategory  string
	RecurringSource string

	// LedgerEntry is a posted financial record on an account. Entries
	// generated by the recurring engine are append-only; the engine never
	// mutates or re-reads them.
	LedgerEntry struct {
		ID       string          `json:"id"`
		ItemID   string          `json:"itemId"`
		Date     time.Time       `json:"date"`
		Value    decimal.Decimal `json:"value"`
		Label    string          `json:"label"`
		Category LedgerCategory  `json:"category"`
	}

	// Subscription is the legacy fixed-recurring-expense record. New code
	// should use RecurringRule; subscriptions remain as migration input.
	Subscription struct {
		ID         string          `json:"id"`
		ItemID     string          `json:"itemId"`
		Name       string          `json:"name"`
		Amount     decimal.Decimal `json:"amount"`
		BillingDay int             `json:"billingDay"`
		Icon       string          `json:"icon,omitempty"`
		Color      string          `json:"color,omitempty"`
		Active     bool            `json:"isActive"`
	}

	// RecurringRule is a monthly recurring income or expense definition.
	// Amount sign is caller-supplied: positive credits, negative debits.
	// LastProcessed is the watermark of the most recently posted occurrence;
	// zero means nothing has been posted yet.
	RecurringRule struct {
		ID            string          `json:"id"`
		Source        RecurringSource `json:"sourceType"`
		SourceRef     string          `json:"sourceItemId,omitempty"`
		ItemID        string          `json:"targetAccountId"`
		Amount        decimal.Decimal `json:"amount"`
		DayOfMonth    int             `json:"dayOfMonth"`
		Label         string          `json:"label"`
		Category      string          `json:"category"`
		Icon          string          `json:"icon,omitempty"`
		Color         string          `json:"color,omitempty"`
		Active        bool            `json:"isActive"`
		StartDate     time.Time       `json:"startDate"`
		EndDate       time.Time       `json:"endDate"`
		LastProcessed time.Time       `json:"lastProcessedDate"`
		CreatedAt     time.Time       `json:"createdAt"`
		UpdatedAt     time.Time       `json:"updatedAt"`
	}
)

func (e LedgerEntry) Validate() error {
	if e.ItemID == "" {
		return ErrMissingItem
	}
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	if strings.TrimSpace(e.Label) == "" {
		return ErrEmptyLabel
	}
	switch e.Category {
	case LedgerIncome, LedgerExpense, LedgerTransfer:
	default:
		return errors.New("invalid ledger category")
	}
	return nil
}

func (s Subscription) Validate() error {
	if s.ItemID == "" {
		return ErrMissingItem
	}
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if s.BillingDay < 1 || s.BillingDay > 31 {
		return ErrInvalidDay
	}
	if s.Amount.IsZero() {
		return ErrInvalidAmount
	}
	return nil
}

// Validate enforces the rule-creation boundary: the occurrence calculator
// assumes dayOfMonth is already in range and never re-checks it.
func (r RecurringRule) Validate() error {
	if r.ItemID == "" {
		return ErrMissingItem
	}
	if strings.TrimSpace(r.Label) == "" {
		return ErrEmptyLabel
	}
	if r.DayOfMonth < 1 || r.DayOfMonth > 31 {
		return ErrInvalidDay
	}
	if r.Amount.IsZero() {
		return ErrInvalidAmount
	}
	switch r.Source {
	case SourceSubscription, SourceSalary, SourceRent, SourceInsurance, SourceCustom:
	default:
		return errors.New("invalid source type")
	}
	// Every occurrence becomes a ledger entry with this category, so an
	// invalid value would make the rule fail on each engine run.
	switch LedgerCategory(r.Category) {
	case LedgerIncome, LedgerExpense, LedgerTransfer:
	default:
		return errors.New("invalid ledger category")
	}
	if r.StartDate.IsZero() {
		return errors.New("invalid start date: date cannot be zero")
	}
	if !r.EndDate.IsZero() && !r.EndDate.After(r.StartDate) {
		return errors.New("end date must be after start date")
	}
	return nil
}
