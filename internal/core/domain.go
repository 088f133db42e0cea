package core

import (
	"errors"
	"strings"
	"time"
)

const (
	ItemTypeCurrency   ItemType = "currency"
	ItemTypeText       ItemType = "text"
	ItemTypePercentage ItemType = "percentage"
	ItemTypeDate       ItemType = "date"

	ItemStatusOK       ItemStatus = "ok"
	ItemStatusWarning  ItemStatus = "warning"
	ItemStatusCritical ItemStatus = "critical"

	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"

	EventParty    SocialEventType = "party"
	EventDinner   SocialEventType = "dinner"
	EventWedding  SocialEventType = "wedding"
	EventBirthday SocialEventType = "birthday"
	EventOther    SocialEventType = "other"
)

type (
	ItemType        string
	ItemStatus      string
	AlertSeverity   string
	SocialEventType string

	// Category groups life items ("Finance", "Health", ...).
	Category struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Color string `json:"color"`
		Icon  string `json:"icon,omitempty"`
	}

	// LifeItem is the central tracked entity; ledger accounts, properties,
	// vehicles and people are all items distinguished by type and assetType.
	LifeItem struct {
		ID          string     `json:"id"`
		CategoryID  string     `json:"categoryId,omitempty"`
		Name        string     `json:"name"`
		Value       string     `json:"value,omitempty"`
		Type        ItemType   `json:"type"`
		Status      ItemStatus `json:"status"`
		AssetType   string     `json:"assetType,omitempty"`
		LastUpdated time.Time  `json:"lastUpdated"`

		NotificationDismissed bool   `json:"notificationDismissed"`
		NotificationLabel     string `json:"notificationLabel,omitempty"`

		InitialBalance *float64 `json:"initialBalance,omitempty"`

		RentAmount *float64 `json:"rentAmount,omitempty"`
		RentDueDay *int     `json:"rentDueDay,omitempty"`
		Address    string   `json:"address,omitempty"`
		City       string   `json:"city,omitempty"`
		PostalCode string   `json:"postalCode,omitempty"`

		Mileage *int `json:"mileage,omitempty"`
	}

	Contact struct {
		ID                   string    `json:"id"`
		ItemID               string    `json:"itemId"`
		Name                 string    `json:"name"`
		Birthday             time.Time `json:"birthday"`
		LastContactDate      time.Time `json:"lastContactDate"`
		ContactFrequencyDays int       `json:"contactFrequencyDays,omitempty"`
		Avatar               string    `json:"avatar,omitempty"`
		Notes                string    `json:"notes,omitempty"`
	}

	// SocialEvent is an appointment tied to an item, optionally to contacts.
	SocialEvent struct {
		ID         string          `json:"id"`
		ItemID     string          `json:"itemId"`
		Title      string          `json:"title"`
		Date       time.Time       `json:"date"`
		Location   string          `json:"location,omitempty"`
		Type       SocialEventType `json:"type"`
		ContactIDs []string        `json:"contactIds,omitempty"`
	}

	Alert struct {
		ID        string        `json:"id"`
		ItemID    string        `json:"itemId"`
		Name      string        `json:"name"`
		Severity  AlertSeverity `json:"severity"`
		DueDate   time.Time     `json:"dueDate"`
		Active    bool          `json:"isActive"`
		CreatedAt time.Time     `json:"createdAt"`
	}

	// Dependency is a directed edge between two items, each qualified by
	// its category. Used to model "this depends on that" links across the
	// board (a vehicle on an insurance item, a property on a loan item).
	Dependency struct {
		ID             string `json:"id"`
		FromCategoryID string `json:"fromCategoryId"`
		FromItemID     string `json:"fromItemId"`
		ToCategoryID   string `json:"toCategoryId"`
		ToItemID       string `json:"toItemId"`
	}

	PropertyValuation struct {
		ID                 string    `json:"id"`
		ItemID             string    `json:"itemId"`
		EstimatedValue     float64   `json:"estimatedValue"`
		PurchasePrice      float64   `json:"purchasePrice"`
		PurchaseDate       time.Time `json:"purchaseDate"`
		LoanAmount         *float64  `json:"loanAmount,omitempty"`
		LoanMonthlyPayment *float64  `json:"loanMonthlyPayment,omitempty"`
		LoanInterestRate   *float64  `json:"loanInterestRate,omitempty"`
		LoanStartDate      time.Time `json:"loanStartDate"`
		LoanDurationMonths *int      `json:"loanDurationMonths,omitempty"`
		CapitalRepaid      *float64  `json:"capitalRepaid,omitempty"`
	}
)

var (
	ErrEmptyName       = errors.New("empty name")
	ErrEmptyLabel      = errors.New("empty label")
	ErrMissingItem     = errors.New("missing item reference")
	ErrInvalidDay      = errors.New("day of month must be between 1 and 31")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidSeverity = errors.New("invalid severity")
)

// DateOnly truncates t to UTC midnight. The recurring engine compares
// occurrence dates at date-only precision.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysInMonth returns the length of the given calendar month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(c.Color) == "" {
		return errors.New("empty color")
	}
	return nil
}

func (i LifeItem) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return ErrEmptyName
	}
	switch i.Type {
	case ItemTypeCurrency, ItemTypeText, ItemTypePercentage, ItemTypeDate:
	default:
		return errors.New("invalid item type")
	}
	if i.RentDueDay != nil && (*i.RentDueDay < 1 || *i.RentDueDay > 31) {
		return ErrInvalidDay
	}
	return nil
}

func (c Contact) Validate() error {
	if c.ItemID == "" {
		return ErrMissingItem
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if c.ContactFrequencyDays < 0 {
		return errors.New("contact frequency cannot be negative")
	}
	return nil
}

func (e SocialEvent) Validate() error {
	if e.ItemID == "" {
		return ErrMissingItem
	}
	if strings.TrimSpace(e.Title) == "" {
		return ErrEmptyLabel
	}
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	switch e.Type {
	case EventParty, EventDinner, EventWedding, EventBirthday, EventOther:
	default:
		return errors.New("invalid event type")
	}
	return nil
}

func (a Alert) Validate() error {
	if a.ItemID == "" {
		return ErrMissingItem
	}
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	switch a.Severity {
	case SeverityWarning, SeverityCritical:
	default:
		return ErrInvalidSeverity
	}
	return nil
}

func (d Dependency) Validate() error {
	if d.FromItemID == "" || d.ToItemID == "" {
		return ErrMissingItem
	}
	if d.FromCategoryID == "" || d.ToCategoryID == "" {
		return errors.New("missing category reference")
	}
	if d.FromItemID == d.ToItemID {
		return errors.New("dependency cannot reference itself")
	}
	return nil
}

func (v PropertyValuation) Validate() error {
	if v.ItemID == "" {
		return ErrMissingItem
	}
	if v.EstimatedValue < 0 || v.PurchasePrice < 0 {
		return ErrInvalidAmount
	}
	if v.PurchaseDate.IsZero() {
		return ErrInvalidDate
	}
	return nil
}
