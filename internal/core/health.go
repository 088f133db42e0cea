package core

import (
	"errors"
	"strings"
	"time"
)

const (
	AppointmentDoctor  HealthAppointmentType = "doctor"
	AppointmentDentist HealthAppointmentType = "dentist"
	AppointmentVaccine HealthAppointmentType = "vaccine"
	AppointmentCheckup HealthAppointmentType = "checkup"
	AppointmentOther   HealthAppointmentType = "other"
)

type (
	HealthAppointmentType string

	// BodyMetric is one weigh-in tied to a health item. Weight is required;
	// the composition fields are optional because most scales do not
	// report them.
	BodyMetric struct {
		ID         string    `json:"id"`
		ItemID     string    `json:"itemId"`
		Date       time.Time `json:"date"`
		Weight     float64   `json:"weight"`
		Height     *float64  `json:"height,omitempty"`
		BodyFat    *float64  `json:"bodyFat,omitempty"`
		MuscleMass *float64  `json:"muscleMass,omitempty"`
		Note       string    `json:"note,omitempty"`
	}

	HealthAppointment struct {
		ID         string                `json:"id"`
		ItemID     string                `json:"itemId"`
		Title      string                `json:"title"`
		Date       time.Time             `json:"date"`
		Type       HealthAppointmentType `json:"type"`
		DoctorName string                `json:"doctorName,omitempty"`
		Location   string                `json:"location,omitempty"`
		Notes      string                `json:"notes,omitempty"`
		Completed  bool                  `json:"isCompleted"`
	}
)

func (m BodyMetric) Validate() error {
	if m.ItemID == "" {
		return ErrMissingItem
	}
	if m.Date.IsZero() {
		return ErrInvalidDate
	}
	if m.Weight <= 0 {
		return errors.New("weight must be positive")
	}
	for _, v := range []*float64{m.Height, m.BodyFat, m.MuscleMass} {
		if v != nil && *v < 0 {
			return errors.New("body measurements cannot be negative")
		}
	}
	return nil
}

func (a HealthAppointment) Validate() error {
	if a.ItemID == "" {
		return ErrMissingItem
	}
	if strings.TrimSpace(a.Title) == "" {
		return ErrEmptyLabel
	}
	if a.Date.IsZero() {
		return ErrInvalidDate
	}
	switch a.Type {
	case AppointmentDoctor, AppointmentDentist, AppointmentVaccine,
		AppointmentCheckup, AppointmentOther:
	default:
		return errors.New("invalid appointment type")
	}
	return nil
}
