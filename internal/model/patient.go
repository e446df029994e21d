package model

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

type Patient struct {
	Base
	FacilityID      int64     `json:"facility_id" db:"facility_id"`
	FirstName       string    `json:"first_name" db:"first_name"`
	LastName        string    `json:"last_name" db:"last_name"`
	DateOfBirth     time.Time `json:"date_of_birth" db:"date_of_birth"`
	Gender          string    `json:"gender" db:"gender"`
	Address         string    `json:"address" db:"address"`
	PhoneNumber     string    `json:"phone_number" db:"phone_number"`
	Email           string    `json:"email" db:"email"`
	InsuranceNumber string    `json:"insurance_number" db:"insurance_number"`
}

// Date is a calendar date carried as YYYY-MM-DD on the wire.
type Date struct {
	time.Time
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

type PatientInput struct {
	FacilityID      int64  `json:"facility_id" validate:"required"`
	FirstName       string `json:"first_name" validate:"notblank,max=100"`
	LastName        string `json:"last_name" validate:"notblank,max=100"`
	DateOfBirth     Date   `json:"date_of_birth" validate:"required"`
	Gender          string `json:"gender" validate:"notblank"`
	Address         string `json:"address"`
	PhoneNumber     string `json:"phone_number" validate:"omitempty,phone"`
	Email           string `json:"email" validate:"omitempty,email"`
	InsuranceNumber string `json:"insurance_number"`
}

type PatientView struct {
	ID              int64  `json:"id"`
	FacilityID      int64  `json:"facility_id"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	DateOfBirth     Date   `json:"date_of_birth"`
	Gender          string `json:"gender"`
	Address         string `json:"address"`
	PhoneNumber     string `json:"phone_number"`
	Email           string `json:"email"`
	InsuranceNumber string `json:"insurance_number"`
}

// PatientFilters carries the optional list filters. Only the first one set,
// in the order Search, DateOfBirth, Gender, is applied.
type PatientFilters struct {
	Search      string
	DateOfBirth *time.Time
	Gender      string
}

// UniqueField names a patient attribute that must be unique among active patients.
type UniqueField string

const (
	UniqueEmail           UniqueField = "email"
	UniquePhoneNumber     UniqueField = "phone_number"
	UniqueInsuranceNumber UniqueField = "insurance_number"
)

// Label is the phrase used in duplicate messages.
func (f UniqueField) Label() string {
	switch f {
	case UniqueEmail:
		return "email address"
	case UniquePhoneNumber:
		return "phone number"
	case UniqueInsuranceNumber:
		return "insurance number"
	}
	return string(f)
}
