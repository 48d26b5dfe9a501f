// Package scheduling books appointments and moves them through the
// visit lifecycle. Booking resolves the patient (existing row wins,
// unknown mobiles register a new one), takes the slot, bumps the
// patient's visit counters and, when a fee is charged, bills the
// visit up front.
package scheduling

import (
	"strings"
	"time"

	"github.com/clinicdesk/clinicdesk/internal/domain/patient"
	"github.com/clinicdesk/clinicdesk/pkg/apperr"
)

const (
	StatusScheduled = "Scheduled"
	StatusWaiting   = "Waiting"
	StatusCompleted = "Completed"
	StatusCancelled = "Cancelled"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusScheduled, StatusWaiting, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Appointment struct {
	ID              int64     `json:"id"`
	PatientID       int64     `json:"patient_id"`
	DoctorID        int64     `json:"doctor_id"`
	AppointmentDate time.Time `json:"appointment_date"`
	AppointmentTime string    `json:"appointment_time"`
	Reason          *string   `json:"reason"`
	Fee             float64   `json:"fee"`
	Status          string    `json:"status"`
	CreatedBy       *int64    `json:"created_by,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Detail is an appointment joined with patient, doctor and booking
// clerk context for list views.
type Detail struct {
	Appointment
	PatientName    string  `json:"patient_name"`
	PatientMobile  string  `json:"patient_mobile"`
	PatientAge     *int    `json:"patient_age"`
	PatientGender  string  `json:"patient_gender"`
	DoctorName     string  `json:"doctor_name"`
	Specialization *string `json:"specialization"`
	CreatedByName  *string `json:"created_by_name,omitempty"`
	CreatedByRole  *string `json:"created_by_role,omitempty"`
}

// BookingResult is the outcome of a booking. Warnings carry billing
// failures that did not abort the appointment itself.
type BookingResult struct {
	Appointment *Detail          `json:"appointment"`
	Patient     *patient.Patient `json:"patient"`
	Warnings    []string         `json:"warnings,omitempty"`
}

// ListFilter narrows appointment list queries. Date accepts the
// literal "today" or a YYYY-MM-DD value; Status "All" or "" means no
// status filter.
type ListFilter struct {
	Date   string
	Status string
	Search string
	Limit  int
	Offset int
}

const dateLayout = "2006-01-02"

// NormalizeDate accepts YYYY-MM-DD or an RFC 3339 timestamp and
// returns the calendar date.
func NormalizeDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, apperr.Validationf("invalid date, expected YYYY-MM-DD")
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// NormalizeTime converts a 12-hour clock value like "2:30 PM" to the
// 24-hour HH:MM:SS form the slot column stores. Values already in
// 24-hour form pass through.
func NormalizeTime(s string) (string, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if strings.Contains(s, "AM") || strings.Contains(s, "PM") {
		for _, layout := range []string{"3:04 PM", "3:04PM", "3:04:05 PM"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t.Format("15:04:05"), nil
			}
		}
		return "", apperr.Validationf("invalid time")
	}
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04:05"), nil
		}
	}
	return "", apperr.Validationf("invalid time")
}
