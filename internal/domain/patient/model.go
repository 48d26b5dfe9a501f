// Package patient manages the clinic's patient registry. Mobile numbers
// are the dedup key: walk-in registration and booking both resolve a
// patient by mobile before creating a new row.
package patient

import (
	"strings"
	"time"
	"unicode"

	"github.com/clinicdesk/clinicdesk/pkg/apperr"
)

type Patient struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Mobile         string     `json:"mobile"`
	Age            *int       `json:"age"`
	Gender         string     `json:"gender"`
	BloodGroup     *string    `json:"blood_group,omitempty"`
	Address        *string    `json:"address"`
	RegisteredDate time.Time  `json:"registered_date"`
	TotalVisits    int        `json:"total_visits"`
	LastVisit      *time.Time `json:"last_visit"`
	CreatedBy      *int64     `json:"created_by,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// HistoryEntry is one consultation row in a patient's visit history.
type HistoryEntry struct {
	ConsultationID  int64     `json:"consultation_id"`
	AppointmentID   int64     `json:"appointment_id"`
	AppointmentDate time.Time `json:"appointment_date"`
	AppointmentTime string    `json:"appointment_time"`
	Reason          *string   `json:"reason"`
	DoctorName      string    `json:"doctor_name"`
	VisitNumber     int       `json:"visit_number"`
	ChiefComplaints *string   `json:"chief_complaints"`
	Diagnosis       *string   `json:"diagnosis"`
	TreatmentPlan   *string   `json:"treatment_plan"`
	CreatedAt       time.Time `json:"created_at"`
}

const DefaultGender = "Male"

// NormalizeMobile strips every non-digit rune and requires exactly ten
// digits, matching the registration rules.
func NormalizeMobile(mobile string) (string, error) {
	var b strings.Builder
	for _, r := range mobile {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) != 10 {
		return "", apperr.Validationf("mobile number must be exactly 10 digits")
	}
	return digits, nil
}
