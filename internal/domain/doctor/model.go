// Package doctor manages doctor profiles and their linked login
// accounts. Creating a doctor provisions a DOCTOR user in the same
// transaction; deleting one removes both rows.
package doctor

import "time"

// DefaultSpecialization is assigned when a doctor is added without one.
const DefaultSpecialization = "General Medicine"

type Doctor struct {
	ID              int64     `json:"id"`
	UserID          *int64    `json:"user_id,omitempty"`
	Name            string    `json:"name"`
	Mobile          *string   `json:"mobile"`
	Email           *string   `json:"email"`
	Specialization  *string   `json:"specialization"`
	Qualification   *string   `json:"qualification,omitempty"`
	ConsultationFee float64   `json:"consultation_fee"`
	Username        *string   `json:"username,omitempty"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

// Ref is the compact shape used by booking dropdowns.
type Ref struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Specialization  *string `json:"specialization"`
	ConsultationFee float64 `json:"consultation_fee"`
}

// PatientSummary is a patient seen by a doctor, annotated with their
// appointment history against that doctor.
type PatientSummary struct {
	ID                  int64      `json:"id"`
	Name                string     `json:"name"`
	Mobile              string     `json:"mobile"`
	Age                 *int       `json:"age"`
	Gender              string     `json:"gender"`
	TotalAppointments   int        `json:"total_appointments"`
	LastAppointmentDate *time.Time `json:"last_appointment_date"`
	LastDiagnosis       *string    `json:"last_diagnosis"`
}
