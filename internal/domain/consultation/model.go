// Package consultation records what happens in the exam room: clinical
// notes per appointment, visit numbering, prior-visit history, print
// data for prescriptions, and reusable note templates.
package consultation

import (
	"encoding/json"
	"time"

	"github.com/clinicdesk/clinicdesk/internal/domain/media"
	"github.com/clinicdesk/clinicdesk/internal/domain/patient"
)

const (
	historyLimit = 10
	recentLimit  = 50
)

type Consultation struct {
	ID              int64           `json:"id"`
	AppointmentID   int64           `json:"appointment_id"`
	PatientID       int64           `json:"patient_id"`
	DoctorID        int64           `json:"doctor_id"`
	VisitNumber     int             `json:"visit_number"`
	ChiefComplaints *string         `json:"chief_complaints"`
	Comorbidities   *string         `json:"comorbidities"`
	ImagingFindings *string         `json:"imaging_findings"`
	Diagnosis       *string         `json:"diagnosis"`
	TreatmentPlan   *string         `json:"treatment_plan"`
	FollowUpNotes   *string         `json:"follow_up_notes"`
	Vitals          json.RawMessage `json:"vitals,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ApptInfo is the appointment slice the recorder works against.
type ApptInfo struct {
	ID              int64     `json:"id"`
	PatientID       int64     `json:"-"`
	DoctorID        int64     `json:"-"`
	AppointmentDate time.Time `json:"appointment_date"`
	AppointmentTime string    `json:"appointment_time"`
	Reason          *string   `json:"reason"`
	Status          string    `json:"status"`
	Fee             float64   `json:"-"`
}

// HistoryNotes is the note subset shown in the prior-visit timeline.
type HistoryNotes struct {
	ChiefComplaints *string `json:"chiefComplaints"`
	Diagnosis       *string `json:"diagnosis"`
	TreatmentPlan   *string `json:"treatmentPlan"`
}

type HistoryEntry struct {
	ConsultationID  int64        `json:"consultation_id"`
	AppointmentID   int64        `json:"appointment_id"`
	AppointmentDate time.Time    `json:"appointment_date"`
	VisitNumber     int          `json:"visit_number"`
	VisitLabel      string       `json:"visit_label"`
	Notes           HistoryNotes `json:"notes"`
}

// VisitLabelFor names a visit by its ordinal.
func VisitLabelFor(visitNumber int) string {
	if visitNumber > 1 {
		return "Follow-up"
	}
	return "Initial Consultation"
}

// Workspace is everything the exam screen needs for one appointment.
type Workspace struct {
	Patient     *patient.Patient `json:"patient"`
	Appointment *ApptInfo        `json:"appointment"`
	History     []*HistoryEntry  `json:"history"`
	Existing    *Consultation    `json:"existingConsultation"`
	MediaFiles  []*media.File    `json:"mediaFiles"`
}

// RecentEntry is one row in the recent-consultations feed.
type RecentEntry struct {
	Consultation
	PatientName     string    `json:"patient_name"`
	DoctorName      string    `json:"doctor_name"`
	AppointmentDate time.Time `json:"appointment_date"`
	AppointmentTime string    `json:"appointment_time"`
}

// FullHistoryEntry is a complete consultation with appointment context,
// used by the patient full-history view.
type FullHistoryEntry struct {
	Consultation
	AppointmentDate time.Time `json:"appointment_date"`
	AppointmentTime string    `json:"appointment_time"`
	DoctorName      string    `json:"doctor_name"`
}

// PrintData carries what a printed prescription shows. Consultation is
// nil when the patient's latest appointment has no notes yet.
type PrintData struct {
	Consultation    *Consultation `json:"consultation"`
	AppointmentDate time.Time     `json:"appointment_date"`
	AppointmentTime string        `json:"appointment_time"`
	PatientName     string        `json:"patient_name"`
	PatientAge      *int          `json:"patient_age"`
	PatientGender   string        `json:"patient_gender"`
	PatientMobile   string        `json:"patient_mobile"`
	DoctorName      string        `json:"doctor_name"`
	Specialization  *string       `json:"specialization"`
}

type Template struct {
	ID        int64     `json:"id"`
	DoctorID  int64     `json:"doctor_id"`
	FieldType string    `json:"field_type"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
