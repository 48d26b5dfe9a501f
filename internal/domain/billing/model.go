// Package billing records payments and invoices for appointments.
// Patients pay at booking: a completed payment plus a generated
// invoice are written together when a fee is charged. Appointments
// billed outside that path are picked up by the sync operation.
package billing

import "time"

type Payment struct {
	ID            int64     `json:"id"`
	AppointmentID int64     `json:"appointment_id"`
	PatientID     int64     `json:"patient_id"`
	DoctorID      int64     `json:"doctor_id"`
	Amount        float64   `json:"amount"`
	PaymentDate   time.Time `json:"payment_date"`
	PaymentMethod string    `json:"payment_method"`
	Status        string    `json:"status"`
	Notes         *string   `json:"notes,omitempty"`
	CreatedBy     *int64    `json:"created_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// PaymentDetail is a payment joined with patient, doctor and
// appointment context for list views.
type PaymentDetail struct {
	Payment
	PatientName     string     `json:"patient_name"`
	PatientMobile   string     `json:"patient_mobile"`
	DoctorName      string     `json:"doctor_name"`
	Specialization  *string    `json:"specialization"`
	AppointmentDate *time.Time `json:"appointment_date,omitempty"`
	AppointmentTime *string    `json:"appointment_time,omitempty"`
	Reason          *string    `json:"reason,omitempty"`
}

type Invoice struct {
	ID            int64     `json:"id"`
	InvoiceNumber string    `json:"invoice_number"`
	AppointmentID int64     `json:"appointment_id"`
	PatientID     int64     `json:"patient_id"`
	DoctorID      int64     `json:"doctor_id"`
	Amount        float64   `json:"amount"`
	InvoiceDate   time.Time `json:"invoice_date"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// InvoiceDetail is an invoice joined with patient, doctor and
// appointment context; the print view adds patient demographics and
// the doctor's qualification.
type InvoiceDetail struct {
	Invoice
	PatientName     string     `json:"patient_name"`
	PatientMobile   string     `json:"patient_mobile"`
	PatientAge      *int       `json:"patient_age,omitempty"`
	PatientGender   *string    `json:"patient_gender,omitempty"`
	PatientAddress  *string    `json:"patient_address,omitempty"`
	DoctorName      string     `json:"doctor_name"`
	Specialization  *string    `json:"specialization"`
	Qualification   *string    `json:"qualification,omitempty"`
	AppointmentDate *time.Time `json:"appointment_date,omitempty"`
	AppointmentTime *string    `json:"appointment_time,omitempty"`
	Reason          *string    `json:"reason,omitempty"`
}

// LedgerEntry pairs a payment with the invoice generated for the same
// appointment, if any.
type LedgerEntry struct {
	PaymentID      int64     `json:"id"`
	AppointmentID  int64     `json:"appointment_id"`
	Amount         float64   `json:"amount"`
	PaymentDate    time.Time `json:"payment_date"`
	PaymentStatus  string    `json:"payment_status"`
	PatientName    string    `json:"patient_name"`
	PatientMobile  string    `json:"patient_mobile"`
	DoctorName     string    `json:"doctor_name"`
	Specialization *string   `json:"specialization"`
	InvoiceNumber  *string   `json:"invoice_number,omitempty"`
	InvoiceID      *int64    `json:"invoice_id,omitempty"`
}

// ApptBilling is the slice of an appointment that billing needs.
type ApptBilling struct {
	AppointmentID int64
	PatientID     int64
	DoctorID      int64
	Date          time.Time
	Fee           float64
}

// ClinicInfo is the clinic letterhead attached to printable invoices.
type ClinicInfo struct {
	ClinicName string  `json:"clinic_name"`
	Address    *string `json:"address"`
	Phone      *string `json:"phone"`
	Email      *string `json:"email"`
}
