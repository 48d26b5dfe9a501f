// Package staff manages front-desk staff profiles and their linked
// STAFF login accounts. The staff row keeps the email in its username
// column; the authoritative email lives on the users row.
package staff

import "time"

type Staff struct {
	ID        int64     `json:"id"`
	UserID    *int64    `json:"user_id,omitempty"`
	Name      string    `json:"name"`
	Mobile    *string   `json:"mobile"`
	Email     *string   `json:"email"`
	Username  *string   `json:"username,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// PatientSummary is a patient whose appointments were booked by a
// staff member.
type PatientSummary struct {
	ID                  int64      `json:"id"`
	Name                string     `json:"name"`
	Mobile              string     `json:"mobile"`
	Age                 *int       `json:"age"`
	Gender              string     `json:"gender"`
	TotalAppointments   int        `json:"total_appointments"`
	LastAppointmentDate *time.Time `json:"last_appointment_date"`
	DoctorsSeen         int        `json:"doctors_seen"`
}
