// Package identity owns login accounts and the auth endpoints: login,
// current-user lookup, profile updates and password changes. Doctor
// and staff profile rows are managed by their own packages; identity
// only reads them to enrich tokens and responses.
package identity

import "time"

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// DoctorLink is the doctor profile summary attached to DOCTOR logins.
type DoctorLink struct {
	ID             int64   `json:"doctorId"`
	Specialization *string `json:"specialization"`
	Qualification  *string `json:"qualification"`
	Mobile         *string `json:"mobile"`
}

// StaffLink is the staff profile summary attached to STAFF logins.
type StaffLink struct {
	ID     int64   `json:"staffId"`
	Mobile *string `json:"mobile"`
}

// Profile is the role-enriched account shape returned by login and me.
type Profile struct {
	ID             int64   `json:"id"`
	Email          string  `json:"email"`
	Name           string  `json:"name"`
	Role           string  `json:"role"`
	DoctorID       *int64  `json:"doctorId,omitempty"`
	Specialization *string `json:"specialization,omitempty"`
	Qualification  *string `json:"qualification,omitempty"`
	StaffID        *int64  `json:"staffId,omitempty"`
	Mobile         *string `json:"mobile,omitempty"`
}

// LoginResult carries the signed token and the profile it represents.
type LoginResult struct {
	Token string   `json:"token"`
	User  *Profile `json:"user"`
}
