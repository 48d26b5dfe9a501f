// Package reporting serves the role dashboards. Everything here is
// read-side aggregation; each role has its own query set.
package reporting

import "time"

type AdminStats struct {
	TotalDoctors      int     `json:"totalDoctors"`
	TotalStaff        int     `json:"totalStaff"`
	TotalPatients     int     `json:"totalPatients"`
	TotalAppointments int     `json:"totalAppointments"`
	TotalPayments     float64 `json:"totalPayments"`
	ClinicStatus      string  `json:"clinicStatus"`
	ClinicName        string  `json:"clinicName"`
}

// TrendPoint is one day in the 7-day appointment graph.
type TrendPoint struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

type RecentAppointment struct {
	ID            int64     `json:"id"`
	Time          string    `json:"time"`
	Status        string    `json:"status"`
	Date          time.Time `json:"date"`
	Patient       string    `json:"patient"`
	Doctor        string    `json:"doctor"`
	CreatedByName *string   `json:"created_by_name"`
	CreatedByRole *string   `json:"created_by_role"`
}

type RecentPatient struct {
	ID                  int64      `json:"id"`
	Name                string     `json:"name"`
	Mobile              string     `json:"mobile"`
	Age                 *int       `json:"age"`
	Gender              string     `json:"gender"`
	RegisteredDate      time.Time  `json:"registered_date"`
	CreatedByName       *string    `json:"created_by_name"`
	CreatedByRole       *string    `json:"created_by_role"`
	AppointmentCount    int        `json:"appointmentCount"`
	LastAppointmentDate *time.Time `json:"lastAppointmentDate"`
}

type StaffCounters struct {
	TodayTotal               int     `json:"todayTotal"`
	Waiting                  int     `json:"waiting"`
	Completed                int     `json:"completed"`
	TotalPatients            int     `json:"totalPatients"`
	TotalAppointmentsAllTime int     `json:"totalAppointmentsAllTime"`
	TotalEarnings            float64 `json:"totalEarnings"`
}

type StaffStats struct {
	Stats              StaffCounters        `json:"stats"`
	AppointmentTrends  []*TrendPoint        `json:"appointmentTrends"`
	RecentAppointments []*RecentAppointment `json:"recentAppointments"`
	RecentPatients     []*RecentPatient     `json:"recentPatients"`
}

type DoctorCounters struct {
	TotalEarnings     float64 `json:"totalEarnings"`
	TotalAppointments int     `json:"totalAppointments"`
	Pending           int     `json:"pending"`
	Completed         int     `json:"completed"`
	TodayTotal        int     `json:"todayTotal"`
	GlobalToday       int     `json:"globalToday"`
}

type NextAppointment struct {
	ID        int64   `json:"id"`
	Time      string  `json:"time"`
	Reason    *string `json:"reason"`
	Status    string  `json:"status"`
	PatientID int64   `json:"patient_id"`
	Patient   string  `json:"patient"`
	Age       *int    `json:"age"`
	Gender    string  `json:"gender"`
}

type DoctorStats struct {
	Stats            DoctorCounters     `json:"stats"`
	NextAppointments []*NextAppointment `json:"nextAppointments"`
}
