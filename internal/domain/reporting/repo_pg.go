package reporting

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/clinicdesk/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if q := db.ConnFromContext(ctx); q != nil {
		return q
	}
	return r.pool
}

func (r *repoPG) AdminStats(ctx context.Context) (*AdminStats, error) {
	q := r.conn(ctx)
	s := &AdminStats{ClinicStatus: "Active"}

	err := q.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM doctors WHERE status = 'Active'),
			(SELECT COUNT(*) FROM staff WHERE status = 'Active'),
			(SELECT COUNT(*) FROM patients),
			(SELECT COUNT(*) FROM appointments),
			(SELECT COALESCE(SUM(fee), 0) FROM appointments WHERE status = 'Completed')`,
	).Scan(&s.TotalDoctors, &s.TotalStaff, &s.TotalPatients, &s.TotalAppointments, &s.TotalPayments)
	if err != nil {
		return nil, err
	}

	err = q.QueryRow(ctx, "SELECT clinic_name FROM clinic_settings ORDER BY id LIMIT 1").Scan(&s.ClinicName)
	if errors.Is(err, pgx.ErrNoRows) {
		s.ClinicName = "My Clinic"
	} else if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *repoPG) StaffStats(ctx context.Context) (*StaffStats, error) {
	q := r.conn(ctx)
	s := &StaffStats{
		AppointmentTrends:  []*TrendPoint{},
		RecentAppointments: []*RecentAppointment{},
		RecentPatients:     []*RecentPatient{},
	}

	err := q.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM appointments WHERE appointment_date = CURRENT_DATE),
			(SELECT COUNT(*) FROM appointments WHERE status = 'Waiting'),
			(SELECT COUNT(*) FROM appointments WHERE status = 'Completed'),
			(SELECT COUNT(*) FROM patients),
			(SELECT COUNT(*) FROM appointments),
			(SELECT COALESCE(SUM(fee), 0) FROM appointments WHERE status = 'Completed')`,
	).Scan(&s.Stats.TodayTotal, &s.Stats.Waiting, &s.Stats.Completed,
		&s.Stats.TotalPatients, &s.Stats.TotalAppointmentsAllTime, &s.Stats.TotalEarnings)
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, `
		SELECT appointment_date, COUNT(*)
		FROM appointments
		WHERE appointment_date >= CURRENT_DATE - INTERVAL '6 days'
		GROUP BY appointment_date
		ORDER BY appointment_date ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var t TrendPoint
		if err := rows.Scan(&t.Date, &t.Count); err != nil {
			return nil, err
		}
		s.AppointmentTrends = append(s.AppointmentTrends, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	apptRows, err := q.Query(ctx, `
		SELECT a.id, a.appointment_time::text, a.status, a.appointment_date,
			p.name, d.name, u.name, u.role
		FROM appointments a
		JOIN patients p ON a.patient_id = p.id
		JOIN doctors d ON a.doctor_id = d.id
		LEFT JOIN users u ON a.created_by = u.id
		WHERE a.appointment_date = CURRENT_DATE
		ORDER BY a.appointment_time DESC
		LIMIT 8`)
	if err != nil {
		return nil, err
	}
	defer apptRows.Close()
	for apptRows.Next() {
		var ra RecentAppointment
		if err := apptRows.Scan(&ra.ID, &ra.Time, &ra.Status, &ra.Date,
			&ra.Patient, &ra.Doctor, &ra.CreatedByName, &ra.CreatedByRole); err != nil {
			return nil, err
		}
		s.RecentAppointments = append(s.RecentAppointments, &ra)
	}
	if err := apptRows.Err(); err != nil {
		return nil, err
	}

	ptRows, err := q.Query(ctx, `
		SELECT p.id, p.name, p.mobile, p.age, p.gender, p.registered_date,
			u.name, u.role,
			(SELECT COUNT(*) FROM appointments WHERE patient_id = p.id),
			(SELECT MAX(appointment_date) FROM appointments WHERE patient_id = p.id)
		FROM patients p
		LEFT JOIN users u ON p.created_by = u.id
		ORDER BY p.created_at DESC
		LIMIT 8`)
	if err != nil {
		return nil, err
	}
	defer ptRows.Close()
	for ptRows.Next() {
		var rp RecentPatient
		if err := ptRows.Scan(&rp.ID, &rp.Name, &rp.Mobile, &rp.Age, &rp.Gender, &rp.RegisteredDate,
			&rp.CreatedByName, &rp.CreatedByRole, &rp.AppointmentCount, &rp.LastAppointmentDate); err != nil {
			return nil, err
		}
		s.RecentPatients = append(s.RecentPatients, &rp)
	}
	return s, ptRows.Err()
}

func (r *repoPG) DoctorStats(ctx context.Context, doctorID int64) (*DoctorStats, error) {
	q := r.conn(ctx)
	s := &DoctorStats{NextAppointments: []*NextAppointment{}}

	err := q.QueryRow(ctx, `
		SELECT
			(SELECT COALESCE(SUM(amount), 0) FROM payments WHERE doctor_id = $1 AND status = 'Completed'),
			(SELECT COUNT(*) FROM appointments WHERE doctor_id = $1),
			(SELECT COUNT(*) FROM appointments WHERE doctor_id = $1 AND status = 'Waiting'),
			(SELECT COUNT(*) FROM appointments WHERE doctor_id = $1 AND status = 'Completed'),
			(SELECT COUNT(*) FROM appointments WHERE doctor_id = $1 AND appointment_date = CURRENT_DATE),
			(SELECT COUNT(*) FROM appointments WHERE appointment_date = CURRENT_DATE)`,
		doctorID,
	).Scan(&s.Stats.TotalEarnings, &s.Stats.TotalAppointments, &s.Stats.Pending,
		&s.Stats.Completed, &s.Stats.TodayTotal, &s.Stats.GlobalToday)
	if err != nil {
		return nil, err
	}

	// All of today's appointments, waiting first, so the list does not
	// look empty once visits complete.
	rows, err := q.Query(ctx, `
		SELECT a.id, a.appointment_time::text, a.reason, a.status,
			p.id, p.name, p.age, p.gender
		FROM appointments a
		JOIN patients p ON a.patient_id = p.id
		WHERE a.doctor_id = $1 AND a.appointment_date = CURRENT_DATE
		ORDER BY a.status DESC, a.appointment_time ASC
		LIMIT 8`,
		doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var na NextAppointment
		if err := rows.Scan(&na.ID, &na.Time, &na.Reason, &na.Status,
			&na.PatientID, &na.Patient, &na.Age, &na.Gender); err != nil {
			return nil, err
		}
		s.NextAppointments = append(s.NextAppointments, &na)
	}
	return s, rows.Err()
}
