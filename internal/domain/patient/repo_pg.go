package patient

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/clinicdesk/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const patientCols = `id, name, mobile, age, gender, blood_group, address,
	registered_date, total_visits, last_visit, created_by, created_at`

func (r *repoPG) scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.Name, &p.Mobile, &p.Age, &p.Gender, &p.BloodGroup, &p.Address,
		&p.RegisteredDate, &p.TotalVisits, &p.LastVisit, &p.CreatedBy, &p.CreatedAt)
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patients (name, mobile, age, gender, blood_group, address, registered_date, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,CURRENT_DATE,$7)
		RETURNING id, registered_date, total_visits, created_at`,
		p.Name, p.Mobile, p.Age, p.Gender, p.BloodGroup, p.Address, p.CreatedBy).
		Scan(&p.ID, &p.RegisteredDate, &p.TotalVisits, &p.CreatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Patient, error) {
	return r.scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
}

func (r *repoPG) GetByMobile(ctx context.Context, mobile string) (*Patient, error) {
	return r.scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE mobile = $1`, mobile))
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET name=$2, mobile=$3, age=$4, gender=$5, blood_group=$6, address=$7
		WHERE id = $1`,
		p.ID, p.Name, p.Mobile, p.Age, p.Gender, p.BloodGroup, p.Address)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, search string, limit, offset int) ([]*Patient, int, error) {
	query := `SELECT ` + patientCols + ` FROM patients WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM patients WHERE 1=1`
	var args []interface{}
	idx := 1

	if search != "" {
		clause := fmt.Sprintf(` AND (name ILIKE $%d OR mobile LIKE $%d)`, idx, idx)
		query += clause
		countQuery += clause
		args = append(args, "%"+search+"%")
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := r.scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func (r *repoPG) HasAppointments(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM appointments WHERE patient_id = $1)`, id).Scan(&exists)
	return exists, err
}

// RecordVisit bumps the visit counter and stamps the last visit in one
// statement so concurrent bookings never lose an increment.
func (r *repoPG) RecordVisit(ctx context.Context, id int64, visitDate time.Time) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE patients SET total_visits = total_visits + 1, last_visit = $2 WHERE id = $1`,
		id, visitDate)
	return err
}

func (r *repoPG) SetLastVisit(ctx context.Context, id int64, visitDate time.Time) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE patients SET last_visit = $2 WHERE id = $1`, id, visitDate)
	return err
}

func (r *repoPG) History(ctx context.Context, patientID int64) ([]*HistoryEntry, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT c.id, c.appointment_id, a.appointment_date, a.appointment_time::text, a.reason,
		       d.name, c.visit_number, c.chief_complaints, c.diagnosis, c.treatment_plan, c.created_at
		FROM consultations c
		JOIN appointments a ON c.appointment_id = a.id
		JOIN doctors d ON c.doctor_id = d.id
		WHERE c.patient_id = $1
		ORDER BY c.created_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*HistoryEntry
	for rows.Next() {
		var h HistoryEntry
		if err := rows.Scan(&h.ConsultationID, &h.AppointmentID, &h.AppointmentDate, &h.AppointmentTime,
			&h.Reason, &h.DoctorName, &h.VisitNumber, &h.ChiefComplaints, &h.Diagnosis,
			&h.TreatmentPlan, &h.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &h)
	}
	return items, rows.Err()
}
