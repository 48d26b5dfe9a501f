package scheduling

import (
	"context"
	"fmt"

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

const detailCols = `a.id, a.patient_id, a.doctor_id, a.appointment_date, a.appointment_time::text,
	a.reason, a.fee, a.status, a.created_by, a.created_at,
	p.name, p.mobile, p.age, p.gender,
	d.name, d.specialization,
	u.name, u.role`

const detailFrom = ` FROM appointments a
	JOIN patients p ON a.patient_id = p.id
	JOIN doctors d ON a.doctor_id = d.id
	LEFT JOIN users u ON a.created_by = u.id`

func scanDetail(row pgx.Row) (*Detail, error) {
	var dt Detail
	err := row.Scan(
		&dt.ID, &dt.PatientID, &dt.DoctorID, &dt.AppointmentDate, &dt.AppointmentTime,
		&dt.Reason, &dt.Fee, &dt.Status, &dt.CreatedBy, &dt.CreatedAt,
		&dt.PatientName, &dt.PatientMobile, &dt.PatientAge, &dt.PatientGender,
		&dt.DoctorName, &dt.Specialization,
		&dt.CreatedByName, &dt.CreatedByRole,
	)
	if err != nil {
		return nil, err
	}
	return &dt, nil
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO appointments (patient_id, doctor_id, appointment_date, appointment_time, reason, fee, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`,
		a.PatientID, a.DoctorID, a.AppointmentDate, a.AppointmentTime,
		a.Reason, a.Fee, a.Status, a.CreatedBy,
	).Scan(&a.ID, &a.CreatedAt)
}

func (r *repoPG) GetDetail(ctx context.Context, id int64) (*Detail, error) {
	return scanDetail(r.conn(ctx).QueryRow(ctx,
		"SELECT "+detailCols+detailFrom+" WHERE a.id = $1", id))
}

func (r *repoPG) SetStatus(ctx context.Context, id int64, status string) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE appointments SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) list(ctx context.Context, where string, args []interface{}, order string, limit, offset int) ([]*Detail, int, error) {
	var total int
	countQuery := "SELECT COUNT(*)" + detailFrom + where
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + detailCols + detailFrom + where +
		fmt.Sprintf("%s LIMIT $%d OFFSET $%d", order, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Detail
	for rows.Next() {
		dt, err := scanDetail(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, dt)
	}
	return items, total, rows.Err()
}

func dateClause(where string, args []interface{}, date string) (string, []interface{}) {
	if date == "today" {
		return where + " AND a.appointment_date = CURRENT_DATE", args
	}
	if date != "" {
		where += fmt.Sprintf(" AND a.appointment_date = $%d", len(args)+1)
		args = append(args, date)
	}
	return where, args
}

func statusClause(where string, args []interface{}, status string) (string, []interface{}) {
	if status != "" && status != "All" {
		where += fmt.Sprintf(" AND a.status = $%d", len(args)+1)
		args = append(args, status)
	}
	return where, args
}

func (r *repoPG) ListAdmin(ctx context.Context, f ListFilter) ([]*Detail, int, error) {
	where := " WHERE 1=1"
	var args []interface{}

	if f.Search != "" {
		where += fmt.Sprintf(" AND (p.name ILIKE $%d OR p.mobile LIKE $%d OR d.name ILIKE $%d)",
			len(args)+1, len(args)+1, len(args)+1)
		args = append(args, "%"+f.Search+"%")
	}
	where, args = statusClause(where, args, f.Status)
	where, args = dateClause(where, args, f.Date)

	return r.list(ctx, where, args,
		" ORDER BY a.appointment_date DESC, a.appointment_time DESC", f.Limit, f.Offset)
}

func (r *repoPG) ListStaff(ctx context.Context, f ListFilter) ([]*Detail, int, error) {
	where := " WHERE 1=1"
	var args []interface{}

	where, args = dateClause(where, args, f.Date)
	if f.Search != "" {
		where += fmt.Sprintf(" AND (p.name ILIKE $%d OR p.mobile LIKE $%d)", len(args)+1, len(args)+1)
		args = append(args, "%"+f.Search+"%")
	}
	where, args = statusClause(where, args, f.Status)

	return r.list(ctx, where, args,
		" ORDER BY a.appointment_date DESC, a.appointment_time ASC", f.Limit, f.Offset)
}

func (r *repoPG) ListForDoctor(ctx context.Context, doctorID int64, f ListFilter) ([]*Detail, int, error) {
	where := " WHERE a.doctor_id = $1"
	args := []interface{}{doctorID}

	where, args = dateClause(where, args, f.Date)
	where, args = statusClause(where, args, f.Status)
	if f.Search != "" {
		where += fmt.Sprintf(" AND p.name ILIKE $%d", len(args)+1)
		args = append(args, "%"+f.Search+"%")
	}

	return r.list(ctx, where, args,
		" ORDER BY a.appointment_date DESC, a.appointment_time ASC", f.Limit, f.Offset)
}

func (r *repoPG) TodayForDoctor(ctx context.Context, doctorID int64, f ListFilter) (*TodayList, error) {
	where := " WHERE a.doctor_id = $1 AND a.appointment_date = CURRENT_DATE"
	args := []interface{}{doctorID}

	if f.Search != "" {
		where += fmt.Sprintf(" AND p.name ILIKE $%d", len(args)+1)
		args = append(args, "%"+f.Search+"%")
	}
	where, args = statusClause(where, args, f.Status)

	items, total, err := r.list(ctx, where, args, " ORDER BY a.appointment_time ASC", f.Limit, f.Offset)
	if err != nil {
		return nil, err
	}

	// Pending counts the whole day, not just the current page.
	var pending int
	err = r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM appointments
		WHERE doctor_id = $1 AND appointment_date = CURRENT_DATE AND status = $2`,
		doctorID, StatusWaiting).Scan(&pending)
	if err != nil {
		return nil, err
	}

	return &TodayList{Appointments: items, Total: total, Pending: pending}, nil
}
