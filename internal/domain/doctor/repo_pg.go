package doctor

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
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

const doctorCols = `id, user_id, name, mobile, email, specialization, qualification,
	consultation_fee, username, status, created_at`

func (r *repoPG) scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.UserID, &d.Name, &d.Mobile, &d.Email, &d.Specialization,
		&d.Qualification, &d.ConsultationFee, &d.Username, &d.Status, &d.CreatedAt)
	return &d, err
}

func (r *repoPG) CreateWithAccount(ctx context.Context, d *Doctor, passwordHash string) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		c := r.conn(ctx)

		var userID int64
		if err := c.QueryRow(ctx, `
			INSERT INTO users (email, password, name, role, status)
			VALUES ($1,$2,$3,$4,$5)
			RETURNING id`,
			d.Email, passwordHash, d.Name, auth.RoleDoctor, d.Status).Scan(&userID); err != nil {
			return err
		}
		d.UserID = &userID

		return c.QueryRow(ctx, `
			INSERT INTO doctors (user_id, name, mobile, email, specialization, qualification,
			                     consultation_fee, username, status)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
			RETURNING id, created_at`,
			userID, d.Name, d.Mobile, d.Email, d.Specialization, d.Qualification,
			d.ConsultationFee, d.Username, d.Status).Scan(&d.ID, &d.CreatedAt)
	})
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Doctor, error) {
	return r.scanDoctor(r.conn(ctx).QueryRow(ctx, `SELECT `+doctorCols+` FROM doctors WHERE id = $1`, id))
}

func (r *repoPG) GetByUserID(ctx context.Context, userID int64) (*Doctor, error) {
	return r.scanDoctor(r.conn(ctx).QueryRow(ctx, `SELECT `+doctorCols+` FROM doctors WHERE user_id = $1`, userID))
}

func (r *repoPG) ExistsUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM doctors WHERE username = $1 OR email = $2
			UNION ALL
			SELECT 1 FROM users WHERE email = $2
		)`, username, email).Scan(&exists)
	return exists, err
}

func (r *repoPG) Update(ctx context.Context, d *Doctor, passwordHash string) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		c := r.conn(ctx)

		tag, err := c.Exec(ctx, `
			UPDATE doctors SET name=$2, mobile=$3, email=$4, specialization=$5, qualification=$6,
			       consultation_fee=$7, username=$8, status=$9
			WHERE id = $1`,
			d.ID, d.Name, d.Mobile, d.Email, d.Specialization, d.Qualification,
			d.ConsultationFee, d.Username, d.Status)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}

		if d.UserID == nil {
			return nil
		}
		if passwordHash != "" {
			_, err = c.Exec(ctx, `UPDATE users SET email=$2, name=$3, status=$4, password=$5 WHERE id = $1`,
				*d.UserID, d.Email, d.Name, d.Status, passwordHash)
		} else {
			_, err = c.Exec(ctx, `UPDATE users SET email=$2, name=$3, status=$4 WHERE id = $1`,
				*d.UserID, d.Email, d.Name, d.Status)
		}
		return err
	})
}

func (r *repoPG) DeleteWithAccount(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		c := r.conn(ctx)

		var userID *int64
		if err := c.QueryRow(ctx, `SELECT user_id FROM doctors WHERE id = $1`, id).Scan(&userID); err != nil {
			return err
		}
		if _, err := c.Exec(ctx, `DELETE FROM doctors WHERE id = $1`, id); err != nil {
			return err
		}
		if userID != nil {
			if _, err := c.Exec(ctx, `DELETE FROM users WHERE id = $1`, *userID); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repoPG) SetStatus(ctx context.Context, id int64, status string) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		c := r.conn(ctx)

		var userID *int64
		err := c.QueryRow(ctx, `
			UPDATE doctors SET status = $2 WHERE id = $1 RETURNING user_id`,
			id, status).Scan(&userID)
		if err != nil {
			return err
		}
		if userID != nil {
			_, err = c.Exec(ctx, `UPDATE users SET status = $2 WHERE id = $1`, *userID, status)
		}
		return err
	})
}

func (r *repoPG) List(ctx context.Context, search string, limit, offset int) ([]*Doctor, int, error) {
	cols := `d.id, d.user_id, d.name, d.mobile, d.email, d.specialization, d.qualification,
		d.consultation_fee, d.username, d.status, d.created_at`
	query := `SELECT ` + cols + ` FROM doctors d WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM doctors d WHERE 1=1`
	var args []interface{}
	idx := 1

	if search != "" {
		clause := fmt.Sprintf(` AND (d.name ILIKE $%d OR d.mobile LIKE $%d OR d.email ILIKE $%d)`, idx, idx, idx)
		query += clause
		countQuery += clause
		args = append(args, "%"+search+"%")
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY d.created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Doctor
	for rows.Next() {
		d, err := r.scanDoctor(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, rows.Err()
}

func (r *repoPG) Available(ctx context.Context) ([]*Ref, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, name, specialization, COALESCE(consultation_fee, 0)
		FROM doctors WHERE status = 'Active' ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Ref
	for rows.Next() {
		var ref Ref
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.Specialization, &ref.ConsultationFee); err != nil {
			return nil, err
		}
		items = append(items, &ref)
	}
	return items, rows.Err()
}

func (r *repoPG) Specializations(ctx context.Context) ([]string, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT DISTINCT specialization FROM doctors
		WHERE specialization IS NOT NULL AND specialization <> ''
		ORDER BY specialization`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r *repoPG) Patients(ctx context.Context, doctorID int64, search string, limit, offset int) ([]*PatientSummary, int, error) {
	query := `
		SELECT p.id, p.name, p.mobile, p.age, p.gender,
		       COUNT(DISTINCT a.id) AS total_appointments,
		       MAX(a.appointment_date) AS last_appointment_date,
		       (SELECT c.diagnosis FROM consultations c
		        WHERE c.patient_id = p.id AND c.doctor_id = $1
		        ORDER BY c.id DESC LIMIT 1) AS last_diagnosis
		FROM patients p
		JOIN appointments a ON p.id = a.patient_id
		WHERE a.doctor_id = $1`
	countQuery := `
		SELECT COUNT(DISTINCT p.id)
		FROM patients p
		JOIN appointments a ON p.id = a.patient_id
		WHERE a.doctor_id = $1`
	args := []interface{}{doctorID}
	idx := 2

	if search != "" {
		clause := fmt.Sprintf(` AND (p.name ILIKE $%d OR p.mobile LIKE $%d)`, idx, idx)
		query += clause
		countQuery += clause
		args = append(args, "%"+search+"%")
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` GROUP BY p.id ORDER BY last_appointment_date DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*PatientSummary
	for rows.Next() {
		var ps PatientSummary
		if err := rows.Scan(&ps.ID, &ps.Name, &ps.Mobile, &ps.Age, &ps.Gender,
			&ps.TotalAppointments, &ps.LastAppointmentDate, &ps.LastDiagnosis); err != nil {
			return nil, 0, err
		}
		items = append(items, &ps)
	}
	return items, total, rows.Err()
}
