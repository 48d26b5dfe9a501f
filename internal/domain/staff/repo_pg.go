package staff

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

const staffCols = `s.id, s.user_id, s.name, s.mobile, u.email, s.username, s.status, s.created_at`

const staffFrom = ` FROM staff s LEFT JOIN users u ON s.user_id = u.id`

func (r *repoPG) scanStaff(row pgx.Row) (*Staff, error) {
	var s Staff
	err := row.Scan(&s.ID, &s.UserID, &s.Name, &s.Mobile, &s.Email, &s.Username, &s.Status, &s.CreatedAt)
	return &s, err
}

func (r *repoPG) CreateWithAccount(ctx context.Context, s *Staff, passwordHash string) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		c := r.conn(ctx)

		var userID int64
		if err := c.QueryRow(ctx, `
			INSERT INTO users (email, password, name, role, status)
			VALUES ($1,$2,$3,$4,$5)
			RETURNING id`,
			s.Email, passwordHash, s.Name, auth.RoleStaff, s.Status).Scan(&userID); err != nil {
			return err
		}
		s.UserID = &userID

		// username mirrors the email for older clients.
		return c.QueryRow(ctx, `
			INSERT INTO staff (user_id, name, mobile, username, status)
			VALUES ($1,$2,$3,$4,$5)
			RETURNING id, created_at`,
			userID, s.Name, s.Mobile, s.Email, s.Status).Scan(&s.ID, &s.CreatedAt)
	})
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Staff, error) {
	return r.scanStaff(r.conn(ctx).QueryRow(ctx, `SELECT `+staffCols+staffFrom+` WHERE s.id = $1`, id))
}

func (r *repoPG) GetByUserID(ctx context.Context, userID int64) (*Staff, error) {
	return r.scanStaff(r.conn(ctx).QueryRow(ctx, `SELECT `+staffCols+staffFrom+` WHERE s.user_id = $1`, userID))
}

func (r *repoPG) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

func (r *repoPG) Update(ctx context.Context, s *Staff, passwordHash string) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		c := r.conn(ctx)

		tag, err := c.Exec(ctx, `
			UPDATE staff SET name=$2, mobile=$3, username=$4, status=$5 WHERE id = $1`,
			s.ID, s.Name, s.Mobile, s.Email, s.Status)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}

		if s.UserID == nil {
			return nil
		}
		if passwordHash != "" {
			_, err = c.Exec(ctx, `UPDATE users SET name=$2, email=$3, status=$4, password=$5 WHERE id = $1`,
				*s.UserID, s.Name, s.Email, s.Status, passwordHash)
		} else {
			_, err = c.Exec(ctx, `UPDATE users SET name=$2, email=$3, status=$4 WHERE id = $1`,
				*s.UserID, s.Name, s.Email, s.Status)
		}
		return err
	})
}

func (r *repoPG) DeleteWithAccount(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context) error {
		c := r.conn(ctx)

		var userID *int64
		if err := c.QueryRow(ctx, `SELECT user_id FROM staff WHERE id = $1`, id).Scan(&userID); err != nil {
			return err
		}
		if _, err := c.Exec(ctx, `DELETE FROM staff WHERE id = $1`, id); err != nil {
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
			UPDATE staff SET status = $2 WHERE id = $1 RETURNING user_id`,
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

func (r *repoPG) List(ctx context.Context, search string, limit, offset int) ([]*Staff, int, error) {
	query := `SELECT ` + staffCols + staffFrom + ` WHERE 1=1`
	countQuery := `SELECT COUNT(*)` + staffFrom + ` WHERE 1=1`
	var args []interface{}
	idx := 1

	if search != "" {
		clause := fmt.Sprintf(` AND (s.name ILIKE $%d OR s.mobile LIKE $%d OR u.email ILIKE $%d)`, idx, idx, idx)
		query += clause
		countQuery += clause
		args = append(args, "%"+search+"%")
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY s.created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Staff
	for rows.Next() {
		s, err := r.scanStaff(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}

func (r *repoPG) Patients(ctx context.Context, staffUserID int64, search string, limit, offset int) ([]*PatientSummary, int, error) {
	query := `
		SELECT p.id, p.name, p.mobile, p.age, p.gender,
		       COUNT(DISTINCT a.id) AS total_appointments,
		       MAX(a.appointment_date) AS last_appointment_date,
		       COUNT(DISTINCT a.doctor_id) AS doctors_seen
		FROM patients p
		JOIN appointments a ON p.id = a.patient_id
		WHERE a.created_by = $1`
	countQuery := `
		SELECT COUNT(DISTINCT p.id)
		FROM patients p
		JOIN appointments a ON p.id = a.patient_id
		WHERE a.created_by = $1`
	args := []interface{}{staffUserID}
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
			&ps.TotalAppointments, &ps.LastAppointmentDate, &ps.DoctorsSeen); err != nil {
			return nil, 0, err
		}
		items = append(items, &ps)
	}
	return items, total, rows.Err()
}
