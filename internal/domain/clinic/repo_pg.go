package clinic

import (
	"context"
	"errors"
	"fmt"
	"strings"

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

const settingsCols = `id, clinic_name, address, phone, email, logo_url, signature_url,
	print_header, print_header_footer,
	header_margin_top, header_margin_bottom, footer_margin_top, footer_margin_bottom,
	page_margin_left, page_margin_right, updated_at`

func scanSettings(row pgx.Row) (*Settings, error) {
	var s Settings
	err := row.Scan(
		&s.ID, &s.ClinicName, &s.Address, &s.Phone, &s.Email, &s.LogoURL, &s.SignatureURL,
		&s.PrintHeader, &s.PrintHeaderFooter,
		&s.HeaderMarginTop, &s.HeaderMarginBottom, &s.FooterMarginTop, &s.FooterMarginBottom,
		&s.PageMarginLeft, &s.PageMarginRight, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repoPG) Get(ctx context.Context) (*Settings, error) {
	s, err := scanSettings(r.conn(ctx).QueryRow(ctx,
		`SELECT `+settingsCols+` FROM clinic_settings ORDER BY id LIMIT 1`))
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	return scanSettings(r.conn(ctx).QueryRow(ctx,
		`INSERT INTO clinic_settings (clinic_name) VALUES ($1) RETURNING `+settingsCols,
		DefaultClinicName))
}

func (r *repoPG) Apply(ctx context.Context, p Patch) error {
	var sets []string
	var args []interface{}

	add := func(col string, v interface{}) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if p.ClinicName != nil {
		add("clinic_name", *p.ClinicName)
	}
	if p.Address != nil {
		add("address", *p.Address)
	}
	if p.Phone != nil {
		add("phone", *p.Phone)
	}
	if p.Email != nil {
		add("email", *p.Email)
	}
	if p.PrintHeader != nil {
		add("print_header", *p.PrintHeader)
	}
	if p.PrintHeaderFooter != nil {
		add("print_header_footer", *p.PrintHeaderFooter)
	}
	if p.HeaderMarginTop != nil {
		add("header_margin_top", *p.HeaderMarginTop)
	}
	if p.HeaderMarginBottom != nil {
		add("header_margin_bottom", *p.HeaderMarginBottom)
	}
	if p.FooterMarginTop != nil {
		add("footer_margin_top", *p.FooterMarginTop)
	}
	if p.FooterMarginBottom != nil {
		add("footer_margin_bottom", *p.FooterMarginBottom)
	}
	if p.PageMarginLeft != nil {
		add("page_margin_left", *p.PageMarginLeft)
	}
	if p.PageMarginRight != nil {
		add("page_margin_right", *p.PageMarginRight)
	}
	if len(sets) == 0 {
		return nil
	}

	query := fmt.Sprintf(`UPDATE clinic_settings SET %s, updated_at = NOW()
		WHERE id = (SELECT id FROM clinic_settings ORDER BY id LIMIT 1)`,
		strings.Join(sets, ", "))
	_, err := r.conn(ctx).Exec(ctx, query, args...)
	return err
}

func (r *repoPG) SetLogoURL(ctx context.Context, url string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE clinic_settings SET logo_url = $1, updated_at = NOW()
		WHERE id = (SELECT id FROM clinic_settings ORDER BY id LIMIT 1)`, url)
	return err
}

func (r *repoPG) SetSignatureURL(ctx context.Context, url string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE clinic_settings SET signature_url = $1, updated_at = NOW()
		WHERE id = (SELECT id FROM clinic_settings ORDER BY id LIMIT 1)`, url)
	return err
}
