// Package clinic manages the single clinic profile row: the
// letterhead shown on invoices and printed notes, plus the print
// layout margins doctors can tune.
package clinic

import "time"

type Settings struct {
	ID                 int64     `json:"id"`
	ClinicName         string    `json:"clinic_name"`
	Address            *string   `json:"address"`
	Phone              *string   `json:"phone"`
	Email              *string   `json:"email"`
	LogoURL            *string   `json:"logo_url"`
	SignatureURL       *string   `json:"signature_url"`
	PrintHeader        *string   `json:"print_header"`
	PrintHeaderFooter  bool      `json:"print_header_footer"`
	HeaderMarginTop    int       `json:"header_margin_top"`
	HeaderMarginBottom int       `json:"header_margin_bottom"`
	FooterMarginTop    int       `json:"footer_margin_top"`
	FooterMarginBottom int       `json:"footer_margin_bottom"`
	PageMarginLeft     int       `json:"page_margin_left"`
	PageMarginRight    int       `json:"page_margin_right"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// DefaultClinicName seeds the settings row on first read.
const DefaultClinicName = "My Clinic"
