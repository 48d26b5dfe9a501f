package clinic

import "context"

// Patch holds the column updates of a partial settings write. Nil
// fields are left untouched.
type Patch struct {
	ClinicName         *string
	Address            *string
	Phone              *string
	Email              *string
	PrintHeader        *string
	PrintHeaderFooter  *bool
	HeaderMarginTop    *int
	HeaderMarginBottom *int
	FooterMarginTop    *int
	FooterMarginBottom *int
	PageMarginLeft     *int
	PageMarginRight    *int
}

func (p Patch) Empty() bool {
	return p.ClinicName == nil && p.Address == nil && p.Phone == nil && p.Email == nil &&
		p.PrintHeader == nil && p.PrintHeaderFooter == nil &&
		p.HeaderMarginTop == nil && p.HeaderMarginBottom == nil &&
		p.FooterMarginTop == nil && p.FooterMarginBottom == nil &&
		p.PageMarginLeft == nil && p.PageMarginRight == nil
}

type Repository interface {
	// Get returns the settings row, creating the default one on first
	// read.
	Get(ctx context.Context) (*Settings, error)
	Apply(ctx context.Context, p Patch) error
	SetLogoURL(ctx context.Context, url string) error
	SetSignatureURL(ctx context.Context, url string) error
}
