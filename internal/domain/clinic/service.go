package clinic

import (
	"context"
	"fmt"
	"io"

	"github.com/clinicdesk/clinicdesk/internal/platform/blobstore"
	"github.com/clinicdesk/clinicdesk/pkg/apperr"
)

type Service struct {
	repo  Repository
	store blobstore.BlobStore
}

func NewService(repo Repository, store blobstore.BlobStore) *Service {
	return &Service{repo: repo, store: store}
}

// Current returns the clinic profile, seeding the default row on
// first read.
func (s *Service) Current(ctx context.Context) (*Settings, error) {
	return s.repo.Get(ctx)
}

type UpdateInput struct {
	ClinicName        *string `json:"clinic_name"`
	Address           *string `json:"address"`
	Phone             *string `json:"phone"`
	Email             *string `json:"email"`
	PrintHeader       *string `json:"print_header"`
	PrintHeaderFooter *bool   `json:"print_header_footer"`
	PrintPrefsInput
}

type PrintPrefsInput struct {
	HeaderMarginTop    *int `json:"header_margin_top"`
	HeaderMarginBottom *int `json:"header_margin_bottom"`
	FooterMarginTop    *int `json:"footer_margin_top"`
	FooterMarginBottom *int `json:"footer_margin_bottom"`
	PageMarginLeft     *int `json:"page_margin_left"`
	PageMarginRight    *int `json:"page_margin_right"`
}

func (in PrintPrefsInput) patch() Patch {
	return Patch{
		HeaderMarginTop:    in.HeaderMarginTop,
		HeaderMarginBottom: in.HeaderMarginBottom,
		FooterMarginTop:    in.FooterMarginTop,
		FooterMarginBottom: in.FooterMarginBottom,
		PageMarginLeft:     in.PageMarginLeft,
		PageMarginRight:    in.PageMarginRight,
	}
}

func (s *Service) Update(ctx context.Context, in UpdateInput) (*Settings, error) {
	p := in.patch()
	p.ClinicName = in.ClinicName
	p.Address = in.Address
	p.Phone = in.Phone
	p.Email = in.Email
	p.PrintHeader = in.PrintHeader
	p.PrintHeaderFooter = in.PrintHeaderFooter
	if p.Empty() {
		return nil, apperr.Validationf("no fields to update")
	}
	// Seed the row before a partial write against an empty table.
	if _, err := s.repo.Get(ctx); err != nil {
		return nil, err
	}
	if err := s.repo.Apply(ctx, p); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx)
}

// UpdatePrintPreferences applies the print layout margins only;
// doctors may tune these without touching the clinic identity.
func (s *Service) UpdatePrintPreferences(ctx context.Context, in PrintPrefsInput) (*Settings, error) {
	p := in.patch()
	if p.Empty() {
		return nil, apperr.Validationf("no print preferences to update")
	}
	if _, err := s.repo.Get(ctx); err != nil {
		return nil, err
	}
	if err := s.repo.Apply(ctx, p); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx)
}

// UploadFile stores a logo or signature image and points the matching
// settings column at it. kind is "logo" or "signature"; anything else
// falls back to logo, matching the older clients.
func (s *Service) UploadFile(ctx context.Context, kind, fileName, contentType string, content io.Reader) (string, error) {
	if _, err := s.repo.Get(ctx); err != nil {
		return "", err
	}
	meta, err := s.store.Upload(ctx, blobstore.BlobMetadata{
		FileName:    fileName,
		ContentType: contentType,
	}, content)
	if err != nil {
		return "", apperr.Validationf("upload rejected: %v", err)
	}
	url := fmt.Sprintf("/uploads/%s", meta.ID)

	if kind == "signature" {
		err = s.repo.SetSignatureURL(ctx, url)
	} else {
		err = s.repo.SetLogoURL(ctx, url)
	}
	if err != nil {
		return "", err
	}
	return url, nil
}
