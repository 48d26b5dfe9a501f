package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
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

func fileTypeFor(contentType string) string {
	if contentType == "application/pdf" {
		return TypePDF
	}
	return TypeImage
}

// consultationFor loads the consultation and enforces doctor
// ownership. Admin and staff callers may touch any consultation.
func (s *Service) consultationFor(ctx context.Context, consultationID int64, actor *auth.Actor) (*ConsultationRef, error) {
	ref, err := s.repo.Consultation(ctx, consultationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("consultation not found")
		}
		return nil, err
	}
	if actor != nil && actor.IsDoctor() {
		if actor.DoctorID == nil || *actor.DoctorID != ref.DoctorID {
			return nil, apperr.Forbiddenf("access denied")
		}
	}
	return ref, nil
}

type UploadInput struct {
	FileName    string
	ContentType string
	Content     io.Reader
	Description *string
}

func (s *Service) UploadForConsultation(ctx context.Context, consultationID int64, in UploadInput, actor *auth.Actor) (*File, error) {
	ref, err := s.consultationFor(ctx, consultationID, actor)
	if err != nil {
		return nil, err
	}

	meta, err := s.store.Upload(ctx, blobstore.BlobMetadata{
		FileName:    in.FileName,
		ContentType: in.ContentType,
	}, in.Content)
	if err != nil {
		return nil, apperr.Validationf("upload rejected: %v", err)
	}

	var uploadedBy *int64
	if actor != nil {
		uploadedBy = &actor.UserID
	}
	f := &File{
		ConsultationID: &ref.ID,
		PatientID:      ref.PatientID,
		BlobID:         meta.ID,
		FileName:       in.FileName,
		FileType:       fileTypeFor(in.ContentType),
		FileURL:        fmt.Sprintf("/uploads/%s", meta.ID),
		Description:    in.Description,
		UploadedBy:     uploadedBy,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Service) ListForConsultation(ctx context.Context, consultationID int64, actor *auth.Actor) ([]*File, error) {
	if _, err := s.consultationFor(ctx, consultationID, actor); err != nil {
		return nil, err
	}
	return s.repo.ListForConsultation(ctx, consultationID)
}

// FilesForConsultation lists attached files without an access check;
// callers that already scoped the consultation use this.
func (s *Service) FilesForConsultation(ctx context.Context, consultationID int64) ([]*File, error) {
	return s.repo.ListForConsultation(ctx, consultationID)
}

// OpenFile returns the file metadata and a reader over its content.
// The caller owns closing the reader.
func (s *Service) OpenFile(ctx context.Context, consultationID, mediaID int64, actor *auth.Actor) (io.ReadCloser, *File, error) {
	f, err := s.repo.GetForConsultation(ctx, consultationID, mediaID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperr.NotFoundf("media file not found")
		}
		return nil, nil, err
	}
	if _, err := s.consultationFor(ctx, consultationID, actor); err != nil {
		return nil, nil, err
	}
	rc, _, err := s.store.Download(ctx, f.BlobID)
	if err != nil {
		if errors.Is(err, blobstore.ErrBlobNotFound) {
			return nil, nil, apperr.NotFoundf("file content not found")
		}
		return nil, nil, err
	}
	return rc, f, nil
}

func (s *Service) DeleteFromConsultation(ctx context.Context, consultationID, mediaID int64, actor *auth.Actor) error {
	if _, err := s.consultationFor(ctx, consultationID, actor); err != nil {
		return err
	}
	f, err := s.repo.GetForConsultation(ctx, consultationID, mediaID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFoundf("media file not found")
		}
		return err
	}
	if err := s.repo.Delete(ctx, f.ID); err != nil {
		return err
	}
	// Orphaned blobs are harmless; content cleanup is best effort.
	_ = s.store.Delete(ctx, f.BlobID)
	return nil
}

type ReportInput struct {
	PatientID   int64
	FileName    string
	ContentType string
	Content     io.Reader
	Description *string
}

func (s *Service) UploadReport(ctx context.Context, in ReportInput, actor *auth.Actor) (*File, error) {
	if in.PatientID == 0 {
		return nil, apperr.Validationf("patient ID is required")
	}
	meta, err := s.store.Upload(ctx, blobstore.BlobMetadata{
		FileName:    in.FileName,
		ContentType: in.ContentType,
	}, in.Content)
	if err != nil {
		return nil, apperr.Validationf("upload rejected: %v", err)
	}

	var uploadedBy *int64
	if actor != nil {
		uploadedBy = &actor.UserID
	}
	f := &File{
		PatientID:   in.PatientID,
		BlobID:      meta.ID,
		FileName:    in.FileName,
		FileType:    fileTypeFor(in.ContentType),
		FileURL:     fmt.Sprintf("/uploads/%s", meta.ID),
		Description: in.Description,
		UploadedBy:  uploadedBy,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// ListReports returns standalone reports. Doctors only see reports for
// patients they have treated.
func (s *Service) ListReports(ctx context.Context, patientID *int64, actor *auth.Actor, limit, offset int) ([]*ReportEntry, int, error) {
	var doctorID *int64
	if actor != nil && actor.IsDoctor() {
		if actor.DoctorID == nil {
			return nil, 0, apperr.NotFoundf("doctor profile not found")
		}
		doctorID = actor.DoctorID
	}
	return s.repo.ListReports(ctx, patientID, doctorID, limit, offset)
}

func (s *Service) DownloadReport(ctx context.Context, id int64, actor *auth.Actor) (io.ReadCloser, *File, error) {
	f, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperr.NotFoundf("report not found")
		}
		return nil, nil, err
	}
	if actor != nil && actor.IsDoctor() && actor.DoctorID != nil {
		ok, err := s.repo.DoctorTreatedPatient(ctx, *actor.DoctorID, f.PatientID)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			return nil, nil, apperr.Forbiddenf("access denied")
		}
	}
	rc, _, err := s.store.Download(ctx, f.BlobID)
	if err != nil {
		if errors.Is(err, blobstore.ErrBlobNotFound) {
			return nil, nil, apperr.NotFoundf("file content not found")
		}
		return nil, nil, err
	}
	return rc, f, nil
}

func (s *Service) DeleteReport(ctx context.Context, id int64) error {
	f, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFoundf("report not found")
		}
		return err
	}
	if err := s.repo.Delete(ctx, f.ID); err != nil {
		return err
	}
	_ = s.store.Delete(ctx, f.BlobID)
	return nil
}

// ContentTypeFor maps a stored file back to the response content type.
func ContentTypeFor(f *File) string {
	if f.FileType == TypePDF {
		return "application/pdf"
	}
	switch {
	case strings.HasSuffix(strings.ToLower(f.FileName), ".png"):
		return "image/png"
	case strings.HasSuffix(strings.ToLower(f.FileName), ".webp"):
		return "image/webp"
	}
	return "image/jpeg"
}
