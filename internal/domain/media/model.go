// Package media manages uploaded files: photos and scanned documents
// attached to a consultation, and standalone patient reports. Metadata
// lives in consultation_media rows; content goes through the blob
// store.
package media

import "time"

const (
	TypeImage = "IMAGE"
	TypePDF   = "PDF"
)

type File struct {
	ID             int64     `json:"id"`
	ConsultationID *int64    `json:"consultation_id,omitempty"`
	PatientID      int64     `json:"patient_id"`
	BlobID         string    `json:"-"`
	FileName       string    `json:"file_name"`
	FileType       string    `json:"file_type"`
	FileURL        string    `json:"file_url"`
	Description    *string   `json:"description,omitempty"`
	UploadedBy     *int64    `json:"uploaded_by,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ReportEntry is a file joined with patient context for report lists.
type ReportEntry struct {
	File
	PatientName   string `json:"patient_name"`
	PatientMobile string `json:"patient_mobile"`
}

// ConsultationRef is the ownership slice of a consultation that media
// access checks need.
type ConsultationRef struct {
	ID        int64
	PatientID int64
	DoctorID  int64
}
