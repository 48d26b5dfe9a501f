package identity

import "context"

type Repository interface {
	GetByEmailAndRole(ctx context.Context, email, role string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	SetName(ctx context.Context, id int64, name string) error
	SetPassword(ctx context.Context, id int64, passwordHash string) error
	// DoctorLink and StaffLink return nil without error when the
	// account has no profile row.
	DoctorLink(ctx context.Context, userID int64) (*DoctorLink, error)
	StaffLink(ctx context.Context, userID int64) (*StaffLink, error)
}
