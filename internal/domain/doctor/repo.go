package doctor

import "context"

// Repository persists doctor profiles. The WithAccount variants also
// maintain the linked users row and must be atomic.
type Repository interface {
	CreateWithAccount(ctx context.Context, d *Doctor, passwordHash string) error
	GetByID(ctx context.Context, id int64) (*Doctor, error)
	GetByUserID(ctx context.Context, userID int64) (*Doctor, error)
	ExistsUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	// Update writes the profile and syncs the linked user account.
	// An empty passwordHash leaves the stored password untouched.
	Update(ctx context.Context, d *Doctor, passwordHash string) error
	DeleteWithAccount(ctx context.Context, id int64) error
	SetStatus(ctx context.Context, id int64, status string) error
	List(ctx context.Context, search string, limit, offset int) ([]*Doctor, int, error)
	Available(ctx context.Context) ([]*Ref, error)
	Specializations(ctx context.Context) ([]string, error)
	Patients(ctx context.Context, doctorID int64, search string, limit, offset int) ([]*PatientSummary, int, error)
}
