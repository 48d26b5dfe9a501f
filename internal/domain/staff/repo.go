package staff

import "context"

// Repository persists staff profiles. The WithAccount variants also
// maintain the linked users row and must be atomic.
type Repository interface {
	CreateWithAccount(ctx context.Context, s *Staff, passwordHash string) error
	GetByID(ctx context.Context, id int64) (*Staff, error)
	GetByUserID(ctx context.Context, userID int64) (*Staff, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	// Update writes the profile and syncs the linked user account.
	// An empty passwordHash leaves the stored password untouched.
	Update(ctx context.Context, s *Staff, passwordHash string) error
	DeleteWithAccount(ctx context.Context, id int64) error
	SetStatus(ctx context.Context, id int64, status string) error
	List(ctx context.Context, search string, limit, offset int) ([]*Staff, int, error)
	Patients(ctx context.Context, staffUserID int64, search string, limit, offset int) ([]*PatientSummary, int, error)
}
