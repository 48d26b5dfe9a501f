package reporting

import "context"

// Repository exposes one named query set per dashboard; no shared
// query builder with role branching.
type Repository interface {
	AdminStats(ctx context.Context) (*AdminStats, error)
	StaffStats(ctx context.Context) (*StaffStats, error)
	DoctorStats(ctx context.Context, doctorID int64) (*DoctorStats, error)
}
