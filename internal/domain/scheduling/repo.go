package scheduling

import "context"

// TodayList is the doctor's queue for the day: the paged entries plus
// the number of patients still waiting, counted across all pages.
type TodayList struct {
	Appointments []*Detail
	Total        int
	Pending      int
}

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetDetail(ctx context.Context, id int64) (*Detail, error)
	SetStatus(ctx context.Context, id int64, status string) error

	ListAdmin(ctx context.Context, f ListFilter) ([]*Detail, int, error)
	ListStaff(ctx context.Context, f ListFilter) ([]*Detail, int, error)
	ListForDoctor(ctx context.Context, doctorID int64, f ListFilter) ([]*Detail, int, error)
	TodayForDoctor(ctx context.Context, doctorID int64, f ListFilter) (*TodayList, error)
}
