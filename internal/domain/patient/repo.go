package patient

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id int64) (*Patient, error)
	GetByMobile(ctx context.Context, mobile string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, search string, limit, offset int) ([]*Patient, int, error)
	HasAppointments(ctx context.Context, id int64) (bool, error)
	RecordVisit(ctx context.Context, id int64, visitDate time.Time) error
	SetLastVisit(ctx context.Context, id int64, visitDate time.Time) error
	History(ctx context.Context, patientID int64) ([]*HistoryEntry, error)
}
