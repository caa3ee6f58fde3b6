package report

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no saved report matches the requested id.
var ErrNotFound = errors.New("report not found")

// ReportRepository stores saved reports. Create takes ownership of the
// record; callers must not mutate it afterwards. List returns reports
// ordered by saved_at descending. Get and Delete return ErrNotFound
// when the id does not exist. Name identifies the backend for health
// reporting.
type ReportRepository interface {
	Create(ctx context.Context, r *SavedReport) error
	List(ctx context.Context) ([]*SavedReport, error)
	Get(ctx context.Context, id string) (*SavedReport, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Name() string
}
