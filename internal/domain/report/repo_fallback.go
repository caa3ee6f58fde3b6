package report

import (
	"context"

	"github.com/rs/zerolog"
)

// reportRepoFallback wraps a durable repository and redirects Create
// and List to an in-memory repository when the durable store fails, so
// those operations keep succeeding through an outage. Reports written
// during an outage live only for the process lifetime and are not
// reconciled into the durable store once it recovers. Get and Delete
// go straight to the durable store; failures there surface to the
// caller.
type reportRepoFallback struct {
	durable ReportRepository
	memory  ReportRepository
	logger  zerolog.Logger
}

func NewReportRepoFallback(durable, memory ReportRepository, logger zerolog.Logger) ReportRepository {
	return &reportRepoFallback{durable: durable, memory: memory, logger: logger}
}

func (f *reportRepoFallback) Create(ctx context.Context, r *SavedReport) error {
	if err := f.durable.Create(ctx, r); err != nil {
		f.logger.Error().Err(err).Str("report_id", r.ID).Msg("durable create failed, saving to memory")
		return f.memory.Create(ctx, r)
	}
	return nil
}

func (f *reportRepoFallback) List(ctx context.Context) ([]*SavedReport, error) {
	reports, err := f.durable.List(ctx)
	if err != nil {
		f.logger.Error().Err(err).Msg("durable list failed, serving from memory")
		return f.memory.List(ctx)
	}
	return reports, nil
}

func (f *reportRepoFallback) Get(ctx context.Context, id string) (*SavedReport, error) {
	return f.durable.Get(ctx, id)
}

func (f *reportRepoFallback) Delete(ctx context.Context, id string) error {
	return f.durable.Delete(ctx, id)
}

func (f *reportRepoFallback) Ping(ctx context.Context) error {
	return f.durable.Ping(ctx)
}

func (f *reportRepoFallback) Name() string { return f.durable.Name() }
