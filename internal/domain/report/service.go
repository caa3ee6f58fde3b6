package report

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrTooFewReportIDs is returned when a comparison asks for fewer than
// two report ids.
var ErrTooFewReportIDs = errors.New("at least two report ids are required")

// ErrNotEnoughReports is returned when fewer than two of the requested
// reports exist.
var ErrNotEnoughReports = errors.New("not enough reports found")

// TrendPoint is one report's reading of a parameter. Date is the
// saved_at of the report the reading came from.
type TrendPoint struct {
	Date   time.Time `json:"date"`
	Value  string    `json:"value"`
	Status string    `json:"status"`
}

// Comparison groups each parameter across the fetched reports into a
// timeline, keyed by exact parameter name. Timelines follow the order
// the reports were found, not date order.
type Comparison struct {
	Reports         []*SavedReport          `json:"reports"`
	ParameterTrends map[string][]TrendPoint `json:"parameter_trends"`
}

type Service struct {
	reports ReportRepository
}

func NewService(reports ReportRepository) *Service {
	return &Service{reports: reports}
}

// SaveReport wraps an analyzed report in a new envelope and persists
// it. Missing report identity is filled in rather than rejected, so a
// report assembled by hand saves as well as one straight from analysis.
func (s *Service) SaveReport(ctx context.Context, data *AnalyzedReport) (*SavedReport, error) {
	if data.ID == "" {
		data.ID = uuid.NewString()
	}
	if data.CreatedAt.IsZero() {
		data.CreatedAt = time.Now().UTC()
	}
	if data.Parameters == nil {
		data.Parameters = []HealthParameter{}
	}
	if data.HealthTips == nil {
		data.HealthTips = []string{}
	}

	saved := &SavedReport{
		ID:         uuid.NewString(),
		ReportData: *data,
		SavedAt:    time.Now().UTC(),
	}
	if err := s.reports.Create(ctx, saved); err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *Service) ListReports(ctx context.Context) ([]*SavedReport, error) {
	reports, err := s.reports.List(ctx)
	if err != nil {
		return nil, err
	}
	if reports == nil {
		reports = []*SavedReport{}
	}
	return reports, nil
}

func (s *Service) GetReport(ctx context.Context, id string) (*SavedReport, error) {
	return s.reports.Get(ctx, id)
}

func (s *Service) DeleteReport(ctx context.Context, id string) error {
	return s.reports.Delete(ctx, id)
}

// CompareReports resolves the requested ids, skipping ones that no
// longer exist, and builds per-parameter timelines across the reports
// that were found.
func (s *Service) CompareReports(ctx context.Context, ids []string) (*Comparison, error) {
	if len(ids) < 2 {
		return nil, ErrTooFewReportIDs
	}

	reports := make([]*SavedReport, 0, len(ids))
	for _, id := range ids {
		r, err := s.reports.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	if len(reports) < 2 {
		return nil, ErrNotEnoughReports
	}

	trends := make(map[string][]TrendPoint)
	for _, r := range reports {
		for _, p := range r.ReportData.Parameters {
			trends[p.Name] = append(trends[p.Name], TrendPoint{
				Date:   r.SavedAt,
				Value:  p.Value,
				Status: p.Status,
			})
		}
	}
	return &Comparison{Reports: reports, ParameterTrends: trends}, nil
}
