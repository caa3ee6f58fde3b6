package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type reportRepoPG struct{ pool *pgxpool.Pool }

func NewReportRepoPG(pool *pgxpool.Pool) ReportRepository {
	return &reportRepoPG{pool: pool}
}

// EnsureSchema creates the saved_reports table if it does not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS saved_reports (
			id TEXT PRIMARY KEY,
			report_data JSONB NOT NULL,
			saved_at TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("create saved_reports table: %w", err)
	}
	return nil
}

// scanReport reads one row. A report_data document that no longer
// unmarshals is replaced with a zero value instead of failing the row.
func scanReport(row pgx.Row) (*SavedReport, error) {
	var (
		r    SavedReport
		data []byte
	)
	if err := row.Scan(&r.ID, &data, &r.SavedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &r.ReportData); err != nil {
		r.ReportData = AnalyzedReport{}
	}
	return &r, nil
}

func (p *reportRepoPG) Create(ctx context.Context, r *SavedReport) error {
	data, err := json.Marshal(r.ReportData)
	if err != nil {
		return fmt.Errorf("marshal report data: %w", err)
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO saved_reports (id, report_data, saved_at)
		VALUES ($1, $2, $3)`,
		r.ID, data, r.SavedAt.UTC())
	return err
}

func (p *reportRepoPG) List(ctx context.Context) ([]*SavedReport, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, report_data, saved_at FROM saved_reports
		ORDER BY saved_at DESC LIMIT $1`, listLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*SavedReport
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

func (p *reportRepoPG) Get(ctx context.Context, id string) (*SavedReport, error) {
	r, err := scanReport(p.pool.QueryRow(ctx, `
		SELECT id, report_data, saved_at FROM saved_reports WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (p *reportRepoPG) Delete(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM saved_reports WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *reportRepoPG) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *reportRepoPG) Name() string { return "postgres" }
