package report

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestService() *Service {
	return NewService(NewReportRepoMemory())
}

func analyzedReport(title string) *AnalyzedReport {
	return &AnalyzedReport{
		ReportType: "blood_test",
		Title:      title,
		Summary:    "All values within range",
		Parameters: []HealthParameter{
			{Name: "Hemoglobin", Value: "13.5", Unit: "g/dL", NormalRange: "12-16 g/dL", Status: "normal", Explanation: "Oxygen carrying protein"},
		},
		HealthTips:    []string{"Stay hydrated"},
		OverallStatus: "good",
	}
}

func TestSaveReport_AssignsIdentity(t *testing.T) {
	svc := newTestService()
	before := time.Now().Add(-time.Second)

	saved, err := svc.SaveReport(context.Background(), analyzedReport("CBC"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.ID == "" {
		t.Error("expected envelope ID to be set")
	}
	if saved.ReportData.ID == "" {
		t.Error("expected report ID to be set")
	}
	if saved.ID == saved.ReportData.ID {
		t.Error("expected envelope and report IDs to differ")
	}
	if saved.ReportData.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
	if saved.SavedAt.Before(before) {
		t.Errorf("expected saved_at after %v, got %v", before, saved.SavedAt)
	}
}

func TestSaveReport_KeepsExistingIdentity(t *testing.T) {
	svc := newTestService()
	createdAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	data := analyzedReport("CBC")
	data.ID = "report-1"
	data.CreatedAt = createdAt

	saved, err := svc.SaveReport(context.Background(), data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.ReportData.ID != "report-1" {
		t.Errorf("expected report ID preserved, got %q", saved.ReportData.ID)
	}
	if !saved.ReportData.CreatedAt.Equal(createdAt) {
		t.Errorf("expected created_at preserved, got %v", saved.ReportData.CreatedAt)
	}
}

func TestSaveThenList_RoundTrip(t *testing.T) {
	svc := newTestService()
	before := time.Now().Add(-time.Second)

	if _, err := svc.SaveReport(context.Background(), analyzedReport("Lipid Profile")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reports, err := svc.ListReports(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	matches := 0
	for _, r := range reports {
		if r.ReportData.Title == "Lipid Profile" {
			matches++
			if r.SavedAt.Before(before) {
				t.Errorf("expected saved_at after %v, got %v", before, r.SavedAt)
			}
		}
	}
	if matches != 1 {
		t.Errorf("expected exactly one saved report, got %d", matches)
	}
}

func TestListReports_EmptyIsNotNil(t *testing.T) {
	svc := newTestService()
	reports, err := svc.ListReports(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reports == nil {
		t.Error("expected empty slice, got nil")
	}
	if len(reports) != 0 {
		t.Errorf("expected no reports, got %d", len(reports))
	}
}

func TestDeleteReport_SecondDeleteNotFound(t *testing.T) {
	svc := newTestService()
	saved, err := svc.SaveReport(context.Background(), analyzedReport("CBC"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.DeleteReport(context.Background(), saved.ID); err != nil {
		t.Fatalf("first delete: unexpected error: %v", err)
	}
	if err := svc.DeleteReport(context.Background(), saved.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestCompareReports_TooFewIDs(t *testing.T) {
	svc := newTestService()
	if _, err := svc.CompareReports(context.Background(), []string{"only-one"}); !errors.Is(err, ErrTooFewReportIDs) {
		t.Errorf("expected ErrTooFewReportIDs, got %v", err)
	}
}

func TestCompareReports_NotEnoughFound(t *testing.T) {
	svc := newTestService()
	saved, err := svc.SaveReport(context.Background(), analyzedReport("CBC"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.CompareReports(context.Background(), []string{saved.ID, "missing"})
	if !errors.Is(err, ErrNotEnoughReports) {
		t.Errorf("expected ErrNotEnoughReports, got %v", err)
	}
}

func TestCompareReports_BuildsParameterTrends(t *testing.T) {
	svc := newTestService()

	first := analyzedReport("CBC January")
	first.Parameters[0].Value = "11.2"
	first.Parameters[0].Status = "low"
	savedFirst, err := svc.SaveReport(context.Background(), first)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second := analyzedReport("CBC March")
	second.Parameters[0].Value = "13.1"
	second.Parameters[0].Status = "normal"
	savedSecond, err := svc.SaveReport(context.Background(), second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cmp, err := svc.CompareReports(context.Background(), []string{savedFirst.ID, savedSecond.ID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cmp.Reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(cmp.Reports))
	}

	trend, ok := cmp.ParameterTrends["Hemoglobin"]
	if !ok {
		t.Fatal("expected trend for Hemoglobin")
	}
	if len(trend) != 2 {
		t.Fatalf("expected 2 trend points, got %d", len(trend))
	}
	if trend[0].Value != "11.2" || trend[0].Status != "low" {
		t.Errorf("first point: expected 11.2/low, got %s/%s", trend[0].Value, trend[0].Status)
	}
	if trend[1].Value != "13.1" || trend[1].Status != "normal" {
		t.Errorf("second point: expected 13.1/normal, got %s/%s", trend[1].Value, trend[1].Status)
	}
	if !trend[0].Date.Equal(savedFirst.SavedAt) {
		t.Errorf("expected first point dated %v, got %v", savedFirst.SavedAt, trend[0].Date)
	}
}

func TestCompareReports_SkipsMissingIDs(t *testing.T) {
	svc := newTestService()
	first, err := svc.SaveReport(context.Background(), analyzedReport("CBC"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.SaveReport(context.Background(), analyzedReport("Lipid"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cmp, err := svc.CompareReports(context.Background(), []string{first.ID, "missing", second.ID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cmp.Reports) != 2 {
		t.Errorf("expected 2 resolved reports, got %d", len(cmp.Reports))
	}
}
