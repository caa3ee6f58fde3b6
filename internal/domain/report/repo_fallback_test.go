package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// failingRepo stands in for a durable backend that is down.
type failingRepo struct{}

var errStoreDown = errors.New("connection reset by peer")

func (failingRepo) Create(context.Context, *SavedReport) error        { return errStoreDown }
func (failingRepo) List(context.Context) ([]*SavedReport, error)      { return nil, errStoreDown }
func (failingRepo) Get(context.Context, string) (*SavedReport, error) { return nil, errStoreDown }
func (failingRepo) Delete(context.Context, string) error              { return errStoreDown }
func (failingRepo) Ping(context.Context) error                        { return errStoreDown }
func (failingRepo) Name() string                                      { return "mongodb" }

func TestFallbackRepo_CreateFallsBackToMemory(t *testing.T) {
	memory := NewReportRepoMemory()
	repo := NewReportRepoFallback(failingRepo{}, memory, zerolog.Nop())

	r := savedReportAt("cbc", time.Now().UTC())
	if err := repo.Create(context.Background(), r); err != nil {
		t.Fatalf("expected create to succeed via fallback, got %v", err)
	}

	reports, err := memory.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reports) != 1 || reports[0].ID != r.ID {
		t.Errorf("expected report in memory fallback, got %+v", reports)
	}
}

func TestFallbackRepo_ListFallsBackToMemory(t *testing.T) {
	memory := NewReportRepoMemory()
	repo := NewReportRepoFallback(failingRepo{}, memory, zerolog.Nop())

	r := savedReportAt("cbc", time.Now().UTC())
	if err := memory.Create(context.Background(), r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reports, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("expected list to succeed via fallback, got %v", err)
	}
	if len(reports) != 1 {
		t.Errorf("expected 1 report from memory, got %d", len(reports))
	}
}

func TestFallbackRepo_CreateUsesDurableWhenHealthy(t *testing.T) {
	durable := NewReportRepoMemory()
	memory := NewReportRepoMemory()
	repo := NewReportRepoFallback(durable, memory, zerolog.Nop())

	if err := repo.Create(context.Background(), savedReportAt("cbc", time.Now().UTC())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	durableReports, _ := durable.List(context.Background())
	memoryReports, _ := memory.List(context.Background())
	if len(durableReports) != 1 {
		t.Errorf("expected report in durable store, got %d", len(durableReports))
	}
	if len(memoryReports) != 0 {
		t.Errorf("expected memory store untouched, got %d", len(memoryReports))
	}
}

func TestFallbackRepo_GetDoesNotFallBack(t *testing.T) {
	memory := NewReportRepoMemory()
	r := savedReportAt("cbc", time.Now().UTC())
	if err := memory.Create(context.Background(), r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	repo := NewReportRepoFallback(failingRepo{}, memory, zerolog.Nop())

	if _, err := repo.Get(context.Background(), r.ID); !errors.Is(err, errStoreDown) {
		t.Errorf("expected durable error to surface, got %v", err)
	}
}

func TestFallbackRepo_DeleteDoesNotFallBack(t *testing.T) {
	memory := NewReportRepoMemory()
	r := savedReportAt("cbc", time.Now().UTC())
	if err := memory.Create(context.Background(), r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	repo := NewReportRepoFallback(failingRepo{}, memory, zerolog.Nop())

	if err := repo.Delete(context.Background(), r.ID); !errors.Is(err, errStoreDown) {
		t.Errorf("expected durable error to surface, got %v", err)
	}
}

func TestFallbackRepo_NameReportsDurableBackend(t *testing.T) {
	repo := NewReportRepoFallback(failingRepo{}, NewReportRepoMemory(), zerolog.Nop())
	if repo.Name() != "mongodb" {
		t.Errorf("expected durable backend name, got %q", repo.Name())
	}
}
