package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medscan/medscan/internal/domain/report"
	"github.com/medscan/medscan/internal/platform/llm"
)

type Service struct {
	llm llm.Client
}

func NewService(client llm.Client) *Service {
	return &Service{llm: client}
}

// AnalyzeReport sends the image through the model and normalizes the
// completion into a report with fresh identity. Language defaults to
// english when the client does not ask for another.
func (s *Service) AnalyzeReport(ctx context.Context, imageBase64, language string) (*report.AnalyzedReport, error) {
	if language == "" {
		language = "english"
	}

	raw, err := s.llm.Complete(ctx, llm.Request{
		System:      systemPrompt,
		User:        userPrompt(language),
		ImageBase64: imageBase64,
	})
	if err != nil {
		return nil, err
	}

	analyzed, err := parseReport(raw)
	if err != nil {
		return nil, err
	}
	analyzed.ID = uuid.NewString()
	analyzed.CreatedAt = time.Now().UTC()
	return analyzed, nil
}
