package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/medscan/medscan/internal/domain/report"
)

// ErrUnparsable is returned when the model's response is not a JSON
// object even after fence stripping.
var ErrUnparsable = errors.New("ai response could not be parsed")

// parsedReport and parsedParameter distinguish absent fields from
// empty ones, so defaults apply only to what the model left out.
type parsedReport struct {
	ReportType      *string           `json:"report_type"`
	Title           *string           `json:"title"`
	Summary         *string           `json:"summary"`
	HindiSummary    *string           `json:"hindi_summary"`
	Parameters      []parsedParameter `json:"parameters"`
	HealthTips      []string          `json:"health_tips"`
	HindiHealthTips []string          `json:"hindi_health_tips"`
	OverallStatus   *string           `json:"overall_status"`
}

type parsedParameter struct {
	Name             *string `json:"name"`
	Value            *string `json:"value"`
	Unit             *string `json:"unit"`
	NormalRange      *string `json:"normal_range"`
	Status           *string `json:"status"`
	Explanation      *string `json:"explanation"`
	HindiExplanation *string `json:"hindi_explanation"`
}

// parseReport turns a raw completion into a normalized report. Only a
// JSON object is accepted; non-object text such as a bare null or an
// array fails hard. A response missing fields still yields a usable
// report through defaulting, and fields outside the expected schema
// are dropped.
func parseReport(raw string) (*report.AnalyzedReport, error) {
	cleaned := stripCodeFence(raw)
	// json.Unmarshal treats a bare null as a no-op, which would turn
	// an empty model reply into an all-defaults report.
	if !strings.HasPrefix(cleaned, "{") {
		return nil, fmt.Errorf("%w: not a JSON object", ErrUnparsable)
	}

	var p parsedReport
	if err := json.Unmarshal([]byte(cleaned), &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparsable, err)
	}

	out := &report.AnalyzedReport{
		ReportType:      stringOr(p.ReportType, "blood_test"),
		Title:           stringOr(p.Title, "Medical Report"),
		Summary:         stringOr(p.Summary, "Report analyzed successfully"),
		HindiSummary:    p.HindiSummary,
		Parameters:      make([]report.HealthParameter, 0, len(p.Parameters)),
		HealthTips:      p.HealthTips,
		HindiHealthTips: p.HindiHealthTips,
		OverallStatus:   stringOr(p.OverallStatus, "moderate"),
	}
	if out.HealthTips == nil {
		out.HealthTips = []string{}
	}
	for _, pp := range p.Parameters {
		out.Parameters = append(out.Parameters, report.HealthParameter{
			Name:             stringOr(pp.Name, "Unknown"),
			Value:            stringOr(pp.Value, "N/A"),
			Unit:             stringOr(pp.Unit, ""),
			NormalRange:      stringOr(pp.NormalRange, "N/A"),
			Status:           stringOr(pp.Status, "normal"),
			Explanation:      stringOr(pp.Explanation, ""),
			HindiExplanation: pp.HindiExplanation,
		})
	}
	return out, nil
}

// stripCodeFence removes one leading fence marker, language-tagged or
// bare, and one trailing marker. It never strips recursively.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```json") {
		s = s[len("```json"):]
	}
	if strings.HasPrefix(s, "```") {
		s = s[len("```"):]
	}
	if strings.HasSuffix(s, "```") {
		s = s[:len(s)-len("```")]
	}
	return strings.TrimSpace(s)
}

func stringOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}
