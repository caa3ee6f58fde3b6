package report

import "time"

// HealthParameter is one measured value extracted from a report.
// Status is one of: normal, low, high, critical. Values stay strings
// so the formatting printed on the source report survives round-trips.
type HealthParameter struct {
	Name             string  `json:"name" bson:"name"`
	Value            string  `json:"value" bson:"value"`
	Unit             string  `json:"unit" bson:"unit"`
	NormalRange      string  `json:"normal_range" bson:"normal_range"`
	Status           string  `json:"status" bson:"status"`
	Explanation      string  `json:"explanation" bson:"explanation"`
	HindiExplanation *string `json:"hindi_explanation,omitempty" bson:"hindi_explanation,omitempty"`
}

// AnalyzedReport is the normalized result of one analysis.
// ReportType is one of: blood_test, diagnostic, prescription.
// OverallStatus is one of: good, moderate, concerning.
// ImageBase64 holds only a truncated prefix of the uploaded image,
// never the full payload.
type AnalyzedReport struct {
	ID              string            `json:"id"`
	ReportType      string            `json:"report_type"`
	Title           string            `json:"title"`
	Summary         string            `json:"summary"`
	HindiSummary    *string           `json:"hindi_summary,omitempty"`
	Parameters      []HealthParameter `json:"parameters"`
	HealthTips      []string          `json:"health_tips"`
	HindiHealthTips []string          `json:"hindi_health_tips,omitempty"`
	OverallStatus   string            `json:"overall_status"`
	CreatedAt       time.Time         `json:"created_at"`
	ImageBase64     *string           `json:"image_base64,omitempty"`
}

// SavedReport is the persistence envelope around an AnalyzedReport.
// SavedAt is the sole ordering key; listings return most recent first.
type SavedReport struct {
	ID         string         `json:"id"`
	ReportData AnalyzedReport `json:"report_data"`
	SavedAt    time.Time      `json:"saved_at"`
}
