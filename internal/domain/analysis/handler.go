package analysis

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medscan/medscan/internal/platform/llm"
)

// imagePreviewLen bounds how much of the uploaded image encoding is
// echoed back on the analyzed report.
const imagePreviewLen = 100

type analyzeRequest struct {
	ImageBase64 string `json:"image_base64"`
	Language    string `json:"language"`
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/analyze-report", h.AnalyzeReport)
}

func (h *Handler) AnalyzeReport(c echo.Context) error {
	var req analyzeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.ImageBase64 == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "No image provided")
	}

	analyzed, err := h.svc.AnalyzeReport(c.Request().Context(), req.ImageBase64, req.Language)
	switch {
	case errors.Is(err, llm.ErrNoAPIKey):
		return echo.NewHTTPError(http.StatusInternalServerError, "LLM API key not configured")
	case errors.Is(err, ErrUnparsable):
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to parse AI response")
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Attach a truncated copy of the source image so saved reports
	// stay small.
	preview := req.ImageBase64
	if len(preview) > imagePreviewLen {
		preview = preview[:imagePreviewLen]
	}
	preview += "..."
	analyzed.ImageBase64 = &preview

	return c.JSON(http.StatusOK, analyzed)
}
