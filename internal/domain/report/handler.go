package report

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/save-report", h.SaveReport)
	api.GET("/reports", h.ListReports)
	api.GET("/reports/:id", h.GetReport)
	api.DELETE("/reports/:id", h.DeleteReport)
	api.POST("/compare-reports", h.CompareReports)
}

func (h *Handler) SaveReport(c echo.Context) error {
	var data AnalyzedReport
	if err := c.Bind(&data); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	saved, err := h.svc.SaveReport(c.Request().Context(), &data)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, saved)
}

func (h *Handler) ListReports(c echo.Context) error {
	reports, err := h.svc.ListReports(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, reports)
}

func (h *Handler) GetReport(c echo.Context) error {
	r, err := h.svc.GetReport(c.Request().Context(), c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Report not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) DeleteReport(c echo.Context) error {
	err := h.svc.DeleteReport(c.Request().Context(), c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "Report not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Report deleted successfully"})
}

type compareRequest struct {
	ReportIDs []string `json:"report_ids"`
}

func (h *Handler) CompareReports(c echo.Context) error {
	var req compareRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cmp, err := h.svc.CompareReports(c.Request().Context(), req.ReportIDs)
	switch {
	case errors.Is(err, ErrTooFewReportIDs):
		return echo.NewHTTPError(http.StatusBadRequest, "Need at least 2 reports to compare")
	case errors.Is(err, ErrNotEnoughReports):
		return echo.NewHTTPError(http.StatusNotFound, "Not enough reports found")
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, cmp)
}
