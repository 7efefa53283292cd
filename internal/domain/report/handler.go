package report

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/medstock/medstock/internal/domain/shared"
	"github.com/medstock/medstock/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("administrator", "clinician", "coordinator"))
	g.POST("/reports", h.CreateReport)
	g.GET("/reports", h.ListReports)

	attend := api.Group("", auth.RequireRole("administrator", "coordinator"))
	attend.POST("/reports/:id/attend", h.AttendReport)
}

func (h *Handler) CreateReport(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rep, err := h.svc.Create(c.Request().Context(), &in)
	if err != nil {
		return echo.NewHTTPError(shared.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, rep)
}

// ListReports returns all reports, or only those of ?fecha=YYYY-MM-DD.
func (h *Handler) ListReports(c echo.Context) error {
	ctx := c.Request().Context()
	if raw := c.QueryParam("fecha"); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid fecha")
		}
		reports, err := h.svc.ListByDate(ctx, day)
		if err != nil {
			return echo.NewHTTPError(shared.HTTPStatus(err), err.Error())
		}
		return c.JSON(http.StatusOK, reports)
	}
	reports, err := h.svc.List(ctx)
	if err != nil {
		return echo.NewHTTPError(shared.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, reports)
}

func (h *Handler) AttendReport(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.MarkAttended(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(shared.HTTPStatus(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
