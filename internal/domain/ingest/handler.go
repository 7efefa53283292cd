package ingest

import (
	"net/http"

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
	g := api.Group("", auth.RequireRole("administrator", "coordinator"))
	g.POST("/stock/import", h.ImportFeed)
	g.POST("/stock/import/rows", h.ImportRows)
}

// ImportFeed accepts the raw CSV export as the request body.
func (h *Handler) ImportFeed(c echo.Context) error {
	rows, err := DecodeCSVFeed(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	res, err := h.svc.Ingest(c.Request().Context(), rows)
	if err != nil {
		return echo.NewHTTPError(shared.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, res)
}

// ImportRows accepts pre-decoded rows as JSON, for clients that parse the
// spreadsheet themselves.
func (h *Handler) ImportRows(c echo.Context) error {
	var rows []RawRow
	if err := c.Bind(&rows); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	res, err := h.svc.Ingest(c.Request().Context(), rows)
	if err != nil {
		return echo.NewHTTPError(shared.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, res)
}
