package procurement

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
	g.GET("/critical", h.ListAlerts)
	g.POST("/critical", h.AddCritical)
	g.DELETE("/critical/:itemId", h.RemoveCritical)
	g.GET("/suggestions", h.ListSuggestions)
	g.POST("/suggestions", h.CreateSuggestion)
	g.POST("/suggestions/archive", h.ArchiveSuggestions)
	g.GET("/suggestions/history", h.History)
}

type addCriticalBody struct {
	ItemID string `json:"id_insumo"`
}

func (h *Handler) AddCritical(c echo.Context) error {
	var body addCriticalBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.AddCritical(c.Request().Context(), body.ItemID); err != nil {
		return echo.NewHTTPError(shared.HTTPStatus(err), err.Error())
	}
	return c.NoContent(http.StatusCreated)
}

func (h *Handler) RemoveCritical(c echo.Context) error {
	if err := h.svc.RemoveCritical(c.Request().Context(), c.Param("itemId")); err != nil {
		return echo.NewHTTPError(shared.HTTPStatus(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListAlerts(c echo.Context) error {
	items, err := h.svc.Alerts(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(shared.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

type suggestionBody struct {
	Name     string `json:"nombre"`
	Quantity int    `json:"cantidad"`
}

func (h *Handler) CreateSuggestion(c echo.Context) error {
	var body suggestionBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sg, err := h.svc.CreateSuggestion(c.Request().Context(), body.Name, body.Quantity)
	if err != nil {
		return echo.NewHTTPError(shared.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, sg)
}

func (h *Handler) ListSuggestions(c echo.Context) error {
	suggestions, err := h.svc.ListSuggestions(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(shared.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, suggestions)
}

func (h *Handler) ArchiveSuggestions(c echo.Context) error {
	archived, err := h.svc.ArchiveSuggestions(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(shared.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, map[string]int{"archivadas": archived})
}

func (h *Handler) History(c echo.Context) error {
	entries, err := h.svc.History(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(shared.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, entries)
}
