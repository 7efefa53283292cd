package catalog

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/medstock/medstock/internal/domain/shared"
	"github.com/medstock/medstock/internal/platform/auth"
	"github.com/medstock/medstock/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole("administrator", "clinician", "coordinator"))
	read.GET("/stock", h.ListItems)
	read.GET("/stock/search", h.SearchItems)
	read.GET("/stock/presentations", h.ListPresentations)
	read.GET("/stock/classify", h.ClassifyItem)
	read.GET("/stock/:id", h.GetItem)
	read.GET("/stock/:id/detail", h.GetItemDetail)

	write := api.Group("", auth.RequireRole("administrator", "coordinator"))
	write.POST("/stock", h.UpsertItem)
	write.PUT("/stock/:id", h.UpdateStock)
	write.DELETE("/stock/:id", h.DeleteItem)
}

func (h *Handler) UpsertItem(c echo.Context) error {
	var in UpsertInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	item, err := h.svc.Upsert(c.Request().Context(), &in)
	if err != nil {
		return echo.NewHTTPError(shared.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *Handler) UpdateStock(c echo.Context) error {
	var in UpdateStockInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.UpdateStock(c.Request().Context(), c.Param("id"), &in); err != nil {
		return echo.NewHTTPError(shared.HTTPStatus(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DeleteItem(c echo.Context) error {
	if err := h.svc.Remove(c.Request().Context(), c.Param("id")); err != nil {
		return echo.NewHTTPError(shared.HTTPStatus(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetItem(c echo.Context) error {
	item, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(shared.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, item)
}

func (h *Handler) GetItemDetail(c echo.Context) error {
	detail, err := h.svc.Detail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(shared.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, detail)
}

func (h *Handler) ListItems(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(shared.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) SearchItems(c echo.Context) error {
	items, err := h.svc.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return echo.NewHTTPError(shared.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListPresentations(c echo.Context) error {
	return c.JSON(http.StatusOK, Presentations())
}

func (h *Handler) ClassifyItem(c echo.Context) error {
	q := c.QueryParam("q")
	if strings.TrimSpace(q) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query must not be empty")
	}
	return c.JSON(http.StatusOK, map[string]string{"presentacion": h.svc.Classify(q)})
}
