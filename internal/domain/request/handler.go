package request

import (
	"net/http"
	"strconv"
	"time"

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
	clinical := api.Group("", auth.RequireRole("administrator", "clinician"))
	clinical.POST("/requests", h.CreateRequest)
	clinical.GET("/patients/search", h.SearchPatients)
	clinical.GET("/services", h.ListServices)

	read := api.Group("", auth.RequireRole("administrator", "clinician", "coordinator"))
	read.GET("/requests", h.ListRequests)
	read.GET("/requests/pending", h.ListPending)
	read.GET("/requests/:id", h.GetRequest)
	read.GET("/stats/usage", h.Usage)
	read.GET("/stats/unfulfilled", h.Unfulfilled)

	fulfill := api.Group("", auth.RequireRole("administrator", "coordinator"))
	fulfill.POST("/requests/:id/fulfill", h.FulfillRequest)
}

func (h *Handler) CreateRequest(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	id, err := h.svc.Create(c.Request().Context(), &in)
	if err != nil {
		return echo.NewHTTPError(shared.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]int64{"id_solicitud": id})
}

type fulfillBody struct {
	Status string        `json:"estatus"`
	Lines  []FulfillLine `json:"detalle"`
}

func (h *Handler) FulfillRequest(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var body fulfillBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Fulfill(c.Request().Context(), id, body.Lines, body.Status); err != nil {
		return echo.NewHTTPError(shared.HTTPStatus(err), err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetRequest(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	view, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(shared.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, view)
}

func (h *Handler) ListRequests(c echo.Context) error {
	pg := pagination.FromContext(c)
	views, total, err := h.svc.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(shared.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(views, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListPending(c echo.Context) error {
	views, err := h.svc.ListPending(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(shared.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, views)
}

func (h *Handler) SearchPatients(c echo.Context) error {
	patients, err := h.svc.SearchPatients(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return echo.NewHTTPError(shared.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, patients)
}

func (h *Handler) ListServices(c echo.Context) error {
	services, err := h.svc.ListServices(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(shared.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, services)
}

// anchorParam reads the period anchor date, defaulting to today.
func anchorParam(c echo.Context) (time.Time, error) {
	raw := c.QueryParam("fecha")
	if raw == "" {
		return time.Now(), nil
	}
	return time.Parse("2006-01-02", raw)
}

func (h *Handler) Usage(c echo.Context) error {
	anchor, err := anchorParam(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid fecha")
	}
	usage, err := h.svc.Usage(c.Request().Context(), c.QueryParam("periodo"), anchor)
	if err != nil {
		return echo.NewHTTPError(shared.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, usage)
}

func (h *Handler) Unfulfilled(c echo.Context) error {
	anchor, err := anchorParam(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid fecha")
	}
	lines, err := h.svc.UnfulfilledUsage(c.Request().Context(), c.QueryParam("periodo"), anchor)
	if err != nil {
		return echo.NewHTTPError(shared.HTTPStatus(err), err.Error())
	}
	return c.JSON(http.StatusOK, lines)
}
