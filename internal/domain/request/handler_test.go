package request

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func doRequest(h echo.HandlerFunc, method, target, body string, params map[string]string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for k, v := range params {
		c.SetParamNames(k)
		c.SetParamValues(v)
	}
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestHandlerCreateRequest(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)

	body := `{"paciente":{"curp":"GOMC860315HDFRRL09","nombre":"Carlos"},
		"tipo_servicio":"ambulatorio","id_servicio":1,"nombre_solicitante":"Dra. Rivera",
		"diagnostico":"Dolor abdominal","prioridad":"Normal",
		"detalle":[{"id_insumo":"A","presentacion":"Caja","cantidad":2}]}`
	rec := doRequest(h.CreateRequest, http.MethodPost, "/requests", body, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "id_solicitud") {
		t.Errorf("body = %s", rec.Body.String())
	}

	rec = doRequest(h.CreateRequest, http.MethodPost, "/requests", `{"detalle":[]}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty body status = %d, want 400", rec.Code)
	}
}

func TestHandlerFulfillRequest(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	id := f.createPending(t)

	body := `{"estatus":"aprobada","detalle":[{"id_insumo":"A","cantidad_surtida":3},{"id_insumo":"B","cantidad_surtida":5}]}`
	rec := doRequest(h.FulfillRequest, http.MethodPost, "/requests/1/fulfill", body, map[string]string{"id": "1"})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204: %s", rec.Code, rec.Body.String())
	}
	if f.requests.requests[id].Status != StatusApproved {
		t.Errorf("status = %q", f.requests.requests[id].Status)
	}

	// Closing the same request again conflicts.
	rec = doRequest(h.FulfillRequest, http.MethodPost, "/requests/1/fulfill", body, map[string]string{"id": "1"})
	if rec.Code != http.StatusConflict {
		t.Errorf("second close status = %d, want 409", rec.Code)
	}

	rec = doRequest(h.FulfillRequest, http.MethodPost, "/requests/x/fulfill", body, map[string]string{"id": "x"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", rec.Code)
	}
}

func TestHandlerGetRequest_NotFound(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)

	rec := doRequest(h.GetRequest, http.MethodGet, "/requests/404", "", map[string]string{"id": "404"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandlerUsage_BadPeriod(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)

	rec := doRequest(h.Usage, http.MethodGet, "/stats/usage?periodo=quincenal", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	rec = doRequest(h.Usage, http.MethodGet, "/stats/usage?periodo=semanal&fecha=not-a-date", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad fecha status = %d, want 400", rec.Code)
	}
}
