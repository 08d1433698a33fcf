package api

import (
	"bytes"
	"errors"
	"net/http"
	"sync/atomic"

	"flightdash/internal/charts"
	"flightdash/internal/dashboard"
	"flightdash/internal/engine"
	"flightdash/internal/models"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	data atomic.Pointer[engine.Dataset]
	svc  *dashboard.Service
}

// NewHandler accepts a nil dataset; the API answers 503 until SetData.
func NewHandler(data *engine.Dataset, svc *dashboard.Service) *Handler {
	if svc == nil {
		svc = dashboard.NewService(nil, 0)
	}
	h := &Handler{svc: svc}
	if data != nil {
		h.data.Store(data)
	}
	return h
}

func (h *Handler) SetData(data *engine.Dataset) {
	h.data.Store(data)
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	api := e.Group("/api")
	api.GET("/options", h.GetOptions)
	api.GET("/charts", h.GetCharts)
	api.GET("/charts/:chart", h.GetChart)
	api.GET("/charts/:chart/png", h.GetChartPNG)

	api.POST("/sessions", h.CreateSession)
	api.GET("/sessions/:id", h.GetSession)
	api.PATCH("/sessions/:id/controls", h.ChangeControl)
	api.DELETE("/sessions/:id", h.DeleteSession)
}

// --- HELPERS ---

func (h *Handler) dataset() (*engine.Dataset, error) {
	ds := h.data.Load()
	if ds == nil {
		return nil, echo.NewHTTPError(http.StatusServiceUnavailable, "dataset is loading")
	}
	return ds, nil
}

// controlsFromQuery reads country, type, unit, from and to; anything absent
// keeps its default.
func controlsFromQuery(c echo.Context) (models.ControlState, error) {
	s := models.DefaultControlState()
	var typ, unit string
	from, to := s.Years.From(), s.Years.To()

	err := echo.QueryParamsBinder(c).
		String("country", &s.Country).
		String("type", &typ).
		String("unit", &unit).
		Int("from", &from).
		Int("to", &to).
		BindError()
	if err != nil {
		return s, echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}

	if typ != "" {
		if s.Type, err = models.ParseMovementType(typ); err != nil {
			return s, echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	if unit != "" {
		if s.Unit, err = models.ParseUnit(unit); err != nil {
			return s, echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	if s.Country == "" {
		s.Country = models.AllCountries
	}
	s.Years = models.YearRange{from, to}
	if err := s.Validate(); err != nil {
		return s, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return s, nil
}

func (h *Handler) chartParam(c echo.Context) (dashboard.ChartID, error) {
	id, err := dashboard.ParseChartID(c.Param("chart"))
	if err != nil || !h.svc.Binder().Has(id) {
		return 0, echo.NewHTTPError(http.StatusNotFound, "unknown chart "+c.Param("chart"))
	}
	return id, nil
}

func sessionError(err error) error {
	if errors.Is(err, dashboard.ErrSessionNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}

// --- HANDLERS ---

func (h *Handler) Health(c echo.Context) error {
	if h.data.Load() == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "loading"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetOptions(c echo.Context) error {
	ds, err := h.dataset()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ds.Options())
}

// all four charts for the controls in the query string
func (h *Handler) GetCharts(c echo.Context) error {
	ds, err := h.dataset()
	if err != nil {
		return err
	}
	s, err := controlsFromQuery(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.svc.Render(c.Request().Context(), ds, s))
}

func (h *Handler) GetChart(c echo.Context) error {
	ds, err := h.dataset()
	if err != nil {
		return err
	}
	id, err := h.chartParam(c)
	if err != nil {
		return err
	}
	s, err := controlsFromQuery(c)
	if err != nil {
		return err
	}
	v := h.svc.Render(c.Request().Context(), ds, s, id)
	return c.JSON(http.StatusOK, v.Charts[0])
}

func (h *Handler) GetChartPNG(c echo.Context) error {
	ds, err := h.dataset()
	if err != nil {
		return err
	}
	id, err := h.chartParam(c)
	if err != nil {
		return err
	}
	s, err := controlsFromQuery(c)
	if err != nil {
		return err
	}

	fig := h.svc.Render(c.Request().Context(), ds, s, id).Charts[0]
	var buf bytes.Buffer
	switch err := charts.RenderComboPNG(fig, &buf); {
	case errors.Is(err, charts.ErrNotCombo):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, charts.ErrEmptyChart):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case err != nil:
		return err
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

func (h *Handler) CreateSession(c echo.Context) error {
	ds, err := h.dataset()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, h.svc.Open(c.Request().Context(), ds))
}

func (h *Handler) GetSession(c echo.Context) error {
	ds, err := h.dataset()
	if err != nil {
		return err
	}
	v, err := h.svc.Current(c.Request().Context(), ds, c.Param("id"))
	if err != nil {
		return sessionError(err)
	}
	return c.JSON(http.StatusOK, v)
}

// applies one control change; only the charts reading that control come back
func (h *Handler) ChangeControl(c echo.Context) error {
	ds, err := h.dataset()
	if err != nil {
		return err
	}
	var change dashboard.ControlChange
	if err := c.Bind(&change); err != nil {
		return err
	}
	if change.Control == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "control is required")
	}
	v, err := h.svc.Change(c.Request().Context(), ds, c.Param("id"), change)
	if err != nil {
		return sessionError(err)
	}
	return c.JSON(http.StatusOK, v)
}

func (h *Handler) DeleteSession(c echo.Context) error {
	if !h.svc.Close(c.Param("id")) {
		return echo.NewHTTPError(http.StatusNotFound, dashboard.ErrSessionNotFound.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
