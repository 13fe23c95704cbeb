// Package handler exposes the connection store over HTTP.  Handlers validate
// input (the store itself accepts anything), translate unknown ids into 404
// and render responses as JSON, except for the CSV export.
package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/connection-monitor/internal/export"
	"github.com/iliyamo/connection-monitor/internal/model"
	"github.com/iliyamo/connection-monitor/internal/store"
)

// ConnectionHandler serves the connection collection and its CSV export.
type ConnectionHandler struct {
	Store *store.ConnectionStore
	Now   func() time.Time
}

func NewConnectionHandler(s *store.ConnectionStore) *ConnectionHandler {
	return &ConnectionHandler{Store: s, Now: time.Now}
}

// visible applies the stored UI state, overridden per request by the q,
// type, status and sort query parameters.
func visible(c echo.Context, s *store.ConnectionStore) ([]model.Connection, error) {
	snap := s.Snapshot()
	crit := snap.UI.Criteria()
	qs := c.QueryParams()
	if qs.Has("q") {
		crit.SearchTerm = qs.Get("q")
	}
	if qs.Has("type") {
		t := model.ConnectionType(qs.Get("type"))
		if t != "" && !t.Valid() {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid type")
		}
		crit.Type = t
	}
	if qs.Has("status") {
		st := model.Status(qs.Get("status"))
		if st != "" && !st.Valid() {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid status")
		}
		crit.Status = st
	}
	if qs.Has("sort") {
		switch qs.Get("sort") {
		case "address":
			crit.SortByAddress = true
		case "", "none":
			crit.SortByAddress = false
		default:
			return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid sort")
		}
	}
	return store.Filter(snap.Connections, crit), nil
}

// List returns the visible connections.
func (h *ConnectionHandler) List(c echo.Context) error {
	items, err := visible(c, h.Store)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

// Get returns one connection with its photos and schedules.
func (h *ConnectionHandler) Get(c echo.Context) error {
	conn, ok := h.Store.Connection(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "connection not found"})
	}
	return c.JSON(http.StatusOK, conn)
}

// ExportCSV downloads the visible connections as CSV.
func (h *ConnectionHandler) ExportCSV(c echo.Context) error {
	items, err := visible(c, h.Store)
	if err != nil {
		return httpError(c, err)
	}
	data, err := export.CSV(items)
	if err != nil {
		c.Logger().Errorf("export csv: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "export failed"})
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="connections.csv"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", data)
}

// validateInput fills form defaults and rejects what the add form would.
func validateInput(in *model.ConnectionInput) string {
	in.ClientName = strings.TrimSpace(in.ClientName)
	in.Address = strings.TrimSpace(in.Address)
	in.Office = strings.TrimSpace(in.Office)
	in.Contact = strings.TrimSpace(in.Contact)
	if in.ConnectionType == "" {
		in.ConnectionType = model.ConnectionFiber
	}
	if in.Status == "" {
		in.Status = model.StatusActive
	}
	if in.Speed == "" {
		in.Speed = model.Speed100
	}
	switch {
	case in.ClientName == "":
		return "clientName required"
	case in.Address == "":
		return "address required"
	case in.Office == "":
		return "office required"
	case in.Contact == "":
		return "contact required"
	case !in.ConnectionType.Valid():
		return "invalid connectionType"
	case !in.Status.Valid():
		return "invalid status"
	case !in.Speed.Valid():
		return "invalid speed"
	case in.Price < 0:
		return "price must be >= 0"
	}
	return ""
}

func validatePatch(p *model.ConnectionPatch) string {
	trim := func(s *string) {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
	trim(p.ClientName)
	trim(p.Address)
	trim(p.Office)
	trim(p.Contact)
	switch {
	case p.ClientName != nil && *p.ClientName == "":
		return "clientName required"
	case p.Address != nil && *p.Address == "":
		return "address required"
	case p.Office != nil && *p.Office == "":
		return "office required"
	case p.Contact != nil && *p.Contact == "":
		return "contact required"
	case p.ConnectionType != nil && !p.ConnectionType.Valid():
		return "invalid connectionType"
	case p.Status != nil && !p.Status.Valid():
		return "invalid status"
	case p.Speed != nil && !p.Speed.Valid():
		return "invalid speed"
	case p.Price != nil && *p.Price < 0:
		return "price must be >= 0"
	}
	return ""
}

// Create adds a connection.  lastCheck is always the time of the request.
func (h *ConnectionHandler) Create(c echo.Context) error {
	var in model.ConnectionInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := validateInput(&in); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	in.LastCheck = h.Now().UTC()
	created := h.Store.AddConnection(in)
	return c.JSON(http.StatusCreated, created)
}

// Update merges the body into the connection and stamps lastCheck.  PUT and
// PATCH share it: absent fields are left alone.
func (h *ConnectionHandler) Update(c echo.Context) error {
	id := c.Param("id")
	var p model.ConnectionPatch
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := validatePatch(&p); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	now := h.Now().UTC()
	p.LastCheck = &now
	if !h.Store.UpdateConnection(id, p) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "connection not found"})
	}
	conn, _ := h.Store.Connection(id)
	return c.JSON(http.StatusOK, conn)
}

// Delete removes a connection.
func (h *ConnectionHandler) Delete(c echo.Context) error {
	if !h.Store.RemoveConnection(c.Param("id")) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "connection not found"})
	}
	return c.NoContent(http.StatusNoContent)
}

// httpError renders an *echo.HTTPError with the package's error shape.
func httpError(c echo.Context, err error) error {
	if he, ok := err.(*echo.HTTPError); ok {
		return c.JSON(he.Code, echo.Map{"error": he.Message})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
