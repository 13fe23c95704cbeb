package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/connection-monitor/internal/model"
	"github.com/iliyamo/connection-monitor/internal/store"
)

// AttachmentHandler serves the photos and maintenance schedules nested under
// a connection.
type AttachmentHandler struct {
	Store *store.ConnectionStore
}

func NewAttachmentHandler(s *store.ConnectionStore) *AttachmentHandler {
	return &AttachmentHandler{Store: s}
}

func notFoundConnection(c echo.Context) error {
	return c.JSON(http.StatusNotFound, echo.Map{"error": "connection not found"})
}

// AddPhoto attaches a photo by URL.
func (h *AttachmentHandler) AddPhoto(c echo.Context) error {
	var in model.PhotoInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	in.URL = strings.TrimSpace(in.URL)
	if in.URL == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "url required"})
	}
	p, ok := h.Store.AddPhoto(c.Param("id"), in)
	if !ok {
		return notFoundConnection(c)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *AttachmentHandler) DeletePhoto(c echo.Context) error {
	if !h.Store.RemovePhoto(c.Param("id"), c.Param("photoId")) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "photo not found"})
	}
	return c.NoContent(http.StatusNoContent)
}

// AddSchedule plans a maintenance entry.  Status defaults to pending.
func (h *AttachmentHandler) AddSchedule(c echo.Context) error {
	var in model.ScheduleInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Status == "" {
		in.Status = model.SchedulePending
	}
	switch {
	case in.Title == "":
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title required"})
	case in.Date.IsZero():
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date required"})
	case !in.Type.Valid():
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid type"})
	case !in.Status.Valid():
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}
	s, ok := h.Store.AddSchedule(c.Param("id"), in)
	if !ok {
		return notFoundConnection(c)
	}
	return c.JSON(http.StatusCreated, s)
}

func (h *AttachmentHandler) UpdateSchedule(c echo.Context) error {
	var p model.SchedulePatch
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	switch {
	case p.Title != nil && strings.TrimSpace(*p.Title) == "":
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title required"})
	case p.Date != nil && p.Date.IsZero():
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date required"})
	case p.Type != nil && !p.Type.Valid():
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid type"})
	case p.Status != nil && !p.Status.Valid():
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}
	connID, schedID := c.Param("id"), c.Param("scheduleId")
	if !h.Store.UpdateSchedule(connID, schedID, p) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "schedule not found"})
	}
	conn, _ := h.Store.Connection(connID)
	for _, s := range conn.Schedules {
		if s.ID == schedID {
			return c.JSON(http.StatusOK, s)
		}
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AttachmentHandler) DeleteSchedule(c echo.Context) error {
	if !h.Store.RemoveSchedule(c.Param("id"), c.Param("scheduleId")) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "schedule not found"})
	}
	return c.NoContent(http.StatusNoContent)
}
