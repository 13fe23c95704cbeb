package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/connection-monitor/internal/model"
	"github.com/iliyamo/connection-monitor/internal/store"
)

// UIStateHandler exposes the shared table state: search, filters, sort and
// view mode.
type UIStateHandler struct {
	Store *store.ConnectionStore
}

func NewUIStateHandler(s *store.ConnectionStore) *UIStateHandler {
	return &UIStateHandler{Store: s}
}

type uiStateReq struct {
	Search       *string `json:"search"`
	FilterType   *string `json:"filterType"`
	FilterStatus *string `json:"filterStatus"`
	ViewMode     *string `json:"viewMode"`
}

func (h *UIStateHandler) Get(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Store.UIState())
}

// Put sets the fields present in the body.  An empty filter clears it.  All
// fields are validated before any is applied.
func (h *UIStateHandler) Put(c echo.Context) error {
	var req uiStateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.FilterType != nil {
		if t := model.ConnectionType(*req.FilterType); t != "" && !t.Valid() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid filterType"})
		}
	}
	if req.FilterStatus != nil {
		if s := model.Status(*req.FilterStatus); s != "" && !s.Valid() {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid filterStatus"})
		}
	}
	if req.ViewMode != nil {
		if m := store.ViewMode(*req.ViewMode); m != store.ViewTable && m != store.ViewCards {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid viewMode"})
		}
	}

	if req.Search != nil {
		h.Store.SetSearchTerm(*req.Search)
	}
	if req.FilterType != nil {
		h.Store.SetFilterType(model.ConnectionType(*req.FilterType))
	}
	if req.FilterStatus != nil {
		h.Store.SetFilterStatus(model.Status(*req.FilterStatus))
	}
	if req.ViewMode != nil {
		h.Store.SetViewMode(store.ViewMode(*req.ViewMode))
	}
	return c.JSON(http.StatusOK, h.Store.UIState())
}

// ToggleSort flips sort-by-address.
func (h *UIStateHandler) ToggleSort(c echo.Context) error {
	h.Store.ToggleSortByAddress()
	return c.JSON(http.StatusOK, h.Store.UIState())
}
