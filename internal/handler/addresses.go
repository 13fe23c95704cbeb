package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/connection-monitor/internal/model"
	"github.com/iliyamo/connection-monitor/internal/store"
)

// AddressHandler serves the address directory.
type AddressHandler struct {
	Store *store.ConnectionStore
}

func NewAddressHandler(s *store.ConnectionStore) *AddressHandler {
	return &AddressHandler{Store: s}
}

func (h *AddressHandler) List(c echo.Context) error {
	items := h.Store.Addresses()
	return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

// Create adds an address; street and building are both required.
func (h *AddressHandler) Create(c echo.Context) error {
	var in model.AddressInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	in.Street = strings.TrimSpace(in.Street)
	in.Building = strings.TrimSpace(in.Building)
	if in.Street == "" || in.Building == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "street/building required"})
	}
	return c.JSON(http.StatusCreated, h.Store.AddAddress(in))
}

// Delete removes an address.  Connections keep their copied address text.
func (h *AddressHandler) Delete(c echo.Context) error {
	if !h.Store.RemoveAddress(c.Param("id")) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "address not found"})
	}
	return c.NoContent(http.StatusNoContent)
}
