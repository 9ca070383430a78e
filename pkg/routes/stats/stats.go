package stats

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/fern/pkg/gateway"
)

// Handler serves read-only reconciliation state.
type Handler struct {
	gateway gateway.Gateway
}

func NewHandler(gw gateway.Gateway) *Handler {
	return &Handler{gateway: gw}
}

// RegisterRoutes registers stats endpoints
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/v1/stats", h.Stats)
	e.GET("/api/v1/users/:email", h.GetUser)
}

// Stats returns row counts per canonical table.
func (h *Handler) Stats(c echo.Context) error {
	stats, err := h.gateway.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// GetUser returns the canonical user for an email.
func (h *Handler) GetUser(c echo.Context) error {
	email := c.Param("email")
	if email == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "email is required")
	}

	user, err := h.gateway.GetUserByEmail(c.Request().Context(), email)
	if err != nil {
		return err
	}
	if user == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return c.JSON(http.StatusOK, user)
}
