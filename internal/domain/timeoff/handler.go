package timeoff

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cliniq/cliniq/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireCapability(auth.CapTimeOffRead))
	g.POST("/timeoff/check", h.CheckOverlap)
}

// CheckOverlap reports what a proposed leave range collides with.
func (h *Handler) CheckOverlap(c echo.Context) error {
	var req CheckRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.svc.CheckOverlap(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, ErrStoreUnavailable) {
			return echo.NewHTTPError(http.StatusBadGateway, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}
