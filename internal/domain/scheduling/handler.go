package scheduling

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cliniq/cliniq/internal/domain/calendar"
	"github.com/cliniq/cliniq/internal/platform/auth"
)

type Handler struct {
	resolver *Resolver
}

func NewHandler(resolver *Resolver) *Handler {
	return &Handler{resolver: resolver}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireCapability(auth.CapSlotsRead))
	g.GET("/slots/available", h.ResolveAvailableTimes)
}

// ResolveAvailableTimes returns the bookable slots for one date, primary
// employee, optional participants, and the requested services.
func (h *Handler) ResolveAvailableTimes(c echo.Context) error {
	date, err := time.Parse("2006-01-02", c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
	}

	employeeCode := c.QueryParam("employee_code")
	if employeeCode == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "employee_code is required")
	}

	req := ResolveRequest{
		Date:                date,
		PrimaryEmployeeCode: employeeCode,
		ParticipantCodes:    splitCodes(c.QueryParam("participant_codes")),
		ServiceCodes:        splitCodes(c.QueryParam("service_codes")),
	}

	slots, err := h.resolver.Resolve(c.Request().Context(), req)
	if err != nil {
		return mapResolveError(err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"date":  date.Format("2006-01-02"),
		"slots": slots,
		"total": len(slots),
	})
}

func splitCodes(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func mapResolveError(err error) error {
	var durErr *DurationError
	var svcErr *UnknownServiceError
	switch {
	case errors.Is(err, ErrNoServices), errors.As(err, &durErr), errors.As(err, &svcErr):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, calendar.ErrUnavailable):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
