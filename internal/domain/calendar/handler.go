package calendar

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cliniq/cliniq/internal/platform/auth"
)

type Handler struct {
	holidays HolidayRepository
}

func NewHandler(holidays HolidayRepository) *Handler {
	return &Handler{holidays: holidays}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireCapability(auth.CapSlotsRead, auth.CapAppointmentsRead))
	g.GET("/holidays", h.ListHolidays)
}

// ListHolidays returns the holiday blackout dates in [from, to].
func (h *Handler) ListHolidays(c echo.Context) error {
	from, err := time.Parse("2006-01-02", c.QueryParam("from"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid from date, want YYYY-MM-DD")
	}
	to, err := time.Parse("2006-01-02", c.QueryParam("to"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid to date, want YYYY-MM-DD")
	}
	if to.Before(from) {
		return echo.NewHTTPError(http.StatusBadRequest, "to must not precede from")
	}

	holidays, err := h.holidays.ListInRange(c.Request().Context(), from, to)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "holiday source unavailable")
	}
	if holidays == nil {
		holidays = []HolidayDate{}
	}
	return c.JSON(http.StatusOK, holidays)
}
