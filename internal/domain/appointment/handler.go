package appointment

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cliniq/cliniq/internal/domain/scheduling"
	"github.com/cliniq/cliniq/internal/platform/auth"
	"github.com/cliniq/cliniq/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireCapability(auth.CapAppointmentsRead))
	read.GET("/appointments", h.ListAppointments)
	read.GET("/appointments/:code", h.GetAppointment)

	write := api.Group("", auth.RequireCapability(auth.CapAppointmentsWrite))
	write.POST("/appointments", h.CreateAppointment)

	manage := api.Group("", auth.RequireCapability(auth.CapAppointmentsManage))
	manage.PUT("/appointments/:code/status", h.UpdateAppointmentStatus)
	manage.PUT("/appointments/:code/delay", h.DelayAppointment)
	manage.POST("/appointments/:code/reschedule", h.RescheduleAppointment)
}

func (h *Handler) CreateAppointment(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	appt, err := h.svc.Create(c.Request().Context(), req)
	if err != nil {
		return mapLifecycleError(err)
	}
	return c.JSON(http.StatusCreated, appt)
}

func (h *Handler) GetAppointment(c echo.Context) error {
	appt, err := h.svc.Get(c.Request().Context(), c.Param("code"))
	if err != nil {
		return mapLifecycleError(err)
	}
	return c.JSON(http.StatusOK, appt)
}

func (h *Handler) ListAppointments(c echo.Context) error {
	pg := pagination.FromContext(c)

	filter := Filter{
		PatientCode:  c.QueryParam("patient_code"),
		EmployeeCode: c.QueryParam("employee_code"),
		RoomCode:     c.QueryParam("room_code"),
		Status:       Status(c.QueryParam("status")),
	}
	if raw := c.QueryParam("date"); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
		}
		filter.From = day
		filter.To = day.AddDate(0, 0, 1)
	}

	items, total, err := h.svc.List(c.Request().Context(), filter, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

type statusRequest struct {
	Status     Status `json:"status"`
	ReasonCode string `json:"reason_code"`
	Notes      string `json:"notes"`
}

func (h *Handler) UpdateAppointmentStatus(c echo.Context) error {
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Status == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "status is required")
	}

	appt, err := h.svc.UpdateStatus(c.Request().Context(), c.Param("code"), req.Status, req.ReasonCode, req.Notes)
	if err != nil {
		// The transition committed; the warning tells the operator the
		// plan item still needs syncing.
		if errors.Is(err, ErrPartialSideEffect) {
			return c.JSON(http.StatusOK, map[string]interface{}{
				"appointment": appt,
				"warning":     err.Error(),
			})
		}
		return mapLifecycleError(err)
	}
	return c.JSON(http.StatusOK, appt)
}

type delayRequest struct {
	NewStartTime time.Time `json:"new_start_time"`
	ReasonCode   string    `json:"reason_code"`
	Notes        string    `json:"notes"`
}

func (h *Handler) DelayAppointment(c echo.Context) error {
	var req delayRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.NewStartTime.IsZero() {
		return echo.NewHTTPError(http.StatusBadRequest, "new_start_time is required")
	}

	appt, err := h.svc.Delay(c.Request().Context(), c.Param("code"), req.NewStartTime, req.ReasonCode, req.Notes)
	if err != nil {
		return mapLifecycleError(err)
	}
	return c.JSON(http.StatusOK, appt)
}

type rescheduleRequest struct {
	NewStartTime time.Time `json:"new_start_time"`
	NewRoomCode  string    `json:"new_room_code"`
}

func (h *Handler) RescheduleAppointment(c echo.Context) error {
	var req rescheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.NewStartTime.IsZero() {
		return echo.NewHTTPError(http.StatusBadRequest, "new_start_time is required")
	}

	result, err := h.svc.Reschedule(c.Request().Context(), c.Param("code"), req.NewStartTime, req.NewRoomCode)
	if err != nil {
		return mapLifecycleError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// mapLifecycleError translates the lifecycle error taxonomy into HTTP
// statuses. Transition and conflict failures carry their structured detail
// through the message so the client can render a precise reason.
func mapLifecycleError(err error) error {
	var transErr *TransitionError
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.As(err, &transErr),
		errors.Is(err, ErrNoOpTransition),
		errors.Is(err, ErrSlotConflict),
		errors.Is(err, ErrNotDelayable),
		errors.Is(err, ErrNotReschedulable):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrReasonRequired),
		errors.Is(err, ErrInvalidDelayTime),
		errors.Is(err, scheduling.ErrNoServices):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		var valErr *ValidationError
		var durErr *scheduling.DurationError
		var svcErr *scheduling.UnknownServiceError
		if errors.As(err, &valErr) || errors.As(err, &durErr) || errors.As(err, &svcErr) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		var reschedErr *RescheduleError
		if errors.As(err, &reschedErr) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
