package controller

import (
	"strconv"
	"time"

	basecontroller "slotwise/core/controller"
	"slotwise/core/errors"
	"slotwise/core/middleware"
	"slotwise/modules/booking/dto"
	"slotwise/modules/booking/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type BookingController struct {
	basecontroller.BaseController
	service service.BookingService
}

func NewBookingController(svc service.BookingService) *BookingController {
	return &BookingController{
		BaseController: basecontroller.NewBaseController(),
		service:        svc,
	}
}

func ownerFromContext(ctx echo.Context) (uuid.UUID, bool) {
	ownerID, ok := ctx.Get(middleware.ContextUserIDKey).(uuid.UUID)
	return ownerID, ok
}

// CreateBooking books a time range: re-checks availability, creates the
// provider event, then persists the booking.
// POST /api/v1/private/bookings
func (c *BookingController) CreateBooking(ctx echo.Context) error {
	ownerID, ok := ownerFromContext(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "missing authenticated user")
	}

	var req dto.CreateBookingRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "invalid request body")
	}

	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "start must be RFC3339")
	}
	end, err := time.Parse(time.RFC3339, req.End)
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "end must be RFC3339")
	}

	booking, appErr := c.service.CreateBooking(ctx.Request().Context(), ownerID, service.CreateBookingInput{
		CalendarID:   req.CalendarID,
		Title:        req.Title,
		Description:  req.Description,
		Start:        start,
		End:          end,
		Participants: req.Participants,
		Timezone:     req.Timezone,
	})
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	resp := dto.ToBookingResponse(booking)
	return c.CreatedResponse(ctx, resp, "booking created")
}

// DeleteBooking cancels a booking. Deleting an already-cancelled booking
// succeeds without touching the provider.
// DELETE /api/v1/private/bookings/:id
func (c *BookingController) DeleteBooking(ctx echo.Context) error {
	ownerID, ok := ownerFromContext(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "missing authenticated user")
	}

	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "booking id must be a UUID")
	}

	if appErr := c.service.DeleteBooking(ctx.Request().Context(), ownerID, bookingID); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, nil, "booking cancelled")
}

// GetBooking returns a single booking owned by the caller.
// GET /api/v1/private/bookings/:id
func (c *BookingController) GetBooking(ctx echo.Context) error {
	ownerID, ok := ownerFromContext(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "missing authenticated user")
	}

	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "booking id must be a UUID")
	}

	booking, appErr := c.service.GetBooking(ctx.Request().Context(), ownerID, bookingID)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, dto.ToBookingResponse(booking), "booking")
}

// ListBookings returns the caller's bookings, newest first.
// GET /api/v1/private/bookings?status=scheduled&limit=50&offset=0
func (c *BookingController) ListBookings(ctx echo.Context) error {
	ownerID, ok := ownerFromContext(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "missing authenticated user")
	}

	status := ctx.QueryParam("status")
	limit := queryInt(ctx, "limit", 50)
	offset := queryInt(ctx, "offset", 0)

	bookings, appErr := c.service.ListBookings(ctx.Request().Context(), ownerID, status, limit, offset)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, dto.ToListBookingsResponse(bookings, limit, offset), "bookings")
}

func queryInt(ctx echo.Context, name string, fallback int) int {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
