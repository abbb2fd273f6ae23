package controller

import (
	"time"

	basecontroller "slotwise/core/controller"
	"slotwise/core/errors"
	"slotwise/modules/availability/dto"
	"slotwise/modules/availability/entity"
	"slotwise/modules/availability/service"

	"github.com/labstack/echo/v4"
)

const defaultCalendarID = "primary"

type AvailabilityController struct {
	basecontroller.BaseController
	service service.AvailabilityService
}

func NewAvailabilityController(svc service.AvailabilityService) *AvailabilityController {
	return &AvailabilityController{
		BaseController: basecontroller.NewBaseController(),
		service:        svc,
	}
}

// GetDayAvailability returns the classified working-hour buckets for a day.
// GET /api/v1/private/availability/day?date=YYYY-MM-DD&timezone=...&calendar_id=...
func (c *AvailabilityController) GetDayAvailability(ctx echo.Context) error {
	date := ctx.QueryParam("date")
	timezone := ctx.QueryParam("timezone")
	calendarID := ctx.QueryParam("calendar_id")

	if date == "" {
		return c.BadRequest(errors.ErrInvalidInput, "date is required")
	}
	if timezone == "" {
		timezone = "UTC"
	}
	if calendarID == "" {
		calendarID = defaultCalendarID
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "unknown timezone identifier")
	}

	slots, appErr := c.service.GetDayAvailability(ctx.Request().Context(), calendarID, date, timezone)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, dto.ToDayAvailabilityResponse(date, timezone, loc, slots), "day availability")
}

// ProposeSlots ranks candidate meeting slots inside preferred windows.
// POST /api/v1/private/availability/propose
func (c *AvailabilityController) ProposeSlots(ctx echo.Context) error {
	var req dto.ProposeSlotsRequest
	if err := ctx.Bind(&req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "invalid request body")
	}
	if req.CalendarID == "" {
		req.CalendarID = defaultCalendarID
	}

	windows := make([]entity.TimeInterval, 0, len(req.PreferredWindows))
	for _, w := range req.PreferredWindows {
		start, err := time.Parse(time.RFC3339, w.Start)
		if err != nil {
			return c.BadRequest(errors.ErrInvalidInput, "window start must be RFC3339")
		}
		end, err := time.Parse(time.RFC3339, w.End)
		if err != nil {
			return c.BadRequest(errors.ErrInvalidInput, "window end must be RFC3339")
		}
		window, err := entity.NewTimeInterval(start, end)
		if err != nil {
			return c.BadRequest(errors.ErrInvalidRange, "window start must be before window end")
		}
		windows = append(windows, window)
	}

	proposals, appErr := c.service.ProposeSlots(ctx.Request().Context(), req.CalendarID, req.DurationMinutes, windows)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, dto.ToProposeSlotsResponse(proposals), "proposed slots")
}
