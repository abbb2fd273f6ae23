package service

import (
	"context"
	"time"

	"slotwise/core/constants"
	"slotwise/core/errors"
	"slotwise/core/logger"
	availentity "slotwise/modules/availability/entity"
	providerentity "slotwise/modules/provider/entity"
	providersvc "slotwise/modules/provider/service"
)

// BookingValidator re-verifies a requested time range against live provider
// state immediately before commit. It never trusts a previously computed
// DaySlot: time may have passed between the availability query and the
// booking submission, which is exactly the race this check narrows.
//
// The check-then-act window against writers outside this process remains;
// the orchestrator additionally holds a per-calendar advisory lock across
// validate+write, but the provider offers no compare-and-swap, so this stays
// a best-effort guard.
type BookingValidator interface {
	Validate(ctx context.Context, calendarID string, interval availentity.TimeInterval) ([]providerentity.CalendarEvent, *errors.AppError)
}

type bookingValidator struct {
	provider providersvc.Provider
	now      func() time.Time
}

func NewBookingValidator(provider providersvc.Provider) BookingValidator {
	return &bookingValidator{provider: provider, now: time.Now}
}

func (v *bookingValidator) Validate(ctx context.Context, calendarID string, interval availentity.TimeInterval) ([]providerentity.CalendarEvent, *errors.AppError) {
	if !interval.Start.Before(interval.End) {
		return nil, errors.NewAppError(errors.ErrInvalidRange, "booking start must be before end", nil)
	}
	if interval.Start.Before(v.now().Add(-constants.ClockSkewTolerance)) {
		return nil, errors.NewAppError(errors.ErrInvalidRange, "booking start is in the past", nil)
	}

	callCtx, cancel := context.WithTimeout(ctx, constants.ProviderTimeout)
	defer cancel()

	events, err := v.provider.ListEvents(callCtx, calendarID, interval.Start, interval.End)
	if err != nil {
		logger.Error("BookingValidator:Validate:ListEvents:Error", "calendar_id", calendarID, "error", err)
		if ae, ok := err.(*errors.AppError); ok {
			return nil, ae
		}
		return nil, errors.NewAppError(errors.ErrProviderUnavailable, "failed to re-read calendar", err)
	}

	var conflicts []providerentity.CalendarEvent
	for _, ev := range events {
		evInterval := availentity.TimeInterval{Start: ev.Start, End: ev.End}
		if evInterval.Overlaps(interval) {
			conflicts = append(conflicts, ev)
		}
	}

	if len(conflicts) > 0 {
		logger.Warn("BookingValidator:Validate:Conflict",
			"calendar_id", calendarID,
			"start", interval.Start.Format(time.RFC3339),
			"end", interval.End.Format(time.RFC3339),
			"conflicts", len(conflicts))
		return conflicts, errors.NewAppError(errors.ErrConflict, "requested time is no longer free", nil)
	}

	return nil, nil
}
