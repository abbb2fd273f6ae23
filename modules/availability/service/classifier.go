package service

import (
	"context"
	"time"

	"slotwise/core/constants"
	"slotwise/core/errors"
	"slotwise/core/logger"
	"slotwise/modules/availability/entity"
	providerentity "slotwise/modules/provider/entity"
	providersvc "slotwise/modules/provider/service"
)

type AvailabilityService interface {
	// GetDayAvailability classifies one business day of the calendar into
	// ordered working-hour buckets. All-or-nothing: a provider read failure
	// yields no buckets at all.
	GetDayAvailability(ctx context.Context, calendarID, date, timezone string) ([]entity.DaySlot, *errors.AppError)

	// ProposeSlots ranks candidate meeting slots inside preferred windows.
	ProposeSlots(ctx context.Context, calendarID string, durationMinutes int, windows []entity.TimeInterval) ([]SlotProposal, *errors.AppError)
}

type availabilityService struct {
	provider         providersvc.Provider
	workDayStartHour int
	workDayEndHour   int
	bucketSize       time.Duration
}

func NewAvailabilityService(provider providersvc.Provider, workDayStartHour, workDayEndHour int, bucketSize time.Duration) AvailabilityService {
	if bucketSize <= 0 {
		bucketSize = constants.DefaultBucketSize
	}
	return &availabilityService{
		provider:         provider,
		workDayStartHour: workDayStartHour,
		workDayEndHour:   workDayEndHour,
		bucketSize:       bucketSize,
	}
}

func (s *availabilityService) GetDayAvailability(ctx context.Context, calendarID, date, timezone string) ([]entity.DaySlot, *errors.AppError) {
	logger.Info("AvailabilityService:GetDayAvailability:Start",
		"calendar_id", calendarID, "date", date, "timezone", timezone)

	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "date must be YYYY-MM-DD", err)
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "unknown timezone identifier", err)
	}

	// The working-hours window is anchored in the caller's timezone and
	// converted to absolute instants exactly once, here. Everything after
	// this point compares instants.
	windowStart := time.Date(day.Year(), day.Month(), day.Day(), s.workDayStartHour, 0, 0, 0, loc)
	windowEnd := time.Date(day.Year(), day.Month(), day.Day(), s.workDayEndHour, 0, 0, 0, loc)
	window, err := entity.NewTimeInterval(windowStart, windowEnd)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "working-hours window is empty", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, constants.ProviderTimeout)
	defer cancel()

	events, listErr := s.provider.ListEvents(callCtx, calendarID, window.Start, window.End)
	if listErr != nil {
		logger.Error("AvailabilityService:GetDayAvailability:ListEvents:Error",
			"calendar_id", calendarID, "error", listErr)
		if ae, ok := listErr.(*errors.AppError); ok {
			return nil, ae
		}
		return nil, errors.NewAppError(errors.ErrProviderUnavailable, "failed to read calendar events", listErr)
	}

	slots := ClassifyDay(events, window, s.bucketSize)
	logger.Info("AvailabilityService:GetDayAvailability:Success",
		"calendar_id", calendarID, "buckets", len(slots), "events", len(events))
	return slots, nil
}

// ClassifyDay partitions the working-hours window into consecutive buckets
// and tags each one free, partial or busy. Pure function of its inputs:
// calling it twice with the same events and window yields identical output.
func ClassifyDay(events []providerentity.CalendarEvent, window entity.TimeInterval, bucketSize time.Duration) []entity.DaySlot {
	if bucketSize <= 0 {
		bucketSize = constants.DefaultBucketSize
	}

	var slots []entity.DaySlot
	for bucketStart := window.Start; bucketStart.Before(window.End); bucketStart = bucketStart.Add(bucketSize) {
		bucketEnd := bucketStart.Add(bucketSize)
		if bucketEnd.After(window.End) {
			bucketEnd = window.End
		}
		bucket := entity.TimeInterval{Start: bucketStart, End: bucketEnd}

		slots = append(slots, classifyBucket(events, bucket))
	}
	return slots
}

func classifyBucket(events []providerentity.CalendarEvent, bucket entity.TimeInterval) entity.DaySlot {
	var overlapping []providerentity.CalendarEvent
	var clipped []entity.TimeInterval

	for _, ev := range events {
		evInterval := entity.TimeInterval{Start: ev.Start, End: ev.End}
		part, ok := evInterval.Intersect(bucket)
		if !ok {
			continue
		}
		overlapping = append(overlapping, ev)
		clipped = append(clipped, part)
	}

	bucketDur := bucket.Duration()
	merged := entity.MergeOverlapping(clipped)

	var busyDur time.Duration
	for _, b := range merged {
		busyDur += b.Duration()
	}
	freeDur := bucketDur - busyDur

	busyMinutes := int(busyDur.Minutes())
	slot := entity.DaySlot{
		Interval:    bucket,
		BusyMinutes: busyMinutes,
		FreeMinutes: int(bucketDur.Minutes()) - busyMinutes,
		Events:      overlapping,
	}

	switch {
	case busyDur == 0:
		slot.Status = entity.SlotStatusFree
	case freeDur < constants.MinFreePeriod:
		slot.Status = entity.SlotStatusBusy
	default:
		slot.Status = entity.SlotStatusPartial
		for _, gap := range entity.Subtract(bucket, merged) {
			if gap.Duration() >= constants.MinFreePeriod {
				slot.FreePeriods = append(slot.FreePeriods, gap)
			}
		}
	}
	return slot
}
