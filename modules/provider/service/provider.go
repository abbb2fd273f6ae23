package service

import (
	"context"
	"time"

	"slotwise/modules/provider/entity"
)

// BusyPeriod is one span the provider reports as occupied.
type BusyPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Provider abstracts the external calendar service. It is the authoritative
// source of events and the target of all writes; the engine never trusts a
// cached view of it when committing a booking.
//
// Implementations return *errors.AppError values with the engine taxonomy:
// AUTH_EXPIRED, QUOTA_EXCEEDED, PROVIDER_UNAVAILABLE (Ambiguous set when a
// write timed out with an unknown outcome) and NOT_FOUND for deletes.
type Provider interface {
	ListEvents(ctx context.Context, calendarID string, from, to time.Time) ([]entity.CalendarEvent, error)
	CreateEvent(ctx context.Context, calendarID string, input entity.CreateEventInput) (*entity.CalendarEvent, error)
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
	FreeBusy(ctx context.Context, calendarID string, from, to time.Time) ([]BusyPeriod, error)
}
