package service

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"slotwise/core/cache"
	"slotwise/core/constants"
	coreentity "slotwise/core/entity"
	"slotwise/core/errors"
	"slotwise/core/logger"
	"slotwise/core/workers"
	availentity "slotwise/modules/availability/entity"
	"slotwise/modules/booking/entity"
	"slotwise/modules/booking/repository"
	providerentity "slotwise/modules/provider/entity"
	providersvc "slotwise/modules/provider/service"
)

type CreateBookingInput struct {
	CalendarID   string
	Title        string
	Description  string
	Start        time.Time
	End          time.Time
	Participants []entity.Participant
	Timezone     string
}

// BookingService coordinates the full booking lifecycle: structural
// validation, live conflict re-check, provider event creation, and local
// persistence, plus the compensation path when persistence fails after the
// provider write already happened.
type BookingService interface {
	CreateBooking(ctx context.Context, ownerID uuid.UUID, input CreateBookingInput) (*entity.Booking, *errors.AppError)
	DeleteBooking(ctx context.Context, ownerID, bookingID uuid.UUID) *errors.AppError
	GetBooking(ctx context.Context, ownerID, bookingID uuid.UUID) (*entity.Booking, *errors.AppError)
	ListBookings(ctx context.Context, ownerID uuid.UUID, status string, limit, offset int) ([]entity.Booking, *errors.AppError)
}

type bookingService struct {
	repo      repository.BookingRepositoryInterface
	validator BookingValidator
	provider  providersvc.Provider
	locker    cache.Cache
	enqueuer  workers.CompensationEnqueuer
}

func NewBookingService(
	repo repository.BookingRepositoryInterface,
	validator BookingValidator,
	provider providersvc.Provider,
	locker cache.Cache,
	enqueuer workers.CompensationEnqueuer,
) BookingService {
	return &bookingService{
		repo:      repo,
		validator: validator,
		provider:  provider,
		locker:    locker,
		enqueuer:  enqueuer,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, ownerID uuid.UUID, input CreateBookingInput) (*entity.Booking, *errors.AppError) {
	if appErr := validateInput(&input); appErr != nil {
		return nil, appErr
	}

	// Serialize bookings per calendar within this process. The lock is
	// advisory: if redis is down we proceed without it and rely on the
	// validator's re-read alone.
	lockKey := "booking:" + input.CalendarID
	acquired, lockErr := s.locker.AcquireLock(ctx, lockKey, constants.BookingLockTTL)
	if lockErr != nil {
		logger.Warn("BookingService:CreateBooking:Lock:Unavailable", "calendar_id", input.CalendarID, "error", lockErr)
	} else if !acquired {
		return nil, errors.NewAppError(errors.ErrConflict, "another booking for this calendar is in progress", nil)
	} else {
		defer func() {
			if err := s.locker.ReleaseLock(context.WithoutCancel(ctx), lockKey); err != nil {
				logger.Warn("BookingService:CreateBooking:Lock:ReleaseFailed", "calendar_id", input.CalendarID, "error", err)
			}
		}()
	}

	interval := availentity.TimeInterval{Start: input.Start, End: input.End}
	conflicts, appErr := s.validator.Validate(ctx, input.CalendarID, interval)
	if appErr != nil {
		if appErr.Code == errors.ErrConflict {
			return nil, appErr.WithDetails(conflictDetails(conflicts))
		}
		return nil, appErr
	}

	// Once we start writing to the provider the request must not be
	// abandoned halfway through: a caller disconnect here would leave a
	// calendar event with no booking row.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*constants.ProviderTimeout)
	defer cancel()

	event, err := s.provider.CreateEvent(writeCtx, input.CalendarID, providerentity.CreateEventInput{
		Start:       input.Start,
		End:         input.End,
		Title:       input.Title,
		Description: input.Description,
		Attendees:   toAttendees(input.Participants),
		Timezone:    input.Timezone,
	})
	if err != nil {
		logger.Error("BookingService:CreateBooking:CreateEvent:Error", "calendar_id", input.CalendarID, "error", err)
		if ae, ok := err.(*errors.AppError); ok {
			return nil, ae
		}
		return nil, errors.NewAppError(errors.ErrProviderUnavailable, "failed to create calendar event", err)
	}

	booking := &entity.Booking{
		BaseEntity:      coreentity.BaseEntity{ID: uuid.New()},
		OwnerID:         ownerID,
		CalendarID:      input.CalendarID,
		Title:           input.Title,
		StartTime:       input.Start,
		EndTime:         input.End,
		Participants:    input.Participants,
		Timezone:        input.Timezone,
		ProviderEventID: &event.ID,
		Status:          entity.BookingStatusScheduled,
	}
	if input.Description != "" {
		booking.Description = &input.Description
	}
	if event.HTMLLink != "" {
		booking.MeetingLink = &event.HTMLLink
	}

	created, dbErr := s.repo.Create(writeCtx, booking)
	if dbErr != nil {
		logger.Error("BookingService:CreateBooking:Persist:Error", "event_id", event.ID, "error", dbErr)
		s.compensate(writeCtx, input.CalendarID, event.ID, booking.ID.String())
		return nil, errors.NewAppError(errors.ErrPersistenceFailed, "booking could not be saved; the calendar event is being rolled back", dbErr)
	}

	logger.Info("BookingService:CreateBooking:Success",
		"booking_id", created.ID, "calendar_id", input.CalendarID, "event_id", event.ID)
	return created, nil
}

// compensate removes a provider event whose booking row failed to persist.
// If the immediate delete also fails the cleanup is handed to the retry
// queue rather than dropped.
func (s *bookingService) compensate(ctx context.Context, calendarID, eventID, bookingID string) {
	err := s.provider.DeleteEvent(ctx, calendarID, eventID)
	if err == nil {
		logger.Info("BookingService:Compensate:Deleted", "event_id", eventID)
		return
	}
	if errors.IsCode(err, errors.ErrNotFound) {
		return
	}
	logger.Warn("BookingService:Compensate:DeferredToQueue", "event_id", eventID, "error", err)
	if qErr := s.enqueuer.EnqueueCompensateDelete(ctx, workers.CompensatePayload{
		CalendarID: calendarID,
		EventID:    eventID,
		BookingID:  bookingID,
	}); qErr != nil {
		// Worst case: the orphan stays visible on the calendar until an
		// operator removes it. Log loudly, nothing else to do inline.
		logger.Error("BookingService:Compensate:EnqueueFailed",
			"calendar_id", calendarID, "event_id", eventID, "error", qErr)
	}
}

func (s *bookingService) DeleteBooking(ctx context.Context, ownerID, bookingID uuid.UUID) *errors.AppError {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "failed to load booking", err)
	}
	if booking == nil || booking.OwnerID != ownerID {
		return errors.NewAppError(errors.ErrNotFound, "booking not found", nil)
	}
	if booking.Status == entity.BookingStatusCancelled {
		// Repeat deletes succeed without touching the provider again.
		return nil
	}

	// Provider first: if the remote delete fails the booking stays
	// scheduled and the caller can retry the whole operation.
	if booking.ProviderEventID != nil {
		callCtx, cancel := context.WithTimeout(ctx, constants.ProviderTimeout)
		defer cancel()
		if err := s.provider.DeleteEvent(callCtx, booking.CalendarID, *booking.ProviderEventID); err != nil {
			ae, ok := err.(*errors.AppError)
			if !ok {
				return errors.NewAppError(errors.ErrProviderUnavailable, "failed to delete calendar event", err)
			}
			if ae.Code != errors.ErrNotFound {
				logger.Error("BookingService:DeleteBooking:Provider:Error", "booking_id", bookingID, "error", ae)
				return ae
			}
			// Already gone remotely; still cancel locally.
		}
	}

	if err := s.repo.MarkCancelled(context.WithoutCancel(ctx), bookingID); err != nil {
		return errors.NewAppError(errors.ErrPersistenceFailed, "calendar event removed but booking could not be marked cancelled; retry the delete", err)
	}
	logger.Info("BookingService:DeleteBooking:Success", "booking_id", bookingID)
	return nil
}

func (s *bookingService) GetBooking(ctx context.Context, ownerID, bookingID uuid.UUID) (*entity.Booking, *errors.AppError) {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to load booking", err)
	}
	if booking == nil || booking.OwnerID != ownerID {
		return nil, errors.NewAppError(errors.ErrNotFound, "booking not found", nil)
	}
	return booking, nil
}

func (s *bookingService) ListBookings(ctx context.Context, ownerID uuid.UUID, status string, limit, offset int) ([]entity.Booking, *errors.AppError) {
	if status != "" && status != string(entity.BookingStatusScheduled) && status != string(entity.BookingStatusCancelled) {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "status must be scheduled or cancelled", nil)
	}
	bookings, err := s.repo.ListByOwner(ctx, ownerID, status, limit, offset)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "failed to list bookings", err)
	}
	return bookings, nil
}

func validateInput(input *CreateBookingInput) *errors.AppError {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return errors.NewAppError(errors.ErrInvalidInput, "title is required", nil)
	}
	if input.CalendarID == "" {
		input.CalendarID = "primary"
	}
	if input.Timezone == "" {
		input.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(input.Timezone); err != nil {
		return errors.NewAppError(errors.ErrInvalidInput, "unknown timezone", err)
	}
	for _, p := range input.Participants {
		if _, err := mail.ParseAddress(p.Email); err != nil {
			return errors.NewAppError(errors.ErrInvalidInput, "invalid participant email: "+p.Email, err)
		}
	}
	return nil
}

func toAttendees(participants []entity.Participant) []providerentity.Attendee {
	attendees := make([]providerentity.Attendee, 0, len(participants))
	for _, p := range participants {
		attendees = append(attendees, providerentity.Attendee{Email: p.Email, Name: p.Name})
	}
	return attendees
}

func conflictDetails(conflicts []providerentity.CalendarEvent) any {
	type conflictDTO struct {
		Title string `json:"title"`
		Start string `json:"start"`
		End   string `json:"end"`
	}
	out := make([]conflictDTO, 0, len(conflicts))
	for _, ev := range conflicts {
		out = append(out, conflictDTO{
			Title: ev.Title,
			Start: ev.Start.Format(time.RFC3339),
			End:   ev.End.Format(time.RFC3339),
		})
	}
	return out
}
