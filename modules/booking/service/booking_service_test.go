package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"slotwise/core/errors"
	"slotwise/core/workers"
	"slotwise/modules/booking/entity"
	providerentity "slotwise/modules/provider/entity"
	providersvc "slotwise/modules/provider/service"
)

type fakeProvider struct {
	events    []providerentity.CalendarEvent
	listErr   error
	createRes *providerentity.CalendarEvent
	createErr error
	creates   int
	deleted   []string
	deleteErr error
}

func (f *fakeProvider) ListEvents(ctx context.Context, calendarID string, from, to time.Time) ([]providerentity.CalendarEvent, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.events, nil
}

func (f *fakeProvider) CreateEvent(ctx context.Context, calendarID string, input providerentity.CreateEventInput) (*providerentity.CalendarEvent, error) {
	f.creates++
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createRes != nil {
		return f.createRes, nil
	}
	return &providerentity.CalendarEvent{
		ID:       "evt-123",
		Start:    input.Start,
		End:      input.End,
		Title:    input.Title,
		HTMLLink: "https://calendar.example/evt-123",
	}, nil
}

func (f *fakeProvider) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	f.deleted = append(f.deleted, eventID)
	return f.deleteErr
}

func (f *fakeProvider) FreeBusy(ctx context.Context, calendarID string, from, to time.Time) ([]providersvc.BusyPeriod, error) {
	return nil, nil
}

type fakeRepo struct {
	bookings  map[uuid.UUID]*entity.Booking
	createErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{bookings: map[uuid.UUID]*entity.Booking{}}
}

func (f *fakeRepo) Create(ctx context.Context, booking *entity.Booking) (*entity.Booking, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	stored := *booking
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	f.bookings[stored.ID] = &stored
	return &stored, nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, nil
	}
	copied := *b
	return &copied, nil
}

func (f *fakeRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, status string, limit, offset int) ([]entity.Booking, error) {
	var out []entity.Booking
	for _, b := range f.bookings {
		if b.OwnerID != ownerID {
			continue
		}
		if status != "" && string(b.Status) != status {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (f *fakeRepo) MarkCancelled(ctx context.Context, id uuid.UUID) error {
	b, ok := f.bookings[id]
	if !ok {
		return fmt.Errorf("booking %s not found", id)
	}
	b.Status = entity.BookingStatusCancelled
	return nil
}

type fakeLocker struct {
	denied   bool
	err      error
	acquired []string
	released []string
}

func (f *fakeLocker) Get(ctx context.Context, key string) (string, error) { return "", nil }

func (f *fakeLocker) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return nil
}

func (f *fakeLocker) Delete(ctx context.Context, key string) error { return nil }
func (f *fakeLocker) ReleaseLock(ctx context.Context, key string) error {
	f.released = append(f.released, key)
	return nil
}

func (f *fakeLocker) AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.denied {
		return false, nil
	}
	f.acquired = append(f.acquired, key)
	return true, nil
}

type fakeEnqueuer struct {
	payloads []workers.CompensatePayload
	err      error
}

func (f *fakeEnqueuer) EnqueueCompensateDelete(ctx context.Context, payload workers.CompensatePayload) error {
	if f.err != nil {
		return f.err
	}
	f.payloads = append(f.payloads, payload)
	return nil
}

type fixture struct {
	provider *fakeProvider
	repo     *fakeRepo
	locker   *fakeLocker
	enqueuer *fakeEnqueuer
	svc      BookingService
	now      time.Time
}

func newFixture() *fixture {
	now := time.Date(2026, time.March, 3, 8, 0, 0, 0, time.UTC)
	provider := &fakeProvider{}
	repo := newFakeRepo()
	locker := &fakeLocker{}
	enqueuer := &fakeEnqueuer{}
	validator := &bookingValidator{provider: provider, now: func() time.Time { return now }}
	svc := NewBookingService(repo, validator, provider, locker, enqueuer)
	return &fixture{provider: provider, repo: repo, locker: locker, enqueuer: enqueuer, svc: svc, now: now}
}

func (fx *fixture) input() CreateBookingInput {
	return CreateBookingInput{
		CalendarID:  "primary",
		Title:       "Design review",
		Description: "quarterly sync",
		Start:       fx.now.Add(2 * time.Hour),
		End:         fx.now.Add(3 * time.Hour),
		Participants: []entity.Participant{
			{Email: "ana@example.com", Name: "Ana"},
		},
		Timezone: "UTC",
	}
}

func TestCreateBookingHappyPath(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	ownerID := uuid.New()

	booking, appErr := fx.svc.CreateBooking(context.Background(), ownerID, fx.input())
	if appErr != nil {
		t.Fatalf("unexpected error: %v", appErr)
	}

	if booking.Status != entity.BookingStatusScheduled {
		t.Errorf("status = %s, want scheduled", booking.Status)
	}
	if booking.ProviderEventID == nil || *booking.ProviderEventID != "evt-123" {
		t.Errorf("provider event id not persisted: %v", booking.ProviderEventID)
	}
	if booking.MeetingLink == nil {
		t.Error("meeting link not persisted")
	}
	if fx.provider.creates != 1 {
		t.Errorf("provider writes = %d, want 1", fx.provider.creates)
	}
	if len(fx.locker.acquired) != 1 || len(fx.locker.released) != 1 {
		t.Errorf("lock acquire/release = %d/%d, want 1/1", len(fx.locker.acquired), len(fx.locker.released))
	}
	if _, err := fx.repo.GetByID(context.Background(), booking.ID); err != nil {
		t.Errorf("booking not stored: %v", err)
	}
}

func TestCreateBookingStructuralValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*CreateBookingInput)
	}{
		{"empty title", func(in *CreateBookingInput) { in.Title = "   " }},
		{"bad email", func(in *CreateBookingInput) { in.Participants[0].Email = "not-an-email" }},
		{"bad timezone", func(in *CreateBookingInput) { in.Timezone = "Mars/Olympus" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fx := newFixture()
			in := fx.input()
			tt.mutate(&in)

			_, appErr := fx.svc.CreateBooking(context.Background(), uuid.New(), in)
			if appErr == nil || appErr.Code != errors.ErrInvalidInput {
				t.Errorf("got %v, want %s", appErr, errors.ErrInvalidInput)
			}
			if fx.provider.creates != 0 {
				t.Error("provider written despite invalid input")
			}
		})
	}
}

func TestCreateBookingConflictSkipsProviderWrite(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	in := fx.input()
	fx.provider.events = []providerentity.CalendarEvent{
		{ID: "other", Start: in.Start.Add(30 * time.Minute), End: in.End.Add(30 * time.Minute), Title: "standup"},
	}

	_, appErr := fx.svc.CreateBooking(context.Background(), uuid.New(), in)
	if appErr == nil || appErr.Code != errors.ErrConflict {
		t.Fatalf("got %v, want %s", appErr, errors.ErrConflict)
	}
	if appErr.Details == nil {
		t.Error("conflict response carries no conflicting events")
	}
	if fx.provider.creates != 0 {
		t.Error("provider event created despite conflict")
	}
	if len(fx.repo.bookings) != 0 {
		t.Error("booking persisted despite conflict")
	}
}

func TestCreateBookingTouchingEventIsNotConflict(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	in := fx.input()
	// Existing event ends exactly when the new one starts.
	fx.provider.events = []providerentity.CalendarEvent{
		{ID: "before", Start: in.Start.Add(-time.Hour), End: in.Start, Title: "earlier"},
	}

	if _, appErr := fx.svc.CreateBooking(context.Background(), uuid.New(), in); appErr != nil {
		t.Fatalf("back-to-back booking rejected: %v", appErr)
	}
}

func TestCreateBookingLockDenied(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	fx.locker.denied = true

	_, appErr := fx.svc.CreateBooking(context.Background(), uuid.New(), fx.input())
	if appErr == nil || appErr.Code != errors.ErrConflict {
		t.Fatalf("got %v, want %s", appErr, errors.ErrConflict)
	}
	if fx.provider.creates != 0 {
		t.Error("provider written while another booking held the lock")
	}
}

func TestCreateBookingLockOutageFallsThrough(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	fx.locker.err = fmt.Errorf("redis down")

	if _, appErr := fx.svc.CreateBooking(context.Background(), uuid.New(), fx.input()); appErr != nil {
		t.Fatalf("lock outage must not block booking: %v", appErr)
	}
}

func TestCreateBookingPersistFailureCompensates(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	fx.repo.createErr = fmt.Errorf("disk full")

	_, appErr := fx.svc.CreateBooking(context.Background(), uuid.New(), fx.input())
	if appErr == nil || appErr.Code != errors.ErrPersistenceFailed {
		t.Fatalf("got %v, want %s", appErr, errors.ErrPersistenceFailed)
	}
	if len(fx.provider.deleted) != 1 || fx.provider.deleted[0] != "evt-123" {
		t.Errorf("compensating delete not issued: %v", fx.provider.deleted)
	}
	if len(fx.enqueuer.payloads) != 0 {
		t.Error("queue used although the inline delete succeeded")
	}
}

func TestCreateBookingCompensationFallsBackToQueue(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	fx.repo.createErr = fmt.Errorf("disk full")
	fx.provider.deleteErr = errors.NewAppError(errors.ErrProviderUnavailable, "timeout", nil)

	_, appErr := fx.svc.CreateBooking(context.Background(), uuid.New(), fx.input())
	if appErr == nil || appErr.Code != errors.ErrPersistenceFailed {
		t.Fatalf("got %v, want %s", appErr, errors.ErrPersistenceFailed)
	}
	if len(fx.enqueuer.payloads) != 1 {
		t.Fatalf("compensation not queued: %v", fx.enqueuer.payloads)
	}
	if fx.enqueuer.payloads[0].EventID != "evt-123" {
		t.Errorf("queued wrong event: %v", fx.enqueuer.payloads[0])
	}
}

func TestCreateBookingAmbiguousProviderErrorSurfaces(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	fx.provider.createErr = errors.NewAmbiguousProviderError("deadline during event creation", context.DeadlineExceeded)

	_, appErr := fx.svc.CreateBooking(context.Background(), uuid.New(), fx.input())
	if appErr == nil || !appErr.Ambiguous {
		t.Fatalf("ambiguity flag lost: %v", appErr)
	}
}

func TestDeleteBookingIdempotent(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	ownerID := uuid.New()
	booking, appErr := fx.svc.CreateBooking(context.Background(), ownerID, fx.input())
	if appErr != nil {
		t.Fatal(appErr)
	}

	if appErr := fx.svc.DeleteBooking(context.Background(), ownerID, booking.ID); appErr != nil {
		t.Fatalf("first delete failed: %v", appErr)
	}
	if got, _ := fx.repo.GetByID(context.Background(), booking.ID); got.Status != entity.BookingStatusCancelled {
		t.Errorf("status = %s, want cancelled", got.Status)
	}
	deletesAfterFirst := len(fx.provider.deleted)

	// Second delete succeeds without another provider call.
	if appErr := fx.svc.DeleteBooking(context.Background(), ownerID, booking.ID); appErr != nil {
		t.Fatalf("repeat delete failed: %v", appErr)
	}
	if len(fx.provider.deleted) != deletesAfterFirst {
		t.Error("repeat delete touched the provider")
	}
}

func TestDeleteBookingProviderEventAlreadyGone(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	ownerID := uuid.New()
	booking, appErr := fx.svc.CreateBooking(context.Background(), ownerID, fx.input())
	if appErr != nil {
		t.Fatal(appErr)
	}

	fx.provider.deleteErr = errors.NewAppError(errors.ErrNotFound, "gone", nil)
	if appErr := fx.svc.DeleteBooking(context.Background(), ownerID, booking.ID); appErr != nil {
		t.Fatalf("delete of an already-removed event failed: %v", appErr)
	}
	if got, _ := fx.repo.GetByID(context.Background(), booking.ID); got.Status != entity.BookingStatusCancelled {
		t.Errorf("status = %s, want cancelled", got.Status)
	}
}

func TestDeleteBookingProviderFailureLeavesScheduled(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	ownerID := uuid.New()
	booking, appErr := fx.svc.CreateBooking(context.Background(), ownerID, fx.input())
	if appErr != nil {
		t.Fatal(appErr)
	}

	fx.provider.deleteErr = errors.NewAppError(errors.ErrProviderUnavailable, "timeout", nil)
	if appErr := fx.svc.DeleteBooking(context.Background(), ownerID, booking.ID); appErr == nil {
		t.Fatal("expected delete to fail")
	}
	if got, _ := fx.repo.GetByID(context.Background(), booking.ID); got.Status != entity.BookingStatusScheduled {
		t.Errorf("status = %s, want scheduled after failed delete", got.Status)
	}
}

func TestDeleteBookingWrongOwner(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	booking, appErr := fx.svc.CreateBooking(context.Background(), uuid.New(), fx.input())
	if appErr != nil {
		t.Fatal(appErr)
	}

	if appErr := fx.svc.DeleteBooking(context.Background(), uuid.New(), booking.ID); appErr == nil || appErr.Code != errors.ErrNotFound {
		t.Errorf("got %v, want %s", appErr, errors.ErrNotFound)
	}
}

func TestListBookingsRejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	fx := newFixture()
	if _, appErr := fx.svc.ListBookings(context.Background(), uuid.New(), "pending", 10, 0); appErr == nil || appErr.Code != errors.ErrInvalidInput {
		t.Errorf("got %v, want %s", appErr, errors.ErrInvalidInput)
	}
}
