package repository

import (
	"context"
	"database/sql"

	"slotwise/core/database"
	"slotwise/core/logger"
	"slotwise/modules/booking/entity"

	"github.com/google/uuid"
)

type BookingRepositoryInterface interface {
	Create(ctx context.Context, booking *entity.Booking) (*entity.Booking, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, status string, limit, offset int) ([]entity.Booking, error)
	MarkCancelled(ctx context.Context, id uuid.UUID) error
}

// BookingRepository persists booking records in Postgres.
type BookingRepository struct {
	DB database.IDatabase
}

func NewBookingRepository(db database.IDatabase) *BookingRepository {
	return &BookingRepository{DB: db}
}

const bookingColumns = `
	id, owner_id, calendar_id, title, description, start_time, end_time,
	participants, timezone, provider_event_id, meeting_link, status,
	created_at, updated_at`

func (r *BookingRepository) Create(ctx context.Context, booking *entity.Booking) (*entity.Booking, error) {
	query := `
		INSERT INTO bookings (id, owner_id, calendar_id, title, description, start_time, end_time,
		                      participants, timezone, provider_event_id, meeting_link, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + bookingColumns

	var created entity.Booking
	err := r.DB.GetContext(ctx, &created, query,
		booking.ID, booking.OwnerID, booking.CalendarID, booking.Title, booking.Description,
		booking.StartTime, booking.EndTime, booking.Participants, booking.Timezone,
		booking.ProviderEventID, booking.MeetingLink, booking.Status)
	if err != nil {
		logger.Error("BookingRepository:Create", err)
		return nil, err
	}
	return &created, nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	var booking entity.Booking
	err := r.DB.GetContext(ctx, &booking, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("BookingRepository:GetByID", err)
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, status string, limit, offset int) ([]entity.Booking, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var bookings []entity.Booking
	var err error

	if status != "" {
		query := `SELECT ` + bookingColumns + `
			FROM bookings WHERE owner_id = $1 AND status = $2
			ORDER BY created_at DESC LIMIT $3 OFFSET $4`
		err = r.DB.SelectContext(ctx, &bookings, query, ownerID, status, limit, offset)
	} else {
		query := `SELECT ` + bookingColumns + `
			FROM bookings WHERE owner_id = $1
			ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		err = r.DB.SelectContext(ctx, &bookings, query, ownerID, limit, offset)
	}

	if err != nil {
		logger.Error("BookingRepository:ListByOwner", err)
		return nil, err
	}
	return bookings, nil
}

func (r *BookingRepository) MarkCancelled(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE bookings SET status = $2, updated_at = NOW() WHERE id = $1`
	if err := r.DB.ExecContext(ctx, query, id, entity.BookingStatusCancelled); err != nil {
		logger.Error("BookingRepository:MarkCancelled", err)
		return err
	}
	return nil
}
