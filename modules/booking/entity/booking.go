package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	coreentity "slotwise/core/entity"
)

// BookingStatus is the lifecycle state of a locally persisted booking.
// Records are never hard-deleted; deleting a booking flips it to cancelled
// so the audit trail survives.
type BookingStatus string

const (
	BookingStatusScheduled BookingStatus = "scheduled"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Participant is one invited attendee of a booking.
type Participant struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// ParticipantList is stored as JSONB.
type ParticipantList []Participant

func (p ParticipantList) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	return json.Marshal(p)
}

func (p *ParticipantList) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	case nil:
		*p = nil
		return nil
	default:
		return fmt.Errorf("unsupported participants column type %T", src)
	}
}

// Booking is the locally persisted record of a meeting, linked to (but
// distinct from) the provider's event via ProviderEventID.
type Booking struct {
	coreentity.BaseEntity
	OwnerID         uuid.UUID       `db:"owner_id" json:"owner_id"`
	CalendarID      string          `db:"calendar_id" json:"calendar_id"`
	Title           string          `db:"title" json:"title"`
	Description     *string         `db:"description" json:"description,omitempty"`
	StartTime       time.Time       `db:"start_time" json:"start_time"`
	EndTime         time.Time       `db:"end_time" json:"end_time"`
	Participants    ParticipantList `db:"participants" json:"participants"`
	Timezone        string          `db:"timezone" json:"timezone"`
	ProviderEventID *string         `db:"provider_event_id" json:"provider_event_id,omitempty"`
	MeetingLink     *string         `db:"meeting_link" json:"meeting_link,omitempty"`
	Status          BookingStatus   `db:"status" json:"status"`
}
