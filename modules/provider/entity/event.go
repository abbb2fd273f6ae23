package entity

import "time"

// Attendee is a meeting participant as the calendar provider sees it.
type Attendee struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// CalendarEvent is an event owned by the external calendar provider. The
// engine treats it as read-only input except for deletion requests it issues.
type CalendarEvent struct {
	ID          string     `json:"id"`
	Start       time.Time  `json:"start"`
	End         time.Time  `json:"end"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	Attendees   []Attendee `json:"attendees,omitempty"`
	HTMLLink    string     `json:"html_link,omitempty"`
}

// CreateEventInput is what the engine sends to the provider when committing
// a booking. Timezone names the IANA zone the provider should attach to the
// event; Start/End remain absolute instants.
type CreateEventInput struct {
	Start       time.Time
	End         time.Time
	Title       string
	Description string
	Attendees   []Attendee
	Timezone    string
}
