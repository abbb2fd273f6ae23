package dto

import (
	"time"

	"slotwise/modules/booking/entity"
)

type CreateBookingRequest struct {
	CalendarID   string               `json:"calendar_id"`
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	Start        string               `json:"start"`
	End          string               `json:"end"`
	Participants []entity.Participant `json:"participants"`
	Timezone     string               `json:"timezone"`
}

type BookingResponse struct {
	ID              string               `json:"id"`
	CalendarID      string               `json:"calendar_id"`
	Title           string               `json:"title"`
	Description     string               `json:"description,omitempty"`
	Start           string               `json:"start"`
	End             string               `json:"end"`
	Participants    []entity.Participant `json:"participants"`
	Timezone        string               `json:"timezone"`
	ProviderEventID string               `json:"provider_event_id,omitempty"`
	MeetingLink     string               `json:"meeting_link,omitempty"`
	Status          string               `json:"status"`
	CreatedAt       string               `json:"created_at"`
}

type ListBookingsResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}

func ToBookingResponse(b *entity.Booking) BookingResponse {
	resp := BookingResponse{
		ID:           b.ID.String(),
		CalendarID:   b.CalendarID,
		Title:        b.Title,
		Start:        b.StartTime.Format(time.RFC3339),
		End:          b.EndTime.Format(time.RFC3339),
		Participants: b.Participants,
		Timezone:     b.Timezone,
		Status:       string(b.Status),
		CreatedAt:    b.CreatedAt.Format(time.RFC3339),
	}
	if b.Description != nil {
		resp.Description = *b.Description
	}
	if b.ProviderEventID != nil {
		resp.ProviderEventID = *b.ProviderEventID
	}
	if b.MeetingLink != nil {
		resp.MeetingLink = *b.MeetingLink
	}
	return resp
}

func ToListBookingsResponse(bookings []entity.Booking, limit, offset int) ListBookingsResponse {
	out := make([]BookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, ToBookingResponse(&bookings[i]))
	}
	return ListBookingsResponse{Bookings: out, Limit: limit, Offset: offset}
}
