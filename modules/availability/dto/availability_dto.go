package dto

import (
	"time"

	"slotwise/modules/availability/entity"
	"slotwise/modules/availability/service"
	providerentity "slotwise/modules/provider/entity"
)

// ========== Day availability DTOs ==========

type DayAvailabilityResponse struct {
	Date     string       `json:"date"`
	Timezone string       `json:"timezone"`
	Slots    []DaySlotDTO `json:"slots"`
}

type DaySlotDTO struct {
	Start       string      `json:"start"` // RFC3339, caller's timezone
	End         string      `json:"end"`
	Status      string      `json:"status"`
	BusyMinutes int         `json:"busy_minutes"`
	FreeMinutes int         `json:"free_minutes"`
	Events      []EventDTO  `json:"events,omitempty"`
	FreePeriods []PeriodDTO `json:"free_periods,omitempty"`
}

type PeriodDTO struct {
	Start           string `json:"start"`
	End             string `json:"end"`
	DurationMinutes int    `json:"duration_minutes"`
}

type EventDTO struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Start     string   `json:"start"`
	End       string   `json:"end"`
	Location  string   `json:"location,omitempty"`
	Link      string   `json:"link,omitempty"`
	Attendees []string `json:"attendees,omitempty"`
}

// ========== Slot proposal DTOs ==========

type TimeWindowDTO struct {
	Start string `json:"start" validate:"required"` // RFC3339
	End   string `json:"end" validate:"required"`   // RFC3339
}

type ProposeSlotsRequest struct {
	CalendarID       string          `json:"calendar_id"`
	DurationMinutes  int             `json:"duration_minutes"`
	PreferredWindows []TimeWindowDTO `json:"preferred_windows" validate:"required"`
}

type ProposalDTO struct {
	Start string  `json:"start"`
	End   string  `json:"end"`
	Score float64 `json:"score"`
}

type ProposeSlotsResponse struct {
	Slots []ProposalDTO `json:"slots"`
}

// ========== Mappers ==========

func ToDayAvailabilityResponse(date, timezone string, loc *time.Location, slots []entity.DaySlot) *DayAvailabilityResponse {
	resp := &DayAvailabilityResponse{Date: date, Timezone: timezone, Slots: make([]DaySlotDTO, 0, len(slots))}
	for _, s := range slots {
		resp.Slots = append(resp.Slots, toDaySlotDTO(s, loc))
	}
	return resp
}

func toDaySlotDTO(s entity.DaySlot, loc *time.Location) DaySlotDTO {
	d := DaySlotDTO{
		Start:       s.Interval.Start.In(loc).Format(time.RFC3339),
		End:         s.Interval.End.In(loc).Format(time.RFC3339),
		Status:      string(s.Status),
		BusyMinutes: s.BusyMinutes,
		FreeMinutes: s.FreeMinutes,
	}
	for _, ev := range s.Events {
		d.Events = append(d.Events, toEventDTO(ev, loc))
	}
	for _, p := range s.FreePeriods {
		d.FreePeriods = append(d.FreePeriods, PeriodDTO{
			Start:           p.Start.In(loc).Format(time.RFC3339),
			End:             p.End.In(loc).Format(time.RFC3339),
			DurationMinutes: int(p.Duration().Minutes()),
		})
	}
	return d
}

func toEventDTO(ev providerentity.CalendarEvent, loc *time.Location) EventDTO {
	dto := EventDTO{
		ID:       ev.ID,
		Title:    ev.Title,
		Start:    ev.Start.In(loc).Format(time.RFC3339),
		End:      ev.End.In(loc).Format(time.RFC3339),
		Location: ev.Location,
		Link:     ev.HTMLLink,
	}
	for _, a := range ev.Attendees {
		dto.Attendees = append(dto.Attendees, a.Email)
	}
	return dto
}

func ToProposeSlotsResponse(proposals []service.SlotProposal) *ProposeSlotsResponse {
	resp := &ProposeSlotsResponse{Slots: make([]ProposalDTO, 0, len(proposals))}
	for _, p := range proposals {
		resp.Slots = append(resp.Slots, ProposalDTO{
			Start: p.Interval.Start.Format(time.RFC3339),
			End:   p.Interval.End.Format(time.RFC3339),
			Score: p.Score,
		})
	}
	return resp
}
