package service

import (
	"context"
	"sort"
	"time"

	"slotwise/core/constants"
	"slotwise/core/errors"
	"slotwise/core/logger"
	"slotwise/modules/availability/entity"
)

// SlotProposal is a candidate meeting slot ranked for the caller.
type SlotProposal struct {
	Interval entity.TimeInterval `json:"interval"`
	Score    float64             `json:"score"`
}

func (s *availabilityService) ProposeSlots(ctx context.Context, calendarID string, durationMinutes int, windows []entity.TimeInterval) ([]SlotProposal, *errors.AppError) {
	if durationMinutes <= 0 {
		durationMinutes = constants.DefaultSlotDuration
	}
	if len(windows) == 0 {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "at least one preferred window is required", nil)
	}

	duration := time.Duration(durationMinutes) * time.Minute
	var candidates []entity.TimeInterval

	for _, window := range windows {
		callCtx, cancel := context.WithTimeout(ctx, constants.ProviderTimeout)
		periods, err := s.provider.FreeBusy(callCtx, calendarID, window.Start, window.End)
		cancel()
		if err != nil {
			logger.Warn("AvailabilityService:ProposeSlots:FreeBusy:Error",
				"calendar_id", calendarID, "error", err)
			if ae, ok := err.(*errors.AppError); ok && ae.Code == errors.ErrAuthExpired {
				return nil, ae
			}
			// Transient read failures skip this window rather than failing
			// the whole proposal.
			continue
		}

		busy := make([]entity.TimeInterval, 0, len(periods))
		for _, p := range periods {
			if p.Start.Before(p.End) {
				busy = append(busy, entity.TimeInterval{Start: p.Start, End: p.End})
			}
		}

		candidates = append(candidates, freeSlotsInWindow(window, entity.MergeOverlapping(busy), duration)...)
	}

	reference := windows[0].Start
	proposals := make([]SlotProposal, 0, len(candidates))
	for _, c := range candidates {
		proposals = append(proposals, SlotProposal{Interval: c, Score: scoreSlot(c.Start, reference)})
	}

	sort.SliceStable(proposals, func(i, j int) bool {
		return proposals[i].Score > proposals[j].Score
	})

	if len(proposals) > constants.MaxProposedSlots {
		proposals = proposals[:constants.MaxProposedSlots]
	}

	logger.Info("AvailabilityService:ProposeSlots:Success",
		"calendar_id", calendarID, "proposals", len(proposals))
	return proposals, nil
}

// freeSlotsInWindow enumerates duration-sized slots aligned on 15-minute
// boundaries, jumping past busy spans.
func freeSlotsInWindow(window entity.TimeInterval, mergedBusy []entity.TimeInterval, duration time.Duration) []entity.TimeInterval {
	var slots []entity.TimeInterval
	current := alignUp(window.Start)

	for !current.Add(duration).After(window.End) {
		candidate := entity.TimeInterval{Start: current, End: current.Add(duration)}

		blocked := false
		for _, busy := range mergedBusy {
			if candidate.Overlaps(busy) {
				blocked = true
				current = alignUp(busy.End)
				break
			}
		}
		if blocked {
			continue
		}

		slots = append(slots, candidate)
		current = current.Add(constants.ProposalAlignment)
	}
	return slots
}

func alignUp(t time.Time) time.Time {
	aligned := t.Truncate(constants.ProposalAlignment)
	if aligned.Before(t) {
		aligned = aligned.Add(constants.ProposalAlignment)
	}
	return aligned
}

// scoreSlot weights a candidate start: business hours beat the shoulders,
// same-day beats later, and Monday mornings / Friday afternoons are
// penalized. Capped at 1.0.
func scoreSlot(start, reference time.Time) float64 {
	score := 1.0

	hour := start.Hour()
	switch {
	case hour >= 9 && hour < 17:
		// ideal
	case hour >= 8 && hour < 9, hour >= 17 && hour < 18:
		score *= 0.9
	default:
		score *= 0.7
	}

	hoursOut := start.Sub(reference).Hours()
	switch {
	case hoursOut < 2:
		score *= 0.8
	case hoursOut < 24:
		// same day
	case hoursOut < 48:
		score *= 0.95
	default:
		score *= 0.9
	}

	weekday := start.Weekday()
	if weekday == time.Monday && hour < 10 {
		score *= 0.85
	} else if weekday == time.Friday && hour >= 15 {
		score *= 0.85
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}
