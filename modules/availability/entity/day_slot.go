package entity

import provider "slotwise/modules/provider/entity"

// SlotStatus classifies a working-hour bucket.
type SlotStatus string

const (
	SlotStatusFree    SlotStatus = "free"
	SlotStatusPartial SlotStatus = "partial"
	SlotStatusBusy    SlotStatus = "busy"
)

// DaySlot is one working-hour bucket of a classified day. Derived data:
// recomputed on every query, never persisted.
type DaySlot struct {
	Interval    TimeInterval
	Status      SlotStatus
	BusyMinutes int
	FreeMinutes int
	// Events overlapping this bucket. An event spanning several buckets
	// appears in each of them.
	Events []provider.CalendarEvent
	// FreePeriods is populated for partial buckets only, filtered to gaps of
	// at least the minimum granularity.
	FreePeriods []TimeInterval
}
