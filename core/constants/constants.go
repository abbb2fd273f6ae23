package constants

import "time"

// Database pool settings
const (
	DatabaseSSLMode         = "disable"
	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 5
	DatabaseConnMaxLifetime = 30 // minutes
)

// Working-hours window used when a request does not override it.
// The window is interpreted in the caller-supplied timezone and converted to
// absolute instants before any interval math.
const (
	WorkDayStartHour = 9
	WorkDayEndHour   = 18
)

// Availability classification
const (
	// DefaultBucketSize is the display/classification granularity of a day.
	DefaultBucketSize = time.Hour
	// MinFreePeriod filters zero-length artifacts at touching-interval edges:
	// a gap shorter than this does not count as a free period.
	MinFreePeriod = time.Minute
)

// Booking policy
const (
	// ClockSkewTolerance lets a request start slightly in the past before it
	// is rejected as INVALID_RANGE.
	ClockSkewTolerance = time.Minute
	// BookingLockTTL bounds how long a per-calendar advisory lock can be held
	// across validate+write.
	BookingLockTTL = 15 * time.Second
)

// Provider calls
const (
	ProviderTimeout = 30 * time.Second
)

// Slot proposals
const (
	ProposalAlignment   = 15 * time.Minute
	MaxProposedSlots    = 3
	DefaultSlotDuration = 30 // minutes
)
