package entity

import (
	"fmt"
	"sort"
	"time"
)

// TimeInterval is a half-open time range [Start, End). All interval math in
// the engine operates on absolute instants; wall-clock strings are converted
// exactly once at the boundary. Touching intervals (a.End == b.Start) do not
// overlap and are never merged.
type TimeInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewTimeInterval builds an interval, rejecting Start >= End.
func NewTimeInterval(start, end time.Time) (TimeInterval, error) {
	if !start.Before(end) {
		return TimeInterval{}, fmt.Errorf("invalid interval: start %s is not before end %s",
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return TimeInterval{Start: start, End: end}, nil
}

func (i TimeInterval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// Overlaps reports whether the two half-open intervals share any instant.
func (i TimeInterval) Overlaps(other TimeInterval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Intersect returns the common sub-interval, if any.
func (i TimeInterval) Intersect(other TimeInterval) (TimeInterval, bool) {
	if !i.Overlaps(other) {
		return TimeInterval{}, false
	}
	start := i.Start
	if other.Start.After(start) {
		start = other.Start
	}
	end := i.End
	if other.End.Before(end) {
		end = other.End
	}
	return TimeInterval{Start: start, End: end}, true
}

// MergeOverlapping coalesces strictly overlapping intervals. Input order does
// not matter; output is sorted by start and pairwise non-overlapping.
// Back-to-back intervals stay separate, so a 9:00-10:00 and 10:00-11:00 pair
// is reported as two busy blocks.
func MergeOverlapping(intervals []TimeInterval) []TimeInterval {
	if len(intervals) == 0 {
		return nil
	}

	sorted := make([]TimeInterval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(a, b int) bool {
		if sorted[a].Start.Equal(sorted[b].Start) {
			return sorted[a].End.Before(sorted[b].End)
		}
		return sorted[a].Start.Before(sorted[b].Start)
	})

	merged := []TimeInterval{sorted[0]}
	for _, curr := range sorted[1:] {
		last := &merged[len(merged)-1]
		if curr.Start.Before(last.End) {
			if curr.End.After(last.End) {
				last.End = curr.End
			}
		} else {
			merged = append(merged, curr)
		}
	}
	return merged
}

// Subtract returns the free sub-intervals of window not covered by busy.
// The busy set is merged first; zero-length gaps from touching intervals
// produce no artifacts.
func Subtract(window TimeInterval, busy []TimeInterval) []TimeInterval {
	var free []TimeInterval
	cursor := window.Start

	for _, b := range MergeOverlapping(busy) {
		clipped, ok := b.Intersect(window)
		if !ok {
			continue
		}
		if clipped.Start.After(cursor) {
			free = append(free, TimeInterval{Start: cursor, End: clipped.Start})
		}
		if clipped.End.After(cursor) {
			cursor = clipped.End
		}
	}

	if cursor.Before(window.End) {
		free = append(free, TimeInterval{Start: cursor, End: window.End})
	}
	return free
}
