package timetrack

import (
	"slices"
	"time"
)

// Day buckets the working and tracked events that start on one calendar date.
type Day struct {
	working []Event
	tracked []Event
}

func (d *Day) add(kind Kind, e Event) {
	switch kind {
	case Working:
		d.working = append(d.working, e)
	case Tracked:
		d.tracked = append(d.tracked, e)
	}
}

// WorkingEvents returns the working events in ingestion order.
func (d *Day) WorkingEvents() []Event { return slices.Clone(d.working) }

// TrackedEvents returns the tracked events in ingestion order.
func (d *Day) TrackedEvents() []Event { return slices.Clone(d.tracked) }

// WorkingTime is the summed duration of all working events.
func (d *Day) WorkingTime() time.Duration { return totalDuration(d.working) }

// TrackedTime is the summed duration of all tracked events.
func (d *Day) TrackedTime() time.Duration { return totalDuration(d.tracked) }

// Overtime is WorkingTime minus TrackedTime. A negative value means more
// time was tracked than expected.
func (d *Day) Overtime() time.Duration {
	return d.WorkingTime() - d.TrackedTime()
}

func totalDuration(events []Event) time.Duration {
	var sum time.Duration
	for _, e := range events {
		sum += e.Duration()
	}
	return sum
}
