package timetrack

import "time"

// Event is one classified time span taken from a calendar.
type Event struct {
	start    time.Time
	end      time.Time
	tag      string
	duration time.Duration
}

// NewEvent creates an Event. The duration is fixed at construction; end is
// not required to be after start.
func NewEvent(start, end time.Time, tag string) Event {
	return Event{
		start:    start,
		end:      end,
		tag:      tag,
		duration: end.Sub(start),
	}
}

// Start returns the beginning of the span.
func (e Event) Start() time.Time { return e.start }

// End returns the end of the span.
func (e Event) End() time.Time { return e.end }

// Tag is the full event summary, marker included.
func (e Event) Tag() string { return e.tag }

// Duration returns end minus start as computed by NewEvent.
func (e Event) Duration() time.Duration { return e.duration }
