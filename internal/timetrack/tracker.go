// Package timetrack aggregates calendar events into per-day working time,
// tracked time and overtime, with running totals over a date range.
package timetrack

import (
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Tiliavir/timetrack/internal/timecalc"
)

// DefaultMarker is the summary prefix that opts an event into tracking.
const DefaultMarker = "#"

const dayLayout = timecalc.DayLayout

// Tracker owns the per-day buckets for one report run.
//
// Running totals start at start; rows are only produced for the inclusive
// window [viewStart, viewEnd]. A Tracker is not safe for concurrent use;
// ingestion must complete before iteration.
type Tracker struct {
	start     time.Time
	viewStart time.Time
	viewEnd   time.Time
	days      map[string]*Day

	marker string
	log    log.FieldLogger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger sets the logger used for skip diagnostics.
func WithLogger(l log.FieldLogger) Option {
	return func(t *Tracker) {
		t.log = l
	}
}

// WithMarker sets the summary prefix required for an event to be counted.
// An empty marker accepts every timed event.
func WithMarker(marker string) Option {
	return func(t *Tracker) {
		t.marker = marker
	}
}

// NewTracker creates a Tracker. Only the calendar dates of the three
// arguments are used.
func NewTracker(start, viewStart, viewEnd time.Time, opts ...Option) *Tracker {
	t := &Tracker{
		start:     timecalc.DateOf(start),
		viewStart: timecalc.DateOf(viewStart),
		viewEnd:   timecalc.DateOf(viewEnd),
		days:      make(map[string]*Day),
		marker:    DefaultMarker,
		log:       log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start returns the first day counted into the running sums.
func (t *Tracker) Start() time.Time { return t.start }

// ViewStart returns the first day emitted by Rows.
func (t *Tracker) ViewStart() time.Time { return t.viewStart }

// ViewEnd returns the last day emitted by Rows.
func (t *Tracker) ViewEnd() time.Time { return t.viewEnd }

// IngestResult holds counters for one Ingest call.
type IngestResult struct {
	Ingested int
	Skipped  int
}

type stagedEvent struct {
	key   string
	event Event
}

// Ingest classifies records as kind and appends them to the Day of their
// start date.
//
// All-day records and records whose summary does not start with the marker
// are skipped with a warning. An invalid kind or an unparsable timestamp
// fails the whole call and leaves the Tracker unchanged. Ingesting the same
// record twice counts it twice.
func (t *Tracker) Ingest(records []Record, kind Kind) (IngestResult, error) {
	var result IngestResult
	if !kind.Valid() {
		return result, fmt.Errorf("%w: unknown event type %s, expected one of %s, %s",
			ErrInvalidClassification, kind, Working, Tracked)
	}

	staged := make([]stagedEvent, 0, len(records))
	for _, r := range records {
		entry := t.log.WithFields(log.Fields{
			"kind":    kind.String(),
			"day":     r.Day(),
			"summary": r.SummaryText(),
		})

		if !r.Start.Timed() || !r.End.Timed() {
			entry.Warn("event skipped: no start or end time")
			result.Skipped++
			continue
		}
		if r.Summary == nil || !strings.HasPrefix(*r.Summary, t.marker) {
			entry.Warnf("event skipped: summary does not start with %q", t.marker)
			result.Skipped++
			continue
		}

		start, err := parseTimestamp("start", r.Start.DateTime)
		if err != nil {
			return IngestResult{}, fmt.Errorf("event %q: %w", *r.Summary, err)
		}
		end, err := parseTimestamp("end", r.End.DateTime)
		if err != nil {
			return IngestResult{}, fmt.Errorf("event %q: %w", *r.Summary, err)
		}

		staged = append(staged, stagedEvent{
			key:   timecalc.DayKey(start),
			event: NewEvent(start, end, *r.Summary),
		})
	}

	for _, s := range staged {
		t.dayFor(s.key).add(kind, s.event)
		t.log.WithFields(log.Fields{
			"kind":     kind.String(),
			"day":      s.key,
			"tag":      s.event.Tag(),
			"duration": s.event.Duration(),
		}).Debug("event ingested")
	}
	result.Ingested = len(staged)
	return result, nil
}

// dayFor returns the Day stored under key, inserting an empty one first.
func (t *Tracker) dayFor(key string) *Day {
	d, ok := t.days[key]
	if !ok {
		d = &Day{}
		t.days[key] = d
	}
	return d
}

// lookup returns the Day for date without storing anything.
func (t *Tracker) lookup(date time.Time) *Day {
	if d, ok := t.days[timecalc.DayKey(date)]; ok {
		return d
	}
	return &Day{}
}
