package timetrack

import (
	"errors"
	"fmt"
	"time"
)

// ErrMalformedRecord is returned when a timed record carries a timestamp that
// cannot be parsed.
var ErrMalformedRecord = errors.New("malformed record")

// EventTime is the start or end of a raw calendar record. All-day records
// carry only Date ("2006-01-02"); timed records carry DateTime in RFC 3339
// form with a UTC offset.
type EventTime struct {
	Date     string `json:"date,omitempty" yaml:"date,omitempty"`
	DateTime string `json:"dateTime,omitempty" yaml:"dateTime,omitempty"`
}

// Timed reports whether t has a precise timestamp.
func (t EventTime) Timed() bool {
	return t.DateTime != ""
}

// Record is a raw calendar event as delivered by a calendar source.
type Record struct {
	ID      string    `json:"id,omitempty" yaml:"id,omitempty"`
	Summary *string   `json:"summary,omitempty" yaml:"summary,omitempty"`
	Start   EventTime `json:"start" yaml:"start"`
	End     EventTime `json:"end" yaml:"end"`
}

// Day returns the calendar date the record starts on, as written by the
// source, or "" when the record has no start.
func (r Record) Day() string {
	switch {
	case r.Start.DateTime != "" && len(r.Start.DateTime) >= len(dayLayout):
		return r.Start.DateTime[:len(dayLayout)]
	case r.Start.Date != "":
		return r.Start.Date
	}
	return ""
}

// SummaryText returns the summary or "" when absent.
func (r Record) SummaryText() string {
	if r.Summary == nil {
		return ""
	}
	return *r.Summary
}

func parseTimestamp(field, value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s %q: %v", ErrMalformedRecord, field, value, err)
	}
	return t, nil
}
