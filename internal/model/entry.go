package model

import (
	"time"

	"github.com/Tiliavir/timetrack/internal/timetrack"
)

// Entry is a raw calendar record cached by `timetrack sync`.
type Entry struct {
	ID        string           `json:"id"`
	Calendar  string           `json:"calendar"`
	Kind      timetrack.Kind   `json:"kind"`
	Record    timetrack.Record `json:"record"`
	FetchedAt time.Time        `json:"fetched_at"`
}

// Matches reports whether e caches the record id of calendar for kind.
func (e Entry) Matches(calendar string, kind timetrack.Kind, id string) bool {
	return e.ID == id && e.Calendar == calendar && e.Kind == kind
}

// DayFile is the top-level structure stored in each daily JSON file.
type DayFile struct {
	Date    string  `json:"date"`
	Entries []Entry `json:"entries"`
}

// Records returns the records of entries classified as kind, in order.
func Records(entries []Entry, kind timetrack.Kind) []timetrack.Record {
	var out []timetrack.Record
	for _, e := range entries {
		if e.Kind == kind {
			out = append(out, e.Record)
		}
	}
	return out
}
