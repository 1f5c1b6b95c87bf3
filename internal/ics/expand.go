package ics

import (
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/teambition/rrule-go"

	"github.com/Tiliavir/timetrack/internal/timecalc"
	"github.com/Tiliavir/timetrack/internal/timetrack"
)

// maxOccurrences caps the instances produced for a single recurring event.
const maxOccurrences = 5000

const instanceLayout = "20060102T150405Z"

// expand turns parsed events into records overlapping [from, to). Overrides
// (RECURRENCE-ID) replace the instance they point at.
func expand(events []vevent, from, to time.Time) []timetrack.Record {
	overrides := make(map[string][]vevent)
	var bases []vevent
	for _, ev := range events {
		if ev.Recurrence != nil {
			overrides[ev.UID] = append(overrides[ev.UID], ev)
			continue
		}
		bases = append(bases, ev)
	}

	var records []timetrack.Record
	for _, ev := range bases {
		if ev.RRule == "" {
			if overlaps(ev.Start, ev.End, from, to) {
				records = append(records, toRecord(ev, ev.UID))
			}
			continue
		}
		records = append(records, expandRecurring(ev, overrides[ev.UID], from, to)...)
	}
	return records
}

func expandRecurring(ev vevent, overrides []vevent, from, to time.Time) []timetrack.Record {
	r, err := rrule.StrToRRule(ev.RRule)
	if err != nil {
		log.WithFields(log.Fields{"uid": ev.UID, "rrule": ev.RRule}).WithError(err).Warn("ics recurrence ignored")
		return nil
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	length := ev.End.Sub(ev.Start)
	starts := set.Between(from.Add(-length).In(ev.Start.Location()), to.In(ev.Start.Location()), true)
	if len(starts) > maxOccurrences {
		log.WithFields(log.Fields{"uid": ev.UID, "cap": maxOccurrences}).Warn("ics recurrence truncated")
		starts = starts[:maxOccurrences]
	}

	var records []timetrack.Record
	for _, start := range starts {
		inst := ev
		inst.Start = start
		inst.End = start.Add(length)
		if o, ok := findOverride(overrides, start); ok {
			inst = o
		}
		if !overlaps(inst.Start, inst.End, from, to) {
			continue
		}
		records = append(records, toRecord(inst, ev.UID+"_"+start.UTC().Format(instanceLayout)))
	}
	return records
}

func findOverride(overrides []vevent, start time.Time) (vevent, bool) {
	for _, o := range overrides {
		if o.Recurrence.Equal(start) {
			return o, true
		}
	}
	return vevent{}, false
}

// overlaps reports whether [start, end) intersects [from, to). Zero-length
// events count when they start inside the window.
func overlaps(start, end, from, to time.Time) bool {
	if !start.Before(to) {
		return false
	}
	if end.Equal(start) {
		return !start.Before(from)
	}
	return end.After(from)
}

func toRecord(ev vevent, id string) timetrack.Record {
	r := timetrack.Record{ID: id, Summary: ev.Summary}
	if ev.AllDay {
		r.Start = timetrack.EventTime{Date: ev.Start.Format(timecalc.DayLayout)}
		r.End = timetrack.EventTime{Date: ev.End.Format(timecalc.DayLayout)}
		return r
	}
	r.Start = timetrack.EventTime{DateTime: ev.Start.Format(time.RFC3339)}
	r.End = timetrack.EventTime{DateTime: ev.End.Format(time.RFC3339)}
	return r
}
