package ics

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	log "github.com/sirupsen/logrus"
)

const (
	icsDate      = "20060102"
	icsDateTime  = "20060102T150405"
	icsDateTimeZ = "20060102T150405Z"
)

// vevent is the part of a VEVENT the tracker cares about.
type vevent struct {
	UID     string
	Summary *string
	Start   time.Time
	End     time.Time
	AllDay  bool

	RRule      string
	ExDates    []time.Time
	Recurrence *time.Time
}

func parse(body []byte) ([]vevent, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.New("empty calendar")
	}
	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var events []vevent
	for _, ve := range cal.Events() {
		ev, err := parseVEvent(ve)
		if err != nil {
			log.WithError(err).Warn("ics event skipped")
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func parseVEvent(ve *ical.VEvent) (vevent, error) {
	var out vevent

	uid := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uid == nil || uid.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uid.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		s := p.Value
		out.Summary = &s
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return out, fmt.Errorf("%s: missing DTSTART", out.UID)
	}
	out.AllDay = isDate(dtStart)

	if out.AllDay {
		start, err := time.Parse(icsDate, dtStart.Value)
		if err != nil {
			return out, fmt.Errorf("%s: DTSTART: %w", out.UID, err)
		}
		out.Start = start
		out.End = start.AddDate(0, 0, 1)
		if dtEnd := ve.GetProperty(ical.ComponentPropertyDtEnd); dtEnd != nil {
			if end, err := time.Parse(icsDate, dtEnd.Value); err == nil && end.After(start) {
				out.End = end
			}
		}
	} else {
		// Floating times are wall clock times of the local zone.
		start, err := parseICSTime(dtStart.Value, tzid(dtStart), time.Local)
		if err != nil {
			return out, fmt.Errorf("%s: DTSTART: %w", out.UID, err)
		}
		out.Start = start
		out.End = start
		if dtEnd := ve.GetProperty(ical.ComponentPropertyDtEnd); dtEnd != nil {
			if end, err := parseICSTime(dtEnd.Value, tzid(dtEnd), time.Local); err == nil {
				out.End = end
			}
		}
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.RRule = p.Value
	}

	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			if t, err := parseICSTime(strings.TrimSpace(part), tzid(p), out.Start.Location()); err == nil {
				out.ExDates = append(out.ExDates, t)
			}
		}
	}

	if p := ve.GetProperty(ical.ComponentProperty("RECURRENCE-ID")); p != nil {
		if t, err := parseICSTime(p.Value, tzid(p), out.Start.Location()); err == nil {
			out.Recurrence = &t
		}
	}

	return out, nil
}

// isDate reports whether a DTSTART carries a date without a time.
func isDate(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

func tzid(p *ical.IANAProperty) string {
	if vs, ok := p.ICalParameters["TZID"]; ok && len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// parseICSTime parses a DATE or DATE-TIME value. Floating times use the TZID
// when it resolves, and fallback otherwise.
func parseICSTime(v, tz string, fallback *time.Location) (time.Time, error) {
	if v == "" {
		return time.Time{}, errors.New("empty time value")
	}
	if strings.HasSuffix(v, "Z") {
		return time.Parse(icsDateTimeZ, v)
	}

	loc := fallback
	if tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}
	if loc == nil {
		loc = time.UTC
	}
	if strings.Contains(v, "T") {
		return time.ParseInLocation(icsDateTime, v, loc)
	}
	return time.Parse(icsDate, v)
}
