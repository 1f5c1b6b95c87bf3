package timetrack

import (
	"iter"
	"slices"
	"time"

	"github.com/Tiliavir/timetrack/internal/timecalc"
)

// Row is one day of the view window together with the running totals since
// the Tracker's start date.
type Row struct {
	Date        time.Time
	Day         *Day
	WorkingSum  time.Duration
	OvertimeSum time.Duration
	TrackedSum  time.Duration
}

// Rows returns the rows for every day in [viewStart, viewEnd].
//
// The sums are folded over every day from start, so the first row already
// includes the warm-up days before viewStart. Each iteration recomputes the
// sums and does not modify the Tracker, so the sequence can be consumed any
// number of times.
func (t *Tracker) Rows() iter.Seq[Row] {
	return func(yield func(Row) bool) {
		var working, overtime, tracked time.Duration

		days := timecalc.DaysBetween(t.start, t.viewEnd) + 1
		for n := range days {
			date := t.start.AddDate(0, 0, n)
			day := t.lookup(date)

			working += day.WorkingTime()
			tracked += day.TrackedTime()
			overtime += day.Overtime()

			if date.Before(t.viewStart) || date.After(t.viewEnd) {
				continue
			}
			row := Row{
				Date:        date,
				Day:         day,
				WorkingSum:  working,
				OvertimeSum: overtime,
				TrackedSum:  tracked,
			}
			if !yield(row) {
				return
			}
		}
	}
}

// Collect materialises Rows.
func (t *Tracker) Collect() []Row {
	return slices.Collect(t.Rows())
}
