// Package report renders tracker rows as HTML, CSV, Markdown, JSON or YAML,
// and draws line charts of them for the HTML page.
//
// All formats show overtime as tracked minus working time, so a positive
// value means more time was tracked than required.
package report

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/Tiliavir/timetrack/internal/timecalc"
	"github.com/Tiliavir/timetrack/internal/timetrack"
)

// ErrUnknownFormat is returned by New for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown report format")

// Report is everything a Renderer needs.
type Report struct {
	Title     string
	Rows      []timetrack.Row
	Generated time.Time
	// Charts are embedded above the table by the html format only.
	Charts []Chart
}

// Renderer writes a Report in one output format.
type Renderer interface {
	Render(w io.Writer, r Report) error
}

var renderers = map[string]Renderer{
	"html": htmlRenderer{},
	"csv":  csvRenderer{},
	"md":   markdownRenderer{},
	"json": jsonRenderer{},
	"yaml": yamlRenderer{},
}

// New returns the Renderer for format.
func New(format string) (Renderer, error) {
	r, ok := renderers[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("%w %q, expected one of %s", ErrUnknownFormat, format, strings.Join(Formats(), ", "))
	}
	return r, nil
}

// Formats lists the supported format names.
func Formats() []string {
	names := make([]string, 0, len(renderers))
	for name := range renderers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// displayOvertime flips the tracker's working-minus-tracked overtime into
// the tracked-minus-working value shown in reports.
func displayOvertime(d time.Duration) time.Duration {
	return -d
}

// line is one row of the detail table: a day header, a tracked event or a
// day's totals. Unused columns stay empty.
type line struct {
	Day          string
	Start        string
	End          string
	Duration     string
	Tag          string
	TrackedTotal string
	ShouldTotal  string
	Overtime     string
	OvertimeSum  string
}

var detailColumns = []string{
	"day", "start", "end", "duration", "tag",
	"tracked_total", "should_total", "overtime", "overtime_sum",
}

func (l line) cells() []string {
	return []string{
		l.Day, l.Start, l.End, l.Duration, l.Tag,
		l.TrackedTotal, l.ShouldTotal, l.Overtime, l.OvertimeSum,
	}
}

func detail(rows []timetrack.Row) []line {
	var lines []line
	for _, row := range rows {
		lines = append(lines, line{Day: row.Date.Format("2006-01-02 Monday")})
		for _, e := range row.Day.TrackedEvents() {
			lines = append(lines, line{
				Start:    e.Start().Format("15:04"),
				End:      e.End().Format("15:04"),
				Duration: timecalc.FormatClock(e.Duration()),
				Tag:      e.Tag(),
			})
		}
		lines = append(lines, line{
			TrackedTotal: timecalc.FormatClock(row.Day.TrackedTime()),
			ShouldTotal:  timecalc.FormatClock(row.Day.WorkingTime()),
			Overtime:     timecalc.FormatClock(displayOvertime(row.Day.Overtime())),
			OvertimeSum:  timecalc.FormatClock(displayOvertime(row.OvertimeSum)),
		})
	}
	return lines
}
