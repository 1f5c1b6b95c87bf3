package report

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"math"
	"slices"
	"strings"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/Tiliavir/timetrack/internal/timecalc"
	"github.com/Tiliavir/timetrack/internal/timetrack"
)

// ErrUnknownVariable is returned by ParseVariable for an unsupported name.
var ErrUnknownVariable = errors.New("unknown chart variable")

var errNoRows = errors.New("no rows to chart")

// Variable selects the per-row value a chart plots.
type Variable string

const (
	TrackedTime    Variable = "tracked_time"
	TrackedTimeSum Variable = "tracked_time_sum"
	WorkingTime    Variable = "working_time"
	Overtime       Variable = "overtime"
	OvertimeSum    Variable = "overtime_sum"
)

var variables = []Variable{TrackedTime, TrackedTimeSum, WorkingTime, Overtime, OvertimeSum}

// Variables lists the chartable variable names.
func Variables() []string {
	names := make([]string, len(variables))
	for i, v := range variables {
		names[i] = string(v)
	}
	return names
}

// ParseVariable validates a variable name.
func ParseVariable(name string) (Variable, error) {
	v := Variable(strings.ToLower(name))
	if !slices.Contains(variables, v) {
		return "", fmt.Errorf("%w %q, expected one of %s", ErrUnknownVariable, name, strings.Join(Variables(), ", "))
	}
	return v, nil
}

// value returns the row's value for v. Overtime variables use the report
// sign.
func (v Variable) value(row timetrack.Row) time.Duration {
	switch v {
	case TrackedTime:
		return row.Day.TrackedTime()
	case TrackedTimeSum:
		return row.TrackedSum
	case WorkingTime:
		return row.Day.WorkingTime()
	case Overtime:
		return displayOvertime(row.Day.Overtime())
	case OvertimeSum:
		return displayOvertime(row.OvertimeSum)
	}
	return 0
}

// Period controls how densely a chart labels its x axis.
type Period int

const (
	Daily Period = iota
	Weekly
	Monthly
)

func (p Period) String() string {
	switch p {
	case Weekly:
		return "weekly"
	case Monthly:
		return "monthly"
	}
	return "daily"
}

// labelEvery is the distance between two labelled days.
func (p Period) labelEvery() int {
	switch p {
	case Weekly:
		return 7
	case Monthly:
		return 30
	}
	return 1
}

// Chart is a line chart of one variable over the report rows.
type Chart struct {
	Variable Variable
	Period   Period
}

// Series is the data behind a chart: one label and one value in hours per
// row. Labels the period hides are empty.
type Series struct {
	Labels []string
	Hours  []float64
}

// Series extracts the plotted values from rows.
func (c Chart) Series(rows []timetrack.Row) Series {
	s := Series{
		Labels: make([]string, len(rows)),
		Hours:  make([]float64, len(rows)),
	}
	every := c.Period.labelEvery()
	for i, row := range rows {
		if i%every == 0 {
			s.Labels[i] = row.Date.Format(timecalc.DayLayout)
		}
		s.Hours[i] = c.Variable.value(row).Hours()
	}
	return s
}

func (c Chart) size() (vg.Length, vg.Length) {
	if c.Period == Monthly {
		return 13.7 * vg.Inch, 8.27 * vg.Inch
	}
	return 8 * vg.Inch, 4 * vg.Inch
}

// PNG renders the chart for rows as a PNG image.
func (c Chart) PNG(rows []timetrack.Row) ([]byte, error) {
	if len(rows) == 0 {
		return nil, errNoRows
	}
	s := c.Series(rows)

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s (%s)", c.Variable, c.Period)
	p.X.Label.Text = "day"
	p.Y.Label.Text = string(c.Variable) + " [h]"

	pts := make(plotter.XYs, len(s.Hours))
	for i, h := range s.Hours {
		pts[i].X = float64(i)
		pts[i].Y = h
	}
	curve, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("building %s chart: %w", c.Variable, err)
	}
	p.Add(plotter.NewGrid(), curve)

	p.NominalX(s.Labels...)
	p.X.Tick.Label.Rotation = math.Pi / 2
	if c.Period == Monthly {
		p.X.Tick.Label.Rotation = math.Pi / 4
	}
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	w, h := c.size()
	wt, err := p.WriterTo(w, h, "png")
	if err != nil {
		return nil, fmt.Errorf("rendering %s chart: %w", c.Variable, err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("rendering %s chart: %w", c.Variable, err)
	}
	return buf.Bytes(), nil
}

// dataURI renders the chart as an inline image source.
func (c Chart) dataURI(rows []timetrack.Row) (template.URL, error) {
	img, err := c.PNG(rows)
	if err != nil {
		return "", err
	}
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(img)), nil
}
