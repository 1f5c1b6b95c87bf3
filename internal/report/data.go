package report

import (
	"encoding/json"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Tiliavir/timetrack/internal/timecalc"
)

type reportData struct {
	Title     string    `json:"title,omitempty" yaml:"title,omitempty"`
	Generated time.Time `json:"generated,omitzero" yaml:"generated,omitempty"`
	Days      []dayData `json:"days" yaml:"days"`
}

type dayData struct {
	Date               string      `json:"date" yaml:"date"`
	TrackedMinutes     int64       `json:"tracked_minutes" yaml:"tracked_minutes"`
	WorkingMinutes     int64       `json:"working_minutes" yaml:"working_minutes"`
	OvertimeMinutes    int64       `json:"overtime_minutes" yaml:"overtime_minutes"`
	OvertimeSumMinutes int64       `json:"overtime_sum_minutes" yaml:"overtime_sum_minutes"`
	TrackedSumMinutes  int64       `json:"tracked_sum_minutes" yaml:"tracked_sum_minutes"`
	WorkingSumMinutes  int64       `json:"working_sum_minutes" yaml:"working_sum_minutes"`
	Events             []eventData `json:"events,omitempty" yaml:"events,omitempty"`
}

type eventData struct {
	Start           string `json:"start" yaml:"start"`
	End             string `json:"end" yaml:"end"`
	DurationMinutes int64  `json:"duration_minutes" yaml:"duration_minutes"`
	Tag             string `json:"tag" yaml:"tag"`
}

func toData(r Report) reportData {
	out := reportData{Title: r.Title, Generated: r.Generated, Days: make([]dayData, 0, len(r.Rows))}
	for _, row := range r.Rows {
		d := dayData{
			Date:               row.Date.Format(timecalc.DayLayout),
			TrackedMinutes:     int64(row.Day.TrackedTime() / time.Minute),
			WorkingMinutes:     int64(row.Day.WorkingTime() / time.Minute),
			OvertimeMinutes:    int64(displayOvertime(row.Day.Overtime()) / time.Minute),
			OvertimeSumMinutes: int64(displayOvertime(row.OvertimeSum) / time.Minute),
			TrackedSumMinutes:  int64(row.TrackedSum / time.Minute),
			WorkingSumMinutes:  int64(row.WorkingSum / time.Minute),
		}
		for _, e := range row.Day.TrackedEvents() {
			d.Events = append(d.Events, eventData{
				Start:           e.Start().Format(time.RFC3339),
				End:             e.End().Format(time.RFC3339),
				DurationMinutes: int64(e.Duration() / time.Minute),
				Tag:             e.Tag(),
			})
		}
		out.Days = append(out.Days, d)
	}
	return out
}

type jsonRenderer struct{}

func (jsonRenderer) Render(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toData(r))
}

type yamlRenderer struct{}

func (yamlRenderer) Render(w io.Writer, r Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(toData(r)); err != nil {
		return err
	}
	return enc.Close()
}
